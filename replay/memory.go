package replay

import (
	"context"
	"errors"
	"sync"
	"time"
)

type memoryCache struct {
	mu      sync.Mutex
	now     func() time.Time
	data    map[string]time.Time
	maxKeys int
}

// MemoryCacheConfig configures NewMemoryCache
type MemoryCacheConfig struct {
	Now     func() time.Time
	MaxKeys int
}

// NewMemoryCache keeps seen keys in process memory
func NewMemoryCache(cfg MemoryCacheConfig) Cache {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.MaxKeys <= 0 {
		cfg.MaxKeys = 10000
	}
	return &memoryCache{
		now:     cfg.Now,
		data:    make(map[string]time.Time),
		maxKeys: cfg.MaxKeys,
	}
}

func (m *memoryCache) Seen(_ context.Context, key string, ttl time.Duration) (bool, error) {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	if expiresAt, ok := m.data[key]; ok {
		if now.Before(expiresAt) {
			return true, nil
		}
		delete(m.data, key)
	}

	if len(m.data) >= m.maxKeys {
		m.gc(now)
	}
	if len(m.data) >= m.maxKeys {
		return false, errors.New("replay cache capacity exceeded")
	}
	m.data[key] = now.Add(ttl)
	return false, nil
}

func (m *memoryCache) gc(now time.Time) {
	for key, expiresAt := range m.data {
		if !now.Before(expiresAt) {
			delete(m.data, key)
		}
	}
}
