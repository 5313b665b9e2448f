package replay

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/instill-ai/hashcash-client/internal/config"
)

// ErrReplayed is returned by callers when a stamp was seen before
var ErrReplayed = errors.New("stamp already used")

// Cache is a time-windowed set of seen keys
type Cache interface {
	// Seen records key for ttl and reports whether it was already present
	Seen(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// Key derives the cache key of a wire-form stamp
func Key(wire string) string {
	sum := sha256.Sum256([]byte(wire))
	return hex.EncodeToString(sum[:])
}

// FromConfig picks the Redis backend when an address is configured and the
// in-memory one otherwise
func FromConfig(cfg config.ReplayConfig) (Cache, error) {
	if cfg.RedisAddr != "" {
		return NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	}
	return NewMemoryCache(MemoryCacheConfig{MaxKeys: cfg.MaxKeys}), nil
}
