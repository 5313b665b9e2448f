package replay

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "hashcash:seen:"

type redisCache struct {
	client *redis.Client
}

// NewRedisCache shares seen keys between processes through Redis
func NewRedisCache(addr, password string, db int) (Cache, error) {
	if addr == "" {
		return nil, errors.New("redis addr is required")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &redisCache{client: client}, nil
}

func (r *redisCache) Seen(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if ttl < time.Millisecond {
		ttl = time.Millisecond
	}
	stored, err := r.client.SetNX(ctx, keyPrefix+key, 1, ttl).Result()
	if err != nil {
		return false, err
	}
	return !stored, nil
}

// Close releases the Redis connection pool
func (r *redisCache) Close() error {
	return r.client.Close()
}
