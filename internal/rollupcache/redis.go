package rollupcache

import (
	"context"
	"errors"
	"time"

	pkgredis "github.com/packtally/packtally-backend/pkg/redis"
)

type redisStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	ScanKeys(ctx context.Context, pattern string) ([]string, error)
}

// RedisCache stores rollups in Redis with native TTL expiry. Flush removes
// every rollup key in the namespace via SCAN, leaving unrelated keys alone.
type RedisCache struct {
	store redisStore
}

// NewRedisCache wraps the shared redis client as a rollup cache.
func NewRedisCache(store redisStore) (*RedisCache, error) {
	if store == nil {
		return nil, errors.New("redis store required")
	}
	return &RedisCache{store: store}, nil
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := c.store.Get(ctx, pkgredis.Key(key))
	if err != nil {
		if errors.Is(err, pkgredis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return []byte(value), true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	return c.store.Set(ctx, pkgredis.Key(key), string(payload), ttl)
}

func (c *RedisCache) Flush(ctx context.Context) error {
	keys, err := c.store.ScanKeys(ctx, pkgredis.Key("rollup", "*"))
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.store.Del(ctx, keys...)
}
