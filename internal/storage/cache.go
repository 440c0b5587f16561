package storage

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const cachePrefix = "ascend:slot:"

// CachedStore puts a Redis read-through cache in front of another store.
// Writes go to the inner store first and then replace the cached copy. Reads
// only fill a missing entry, so a slow reader never overwrites a newer write.
type CachedStore struct {
	inner Store
	redis *redis.Client
	ttl   time.Duration
}

func NewCachedStore(inner Store, redisClient *redis.Client, ttl time.Duration) *CachedStore {
	return &CachedStore{inner: inner, redis: redisClient, ttl: ttl}
}

func (c *CachedStore) Load(ctx context.Context, key string) ([]byte, bool, error) {
	if val, ok := c.readCache(ctx, key); ok {
		return val, true, nil
	}
	val, ok, err := c.inner.Load(ctx, key)
	if err != nil || !ok {
		return val, ok, err
	}
	c.fillCache(ctx, key, val)
	return val, true, nil
}

func (c *CachedStore) Save(ctx context.Context, key string, value []byte) error {
	if err := c.inner.Save(ctx, key, value); err != nil {
		return err
	}
	c.writeCache(ctx, key, value)
	return nil
}

func (c *CachedStore) Delete(ctx context.Context, key string) error {
	if err := c.inner.Delete(ctx, key); err != nil {
		return err
	}
	c.evict(ctx, key)
	return nil
}

func (c *CachedStore) Keys(ctx context.Context) ([]string, error) {
	return c.inner.Keys(ctx)
}

func (c *CachedStore) readCache(ctx context.Context, key string) ([]byte, bool) {
	if c.redis == nil || c.ttl <= 0 {
		return nil, false
	}
	val, err := c.redis.Get(ctx, cachePrefix+key).Bytes()
	if err != nil {
		return nil, false
	}
	return val, true
}

// fillCache stores val only when no entry exists.
func (c *CachedStore) fillCache(ctx context.Context, key string, val []byte) {
	if c.redis == nil || c.ttl <= 0 {
		return
	}
	_ = c.redis.SetNX(ctx, cachePrefix+key, val, c.ttl).Err()
}

// writeCache replaces the entry after a write. If that fails the entry is
// dropped instead.
func (c *CachedStore) writeCache(ctx context.Context, key string, val []byte) {
	if c.redis == nil || c.ttl <= 0 {
		c.evict(ctx, key)
		return
	}
	if err := c.redis.Set(ctx, cachePrefix+key, val, c.ttl).Err(); err != nil {
		c.evict(ctx, key)
	}
}

func (c *CachedStore) evict(ctx context.Context, key string) {
	if c.redis == nil {
		return
	}
	// A failed delete leaves a stale entry until the TTL runs out.
	_ = c.redis.Del(ctx, cachePrefix+key).Err()
}
