package storage

import (
	"context"
	"time"

	"expensebook/internal/cache"
)

type cachedValue struct {
	data  []byte
	found bool
}

// CachedKV is a read-through cache in front of another KV. Misses are
// cached too, so repeated lookups of absent partitions stay cheap.
type CachedKV struct {
	inner KV
	cache *cache.LRUCache[cachedValue]
}

// NewCachedKV wraps inner with c.
func NewCachedKV(inner KV, c *cache.LRUCache[cachedValue]) *CachedKV {
	return &CachedKV{inner: inner, cache: c}
}

// NewValueCache builds an LRU suitable for NewCachedKV.
func NewValueCache(size int, ttl time.Duration) *cache.LRUCache[cachedValue] {
	return cache.NewLRUCache[cachedValue](size, ttl)
}

// Unwrap returns the underlying store.
func (c *CachedKV) Unwrap() KV { return c.inner }

func (c *CachedKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if v, ok := c.cache.Get(key); ok {
		return append([]byte(nil), v.data...), v.found, nil
	}
	b, found, err := c.inner.Get(ctx, key)
	if err != nil {
		return nil, false, err
	}
	c.cache.Set(key, cachedValue{data: append([]byte(nil), b...), found: found})
	return b, found, nil
}

func (c *CachedKV) Put(ctx context.Context, key string, value []byte) error {
	return c.Batch(ctx, Set(key, value))
}

func (c *CachedKV) Delete(ctx context.Context, key string) error {
	return c.Batch(ctx, Remove(key))
}

// Batch writes through and refreshes the touched keys. On failure the
// touched keys are dropped so the next read goes to the store.
func (c *CachedKV) Batch(ctx context.Context, muts ...Mutation) error {
	if err := c.inner.Batch(ctx, muts...); err != nil {
		for _, m := range muts {
			c.cache.Delete(m.Key)
		}
		return err
	}
	for _, m := range muts {
		if m.Delete {
			c.cache.Set(m.Key, cachedValue{})
			continue
		}
		c.cache.Set(m.Key, cachedValue{data: append([]byte(nil), m.Value...), found: true})
	}
	return nil
}

func (c *CachedKV) Keys(ctx context.Context) ([]string, error) { return c.inner.Keys(ctx) }

func (c *CachedKV) Close() error {
	c.cache.Purge()
	return c.inner.Close()
}
