// Package resolve wraps an external intent.Resolver with a bounded cache keyed
// by filter equivalence: descriptors that differ only in extras, flags,
// selector or source bounds share one cached answer.
package resolve

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/hashicorp/golang-lru/v2"

	intent "github.com/reoring/intent"
)

// DefaultSize is the number of filter hashes kept when NewCache gets size <= 0.
const DefaultSize = 1024

type entry struct {
	key  intent.FilterKey
	comp intent.ComponentName
}

// Cache is a concurrency-safe caching Resolver.
//
// A descriptor naming an explicit component is answered with that component
// without consulting the inner resolver. Errors from the inner resolver are
// never cached.
type Cache struct {
	inner intent.Resolver

	mu      sync.Mutex
	buckets *lru.Cache[uint32, []entry]

	hits   atomic.Uint64
	misses atomic.Uint64
}

// NewCache caches the answers of inner for up to size distinct filter hashes.
func NewCache(inner intent.Resolver, size int) (*Cache, error) {
	if size <= 0 {
		size = DefaultSize
	}
	b, err := lru.New[uint32, []entry](size)
	if err != nil {
		return nil, err
	}
	return &Cache{inner: inner, buckets: b}, nil
}

// Resolve implements intent.Resolver.
func (c *Cache) Resolve(ctx context.Context, d *intent.Descriptor) (intent.ComponentName, error) {
	if comp, ok := d.Component(); ok {
		return comp, nil
	}
	key := intent.NewFilterKey(d)
	if comp, ok := c.lookup(key); ok {
		c.hits.Add(1)
		return comp, nil
	}
	c.misses.Add(1)
	if err := ctx.Err(); err != nil {
		return intent.ComponentName{}, err
	}
	comp, err := c.inner.Resolve(ctx, d)
	if err != nil {
		return intent.ComponentName{}, err
	}
	c.store(key, comp)
	return comp, nil
}

func (c *Cache) lookup(key intent.FilterKey) (intent.ComponentName, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	bucket, _ := c.buckets.Get(key.Hash())
	for _, e := range bucket {
		if e.key.Equal(key) {
			return e.comp, true
		}
	}
	return intent.ComponentName{}, false
}

func (c *Cache) store(key intent.FilterKey, comp intent.ComponentName) {
	c.mu.Lock()
	defer c.mu.Unlock()
	bucket, _ := c.buckets.Peek(key.Hash())
	for i, e := range bucket {
		if e.key.Equal(key) {
			// A concurrent miss resolved the same key first; keep the newer answer.
			bucket[i].comp = comp
			return
		}
	}
	next := make([]entry, len(bucket), len(bucket)+1)
	copy(next, bucket)
	c.buckets.Add(key.Hash(), append(next, entry{key: key, comp: comp}))
}

// Invalidate drops the cached answer for descriptors filter-equal to d.
func (c *Cache) Invalidate(d *intent.Descriptor) {
	key := intent.NewFilterKey(d)
	c.mu.Lock()
	defer c.mu.Unlock()
	bucket, ok := c.buckets.Peek(key.Hash())
	if !ok {
		return
	}
	next := make([]entry, 0, len(bucket))
	for _, e := range bucket {
		if !e.key.Equal(key) {
			next = append(next, e)
		}
	}
	if len(next) == 0 {
		c.buckets.Remove(key.Hash())
		return
	}
	c.buckets.Add(key.Hash(), next)
}

// Purge empties the cache.
func (c *Cache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.buckets.Purge()
}

// Len returns the number of cached descriptors.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, h := range c.buckets.Keys() {
		b, _ := c.buckets.Peek(h)
		n += len(b)
	}
	return n
}

// Stats reports cache hits and misses since creation.
func (c *Cache) Stats() (hits, misses uint64) {
	return c.hits.Load(), c.misses.Load()
}
