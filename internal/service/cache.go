package service

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// boundedCache memoizes pure lookups in a thread-safe LRU holding at most
// capacity items.
type boundedCache[K comparable, V any] struct {
	*lru.Cache[K, V]
}

func newBoundedCache[K comparable, V any](capacity int) *boundedCache[K, V] {
	if capacity < 1 {
		capacity = 1
	}
	// lru.New only fails for a non-positive size.
	c, err := lru.New[K, V](capacity)
	if err != nil {
		panic(err)
	}
	return &boundedCache[K, V]{Cache: c}
}

// GetOrCompute returns the cached value for key, computing and storing it
// on a miss. compute runs outside the cache lock; racing misses may both
// compute.
func (c *boundedCache[K, V]) GetOrCompute(key K, compute func() V) V {
	if v, ok := c.Get(key); ok {
		return v
	}
	v := compute()
	c.Add(key, v)
	return v
}
