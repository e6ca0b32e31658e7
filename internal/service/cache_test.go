package service

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBoundedCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := newBoundedCache[string, int](2)
	c.Add("a", 1)
	c.Add("b", 2)

	_, ok := c.Get("a")
	assert.True(t, ok)

	c.Add("c", 3)
	assert.Equal(t, 2, c.Len())

	_, ok = c.Get("b")
	assert.False(t, ok, "b was least recently used")
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
}

func TestBoundedCache_AddUpdatesExisting(t *testing.T) {
	c := newBoundedCache[string, int](2)
	c.Add("a", 1)
	c.Add("a", 5)
	assert.Equal(t, 1, c.Len())
	v, _ := c.Get("a")
	assert.Equal(t, 5, v)
}

func TestBoundedCache_GetOrCompute(t *testing.T) {
	c := newBoundedCache[int, int](0)
	calls := 0
	compute := func() int { calls++; return 42 }

	assert.Equal(t, 42, c.GetOrCompute(1, compute))
	assert.Equal(t, 42, c.GetOrCompute(1, compute))
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, c.Len())
}

func TestBoundedCache_Concurrent(t *testing.T) {
	c := newBoundedCache[int, int](16)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.GetOrCompute((n*j)%32, func() int { return j })
			}
		}(i)
	}
	wg.Wait()
	assert.LessOrEqual(t, c.Len(), 16)
}
