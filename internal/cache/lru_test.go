package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/hupe1980/spectral/resource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLRU_GetSet(t *testing.T) {
	c := NewLRUBlockCache(1024, nil)
	ctx := context.Background()

	key := Key{Path: "train.fvecs", Block: 0}

	_, ok := c.Get(ctx, key)
	assert.False(t, ok)

	c.Set(ctx, key, []byte("block0"))

	got, ok := c.Get(ctx, key)
	require.True(t, ok)
	assert.Equal(t, []byte("block0"), got)

	hits, misses := c.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(1), misses)
}

func TestLRU_Eviction(t *testing.T) {
	// Room for two 4-byte blocks
	c := NewLRUBlockCache(8, nil)
	ctx := context.Background()

	c.Set(ctx, Key{Path: "a", Block: 0}, []byte("aaaa"))
	c.Set(ctx, Key{Path: "b", Block: 0}, []byte("bbbb"))
	assert.Equal(t, int64(8), c.Size())

	// Touch "a" so "b" is the LRU victim
	_, ok := c.Get(ctx, Key{Path: "a", Block: 0})
	require.True(t, ok)

	c.Set(ctx, Key{Path: "c", Block: 0}, []byte("cccc"))

	_, ok = c.Get(ctx, Key{Path: "a", Block: 0})
	assert.True(t, ok)
	_, ok = c.Get(ctx, Key{Path: "b", Block: 0})
	assert.False(t, ok)
	_, ok = c.Get(ctx, Key{Path: "c", Block: 0})
	assert.True(t, ok)
}

func TestLRU_UpdateExisting(t *testing.T) {
	c := NewLRUBlockCache(1024, nil)
	ctx := context.Background()

	key := Key{Path: "a", Block: 7}
	c.Set(ctx, key, []byte("old"))
	c.Set(ctx, key, []byte("newer"))

	got, ok := c.Get(ctx, key)
	require.True(t, ok)
	assert.Equal(t, []byte("newer"), got)
	assert.Equal(t, int64(5), c.Size())
}

func TestLRU_OversizedItem(t *testing.T) {
	c := NewLRUBlockCache(4, nil)
	ctx := context.Background()

	c.Set(ctx, Key{Path: "big", Block: 0}, []byte("too large"))
	_, ok := c.Get(ctx, Key{Path: "big", Block: 0})
	assert.False(t, ok)
	assert.Equal(t, int64(0), c.Size())
}

func TestLRU_Invalidate(t *testing.T) {
	c := NewLRUBlockCache(1024, nil)
	ctx := context.Background()

	for i := range uint64(4) {
		c.Set(ctx, Key{Path: "query.fvecs", Block: i}, []byte{byte(i)})
	}
	c.Set(ctx, Key{Path: "other", Block: 0}, []byte{9})

	c.Invalidate(func(key Key) bool {
		return key.Path == "query.fvecs"
	})

	for i := range uint64(4) {
		_, ok := c.Get(ctx, Key{Path: "query.fvecs", Block: i})
		assert.False(t, ok)
	}
	_, ok := c.Get(ctx, Key{Path: "other", Block: 0})
	assert.True(t, ok)
}

func TestLRU_MemoryAccounting(t *testing.T) {
	rc := resource.NewController(resource.Config{MemoryLimitBytes: 10})
	c := NewLRUBlockCache(1024, rc)
	ctx := context.Background()

	c.Set(ctx, Key{Path: "a", Block: 0}, []byte("12345678"))
	assert.Equal(t, int64(8), rc.MemoryUsage())

	// Does not fit in the remaining global budget; silently skipped
	c.Set(ctx, Key{Path: "b", Block: 0}, []byte("1234"))
	_, ok := c.Get(ctx, Key{Path: "b", Block: 0})
	assert.False(t, ok)

	c.Invalidate(func(Key) bool { return true })
	assert.Equal(t, int64(0), rc.MemoryUsage())
}

func TestShardedLRU_Basic(t *testing.T) {
	c := NewShardedLRUBlockCache(64*1024, nil)
	ctx := context.Background()

	for i := range uint64(100) {
		c.Set(ctx, Key{Path: "retrieval.fvecs", Block: i}, []byte{byte(i)})
	}

	found := 0
	for i := range uint64(100) {
		if _, ok := c.Get(ctx, Key{Path: "retrieval.fvecs", Block: i}); ok {
			found++
		}
	}
	assert.Equal(t, 100, found)

	hits, misses := c.Stats()
	assert.Equal(t, int64(100), hits)
	assert.Equal(t, int64(0), misses)
}

func TestShardedLRU_Concurrent(t *testing.T) {
	c := NewShardedLRUBlockCache(1<<20, nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	for w := range 8 {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			path := fmt.Sprintf("blob-%d", w)
			for i := range uint64(200) {
				c.Set(ctx, Key{Path: path, Block: i}, []byte{byte(i)})
				c.Get(ctx, Key{Path: path, Block: i})
			}
		}(w)
	}
	wg.Wait()

	assert.Positive(t, c.Size())
	require.NoError(t, c.Close())
}

func TestShardedLRU_Invalidate(t *testing.T) {
	c := NewShardedLRUBlockCache(1<<20, nil)
	ctx := context.Background()

	for i := range uint64(50) {
		c.Set(ctx, Key{Path: "stale", Block: i}, []byte{1})
		c.Set(ctx, Key{Path: "fresh", Block: i}, []byte{2})
	}

	c.Invalidate(func(key Key) bool { return key.Path == "stale" })

	for i := range uint64(50) {
		_, ok := c.Get(ctx, Key{Path: "stale", Block: i})
		assert.False(t, ok)
		_, ok = c.Get(ctx, Key{Path: "fresh", Block: i})
		assert.True(t, ok)
	}
}
