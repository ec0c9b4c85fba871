package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdjCacheGetPut(t *testing.T) {
	c := NewAdjCacheWithCap(4)

	_, ok := c.Get(1)
	assert.False(t, ok)

	c.Put(1, []int64{2, 3})
	got, ok := c.Get(1)
	require.True(t, ok)
	assert.Equal(t, []int64{2, 3}, got)

	c.Put(1, []int64{4})
	got, _ = c.Get(1)
	assert.Equal(t, []int64{4}, got)

	assert.Equal(t, AdjStats{Gets: 3, Hits: 2, Puts: 2, Len: 1}, c.Stats())
}

func TestAdjCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewAdjCacheWithCap(2)
	c.Put(1, nil)
	c.Put(2, nil)
	_, _ = c.Get(1)
	c.Put(3, nil)

	_, ok := c.Get(2)
	assert.False(t, ok, "2 was least recently used")
	_, ok = c.Get(1)
	assert.True(t, ok)
	_, ok = c.Get(3)
	assert.True(t, ok)
	assert.Equal(t, 1, c.Stats().Evictions)
}

func TestAdjCacheCachesEmptyLists(t *testing.T) {
	c := NewAdjCache()
	c.Put(7, []int64{})
	got, ok := c.Get(7)
	assert.True(t, ok)
	assert.Empty(t, got)
}

func TestAdjCacheInvalidateAndClear(t *testing.T) {
	c := NewAdjCacheWithCap(0)
	c.Put(1, []int64{2})
	c.Put(2, []int64{1})

	c.Invalidate(1)
	_, ok := c.Get(1)
	assert.False(t, ok)
	_, ok = c.Get(2)
	assert.True(t, ok)

	c.Clear()
	assert.Equal(t, AdjStats{}, c.Stats())
}
