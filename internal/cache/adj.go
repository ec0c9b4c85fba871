package cache

import (
	"container/list"
	"sync"
)

// DefaultAdjCapacity is the number of neighbour lists held when no capacity
// is configured.
const DefaultAdjCapacity = 2048

type adjEntry struct {
	node      int64
	neighbors []int64
}

// AdjStats is a snapshot of AdjCache counters.
type AdjStats struct {
	Gets      int `json:"gets"`
	Hits      int `json:"hits"`
	Puts      int `json:"puts"`
	Evictions int `json:"evictions"`
	Len       int `json:"len"`
}

// AdjCache is a bounded LRU of node id to neighbour ids, safe for concurrent
// use. Returned slices are shared and must not be modified by callers.
type AdjCache struct {
	mu       sync.Mutex
	m        map[int64]*list.Element
	ll       *list.List
	capacity int
	stats    AdjStats
}

func NewAdjCache() *AdjCache {
	return NewAdjCacheWithCap(DefaultAdjCapacity)
}

// NewAdjCacheWithCap falls back to DefaultAdjCapacity when capacity <= 0.
func NewAdjCacheWithCap(capacity int) *AdjCache {
	if capacity <= 0 {
		capacity = DefaultAdjCapacity
	}
	return &AdjCache{
		m:        make(map[int64]*list.Element, capacity),
		ll:       list.New(),
		capacity: capacity,
	}
}

func (c *AdjCache) Get(node int64) ([]int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stats.Gets++
	if el, ok := c.m[node]; ok {
		c.stats.Hits++
		c.ll.MoveToFront(el)
		return el.Value.(adjEntry).neighbors, true
	}
	return nil, false
}

// Put stores the neighbour list, evicting the least recently used entry when
// the cache is full. An empty list is cached too: isolated nodes are looked up
// as often as any other.
func (c *AdjCache) Put(node int64, neighbors []int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stats.Puts++
	if el, ok := c.m[node]; ok {
		el.Value = adjEntry{node: node, neighbors: neighbors}
		c.ll.MoveToFront(el)
		return
	}

	c.m[node] = c.ll.PushFront(adjEntry{node: node, neighbors: neighbors})
	if c.ll.Len() > c.capacity {
		tail := c.ll.Back()
		delete(c.m, tail.Value.(adjEntry).node)
		c.ll.Remove(tail)
		c.stats.Evictions++
	}
}

// Invalidate drops a single node, typically after one of its edges changed.
func (c *AdjCache) Invalidate(node int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.m[node]; ok {
		delete(c.m, node)
		c.ll.Remove(el)
	}
}

// Clear empties the cache and resets its counters.
func (c *AdjCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m = make(map[int64]*list.Element, c.capacity)
	c.ll.Init()
	c.stats = AdjStats{}
}

func (c *AdjCache) Stats() AdjStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stats
	s.Len = c.ll.Len()
	return s
}
