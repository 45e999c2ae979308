// Package cache provides an LRU cache for generated statement templates.
package cache

import (
	"container/list"
	"sync"
	"sync/atomic"
)

const (
	// DefaultCapacity is the default maximum number of cached templates.
	DefaultCapacity = 512
)

// TemplateCache stores statement text that depends only on metadata, such as
// SELECT and COUNT templates, with LRU eviction.
type TemplateCache struct {
	mu       sync.Mutex
	capacity int
	items    map[string]*list.Element
	lruList  *list.List

	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

type cacheEntry struct {
	key string
	sql string
}

// New creates a template cache with DefaultCapacity.
func New() *TemplateCache {
	return NewWithCapacity(DefaultCapacity)
}

// NewWithCapacity creates a template cache holding at most capacity entries.
// A non-positive capacity selects DefaultCapacity.
func NewWithCapacity(capacity int) *TemplateCache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &TemplateCache{
		capacity: capacity,
		items:    make(map[string]*list.Element, capacity),
		lruList:  list.New(),
	}
}

// Get returns the template stored under key and marks it most recently used.
func (c *TemplateCache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, exists := c.items[key]
	if !exists {
		c.misses.Add(1)
		return "", false
	}

	c.lruList.MoveToFront(elem)
	c.hits.Add(1)
	return elem.Value.(*cacheEntry).sql, true
}

// Set stores sql under key, evicting the least recently used entry when full.
func (c *TemplateCache) Set(key, sql string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, exists := c.items[key]; exists {
		c.lruList.MoveToFront(elem)
		elem.Value.(*cacheEntry).sql = sql
		return
	}

	if c.lruList.Len() >= c.capacity {
		c.evictOldest()
	}

	c.items[key] = c.lruList.PushFront(&cacheEntry{key: key, sql: sql})
}

// GetOrBuild returns the template under key, building and storing it on a
// miss. Build errors are returned and nothing is stored. build runs without
// the lock held, so concurrent misses may build the same key more than once.
func (c *TemplateCache) GetOrBuild(key string, build func() (string, error)) (string, error) {
	if sql, ok := c.Get(key); ok {
		return sql, nil
	}

	sql, err := build()
	if err != nil {
		return "", err
	}
	c.Set(key, sql)
	return sql, nil
}

// evictOldest removes the least recently used entry. Must be called with
// the lock held.
func (c *TemplateCache) evictOldest() {
	elem := c.lruList.Back()
	if elem == nil {
		return
	}

	c.lruList.Remove(elem)
	delete(c.items, elem.Value.(*cacheEntry).key)
	c.evictions.Add(1)
}

// Clear removes every entry. Counters are kept.
func (c *TemplateCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*list.Element, c.capacity)
	c.lruList.Init()
}

// Stats holds cache metrics.
type Stats struct {
	Size      int
	Capacity  int
	Hits      uint64
	Misses    uint64
	Evictions uint64
	HitRate   float64 // hits / (hits + misses)
}

// Stats returns a snapshot of cache metrics.
func (c *TemplateCache) Stats() Stats {
	c.mu.Lock()
	size := c.lruList.Len()
	c.mu.Unlock()

	hits := c.hits.Load()
	misses := c.misses.Load()

	hitRate := 0.0
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total)
	}

	return Stats{
		Size:      size,
		Capacity:  c.capacity,
		Hits:      hits,
		Misses:    misses,
		Evictions: c.evictions.Load(),
		HitRate:   hitRate,
	}
}
