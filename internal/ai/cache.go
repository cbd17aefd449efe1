package ai

import (
	"sync"
	"time"
)

type cacheEntry struct {
	analysis  *Analysis
	createdAt time.Time
}

// Cache is an LRU cache for analyses keyed by request signature.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*cacheEntry
	order   []string // newest at end
	maxSize int
	ttl     time.Duration
	now     func() time.Time
}

// NewCache creates an analysis cache. A non-positive maxSize disables caching.
func NewCache(maxSize int, ttl time.Duration) *Cache {
	return &Cache{
		entries: make(map[string]*cacheEntry),
		maxSize: maxSize,
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns a copy of the cached analysis marked FromCache.
func (c *Cache) Get(signature string) (*Analysis, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[signature]
	if !ok {
		return nil, false
	}

	if c.ttl > 0 && c.now().Sub(entry.createdAt) > c.ttl {
		delete(c.entries, signature)
		c.removeFromOrder(signature)
		return nil, false
	}

	c.removeFromOrder(signature)
	c.order = append(c.order, signature)

	a := *entry.analysis
	a.EnergySavingTips = append([]string(nil), entry.analysis.EnergySavingTips...)
	a.EnvironmentalTips = append([]string(nil), entry.analysis.EnvironmentalTips...)
	a.FromCache = true
	return &a, true
}

// Put stores an analysis, evicting the least recently used entries.
func (c *Cache) Put(signature string, analysis *Analysis) {
	if c.maxSize <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[signature]; !exists {
		for len(c.entries) >= c.maxSize && len(c.order) > 0 {
			oldest := c.order[0]
			c.order = c.order[1:]
			delete(c.entries, oldest)
		}
	}

	c.entries[signature] = &cacheEntry{
		analysis:  analysis,
		createdAt: c.now(),
	}
	c.removeFromOrder(signature)
	c.order = append(c.order, signature)
}

// Size returns the number of cached entries.
func (c *Cache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Clear empties the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*cacheEntry)
	c.order = nil
}

func (c *Cache) removeFromOrder(key string) {
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}
