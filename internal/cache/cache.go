package cache

import (
	"sync"
	"time"
)

// Cache provides thread-safe in-memory caching of computed values.
// Entries never expire on their own: everything stored here is derived
// deterministically from its key.
type Cache[V any] struct {
	entries map[string]*entry[V]
	mutex   sync.RWMutex

	hits   uint64
	misses uint64
}

// entry represents a cached item with metadata
type entry[V any] struct {
	value     V
	createdAt time.Time
}

// Stats holds cache statistics
type Stats struct {
	TotalEntries int
	Hits         uint64
	Misses       uint64
	OldestEntry  time.Time
	NewestEntry  time.Time
}

// New creates a new in-memory cache
func New[V any]() *Cache[V] {
	return &Cache[V]{
		entries: make(map[string]*entry[V]),
	}
}

// GetOrCreate returns the cached value for key, building and storing it on a miss.
// create runs under the write lock so concurrent callers build a key only once.
// Failed builds are not stored.
func (c *Cache[V]) GetOrCreate(key string, create func() (V, error)) (V, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if e, exists := c.entries[key]; exists {
		c.hits++
		return e.value, nil
	}
	c.misses++

	value, err := create()
	if err != nil {
		var zero V
		return zero, err
	}

	c.entries[key] = &entry[V]{value: value, createdAt: time.Now()}
	return value, nil
}

// Drain removes every entry and returns their values
func (c *Cache[V]) Drain() []V {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	values := make([]V, 0, len(c.entries))
	for _, e := range c.entries {
		values = append(values, e.value)
	}
	c.entries = make(map[string]*entry[V])
	return values
}

// Stats returns cache statistics
func (c *Cache[V]) Stats() Stats {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	stats := Stats{
		TotalEntries: len(c.entries),
		Hits:         c.hits,
		Misses:       c.misses,
	}

	for _, e := range c.entries {
		if stats.OldestEntry.IsZero() || e.createdAt.Before(stats.OldestEntry) {
			stats.OldestEntry = e.createdAt
		}
		if e.createdAt.After(stats.NewestEntry) {
			stats.NewestEntry = e.createdAt
		}
	}

	return stats
}
