// Package cache provides an identity map scoped to one unit of work.
//
// The engine builds a fresh Cache for every interaction (and hands the same one
// to its offloaded continuation), so rows loaded twice while handling one click
// resolve to the same value and nothing leaks between interactions or tests.
package cache

import (
	"fmt"
	"sync"
)

type Cache struct {
	mu      sync.Mutex
	entries map[string]any
}

func New() *Cache {
	return &Cache{entries: make(map[string]any)}
}

func (c *Cache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	return v, ok
}

func (c *Cache) Put(key string, v any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = v
}

func (c *Cache) Forget(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Load returns the cached value for key, calling load on a miss.
// The lock is not held while loading so a loader may use the cache itself.
func Load[T any](c *Cache, key string, load func() (T, error)) (T, error) {
	if v, ok := c.Get(key); ok {
		typed, ok := v.(T)
		if !ok {
			var zero T
			return zero, fmt.Errorf("cache entry %q holds %T", key, v)
		}
		return typed, nil
	}
	v, err := load()
	if err != nil {
		return v, err
	}
	c.Put(key, v)
	return v, nil
}

// Key joins a kind and an id, e.g. Key("player", "42").
func Key(kind, id string) string {
	return kind + ":" + id
}
