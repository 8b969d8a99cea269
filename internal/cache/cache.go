// ABOUTME: In-memory cache with TTL-based expiration
// ABOUTME: Holds slow-changing reference lists such as formation categories and cities

package cache

import (
	"log/slog"
	"sync"
	"time"
)

type entry[V any] struct {
	data      V
	expiresAt time.Time
}

// Cache is safe for concurrent use. Expired entries are dropped on read.
type Cache[V any] struct {
	mu    sync.Mutex
	store map[string]entry[V]
	ttl   time.Duration
	now   func() time.Time
}

func New[V any](ttl time.Duration) *Cache[V] {
	return &Cache[V]{
		store: make(map[string]entry[V]),
		ttl:   ttl,
		now:   time.Now,
	}
}

func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	e, ok := c.store[key]
	if !ok {
		slog.Debug("Cache miss", "key", key)
		return zero, false
	}
	if c.now().After(e.expiresAt) {
		delete(c.store, key)
		slog.Debug("Cache expired", "key", key)
		return zero, false
	}

	slog.Debug("Cache hit", "key", key)
	return e.data, true
}

func (c *Cache[V]) Set(key string, value V) {
	c.mu.Lock()
	c.store[key] = entry[V]{data: value, expiresAt: c.now().Add(c.ttl)}
	c.mu.Unlock()
	slog.Debug("Cache set", "key", key, "ttl", c.ttl)
}

// Purge removes every entry
func (c *Cache[V]) Purge() {
	c.mu.Lock()
	clear(c.store)
	c.mu.Unlock()
}
