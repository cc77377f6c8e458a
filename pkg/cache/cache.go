package cache

import (
	"context"
	"sync"
	"time"
)

// Store is the cache-aside surface used for project documents. Values are
// serialized JSON; all operations are best effort.
type Store interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string, ttl time.Duration)
	Delete(ctx context.Context, key string)
}

// entry is a cached value with expiration.
type entry struct {
	value     string
	expiresAt time.Time
}

// Memory is a simple in-memory cache with TTL, used when no Redis is
// configured. There is no eviction beyond expiry-on-read.
type Memory struct {
	mu    sync.RWMutex
	items map[string]*entry
}

// NewMemory creates a new in-memory cache.
func NewMemory() *Memory {
	return &Memory{items: map[string]*entry{}}
}

// Set stores a value with a given TTL.
func (c *Memory) Set(_ context.Context, key, value string, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = &entry{
		value:     value,
		expiresAt: time.Now().Add(ttl),
	}
}

// Get retrieves a value if it hasn't expired.
func (c *Memory) Get(_ context.Context, key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, exists := c.items[key]
	if !exists {
		return "", false
	}
	if time.Now().After(e.expiresAt) {
		return "", false
	}
	return e.value, true
}

// Delete removes a key.
func (c *Memory) Delete(_ context.Context, key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

// Clear removes all items.
func (c *Memory) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = map[string]*entry{}
}
