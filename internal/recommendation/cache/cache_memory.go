package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"carepath/pkg/platform/sentinel"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// InMemoryCache implements Cache for tests and development. Expired entries
// are dropped lazily on read.
type InMemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewInMemoryCache constructs an empty in-memory cache.
func NewInMemoryCache() *InMemoryCache {
	return &InMemoryCache{entries: make(map[string]memoryEntry), now: time.Now}
}

// SetClock overrides the cache clock. Tests use it to exercise expiry.
func (c *InMemoryCache) SetClock(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

func (c *InMemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok {
		return nil, fmt.Errorf("cache key %q: %w", key, sentinel.ErrNotFound)
	}
	if !entry.expiresAt.IsZero() && !c.now().Before(entry.expiresAt) {
		delete(c.entries, key)
		return nil, fmt.Errorf("cache key %q: %w", key, sentinel.ErrNotFound)
	}
	out := make([]byte, len(entry.value))
	copy(out, entry.value)
	return out, nil
}

func (c *InMemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	stored := make([]byte, len(value))
	copy(stored, value)
	entry := memoryEntry{value: stored}
	if ttl > 0 {
		entry.expiresAt = c.now().Add(ttl)
	}
	c.entries[key] = entry
	return nil
}

func (c *InMemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

// Contains reports whether a live entry exists without touching expiry state.
// Test helper.
func (c *InMemoryCache) Contains(key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[key]
	if !ok {
		return false
	}
	return entry.expiresAt.IsZero() || c.now().Before(entry.expiresAt)
}
