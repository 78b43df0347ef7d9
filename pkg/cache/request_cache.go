package cache

import (
	"context"
	"strings"
	"sync"
)

// RequestCache memoizes computed values for the lifetime of one inbound
// operation. It is created per unit of work and handed to the services that
// share it; the single-writer-per-request assumption makes the lock cheap.
type RequestCache struct {
	mu      sync.Mutex
	entries map[string]any
}

// NewRequestCache returns an empty request-scoped cache.
func NewRequestCache() *RequestCache {
	return &RequestCache{entries: map[string]any{}}
}

// Get returns the memoized value for key, computing and storing it via
// populate on a miss. A populate error is returned without caching anything.
func (c *RequestCache) Get(ctx context.Context, key string, populate func(context.Context) (any, error)) (any, error) {
	c.mu.Lock()
	if value, ok := c.entries[key]; ok {
		c.mu.Unlock()
		return value, nil
	}
	c.mu.Unlock()

	value, err := populate(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[key] = value
	c.mu.Unlock()
	return value, nil
}

// InvalidateByPrefix drops every entry whose key starts with prefix.
func (c *RequestCache) InvalidateByPrefix(_ context.Context, prefix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
	return nil
}
