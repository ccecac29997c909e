package imagecache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"
)

// Defaults for the bounded cache. One entry per finalized turn means even a
// very long session stays far below the bound.
const (
	DefaultSize = 128
	DefaultTTL  = 15 * time.Minute
)

// Generator produces an image URL for a derived prompt key.
type Generator func(ctx context.Context, prompt string) (string, error)

// Cache is an explicitly owned illustration cache with a bounded size and
// TTL. Concurrent requests for the same key share a single in-flight call
// instead of both missing and both fetching. Failed generations are never
// cached, so an identical later request retries.
type Cache struct {
	entries *expirable.LRU[string, string]
	flight  singleflight.Group
}

// New builds a cache bounded to size entries, each kept at most ttl.
// Non-positive arguments fall back to the defaults.
func New(size int, ttl time.Duration) *Cache {
	if size <= 0 {
		size = DefaultSize
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{entries: expirable.NewLRU[string, string](size, nil, ttl)}
}

// Get returns the cached image URL for a prompt key, if present.
func (c *Cache) Get(key string) (string, bool) {
	return c.entries.Get(key)
}

// FetchAndCache resolves a prompt key to an image URL, calling gen at most
// once per key across concurrent callers. A successful result is cached; a
// failure returns the error without poisoning the key.
func (c *Cache) FetchAndCache(ctx context.Context, key string, gen Generator) (string, error) {
	if imageURL, ok := c.entries.Get(key); ok {
		return imageURL, nil
	}

	result, err, _ := c.flight.Do(key, func() (any, error) {
		// Re-check under the flight: a concurrent caller may have just
		// populated the entry.
		if imageURL, ok := c.entries.Get(key); ok {
			return imageURL, nil
		}

		imageURL, err := gen(ctx, key)
		if err != nil {
			return "", err
		}
		if imageURL != "" {
			c.entries.Add(key, imageURL)
		}
		return imageURL, nil
	})
	if err != nil {
		return "", err
	}
	return result.(string), nil
}

// Len reports the number of live entries, for diagnostics.
func (c *Cache) Len() int {
	return c.entries.Len()
}
