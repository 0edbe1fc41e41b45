package render

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"funnelboard/domain/core"
	"funnelboard/domain/funnel"
)

// Request identifies one rendered pyramid image
type Request struct {
	Name   core.FunnelName
	Format string
	Area   funnel.Area
	Spec   funnel.Spec
}

// Key derives the cache key. The spec is part of the key so a changed data
// source never serves a stale image.
func (r Request) Key() core.Hash {
	specJSON, _ := json.Marshal(r.Spec)
	return core.ComputeKeyHash(
		r.Name.String(),
		r.Format,
		strconv.FormatFloat(r.Area.Width, 'f', -1, 64),
		strconv.FormatFloat(r.Area.Height, 'f', -1, 64),
		string(specJSON),
	)
}

// Func renders a request to encoded bytes
type Func func(ctx context.Context, req Request) ([]byte, error)

type cacheEntry struct {
	data      []byte
	createdAt time.Time
}

// Cache wraps a render function with a TTL-bound in-memory cache.
// Errors are never cached.
type Cache struct {
	renderFn Func
	ttl      time.Duration
	now      func() time.Time
	entries  map[core.Hash]*cacheEntry
	mu       sync.RWMutex
}

// NewCache creates a Cache. A zero ttl disables caching.
func NewCache(renderFn Func, ttl time.Duration) *Cache {
	return &Cache{
		renderFn: renderFn,
		ttl:      ttl,
		now:      time.Now,
		entries:  make(map[core.Hash]*cacheEntry),
	}
}

// Render returns the cached bytes for req, rendering on a miss or after expiry.
// The second return value reports a cache hit.
func (c *Cache) Render(ctx context.Context, req Request) ([]byte, bool, error) {
	key := req.Key()

	c.mu.RLock()
	if entry, ok := c.entries[key]; ok && c.now().Sub(entry.createdAt) < c.ttl {
		data := entry.data
		c.mu.RUnlock()
		return data, true, nil
	}
	c.mu.RUnlock()

	data, err := c.renderFn(ctx, req)
	if err != nil {
		return nil, false, err
	}

	if c.ttl > 0 {
		c.mu.Lock()
		c.entries[key] = &cacheEntry{data: data, createdAt: c.now()}
		c.mu.Unlock()
	}

	return data, false, nil
}

// Prune drops expired entries and returns how many were removed
func (c *Cache) Prune() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	removed := 0
	for key, entry := range c.entries {
		if c.now().Sub(entry.createdAt) >= c.ttl {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of entries, expired ones included
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
