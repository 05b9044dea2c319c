package dashboard

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"sync"
	"time"
)

// RenderCache memoizes rendered chart HTML.
type RenderCache interface {
	GetOrRender(key string, render func() (string, error)) (string, error)
}

// ChartCache is an in-memory TTL cache for rendered charts. A zero TTL disables caching.
type ChartCache struct {
	ttl     time.Duration
	now     func() time.Time
	mu      sync.Mutex
	entries map[string]cachedChart
}

type cachedChart struct {
	html    string
	expires time.Time
}

// NewChartCache builds a cache with the provided TTL.
func NewChartCache(ttl time.Duration) *ChartCache {
	return &ChartCache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cachedChart),
	}
}

// GetOrRender returns a live entry or renders and stores a new one. Failed renders are not cached.
func (c *ChartCache) GetOrRender(key string, render func() (string, error)) (string, error) {
	if c == nil || c.ttl <= 0 {
		return render()
	}
	now := c.now()
	c.mu.Lock()
	entry, ok := c.entries[key]
	if ok && now.Before(entry.expires) {
		c.mu.Unlock()
		return entry.html, nil
	}
	delete(c.entries, key)
	c.mu.Unlock()

	html, err := render()
	if err != nil {
		return "", err
	}
	c.mu.Lock()
	c.entries[key] = cachedChart{html: html, expires: now.Add(c.ttl)}
	c.mu.Unlock()
	return html, nil
}

// Len returns the number of stored entries, expired ones included.
func (c *ChartCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Purge drops expired entries and returns how many were removed.
func (c *ChartCache) Purge() int {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	removed := 0
	for key, entry := range c.entries {
		if !now.Before(entry.expires) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// contentHash returns a deterministic hash of v for cache keys.
func contentHash(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "invalid"
	}
	sum := sha1.Sum(b)
	return hex.EncodeToString(sum[:])
}
