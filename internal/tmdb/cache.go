package tmdb

import (
	"sync"
	"time"
)

type cacheEntry struct {
	ids     ExternalIDs
	expires time.Time
}

// cache holds external id responses keyed by "kind/id".
type cache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	ttl     time.Duration
	now     func() time.Time
}

func newCache(ttl time.Duration) *cache {
	return &cache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (c *cache) get(key string) (ExternalIDs, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok || c.now().After(entry.expires) {
		return ExternalIDs{}, false
	}
	return entry.ids, true
}

func (c *cache) set(key string, ids ExternalIDs) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cacheEntry{
		ids:     ids,
		expires: c.now().Add(c.ttl),
	}
}
