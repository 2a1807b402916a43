package market

import (
	"sync"
	"time"
)

// responseCache holds successful payloads keyed by the full request tuple.
// Entries are only invalidated by TTL expiry; expired entries are dropped
// when next looked up.
type responseCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[Request]cacheEntry
	now     func() time.Time
}

type cacheEntry struct {
	payload   *Payload
	createdAt time.Time
}

func newResponseCache(ttl time.Duration) *responseCache {
	return &responseCache{
		ttl:     ttl,
		entries: make(map[Request]cacheEntry),
		now:     time.Now,
	}
}

func (c *responseCache) get(req Request) (*Payload, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[req]
	if !ok {
		return nil, false
	}
	if c.now().Sub(e.createdAt) >= c.ttl {
		delete(c.entries, req)
		return nil, false
	}
	return e.payload, true
}

func (c *responseCache) put(req Request, p *Payload) {
	c.mu.Lock()
	c.entries[req] = cacheEntry{payload: p, createdAt: c.now()}
	c.mu.Unlock()
}
