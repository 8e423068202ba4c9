// Package dedupe keeps a bounded set of recently persisted record
// document IDs so the storage gateway can skip index calls for records
// it has already written inside the window. Persistence itself stays
// idempotent through deterministic document IDs; this cache only saves
// round trips.
package dedupe

import (
	"sync"
	"time"
)

type stamped struct {
	id string
	ts time.Time
}

// Cache is a fixed-capacity, TTL-bounded seen-set keyed by document ID.
type Cache struct {
	mu       sync.Mutex
	items    map[string]time.Time
	order    []stamped
	capacity int
	ttl      time.Duration
}

// NewCache creates a cache that remembers up to capacity IDs for ttl.
func NewCache(capacity int, ttl time.Duration) *Cache {
	if capacity <= 0 {
		capacity = 1
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Cache{
		items:    make(map[string]time.Time, capacity),
		order:    make([]stamped, 0, capacity),
		capacity: capacity,
		ttl:      ttl,
	}
}

// IsSeen reports whether the ID was recorded inside the ttl window. It
// does not mark the ID; use MarkSeen for that.
func (c *Cache) IsSeen(id string) bool {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	ts, ok := c.items[id]
	return ok && now.Sub(ts) <= c.ttl
}

// MarkSeen records that a document ID has been persisted.
func (c *Cache) MarkSeen(id string) {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[id] = now
	c.order = append(c.order, stamped{id: id, ts: now})
	c.compact(now)
}

// compact evicts from the front of the insertion order until the cache
// fits its capacity and holds nothing past the ttl.
func (c *Cache) compact(now time.Time) {
	cutoff := now.Add(-c.ttl)

	for len(c.order) > 0 && (len(c.items) > c.capacity || c.order[0].ts.Before(cutoff)) {
		oldest := c.order[0]
		c.order = c.order[1:]

		// Only drop the map entry if it was not refreshed since.
		if ts, ok := c.items[oldest.id]; ok && ts == oldest.ts {
			delete(c.items, oldest.id)
		}
	}
}
