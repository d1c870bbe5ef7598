// Package availability memoizes schedule-rules verdicts per employee,
// date and schedule revision. A day view commonly needs 15–30 employees
// times 68 slots; without the cache every re-render would repeat 1,000+
// rules calls.
package availability

import (
	"sync"
	"time"

	"salondesk/internal/metrics"
	"salondesk/internal/models"
	"salondesk/internal/schedule"
)

type cacheKey struct {
	employeeID int64
	name       string // distinguishes virtual employees, which share id 0
	date       string
	revision   int64
}

// Cache memoizes full per-day availability maps. The schedule revision is
// the sole invalidation mechanism: entries never expire by time, and
// appointment changes do not touch availability. The revision counter is
// owned externally and passed into every lookup.
type Cache struct {
	rules schedule.Rules
	slots []int

	mu      sync.RWMutex
	entries map[cacheKey]map[int]models.AvailabilityEntry
}

// NewCache builds a cache over the given rules and slot axis.
func NewCache(rules schedule.Rules, slots []int) *Cache {
	return &Cache{
		rules:   rules,
		slots:   append([]int(nil), slots...),
		entries: make(map[cacheKey]map[int]models.AvailabilityEntry),
	}
}

// Lookup returns the slot→entry map for (employee, date, revision),
// computing the full slot axis exactly once per key. Repeated lookups for
// the same key return the identical map without consulting the rules
// again; callers must treat the result as read-only.
func (c *Cache) Lookup(emp *models.Employee, date time.Time, revision int64) map[int]models.AvailabilityEntry {
	key := cacheKey{
		employeeID: emp.ID,
		name:       emp.Name,
		date:       models.DateKey(date),
		revision:   revision,
	}

	c.mu.RLock()
	cached, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		metrics.IncAvailabilityLookup("hit")
		return cached
	}

	computed := make(map[int]models.AvailabilityEntry, len(c.slots))
	for _, slot := range c.slots {
		computed[slot] = c.rules.IsAvailable(emp, date, slot)
	}

	c.mu.Lock()
	// Another caller may have filled the key while we computed; keep the
	// first result so concurrent callers observe identical maps.
	if existing, ok := c.entries[key]; ok {
		c.mu.Unlock()
		metrics.IncAvailabilityLookup("hit")
		return existing
	}
	c.entries[key] = computed
	c.mu.Unlock()

	metrics.IncAvailabilityLookup("miss")
	return computed
}

// PurgeBelow drops entries cached under revisions older than the given
// one. Schedule edits bump the revision, so stale keys can never be read
// again; this just bounds memory on long-running processes.
func (c *Cache) PurgeBelow(revision int64) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key := range c.entries {
		if key.revision < revision {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// Len reports the number of cached (employee, date, revision) keys.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
