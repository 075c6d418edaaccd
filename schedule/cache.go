package schedule

import (
	"time"

	"github.com/jjsantos01/cineteca-schedule-grid/model"
)

// DefaultCacheMaxAge is how long a (date, sede) cartelera stays usable.
// Entry count is bounded by the date window times the sede count, so age is
// the only eviction policy.
const DefaultCacheMaxAge = 48 * time.Hour

type cacheEntry struct {
	data      []model.Showtime
	fetchedAt time.Time
}

// Cache memoizes parsed carteleras per (dateKey, sedeID). Keys are always
// exact pairs; there are no partial-key queries. Entries survive date
// navigation and expire by age.
type Cache struct {
	entries map[string]map[string]cacheEntry
	maxAge  time.Duration
	now     func() time.Time
}

// NewCache creates a cache with the default max age.
func NewCache() *Cache {
	return &Cache{
		entries: map[string]map[string]cacheEntry{},
		maxAge:  DefaultCacheMaxAge,
		now:     time.Now,
	}
}

// Get returns the cached cartelera, treating entries older than the max age
// as absent. Callers must not mutate the returned slice.
func (c *Cache) Get(dateKey string, sedeID string) ([]model.Showtime, bool) {
	bucket, ok := c.entries[dateKey]
	if !ok {
		return nil, false
	}
	entry, ok := bucket[sedeID]
	if !ok {
		return nil, false
	}
	if c.now().Sub(entry.fetchedAt) > c.maxAge {
		return nil, false
	}
	return entry.data, true
}

// Put stores a cartelera with the current timestamp.
func (c *Cache) Put(dateKey string, sedeID string, data []model.Showtime) {
	bucket, ok := c.entries[dateKey]
	if !ok {
		bucket = map[string]cacheEntry{}
		c.entries[dateKey] = bucket
	}
	bucket[sedeID] = cacheEntry{data: data, fetchedAt: c.now()}
}

// EvictOlderThan removes entries fetched before the cutoff and prunes empty
// date buckets.
func (c *Cache) EvictOlderThan(maxAge time.Duration) {
	cutoff := c.now().Add(-maxAge)
	for dateKey, bucket := range c.entries {
		for sedeID, entry := range bucket {
			if entry.fetchedAt.Before(cutoff) {
				delete(bucket, sedeID)
			}
		}
		if len(bucket) == 0 {
			delete(c.entries, dateKey)
		}
	}
}

// Len returns the number of cached (date, sede) entries, expired or not.
func (c *Cache) Len() int {
	n := 0
	for _, bucket := range c.entries {
		n += len(bucket)
	}
	return n
}
