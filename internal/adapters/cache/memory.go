package cache

import (
	"context"
	"sync"
	"time"

	"github.com/okian/crux/internal/domain/model"
	"github.com/okian/crux/pkg/metrics"
)

// sweepEvery bounds how often Set pays for a full expiry sweep.
const sweepEvery = 64

// MemoryCache is a thread-safe in-memory TTL cache. Expired entries are
// swept opportunistically during writes; there is no background goroutine.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memEntry
	ttl     time.Duration
	sets    int
	now     func() time.Time
}

type memEntry struct {
	moment   model.Moment
	storedAt time.Time
}

// MemoryOption applies a configuration option to the MemoryCache.
type MemoryOption func(*MemoryCache)

// WithTTL sets the freshness TTL.
func WithTTL(ttl time.Duration) MemoryOption {
	return func(c *MemoryCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithClock replaces the time source, for tests.
func WithClock(now func() time.Time) MemoryOption {
	return func(c *MemoryCache) {
		if now != nil {
			c.now = now
		}
	}
}

// NewMemoryCache creates an in-memory cache with the default TTL.
func NewMemoryCache(opts ...MemoryOption) *MemoryCache {
	c := &MemoryCache{
		entries: make(map[string]memEntry),
		ttl:     DefaultTTL,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached moment and its freshness. Entries older than the
// stale-retention window are treated as absent.
func (c *MemoryCache) Get(_ context.Context, eventID string) (model.Moment, Freshness, bool) {
	c.mu.RLock()
	e, ok := c.entries[eventID]
	c.mu.RUnlock()
	if !ok {
		return model.Moment{}, Fresh, false
	}

	age := c.now().Sub(e.storedAt)
	switch {
	case age <= c.ttl:
		return e.moment, Fresh, true
	case age <= c.ttl*staleRetentionFactor:
		return e.moment, Stale, true
	default:
		return model.Moment{}, Fresh, false
	}
}

// Set stores a moment with a fresh TTL and opportunistically sweeps
// entries past the retention window.
func (c *MemoryCache) Set(_ context.Context, eventID string, m model.Moment) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[eventID] = memEntry{moment: m, storedAt: c.now()}
	c.sets++
	if c.sets%sweepEvery == 0 {
		c.sweepLocked()
	}
	metrics.UpdateCacheEntries(len(c.entries))
	return nil
}

// Len returns the current number of entries.
func (c *MemoryCache) Len(_ context.Context) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// sweepLocked drops entries past the stale-retention window. Caller holds
// the write lock.
func (c *MemoryCache) sweepLocked() {
	cutoff := c.now().Add(-c.ttl * staleRetentionFactor)
	for id, e := range c.entries {
		if e.storedAt.Before(cutoff) {
			delete(c.entries, id)
			metrics.RecordCacheEviction()
		}
	}
}
