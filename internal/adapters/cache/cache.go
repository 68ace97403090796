// Package cache provides the read-through moment cache keyed by event id.
//
// Entries are advisory only: losing the cache never loses correctness, it
// only raises the upstream fetch rate. Entries past the TTL are kept for a
// stale-retention window so a deployment can prefer a stale score over a
// hard failure when the upstream feed is down.
package cache

import (
	"context"
	"time"

	"github.com/okian/crux/internal/domain/model"
)

// Default cache configuration constants.
const (
	DefaultTTL = 300 * time.Second

	// staleRetentionFactor scales the TTL into the window during which an
	// expired entry is still usable as a fallback.
	staleRetentionFactor = 4
)

// Freshness classifies a cache hit.
type Freshness int

// Freshness values.
const (
	Fresh Freshness = iota
	Stale
)

// String returns the freshness label.
func (f Freshness) String() string {
	if f == Stale {
		return "stale"
	}
	return "fresh"
}

// Cache is the read-through moment cache contract.
type Cache interface {
	// Get returns the cached moment for an event and whether it is still
	// within TTL. ok is false when no usable entry exists at all.
	Get(ctx context.Context, eventID string) (m model.Moment, f Freshness, ok bool)

	// Set stores a freshly computed moment with a new TTL.
	Set(ctx context.Context, eventID string, m model.Moment) error

	// Len returns the current number of entries, where knowable.
	Len(ctx context.Context) int
}
