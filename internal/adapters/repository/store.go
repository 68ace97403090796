// Package repository defines the moment persistence store and its errors.
//
// Append is the only mutation: moments form an append-only log per event
// and per pitcher, and every append atomically folds the moment into the
// event's summary aggregate. Concurrent appends for the same event are
// permitted and must never lose a summary update.
package repository

import (
	"context"
	"time"

	"github.com/okian/crux/internal/domain/model"
)

// Store provides append and read access to the moment log.
type Store interface {
	// Append persists a moment and atomically merges its event summary.
	Append(ctx context.Context, m model.Moment) error

	// Latest returns the most recent moment for an event.
	// Returns ErrNotFound if the event has no moments.
	Latest(ctx context.Context, eventID string) (model.Moment, error)

	// History returns the most recent limit moments where the pitcher was
	// the subject, newest first.
	History(ctx context.Context, subjectID string, limit int) ([]model.Moment, error)

	// TopMoments returns the highest-composite moments within the trailing
	// window, composite descending, ties broken newest first.
	TopMoments(ctx context.Context, window time.Duration, limit int) ([]model.Moment, error)

	// Summary returns the aggregate for an event.
	// Returns ErrNotFound if the event has no moments.
	Summary(ctx context.Context, eventID string) (model.EventSummary, error)

	// RecomputeSummary rebuilds the aggregate from the moment log. Repair
	// path: the incremental summary must always match this result.
	RecomputeSummary(ctx context.Context, eventID string) (model.EventSummary, error)

	// Count returns the total number of stored moments.
	Count(ctx context.Context) int
}
