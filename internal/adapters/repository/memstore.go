package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/okian/crux/internal/domain/model"
	"github.com/okian/crux/pkg/metrics"
)

// MemoryStore is the in-memory Store implementation. Appends and summary
// merges happen inside one critical section, so a concurrent double
// compute for the same event can never produce a summary whose count
// disagrees with the log.
type MemoryStore struct {
	mu        sync.RWMutex
	moments   []model.Moment                 // append order
	byEvent   map[string][]int               // event id -> indices into moments
	bySubject map[string][]int               // subject id -> indices into moments
	summaries map[string]*model.EventSummary // event id -> aggregate
	now       func() time.Time
}

// MemoryOption applies a configuration option to the MemoryStore.
type MemoryOption func(*MemoryStore)

// WithClock replaces the time source, for tests.
func WithClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		byEvent:   make(map[string][]int),
		bySubject: make(map[string][]int),
		summaries: make(map[string]*model.EventSummary),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Append persists the moment and merges the event summary atomically.
func (s *MemoryStore) Append(_ context.Context, m model.Moment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := len(s.moments)
	s.moments = append(s.moments, m)
	s.byEvent[m.EventID] = append(s.byEvent[m.EventID], idx)
	s.bySubject[m.SubjectID] = append(s.bySubject[m.SubjectID], idx)

	sum, ok := s.summaries[m.EventID]
	if !ok {
		sum = &model.EventSummary{EventID: m.EventID}
		s.summaries[m.EventID] = sum
	}
	sum.Merge(m.Composite, s.now().UTC())

	metrics.RecordMomentAppend()
	metrics.UpdateMomentsTotal(len(s.moments))
	return nil
}

// Latest returns the most recently appended moment for an event.
func (s *MemoryStore) Latest(_ context.Context, eventID string) (model.Moment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idxs := s.byEvent[eventID]
	if len(idxs) == 0 {
		return model.Moment{}, ErrNotFound
	}
	best := idxs[0]
	for _, i := range idxs[1:] {
		if !s.moments[i].CreatedAt.Before(s.moments[best].CreatedAt) {
			best = i
		}
	}
	return s.moments[best], nil
}

// History returns the subject's most recent moments, newest first.
func (s *MemoryStore) History(_ context.Context, subjectID string, limit int) ([]model.Moment, error) {
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	idxs := s.bySubject[subjectID]
	out := make([]model.Moment, 0, min(limit, len(idxs)))
	for _, i := range idxs {
		out = append(out, s.moments[i])
	}
	sort.SliceStable(out, func(a, b int) bool {
		return out[a].CreatedAt.After(out[b].CreatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// TopMoments returns the highest-composite moments in the trailing window.
func (s *MemoryStore) TopMoments(_ context.Context, window time.Duration, limit int) ([]model.Moment, error) {
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}
	cutoff := s.now().Add(-window)

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Moment, 0, limit)
	for _, m := range s.moments {
		if m.CreatedAt.Before(cutoff) {
			continue
		}
		out = append(out, m)
	}
	sort.SliceStable(out, func(a, b int) bool {
		if out[a].Composite != out[b].Composite {
			return out[a].Composite > out[b].Composite
		}
		return out[a].CreatedAt.After(out[b].CreatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Summary returns the incrementally maintained aggregate for an event.
func (s *MemoryStore) Summary(_ context.Context, eventID string) (model.EventSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sum, ok := s.summaries[eventID]
	if !ok {
		return model.EventSummary{}, ErrNotFound
	}
	return *sum, nil
}

// RecomputeSummary rebuilds the aggregate from the moment log.
func (s *MemoryStore) RecomputeSummary(_ context.Context, eventID string) (model.EventSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idxs := s.byEvent[eventID]
	if len(idxs) == 0 {
		return model.EventSummary{}, ErrNotFound
	}
	sum := model.EventSummary{EventID: eventID}
	for _, i := range idxs {
		sum.Merge(s.moments[i].Composite, s.now().UTC())
	}
	return sum, nil
}

// Count returns the total number of stored moments.
func (s *MemoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.moments)
}
