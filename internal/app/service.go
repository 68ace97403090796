// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/crux/internal/adapters/cache"
	"github.com/okian/crux/internal/adapters/feed"
	"github.com/okian/crux/internal/adapters/repository"
	"github.com/okian/crux/internal/domain/calc"
	"github.com/okian/crux/internal/domain/calibration"
	"github.com/okian/crux/internal/domain/composite"
	"github.com/okian/crux/internal/domain/model"
	"github.com/okian/crux/pkg/logger"
	"github.com/okian/crux/pkg/metrics"
)

// momentKind labels the kind of moment this engine scores.
const momentKind = "pitch"

// Service implements the compute pipeline and the query surface.
type Service struct {
	mu sync.RWMutex

	// Core components
	source     feed.Source
	cache      cache.Cache
	store      repository.Store
	aggregator *composite.Aggregator

	// Configuration
	staleFallback bool
	now           func() time.Time

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithSource sets the upstream game-state source.
func WithSource(source feed.Source) Option {
	return func(s *Service) {
		if source != nil {
			s.source = source
		}
	}
}

// WithCache sets the moment cache.
func WithCache(c cache.Cache) Option {
	return func(s *Service) {
		if c != nil {
			s.cache = c
		}
	}
}

// WithStore sets the persistence store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithAggregator sets the composite aggregator.
func WithAggregator(agg *composite.Aggregator) Option {
	return func(s *Service) {
		if agg != nil {
			s.aggregator = agg
		}
	}
}

// WithStaleFallback controls whether a stale cache entry is preferred over
// a hard failure when the upstream feed is unavailable.
func WithStaleFallback(enabled bool) Option {
	return func(s *Service) {
		s.staleFallback = enabled
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock replaces the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		staleFallback: true,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes missing components with in-memory defaults.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	if s.store == nil {
		s.store = repository.NewMemoryStore()
		s.logger.Info(ctx, "using in-memory moment store")
	}
	if s.cache == nil {
		s.cache = cache.NewMemoryCache()
		s.logger.Info(ctx, "using in-memory moment cache")
	}
	if s.aggregator == nil {
		agg, err := composite.New(calibration.Default())
		if err != nil {
			return err
		}
		s.aggregator = agg
	}

	s.started = true
	s.logger.Info(ctx, "moment engine started",
		logger.String("calibration", s.aggregator.CalibrationVersion()),
		logger.Bool("staleFallback", s.staleFallback),
	)
	return nil
}

// Stop shuts the service down.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	if closer, ok := s.cache.(interface{ Close() error }); ok {
		_ = closer.Close()
	}
	if closer, ok := s.store.(interface{ Close() }); ok {
		closer.Close()
	}
	s.started = false
	s.logger.Info(context.Background(), "moment engine stopped")
}

// ComputeMoment runs the read-through pipeline for one event: a fresh
// cache hit short-circuits; a miss fetches the snapshot, scores the five
// components, normalizes and aggregates them, persists the moment and
// refreshes the cache. A persistence failure is logged and counted but
// never voids the computed result.
func (s *Service) ComputeMoment(ctx context.Context, eventID string) (model.Moment, error) {
	if m, freshness, ok := s.cache.Get(ctx, eventID); ok && freshness == cache.Fresh {
		metrics.RecordCacheHit()
		return m, nil
	}
	metrics.RecordCacheMiss()

	start := s.now()
	state, err := s.source.GameState(ctx, eventID)
	if err != nil {
		if errors.Is(err, feed.ErrUpstreamUnavailable) {
			metrics.RecordComputeError("upstream_unavailable")
			if s.staleFallback {
				if m, _, ok := s.cache.Get(ctx, eventID); ok {
					metrics.RecordCacheStaleFallback()
					s.logger.Warn(ctx, "serving stale moment; upstream unavailable",
						logger.String("eventID", eventID), logger.Error(err))
					m.Stale = true
					return m, nil
				}
			}
		} else {
			metrics.RecordComputeError("no_active_situation")
		}
		return model.Moment{}, err
	}

	components := calc.All(state.Situation, state.Workload, state.Action)
	score, band, err := s.aggregator.Composite(components)
	if err != nil {
		// Calibration defect: abort, persist nothing.
		metrics.RecordComputeError("calibration_missing")
		return model.Moment{}, err
	}

	m := model.Moment{
		ID:                 uuid.NewString(),
		EventID:            eventID,
		SubjectID:          state.Situation.PitcherID,
		Kind:               momentKind,
		Composite:          score,
		Band:               band,
		Components:         components,
		Situation:          state.Situation,
		CalibrationVersion: s.aggregator.CalibrationVersion(),
		CreatedAt:          s.now().UTC(),
	}

	if err := s.store.Append(ctx, m); err != nil {
		// The score is still valid even if storage failed.
		metrics.RecordMomentAppendError()
		s.logger.Error(ctx, "moment append failed",
			logger.String("eventID", eventID), logger.Error(err))
	}
	if err := s.cache.Set(ctx, eventID, m); err != nil {
		s.logger.Warn(ctx, "moment cache set failed",
			logger.String("eventID", eventID), logger.Error(err))
	}

	metrics.RecordCompute(score, string(band), float64(s.now().Sub(start).Milliseconds()))
	return m, nil
}

// LiveGames lists in-progress event ids. A provider outage degrades to an
// empty list so the query surface stays usable.
func (s *Service) LiveGames(ctx context.Context) []string {
	ids, err := s.source.LiveGames(ctx)
	if err != nil {
		s.logger.Warn(ctx, "live games listing failed", logger.Error(err))
		return []string{}
	}
	if ids == nil {
		ids = []string{}
	}
	return ids
}

// LatestMoment returns the most recent persisted moment for an event.
func (s *Service) LatestMoment(ctx context.Context, eventID string) (model.Moment, error) {
	return s.store.Latest(ctx, eventID)
}

// History returns a pitcher's most recent moments. Internal errors degrade
// to an empty list.
func (s *Service) History(ctx context.Context, subjectID string, limit int) []model.Moment {
	out, err := s.store.History(ctx, subjectID, limit)
	if err != nil {
		s.logger.Warn(ctx, "history query failed",
			logger.String("subjectID", subjectID), logger.Error(err))
		return []model.Moment{}
	}
	if out == nil {
		out = []model.Moment{}
	}
	return out
}

// TopMoments returns the leaderboard for the trailing window. Internal
// errors degrade to an empty list.
func (s *Service) TopMoments(ctx context.Context, window time.Duration, limit int) []model.Moment {
	out, err := s.store.TopMoments(ctx, window, limit)
	if err != nil {
		s.logger.Warn(ctx, "leaderboard query failed", logger.Error(err))
		return []model.Moment{}
	}
	if out == nil {
		out = []model.Moment{}
	}
	return out
}

// EventSummary returns the aggregate for an event.
func (s *Service) EventSummary(ctx context.Context, eventID string) (model.EventSummary, error) {
	return s.store.Summary(ctx, eventID)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":       s.started,
		"staleFallback": s.staleFallback,
	}
	if s.started {
		total := s.store.Count(ctx)
		stats["calibrationVersion"] = s.aggregator.CalibrationVersion()
		stats["cacheEntries"] = s.cache.Len(ctx)
		stats["momentsTotal"] = total
		metrics.UpdateMomentsTotal(total)
	}
	return stats
}
