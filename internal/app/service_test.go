package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/okian/crux/internal/adapters/cache"
	"github.com/okian/crux/internal/adapters/feed"
	"github.com/okian/crux/internal/adapters/repository"
	service "github.com/okian/crux/internal/app"
	"github.com/okian/crux/internal/domain/calc"
	"github.com/okian/crux/internal/domain/calibration"
	"github.com/okian/crux/internal/domain/composite"
	"github.com/okian/crux/internal/domain/model"
	"github.com/okian/crux/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

// fakeSource is a scripted feed.Source for tests.
type fakeSource struct {
	mu    sync.Mutex
	state feed.GameState
	err   error
	calls int
	live  []string
}

func (f *fakeSource) GameState(ctx context.Context, eventID string) (feed.GameState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return feed.GameState{}, f.err
	}
	return f.state, nil
}

func (f *fakeSource) LiveGames(ctx context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.live, nil
}

func (f *fakeSource) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeSource) setErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func eliteState() feed.GameState {
	return feed.GameState{
		Situation: model.Situation{
			Inning:    9,
			Outs:      2,
			Bases:     model.Bases{First: true, Second: true, Third: true},
			ScoreDiff: 1,
			Balls:     3,
			Strikes:   2,
			PitcherID: "pitcher-1",
			BatterID:  "batter-1",
			Playoff:   true,
		},
		Workload: model.Workload{
			PitchCount:      95,
			RestDays:        1,
			Role:            model.RoleReliever,
			TempoAvgSeconds: 27,
			RecentPerfAvg:   0.85,
		},
		Action: model.Action{Kind: "pitch", Subtype: "slider", Velocity: 88},
	}
}

func routineState() feed.GameState {
	return feed.GameState{
		Situation: model.Situation{
			Inning:    2,
			Outs:      0,
			Bases:     model.Bases{},
			ScoreDiff: 5,
			Balls:     0,
			Strikes:   0,
			PitcherID: "pitcher-2",
			BatterID:  "batter-2",
		},
		Workload: model.Workload{
			PitchCount:      20,
			RestDays:        5,
			Role:            model.RoleStarter,
			TempoAvgSeconds: 18,
			RecentPerfAvg:   1.3,
		},
		Action: model.Action{Kind: "pitch", Subtype: "fastball", Velocity: 92},
	}
}

func startService(t *testing.T, opts ...service.Option) *service.Service {
	t.Helper()
	svc := service.New(opts...)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := svc.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	t.Cleanup(svc.Stop)
	return svc
}

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc := service.New()

		Convey("Then it should have sensible defaults", func() {
			So(svc, ShouldNotBeNil)
		})
	})
}

func TestService_StartStop(t *testing.T) {
	Convey("Given a new service", t, func() {
		svc := service.New(service.WithSource(&fakeSource{}))
		defer svc.Stop()

		Convey("When starting the service", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			err := svc.Start(ctx)

			Convey("Then it should start successfully", func() {
				So(err, ShouldBeNil)
			})

			Convey("And it should be marked as started", func() {
				stats := svc.GetStats()
				So(stats["started"], ShouldEqual, true)
			})

			Convey("And stopping should mark it stopped", func() {
				svc.Stop()
				stats := svc.GetStats()
				So(stats["started"], ShouldEqual, false)
			})
		})
	})
}

func TestService_ComputeMoment(t *testing.T) {
	Convey("Given a service over a bases-loaded playoff jam", t, func() {
		src := &fakeSource{state: eliteState()}
		store := repository.NewMemoryStore()
		svc := startService(t,
			service.WithSource(src),
			service.WithStore(store),
		)
		ctx := context.Background()

		Convey("When computing a moment", func() {
			m, err := svc.ComputeMoment(ctx, "game-1")

			Convey("Then it should produce an elite moment", func() {
				So(err, ShouldBeNil)
				So(m.EventID, ShouldEqual, "game-1")
				So(m.SubjectID, ShouldEqual, "pitcher-1")
				So(m.Band, ShouldEqual, model.BandElite)
				So(m.Composite, ShouldBeGreaterThanOrEqualTo, model.EliteThreshold)
				So(m.ID, ShouldNotBeEmpty)
				So(m.CalibrationVersion, ShouldNotBeEmpty)
				So(m.Stale, ShouldBeFalse)
			})

			Convey("And the moment should be persisted", func() {
				So(err, ShouldBeNil)
				latest, lerr := svc.LatestMoment(ctx, "game-1")
				So(lerr, ShouldBeNil)
				So(latest.ID, ShouldEqual, m.ID)
			})
		})
	})

	Convey("Given a service over an early blowout", t, func() {
		src := &fakeSource{state: routineState()}
		svc := startService(t, service.WithSource(src))

		Convey("When computing a moment", func() {
			m, err := svc.ComputeMoment(context.Background(), "game-2")

			Convey("Then it should land in the routine band", func() {
				So(err, ShouldBeNil)
				So(m.Band, ShouldEqual, model.BandRoutine)
			})
		})
	})
}

func TestService_CacheShortCircuit(t *testing.T) {
	Convey("Given a computed moment inside the freshness window", t, func() {
		src := &fakeSource{state: eliteState()}
		svc := startService(t, service.WithSource(src))
		ctx := context.Background()

		first, err := svc.ComputeMoment(ctx, "game-1")
		So(err, ShouldBeNil)

		Convey("When computing the same event again", func() {
			second, err := svc.ComputeMoment(ctx, "game-1")

			Convey("Then the cached moment is returned without a feed call", func() {
				So(err, ShouldBeNil)
				So(second.ID, ShouldEqual, first.ID)
				So(src.callCount(), ShouldEqual, 1)
			})
		})
	})
}

func TestService_StaleFallback(t *testing.T) {
	Convey("Given a cached moment whose entry has gone stale", t, func() {
		clock := time.Now()
		src := &fakeSource{state: eliteState()}
		momentCache := cache.NewMemoryCache(
			cache.WithTTL(time.Second),
			cache.WithClock(func() time.Time { return clock }),
		)
		svc := startService(t,
			service.WithSource(src),
			service.WithCache(momentCache),
			service.WithStaleFallback(true),
		)
		ctx := context.Background()

		first, err := svc.ComputeMoment(ctx, "game-1")
		So(err, ShouldBeNil)

		clock = clock.Add(2 * time.Second) // past TTL, inside retention

		Convey("When the upstream becomes unavailable", func() {
			src.setErr(feed.ErrUpstreamUnavailable)

			m, err := svc.ComputeMoment(ctx, "game-1")

			Convey("Then the stale moment is served and marked", func() {
				So(err, ShouldBeNil)
				So(m.ID, ShouldEqual, first.ID)
				So(m.Stale, ShouldBeTrue)
			})
		})

		Convey("When stale fallback is disabled", func() {
			strict := startService(t,
				service.WithSource(&fakeSource{err: feed.ErrUpstreamUnavailable}),
				service.WithCache(momentCache),
				service.WithStaleFallback(false),
			)

			_, err := strict.ComputeMoment(ctx, "game-1")

			Convey("Then the outage surfaces as an error", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})

	Convey("Given no cached entry at all", t, func() {
		svc := startService(t,
			service.WithSource(&fakeSource{err: feed.ErrUpstreamUnavailable}),
			service.WithStaleFallback(true),
		)

		Convey("When the upstream is unavailable", func() {
			_, err := svc.ComputeMoment(context.Background(), "game-9")

			Convey("Then the error propagates", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}

func TestService_NoActiveSituation(t *testing.T) {
	Convey("Given an event with no active situation", t, func() {
		src := &fakeSource{err: feed.ErrNoActiveSituation}
		store := repository.NewMemoryStore()
		svc := startService(t,
			service.WithSource(src),
			service.WithStore(store),
		)

		Convey("When computing a moment", func() {
			_, err := svc.ComputeMoment(context.Background(), "game-idle")

			Convey("Then the error propagates and nothing is persisted", func() {
				So(err, ShouldNotBeNil)
				So(store.Count(context.Background()), ShouldEqual, 0)
			})
		})
	})
}

func TestService_IncompleteCalibrationRejected(t *testing.T) {
	Convey("Given a calibration table missing a component", t, func() {
		table := calibration.New(
			calibration.WithVersion("broken"),
			calibration.WithEntry(calc.ComponentLeverage, 1.2, 0.8),
			calibration.WithEntry(calc.ComponentPressure, 48, 9),
			calibration.WithEntry(calc.ComponentFatigue, 48, 9),
			calibration.WithEntry(calc.ComponentExecution, 48, 9),
		)

		Convey("Then the aggregator refuses to build at all", func() {
			_, err := composite.New(table)
			So(err, ShouldNotBeNil)
		})
	})
}

func TestService_QueryViews(t *testing.T) {
	Convey("Given a service with a computed moment", t, func() {
		src := &fakeSource{state: eliteState(), live: []string{"game-1", "game-2"}}
		store := repository.NewMemoryStore()
		svc := startService(t,
			service.WithSource(src),
			service.WithStore(store),
		)
		ctx := context.Background()

		_, err := svc.ComputeMoment(ctx, "game-1")
		So(err, ShouldBeNil)

		Convey("When listing live games", func() {
			ids := svc.LiveGames(ctx)

			Convey("Then the provider ids come back", func() {
				So(ids, ShouldResemble, []string{"game-1", "game-2"})
			})
		})

		Convey("When the provider is down", func() {
			src.setErr(feed.ErrUpstreamUnavailable)

			Convey("Then live games degrades to an empty list", func() {
				So(svc.LiveGames(ctx), ShouldResemble, []string{})
			})
		})

		Convey("When querying history for the pitcher", func() {
			moments := svc.History(ctx, "pitcher-1", 10)

			Convey("Then the computed moment is listed", func() {
				So(moments, ShouldHaveLength, 1)
				So(moments[0].SubjectID, ShouldEqual, "pitcher-1")
			})
		})

		Convey("When querying history for an unknown pitcher", func() {
			moments := svc.History(ctx, "nobody", 10)

			Convey("Then an empty list comes back, not an error", func() {
				So(moments, ShouldResemble, []model.Moment{})
			})
		})

		Convey("When querying the leaderboard", func() {
			top := svc.TopMoments(ctx, 24*time.Hour, 5)

			Convey("Then moments are listed", func() {
				So(top, ShouldHaveLength, 1)
			})
		})

		Convey("When fetching the event summary", func() {
			summary, err := svc.EventSummary(ctx, "game-1")

			Convey("Then it reflects the single append", func() {
				So(err, ShouldBeNil)
				So(summary.Count, ShouldEqual, 1)
				So(summary.EliteCount, ShouldEqual, 1)
			})
		})
	})
}

func TestService_ConcurrentCompute(t *testing.T) {
	Convey("Given two concurrent computes racing past an empty cache", t, func() {
		src := &fakeSource{state: eliteState()}
		store := repository.NewMemoryStore()
		svc := startService(t,
			service.WithSource(src),
			service.WithStore(store),
		)
		ctx := context.Background()

		var wg sync.WaitGroup
		for i := 0; i < 2; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, _ = svc.ComputeMoment(ctx, "game-race")
			}()
		}
		wg.Wait()

		Convey("Then the summary count equals the number of appends", func() {
			summary, err := svc.EventSummary(ctx, "game-race")
			So(err, ShouldBeNil)
			So(summary.Count, ShouldEqual, store.Count(ctx))
			So(summary.Count, ShouldBeBetweenOrEqual, 1, 2)
		})
	})
}
