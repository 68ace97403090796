package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/okian/crux/internal/adapters/feed"
	"github.com/okian/crux/internal/adapters/http/api"
	"github.com/okian/crux/internal/adapters/repository"
	"github.com/okian/crux/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

// Mock implementations for testing
type mockDependencies struct {
	moment     model.Moment
	computeErr error
	latestErr  error
	live       []string
	history    []model.Moment
	top        []model.Moment
	summary    model.EventSummary
	summaryErr error
}

func (m *mockDependencies) ComputeMoment(ctx context.Context, eventID string) (model.Moment, error) {
	if m.computeErr != nil {
		return model.Moment{}, m.computeErr
	}
	out := m.moment
	out.EventID = eventID
	return out, nil
}

func (m *mockDependencies) LiveGames(ctx context.Context) []string {
	if m.live == nil {
		return []string{}
	}
	return m.live
}

func (m *mockDependencies) LatestMoment(ctx context.Context, eventID string) (model.Moment, error) {
	if m.latestErr != nil {
		return model.Moment{}, m.latestErr
	}
	out := m.moment
	out.EventID = eventID
	return out, nil
}

func (m *mockDependencies) History(ctx context.Context, subjectID string, limit int) []model.Moment {
	if limit < len(m.history) {
		return m.history[:limit]
	}
	return m.history
}

func (m *mockDependencies) TopMoments(ctx context.Context, window time.Duration, limit int) []model.Moment {
	if limit < len(m.top) {
		return m.top[:limit]
	}
	return m.top
}

func (m *mockDependencies) EventSummary(ctx context.Context, eventID string) (model.EventSummary, error) {
	if m.summaryErr != nil {
		return model.EventSummary{}, m.summaryErr
	}
	return m.summary, nil
}

type mockStatsProvider struct {
	stats map[string]interface{}
}

func (m *mockStatsProvider) GetStats() map[string]interface{} {
	return m.stats
}

func sampleMoment() model.Moment {
	return model.Moment{
		ID:        "m-1",
		EventID:   "game-1",
		SubjectID: "pitcher-1",
		Kind:      "pitch",
		Composite: 72.5,
		Band:      model.BandElite,
		CreatedAt: time.Now().UTC(),
	}
}

func newMux(deps *mockDependencies) *http.ServeMux {
	server := api.NewServer(deps, &mockStatsProvider{stats: map[string]interface{}{"started": true}}, api.Limits{})
	mux := http.NewServeMux()
	server.Register(context.Background(), mux)
	return mux
}

func TestServer_Register(t *testing.T) {
	Convey("Given a new API server", t, func() {
		mux := newMux(&mockDependencies{moment: sampleMoment()})

		Convey("Then the health endpoint should be accessible", func() {
			req := httptest.NewRequest("GET", "/healthz", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("And the stats endpoint should be accessible", func() {
			req := httptest.NewRequest("GET", "/stats", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("And the metrics endpoint should be accessible", func() {
			req := httptest.NewRequest("GET", "/metrics", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusOK)
		})
	})
}

func TestComputeEndpoint(t *testing.T) {
	Convey("Given a server over a healthy pipeline", t, func() {
		mux := newMux(&mockDependencies{moment: sampleMoment()})

		Convey("When posting a compute request", func() {
			req := httptest.NewRequest("POST", "/compute/game-7", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then the moment is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var m model.Moment
				So(json.Unmarshal(w.Body.Bytes(), &m), ShouldBeNil)
				So(m.EventID, ShouldEqual, "game-7")
				So(m.Band, ShouldEqual, model.BandElite)
			})
		})

		Convey("When fetching the latest computed moment", func() {
			req := httptest.NewRequest("GET", "/compute/game-7", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then the persisted moment is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
			})
		})

		Convey("When the event id is missing", func() {
			req := httptest.NewRequest("POST", "/compute/", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then the request is rejected", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})
	})

	Convey("Given a server over a failing pipeline", t, func() {
		Convey("When no active situation exists", func() {
			mux := newMux(&mockDependencies{computeErr: feed.ErrNoActiveSituation})
			req := httptest.NewRequest("POST", "/compute/game-idle", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then a 404 with the situation code is returned", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
				So(w.Body.String(), ShouldContainSubstring, "no_active_situation")
			})
		})

		Convey("When the upstream is unavailable", func() {
			mux := newMux(&mockDependencies{computeErr: feed.ErrUpstreamUnavailable})
			req := httptest.NewRequest("POST", "/compute/game-1", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then a 503 is returned", func() {
				So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
				So(w.Body.String(), ShouldContainSubstring, "upstream_unavailable")
			})
		})

		Convey("When no moment has been persisted yet", func() {
			mux := newMux(&mockDependencies{latestErr: repository.ErrNotFound})
			req := httptest.NewRequest("GET", "/compute/game-1", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then a 404 is returned", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}

func TestLiveEndpoint(t *testing.T) {
	Convey("Given a server with live games", t, func() {
		mux := newMux(&mockDependencies{live: []string{"game-1", "game-2"}})

		Convey("When listing live games", func() {
			req := httptest.NewRequest("GET", "/live", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then the ids are returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, "game-1")
				So(w.Body.String(), ShouldContainSubstring, "game-2")
			})
		})
	})

	Convey("Given a server with no live games", t, func() {
		mux := newMux(&mockDependencies{})

		Convey("When listing live games", func() {
			req := httptest.NewRequest("GET", "/live", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then an empty list is still a 200", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, `"event_ids":[]`)
			})
		})
	})
}

func TestHistoryEndpoint(t *testing.T) {
	Convey("Given a server with pitcher history", t, func() {
		mux := newMux(&mockDependencies{history: []model.Moment{sampleMoment()}})

		Convey("When requesting history with a valid limit", func() {
			req := httptest.NewRequest("GET", "/history/pitcher-1?limit=5", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then the moments are returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
			})
		})

		Convey("When the limit is omitted", func() {
			req := httptest.NewRequest("GET", "/history/pitcher-1", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then the default applies", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
			})
		})

		Convey("When the limit is not a number", func() {
			req := httptest.NewRequest("GET", "/history/pitcher-1?limit=abc", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then the request is rejected", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When the limit exceeds the maximum", func() {
			req := httptest.NewRequest("GET", "/history/pitcher-1?limit=10000", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then the request is rejected", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(w.Body.String(), ShouldContainSubstring, "limit_exceeded")
			})
		})

		Convey("When the subject id is missing", func() {
			req := httptest.NewRequest("GET", "/history/", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then the request is rejected", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})
	})
}

func TestLeaderboardEndpoint(t *testing.T) {
	Convey("Given a server with ranked moments", t, func() {
		mux := newMux(&mockDependencies{top: []model.Moment{sampleMoment()}})

		Convey("When requesting the leaderboard with defaults", func() {
			req := httptest.NewRequest("GET", "/leaderboard", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then the moments are returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
			})
		})

		Convey("When requesting with explicit window and limit", func() {
			req := httptest.NewRequest("GET", "/leaderboard?window_days=7&limit=10", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then the request succeeds", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
			})
		})

		Convey("When the window exceeds the maximum", func() {
			req := httptest.NewRequest("GET", "/leaderboard?window_days=9999", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then the request is rejected", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(w.Body.String(), ShouldContainSubstring, "window_exceeded")
			})
		})

		Convey("When the limit is zero", func() {
			req := httptest.NewRequest("GET", "/leaderboard?limit=0", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then the request is rejected", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})
	})
}

func TestSummaryEndpoint(t *testing.T) {
	Convey("Given a server with an event summary", t, func() {
		mux := newMux(&mockDependencies{summary: model.EventSummary{
			EventID:       "game-1",
			Count:         3,
			MaxComposite:  81.2,
			MeanComposite: 64.4,
			EliteCount:    1,
		}})

		Convey("When fetching the summary", func() {
			req := httptest.NewRequest("GET", "/summary/game-1", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then the aggregate is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var s model.EventSummary
				So(json.Unmarshal(w.Body.Bytes(), &s), ShouldBeNil)
				So(s.Count, ShouldEqual, 3)
				So(s.EliteCount, ShouldEqual, 1)
			})
		})
	})

	Convey("Given a server with no summary for the event", t, func() {
		mux := newMux(&mockDependencies{summaryErr: repository.ErrNotFound})

		Convey("When fetching the summary", func() {
			req := httptest.NewRequest("GET", "/summary/game-x", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then a 404 is returned", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}
