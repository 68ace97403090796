// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/okian/crux/internal/domain/model"
	"github.com/okian/crux/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// ComputeMoment runs the difficulty pipeline for one event.
	ComputeMoment(ctx context.Context, eventID string) (model.Moment, error)

	// LiveGames lists in-progress event ids. Degrades to empty on outage.
	LiveGames(ctx context.Context) []string

	// Read operations over persisted moments.
	LatestMoment(ctx context.Context, eventID string) (model.Moment, error)
	History(ctx context.Context, subjectID string, limit int) []model.Moment
	TopMoments(ctx context.Context, window time.Duration, limit int) []model.Moment
	EventSummary(ctx context.Context, eventID string) (model.EventSummary, error)
}

// Limits bounds the query parameters the read endpoints accept.
type Limits struct {
	HistoryMaxLimit          int
	LeaderboardMaxLimit      int
	LeaderboardMaxWindowDays int
}

// DefaultLimits are used when a field is zero.
var DefaultLimits = Limits{
	HistoryMaxLimit:          100,
	LeaderboardMaxLimit:      100,
	LeaderboardMaxWindowDays: 30,
}

func (l Limits) withDefaults() Limits {
	if l.HistoryMaxLimit <= 0 {
		l.HistoryMaxLimit = DefaultLimits.HistoryMaxLimit
	}
	if l.LeaderboardMaxLimit <= 0 {
		l.LeaderboardMaxLimit = DefaultLimits.LeaderboardMaxLimit
	}
	if l.LeaderboardMaxWindowDays <= 0 {
		l.LeaderboardMaxWindowDays = DefaultLimits.LeaderboardMaxWindowDays
	}
	return l
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	computeHandler     *ComputeHandler
	liveHandler        *LiveHandler
	historyHandler     *HistoryHandler
	leaderboardHandler *LeaderboardHandler
	summaryHandler     *SummaryHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, limits Limits) *Server {
	limits = limits.withDefaults()
	return &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(statsProvider),
		computeHandler:     NewComputeHandler(deps),
		liveHandler:        NewLiveHandler(deps),
		historyHandler:     NewHistoryHandler(deps, limits.HistoryMaxLimit),
		leaderboardHandler: NewLeaderboardHandler(deps, limits.LeaderboardMaxLimit, limits.LeaderboardMaxWindowDays),
		summaryHandler:     NewSummaryHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	// Specific paths first (most specific to least specific)
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/live", MetricsMiddleware(s.liveHandler.HandleGetLive, "live"))
	mux.HandleFunc("/compute/", MetricsMiddleware(s.computeHandler.HandleCompute, "compute"))
	mux.HandleFunc("/history/", MetricsMiddleware(s.historyHandler.HandleGetHistory, "history"))
	mux.HandleFunc("/leaderboard", MetricsMiddleware(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard"))
	mux.HandleFunc("/summary/", MetricsMiddleware(s.summaryHandler.HandleGetSummary, "summary"))
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
