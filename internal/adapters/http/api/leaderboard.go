// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/okian/crux/internal/domain/model"
)

// Defaults applied when the query parameters are absent.
const (
	defaultLeaderboardLimit  = 10
	defaultLeaderboardWindow = 7
	hoursPerDay              = 24
)

// LeaderboardDependencies defines the interface for leaderboard operations.
type LeaderboardDependencies interface {
	TopMoments(ctx context.Context, window time.Duration, limit int) []model.Moment
}

// LeaderboardHandler handles leaderboard requests.
type LeaderboardHandler struct {
	deps          LeaderboardDependencies
	maxLimit      int
	maxWindowDays int
}

// NewLeaderboardHandler creates a new leaderboard handler.
func NewLeaderboardHandler(deps LeaderboardDependencies, maxLimit, maxWindowDays int) *LeaderboardHandler {
	return &LeaderboardHandler{
		deps:          deps,
		maxLimit:      maxLimit,
		maxWindowDays: maxWindowDays,
	}
}

// HandleGetLeaderboard handles GET /leaderboard?window_days=D&limit=N requests.
func (h *LeaderboardHandler) HandleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_leaderboard"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	limit := defaultLeaderboardLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		n, err := strconv.Atoi(limitStr)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
			return
		}
		limit = n
	}
	if limit > h.maxLimit {
		writeError(w, http.StatusBadRequest, "limit_exceeded", NewKind(op, ErrBadRequest))
		return
	}
	windowDays := defaultLeaderboardWindow
	if windowStr := r.URL.Query().Get("window_days"); windowStr != "" {
		d, err := strconv.Atoi(windowStr)
		if err != nil || d < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
			return
		}
		windowDays = d
	}
	if windowDays > h.maxWindowDays {
		writeError(w, http.StatusBadRequest, "window_exceeded", NewKind(op, ErrBadRequest))
		return
	}
	window := time.Duration(windowDays) * hoursPerDay * time.Hour
	writeJSON(w, http.StatusOK, h.deps.TopMoments(r.Context(), window, limit))
}
