// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
)

// LiveDependencies defines the interface for live game listings.
type LiveDependencies interface {
	LiveGames(ctx context.Context) []string
}

// LiveHandler handles live game listing requests.
type LiveHandler struct {
	deps LiveDependencies
}

// NewLiveHandler creates a new live handler.
func NewLiveHandler(deps LiveDependencies) *LiveHandler {
	return &LiveHandler{deps: deps}
}

type liveResponse struct {
	EventIDs []string `json:"event_ids"`
}

// HandleGetLive handles GET /live requests. Always 200; a provider outage
// shows up as an empty list.
func (h *LiveHandler) HandleGetLive(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, liveResponse{EventIDs: h.deps.LiveGames(r.Context())})
}
