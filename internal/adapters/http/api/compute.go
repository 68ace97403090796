// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/okian/crux/internal/adapters/feed"
	"github.com/okian/crux/internal/adapters/repository"
	"github.com/okian/crux/internal/domain/calibration"
	"github.com/okian/crux/internal/domain/model"
)

// ComputeDependencies defines the interface for compute operations.
type ComputeDependencies interface {
	ComputeMoment(ctx context.Context, eventID string) (model.Moment, error)
	LatestMoment(ctx context.Context, eventID string) (model.Moment, error)
}

// ComputeHandler handles moment computation requests.
type ComputeHandler struct {
	deps ComputeDependencies
}

// NewComputeHandler creates a new compute handler.
func NewComputeHandler(deps ComputeDependencies) *ComputeHandler {
	return &ComputeHandler{deps: deps}
}

// HandleCompute handles POST /compute/{event_id} and GET /compute/{event_id}.
// POST runs the pipeline; GET returns the latest persisted moment.
func (h *ComputeHandler) HandleCompute(w http.ResponseWriter, r *http.Request) {
	const op = "api.compute"
	eventID := strings.TrimPrefix(r.URL.Path, "/compute/")
	if eventID == "" || strings.Contains(eventID, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	switch r.Method {
	case http.MethodPost:
		m, err := h.deps.ComputeMoment(r.Context(), eventID)
		if err != nil {
			writeComputeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, m)
	case http.MethodGet:
		m, err := h.deps.LatestMoment(r.Context(), eventID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				writeError(w, http.StatusNotFound, "not_found", err)
				return
			}
			writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
			return
		}
		writeJSON(w, http.StatusOK, m)
	default:
		http.NotFound(w, r)
	}
}

// writeComputeError maps pipeline failures to their HTTP shape.
func writeComputeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, feed.ErrNoActiveSituation):
		writeError(w, http.StatusNotFound, "no_active_situation", err)
	case errors.Is(err, feed.ErrUpstreamUnavailable):
		writeError(w, http.StatusServiceUnavailable, "upstream_unavailable", err)
	case errors.Is(err, calibration.ErrCalibrationMissing):
		writeError(w, http.StatusInternalServerError, "calibration_missing", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
