// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// TracksDependencies defines the interface for track reads.
type TracksDependencies interface {
	Tracks(ctx context.Context) ([]TrackSummary, error)
	Standings(ctx context.Context, index int) (Standings, error)
}

// TracksHandler handles track requests.
type TracksHandler struct {
	deps TracksDependencies
}

// NewTracksHandler creates a new tracks handler.
func NewTracksHandler(deps TracksDependencies) *TracksHandler {
	return &TracksHandler{deps: deps}
}

// HandleListTracks handles GET /tracks requests.
func (h *TracksHandler) HandleListTracks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	tracks, err := h.deps.Tracks(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tracks)
}

// HandleGetTrack handles GET /tracks/{n} requests, n being 1-based.
func (h *TracksHandler) HandleGetTrack(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	raw := strings.TrimPrefix(r.URL.Path, "/tracks/")
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: track number %q", ErrBadRequest, raw))
		return
	}
	st, err := h.deps.Standings(r.Context(), n)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}
