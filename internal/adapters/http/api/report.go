// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"github.com/okian/cascade/internal/report"
)

// ReportDependencies defines the interface for report operations.
type ReportDependencies interface {
	Report(ctx context.Context) (Report, error)
	Run(ctx context.Context) (Report, error)
}

// ReportHandler handles report and recompute requests.
type ReportHandler struct {
	deps ReportDependencies
}

// NewReportHandler creates a new report handler.
func NewReportHandler(deps ReportDependencies) *ReportHandler {
	return &ReportHandler{deps: deps}
}

var contentTypes = map[string]string{
	report.FormatJSON: "application/json; charset=utf-8",
	report.FormatYAML: "application/yaml; charset=utf-8",
	report.FormatText: "text/plain; charset=utf-8",
}

// HandleGetReport handles GET /report?format=json|yaml|text requests.
func (h *ReportHandler) HandleGetReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	format := r.URL.Query().Get("format")
	if format == "" {
		format = report.FormatJSON
	}
	ct, ok := contentTypes[format]
	if !ok {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: unknown format %q", ErrBadRequest, format))
		return
	}

	rep, err := h.deps.Report(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	var buf bytes.Buffer
	if err := report.Render(&buf, format, rep); err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	w.Header().Set("Content-Type", ct)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// HandleRecompute handles POST /recompute requests: it reloads every track,
// reruns the allocation and returns the new report.
func (h *ReportHandler) HandleRecompute(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	rep, err := h.deps.Run(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}
