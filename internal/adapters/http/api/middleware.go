// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/okian/cascade/pkg/metrics"
)

// errorClass labels a failed response for the error metrics.
type errorClass struct {
	kind     string
	severity string
}

// Statuses the handlers produce on purpose. Anything else falls back to
// the generic client or server class.
var knownErrors = map[int]errorClass{
	http.StatusBadRequest:          {"bad_request", "medium"},
	http.StatusNotFound:            {"not_found", "medium"},
	http.StatusMethodNotAllowed:    {"method_not_allowed", "medium"},
	http.StatusConflict:            {"conflict", "low"},
	http.StatusServiceUnavailable:  {"not_ready", "low"},
	http.StatusInternalServerError: {"internal_error", "high"},
}

// MetricsMiddleware wraps HTTP handlers to record Prometheus metrics.
func MetricsMiddleware(next http.HandlerFunc, endpoint string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		durationMs := float64(time.Since(start).Microseconds()) / 1000
		code := strconv.Itoa(wrapped.statusCode)
		metrics.RecordHTTPRequest(endpoint, r.Method, code)
		metrics.RecordHTTPRequestDuration(endpoint, r.Method, code, durationMs)

		if wrapped.statusCode >= http.StatusBadRequest {
			class := classify(wrapped.statusCode)
			metrics.RecordErrorByEndpoint(endpoint, r.Method, class.kind)
			metrics.RecordErrorByType(class.kind, class.severity)
			metrics.RecordErrorLatency("http", class.kind, durationMs)
		}
	}
}

func classify(statusCode int) errorClass {
	if c, ok := knownErrors[statusCode]; ok {
		return c
	}
	if statusCode >= http.StatusInternalServerError {
		return errorClass{"server_error", "high"}
	}
	return errorClass{"client_error", "medium"}
}

// responseWriter captures the status code written by the handler.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	if err != nil {
		return n, fmt.Errorf("failed to write response: %w", err)
	}
	return n, nil
}
