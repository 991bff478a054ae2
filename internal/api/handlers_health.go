// Classfront - Course Storefront Web Front End
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/classfront

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/classfront/internal/logging"
)

const readinessTimeout = 2 * time.Second

// HealthStatus is the body of the probe endpoints.
type HealthStatus struct {
	Status       string  `json:"status"`
	Uptime       float64 `json:"uptime_seconds"`
	SessionStore string  `json:"session_store,omitempty"`
	Backend      string  `json:"backend,omitempty"`
}

// Healthz reports that the process is serving.
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthStatus{
		Status: "alive",
		Uptime: time.Since(h.startTime).Seconds(),
	})
}

// Readyz reports whether sessions can be read and the API circuit lets
// calls through. Either failing answers 503. The breaker state is reported
// as backend.
func (h *Handler) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	status := HealthStatus{
		Status:       "ready",
		Uptime:       time.Since(h.startTime).Seconds(),
		SessionStore: "ok",
		Backend:      h.api.BreakerState(),
	}
	code := http.StatusOK

	if _, err := h.sessions.Store().Count(ctx); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Readiness: session store unavailable")
		status.SessionStore = "unavailable"
		status.Status = "not_ready"
		code = http.StatusServiceUnavailable
	}
	if !h.api.Available() {
		status.Status = "not_ready"
		code = http.StatusServiceUnavailable
	}

	writeJSON(w, code, status)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Warn().Err(err).Msg("Failed to write JSON response")
	}
}
