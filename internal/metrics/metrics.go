// Classfront - Course Storefront Web Front End
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/classfront

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "classfront_http_requests_total",
			Help: "Total number of HTTP requests served",
		},
		[]string{"method", "route", "status_code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "classfront_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "route"},
	)

	HTTPActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "classfront_http_active_requests",
			Help: "Current number of in-flight HTTP requests",
		},
	)

	HTTPRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "classfront_http_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"limiter"}, // "global", "auth"
	)

	// Backend API Metrics
	BackendRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "classfront_backend_requests_total",
			Help: "Total number of requests sent to the course API",
		},
		[]string{"method", "endpoint", "outcome"}, // outcome: "success", "http_error", "exception", "rejected"
	)

	BackendRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "classfront_backend_request_duration_seconds",
			Help:    "Course API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "endpoint"},
	)

	BackendRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "classfront_backend_retries_total",
			Help: "Total number of course API retries after HTTP 429",
		},
		[]string{"endpoint"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Session Metrics
	SessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "classfront_sessions_active",
			Help: "Number of live visitor sessions in the session store",
		},
	)

	SessionsExpired = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "classfront_sessions_expired_total",
			Help: "Total number of sessions removed by the cleanup loop",
		},
	)

	SessionStoreErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "classfront_session_store_errors_total",
			Help: "Total number of session store failures",
		},
		[]string{"operation"},
	)

	// Inertia Metrics
	InertiaRenders = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "classfront_inertia_renders_total",
			Help: "Total number of Inertia page renders",
		},
		[]string{"component", "mode"}, // mode: "html", "json", "partial"
	)

	InertiaVersionConflicts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "classfront_inertia_version_conflicts_total",
			Help: "Total number of 409 responses caused by a stale asset version",
		},
	)

	// Auth Metrics
	AuthEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "classfront_auth_events_total",
			Help: "Total number of authentication events",
		},
		[]string{"event", "result"}, // event: "login", "register", "logout"; result: "success", "failure"
	)

	AuthzDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "classfront_authz_decisions_total",
			Help: "Total number of authorization decisions",
		},
		[]string{"decision"}, // "allow", "deny"
	)

	CSRFRejections = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "classfront_csrf_rejections_total",
			Help: "Total number of requests rejected with 419 for a CSRF token mismatch",
		},
	)
)

// RecordHTTPRequest records a served request.
func RecordHTTPRequest(method, route string, statusCode int, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// TrackActiveRequest tracks in-flight HTTP requests
func TrackActiveRequest(inc bool) {
	if inc {
		HTTPActiveRequests.Inc()
	} else {
		HTTPActiveRequests.Dec()
	}
}

// RecordBackendRequest records one course API call. endpoint should already
// be normalized with NormalizeEndpoint to keep label cardinality bounded.
func RecordBackendRequest(method, endpoint, outcome string, duration time.Duration) {
	BackendRequestsTotal.WithLabelValues(method, endpoint, outcome).Inc()
	BackendRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordBackendRetry records a retry after a 429 response.
func RecordBackendRetry(endpoint string) {
	BackendRetries.WithLabelValues(endpoint).Inc()
}

// RecordAuthEvent records a login, register or logout outcome.
func RecordAuthEvent(event string, success bool) {
	result := "success"
	if !success {
		result = "failure"
	}
	AuthEvents.WithLabelValues(event, result).Inc()
}

// RecordAuthzDecision records an admin authorization decision.
func RecordAuthzDecision(allowed bool) {
	if allowed {
		AuthzDecisions.WithLabelValues("allow").Inc()
		return
	}
	AuthzDecisions.WithLabelValues("deny").Inc()
}

// RecordInertiaRender records a page render.
func RecordInertiaRender(component, mode string) {
	InertiaRenders.WithLabelValues(component, mode).Inc()
}

// NormalizeEndpoint replaces numeric and UUID-like path segments with ":id"
// so that "courses/42/videos" and "courses/7/videos" share a label.
func NormalizeEndpoint(endpoint string) string {
	if endpoint == "" {
		return "/"
	}
	out := make([]byte, 0, len(endpoint))
	start := 0
	if endpoint[0] != '/' {
		out = append(out, '/')
	}
	for i := 0; i <= len(endpoint); i++ {
		if i < len(endpoint) && endpoint[i] != '/' && endpoint[i] != '?' {
			continue
		}
		segment := endpoint[start:i]
		if isIdentifier(segment) {
			out = append(out, ":id"...)
		} else {
			out = append(out, segment...)
		}
		if i == len(endpoint) || endpoint[i] == '?' {
			break
		}
		out = append(out, '/')
		start = i + 1
	}
	return string(out)
}

func isIdentifier(segment string) bool {
	if segment == "" {
		return false
	}
	digits := true
	for i := 0; i < len(segment); i++ {
		if segment[i] < '0' || segment[i] > '9' {
			digits = false
			break
		}
	}
	if digits {
		return true
	}
	// 24 hex chars (Mongo ObjectID) or 36 chars with dashes (UUID)
	if len(segment) != 24 && len(segment) != 36 {
		return false
	}
	for i := 0; i < len(segment); i++ {
		c := segment[i]
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
		case c == '-' && len(segment) == 36:
		default:
			return false
		}
	}
	return true
}
