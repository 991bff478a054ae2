// Classfront - Course Storefront Web Front End
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/classfront

package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	io_prometheus_client "github.com/prometheus/client_model/go"
)

// histogramCount extracts the sample count of one histogram series.
func histogramCount(t *testing.T, vec *prometheus.HistogramVec, labels ...string) uint64 {
	t.Helper()
	obs, err := vec.GetMetricWithLabelValues(labels...)
	if err != nil {
		t.Fatalf("failed to get histogram: %v", err)
	}
	var m io_prometheus_client.Metric
	if err := obs.(prometheus.Histogram).Write(&m); err != nil {
		t.Fatalf("failed to write metric: %v", err)
	}
	return m.GetHistogram().GetSampleCount()
}

func TestNormalizeEndpoint(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"", "/"},
		{"/", "/"},
		{"courses", "/courses"},
		{"/courses/42", "/courses/:id"},
		{"courses/42/videos", "/courses/:id/videos"},
		{"/orders/65f1c2a9e4b0a1b2c3d4e5f6/status", "/orders/:id/status"},
		{"/videos/550e8400-e29b-41d4-a716-446655440000", "/videos/:id"},
		{"/courses?page=2", "/courses"},
		{"/auth/login", "/auth/login"},
		{"/courses/featured", "/courses/featured"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			if got := NormalizeEndpoint(tt.in); got != tt.want {
				t.Errorf("NormalizeEndpoint(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestRecordBackendRequest(t *testing.T) {
	before := testutil.ToFloat64(BackendRequestsTotal.WithLabelValues("GET", "/courses/:id", "success"))
	samplesBefore := histogramCount(t, BackendRequestDuration, "GET", "/courses/:id")

	RecordBackendRequest("GET", "/courses/:id", "success", 20*time.Millisecond)
	RecordBackendRequest("GET", "/courses/:id", "success", 40*time.Millisecond)

	after := testutil.ToFloat64(BackendRequestsTotal.WithLabelValues("GET", "/courses/:id", "success"))
	if after-before != 2 {
		t.Errorf("backend request counter delta = %v, want 2", after-before)
	}
	if d := histogramCount(t, BackendRequestDuration, "GET", "/courses/:id") - samplesBefore; d != 2 {
		t.Errorf("duration samples delta = %d, want 2", d)
	}
}

func TestRecordHTTPRequest(t *testing.T) {
	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("POST", "/login", "302"))
	samplesBefore := histogramCount(t, HTTPRequestDuration, "POST", "/login")

	RecordHTTPRequest("POST", "/login", 302, 5*time.Millisecond)

	after := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("POST", "/login", "302"))
	if after-before != 1 {
		t.Errorf("http request counter delta = %v, want 1", after-before)
	}
	if d := histogramCount(t, HTTPRequestDuration, "POST", "/login") - samplesBefore; d != 1 {
		t.Errorf("duration samples delta = %d, want 1", d)
	}
}

func TestTrackActiveRequest(t *testing.T) {
	before := testutil.ToFloat64(HTTPActiveRequests)

	TrackActiveRequest(true)
	if got := testutil.ToFloat64(HTTPActiveRequests); got != before+1 {
		t.Errorf("active requests = %v, want %v", got, before+1)
	}
	TrackActiveRequest(false)
	if got := testutil.ToFloat64(HTTPActiveRequests); got != before {
		t.Errorf("active requests = %v, want %v", got, before)
	}
}

func TestRecordAuthEvent(t *testing.T) {
	successBefore := testutil.ToFloat64(AuthEvents.WithLabelValues("register", "success"))
	failureBefore := testutil.ToFloat64(AuthEvents.WithLabelValues("register", "failure"))

	RecordAuthEvent("register", true)
	RecordAuthEvent("register", false)
	RecordAuthEvent("register", false)

	if d := testutil.ToFloat64(AuthEvents.WithLabelValues("register", "success")) - successBefore; d != 1 {
		t.Errorf("success delta = %v, want 1", d)
	}
	if d := testutil.ToFloat64(AuthEvents.WithLabelValues("register", "failure")) - failureBefore; d != 2 {
		t.Errorf("failure delta = %v, want 2", d)
	}
}

func TestRecordAuthzDecision(t *testing.T) {
	denyBefore := testutil.ToFloat64(AuthzDecisions.WithLabelValues("deny"))
	RecordAuthzDecision(false)
	RecordAuthzDecision(true)
	if d := testutil.ToFloat64(AuthzDecisions.WithLabelValues("deny")) - denyBefore; d != 1 {
		t.Errorf("deny delta = %v, want 1", d)
	}
}
