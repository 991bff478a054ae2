// Classfront - Course Storefront Web Front End
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/classfront

package inertia

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/classfront/internal/metrics"
)

func TestRedirect(t *testing.T) {
	t.Parallel()

	tests := []struct {
		method string
		want   int
	}{
		{http.MethodGet, http.StatusFound},
		{http.MethodPost, http.StatusFound},
		{http.MethodPut, http.StatusSeeOther},
		{http.MethodPatch, http.StatusSeeOther},
		{http.MethodDelete, http.StatusSeeOther},
	}
	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			t.Parallel()
			rec := httptest.NewRecorder()
			Redirect(rec, httptest.NewRequest(tt.method, "/cart/1", nil), "/cart")
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
			if rec.Header().Get("Location") != "/cart" {
				t.Errorf("Location = %q", rec.Header().Get("Location"))
			}
		})
	}
}

func TestBack(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		referer string
		want    string
	}{
		{"same host", "http://example.com/courses/7", "http://example.com/courses/7"},
		{"relative", "/login", "/login"},
		{"foreign host", "https://evil.example.net/phish", "/"},
		{"missing", "", "/"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(http.MethodPost, "/login", nil)
			if tt.referer != "" {
				req.Header.Set("Referer", tt.referer)
			}
			rec := httptest.NewRecorder()
			Back(rec, req, "/")
			if rec.Code != http.StatusFound {
				t.Errorf("status = %d", rec.Code)
			}
			if got := rec.Header().Get("Location"); got != tt.want {
				t.Errorf("Location = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLocation(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderInertia, "true")
	rec := httptest.NewRecorder()
	Location(rec, req, "https://pay.example.com/checkout")
	if rec.Code != http.StatusConflict || rec.Header().Get(HeaderLocation) != "https://pay.example.com/checkout" {
		t.Errorf("inertia location = %d %q", rec.Code, rec.Header().Get(HeaderLocation))
	}

	rec = httptest.NewRecorder()
	Location(rec, httptest.NewRequest(http.MethodGet, "/", nil), "/cart")
	if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/cart" {
		t.Errorf("plain location = %d %q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestRendererError(t *testing.T) {
	t.Parallel()

	r := newTestRenderer(t, nil)
	rec := httptest.NewRecorder()
	r.Error(rec, httptest.NewRequest(http.MethodGet, "/courses/x", nil), http.StatusNotFound, "Course <b>not</b> found")

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "404") || !strings.Contains(body, "Course &lt;b&gt;not&lt;/b&gt; found") {
		t.Errorf("error page = %s", body)
	}
	if !strings.Contains(body, "Not Found - Classfront") {
		t.Error("error page title missing")
	}

	rec = httptest.NewRecorder()
	r.Error(rec, httptest.NewRequest(http.MethodGet, "/", nil), http.StatusForbidden, "")
	if !strings.Contains(rec.Body.String(), "Forbidden") {
		t.Error("empty message should fall back to the status text")
	}
}

func TestVersionMiddleware(t *testing.T) {
	t.Parallel()

	r := newTestRenderer(t, nil)
	h := r.VersionMiddleware(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name     string
		method   string
		inertia  bool
		version  string
		wantCode int
	}{
		{"stale inertia get", http.MethodGet, true, "old", http.StatusConflict},
		{"current inertia get", http.MethodGet, true, "abc123", http.StatusNoContent},
		{"stale inertia post", http.MethodPost, true, "old", http.StatusNoContent},
		{"plain get", http.MethodGet, false, "", http.StatusNoContent},
	}

	before := testutil.ToFloat64(metrics.InertiaVersionConflicts)
	conflicts := 0
	for _, tt := range tests {
		req := httptest.NewRequest(tt.method, "/courses?page=2", nil)
		if tt.inertia {
			req.Header.Set(HeaderInertia, "true")
			req.Header.Set(HeaderVersion, tt.version)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != tt.wantCode {
			t.Errorf("%s: status = %d, want %d", tt.name, rec.Code, tt.wantCode)
		}
		if tt.wantCode == http.StatusConflict {
			conflicts++
			if got := rec.Header().Get(HeaderLocation); got != "http://example.com/courses?page=2" {
				t.Errorf("%s: X-Inertia-Location = %q", tt.name, got)
			}
		}
	}
	if delta := testutil.ToFloat64(metrics.InertiaVersionConflicts) - before; delta < float64(conflicts) {
		t.Errorf("version conflict counter delta = %v, want >= %d", delta, conflicts)
	}
}
