// Classfront - Course Storefront Web Front End
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/classfront

package assets

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestVite_Static(t *testing.T) {
	t.Parallel()

	base := writePublic(t, testManifest)
	public := filepath.Join(base, "public")
	if err := os.MkdirAll(filepath.Join(public, "build", "assets"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(public, "build", "assets", "app-4f2a.js"), []byte("console.log(1)"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(public, "robots.txt"), []byte("User-agent: *"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(public, "hot"), []byte("http://localhost:5173"), 0o600); err != nil {
		t.Fatal(err)
	}

	v, err := New(assetsConfig(base), "")
	if err != nil {
		t.Fatal(err)
	}
	fallback := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	h := v.Static(fallback)

	tests := []struct {
		name, method, path string
		wantCode           int
		wantCache          string
	}{
		{"built asset", http.MethodGet, "/build/assets/app-4f2a.js", http.StatusOK, "public, max-age=31536000, immutable"},
		{"public file", http.MethodGet, "/robots.txt", http.StatusOK, ""},
		{"missing file", http.MethodGet, "/courses", http.StatusTeapot, ""},
		{"directory", http.MethodGet, "/build/", http.StatusTeapot, ""},
		{"root", http.MethodGet, "/", http.StatusTeapot, ""},
		{"hot file hidden", http.MethodGet, "/hot", http.StatusTeapot, ""},
		{"traversal", http.MethodGet, "/../go.mod", http.StatusTeapot, ""},
		{"post", http.MethodPost, "/robots.txt", http.StatusTeapot, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(tt.method, "/", nil)
			req.URL.Path = tt.path
			h.ServeHTTP(rec, req)
			if rec.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			if got := rec.Header().Get("Cache-Control"); got != tt.wantCache {
				t.Errorf("Cache-Control = %q, want %q", got, tt.wantCache)
			}
		})
	}
}
