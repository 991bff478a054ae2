// Classfront - Course Storefront Web Front End
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/classfront

package inertia

import (
	"bytes"
	"net/http"
	"net/url"

	"github.com/tomtom215/classfront/internal/auth"
	"github.com/tomtom215/classfront/internal/logging"
	"github.com/tomtom215/classfront/internal/metrics"
)

// Redirect sends the visitor to target. After PUT, PATCH or DELETE the
// status is 303 so the client follows up with a GET.
func Redirect(w http.ResponseWriter, r *http.Request, target string) {
	http.Redirect(w, r, target, auth.RedirectStatus(r.Method))
}

// Back redirects to the Referer when it points at this host, otherwise to
// fallback.
func Back(w http.ResponseWriter, r *http.Request, fallback string) {
	Redirect(w, r, previousURL(r, fallback))
}

func previousURL(r *http.Request, fallback string) string {
	referer := r.Referer()
	if referer == "" {
		return fallback
	}
	u, err := url.Parse(referer)
	if err != nil {
		return fallback
	}
	if u.Host != "" && u.Host != r.Host {
		return fallback
	}
	if u.Host == "" && u.Path == "" {
		return fallback
	}
	return referer
}

// Location forces a full page visit. The Inertia client gets 409 with
// X-Inertia-Location, anything else a plain redirect.
func Location(w http.ResponseWriter, r *http.Request, target string) {
	if IsInertia(r) {
		w.Header().Set(HeaderLocation, target)
		w.WriteHeader(http.StatusConflict)
		return
	}
	http.Redirect(w, r, target, http.StatusFound)
}

type errorData struct {
	AppName    string
	Status     int
	StatusText string
	Message    string
}

// Error writes an HTML error page. The Inertia client shows non-Inertia
// responses in a modal, so Inertia requests get the same page.
func (r *Renderer) Error(w http.ResponseWriter, req *http.Request, status int, message string) {
	if message == "" {
		message = http.StatusText(status)
	}
	var buf bytes.Buffer
	err := r.errorPage.Execute(&buf, errorData{
		AppName:    r.appName,
		Status:     status,
		StatusText: http.StatusText(status),
		Message:    message,
	})
	if err != nil {
		logging.Ctx(req.Context()).Error().Err(err).Msg("Failed to render error page")
		http.Error(w, message, status)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// VersionMiddleware answers an Inertia GET carrying a stale asset version
// with 409 and X-Inertia-Location so the client reloads the page in full.
func (r *Renderer) VersionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.Method == http.MethodGet && IsInertia(req) {
			if current := r.Version(); req.Header.Get(HeaderVersion) != current {
				metrics.InertiaVersionConflicts.Inc()
				logging.Ctx(req.Context()).Debug().
					Str("client_version", req.Header.Get(HeaderVersion)).
					Str("server_version", current).
					Msg("Inertia asset version changed")
				Location(w, req, requestURL(req))
				return
			}
		}
		next.ServeHTTP(w, req)
	})
}

func requestURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + r.Host + r.URL.RequestURI()
}
