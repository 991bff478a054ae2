// Classfront - Course Storefront Web Front End
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/classfront

package middleware

import (
	"net/http"

	"github.com/tomtom215/classfront/internal/logging"
)

// RequestIDHeader is read from upstream proxies, echoed to the browser and
// forwarded to the course API.
const RequestIDHeader = "X-Request-ID"

const maxRequestIDLength = 128

// RequestID puts a request ID in the logging context and the response
// headers. A well-formed ID from an upstream proxy is kept, anything else is
// replaced with a fresh UUID.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if !validRequestID(id) {
			id = logging.NewRequestID()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(logging.ContextWithRequestID(r.Context(), id)))
	})
}

// validRequestID accepts short IDs of visible ASCII so they are safe to copy
// into log lines and outgoing headers.
func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] <= ' ' || id[i] > '~' {
			return false
		}
	}
	return true
}
