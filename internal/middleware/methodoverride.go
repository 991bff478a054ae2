// Classfront - Course Storefront Web Front End
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/classfront

package middleware

import (
	"mime"
	"net/http"
	"strings"
)

const (
	// MethodField is the form field carrying the spoofed method.
	MethodField = "_method"
	// MethodOverrideHeader is honoured for non-form clients.
	MethodOverrideHeader = "X-HTTP-Method-Override"
)

var overridableMethods = map[string]struct{}{
	http.MethodPut:    {},
	http.MethodPatch:  {},
	http.MethodDelete: {},
}

// MethodOverride rewrites POST requests carrying a _method form field or an
// X-HTTP-Method-Override header to PUT, PATCH or DELETE. Browsers and the
// Inertia client submit file uploads as multipart POST, so updates with a
// thumbnail or video arrive this way.
//
// Form bodies are parsed here, bounded by maxMemory for multipart, and stay
// available to later handlers through r.Form and r.MultipartForm.
func MethodOverride(maxMemory int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				next.ServeHTTP(w, r)
				return
			}

			method := r.Header.Get(MethodOverrideHeader)
			if method == "" && isFormRequest(r) {
				if err := parseForm(r, maxMemory); err != nil {
					http.Error(w, "Request body too large or malformed", http.StatusBadRequest)
					return
				}
				method = r.PostFormValue(MethodField)
			}

			method = strings.ToUpper(strings.TrimSpace(method))
			if _, ok := overridableMethods[method]; ok {
				r.Method = method
			}
			next.ServeHTTP(w, r)
		})
	}
}

func isFormRequest(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return false
	}
	return mediaType == "application/x-www-form-urlencoded" || mediaType == "multipart/form-data"
}

func parseForm(r *http.Request, maxMemory int64) error {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		return r.ParseMultipartForm(maxMemory)
	}
	return r.ParseForm()
}
