// Classfront - Course Storefront Web Front End
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/classfront

package auth

import "net/http"

// Guard redirect targets.
const (
	LoginPath = "/login"
	HomePath  = "/"
)

// RequireAuth sends guests to the login page, remembering GET URLs so login
// can return there.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session := SessionFromContext(r.Context())
		if session == nil || !session.IsAuthenticated() {
			if session != nil && r.Method == http.MethodGet {
				session.RememberIntended(r.URL.RequestURI())
			}
			http.Redirect(w, r, LoginPath, RedirectStatus(r.Method))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireGuest sends signed-in visitors away from login and register pages.
func RequireGuest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session := SessionFromContext(r.Context())
		if session != nil && session.IsAuthenticated() {
			http.Redirect(w, r, HomePath, RedirectStatus(r.Method))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RedirectStatus picks 303 after PUT, PATCH and DELETE so the browser
// follows with GET, and 302 otherwise.
func RedirectStatus(method string) int {
	switch method {
	case http.MethodPut, http.MethodPatch, http.MethodDelete:
		return http.StatusSeeOther
	default:
		return http.StatusFound
	}
}
