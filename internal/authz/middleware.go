// Classfront - Course Storefront Web Front End
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/classfront

package authz

import (
	"net/http"

	"github.com/tomtom215/classfront/internal/auth"
	"github.com/tomtom215/classfront/internal/logging"
	"github.com/tomtom215/classfront/internal/metrics"
)

// AdminDeniedMessage is shown when a non-admin reaches the admin area.
const AdminDeniedMessage = "Unauthorized. Admin access required."

// DeniedHandler writes the response for a refused request.
type DeniedHandler func(w http.ResponseWriter, r *http.Request, status int, message string)

// Middleware gates routes on the session role.
type Middleware struct {
	enforcer *Enforcer
	denied   DeniedHandler
	security *logging.SecurityLogger
}

// NewMiddleware creates a new authorization middleware. A nil denied
// handler falls back to a plain-text error.
func NewMiddleware(enforcer *Enforcer, denied DeniedHandler) *Middleware {
	if denied == nil {
		denied = func(w http.ResponseWriter, r *http.Request, status int, message string) {
			http.Error(w, message, status)
		}
	}
	return &Middleware{
		enforcer: enforcer,
		denied:   denied,
		security: logging.NewSecurityLogger(),
	}
}

// RequireAdmin aborts with 403 unless the session's role may use the
// requested path and method.
func (m *Middleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session := auth.SessionFromContext(r.Context())
		if session == nil || !session.IsAuthenticated() {
			m.deny(w, r, session, "no session user")
			return
		}

		allowed, err := m.enforcer.Enforce(session.Role, r.URL.Path, r.Method)
		if err != nil {
			logging.Ctx(r.Context()).Error().Err(err).Msg("Authorization error")
			m.denied(w, r, http.StatusInternalServerError, "Internal server error")
			return
		}
		if !allowed {
			m.deny(w, r, session, "role "+session.Role+" not permitted")
			return
		}

		metrics.RecordAuthzDecision(true)
		next.ServeHTTP(w, r)
	})
}

func (m *Middleware) deny(w http.ResponseWriter, r *http.Request, session *auth.Session, reason string) {
	metrics.RecordAuthzDecision(false)
	event := &logging.SecurityEvent{
		Event:     logging.EventAdminDenied,
		IPAddress: r.RemoteAddr,
		UserAgent: r.UserAgent(),
		Path:      r.URL.Path,
		Success:   false,
		Error:     reason,
	}
	if session != nil {
		event.UserID = session.UserID
		event.SessionID = session.ID
	}
	m.security.LogEvent(event)
	m.denied(w, r, http.StatusForbidden, AdminDeniedMessage)
}
