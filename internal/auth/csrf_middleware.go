// Classfront - Course Storefront Web Front End
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/classfront

package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/tomtom215/classfront/internal/logging"
	"github.com/tomtom215/classfront/internal/metrics"
)

// CSRF protection errors
var (
	// ErrCSRFTokenMissing indicates no CSRF token was provided.
	ErrCSRFTokenMissing = errors.New("CSRF token missing")

	// ErrCSRFTokenInvalid indicates the CSRF token doesn't match the session.
	ErrCSRFTokenInvalid = errors.New("CSRF token invalid")
)

// StatusPageExpired is the status returned for a stale or missing CSRF token.
const StatusPageExpired = 419

// CSRFConfig holds configuration for CSRF protection middleware.
type CSRFConfig struct {
	// CookieName is the readable cookie the frontend's HTTP client copies
	// into HeaderNames[0] (default: "XSRF-TOKEN").
	CookieName string

	// HeaderNames are checked in order for the submitted token
	// (default: X-XSRF-TOKEN, X-CSRF-TOKEN).
	HeaderNames []string

	// FormFieldName is the form field holding the token (default: "_token").
	FormFieldName string

	// CookiePath is the path for the CSRF cookie (default: "/").
	CookiePath string

	// CookieDomain is the domain for the CSRF cookie.
	CookieDomain string

	// CookieSecure sets the Secure flag on the cookie.
	CookieSecure bool

	// CookieSameSite sets the SameSite attribute (default: Lax).
	CookieSameSite http.SameSite

	// TokenLength is the byte length of the CSRF token (default: 32).
	TokenLength int

	// TokenTTL is the cookie lifetime; the token itself lives as long as
	// the session (default: 2h).
	TokenTTL time.Duration

	// ExemptPaths are path prefixes that skip validation.
	ExemptPaths []string

	// ExemptMethods skip validation (default: GET, HEAD, OPTIONS, TRACE).
	ExemptMethods []string

	// ErrorHandler is called when CSRF validation fails.
	// If nil, responds 419 Page Expired.
	ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)
}

// DefaultCSRFConfig returns the default CSRF configuration.
func DefaultCSRFConfig() *CSRFConfig {
	return &CSRFConfig{
		CookieName:     "XSRF-TOKEN",
		HeaderNames:    []string{"X-XSRF-TOKEN", "X-CSRF-TOKEN"},
		FormFieldName:  "_token",
		CookiePath:     "/",
		CookieSameSite: http.SameSiteLaxMode,
		TokenLength:    32,
		TokenTTL:       2 * time.Hour,
		ExemptMethods:  []string{http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace},
	}
}

// CSRFMiddleware validates a per-session token on state-changing requests.
// The token lives in the session and is mirrored in a readable cookie.
type CSRFMiddleware struct {
	config   *CSRFConfig
	security *logging.SecurityLogger
}

// NewCSRFMiddleware creates a CSRF middleware. Must run inside
// SessionManager.Middleware.
func NewCSRFMiddleware(config *CSRFConfig) *CSRFMiddleware {
	if config == nil {
		config = DefaultCSRFConfig()
	}
	defaults := DefaultCSRFConfig()
	if config.CookieName == "" {
		config.CookieName = defaults.CookieName
	}
	if len(config.HeaderNames) == 0 {
		config.HeaderNames = defaults.HeaderNames
	}
	if config.FormFieldName == "" {
		config.FormFieldName = defaults.FormFieldName
	}
	if config.CookiePath == "" {
		config.CookiePath = defaults.CookiePath
	}
	if config.TokenLength <= 0 {
		config.TokenLength = defaults.TokenLength
	}
	if config.TokenTTL <= 0 {
		config.TokenTTL = defaults.TokenTTL
	}
	if len(config.ExemptMethods) == 0 {
		config.ExemptMethods = defaults.ExemptMethods
	}

	return &CSRFMiddleware{
		config:   config,
		security: logging.NewSecurityLogger(),
	}
}

// Protect is a middleware that provides CSRF protection.
func (m *CSRFMiddleware) Protect(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session := SessionFromContext(r.Context())
		if session == nil || m.isExemptPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		token := m.ensureToken(session)
		if token == "" {
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		m.setTokenCookie(w, token)

		if !m.isExemptMethod(r.Method) {
			if err := m.validateToken(r, token); err != nil {
				m.handleError(w, r, session, err)
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}

// ensureToken returns the session token, generating it on first use.
func (m *CSRFMiddleware) ensureToken(session *Session) string {
	if session.CSRFToken != "" {
		return session.CSRFToken
	}

	token, err := m.generateToken()
	if err != nil {
		logging.Error().Err(err).Msg("CSRF: failed to generate token")
		return ""
	}
	session.CSRFToken = token
	session.dirty = true
	return token
}

// validateToken compares the submitted token with the session's.
func (m *CSRFMiddleware) validateToken(r *http.Request, expected string) error {
	submitted := m.getTokenFromRequest(r)
	if submitted == "" {
		return ErrCSRFTokenMissing
	}

	if subtle.ConstantTimeCompare([]byte(expected), []byte(submitted)) != 1 {
		return ErrCSRFTokenInvalid
	}
	return nil
}

// getTokenFromRequest extracts the CSRF token from a header or form field.
func (m *CSRFMiddleware) getTokenFromRequest(r *http.Request) string {
	for _, name := range m.config.HeaderNames {
		if token := r.Header.Get(name); token != "" {
			return token
		}
	}

	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "application/x-www-form-urlencoded") ||
		strings.HasPrefix(contentType, "multipart/form-data") {
		return r.FormValue(m.config.FormFieldName)
	}
	return ""
}

// generateToken generates a cryptographically secure CSRF token.
func (m *CSRFMiddleware) generateToken() (string, error) {
	bytes := make([]byte, m.config.TokenLength)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}

// setTokenCookie mirrors the token into a cookie scripts can read.
func (m *CSRFMiddleware) setTokenCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.config.CookieName,
		Value:    token,
		Path:     m.config.CookiePath,
		Domain:   m.config.CookieDomain,
		MaxAge:   int(m.config.TokenTTL.Seconds()),
		Secure:   m.config.CookieSecure,
		HttpOnly: false,
		SameSite: m.config.CookieSameSite,
	})
}

// isExemptPath checks if the path is exempt from CSRF protection.
func (m *CSRFMiddleware) isExemptPath(path string) bool {
	for _, exempt := range m.config.ExemptPaths {
		if strings.HasPrefix(path, exempt) {
			return true
		}
	}
	return false
}

// isExemptMethod checks if the HTTP method is exempt from CSRF protection.
func (m *CSRFMiddleware) isExemptMethod(method string) bool {
	for _, exempt := range m.config.ExemptMethods {
		if strings.EqualFold(method, exempt) {
			return true
		}
	}
	return false
}

// handleError handles CSRF validation errors.
func (m *CSRFMiddleware) handleError(w http.ResponseWriter, r *http.Request, session *Session, err error) {
	metrics.CSRFRejections.Inc()
	m.security.LogEvent(&logging.SecurityEvent{
		Event:     logging.EventCSRFRejected,
		UserID:    session.UserID,
		SessionID: session.ID,
		IPAddress: r.RemoteAddr,
		UserAgent: r.UserAgent(),
		Path:      r.URL.Path,
		Success:   false,
		Error:     err.Error(),
	})

	if m.config.ErrorHandler != nil {
		m.config.ErrorHandler(w, r, err)
		return
	}
	http.Error(w, "Page Expired", StatusPageExpired)
}
