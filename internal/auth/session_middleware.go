// Classfront - Course Storefront Web Front End
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/classfront

package auth

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/classfront/internal/config"
	"github.com/tomtom215/classfront/internal/logging"
	"github.com/tomtom215/classfront/internal/metrics"
)

// ErrNoSession is returned when a handler runs outside SessionManager.Middleware.
var ErrNoSession = errors.New("no session in request context")

type contextKey int

const sessionContextKey contextKey = iota

// ContextWithSession returns ctx carrying session.
func ContextWithSession(ctx context.Context, session *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, session)
}

// SessionFromContext returns the request's session, or nil.
func SessionFromContext(ctx context.Context) *Session {
	session, _ := ctx.Value(sessionContextKey).(*Session)
	return session
}

// SessionMiddlewareConfig holds session cookie settings.
type SessionMiddlewareConfig struct {
	// CookieName is the name of the session cookie (default: "classfront_session").
	CookieName string

	// CookiePath is the path for the session cookie (default: "/").
	CookiePath string

	// CookieDomain is the domain for the session cookie.
	CookieDomain string

	// CookieSecure sets the Secure flag on the cookie.
	CookieSecure bool

	// CookieSameSite sets the SameSite attribute (default: Lax).
	CookieSameSite http.SameSite

	// Lifetime is the idle lifetime; every request pushes expiry forward.
	Lifetime time.Duration
}

// DefaultSessionMiddlewareConfig returns development defaults.
func DefaultSessionMiddlewareConfig() *SessionMiddlewareConfig {
	return &SessionMiddlewareConfig{
		CookieName:     "classfront_session",
		CookiePath:     "/",
		CookieSameSite: http.SameSiteLaxMode,
		Lifetime:       2 * time.Hour,
	}
}

// SessionMiddlewareConfigFrom builds cookie settings from configuration.
func SessionMiddlewareConfigFrom(cfg *config.SessionConfig) *SessionMiddlewareConfig {
	return &SessionMiddlewareConfig{
		CookieName:     cfg.CookieName,
		CookiePath:     "/",
		CookieDomain:   cfg.Domain,
		CookieSecure:   cfg.Secure,
		CookieSameSite: ParseSameSite(cfg.SameSite),
		Lifetime:       cfg.Lifetime,
	}
}

// ParseSameSite maps lax, strict and none to http.SameSite, defaulting to Lax.
func ParseSameSite(value string) http.SameSite {
	switch strings.ToLower(value) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

// SessionManager loads the visitor's session before each request and
// writes it back before the response headers go out.
type SessionManager struct {
	store    SessionStore
	config   *SessionMiddlewareConfig
	security *logging.SecurityLogger
}

// NewSessionManager creates a session manager over store.
func NewSessionManager(store SessionStore, config *SessionMiddlewareConfig) *SessionManager {
	if config == nil {
		config = DefaultSessionMiddlewareConfig()
	}
	return &SessionManager{
		store:    store,
		config:   config,
		security: logging.NewSecurityLogger(),
	}
}

// Store returns the underlying session store.
func (m *SessionManager) Store() SessionStore {
	return m.store
}

// CookieName returns the session cookie name.
func (m *SessionManager) CookieName() string {
	return m.config.CookieName
}

// Middleware attaches the visitor's session to the request context. Guests
// get a fresh session that is only stored once something is put in it.
func (m *SessionManager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session := m.load(r)
		m.expireToken(r, session)

		sw := &sessionWriter{ResponseWriter: w, manager: m, request: r, session: session}
		ctx := logging.ContextWithUserID(ContextWithSession(r.Context(), session), session.UserID)
		next.ServeHTTP(sw, r.WithContext(ctx))
		sw.commit()
	})
}

// load reads the session named by the cookie and slides its expiry forward.
func (m *SessionManager) load(r *http.Request) *Session {
	cookie, err := r.Cookie(m.config.CookieName)
	if err != nil || cookie.Value == "" {
		return NewSession(m.config.Lifetime)
	}

	ctx := r.Context()
	session, err := m.store.Get(ctx, cookie.Value)
	switch {
	case err == nil:
	case errors.Is(err, ErrSessionNotFound):
		return NewSession(m.config.Lifetime)
	case errors.Is(err, ErrSessionExpired):
		metrics.SessionsExpired.Inc()
		if delErr := m.store.Delete(ctx, cookie.Value); delErr != nil {
			logging.Ctx(ctx).Warn().Err(delErr).Msg("Failed to delete expired session")
		}
		return NewSession(m.config.Lifetime)
	default:
		metrics.SessionStoreErrors.WithLabelValues("get").Inc()
		logging.Ctx(ctx).Error().Err(err).Msg("Failed to load session")
		return NewSession(m.config.Lifetime)
	}

	now := time.Now()
	expiry := now.Add(m.config.Lifetime)
	if err := m.store.Touch(ctx, session.ID, expiry); err != nil {
		metrics.SessionStoreErrors.WithLabelValues("touch").Inc()
		logging.Ctx(ctx).Warn().Err(err).Msg("Failed to extend session")
	} else {
		session.ExpiresAt = expiry
		session.LastAccessedAt = now
	}
	return session
}

// expireToken signs the visitor out when the API token's exp has passed.
func (m *SessionManager) expireToken(r *http.Request, session *Session) {
	if !session.TokenExpired(time.Now()) {
		return
	}
	m.security.LogEvent(&logging.SecurityEvent{
		Event:     logging.EventTokenExpired,
		UserID:    session.UserID,
		SessionID: session.ID,
		IPAddress: r.RemoteAddr,
		Path:      r.URL.Path,
		Success:   true,
	})
	metrics.RecordAuthEvent(logging.EventTokenExpired, true)
	session.forgetUser()
}

// save persists the session if needed and refreshes the cookie.
func (m *SessionManager) save(w http.ResponseWriter, r *http.Request, session *Session) {
	if !session.persisted && session.isEmpty() {
		return
	}

	if session.dirty || !session.persisted {
		ctx := r.Context()
		var err error
		if session.persisted {
			err = m.store.Update(ctx, session)
			if errors.Is(err, ErrSessionNotFound) {
				err = m.store.Create(ctx, session)
			}
		} else {
			err = m.store.Create(ctx, session)
		}
		if err != nil {
			metrics.SessionStoreErrors.WithLabelValues("save").Inc()
			logging.Ctx(ctx).Error().Err(err).
				Str("session_id", logging.TruncateSessionID(session.ID)).
				Msg("Failed to save session")
			return
		}
		session.persisted = true
		session.dirty = false
	}

	m.SetSessionCookie(w, session)
}

// SetSessionCookie writes the session cookie.
func (m *SessionManager) SetSessionCookie(w http.ResponseWriter, session *Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.config.CookieName,
		Value:    session.ID,
		Path:     m.config.CookiePath,
		Domain:   m.config.CookieDomain,
		Secure:   m.config.CookieSecure,
		HttpOnly: true,
		SameSite: m.config.CookieSameSite,
		MaxAge:   int(m.config.Lifetime.Seconds()),
	})
}

// ClearSessionCookie expires the session cookie.
func (m *SessionManager) ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.config.CookieName,
		Value:    "",
		Path:     m.config.CookiePath,
		Domain:   m.config.CookieDomain,
		Secure:   m.config.CookieSecure,
		HttpOnly: true,
		SameSite: m.config.CookieSameSite,
		MaxAge:   -1,
	})
}

// Login stores the API's user object and bearer token in the session under
// a fresh session ID so a pre-login ID can never be reused.
func (m *SessionManager) Login(r *http.Request, user any, token string) error {
	session := SessionFromContext(r.Context())
	if session == nil {
		return ErrNoSession
	}

	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}

	if session.persisted {
		if err := m.store.Delete(r.Context(), session.ID); err != nil {
			logging.Ctx(r.Context()).Warn().Err(err).Msg("Failed to delete pre-login session")
		}
	}

	now := time.Now()
	session.ID = generateSessionID()
	session.persisted = false
	session.CreatedAt = now
	session.ExpiresAt = now.Add(m.config.Lifetime)
	session.LastAccessedAt = now

	session.User = raw
	session.UserID, session.Role = userIdentity(user)
	session.Token = token
	session.TokenExpiresAt = time.Time{}
	if exp, ok := TokenExpiry(token); ok {
		session.TokenExpiresAt = exp
	}
	session.dirty = true
	return nil
}

// Logout deletes the stored session and clears the cookie. The request
// continues with an empty guest session.
func (m *SessionManager) Logout(w http.ResponseWriter, r *http.Request) error {
	session := SessionFromContext(r.Context())
	if session == nil {
		return ErrNoSession
	}

	var err error
	if session.persisted {
		err = m.store.Delete(r.Context(), session.ID)
	}

	session.flush()
	session.ID = generateSessionID()
	session.persisted = false
	session.dirty = false
	m.ClearSessionCookie(w)
	return err
}

// userIdentity extracts id (or _id) and role from an API user object.
func userIdentity(user any) (id, role string) {
	fields, ok := user.(map[string]any)
	if !ok {
		return "", ""
	}
	id = scalarString(fields["id"])
	if id == "" {
		id = scalarString(fields["_id"])
	}
	return id, scalarString(fields["role"])
}

func scalarString(v any) string {
	switch value := v.(type) {
	case string:
		return value
	case json.Number:
		return value.String()
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case int:
		return strconv.Itoa(value)
	case int64:
		return strconv.FormatInt(value, 10)
	default:
		return ""
	}
}

// sessionWriter saves the session just before the first header write.
type sessionWriter struct {
	http.ResponseWriter
	manager   *SessionManager
	request   *http.Request
	session   *Session
	committed bool
}

func (w *sessionWriter) commit() {
	if w.committed {
		return
	}
	w.committed = true
	w.manager.save(w.ResponseWriter, w.request, w.session)
}

func (w *sessionWriter) WriteHeader(code int) {
	w.commit()
	w.ResponseWriter.WriteHeader(code)
}

func (w *sessionWriter) Write(b []byte) (int, error) {
	w.commit()
	return w.ResponseWriter.Write(b)
}

// Flush implements http.Flusher.
func (w *sessionWriter) Flush() {
	w.commit()
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Hijack implements http.Hijacker.
func (w *sessionWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if h, ok := w.ResponseWriter.(http.Hijacker); ok {
		return h.Hijack()
	}
	return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
}

// Unwrap exposes the wrapped writer to http.ResponseController.
func (w *sessionWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
