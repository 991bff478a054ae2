// Classfront - Course Storefront Web Front End
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/classfront

package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"sync"
	"time"

	"github.com/goccy/go-json"
)

// Session-related errors
var (
	// ErrSessionNotFound is returned when a session is not found in the store.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionExpired is returned when trying to access an expired session.
	ErrSessionExpired = errors.New("session expired")
)

// Session is a visitor's server-side state. It holds the user record and
// bearer token handed out by the course API at login, plus one-request
// values (flash messages, validation errors, old input) carried across a
// redirect.
type Session struct {
	// ID is the unique session identifier (opaque token).
	ID string `json:"id"`

	// User is the user object returned by the API, kept verbatim.
	User json.RawMessage `json:"user,omitempty"`

	// UserID and Role are extracted from User at login.
	UserID string `json:"user_id,omitempty"`
	Role   string `json:"role,omitempty"`

	// Token is the API bearer token.
	Token string `json:"token,omitempty"`

	// TokenExpiresAt is the token's exp claim, zero when unknown.
	TokenExpiresAt time.Time `json:"token_expires_at,omitempty"`

	FlashMessages map[string]string `json:"flash,omitempty"`
	Errors        map[string]string `json:"errors,omitempty"`
	OldInput      map[string]string `json:"old_input,omitempty"`

	// IntendedURL is where a visitor bounced to /login wanted to go.
	IntendedURL string `json:"intended_url,omitempty"`

	CSRFToken string `json:"csrf_token,omitempty"`

	CreatedAt      time.Time `json:"created_at"`
	ExpiresAt      time.Time `json:"expires_at"`
	LastAccessedAt time.Time `json:"last_accessed_at"`

	// dirty marks changes not yet written to the store.
	dirty bool
	// persisted is true once the session exists in the store.
	persisted bool
}

// NewSession creates an empty, unsaved session valid for ttl.
func NewSession(ttl time.Duration) *Session {
	now := time.Now()
	return &Session{
		ID:             generateSessionID(),
		CreatedAt:      now,
		ExpiresAt:      now.Add(ttl),
		LastAccessedAt: now,
	}
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// IsAuthenticated reports whether a user is signed in.
func (s *Session) IsAuthenticated() bool {
	return len(s.User) > 0 && string(s.User) != "null"
}

// IsAdmin reports whether the signed-in user has the admin role.
func (s *Session) IsAdmin() bool {
	return s.Role == "admin"
}

// BearerToken returns the API token, or "".
func (s *Session) BearerToken() string {
	return s.Token
}

// TokenExpired reports whether the stored token carries an exp claim that
// has passed.
func (s *Session) TokenExpired(now time.Time) bool {
	return s.Token != "" && !s.TokenExpiresAt.IsZero() && now.After(s.TokenExpiresAt)
}

// UserJSON returns the raw user object, or nil for guests.
func (s *Session) UserJSON() json.RawMessage {
	if len(s.User) == 0 {
		return nil
	}
	return append(json.RawMessage(nil), s.User...)
}

// isEmpty reports whether the session carries nothing worth persisting.
func (s *Session) isEmpty() bool {
	return len(s.User) == 0 && s.Token == "" && len(s.FlashMessages) == 0 &&
		len(s.Errors) == 0 && len(s.OldInput) == 0 && s.IntendedURL == "" && s.CSRFToken == ""
}

// forgetUser drops the user and token.
func (s *Session) forgetUser() {
	s.User = nil
	s.UserID = ""
	s.Role = ""
	s.Token = ""
	s.TokenExpiresAt = time.Time{}
	s.dirty = true
}

// flush drops every value the session holds, keeping only timestamps.
func (s *Session) flush() {
	s.forgetUser()
	s.FlashMessages = nil
	s.Errors = nil
	s.OldInput = nil
	s.IntendedURL = ""
	s.CSRFToken = ""
}

// clone returns a deep copy carrying no bookkeeping state.
func (s *Session) clone() *Session {
	copied := &Session{
		ID:             s.ID,
		UserID:         s.UserID,
		Role:           s.Role,
		Token:          s.Token,
		TokenExpiresAt: s.TokenExpiresAt,
		IntendedURL:    s.IntendedURL,
		CSRFToken:      s.CSRFToken,
		CreatedAt:      s.CreatedAt,
		ExpiresAt:      s.ExpiresAt,
		LastAccessedAt: s.LastAccessedAt,
	}
	if s.User != nil {
		copied.User = append(json.RawMessage(nil), s.User...)
	}
	copied.FlashMessages = copyStringMap(s.FlashMessages)
	copied.Errors = copyStringMap(s.Errors)
	copied.OldInput = copyStringMap(s.OldInput)
	return copied
}

func copyStringMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// generateSessionID generates a cryptographically secure session ID.
func generateSessionID() string {
	bytes := make([]byte, 32)
	_, err := rand.Read(bytes)
	if err != nil {
		// Fallback to less secure but still random ID
		return hex.EncodeToString([]byte(time.Now().String()))
	}
	return hex.EncodeToString(bytes)
}

// SessionStore defines the interface for session storage backends.
type SessionStore interface {
	// Create stores a new session.
	Create(ctx context.Context, session *Session) error

	// Get retrieves a session by ID.
	// Returns ErrSessionNotFound if not found.
	// Returns ErrSessionExpired if the session exists but is expired.
	Get(ctx context.Context, id string) (*Session, error)

	// Update updates an existing session.
	// Returns ErrSessionNotFound if not found.
	Update(ctx context.Context, session *Session) error

	// Delete removes a session by ID.
	// Does not return error if session doesn't exist.
	Delete(ctx context.Context, id string) error

	// DeleteByUserID removes all sessions for a user.
	// Returns the count of deleted sessions.
	DeleteByUserID(ctx context.Context, userID string) (int, error)

	// GetByUserID returns all sessions for a user.
	GetByUserID(ctx context.Context, userID string) ([]*Session, error)

	// Touch updates the session's last accessed time and extends expiry.
	Touch(ctx context.Context, id string, newExpiry time.Time) error

	// CleanupExpired removes all expired sessions.
	// Returns the count of deleted sessions.
	CleanupExpired(ctx context.Context) (int, error)

	// Count returns the number of stored sessions.
	Count(ctx context.Context) (int, error)
}

// MemorySessionStore is an in-memory implementation of SessionStore.
// Suitable for development and testing. For production, use BadgerSessionStore.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewMemorySessionStore creates a new in-memory session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]*Session),
	}
}

// Create stores a new session.
func (s *MemorySessionStore) Create(ctx context.Context, session *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[session.ID] = session.clone()
	return nil
}

// Get retrieves a session by ID.
func (s *MemorySessionStore) Get(ctx context.Context, id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}

	if session.IsExpired() {
		return nil, ErrSessionExpired
	}

	copied := session.clone()
	copied.persisted = true
	return copied, nil
}

// Update updates an existing session.
func (s *MemorySessionStore) Update(ctx context.Context, session *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[session.ID]; !ok {
		return ErrSessionNotFound
	}

	s.sessions[session.ID] = session.clone()
	return nil
}

// Delete removes a session by ID.
func (s *MemorySessionStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, id)
	return nil
}

// DeleteByUserID removes all sessions for a user.
func (s *MemorySessionStore) DeleteByUserID(ctx context.Context, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for id, session := range s.sessions {
		if session.UserID == userID {
			delete(s.sessions, id)
			count++
		}
	}
	return count, nil
}

// GetByUserID returns all sessions for a user.
func (s *MemorySessionStore) GetByUserID(ctx context.Context, userID string) ([]*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var sessions []*Session
	for _, session := range s.sessions {
		if session.UserID == userID && !session.IsExpired() {
			sessions = append(sessions, session.clone())
		}
	}
	return sessions, nil
}

// Touch updates the session's last accessed time and extends expiry.
func (s *MemorySessionStore) Touch(ctx context.Context, id string, newExpiry time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}

	session.LastAccessedAt = time.Now()
	session.ExpiresAt = newExpiry
	return nil
}

// CleanupExpired removes all expired sessions.
func (s *MemorySessionStore) CleanupExpired(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for id, session := range s.sessions {
		if session.IsExpired() {
			delete(s.sessions, id)
			count++
		}
	}
	return count, nil
}

// Count returns the number of stored sessions, expired ones included until
// the next cleanup.
func (s *MemorySessionStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions), nil
}
