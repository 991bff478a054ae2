// Classfront - Course Storefront Web Front End
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/classfront

package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

// Key prefixes for BadgerDB storage
const (
	sessionKeyPrefix     = "session:"
	sessionUserKeyPrefix = "session_user:"
)

// BadgerSessionStore implements SessionStore using BadgerDB for durable storage.
// Entries carry a TTL matching the session expiry, so badger drops them
// even if CleanupExpired never runs. Bearer tokens are encrypted with the
// configured TokenEncryptor before they reach disk.
type BadgerSessionStore struct {
	db        *badger.DB
	encryptor *TokenEncryptor
}

// NewBadgerSessionStore creates a new BadgerDB-backed session store. A nil
// encryptor stores tokens in plaintext.
func NewBadgerSessionStore(db *badger.DB, encryptor *TokenEncryptor) *BadgerSessionStore {
	return &BadgerSessionStore{db: db, encryptor: encryptor}
}

func sessionKey(id string) []byte {
	return []byte(sessionKeyPrefix + id)
}

func userIndexKey(userID, sessionID string) []byte {
	return []byte(sessionUserKeyPrefix + userID + ":" + sessionID)
}

// encode serializes a session with its token encrypted.
func (s *BadgerSessionStore) encode(session *Session) ([]byte, error) {
	stored := session.clone()
	token, err := s.encryptor.Seal(stored.ID, stored.Token)
	if err != nil {
		return nil, fmt.Errorf("encrypt token: %w", err)
	}
	stored.Token = token

	data, err := json.Marshal(stored)
	if err != nil {
		return nil, fmt.Errorf("marshal session: %w", err)
	}
	return data, nil
}

// decode deserializes a session and decrypts its token.
func (s *BadgerSessionStore) decode(data []byte) (*Session, error) {
	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	token, err := s.encryptor.Open(session.ID, session.Token)
	if err != nil {
		return nil, fmt.Errorf("decrypt token: %w", err)
	}
	session.Token = token
	return &session, nil
}

// ttl returns the badger TTL for a session, at least one second.
func ttl(expiresAt time.Time) time.Duration {
	d := time.Until(expiresAt)
	if d < time.Second {
		return time.Second
	}
	return d
}

// write stores the session and its user index entry inside txn.
func (s *BadgerSessionStore) write(txn *badger.Txn, session *Session) error {
	data, err := s.encode(session)
	if err != nil {
		return err
	}

	entry := badger.NewEntry(sessionKey(session.ID), data).WithTTL(ttl(session.ExpiresAt))
	if err := txn.SetEntry(entry); err != nil {
		return fmt.Errorf("set session: %w", err)
	}

	if session.UserID != "" {
		index := badger.NewEntry(userIndexKey(session.UserID, session.ID), []byte(session.ID)).
			WithTTL(ttl(session.ExpiresAt))
		if err := txn.SetEntry(index); err != nil {
			return fmt.Errorf("set user mapping: %w", err)
		}
	}
	return nil
}

// read loads a session inside txn without the expiry check.
func (s *BadgerSessionStore) read(txn *badger.Txn, id string) (*Session, error) {
	item, err := txn.Get(sessionKey(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	var session *Session
	err = item.Value(func(val []byte) error {
		var decodeErr error
		session, decodeErr = s.decode(val)
		return decodeErr
	})
	return session, err
}

// Create stores a new session.
func (s *BadgerSessionStore) Create(ctx context.Context, session *Session) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return s.write(txn, session)
	})
}

// Get retrieves a session by ID.
func (s *BadgerSessionStore) Get(ctx context.Context, id string) (*Session, error) {
	var session *Session
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		session, err = s.read(txn, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	if session.IsExpired() {
		return nil, ErrSessionExpired
	}

	session.persisted = true
	return session, nil
}

// Update replaces an existing session, moving its user index entry when the
// signed-in user changed.
func (s *BadgerSessionStore) Update(ctx context.Context, session *Session) error {
	return s.db.Update(func(txn *badger.Txn) error {
		existing, err := s.read(txn, session.ID)
		if err != nil {
			return err
		}
		if existing.IsExpired() {
			return ErrSessionNotFound
		}

		if existing.UserID != "" && existing.UserID != session.UserID {
			if err := txn.Delete(userIndexKey(existing.UserID, session.ID)); err != nil {
				return fmt.Errorf("delete user mapping: %w", err)
			}
		}
		return s.write(txn, session)
	})
}

// Delete removes a session by ID.
func (s *BadgerSessionStore) Delete(ctx context.Context, id string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		existing, err := s.read(txn, id)
		if errors.Is(err, ErrSessionNotFound) {
			return nil
		}
		if err != nil {
			// Undecodable entries are still removed.
			return txn.Delete(sessionKey(id))
		}

		if err := txn.Delete(sessionKey(id)); err != nil {
			return fmt.Errorf("delete session: %w", err)
		}
		if existing.UserID != "" {
			if err := txn.Delete(userIndexKey(existing.UserID, id)); err != nil {
				return fmt.Errorf("delete user mapping: %w", err)
			}
		}
		return nil
	})
}

// sessionIDsForUser lists session IDs from the user index.
func (s *BadgerSessionStore) sessionIDsForUser(txn *badger.Txn, userID string) []string {
	prefix := []byte(sessionUserKeyPrefix + userID + ":")
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	opts.PrefetchValues = false

	it := txn.NewIterator(opts)
	defer it.Close()

	var ids []string
	for it.Rewind(); it.ValidForPrefix(prefix); it.Next() {
		key := string(it.Item().Key())
		ids = append(ids, strings.TrimPrefix(key, string(prefix)))
	}
	return ids
}

// DeleteByUserID removes all sessions for a user.
func (s *BadgerSessionStore) DeleteByUserID(ctx context.Context, userID string) (int, error) {
	count := 0
	err := s.db.Update(func(txn *badger.Txn) error {
		for _, id := range s.sessionIDsForUser(txn, userID) {
			if err := txn.Delete(sessionKey(id)); err != nil {
				return fmt.Errorf("delete session: %w", err)
			}
			if err := txn.Delete(userIndexKey(userID, id)); err != nil {
				return fmt.Errorf("delete user mapping: %w", err)
			}
			count++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// GetByUserID returns all sessions for a user.
func (s *BadgerSessionStore) GetByUserID(ctx context.Context, userID string) ([]*Session, error) {
	var sessions []*Session
	err := s.db.View(func(txn *badger.Txn) error {
		for _, id := range s.sessionIDsForUser(txn, userID) {
			session, err := s.read(txn, id)
			if errors.Is(err, ErrSessionNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			if !session.IsExpired() {
				sessions = append(sessions, session)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

// Touch updates the session's last accessed time and extends expiry.
func (s *BadgerSessionStore) Touch(ctx context.Context, id string, newExpiry time.Time) error {
	return s.db.Update(func(txn *badger.Txn) error {
		session, err := s.read(txn, id)
		if err != nil {
			return err
		}
		session.LastAccessedAt = time.Now()
		session.ExpiresAt = newExpiry
		return s.write(txn, session)
	})
}

// CleanupExpired removes sessions whose expiry has passed but whose TTL
// has not yet been reaped, along with their user index entries.
func (s *BadgerSessionStore) CleanupExpired(ctx context.Context) (int, error) {
	type expired struct{ id, userID string }
	var victims []expired

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(sessionKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.ValidForPrefix(opts.Prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			err := it.Item().Value(func(val []byte) error {
				var session Session
				if err := json.Unmarshal(val, &session); err != nil {
					return nil
				}
				if session.IsExpired() {
					victims = append(victims, expired{id: session.ID, userID: session.UserID})
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if len(victims) == 0 {
		return 0, nil
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		for _, v := range victims {
			if err := txn.Delete(sessionKey(v.id)); err != nil {
				return err
			}
			if v.userID != "" {
				if err := txn.Delete(userIndexKey(v.userID, v.id)); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	return len(victims), nil
}

// Count returns the number of stored sessions.
func (s *BadgerSessionStore) Count(ctx context.Context) (int, error) {
	count := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(sessionKeyPrefix)
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.ValidForPrefix(opts.Prefix); it.Next() {
			count++
		}
		return nil
	})
	return count, err
}
