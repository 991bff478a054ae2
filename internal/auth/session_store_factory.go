// Classfront - Course Storefront Web Front End
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/classfront

package auth

import (
	"fmt"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"

	"github.com/tomtom215/classfront/internal/config"
	"github.com/tomtom215/classfront/internal/logging"
)

// SessionStoreType names a session backend (SESSION_STORE).
type SessionStoreType string

const (
	// SessionStoreMemory keeps sessions in process; a restart signs everyone out.
	SessionStoreMemory SessionStoreType = "memory"

	// SessionStoreBadger keeps sessions in an embedded BadgerDB directory.
	SessionStoreBadger SessionStoreType = "badger"
)

// sessionValueLogSize caps each badger value log file. Session records are a
// few KB, so badger's 1GB default only delays GC.
const sessionValueLogSize = 64 << 20

// SessionStoreFactory owns the session database and the token encryptor
// shared by every store it creates.
type SessionStoreFactory struct {
	kind      SessionStoreType
	db        *badger.DB
	encryptor *TokenEncryptor
}

// NewSessionStoreFactory opens the backing database for the configured
// store. Memory stores open nothing.
func NewSessionStoreFactory(cfg *config.SessionConfig) (*SessionStoreFactory, error) {
	encryptor, err := NewTokenEncryptor(cfg.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("session token encryption: %w", err)
	}

	f := &SessionStoreFactory{
		kind:      SessionStoreType(strings.ToLower(cfg.Store)),
		encryptor: encryptor,
	}
	switch f.kind {
	case SessionStoreMemory, "":
		f.kind = SessionStoreMemory
	case SessionStoreBadger:
		if f.db, err = openSessionDB(cfg.Path); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown session store %q", cfg.Store)
	}
	return f, nil
}

func openSessionDB(path string) (*badger.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("badger session store needs SESSION_STORE_PATH")
	}
	opts := badger.DefaultOptions(path).
		WithLogger(badgerLogger{logging.WithComponent("badger")}).
		WithNumVersionsToKeep(1).
		WithValueLogFileSize(sessionValueLogSize).
		WithCompactL0OnClose(true)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger db for sessions at %s: %w", path, err)
	}
	return db, nil
}

// Kind reports which backend CreateStore returns.
func (f *SessionStoreFactory) Kind() SessionStoreType {
	return f.kind
}

// CreateStore returns a store over the factory's backend.
func (f *SessionStoreFactory) CreateStore() SessionStore {
	if f.db != nil {
		return NewBadgerSessionStore(f.db, f.encryptor)
	}
	return NewMemorySessionStore()
}

// Close closes the session database, if any.
func (f *SessionStoreFactory) Close() error {
	if f.db == nil {
		return nil
	}
	return f.db.Close()
}

// DB returns the session database, or nil for the memory store.
func (f *SessionStoreFactory) DB() *badger.DB {
	return f.db
}

// badgerLogger routes badger's printf-style logs into zerolog. Badger's info
// output is compaction chatter, so it is logged at debug.
type badgerLogger struct {
	log zerolog.Logger
}

func (l badgerLogger) Errorf(format string, args ...any) {
	l.log.Error().Msgf(strings.TrimSpace(format), args...)
}

func (l badgerLogger) Warningf(format string, args ...any) {
	l.log.Warn().Msgf(strings.TrimSpace(format), args...)
}

func (l badgerLogger) Infof(format string, args ...any) {
	l.log.Debug().Msgf(strings.TrimSpace(format), args...)
}

func (l badgerLogger) Debugf(format string, args ...any) {
	l.log.Trace().Msgf(strings.TrimSpace(format), args...)
}
