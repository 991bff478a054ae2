// Classfront - Course Storefront Web Front End
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/classfront

package auth

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/tomtom215/classfront/internal/config"
	"github.com/tomtom215/classfront/internal/logging"
)

// createTestBadgerDB opens a BadgerDB in a temp directory.
func createTestBadgerDB(t *testing.T) *badger.DB {
	t.Helper()

	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLogger(nil))
	if err != nil {
		t.Fatalf("Failed to open BadgerDB: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func testEncryptor(t *testing.T) *TokenEncryptor {
	t.Helper()

	key, err := GenerateEncryptionKey()
	if err != nil {
		t.Fatal(err)
	}
	enc, err := NewTokenEncryptor(key)
	if err != nil {
		t.Fatal(err)
	}
	return enc
}

func TestBadgerSessionStore_CreateAndGet(t *testing.T) {
	t.Parallel()

	db := createTestBadgerDB(t)
	store := NewBadgerSessionStore(db, testEncryptor(t))
	ctx := context.Background()

	session := newTestSession("badger-1", "user-1")
	if err := store.Create(ctx, session); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	retrieved, err := store.Get(ctx, "badger-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if retrieved.Token != "api-token" {
		t.Errorf("Token = %q, want api-token", retrieved.Token)
	}
	if retrieved.FlashMessages["success"] != "Saved" {
		t.Errorf("FlashMessages = %v", retrieved.FlashMessages)
	}

	// The raw value on disk must not contain the bearer token.
	err = db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(sessionKey("badger-1"))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			if strings.Contains(string(val), "api-token") {
				t.Error("token stored in plaintext")
			}
			return nil
		})
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestBadgerSessionStore_UpdateMovesUserIndex(t *testing.T) {
	t.Parallel()

	store := NewBadgerSessionStore(createTestBadgerDB(t), nil)
	ctx := context.Background()

	guest := NewSession(time.Hour)
	guest.Flash("success", "hi")
	if err := store.Create(ctx, guest); err != nil {
		t.Fatal(err)
	}

	guest.UserID = "user-9"
	guest.Token = "tok"
	if err := store.Update(ctx, guest); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	sessions, err := store.GetByUserID(ctx, "user-9")
	if err != nil || len(sessions) != 1 {
		t.Fatalf("GetByUserID() = %d, %v; want 1", len(sessions), err)
	}

	guest.UserID = "user-10"
	if err := store.Update(ctx, guest); err != nil {
		t.Fatal(err)
	}
	if sessions, _ := store.GetByUserID(ctx, "user-9"); len(sessions) != 0 {
		t.Errorf("old user index should be removed, got %d", len(sessions))
	}

	if err := store.Update(ctx, newTestSession("ghost", "u")); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Update(ghost) error = %v", err)
	}
}

func TestBadgerSessionStore_DeleteTouchCount(t *testing.T) {
	t.Parallel()

	store := NewBadgerSessionStore(createTestBadgerDB(t), nil)
	ctx := context.Background()

	for _, s := range []*Session{newTestSession("a", "u1"), newTestSession("b", "u1"), newTestSession("c", "u2")} {
		if err := store.Create(ctx, s); err != nil {
			t.Fatal(err)
		}
	}

	newExpiry := time.Now().Add(5 * time.Hour).Truncate(time.Second)
	if err := store.Touch(ctx, "c", newExpiry); err != nil {
		t.Fatalf("Touch() error = %v", err)
	}
	c, err := store.Get(ctx, "c")
	if err != nil {
		t.Fatal(err)
	}
	if !c.ExpiresAt.Equal(newExpiry) {
		t.Errorf("ExpiresAt = %v, want %v", c.ExpiresAt, newExpiry)
	}

	deleted, err := store.DeleteByUserID(ctx, "u1")
	if err != nil || deleted != 2 {
		t.Errorf("DeleteByUserID() = %d, %v; want 2", deleted, err)
	}
	if err := store.Delete(ctx, "c"); err != nil {
		t.Fatal(err)
	}
	if err := store.Delete(ctx, "never-existed"); err != nil {
		t.Errorf("Delete of unknown session should not fail: %v", err)
	}

	count, err := store.Count(ctx)
	if err != nil || count != 0 {
		t.Errorf("Count() = %d, %v; want 0", count, err)
	}
}

func TestBadgerSessionStore_CleanupExpired(t *testing.T) {
	t.Parallel()

	store := NewBadgerSessionStore(createTestBadgerDB(t), nil)
	ctx := context.Background()

	live := newTestSession("live", "u1")
	stale := newTestSession("stale", "u1")
	// Expired by wall clock but still within its one second badger TTL.
	stale.ExpiresAt = time.Now().Add(-time.Millisecond)
	for _, s := range []*Session{live, stale} {
		if err := store.Create(ctx, s); err != nil {
			t.Fatal(err)
		}
	}

	if _, err := store.Get(ctx, "stale"); !errors.Is(err, ErrSessionExpired) {
		t.Errorf("Get(stale) error = %v, want ErrSessionExpired", err)
	}

	removed, err := store.CleanupExpired(ctx)
	if err != nil || removed != 1 {
		t.Errorf("CleanupExpired() = %d, %v; want 1", removed, err)
	}
	if _, err := store.Get(ctx, "live"); err != nil {
		t.Errorf("live session lost: %v", err)
	}
}

func TestSessionStoreFactory(t *testing.T) {
	t.Parallel()

	memory, err := NewSessionStoreFactory(&config.SessionConfig{Store: "memory"})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := memory.CreateStore().(*MemorySessionStore); !ok {
		t.Error("memory factory should create a MemorySessionStore")
	}
	if memory.DB() != nil || memory.Kind() != SessionStoreMemory {
		t.Error("memory factory should not open a database")
	}
	if err := memory.Close(); err != nil {
		t.Error(err)
	}

	persistent, err := NewSessionStoreFactory(&config.SessionConfig{Store: "badger", Path: t.TempDir()})
	if err != nil {
		t.Fatal(err)
	}
	defer persistent.Close()
	if _, ok := persistent.CreateStore().(*BadgerSessionStore); !ok {
		t.Error("badger factory should create a BadgerSessionStore")
	}

	if persistent.Kind() != SessionStoreBadger {
		t.Errorf("Kind() = %q", persistent.Kind())
	}

	bad := []*config.SessionConfig{
		{Store: "memory", EncryptionKey: "%%%"},
		{Store: "redis"},
		{Store: "badger"},
	}
	for _, cfg := range bad {
		if _, err := NewSessionStoreFactory(cfg); err == nil {
			t.Errorf("NewSessionStoreFactory(%+v) should fail", *cfg)
		}
	}
}

func TestBadgerLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := badgerLogger{log: logging.NewTestLogger(&buf)}
	l.Errorf("compaction failed: %v\n", "disk full")
	l.Warningf("slow write\n")

	out := buf.String()
	if !strings.Contains(out, `"message":"compaction failed: disk full"`) {
		t.Errorf("error entry missing: %s", out)
	}
	if !strings.Contains(out, `"level":"warn"`) {
		t.Errorf("warn entry missing: %s", out)
	}
}
