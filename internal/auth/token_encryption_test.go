// Classfront - Course Storefront Web Front End
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/classfront

package auth

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestTokenEncryptor_RoundTrip(t *testing.T) {
	t.Parallel()

	enc := testEncryptor(t)
	if !enc.IsEnabled() {
		t.Fatal("encryptor should be enabled")
	}

	sealed, err := enc.Seal("sess-1", "opaque-token")
	if err != nil {
		t.Fatalf("Seal() error = %v", err)
	}
	if !strings.HasPrefix(sealed, sealedPrefix) || strings.Contains(sealed, "opaque-token") {
		t.Fatalf("sealed = %q", sealed)
	}

	again, _ := enc.Seal("sess-1", "opaque-token")
	if again == sealed {
		t.Error("nonce should make ciphertexts differ")
	}

	token, err := enc.Open("sess-1", sealed)
	if err != nil || token != "opaque-token" {
		t.Errorf("Open() = %q, %v", token, err)
	}
	if empty, _ := enc.Seal("sess-1", ""); empty != "" {
		t.Errorf("Seal(\"\") = %q", empty)
	}
}

func TestTokenEncryptor_BoundToSession(t *testing.T) {
	t.Parallel()

	enc := testEncryptor(t)
	sealed, _ := enc.Seal("sess-1", "opaque-token")
	if _, err := enc.Open("sess-2", sealed); !errors.Is(err, ErrDecryptionFailed) {
		t.Errorf("Open() with another session ID error = %v", err)
	}
}

func TestTokenEncryptor_Disabled(t *testing.T) {
	t.Parallel()

	enc, err := NewTokenEncryptor("")
	if err != nil || enc != nil {
		t.Fatalf("NewTokenEncryptor(\"\") = %v, %v; want nil, nil", enc, err)
	}
	if enc.IsEnabled() {
		t.Error("nil encryptor should be disabled")
	}
	if out, _ := enc.Seal("s", "x"); out != "x" {
		t.Errorf("nil Seal() = %q", out)
	}
	if out, _ := enc.Open("s", "x"); out != "x" {
		t.Errorf("nil Open() = %q", out)
	}

	// A sealed token cannot be read once the key is removed.
	sealed, _ := testEncryptor(t).Seal("s", "x")
	if _, err := enc.Open("s", sealed); !errors.Is(err, ErrDecryptionFailed) {
		t.Errorf("nil Open(sealed) error = %v", err)
	}
}

func TestTokenEncryptor_Errors(t *testing.T) {
	t.Parallel()

	if _, err := NewTokenEncryptor("not base64!"); err == nil {
		t.Error("expected decode error")
	}
	if _, err := NewTokenEncryptor(base64.StdEncoding.EncodeToString([]byte("short"))); err == nil {
		t.Error("expected short key error")
	}

	enc := testEncryptor(t)
	if _, err := enc.Open("s", sealedPrefix+"%%%"); !errors.Is(err, ErrInvalidCiphertext) {
		t.Errorf("Open(garbage) error = %v", err)
	}
	if _, err := enc.Open("s", sealedPrefix+"AAAA"); !errors.Is(err, ErrInvalidCiphertext) {
		t.Errorf("Open(short) error = %v", err)
	}
	zeros := sealedPrefix + base64.RawURLEncoding.EncodeToString(make([]byte, 40))
	if _, err := enc.Open("s", zeros); !errors.Is(err, ErrDecryptionFailed) {
		t.Errorf("Open(zeros) error = %v", err)
	}

	other := testEncryptor(t)
	sealed, _ := enc.Seal("s", "secret")
	if _, err := other.Open("s", sealed); !errors.Is(err, ErrDecryptionFailed) {
		t.Errorf("Open() with wrong key error = %v", err)
	}

	// Tokens stored before encryption was enabled still read back.
	if out, err := enc.Open("s", "a.b.c"); err != nil || out != "a.b.c" {
		t.Errorf("Open(plain) = %q, %v", out, err)
	}
}

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("api-secret"))
	if err != nil {
		t.Fatal(err)
	}
	return token
}

func TestTokenExpiry(t *testing.T) {
	t.Parallel()

	exp := time.Now().Add(time.Hour).Truncate(time.Second)

	got, ok := TokenExpiry(signedToken(t, jwt.MapClaims{"id": "u1", "exp": exp.Unix()}))
	if !ok || !got.Equal(exp) {
		t.Errorf("TokenExpiry() = %v, %v; want %v", got, ok, exp)
	}

	if _, ok := TokenExpiry(signedToken(t, jwt.MapClaims{"id": "u1"})); ok {
		t.Error("token without exp should report ok=false")
	}
	if _, ok := TokenExpiry("opaque"); ok {
		t.Error("opaque token should report ok=false")
	}
	if _, ok := TokenExpiry("not.a.jwt"); ok {
		t.Error("malformed token should report ok=false")
	}
}
