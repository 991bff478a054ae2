// Classfront - Course Storefront Web Front End
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/classfront

package auth

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/hkdf"
)

var (
	// ErrDecryptionFailed means the key or the bound session ID is wrong,
	// or the ciphertext was tampered with.
	ErrDecryptionFailed = errors.New("decryption failed")

	// ErrInvalidCiphertext means the stored value is not a sealed token.
	ErrInvalidCiphertext = errors.New("invalid ciphertext")
)

const (
	// hkdfInfo separates the session token key from anything else derived
	// from SESSION_ENCRYPTION_KEY.
	hkdfInfo = "classfront/session-token/v1"

	// sealedPrefix marks encrypted tokens. Values without it were written
	// before encryption was enabled and are read back as-is.
	sealedPrefix = "v1:"
)

// TokenEncryptor seals API bearer tokens before sessions reach disk. Each
// token is bound to its session ID, so a sealed value copied into another
// session record does not open. A nil *TokenEncryptor passes values through.
type TokenEncryptor struct {
	aead cipher.AEAD
}

// NewTokenEncryptor derives an AES-256-GCM key from a base64 master key of
// at least 16 bytes. An empty key disables encryption and returns nil.
func NewTokenEncryptor(masterKey string) (*TokenEncryptor, error) {
	if masterKey == "" {
		return nil, nil
	}

	secret, err := base64.StdEncoding.DecodeString(masterKey)
	if err != nil {
		return nil, fmt.Errorf("decode SESSION_ENCRYPTION_KEY: %w", err)
	}
	if len(secret) < 16 {
		return nil, errors.New("SESSION_ENCRYPTION_KEY must decode to at least 16 bytes")
	}

	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, nil, []byte(hkdfInfo)), key); err != nil {
		return nil, fmt.Errorf("derive token key: %w", err)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create AES cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create GCM cipher: %w", err)
	}
	return &TokenEncryptor{aead: aead}, nil
}

// IsEnabled reports whether encryption is configured.
func (e *TokenEncryptor) IsEnabled() bool {
	return e != nil && e.aead != nil
}

// Seal encrypts token for the session sessionID. Empty tokens stay empty.
func (e *TokenEncryptor) Seal(sessionID, token string) (string, error) {
	if !e.IsEnabled() || token == "" {
		return token, nil
	}

	nonce := make([]byte, e.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}
	sealed := e.aead.Seal(nonce, nonce, []byte(token), []byte(sessionID))
	return sealedPrefix + base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Open reverses Seal. Unsealed values are returned unchanged so sessions
// written before encryption was switched on keep working.
func (e *TokenEncryptor) Open(sessionID, stored string) (string, error) {
	encoded, sealed := strings.CutPrefix(stored, sealedPrefix)
	if !sealed {
		return stored, nil
	}
	if !e.IsEnabled() {
		return "", fmt.Errorf("%w: sealed token but SESSION_ENCRYPTION_KEY is unset", ErrDecryptionFailed)
	}

	data, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidCiphertext, err)
	}
	n := e.aead.NonceSize()
	if len(data) < n+e.aead.Overhead() {
		return "", ErrInvalidCiphertext
	}
	token, err := e.aead.Open(nil, data[:n], data[n:], []byte(sessionID))
	if err != nil {
		return "", ErrDecryptionFailed
	}
	return string(token), nil
}

// GenerateEncryptionKey returns a random 256-bit key, base64 encoded for
// SESSION_ENCRYPTION_KEY.
func GenerateEncryptionKey() (string, error) {
	key := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return "", fmt.Errorf("generate random key: %w", err)
	}
	return base64.StdEncoding.EncodeToString(key), nil
}
