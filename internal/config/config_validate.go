// Classfront - Course Storefront Web Front End
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/classfront

package config

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// Validate checks that required configuration is present and valid.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateBackend(); err != nil {
		return err
	}
	if err := c.validateSession(); err != nil {
		return err
	}
	if err := c.validateSecurity(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	if c.Server.MaxUploadSize <= 0 {
		return fmt.Errorf("MAX_UPLOAD_SIZE must be positive")
	}
	return nil
}

func (c *Config) validateBackend() error {
	if c.Backend.URL == "" {
		return fmt.Errorf("API_URL is required")
	}
	if err := validateBaseURL(c.Backend.URL, "API_URL"); err != nil {
		return err
	}
	if c.Backend.AssetOrigin != "" {
		if err := validateHTTPURL(c.Backend.AssetOrigin, "API_ASSET_ORIGIN"); err != nil {
			return err
		}
	}
	if c.Backend.Timeout <= 0 {
		return fmt.Errorf("API_TIMEOUT must be positive")
	}
	if c.Backend.MaxRetries < 0 {
		return fmt.Errorf("API_MAX_RETRIES must not be negative")
	}
	if c.Backend.RateLimit < 0 {
		return fmt.Errorf("API_RATE_LIMIT must not be negative")
	}

	cb := c.Backend.CircuitBreaker
	if cb.Enabled && (cb.FailureRatio <= 0 || cb.FailureRatio > 1) {
		return fmt.Errorf("API_BREAKER_FAILURE_RATIO must be in (0, 1], got %v", cb.FailureRatio)
	}
	return nil
}

func (c *Config) validateSession() error {
	switch c.Session.Store {
	case "memory":
	case "badger":
		if c.Session.Path == "" {
			return fmt.Errorf("SESSION_STORE_PATH is required when SESSION_STORE=badger")
		}
	default:
		return fmt.Errorf("SESSION_STORE must be memory or badger, got %q", c.Session.Store)
	}

	if c.Session.CookieName == "" {
		return fmt.Errorf("SESSION_COOKIE is required")
	}
	if c.Session.Lifetime <= 0 {
		return fmt.Errorf("SESSION_LIFETIME must be positive")
	}

	switch strings.ToLower(c.Session.SameSite) {
	case "lax", "strict":
	case "none":
		if !c.Session.Secure {
			return fmt.Errorf("SESSION_SAME_SITE=none requires SESSION_SECURE_COOKIE=true")
		}
	default:
		return fmt.Errorf("SESSION_SAME_SITE must be lax, strict or none, got %q", c.Session.SameSite)
	}

	if c.Session.EncryptionKey != "" {
		key, err := base64.StdEncoding.DecodeString(c.Session.EncryptionKey)
		if err != nil {
			return fmt.Errorf("SESSION_ENCRYPTION_KEY must be base64: %w", err)
		}
		if len(key) < 16 {
			return fmt.Errorf("SESSION_ENCRYPTION_KEY must decode to at least 16 bytes, got %d", len(key))
		}
	}

	if c.IsProduction() {
		if !c.Session.Secure {
			return fmt.Errorf("SESSION_SECURE_COOKIE must be true in production")
		}
		if c.Session.Store == "badger" && c.Session.EncryptionKey == "" {
			return fmt.Errorf("SESSION_ENCRYPTION_KEY is required in production when SESSION_STORE=badger")
		}
	}
	return nil
}

func (c *Config) validateSecurity() error {
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitRequests <= 0 || c.Security.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS and RATE_LIMIT_WINDOW must be positive")
	}
	if c.Security.LoginRateLimit <= 0 || c.Security.LoginRateWindow <= 0 {
		return fmt.Errorf("LOGIN_RATE_LIMIT and LOGIN_RATE_WINDOW must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal", "panic", "disabled":
	default:
		return fmt.Errorf("LOG_LEVEL %q is not a valid level", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
	return nil
}
