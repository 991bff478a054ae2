// Classfront - Course Storefront Web Front End
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/classfront

package config

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Backend  BackendConfig  `koanf:"backend"`
	Session  SessionConfig  `koanf:"session"`
	Security SecurityConfig `koanf:"security"`
	Inertia  InertiaConfig  `koanf:"inertia"`
	Assets   AssetsConfig   `koanf:"assets"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	// MaxUploadSize bounds multipart request bodies (thumbnails, videos,
	// payment proofs) in bytes.
	MaxUploadSize int64 `koanf:"max_upload_size"`
	// Environment is development, staging or production.
	Environment string `koanf:"environment"`
}

// BackendConfig describes the REST API every page proxies to.
type BackendConfig struct {
	// URL is the API base URL including its path prefix, e.g. http://localhost:5000/api.
	URL string `koanf:"url"`
	// AssetOrigin prefixes relative thumbnail and video paths. Defaults to
	// the scheme and host of URL.
	AssetOrigin    string               `koanf:"asset_origin"`
	Timeout        time.Duration        `koanf:"timeout"`
	MaxRetries     int                  `koanf:"max_retries"`
	RetryBaseDelay time.Duration        `koanf:"retry_base_delay"`
	RateLimit      float64              `koanf:"rate_limit"`
	RateBurst      int                  `koanf:"rate_burst"`
	CircuitBreaker CircuitBreakerConfig `koanf:"circuit_breaker"`
}

// CircuitBreakerConfig tunes the breaker in front of the API.
type CircuitBreakerConfig struct {
	Enabled      bool          `koanf:"enabled"`
	MaxRequests  uint32        `koanf:"max_requests"`
	Interval     time.Duration `koanf:"interval"`
	Timeout      time.Duration `koanf:"timeout"`
	MinRequests  uint32        `koanf:"min_requests"`
	FailureRatio float64       `koanf:"failure_ratio"`
}

// SessionConfig holds visitor session settings.
type SessionConfig struct {
	// Store is "memory" or "badger".
	Store      string        `koanf:"store"`
	Path       string        `koanf:"path"`
	CookieName string        `koanf:"cookie_name"`
	Lifetime   time.Duration `koanf:"lifetime"`
	Secure     bool          `koanf:"secure"`
	// SameSite is lax, strict or none.
	SameSite string `koanf:"same_site"`
	Domain   string `koanf:"domain"`
	// EncryptionKey is a base64 key used to encrypt bearer tokens at rest.
	EncryptionKey   string        `koanf:"encryption_key"`
	CleanupInterval time.Duration `koanf:"cleanup_interval"`
	GCInterval      time.Duration `koanf:"gc_interval"`
}

// SecurityConfig holds CSRF, CORS, rate limit and authorization settings.
type SecurityConfig struct {
	CSRFEnabled       bool          `koanf:"csrf_enabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	RateLimitRequests int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	LoginRateLimit    int           `koanf:"login_rate_limit"`
	LoginRateWindow   time.Duration `koanf:"login_rate_window"`
	CasbinModelPath   string        `koanf:"casbin_model_path"`
	CasbinPolicyPath  string        `koanf:"casbin_policy_path"`
}

// InertiaConfig holds page rendering settings.
type InertiaConfig struct {
	AppName string `koanf:"app_name"`
	// RootTemplate overrides the embedded HTML shell.
	RootTemplate string `koanf:"root_template"`
	// Version overrides the asset version derived from the Vite manifest.
	Version string `koanf:"version"`
}

// AssetsConfig locates the public directory and the Vite build.
type AssetsConfig struct {
	BasePath     string `koanf:"base_path"`
	BuildDir     string `koanf:"build_dir"`
	Entry        string `koanf:"entry"`
	DevServerURL string `koanf:"dev_server_url"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Load reads configuration from defaults, an optional YAML file and the environment.
func Load() (*Config, error) {
	return LoadWithKoanf()
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	env := strings.ToLower(c.Server.Environment)
	return env == "production" || env == "prod"
}

// IsDevelopment reports whether the server runs in development mode.
func (c *Config) IsDevelopment() bool {
	env := strings.ToLower(c.Server.Environment)
	return env == "" || env == "development" || env == "dev" || env == "local"
}

// ResolvedAssetOrigin returns the origin used for relative media paths.
func (b *BackendConfig) ResolvedAssetOrigin() (string, error) {
	if b.AssetOrigin != "" {
		return strings.TrimRight(b.AssetOrigin, "/"), nil
	}
	u, err := url.Parse(b.URL)
	if err != nil {
		return "", fmt.Errorf("parse backend url: %w", err)
	}
	return u.Scheme + "://" + u.Host, nil
}
