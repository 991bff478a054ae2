// Classfront - Course Storefront Web Front End
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/classfront

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the config file locations searched in order.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/classfront/config.yaml",
	"/etc/classfront/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8000,
			Host:            "0.0.0.0",
			Timeout:         60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			MaxUploadSize:   512 << 20,
			Environment:     "development",
		},
		Backend: BackendConfig{
			URL:            "http://localhost:5000/api",
			AssetOrigin:    "",
			Timeout:        30 * time.Second,
			MaxRetries:     5,
			RetryBaseDelay: 1 * time.Second,
			RateLimit:      50,
			RateBurst:      100,
			CircuitBreaker: CircuitBreakerConfig{
				Enabled:      true,
				MaxRequests:  3,
				Interval:     1 * time.Minute,
				Timeout:      2 * time.Minute,
				MinRequests:  10,
				FailureRatio: 0.6,
			},
		},
		Session: SessionConfig{
			Store:           "memory",
			Path:            "/data/sessions",
			CookieName:      "classfront_session",
			Lifetime:        120 * time.Minute,
			Secure:          false,
			SameSite:        "lax",
			CleanupInterval: 5 * time.Minute,
			GCInterval:      10 * time.Minute,
		},
		Security: SecurityConfig{
			CSRFEnabled:       true,
			CORSOrigins:       []string{},
			RateLimitDisabled: false,
			RateLimitRequests: 100,
			RateLimitWindow:   1 * time.Minute,
			LoginRateLimit:    5,
			LoginRateWindow:   1 * time.Minute,
		},
		Inertia: InertiaConfig{
			AppName: "Classfront",
		},
		Assets: AssetsConfig{
			BasePath: ".",
			BuildDir: "build",
			Entry:    "resources/js/app.tsx",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf layers struct defaults, an optional YAML file and
// environment variables, in that order of precedence, then validates.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// ConfigFilePath returns the config file that LoadWithKoanf would read, or "".
func ConfigFilePath() string {
	return findConfigFile()
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths are split on commas when they arrive as strings from env.
var sliceConfigPaths = []string{
	"security.cors_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps environment variable names (lower case) to koanf paths.
// Unmapped variables are ignored so the process environment cannot leak
// into the configuration.
var envMappings = map[string]string{
	// Server
	"http_port":             "server.port",
	"http_host":             "server.host",
	"http_timeout":          "server.timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",
	"max_upload_size":       "server.max_upload_size",
	"environment":           "server.environment",
	"app_env":               "server.environment",

	// Backend API
	"api_url":                   "backend.url",
	"api_asset_origin":          "backend.asset_origin",
	"api_timeout":               "backend.timeout",
	"api_max_retries":           "backend.max_retries",
	"api_retry_base_delay":      "backend.retry_base_delay",
	"api_rate_limit":            "backend.rate_limit",
	"api_rate_burst":            "backend.rate_burst",
	"api_breaker_enabled":       "backend.circuit_breaker.enabled",
	"api_breaker_max_requests":  "backend.circuit_breaker.max_requests",
	"api_breaker_interval":      "backend.circuit_breaker.interval",
	"api_breaker_timeout":       "backend.circuit_breaker.timeout",
	"api_breaker_min_requests":  "backend.circuit_breaker.min_requests",
	"api_breaker_failure_ratio": "backend.circuit_breaker.failure_ratio",

	// Session
	"session_store":            "session.store",
	"session_store_path":       "session.path",
	"session_cookie":           "session.cookie_name",
	"session_lifetime":         "session.lifetime",
	"session_secure_cookie":    "session.secure",
	"session_same_site":        "session.same_site",
	"session_domain":           "session.domain",
	"session_encryption_key":   "session.encryption_key",
	"session_cleanup_interval": "session.cleanup_interval",
	"session_gc_interval":      "session.gc_interval",

	// Security
	"csrf_enabled":        "security.csrf_enabled",
	"cors_origins":        "security.cors_origins",
	"disable_rate_limit":  "security.rate_limit_disabled",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"login_rate_limit":    "security.login_rate_limit",
	"login_rate_window":   "security.login_rate_window",
	"casbin_model_path":   "security.casbin_model_path",
	"casbin_policy_path":  "security.casbin_policy_path",

	// Inertia and assets
	"app_name":            "inertia.app_name",
	"inertia_root_view":   "inertia.root_template",
	"inertia_version":     "inertia.version",
	"assets_base_path":    "assets.base_path",
	"assets_build_dir":    "assets.build_dir",
	"assets_entry":        "assets.entry",
	"vite_dev_server_url": "assets.dev_server_url",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}

// WatchConfigFile invokes callback whenever the file at path changes.
func WatchConfigFile(path string, callback func()) error {
	return file.Provider(path).Watch(func(_ interface{}, err error) {
		if err != nil {
			return
		}
		callback()
	})
}
