// Classfront - Course Storefront Web Front End
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/classfront

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Backend.URL != "http://localhost:5000/api" {
		t.Errorf("Backend.URL = %q, want http://localhost:5000/api", cfg.Backend.URL)
	}
	if cfg.Server.Port != 8000 {
		t.Errorf("Server.Port = %d, want 8000", cfg.Server.Port)
	}
	if cfg.Session.Store != "memory" {
		t.Errorf("Session.Store = %q, want memory", cfg.Session.Store)
	}
	if cfg.Session.Lifetime != 120*time.Minute {
		t.Errorf("Session.Lifetime = %v, want 2h", cfg.Session.Lifetime)
	}
	if !cfg.Backend.CircuitBreaker.Enabled {
		t.Error("circuit breaker should be enabled by default")
	}
	if cfg.Assets.Entry != "resources/js/app.tsx" {
		t.Errorf("Assets.Entry = %q", cfg.Assets.Entry)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadWithKoanf_Defaults(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "missing.yaml"))

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}
	if cfg.Backend.Timeout != 30*time.Second {
		t.Errorf("Backend.Timeout = %v, want 30s", cfg.Backend.Timeout)
	}
	if cfg.Inertia.AppName != "Classfront" {
		t.Errorf("Inertia.AppName = %q", cfg.Inertia.AppName)
	}
}

func TestLoadWithKoanf_EnvOverrides(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("API_URL", "https://api.example.com/api")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("SESSION_LIFETIME", "30m")
	t.Setenv("CORS_ORIGINS", "https://a.example.com, https://b.example.com")
	t.Setenv("API_BREAKER_FAILURE_RATIO", "0.5")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("UNRELATED_VARIABLE", "ignored")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.Backend.URL != "https://api.example.com/api" {
		t.Errorf("Backend.URL = %q", cfg.Backend.URL)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Session.Lifetime != 30*time.Minute {
		t.Errorf("Session.Lifetime = %v, want 30m", cfg.Session.Lifetime)
	}
	if len(cfg.Security.CORSOrigins) != 2 || cfg.Security.CORSOrigins[1] != "https://b.example.com" {
		t.Errorf("CORSOrigins = %v", cfg.Security.CORSOrigins)
	}
	if cfg.Backend.CircuitBreaker.FailureRatio != 0.5 {
		t.Errorf("FailureRatio = %v", cfg.Backend.CircuitBreaker.FailureRatio)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q", cfg.Logging.Level)
	}
}

func TestLoadWithKoanf_YAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
backend:
  url: http://api.internal:5000/api
  asset_origin: https://cdn.example.com
session:
  store: badger
  path: ` + filepath.Join(dir, "sessions") + `
inertia:
  app_name: Kursus
security:
  cors_origins:
    - https://shop.example.com
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("APP_NAME", "Kursus Online")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.Backend.URL != "http://api.internal:5000/api" {
		t.Errorf("Backend.URL = %q", cfg.Backend.URL)
	}
	if cfg.Session.Store != "badger" {
		t.Errorf("Session.Store = %q", cfg.Session.Store)
	}
	if cfg.Inertia.AppName != "Kursus Online" {
		t.Errorf("env should override file, AppName = %q", cfg.Inertia.AppName)
	}
	if len(cfg.Security.CORSOrigins) != 1 || cfg.Security.CORSOrigins[0] != "https://shop.example.com" {
		t.Errorf("CORSOrigins = %v", cfg.Security.CORSOrigins)
	}
	origin, err := cfg.Backend.ResolvedAssetOrigin()
	if err != nil || origin != "https://cdn.example.com" {
		t.Errorf("ResolvedAssetOrigin() = %q, %v", origin, err)
	}
}

func TestLoadWithKoanf_InvalidFails(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("SESSION_STORE", "redis")

	if _, err := LoadWithKoanf(); err == nil {
		t.Fatal("expected validation error for unknown session store")
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := map[string]string{
		"API_URL":                "backend.url",
		"session_store":          "session.store",
		"SESSION_ENCRYPTION_KEY": "session.encryption_key",
		"VITE_DEV_SERVER_URL":    "assets.dev_server_url",
		"PATH":                   "",
		"HOME":                   "",
	}
	for in, want := range tests {
		if got := envTransformFunc(in); got != want {
			t.Errorf("envTransformFunc(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFindConfigFile_EnvPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 8001\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigPathEnvVar, path)

	if got := ConfigFilePath(); got != path {
		t.Errorf("ConfigFilePath() = %q, want %q", got, path)
	}
}
