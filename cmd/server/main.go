// Classfront - Course Storefront Web Front End
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/classfront

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/classfront/internal/api"
	"github.com/tomtom215/classfront/internal/assets"
	"github.com/tomtom215/classfront/internal/auth"
	"github.com/tomtom215/classfront/internal/authz"
	"github.com/tomtom215/classfront/internal/backend"
	"github.com/tomtom215/classfront/internal/config"
	"github.com/tomtom215/classfront/internal/inertia"
	"github.com/tomtom215/classfront/internal/logging"
	"github.com/tomtom215/classfront/internal/media"
	"github.com/tomtom215/classfront/internal/supervisor"
	"github.com/tomtom215/classfront/internal/supervisor/services"
)

//nolint:gocyclo // Main initialization function with sequential setup steps
func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logCfg := logging.DefaultConfig()
	logCfg.Level = cfg.Logging.Level
	logCfg.Format = cfg.Logging.Format
	logCfg.Caller = cfg.Logging.Caller
	logCfg.Environment = cfg.Server.Environment
	logging.Init(logCfg)

	logging.Info().Msg("Starting Classfront with supervisor tree")
	logging.Info().
		Str("api_url", cfg.Backend.URL).
		Str("session_store", cfg.Session.Store).
		Str("environment", cfg.Server.Environment).
		Msg("Configuration loaded")

	// === SESSIONS ===
	factory, err := auth.NewSessionStoreFactory(&cfg.Session)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize session store")
	}
	defer func() {
		if err := factory.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing session store")
		}
	}()
	store := factory.CreateStore()
	sessions := auth.NewSessionManager(store, auth.SessionMiddlewareConfigFrom(&cfg.Session))

	if factory.Kind() == auth.SessionStoreMemory && !cfg.IsDevelopment() {
		logging.Warn().Msg("============================================================")
		logging.Warn().Msg("  NOTICE: Session store is set to 'memory' (SESSION_STORE=memory)")
		logging.Warn().Msg("  ")
		logging.Warn().Msg("  Visitors are signed out and carts lose their flash state")
		logging.Warn().Msg("  whenever the server restarts. For production use:")
		logging.Warn().Msg("    SESSION_STORE=badger")
		logging.Warn().Msg("    SESSION_STORE_PATH=/data/sessions")
		logging.Warn().Msg("============================================================")
	}

	// === COURSE API ===
	apiClient := backend.NewClient(&cfg.Backend)
	assetOrigin, err := cfg.Backend.ResolvedAssetOrigin()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to resolve asset origin")
	}
	logging.Info().
		Str("base_url", apiClient.BaseURL()).
		Str("asset_origin", assetOrigin).
		Bool("circuit_breaker", cfg.Backend.CircuitBreaker.Enabled).
		Msg("Course API client initialized")

	// === AUTHORIZATION ===
	enforcer, err := authz.NewEnforcer(authz.EnforcerConfigFrom(&cfg.Security))
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize authorization")
	}
	logging.Info().
		Int("policy_rules", len(enforcer.GetPolicy())).
		Bool("reloads_policy", enforcer.ReloadsPolicy()).
		Msg("Admin authorization initialized")

	// === PAGES ===
	vite, err := assets.New(&cfg.Assets, cfg.Inertia.Version)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load Vite assets")
	}
	logging.Info().
		Str("public_dir", vite.PublicDir()).
		Str("version", vite.Version()).
		Str("dev_server", vite.DevServerURL()).
		Msg("Assets loaded")

	pages, err := inertia.New(&cfg.Inertia, vite, inertia.WithShared(api.SharedProps))
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize page renderer")
	}

	handler := api.NewHandler(apiClient, sessions, pages, media.NewEnricher(assetOrigin), 0)

	var csrf *auth.CSRFMiddleware
	if cfg.Security.CSRFEnabled {
		csrfCfg := auth.DefaultCSRFConfig()
		csrfCfg.CookieDomain = cfg.Session.Domain
		csrfCfg.CookieSecure = cfg.Session.Secure
		csrfCfg.CookieSameSite = auth.ParseSameSite(cfg.Session.SameSite)
		csrfCfg.ErrorHandler = func(w http.ResponseWriter, r *http.Request, _ error) {
			pages.Error(w, r, auth.StatusPageExpired, "The page expired, please try again.")
		}
		csrf = auth.NewCSRFMiddleware(csrfCfg)
	} else {
		logging.Warn().Msg("CSRF protection is DISABLED (CSRF_ENABLED=false)")
	}

	if cfg.Security.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is DISABLED (DISABLE_RATE_LIMIT=true)")
	}

	chiMiddleware := api.NewChiMiddleware(api.ChiMiddlewareConfigFrom(&cfg.Security))
	router := api.NewRouter(
		handler,
		csrf,
		authz.NewMiddleware(enforcer, pages.Error),
		vite,
		chiMiddleware,
		cfg.Server.MaxUploadSize,
	)

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router.SetupChi(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}

	// === SUPERVISOR TREE ===
	treeCfg := supervisor.DefaultTreeConfig()
	treeCfg.ShutdownTimeout = cfg.Server.ShutdownTimeout
	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), treeCfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	tree.AddSessionService(services.NewSessionCleanupService(store, cfg.Session.CleanupInterval))
	if db := factory.DB(); db != nil {
		tree.AddSessionService(services.NewBadgerGCService(db, cfg.Session.GCInterval))
		logging.Info().Msg("Badger value log GC added to supervisor tree")
	}
	if enforcer.ReloadsPolicy() {
		tree.AddWebService(enforcer)
		logging.Info().Str("path", cfg.Security.CasbinPolicyPath).Msg("Admin policy reload added to supervisor tree")
	}
	tree.AddWebService(services.NewHTTPServerService(server, server.Addr, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	watchConfig(vite)

	// === START SUPERVISOR TREE ===
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Shutdown signal received, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
		stop()
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Application stopped gracefully")
}

// watchConfig re-applies the log level and reloads the Vite manifest when
// the config file changes.
func watchConfig(vite *assets.Vite) {
	path := config.ConfigFilePath()
	if path == "" {
		return
	}
	err := config.WatchConfigFile(path, func() {
		cfg, err := config.Load()
		if err != nil {
			logging.Warn().Err(err).Msg("Ignoring invalid configuration change")
			return
		}
		logging.SetLevelString(cfg.Logging.Level)
		if err := vite.Reload(); err != nil {
			logging.Warn().Err(err).Msg("Failed to reload Vite manifest")
		}
		logging.Info().Str("level", cfg.Logging.Level).Msg("Configuration reloaded")
	})
	if err != nil {
		logging.Warn().Err(err).Str("path", path).Msg("Config file watch disabled")
	}
}
