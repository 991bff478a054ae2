// Classfront - Course Storefront Web Front End
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/classfront

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/tomtom215/classfront/internal/config"
	"github.com/tomtom215/classfront/internal/metrics"
)

// ChiMiddlewareConfig holds configuration for the CORS and rate limit
// middleware.
type ChiMiddlewareConfig struct {
	CORSAllowedOrigins []string
	CORSAllowedMethods []string
	CORSAllowedHeaders []string
	CORSExposedHeaders []string
	CORSMaxAge         int // seconds

	RateLimitRequests int
	RateLimitWindow   time.Duration
	RateLimitDisabled bool

	// AuthRateLimit bounds login and register attempts per client IP.
	AuthRateLimit  int
	AuthRateWindow time.Duration

	// OnLimit answers rejected requests. Defaults to a plain 429.
	OnLimit http.HandlerFunc
}

// DefaultChiMiddlewareConfig returns the defaults. CORS stays off until
// origins are configured.
func DefaultChiMiddlewareConfig() *ChiMiddlewareConfig {
	return &ChiMiddlewareConfig{
		CORSAllowedOrigins: []string{},
		CORSAllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		CORSAllowedHeaders: []string{
			"Accept", "Content-Type", "X-Requested-With",
			"X-Inertia", "X-Inertia-Version", "X-Inertia-Partial-Component",
			"X-Inertia-Partial-Data", "X-Inertia-Partial-Except",
			"X-XSRF-TOKEN", "X-CSRF-TOKEN",
		},
		CORSExposedHeaders: []string{"X-Inertia", "X-Inertia-Location", "X-Request-ID"},
		CORSMaxAge:         86400,

		RateLimitRequests: 100,
		RateLimitWindow:   time.Minute,
		AuthRateLimit:     5,
		AuthRateWindow:    time.Minute,
	}
}

// ChiMiddlewareConfigFrom maps the security settings onto the defaults.
func ChiMiddlewareConfigFrom(cfg *config.SecurityConfig) *ChiMiddlewareConfig {
	c := DefaultChiMiddlewareConfig()
	c.CORSAllowedOrigins = cfg.CORSOrigins
	c.RateLimitRequests = cfg.RateLimitRequests
	c.RateLimitWindow = cfg.RateLimitWindow
	c.RateLimitDisabled = cfg.RateLimitDisabled
	c.AuthRateLimit = cfg.LoginRateLimit
	c.AuthRateWindow = cfg.LoginRateWindow
	return c
}

// ChiMiddleware builds the go-chi/cors and go-chi/httprate middleware.
type ChiMiddleware struct {
	config *ChiMiddlewareConfig
	cors   func(http.Handler) http.Handler
}

// NewChiMiddleware creates the middleware factory. A nil config takes the
// defaults.
func NewChiMiddleware(config *ChiMiddlewareConfig) *ChiMiddleware {
	if config == nil {
		config = DefaultChiMiddlewareConfig()
	}

	m := &ChiMiddleware{config: config}
	if len(config.CORSAllowedOrigins) > 0 {
		// Session cookies travel with cross-origin requests, so credentials
		// are allowed and origins must be listed explicitly.
		m.cors = cors.Handler(cors.Options{
			AllowedOrigins:   config.CORSAllowedOrigins,
			AllowedMethods:   config.CORSAllowedMethods,
			AllowedHeaders:   config.CORSAllowedHeaders,
			ExposedHeaders:   config.CORSExposedHeaders,
			AllowCredentials: true,
			MaxAge:           config.CORSMaxAge,
		})
	}
	return m
}

func passthrough(next http.Handler) http.Handler {
	return next
}

// CORS returns the CORS middleware, or a no-op when no origin is configured.
func (m *ChiMiddleware) CORS() func(http.Handler) http.Handler {
	if m.cors == nil {
		return passthrough
	}
	return m.cors
}

// RateLimit limits every page and form request per client IP.
func (m *ChiMiddleware) RateLimit() func(http.Handler) http.Handler {
	return m.limiter("global", m.config.RateLimitRequests, m.config.RateLimitWindow)
}

// RateLimitAuth limits login and register submissions per client IP.
func (m *ChiMiddleware) RateLimitAuth() func(http.Handler) http.Handler {
	return m.limiter("auth", m.config.AuthRateLimit, m.config.AuthRateWindow)
}

func (m *ChiMiddleware) limiter(name string, requests int, window time.Duration) func(http.Handler) http.Handler {
	if m.config.RateLimitDisabled || requests <= 0 || window <= 0 {
		return passthrough
	}

	onLimit := m.config.OnLimit
	if onLimit == nil {
		onLimit = func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
		}
	}

	// RealIP runs first, so RemoteAddr already holds the client address.
	return httprate.Limit(
		requests,
		window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			metrics.HTTPRateLimitHits.WithLabelValues(name).Inc()
			onLimit(w, r)
		}),
	)
}
