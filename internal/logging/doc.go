// Classfront - Course Storefront Web Front End
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/classfront

// Package logging provides the zerolog-based structured logger used across
// Classfront.
//
// # Quick Start
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//	logging.Info().Str("addr", ":8000").Msg("HTTP server starting")
//	logging.Ctx(r.Context()).Error().Err(err).Msg("API GET request exception")
//
// Ctx adds the request_id set by the request ID middleware and the user_id
// set by the session middleware. The same request ID goes to the course API
// as X-Request-ID.
//
// # Supervisor Integration
//
// NewSlogLogger adapts the global logger to log/slog for sutureslog.
//
// # Security Events
//
// SecurityLogger records login, logout, token expiry, admin denials and CSRF
// rejections. Emails are masked and session IDs truncated before they reach
// the log.
package logging
