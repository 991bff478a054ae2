// Classfront - Course Storefront Web Front End
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/classfront

package logging

import (
	"strings"

	"github.com/rs/zerolog"
)

// Security event names.
const (
	EventLoginSuccess = "login_success"
	EventLoginFailed  = "login_failed"
	EventRegister     = "register"
	EventLogout       = "logout"
	EventTokenExpired = "token_expired"
	EventAdminDenied  = "admin_denied"
	EventCSRFRejected = "csrf_rejected"
)

// SecurityEvent is an authentication or authorization event for the audit log.
type SecurityEvent struct {
	Event     string
	UserID    string
	Email     string
	SessionID string
	IPAddress string
	UserAgent string
	Path      string
	Success   bool
	Error     string
}

// SecurityLogger writes sanitized security events under the "auth" component.
type SecurityLogger struct {
	logger zerolog.Logger
}

// NewSecurityLogger creates a security logger on top of the global logger.
func NewSecurityLogger() *SecurityLogger {
	return &SecurityLogger{logger: WithComponent("auth")}
}

// NewSecurityLoggerWithLogger creates a security logger on top of logger.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewSecurityLoggerWithLogger(logger zerolog.Logger) *SecurityLogger {
	return &SecurityLogger{logger: logger.With().Str("component", "auth").Logger()}
}

// LogEvent writes event. Failed events are logged at warn level.
func (l *SecurityLogger) LogEvent(event *SecurityEvent) {
	e := l.logger.Info()
	status := "success"
	if !event.Success {
		e = l.logger.Warn()
		status = "failed"
	}
	e = e.Str("event", event.Event).Str("status", status)

	if event.UserID != "" {
		e = e.Str("user_id", event.UserID)
	}
	if event.Email != "" {
		e = e.Str("email", MaskEmail(event.Email))
	}
	if event.SessionID != "" {
		e = e.Str("session_id", TruncateSessionID(event.SessionID))
	}
	if event.IPAddress != "" {
		e = e.Str("ip", event.IPAddress)
	}
	if event.UserAgent != "" {
		e = e.Str("user_agent", truncate(event.UserAgent, 100))
	}
	if event.Path != "" {
		e = e.Str("path", event.Path)
	}
	if event.Error != "" && !event.Success {
		e = e.Str("reason", truncate(event.Error, 200))
	}
	e.Msg("security event")
}

// MaskEmail keeps the first character of the local part and the domain.
//
//	MaskEmail("budi@example.com") == "b***@example.com"
func MaskEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at <= 0 {
		return "***"
	}
	return email[:1] + "***" + email[at:]
}

// TruncateSessionID keeps the first eight characters of a session ID.
func TruncateSessionID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8] + "..."
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
