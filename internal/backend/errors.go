// Classfront - Course Storefront Web Front End
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/classfront

package backend

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
)

// ErrCircuitOpen is returned without contacting the API while the circuit
// breaker is open or saturated in half-open state.
var ErrCircuitOpen = errors.New("course API circuit breaker is open")

// StatusError is a non-2xx answer from the course API.
type StatusError struct {
	Method     string
	Endpoint   string
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API %s %s returned HTTP %d", e.Method, e.Endpoint, e.StatusCode)
}

// Message returns the "error" (or "message") field of a JSON error body, or
// "" when the body carries neither.
func (e *StatusError) Message() string {
	var body struct {
		Error   any    `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(e.Body, &body); err != nil {
		return ""
	}
	if s, ok := body.Error.(string); ok && strings.TrimSpace(s) != "" {
		return s
	}
	return body.Message
}

// ErrorMessage returns the API's own error message carried by err, or
// fallback when err is nil, a transport failure or a body without one.
func ErrorMessage(err error, fallback string) string {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		if msg := statusErr.Message(); msg != "" {
			return msg
		}
	}
	return fallback
}

// IsNotFound reports whether err is an API 404.
func IsNotFound(err error) bool {
	return HasStatus(err, 404)
}

// HasStatus reports whether err is a StatusError with the given code.
func HasStatus(err error, code int) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.StatusCode == code
}
