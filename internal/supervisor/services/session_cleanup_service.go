// Classfront - Course Storefront Web Front End
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/classfront

package services

import (
	"context"
	"time"

	"github.com/tomtom215/classfront/internal/logging"
	"github.com/tomtom215/classfront/internal/metrics"
)

// SessionSweeper is the part of auth.SessionStore the cleanup loop needs.
type SessionSweeper interface {
	CleanupExpired(ctx context.Context) (int, error)
	Count(ctx context.Context) (int, error)
}

// SessionCleanupService removes expired sessions on a fixed interval and
// keeps the active-sessions gauge current.
type SessionCleanupService struct {
	store    SessionSweeper
	interval time.Duration
	name     string
}

// NewSessionCleanupService creates the sweep loop. A non-positive interval
// becomes 15 minutes.
func NewSessionCleanupService(store SessionSweeper, interval time.Duration) *SessionCleanupService {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	return &SessionCleanupService{
		store:    store,
		interval: interval,
		name:     "session-cleanup",
	}
}

// Serve implements suture.Service. Store failures are logged and counted;
// the loop keeps running.
func (s *SessionCleanupService) Serve(ctx context.Context) error {
	s.refreshGauge(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep runs one cleanup pass.
func (s *SessionCleanupService) Sweep(ctx context.Context) {
	removed, err := s.store.CleanupExpired(ctx)
	if err != nil {
		metrics.SessionStoreErrors.WithLabelValues("cleanup").Inc()
		logging.Warn().Err(err).Msg("Session cleanup failed")
	} else if removed > 0 {
		metrics.SessionsExpired.Add(float64(removed))
		logging.Debug().Int("removed", removed).Msg("Expired sessions removed")
	}
	s.refreshGauge(ctx)
}

func (s *SessionCleanupService) refreshGauge(ctx context.Context) {
	n, err := s.store.Count(ctx)
	if err != nil {
		metrics.SessionStoreErrors.WithLabelValues("count").Inc()
		logging.Warn().Err(err).Msg("Session count failed")
		return
	}
	metrics.SessionsActive.Set(float64(n))
}

// String implements fmt.Stringer.
func (s *SessionCleanupService) String() string {
	return s.name
}
