// Classfront - Course Storefront Web Front End
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/classfront

package services

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/tomtom215/classfront/internal/logging"
	"github.com/tomtom215/classfront/internal/metrics"
)

// DefaultGCDiscardRatio is the share of a value log file that must be
// garbage before badger rewrites it.
const DefaultGCDiscardRatio = 0.5

// ValueLogCollector is satisfied by *badger.DB.
type ValueLogCollector interface {
	RunValueLogGC(discardRatio float64) error
}

// BadgerGCService reclaims value log space left behind by expired and
// rewritten sessions.
type BadgerGCService struct {
	db           ValueLogCollector
	interval     time.Duration
	discardRatio float64
	name         string
}

// NewBadgerGCService creates the GC loop. A non-positive interval becomes
// 10 minutes.
func NewBadgerGCService(db ValueLogCollector, interval time.Duration) *BadgerGCService {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &BadgerGCService{
		db:           db,
		interval:     interval,
		discardRatio: DefaultGCDiscardRatio,
		name:         "badger-gc",
	}
}

// Serve implements suture.Service.
func (g *BadgerGCService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(g.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := g.RunGC(ctx); err != nil {
				metrics.SessionStoreErrors.WithLabelValues("gc").Inc()
				logging.Warn().Err(err).Msg("Session store GC failed")
			}
		}
	}
}

// RunGC rewrites value log files until badger reports nothing left to
// reclaim, and returns how many files were rewritten.
func (g *BadgerGCService) RunGC(ctx context.Context) (int, error) {
	rewritten := 0
	for ctx.Err() == nil {
		err := g.db.RunValueLogGC(g.discardRatio)
		switch {
		case err == nil:
			rewritten++
		case errors.Is(err, badger.ErrNoRewrite), errors.Is(err, badger.ErrRejected):
			if rewritten > 0 {
				logging.Debug().Int("files", rewritten).Msg("Session store value log compacted")
			}
			return rewritten, nil
		default:
			return rewritten, err
		}
	}
	return rewritten, nil
}

// String implements fmt.Stringer.
func (g *BadgerGCService) String() string {
	return g.name
}
