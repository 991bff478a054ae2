// Classfront - Course Storefront Web Front End
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/classfront

package authz

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"github.com/casbin/casbin/v2/persist"
	fileadapter "github.com/casbin/casbin/v2/persist/file-adapter"
	stringadapter "github.com/casbin/casbin/v2/persist/string-adapter"

	"github.com/tomtom215/classfront/internal/config"
	"github.com/tomtom215/classfront/internal/logging"
	"github.com/tomtom215/classfront/internal/metrics"
)

//go:embed model.conf
var embeddedModel string

//go:embed policy.csv
var embeddedPolicy string

// EnforcerConfig holds configuration for the Casbin enforcer.
type EnforcerConfig struct {
	// ModelPath overrides the embedded model when the file exists.
	ModelPath string

	// PolicyPath overrides the embedded policy when the file exists.
	PolicyPath string

	// ReloadInterval is how often Serve re-reads PolicyPath.
	ReloadInterval time.Duration

	// CacheTTL caches decisions when positive.
	CacheTTL time.Duration
}

// DefaultEnforcerConfig returns default configuration.
func DefaultEnforcerConfig() *EnforcerConfig {
	return &EnforcerConfig{
		ReloadInterval: 30 * time.Second,
		CacheTTL:       5 * time.Minute,
	}
}

// EnforcerConfigFrom builds enforcer settings from the security config.
func EnforcerConfigFrom(cfg *config.SecurityConfig) *EnforcerConfig {
	ec := DefaultEnforcerConfig()
	ec.ModelPath = cfg.CasbinModelPath
	ec.PolicyPath = cfg.CasbinPolicyPath
	return ec
}

// Enforcer decides whether a session role may use an admin route.
type Enforcer struct {
	config     *EnforcerConfig
	enforcer   *casbin.SyncedEnforcer
	cache      *decisionCache
	policyFile string
}

// NewEnforcer loads the model and policy, from files when they exist and
// from the embedded defaults otherwise.
func NewEnforcer(cfg *EnforcerConfig) (*Enforcer, error) {
	if cfg == nil {
		cfg = DefaultEnforcerConfig()
	}

	var m model.Model
	var err error
	if cfg.ModelPath != "" && fileExists(cfg.ModelPath) {
		m, err = model.NewModelFromFile(cfg.ModelPath)
	} else {
		m, err = model.NewModelFromString(embeddedModel)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load casbin model: %w", err)
	}

	e := &Enforcer{config: cfg}
	var adapter persist.Adapter
	if cfg.PolicyPath != "" && fileExists(cfg.PolicyPath) {
		e.policyFile = cfg.PolicyPath
		adapter = fileadapter.NewAdapter(cfg.PolicyPath)
	} else {
		adapter = stringadapter.NewAdapter(embeddedPolicy)
	}

	e.enforcer, err = casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin enforcer: %w", err)
	}
	if cfg.CacheTTL > 0 {
		e.cache = newDecisionCache(cfg.CacheTTL)
	}
	return e, nil
}

// Enforce reports whether role may perform method on path. Record IDs in
// path are folded to :id first, which keyMatch2 patterns still match.
func (e *Enforcer) Enforce(role, path, method string) (bool, error) {
	if role == "" {
		return false, nil
	}

	key := decisionKey{role: role, method: method, path: metrics.NormalizeEndpoint(path)}
	now := time.Now()
	if e.cache != nil {
		if allowed, ok := e.cache.get(key, now); ok {
			return allowed, nil
		}
	}

	allowed, err := e.enforcer.Enforce(key.role, key.path, key.method)
	if err != nil {
		return false, fmt.Errorf("enforcement failed: %w", err)
	}
	if e.cache != nil {
		e.cache.put(key, allowed, now)
	}
	return allowed, nil
}

// GetPolicy returns all policy rules.
func (e *Enforcer) GetPolicy() [][]string {
	//nolint:errcheck // only fails on a nil model
	policies, _ := e.enforcer.GetPolicy()
	return policies
}

// Reload re-reads the policy and drops cached decisions. On error the
// previous policy stays in force.
func (e *Enforcer) Reload() error {
	if err := e.enforcer.LoadPolicy(); err != nil {
		return fmt.Errorf("reload casbin policy: %w", err)
	}
	e.resetCache()
	return nil
}

// ReloadsPolicy reports whether Serve has a policy file to watch.
func (e *Enforcer) ReloadsPolicy() bool {
	return e.policyFile != "" && e.config.ReloadInterval > 0
}

// Serve implements suture.Service, reloading the policy file every
// ReloadInterval. A bad edit is logged and the last good policy kept.
func (e *Enforcer) Serve(ctx context.Context) error {
	if !e.ReloadsPolicy() {
		<-ctx.Done()
		return ctx.Err()
	}

	ticker := time.NewTicker(e.config.ReloadInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := e.Reload(); err != nil {
				logging.Warn().Err(err).Str("path", e.policyFile).Msg("Keeping previous admin policy")
				continue
			}
			logging.Debug().Str("path", e.policyFile).Int("rules", len(e.GetPolicy())).Msg("Admin policy reloaded")
		}
	}
}

// String implements fmt.Stringer.
func (e *Enforcer) String() string {
	return "casbin-policy-reload"
}

func (e *Enforcer) resetCache() {
	if e.cache != nil {
		e.cache.reset()
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
