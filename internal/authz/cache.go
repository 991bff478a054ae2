// Classfront - Course Storefront Web Front End
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/classfront

package authz

import (
	"sync"
	"time"
)

// maxCachedDecisions caps paths whose IDs survive normalization (slugs).
const maxCachedDecisions = 10000

// decisionKey identifies one decision. path is already normalized, so
// /admin/courses/42 and /admin/courses/43 share an entry.
type decisionKey struct {
	role   string
	method string
	path   string
}

type decision struct {
	allowed bool
	expires time.Time
}

// decisionCache holds recent casbin decisions. Stale entries are overwritten
// on the next miss instead of being swept.
type decisionCache struct {
	ttl   time.Duration
	mu    sync.RWMutex
	items map[decisionKey]decision
}

func newDecisionCache(ttl time.Duration) *decisionCache {
	return &decisionCache{ttl: ttl, items: make(map[decisionKey]decision)}
}

func (c *decisionCache) get(k decisionKey, now time.Time) (allowed, ok bool) {
	c.mu.RLock()
	d, found := c.items[k]
	c.mu.RUnlock()
	if !found || now.After(d.expires) {
		return false, false
	}
	return d.allowed, true
}

// put records a decision. A full cache starts over.
func (c *decisionCache) put(k decisionKey, allowed bool, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.items[k]; !exists && len(c.items) >= maxCachedDecisions {
		c.items = make(map[decisionKey]decision)
	}
	c.items[k] = decision{allowed: allowed, expires: now.Add(c.ttl)}
}

func (c *decisionCache) reset() {
	c.mu.Lock()
	c.items = make(map[decisionKey]decision)
	c.mu.Unlock()
}

func (c *decisionCache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
