// Classfront - Course Storefront Web Front End
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/classfront

package authz

import (
	"strconv"
	"testing"
	"time"
)

func TestDecisionCache(t *testing.T) {
	t.Parallel()

	c := newDecisionCache(time.Minute)
	now := time.Now()
	get := decisionKey{role: "admin", method: "GET", path: "/admin"}
	post := decisionKey{role: "admin", method: "POST", path: "/admin"}

	if _, ok := c.get(get, now); ok {
		t.Error("empty cache reported a hit")
	}
	c.put(get, true, now)
	if allowed, ok := c.get(get, now); !ok || !allowed {
		t.Errorf("get() = %v, %v", allowed, ok)
	}
	if _, ok := c.get(post, now); ok {
		t.Error("method must be part of the key")
	}
	if _, ok := c.get(get, now.Add(2*time.Minute)); ok {
		t.Error("expired decision returned")
	}

	c.reset()
	if c.len() != 0 {
		t.Errorf("len after reset = %d", c.len())
	}
}

func TestDecisionCache_Bounded(t *testing.T) {
	t.Parallel()

	c := newDecisionCache(time.Minute)
	now := time.Now()
	for i := 0; i <= maxCachedDecisions; i++ {
		c.put(decisionKey{role: "admin", method: "GET", path: "/admin/courses/go-" + strconv.Itoa(i)}, true, now)
	}
	if c.len() > maxCachedDecisions {
		t.Errorf("len = %d, exceeds %d", c.len(), maxCachedDecisions)
	}

	// Refreshing an existing key never resets a full cache.
	full := newDecisionCache(time.Minute)
	for i := 0; i < maxCachedDecisions; i++ {
		full.put(decisionKey{role: "admin", path: strconv.Itoa(i)}, true, now)
	}
	full.put(decisionKey{role: "admin", path: "0"}, false, now)
	if full.len() != maxCachedDecisions {
		t.Errorf("len = %d, want %d", full.len(), maxCachedDecisions)
	}
}
