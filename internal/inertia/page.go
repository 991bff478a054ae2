// Classfront - Course Storefront Web Front End
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/classfront

package inertia

import (
	"context"
	"fmt"
	"slices"
	"strings"
)

// Protocol headers.
const (
	HeaderInertia          = "X-Inertia"
	HeaderVersion          = "X-Inertia-Version"
	HeaderLocation         = "X-Inertia-Location"
	HeaderPartialComponent = "X-Inertia-Partial-Component"
	HeaderPartialData      = "X-Inertia-Partial-Data"
	HeaderPartialExcept    = "X-Inertia-Partial-Except"
)

// Props are the data handed to a page component.
type Props map[string]any

// Page is the object the Inertia client boots from.
type Page struct {
	Component string `json:"component"`
	Props     Props  `json:"props"`
	URL       string `json:"url"`
	Version   string `json:"version"`
}

// LazyProp is evaluated only when a partial reload names it.
type LazyProp func(ctx context.Context) (any, error)

// Lazy wraps fn so it runs only on partial reloads that ask for it.
func Lazy(fn func(ctx context.Context) (any, error)) LazyProp {
	return LazyProp(fn)
}

// FuncProp is evaluated only when the prop is sent, on full visits as well
// as partial reloads that keep it.
type FuncProp func(ctx context.Context) (any, error)

// Func wraps fn so a partial reload that leaves the prop out skips it.
func Func(fn func(ctx context.Context) (any, error)) FuncProp {
	return FuncProp(fn)
}

// partial describes which props a partial reload wants.
type partial struct {
	only   []string
	except []string
}

// active reports whether the request is a partial reload of component.
func (p *partial) active() bool {
	return p != nil && (len(p.only) > 0 || len(p.except) > 0)
}

// includes reports whether key survives the partial filter. The errors
// prop is always kept so validation feedback reaches the form.
func (p *partial) includes(key string) bool {
	if key == "errors" || !p.active() {
		return true
	}
	if len(p.only) > 0 && !slices.Contains(p.only, key) {
		return false
	}
	return !slices.Contains(p.except, key)
}

// wants reports whether a lazy prop should be evaluated.
func (p *partial) wants(key string) bool {
	return p.active() && len(p.only) > 0 && slices.Contains(p.only, key) && !slices.Contains(p.except, key)
}

func splitHeader(value string) []string {
	if value == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// resolveProps merges shared and page props (page props win), applies the
// partial filter, then evaluates the Func props that survive it and the lazy
// props that were asked for.
func resolveProps(ctx context.Context, shared, props Props, p *partial) (Props, error) {
	merged := make(Props, len(shared)+len(props))
	for k, v := range shared {
		merged[k] = v
	}
	for k, v := range props {
		merged[k] = v
	}

	out := make(Props, len(merged))
	for k, v := range merged {
		if !p.includes(k) {
			continue
		}
		var fn func(context.Context) (any, error)
		switch prop := v.(type) {
		case LazyProp:
			if !p.wants(k) {
				continue
			}
			fn = prop
		case FuncProp:
			fn = prop
		default:
			out[k] = v
			continue
		}
		value, err := fn(ctx)
		if err != nil {
			return nil, fmt.Errorf("prop %q: %w", k, err)
		}
		out[k] = value
	}
	return out, nil
}
