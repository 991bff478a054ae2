// Classfront - Course Storefront Web Front End
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/classfront

package backend

import (
	"strconv"

	"github.com/goccy/go-json"
)

// Lookup walks a decoded document through object keys and array indexes
// (given as decimal strings). It returns nil, false when any step is
// missing.
func Lookup(doc any, path ...string) (any, bool) {
	current := doc
	for _, key := range path {
		switch node := current.(type) {
		case map[string]any:
			next, ok := node[key]
			if !ok {
				return nil, false
			}
			current = next
		case []any:
			idx, err := strconv.Atoi(key)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil, false
			}
			current = node[idx]
		default:
			return nil, false
		}
	}
	return current, true
}

// LookupString returns the value at path rendered as a string. Numbers keep
// their literal text; objects, arrays, nulls and booleans yield "", false.
func LookupString(doc any, path ...string) (string, bool) {
	v, ok := Lookup(doc, path...)
	if !ok {
		return "", false
	}
	switch val := v.(type) {
	case string:
		return val, true
	case json.Number:
		return val.String(), true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case int:
		return strconv.Itoa(val), true
	case int64:
		return strconv.FormatInt(val, 10), true
	default:
		return "", false
	}
}

// Has reports whether path exists and is not null.
func Has(doc any, path ...string) bool {
	v, ok := Lookup(doc, path...)
	return ok && v != nil
}

// IsEmpty reports whether a decoded value is "empty" in the loose sense
// used for API answers: nil, false, zero, "", "0", an empty array or an
// empty object.
func IsEmpty(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case bool:
		return !val
	case string:
		return val == "" || val == "0"
	case json.Number:
		f, err := val.Float64()
		return err == nil && f == 0
	case float64:
		return val == 0
	case int:
		return val == 0
	case int64:
		return val == 0
	case []any:
		return len(val) == 0
	case map[string]any:
		return len(val) == 0
	default:
		return false
	}
}
