// Classfront - Course Storefront Web Front End
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/classfront

// Package metrics defines the Prometheus collectors exported on /metrics.
//
// Collectors are registered on the default registry through promauto when
// the package is imported. Groups:
//
//   - classfront_http_*: served requests, labelled by chi route pattern
//   - classfront_backend_*: calls to the course API, with endpoints
//     normalized by NormalizeEndpoint
//   - circuit_breaker_*: state of the breaker in front of the course API
//   - classfront_sessions_*, classfront_inertia_*, classfront_auth_*
package metrics
