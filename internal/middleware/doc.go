// Classfront - Course Storefront Web Front End
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/classfront

/*
Package middleware provides infrastructure HTTP middleware for the chi router.

Key Components:

  - RequestID: X-Request-ID propagation into the request and logging contexts
  - PrometheusMetrics: request count, latency and in-flight gauge labelled by
    chi route pattern
  - MethodOverride: turns POST + _method=PUT|PATCH|DELETE into the spoofed
    method before routing

Session, CSRF and authorization middleware live in the auth and authz
packages. Typical ordering in the router:

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.PrometheusMetrics)
	r.Use(chimw.Recoverer)
	r.Use(middleware.MethodOverride(maxUpload))
	r.Use(sessions.Middleware)
*/
package middleware
