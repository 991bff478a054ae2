// Classfront - Course Storefront Web Front End
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/classfront

// Package api serves the storefront's pages and form endpoints.
//
// Every page is an Inertia response: the first visit receives the HTML
// shell with the page object embedded, later visits from the client
// receive the page object as JSON. Data comes from the course REST API
// through backend.Client with the visitor's bearer token.
//
// # Routes
//
// Public: /, /courses, /courses/{id}, /login, /register, /logout.
// Signed in: /cart, /checkout, /orders, /enrollments.
// Admin (role admin, enforced by casbin): everything under /admin.
//
// Mutations answer with a 302 (303 after PUT, PATCH and DELETE) to the next
// page and carry their outcome in the session: a flash.success message or
// an errors bag plus the previous input.
//
// # Middleware Order
//
//	RequestID -> RealIP -> Recoverer -> CORS -> Prometheus -> Compress
//	  -> RequestSize -> MethodOverride -> [page group]
//	    Session -> CSRF -> BindToken -> Inertia version -> RateLimit
//
// Probes (/healthz, /readyz) and /metrics sit outside the page group and
// carry no session.
package api
