// Classfront - Course Storefront Web Front End
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/classfront

/*
Package auth keeps visitor sessions for the storefront.

The course API authenticates users and issues bearer tokens; this package
only remembers what the API handed back. A Session holds the API's user
object, its bearer token and one-request values (flash messages, validation
errors, old form input, the intended URL) that survive a single redirect.

Key Components:

  - SessionManager: loads the session named by the cookie, slides its
    expiry, and writes it back just before the response headers are sent
  - MemorySessionStore and BadgerSessionStore: SessionStore backends;
    badger entries carry a TTL and tokens are AES-GCM encrypted at rest
  - CSRFMiddleware: per-session token mirrored in the XSRF-TOKEN cookie,
    rejected requests get 419 Page Expired
  - RequireAuth and RequireGuest: route guards

Login regenerates the session ID. Logout deletes the stored session and
clears the cookie. When the API token's exp claim has passed the visitor is
signed out on the next request.
*/
package auth
