// Classfront - Course Storefront Web Front End
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/classfront

// Package services adapts Classfront's long-running components to
// suture.Service so the supervisor tree can restart them.
//
//   - HTTPServerService: the web server (web layer)
//   - SessionCleanupService: expired-session sweep and session gauge (session layer)
//   - BadgerGCService: value log garbage collection for the badger store (session layer)
//
// Each service blocks in Serve until its context is cancelled and
// implements fmt.Stringer so suture can name it in log lines.
package services
