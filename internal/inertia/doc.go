// Classfront - Course Storefront Web Front End
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/classfront

// Package inertia implements the server half of the Inertia page protocol.
//
// A page is a client component name plus JSON props. The first visit gets
// an HTML shell whose #app element carries the page in data-page; later
// visits made by the Inertia client (X-Inertia: true) get the page as
// JSON. The asset version is compared on every Inertia GET so that a new
// front-end build forces a full reload.
//
// Usage:
//
//	renderer, err := inertia.New(&cfg.Inertia, vite, inertia.WithShared(sharedProps))
//	r.Use(renderer.VersionMiddleware)
//
//	renderer.Render(w, r, "Courses/Show", inertia.Props{"course": course})
package inertia
