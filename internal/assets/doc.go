// Classfront - Course Storefront Web Front End
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/classfront

// Package assets serves the public directory and resolves the Vite bundle
// for the page shell.
//
// In production the entry (resources/js/app.tsx by default) is looked up in
// <public>/build/manifest.json and its CSS and imported chunks are emitted
// with it. When VITE_DEV_SERVER_URL is set, or <public>/hot exists, tags
// point at the dev server instead. The Inertia asset version is the
// xxhash of the manifest, so every deploy forces clients to reload.
package assets
