// Classfront - Course Storefront Web Front End
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/classfront

// Package media normalizes course thumbnails and lesson videos returned by
// the API: uploaded files are made absolute against the API origin and
// YouTube links get an embeddable player URL.
package media
