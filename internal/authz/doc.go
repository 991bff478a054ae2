// Classfront - Course Storefront Web Front End
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/classfront

// Package authz gates the admin area with a Casbin RBAC enforcer.
//
// Subjects are the role the course API returned at login. The embedded
// policy lets "admin" use every method under /admin; CASBIN_MODEL_PATH and
// CASBIN_POLICY_PATH replace the embedded files.
package authz
