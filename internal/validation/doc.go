// Classfront - Course Storefront Web Front End
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/classfront

// Package validation checks the login and register forms with
// go-playground/validator v10 before they are proxied to the API.
//
// Errors are keyed by the `form` tag and worded the way the frontend
// expects them:
//
//	err := validation.ValidateStruct(&form)
//	if err != nil {
//	    session.WithErrors(err.FieldErrors())
//	}
package validation
