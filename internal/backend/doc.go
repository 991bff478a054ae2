// Classfront - Course Storefront Web Front End
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/classfront

/*
Package backend is the client for the course REST API that owns every
piece of domain data (courses, carts, orders, enrollments, users).

Every page handler talks to the API through Client. A call either yields
the decoded JSON document or an error:

  - *StatusError for a non-2xx answer, with the API's error message
    available through Message and ErrorMessage
  - ErrCircuitOpen while the breaker is open
  - a wrapped transport or decode error otherwise

Failures are logged by the client itself, so handlers only decide what the
visitor sees.

Usage:

	client := backend.NewClient(&cfg.Backend)
	ctx := backend.ContextWithToken(r.Context(), sess.Token)

	courses, err := client.Get(ctx, "courses", nil)
	if err != nil {
	    courses = []any{}
	}

Multipart uploads:

	form := backend.NewForm()
	form.Add("title", "Mastering Go")
	form.AddFileHeader("thumbnail", fh)
	created, err := client.PostMultipart(ctx, "admin/courses", form)
*/
package backend
