// Classfront - Course Storefront Web Front End
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/classfront

package api

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/classfront/internal/backend"
	"github.com/tomtom215/classfront/internal/inertia"
)

// CreateOrder places an order for the cart. A payment proof upload is
// forwarded as multipart, anything else as JSON.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	in, ok := h.readForm(w, r)
	if !ok {
		return
	}

	excluded := []string{"_token", "payment_proof"}
	var err error
	if in.File("payment_proof") != nil {
		_, err = h.api.PostMultipart(r.Context(), "orders", in.Form(excluded, "payment_proof"))
	} else {
		_, err = h.api.Post(r.Context(), "orders", in.Except(excluded...))
	}
	if err != nil {
		h.failBack(w, r, "Failed to create order")
		return
	}
	h.succeed(w, r, "/orders", "Order created successfully")
}

// Orders renders the visitor's orders.
func (h *Handler) Orders(w http.ResponseWriter, r *http.Request) {
	h.pages.Render(w, r, "Orders", inertia.Props{
		"orders": h.fetchList(r.Context(), "orders"),
	})
}

// Enrollments renders the courses the visitor is enrolled in.
func (h *Handler) Enrollments(w http.ResponseWriter, r *http.Request) {
	h.pages.Render(w, r, "Enrollments", inertia.Props{
		"enrollments": h.fetchList(r.Context(), "enrollments"),
	})
}

// EnrollmentShow renders an enrolled course with its videos.
func (h *Handler) EnrollmentShow(w http.ResponseWriter, r *http.Request) {
	enrollment := h.fetch(r.Context(), "enrollments/"+url.PathEscape(chi.URLParam(r, "courseId")))
	if backend.IsEmpty(enrollment) {
		h.pages.Error(w, r, http.StatusForbidden, "You are not enrolled in this course")
		return
	}
	h.pages.Render(w, r, "Enrollments/Show", inertia.Props{"enrollment": enrollment})
}
