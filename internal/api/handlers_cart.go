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

const cartPath = "/cart"

// Cart renders the visitor's cart.
func (h *Handler) Cart(w http.ResponseWriter, r *http.Request) {
	h.pages.Render(w, r, "Cart", inertia.Props{
		"cart": h.fetchList(r.Context(), "cart"),
	})
}

// AddToCart puts a course in the cart. Any 2xx counts as success, even an
// empty body.
func (h *Handler) AddToCart(w http.ResponseWriter, r *http.Request) {
	endpoint := "cart/" + url.PathEscape(chi.URLParam(r, "courseId"))
	if _, err := h.api.Post(r.Context(), endpoint, nil); err != nil {
		h.failBack(w, r, "Failed to add course to cart")
		return
	}
	h.succeed(w, r, cartPath, "Course added to cart")
}

// RemoveFromCart takes a course out of the cart.
func (h *Handler) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	endpoint := "cart/" + url.PathEscape(chi.URLParam(r, "courseId"))
	if _, err := h.api.Delete(r.Context(), endpoint); err != nil {
		h.failBack(w, r, "Failed to remove course from cart")
		return
	}
	h.succeed(w, r, cartPath, "Course removed from cart")
}

// Checkout renders the checkout page, or bounces an empty cart.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	cart := h.fetch(r.Context(), "cart")
	if backend.IsEmpty(cart) {
		h.failTo(w, r, cartPath, "Cart is empty")
		return
	}
	h.pages.Render(w, r, "Checkout", inertia.Props{"cart": cart})
}
