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
	"github.com/tomtom215/classfront/internal/logging"
)

const courseNotFoundMessage = "Course not found"

// Home renders the landing page with the course list.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	h.pages.Render(w, r, "Home", inertia.Props{
		"courses": h.fetchList(r.Context(), "courses"),
	})
}

// Courses renders the catalogue.
func (h *Handler) Courses(w http.ResponseWriter, r *http.Request) {
	h.pages.Render(w, r, "Courses", inertia.Props{
		"courses": h.fetchList(r.Context(), "courses"),
	})
}

// CourseShow renders one course, or 404 when the API has none.
func (h *Handler) CourseShow(w http.ResponseWriter, r *http.Request) {
	h.renderCourse(w, r, "Courses/Show", chi.URLParam(r, "id"))
}

func (h *Handler) renderCourse(w http.ResponseWriter, r *http.Request, component, id string) {
	doc, err := h.api.Get(r.Context(), "courses/"+url.PathEscape(id), nil)
	if err != nil && !backend.IsNotFound(err) {
		logging.Ctx(r.Context()).Warn().Err(err).Str("course_id", id).Msg("Course lookup failed, answering not found")
	}
	var course any
	if err == nil {
		course = h.media.Enrich(doc)
	}
	if backend.IsEmpty(course) {
		h.pages.Error(w, r, http.StatusNotFound, courseNotFoundMessage)
		return
	}
	h.pages.Render(w, r, component, inertia.Props{"course": course})
}
