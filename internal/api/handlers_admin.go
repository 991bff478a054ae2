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

const (
	adminCoursesPath = "/admin/courses"
	adminOrdersPath  = "/admin/orders"
)

// Fields never forwarded to the API with course and video forms.
var (
	courseFormExcluded = []string{"_token", "_method", "thumbnail", "preview_video"}
	videoFormExcluded  = []string{"_token", "_method", "video"}
)

func adminCoursePath(id string) string {
	return adminCoursesPath + "/" + url.PathEscape(id)
}

// AdminIndex renders the dashboard with courses and all orders.
func (h *Handler) AdminIndex(w http.ResponseWriter, r *http.Request) {
	h.pages.Render(w, r, "Admin/Index", inertia.Props{
		"courses": h.listProp("courses"),
		"orders":  h.listProp("admin/orders"),
	})
}

// AdminCourses renders the course management list.
func (h *Handler) AdminCourses(w http.ResponseWriter, r *http.Request) {
	h.pages.Render(w, r, "Admin/Courses", inertia.Props{
		"courses": h.fetchList(r.Context(), "courses"),
	})
}

// AdminCourseCreate renders the new-course form.
func (h *Handler) AdminCourseCreate(w http.ResponseWriter, r *http.Request) {
	h.pages.Render(w, r, "Admin/Courses/Create", nil)
}

// AdminCourseShow renders a course with its videos.
func (h *Handler) AdminCourseShow(w http.ResponseWriter, r *http.Request) {
	h.renderCourse(w, r, "Admin/Courses/Show", chi.URLParam(r, "id"))
}

// AdminCourseEdit renders the edit form.
func (h *Handler) AdminCourseEdit(w http.ResponseWriter, r *http.Request) {
	h.renderCourse(w, r, "Admin/Courses/Edit", chi.URLParam(r, "id"))
}

// AdminCourseStore creates a course with optional thumbnail and preview
// video, then opens it.
func (h *Handler) AdminCourseStore(w http.ResponseWriter, r *http.Request) {
	in, ok := h.readForm(w, r)
	if !ok {
		return
	}

	resp, err := h.api.PostMultipart(r.Context(), "admin/courses",
		in.Form(courseFormExcluded, "thumbnail", "preview_video"))
	if err != nil {
		h.failBack(w, r, backend.ErrorMessage(err, "Failed to create course"))
		return
	}

	target := adminCoursesPath
	if id, ok := documentID(resp, "course"); ok {
		target = adminCoursePath(id)
	}
	h.succeed(w, r, target, "Course created successfully")
}

// AdminCourseUpdate replaces a course's fields and optionally its files.
func (h *Handler) AdminCourseUpdate(w http.ResponseWriter, r *http.Request) {
	in, ok := h.readForm(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")

	_, err := h.api.PutMultipart(r.Context(), "admin/courses/"+url.PathEscape(id),
		in.Form(courseFormExcluded, "thumbnail", "preview_video"))
	if err != nil {
		h.failBack(w, r, backend.ErrorMessage(err, "Failed to update course"))
		return
	}
	h.succeed(w, r, adminCoursePath(id), "Course updated successfully")
}

// AdminVideoStore adds a video, uploaded or linked, to a course.
func (h *Handler) AdminVideoStore(w http.ResponseWriter, r *http.Request) {
	in, ok := h.readForm(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")

	_, err := h.api.PostMultipart(r.Context(), "admin/courses/"+url.PathEscape(id)+"/videos",
		in.Form(videoFormExcluded, "video"))
	if err != nil {
		h.failBack(w, r, backend.ErrorMessage(err, "Failed to add video"))
		return
	}
	h.succeed(w, r, adminCoursePath(id), "Video added successfully")
}

// AdminVideoUpdate edits a video of a course.
func (h *Handler) AdminVideoUpdate(w http.ResponseWriter, r *http.Request) {
	in, ok := h.readForm(w, r)
	if !ok {
		return
	}
	courseID, videoID := chi.URLParam(r, "courseId"), chi.URLParam(r, "videoId")

	endpoint := "admin/courses/" + url.PathEscape(courseID) + "/videos/" + url.PathEscape(videoID)
	if _, err := h.api.PutMultipart(r.Context(), endpoint, in.Form(videoFormExcluded, "video")); err != nil {
		h.failBack(w, r, backend.ErrorMessage(err, "Failed to update video"))
		return
	}
	h.succeed(w, r, adminCoursePath(courseID), "Video updated successfully")
}

// AdminVideoDelete removes a video from a course.
func (h *Handler) AdminVideoDelete(w http.ResponseWriter, r *http.Request) {
	courseID, videoID := chi.URLParam(r, "courseId"), chi.URLParam(r, "videoId")

	endpoint := "admin/courses/" + url.PathEscape(courseID) + "/videos/" + url.PathEscape(videoID)
	if _, err := h.api.Delete(r.Context(), endpoint); err != nil {
		h.failBack(w, r, "Failed to delete video")
		return
	}
	h.succeed(w, r, adminCoursePath(courseID), "Video deleted successfully")
}

// AdminOrders renders every order for payment review.
func (h *Handler) AdminOrders(w http.ResponseWriter, r *http.Request) {
	h.pages.Render(w, r, "Admin/Orders", inertia.Props{
		"orders": h.fetchList(r.Context(), "admin/orders"),
	})
}

// AdminOrderConfirm marks an order's payment as confirmed.
func (h *Handler) AdminOrderConfirm(w http.ResponseWriter, r *http.Request) {
	endpoint := "admin/orders/" + url.PathEscape(chi.URLParam(r, "orderId")) + "/confirm"
	if _, err := h.api.Patch(r.Context(), endpoint, nil); err != nil {
		h.failBack(w, r, backend.ErrorMessage(err, "Failed to confirm payment"))
		return
	}
	h.succeed(w, r, adminOrdersPath, "Payment confirmed successfully")
}

// documentID returns the id (or _id) of the object under key.
func documentID(doc any, key string) (string, bool) {
	for _, field := range []string{"id", "_id"} {
		if id, ok := backend.LookupString(doc, key, field); ok && id != "" {
			return id, true
		}
	}
	return "", false
}
