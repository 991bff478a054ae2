// Classfront - Course Storefront Web Front End
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/classfront

package api

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/tomtom215/classfront/internal/auth"
	"github.com/tomtom215/classfront/internal/backend"
	"github.com/tomtom215/classfront/internal/inertia"
	"github.com/tomtom215/classfront/internal/logging"
	"github.com/tomtom215/classfront/internal/media"
)

// CourseAPI is the part of *backend.Client the handlers use.
type CourseAPI interface {
	Get(ctx context.Context, endpoint string, query url.Values) (any, error)
	Post(ctx context.Context, endpoint string, data any) (any, error)
	Put(ctx context.Context, endpoint string, data any) (any, error)
	Patch(ctx context.Context, endpoint string, data any) (any, error)
	Delete(ctx context.Context, endpoint string) (any, error)
	PostMultipart(ctx context.Context, endpoint string, form *backend.Form) (any, error)
	PutMultipart(ctx context.Context, endpoint string, form *backend.Form) (any, error)
	Available() bool
	BreakerState() string
}

// Handler holds the page and form handlers.
//
// Handler methods are split across files:
//   - handlers_auth.go: login, register, logout
//   - handlers_catalog.go: home and the public course catalogue
//   - handlers_cart.go: cart and checkout
//   - handlers_orders.go: orders and enrollments
//   - handlers_admin.go: the admin area
//   - handlers_health.go: liveness and readiness probes
type Handler struct {
	api             CourseAPI
	sessions        *auth.SessionManager
	pages           *inertia.Renderer
	media           *media.Enricher
	security        *logging.SecurityLogger
	multipartMemory int64
	startTime       time.Time
}

// NewHandler wires the handlers. multipartMemory bounds how much of an
// upload is held in memory before spilling to temporary files.
func NewHandler(api CourseAPI, sessions *auth.SessionManager, pages *inertia.Renderer, enricher *media.Enricher, multipartMemory int64) *Handler {
	if multipartMemory <= 0 {
		multipartMemory = 32 << 20
	}
	return &Handler{
		api:             api,
		sessions:        sessions,
		pages:           pages,
		media:           enricher,
		security:        logging.NewSecurityLogger(),
		multipartMemory: multipartMemory,
		startTime:       time.Now(),
	}
}

// SharedProps supplies auth.user, flash, errors and old to every page.
// Flash messages, errors and old input are consumed by the render.
func SharedProps(r *http.Request) inertia.Props {
	session := auth.SessionFromContext(r.Context())
	if session == nil {
		return inertia.Props{
			"auth":   inertia.Props{"user": nil},
			"flash":  map[string]string{},
			"errors": map[string]string{},
			"old":    map[string]string{},
		}
	}

	var user any
	if raw := session.UserJSON(); raw != nil {
		user = raw
	}
	return inertia.Props{
		"auth":   inertia.Props{"user": user},
		"flash":  orEmpty(session.TakeFlash()),
		"errors": orEmpty(session.TakeErrors()),
		"old":    orEmpty(session.TakeInput()),
	}
}

func orEmpty(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}

// BindToken hands the session's bearer token to the backend client through
// the request context.
func BindToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if session := auth.SessionFromContext(r.Context()); session != nil {
			if token := session.BearerToken(); token != "" {
				r = r.WithContext(backend.ContextWithToken(r.Context(), token))
			}
		}
		next.ServeHTTP(w, r)
	})
}

// session returns the request's session. The session middleware always
// installs one on page routes.
func (h *Handler) session(r *http.Request) *auth.Session {
	if s := auth.SessionFromContext(r.Context()); s != nil {
		return s
	}
	return auth.NewSession(time.Minute)
}

// fetch GETs endpoint for display. Failures yield nil; the client has
// already logged them.
func (h *Handler) fetch(ctx context.Context, endpoint string) any {
	doc, err := h.api.Get(ctx, endpoint, nil)
	if err != nil {
		return nil
	}
	return h.media.Enrich(doc)
}

// fetchList is fetch with an empty list in place of a missing document.
func (h *Handler) fetchList(ctx context.Context, endpoint string) any {
	if doc := h.fetch(ctx, endpoint); doc != nil {
		return doc
	}
	return []any{}
}

// listProp defers fetchList until the page actually sends the prop.
func (h *Handler) listProp(endpoint string) inertia.FuncProp {
	return inertia.Func(func(ctx context.Context) (any, error) {
		return h.fetchList(ctx, endpoint), nil
	})
}

// succeed flashes a success message and redirects.
func (h *Handler) succeed(w http.ResponseWriter, r *http.Request, target, message string) {
	h.session(r).Flash("success", message)
	inertia.Redirect(w, r, target)
}

// failBack returns to the previous page with message under errors.error.
func (h *Handler) failBack(w http.ResponseWriter, r *http.Request, message string) {
	h.session(r).WithErrors(map[string]string{"error": message})
	inertia.Back(w, r, auth.HomePath)
}

// failTo redirects to target with message under errors.error.
func (h *Handler) failTo(w http.ResponseWriter, r *http.Request, target, message string) {
	h.session(r).WithErrors(map[string]string{"error": message})
	inertia.Redirect(w, r, target)
}

// readForm decodes the submitted form, answering 400 on malformed bodies.
func (h *Handler) readForm(w http.ResponseWriter, r *http.Request) (*input, bool) {
	in, err := readInput(r, h.multipartMemory)
	if err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Rejected malformed form submission")
		h.pages.Error(w, r, http.StatusBadRequest, "Bad Request")
		return nil, false
	}
	return in, true
}
