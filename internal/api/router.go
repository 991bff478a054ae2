// Classfront - Course Storefront Web Front End
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/classfront

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/classfront/internal/assets"
	"github.com/tomtom215/classfront/internal/auth"
	"github.com/tomtom215/classfront/internal/authz"
	"github.com/tomtom215/classfront/internal/middleware"
)

// Router assembles the chi route tree.
type Router struct {
	handler       *Handler
	sessions      *auth.SessionManager
	csrf          *auth.CSRFMiddleware
	admin         *authz.Middleware
	vite          *assets.Vite
	chiMiddleware *ChiMiddleware
	maxUpload     int64
}

// NewRouter creates the router. csrf is nil when CSRF protection is
// disabled; vite is nil when no public directory is served.
func NewRouter(handler *Handler, csrf *auth.CSRFMiddleware, admin *authz.Middleware, vite *assets.Vite, chiMiddleware *ChiMiddleware, maxUpload int64) *Router {
	if chiMiddleware == nil {
		chiMiddleware = NewChiMiddleware(DefaultChiMiddlewareConfig())
	}
	if maxUpload <= 0 {
		maxUpload = 64 << 20
	}
	return &Router{
		handler:       handler,
		sessions:      handler.sessions,
		csrf:          csrf,
		admin:         admin,
		vite:          vite,
		chiMiddleware: chiMiddleware,
		maxUpload:     maxUpload,
	}
}

// SetupChi builds the handler tree.
func (router *Router) SetupChi() http.Handler {
	h := router.handler
	r := chi.NewRouter()

	// Method override runs before routing so chi matches the spoofed method.
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS())
	r.Use(middleware.PrometheusMetrics)
	r.Use(chimiddleware.Compress(5))
	r.Use(chimiddleware.RequestSize(router.maxUpload))
	r.Use(middleware.MethodOverride(router.maxUpload))

	r.Get("/healthz", h.Healthz)
	r.Get("/readyz", h.Readyz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(router.sessions.Middleware)
		if router.csrf != nil {
			r.Use(router.csrf.Protect)
		}
		r.Use(BindToken)
		r.Use(h.pages.VersionMiddleware)
		r.Use(router.chiMiddleware.RateLimit())

		router.publicRoutes(r)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth)
			router.customerRoutes(r)

			r.Route("/admin", func(r chi.Router) {
				r.Use(router.admin.RequireAdmin)
				router.adminRoutes(r)
			})
		})
	})

	// Public files are served without a session.
	r.NotFound(router.notFound())
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		h.pages.Error(w, req, http.StatusMethodNotAllowed, "")
	})

	return r
}

func (router *Router) publicRoutes(r chi.Router) {
	h := router.handler

	r.Get("/", h.Home)
	r.Get("/courses", h.Courses)
	r.Get("/courses/{id}", h.CourseShow)

	r.With(auth.RequireGuest).Get("/login", h.LoginPage)
	r.With(auth.RequireGuest).Get("/register", h.RegisterPage)
	r.With(router.chiMiddleware.RateLimitAuth()).Post("/login", h.Login)
	r.With(router.chiMiddleware.RateLimitAuth()).Post("/register", h.Register)

	r.Get("/logout", h.Logout)
	r.Post("/logout", h.Logout)
}

func (router *Router) customerRoutes(r chi.Router) {
	h := router.handler

	r.Get("/cart", h.Cart)
	r.Post("/cart/{courseId}", h.AddToCart)
	r.Delete("/cart/{courseId}", h.RemoveFromCart)
	r.Get("/checkout", h.Checkout)

	r.Post("/orders", h.CreateOrder)
	r.Get("/orders", h.Orders)
	r.Get("/enrollments", h.Enrollments)
	r.Get("/enrollments/{courseId}", h.EnrollmentShow)
}

func (router *Router) adminRoutes(r chi.Router) {
	h := router.handler

	r.Get("/", h.AdminIndex)

	r.Get("/courses", h.AdminCourses)
	r.Get("/courses/create", h.AdminCourseCreate)
	r.Post("/courses", h.AdminCourseStore)
	r.Get("/courses/{id}", h.AdminCourseShow)
	r.Get("/courses/{id}/edit", h.AdminCourseEdit)
	r.Put("/courses/{id}", h.AdminCourseUpdate)

	r.Post("/courses/{id}/videos", h.AdminVideoStore)
	r.Put("/courses/{courseId}/videos/{videoId}", h.AdminVideoUpdate)
	r.Delete("/courses/{courseId}/videos/{videoId}", h.AdminVideoDelete)

	r.Get("/orders", h.AdminOrders)
	r.Patch("/orders/{orderId}/confirm", h.AdminOrderConfirm)
}

// notFound serves files from the public directory and renders the 404
// page for anything else.
func (router *Router) notFound() http.HandlerFunc {
	var page http.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		router.handler.pages.Error(w, r, http.StatusNotFound, "")
	})
	if router.vite != nil {
		page = router.vite.Static(page)
	}
	return page.ServeHTTP
}
