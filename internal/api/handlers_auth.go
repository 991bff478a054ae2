// Classfront - Course Storefront Web Front End
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/classfront

package api

import (
	"net/http"

	"github.com/tomtom215/classfront/internal/auth"
	"github.com/tomtom215/classfront/internal/backend"
	"github.com/tomtom215/classfront/internal/inertia"
	"github.com/tomtom215/classfront/internal/logging"
	"github.com/tomtom215/classfront/internal/metrics"
	"github.com/tomtom215/classfront/internal/validation"
)

const (
	loginFailedMessage    = "Email atau password salah."
	registerFailedMessage = "Registration failed. Please try again."
)

// LoginPage renders the login form.
func (h *Handler) LoginPage(w http.ResponseWriter, r *http.Request) {
	h.pages.Render(w, r, "Login", nil)
}

// RegisterPage renders the registration form.
func (h *Handler) RegisterPage(w http.ResponseWriter, r *http.Request) {
	h.pages.Render(w, r, "Register", nil)
}

// Login checks the credentials against the API and signs the visitor in.
// Admins land on /admin unless they were heading somewhere else.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	in, ok := h.readForm(w, r)
	if !ok {
		return
	}
	session := h.session(r)

	form := validation.LoginForm{Email: in.String("email"), Password: in.String("password")}
	if verr := validation.ValidateStruct(&form); verr != nil {
		session.WithErrors(verr.FieldErrors())
		session.WithInput(in.Strings(), "email")
		inertia.Back(w, r, auth.LoginPath)
		return
	}

	resp, err := h.api.Post(r.Context(), "auth/login", map[string]any{
		"email":    form.Email,
		"password": form.Password,
	})
	if user, token, ok := credentials(resp, err); ok {
		if err := h.sessions.Login(r, user, token); err != nil {
			logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to store login in session")
			h.pages.Error(w, r, http.StatusInternalServerError, "Server Error")
			return
		}
		h.audit(r, logging.EventLoginSuccess, form.Email, true, "")

		fallback := auth.HomePath
		if session.IsAdmin() {
			fallback = "/admin"
		}
		inertia.Redirect(w, r, session.PullIntended(fallback))
		return
	}

	message := responseError(resp, err, loginFailedMessage)
	h.audit(r, logging.EventLoginFailed, form.Email, false, message)
	session.WithErrors(map[string]string{"email": message})
	session.WithInput(in.Strings(), "email")
	inertia.Back(w, r, auth.LoginPath)
}

// Register creates the account through the API and signs the visitor in.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	in, ok := h.readForm(w, r)
	if !ok {
		return
	}
	session := h.session(r)

	form := validation.RegisterForm{
		Name:     in.String("name"),
		Email:    in.String("email"),
		Password: in.String("password"),
	}
	if verr := validation.ValidateStruct(&form); verr != nil {
		session.WithErrors(verr.FieldErrors())
		session.WithInput(in.Strings(), "email", "name")
		inertia.Back(w, r, "/register")
		return
	}

	resp, err := h.api.Post(r.Context(), "auth/register", map[string]any{
		"name":     form.Name,
		"email":    form.Email,
		"password": form.Password,
	})
	if user, token, ok := credentials(resp, err); ok {
		if err := h.sessions.Login(r, user, token); err != nil {
			logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to store registration in session")
			h.pages.Error(w, r, http.StatusInternalServerError, "Server Error")
			return
		}
		h.audit(r, logging.EventRegister, form.Email, true, "")
		inertia.Redirect(w, r, auth.HomePath)
		return
	}

	message := responseError(resp, err, registerFailedMessage)
	h.audit(r, logging.EventRegister, form.Email, false, message)
	session.WithErrors(map[string]string{"email": message})
	session.WithInput(in.Strings(), "email", "name")
	inertia.Back(w, r, "/register")
}

// Logout forgets the user and token, destroys the session and goes home.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	session := h.session(r)
	userID, sessionID := session.UserID, session.ID

	if err := h.sessions.Logout(w, r); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Failed to delete session on logout")
	}
	if userID != "" {
		h.security.LogEvent(&logging.SecurityEvent{
			Event:     logging.EventLogout,
			UserID:    userID,
			SessionID: sessionID,
			IPAddress: r.RemoteAddr,
			UserAgent: r.UserAgent(),
			Path:      r.URL.Path,
			Success:   true,
		})
		metrics.RecordAuthEvent(logging.EventLogout, true)
	}
	inertia.Redirect(w, r, auth.HomePath)
}

// credentials extracts user and token from a login or register answer.
// Both must be present and non-null.
func credentials(resp any, err error) (user any, token string, ok bool) {
	if err != nil || !backend.Has(resp, "user") {
		return nil, "", false
	}
	token, ok = backend.LookupString(resp, "token")
	if !ok || token == "" {
		return nil, "", false
	}
	user, _ = backend.Lookup(resp, "user")
	return user, token, true
}

// responseError picks the API's error text from a failed call or from a
// 2xx body carrying "error", else fallback.
func responseError(resp any, err error, fallback string) string {
	if err != nil {
		return backend.ErrorMessage(err, fallback)
	}
	if msg, ok := backend.LookupString(resp, "error"); ok && msg != "" {
		return msg
	}
	return fallback
}

func (h *Handler) audit(r *http.Request, event, email string, success bool, reason string) {
	session := auth.SessionFromContext(r.Context())
	e := &logging.SecurityEvent{
		Event:     event,
		Email:     email,
		IPAddress: r.RemoteAddr,
		UserAgent: r.UserAgent(),
		Path:      r.URL.Path,
		Success:   success,
		Error:     reason,
	}
	if session != nil {
		e.UserID = session.UserID
		e.SessionID = session.ID
	}
	h.security.LogEvent(e)
	metrics.RecordAuthEvent(event, success)
}
