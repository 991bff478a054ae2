// Classfront - Course Storefront Web Front End
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/classfront

package inertia

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/tomtom215/classfront/internal/config"
	"github.com/tomtom215/classfront/internal/logging"
	"github.com/tomtom215/classfront/internal/metrics"
)

//go:embed templates/*.html
var templateFS embed.FS

// Assets supplies the script and style tags for the shell and the current
// asset version.
type Assets interface {
	Tags() (template.HTML, error)
	Version() string
}

// SharedFunc returns props merged into every page of a request.
type SharedFunc func(r *http.Request) Props

// Option configures a Renderer.
type Option func(*Renderer)

// WithShared sets the shared-props hook.
func WithShared(fn SharedFunc) Option {
	return func(r *Renderer) {
		r.shared = fn
	}
}

// Renderer writes Inertia pages as JSON or as the HTML shell.
type Renderer struct {
	appName   string
	root      *template.Template
	errorPage *template.Template
	assets    Assets
	shared    SharedFunc
}

// New creates a Renderer. The embedded shell is used unless
// cfg.RootTemplate names a file. assets may be nil.
func New(cfg *config.InertiaConfig, assets Assets, opts ...Option) (*Renderer, error) {
	var (
		root *template.Template
		err  error
	)
	if cfg.RootTemplate != "" {
		root, err = template.ParseFiles(cfg.RootTemplate)
	} else {
		root, err = template.ParseFS(templateFS, "templates/app.html")
	}
	if err != nil {
		return nil, fmt.Errorf("parse root template: %w", err)
	}

	errorPage, err := template.ParseFS(templateFS, "templates/error.html")
	if err != nil {
		return nil, fmt.Errorf("parse error template: %w", err)
	}

	r := &Renderer{
		appName:   cfg.AppName,
		root:      root,
		errorPage: errorPage,
		assets:    assets,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Version returns the current asset version.
func (r *Renderer) Version() string {
	if r.assets == nil {
		return ""
	}
	return r.assets.Version()
}

// IsInertia reports whether req was made by the Inertia client.
func IsInertia(req *http.Request) bool {
	return req.Header.Get(HeaderInertia) == "true"
}

// Render writes component with props. Failures are logged and answered
// with a 500 error page.
func (r *Renderer) Render(w http.ResponseWriter, req *http.Request, component string, props Props) {
	page, err := r.page(req, component, props)
	if err != nil {
		logging.Ctx(req.Context()).Error().Err(err).Str("component", component).Msg("Failed to resolve page props")
		r.Error(w, req, http.StatusInternalServerError, "Server Error")
		return
	}

	data, err := json.Marshal(page)
	if err != nil {
		logging.Ctx(req.Context()).Error().Err(err).Str("component", component).Msg("Failed to encode page")
		r.Error(w, req, http.StatusInternalServerError, "Server Error")
		return
	}

	w.Header().Add("Vary", HeaderInertia)

	if IsInertia(req) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set(HeaderInertia, "true")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(data); err != nil {
			logging.Ctx(req.Context()).Debug().Err(err).Msg("Failed to write page JSON")
		}
		metrics.RecordInertiaRender(component, "json")
		return
	}

	if err := r.writeShell(w, req, data); err != nil {
		logging.Ctx(req.Context()).Error().Err(err).Str("component", component).Msg("Failed to render root template")
		r.Error(w, req, http.StatusInternalServerError, "Server Error")
		return
	}
	metrics.RecordInertiaRender(component, "html")
}

func (r *Renderer) page(req *http.Request, component string, props Props) (*Page, error) {
	var shared Props
	if r.shared != nil {
		shared = r.shared(req)
	}

	var p *partial
	if req.Header.Get(HeaderPartialComponent) == component {
		p = &partial{
			only:   splitHeader(req.Header.Get(HeaderPartialData)),
			except: splitHeader(req.Header.Get(HeaderPartialExcept)),
		}
	}

	resolved, err := resolveProps(req.Context(), shared, props, p)
	if err != nil {
		return nil, err
	}

	return &Page{
		Component: component,
		Props:     resolved,
		URL:       req.URL.RequestURI(),
		Version:   r.Version(),
	}, nil
}

type shellData struct {
	AppName string
	Tags    template.HTML
	Page    string
}

func (r *Renderer) writeShell(w http.ResponseWriter, req *http.Request, pageJSON []byte) error {
	data := shellData{AppName: r.appName, Page: string(pageJSON)}
	if r.assets != nil {
		tags, err := r.assets.Tags()
		if err != nil {
			logging.Ctx(req.Context()).Warn().Err(err).Msg("Rendering page without asset tags")
		}
		data.Tags = tags
	}

	var buf bytes.Buffer
	if err := r.root.Execute(&buf, data); err != nil {
		return err
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, err := w.Write(buf.Bytes())
	return err
}
