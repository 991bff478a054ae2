// Classfront - Course Storefront Web Front End
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/classfront

package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/goccy/go-json"

	"github.com/tomtom215/classfront/internal/auth"
	"github.com/tomtom215/classfront/internal/authz"
	"github.com/tomtom215/classfront/internal/backend"
	"github.com/tomtom215/classfront/internal/config"
	"github.com/tomtom215/classfront/internal/inertia"
	"github.com/tomtom215/classfront/internal/media"
)

// apiCall is one request the handlers made to the course API.
type apiCall struct {
	method   string
	endpoint string
	data     any
	form     *backend.Form
	token    string
}

type fakeResponse struct {
	doc any
	err error
}

// fakeAPI answers registered endpoints and 404s everything else.
type fakeAPI struct {
	mu          sync.Mutex
	responses   map[string]fakeResponse
	calls       []apiCall
	unavailable bool
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{responses: map[string]fakeResponse{}}
}

func (f *fakeAPI) on(method, endpoint string, doc any, err error) *fakeAPI {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[method+" "+endpoint] = fakeResponse{doc: doc, err: err}
	return f
}

func (f *fakeAPI) do(ctx context.Context, method, endpoint string, data any, form *backend.Form) (any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, apiCall{
		method:   method,
		endpoint: endpoint,
		data:     data,
		form:     form,
		token:    backend.TokenFromContext(ctx),
	})
	if resp, ok := f.responses[method+" "+endpoint]; ok {
		return resp.doc, resp.err
	}
	return nil, apiError(method, endpoint, http.StatusNotFound, "")
}

// lastCall returns the latest call to endpoint with method.
func (f *fakeAPI) lastCall(t *testing.T, method, endpoint string) apiCall {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.calls) - 1; i >= 0; i-- {
		if f.calls[i].method == method && f.calls[i].endpoint == endpoint {
			return f.calls[i]
		}
	}
	t.Fatalf("no %s %s call; calls: %+v", method, endpoint, f.calls)
	return apiCall{}
}

func (f *fakeAPI) called(method, endpoint string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.calls {
		if c.method == method && c.endpoint == endpoint {
			return true
		}
	}
	return false
}

func (f *fakeAPI) Get(ctx context.Context, endpoint string, _ url.Values) (any, error) {
	return f.do(ctx, http.MethodGet, endpoint, nil, nil)
}

func (f *fakeAPI) Post(ctx context.Context, endpoint string, data any) (any, error) {
	return f.do(ctx, http.MethodPost, endpoint, data, nil)
}

func (f *fakeAPI) Put(ctx context.Context, endpoint string, data any) (any, error) {
	return f.do(ctx, http.MethodPut, endpoint, data, nil)
}

func (f *fakeAPI) Patch(ctx context.Context, endpoint string, data any) (any, error) {
	return f.do(ctx, http.MethodPatch, endpoint, data, nil)
}

func (f *fakeAPI) Delete(ctx context.Context, endpoint string) (any, error) {
	return f.do(ctx, http.MethodDelete, endpoint, nil, nil)
}

func (f *fakeAPI) PostMultipart(ctx context.Context, endpoint string, form *backend.Form) (any, error) {
	return f.do(ctx, http.MethodPost, endpoint, nil, form)
}

func (f *fakeAPI) PutMultipart(ctx context.Context, endpoint string, form *backend.Form) (any, error) {
	return f.do(ctx, http.MethodPut, endpoint, nil, form)
}

func (f *fakeAPI) Available() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.unavailable
}

func (f *fakeAPI) BreakerState() string {
	if !f.Available() {
		return "open"
	}
	return "closed"
}

func apiError(method, endpoint string, status int, message string) error {
	var body []byte
	if message != "" {
		body, _ = json.Marshal(map[string]string{"error": message})
	}
	return &backend.StatusError{Method: method, Endpoint: endpoint, StatusCode: status, Body: body}
}

// lockedBuffer collects log output written from server goroutines.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// newTestServer serves the full route tree against api.
func newTestServer(t *testing.T, api *fakeAPI) *httptest.Server {
	t.Helper()

	sessions := auth.NewSessionManager(auth.NewMemorySessionStore(), nil)
	pages, err := inertia.New(&config.InertiaConfig{AppName: "Classfront"}, nil, inertia.WithShared(SharedProps))
	if err != nil {
		t.Fatalf("inertia.New() error = %v", err)
	}
	enforcer, err := authz.NewEnforcer(nil)
	if err != nil {
		t.Fatalf("authz.NewEnforcer() error = %v", err)
	}

	handler := NewHandler(api, sessions, pages, media.NewEnricher("http://api.test"), 0)
	router := NewRouter(
		handler,
		auth.NewCSRFMiddleware(nil),
		authz.NewMiddleware(enforcer, pages.Error),
		nil,
		NewChiMiddleware(&ChiMiddlewareConfig{RateLimitDisabled: true}),
		0,
	)

	srv := httptest.NewServer(router.SetupChi())
	t.Cleanup(srv.Close)
	return srv
}

// browser keeps cookies between requests and never follows redirects.
type browser struct {
	t      *testing.T
	srv    *httptest.Server
	client *http.Client
}

func newBrowser(t *testing.T, srv *httptest.Server) *browser {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatal(err)
	}
	return &browser{
		t:   t,
		srv: srv,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

func (b *browser) do(req *http.Request) *http.Response {
	b.t.Helper()
	resp, err := b.client.Do(req)
	if err != nil {
		b.t.Fatalf("%s %s: %v", req.Method, req.URL.Path, err)
	}
	b.t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func (b *browser) newRequest(method, path string, body io.Reader) *http.Request {
	b.t.Helper()
	req, err := http.NewRequest(method, b.srv.URL+path, body)
	if err != nil {
		b.t.Fatal(err)
	}
	return req
}

// get issues a plain browser GET.
func (b *browser) get(path string) *http.Response {
	b.t.Helper()
	return b.do(b.newRequest(http.MethodGet, path, nil))
}

// visit issues an Inertia GET and decodes the page object.
func (b *browser) visit(path string) inertia.Page {
	b.t.Helper()
	req := b.newRequest(http.MethodGet, path, nil)
	req.Header.Set(inertia.HeaderInertia, "true")
	resp := b.do(req)
	if resp.StatusCode != http.StatusOK {
		b.t.Fatalf("GET %s status = %d, want 200", path, resp.StatusCode)
	}
	var page inertia.Page
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		b.t.Fatalf("decode page: %v", err)
	}
	return page
}

// xsrf returns the CSRF cookie, visiting / first when there is none yet.
func (b *browser) xsrf() string {
	b.t.Helper()
	u, _ := url.Parse(b.srv.URL)
	for attempt := 0; attempt < 2; attempt++ {
		for _, c := range b.client.Jar.Cookies(u) {
			if c.Name == "XSRF-TOKEN" {
				return c.Value
			}
		}
		b.get("/courses")
	}
	b.t.Fatal("no XSRF-TOKEN cookie issued")
	return ""
}

// send submits data as JSON the way the Inertia client does. referer is
// the page the form was on.
func (b *browser) send(method, path, referer string, data map[string]any) *http.Response {
	b.t.Helper()
	payload, err := json.Marshal(data)
	if err != nil {
		b.t.Fatal(err)
	}
	req := b.newRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(inertia.HeaderInertia, "true")
	req.Header.Set("X-XSRF-TOKEN", b.xsrf())
	if referer != "" {
		req.Header.Set("Referer", b.srv.URL+referer)
	}
	return b.do(req)
}

// upload submits a multipart form with one file per entry in files.
func (b *browser) upload(path string, fields map[string]string, files map[string]string) *http.Response {
	b.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, value := range fields {
		if err := mw.WriteField(name, value); err != nil {
			b.t.Fatal(err)
		}
	}
	for field, content := range files {
		fw, err := mw.CreateFormFile(field, field+".bin")
		if err != nil {
			b.t.Fatal(err)
		}
		if _, err := io.WriteString(fw, content); err != nil {
			b.t.Fatal(err)
		}
	}
	if err := mw.Close(); err != nil {
		b.t.Fatal(err)
	}

	req := b.newRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("X-XSRF-TOKEN", b.xsrf())
	return b.do(req)
}

// login signs in as a user with role through the login form.
func (b *browser) login(api *fakeAPI, role string) {
	b.t.Helper()
	api.on(http.MethodPost, "auth/login", map[string]any{
		"user":  map[string]any{"id": "u-1", "name": "Ann", "email": "ann@example.com", "role": role},
		"token": "api-token",
	}, nil)
	resp := b.send(http.MethodPost, "/login", "/login", map[string]any{
		"email":    "ann@example.com",
		"password": "secret",
	})
	if resp.StatusCode != http.StatusFound {
		b.t.Fatalf("login status = %d, want 302", resp.StatusCode)
	}
}

func assertRedirect(t *testing.T, resp *http.Response, status int, location string) {
	t.Helper()
	if resp.StatusCode != status {
		t.Errorf("status = %d, want %d", resp.StatusCode, status)
	}
	if got := resp.Header.Get("Location"); got != location {
		t.Errorf("Location = %q, want %q", got, location)
	}
}

// propMap returns props[key] as a string map.
func propMap(t *testing.T, page inertia.Page, key string) map[string]string {
	t.Helper()
	raw, ok := page.Props[key].(map[string]any)
	if !ok {
		t.Fatalf("prop %q = %#v, want object", key, page.Props[key])
	}
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		out[k] = fmt.Sprint(v)
	}
	return out
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return string(body)
}

func containsAll(s string, parts ...string) bool {
	for _, p := range parts {
		if !strings.Contains(s, p) {
			return false
		}
	}
	return true
}
