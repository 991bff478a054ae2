// Classfront - Course Storefront Web Front End
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/classfront

package backend

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/classfront/internal/config"
	"github.com/tomtom215/classfront/internal/logging"
	"github.com/tomtom215/classfront/internal/metrics"
)

const (
	// maxResponseSize bounds a decoded API answer.
	maxResponseSize = 32 << 20
	// maxLoggedBody bounds the response body copied into failure logs.
	maxLoggedBody = 64 << 10
	// maxRetryDelay caps backoff and Retry-After waits.
	maxRetryDelay = 60 * time.Second
)

// Client relays requests to the course REST API.
//
// Features:
//   - Bearer token from the request context (ContextWithToken)
//   - JSON decoding with numbers preserved as json.Number
//   - Retry on HTTP 429 with exponential backoff (1s, 2s, 4s, 8s, 16s),
//     honouring Retry-After, for replayable bodies only
//   - Outbound token-bucket rate limit
//   - Optional circuit breaker that ignores 4xx answers
//
// Thread Safety: Safe for concurrent use.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	limiter        *rate.Limiter
	breaker        *gobreaker.CircuitBreaker[*Response]
	maxRetries     int
	retryBaseDelay time.Duration
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a course API client from configuration.
func NewClient(cfg *config.BackendConfig, opts ...Option) *Client {
	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	burst := cfg.RateBurst
	if burst <= 0 {
		burst = 1
	}

	c := &Client{
		baseURL: strings.TrimRight(cfg.URL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		limiter:        rate.NewLimiter(limit, burst),
		maxRetries:     cfg.MaxRetries,
		retryBaseDelay: cfg.RetryBaseDelay,
	}
	if cfg.CircuitBreaker.Enabled {
		c.breaker = newCircuitBreaker(cfg.CircuitBreaker)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API base URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Request describes one call to the course API.
type Request struct {
	Method string
	// Endpoint is relative to the base URL, e.g. "courses/42".
	Endpoint string
	Query    url.Values
	// Body is encoded as JSON when non-nil. Ignored when Form is set.
	Body   any
	Form   *Form
	Header http.Header
}

// Response is a decoded 2xx answer.
type Response struct {
	StatusCode int
	Header     http.Header
	// Data is the decoded JSON document: map[string]any, []any, string,
	// json.Number, bool or nil. An empty body decodes to an empty object.
	Data any
}

// Get fetches endpoint with optional query parameters.
func (c *Client) Get(ctx context.Context, endpoint string, query url.Values) (any, error) {
	return c.data(c.Do(ctx, &Request{Method: http.MethodGet, Endpoint: endpoint, Query: query}))
}

// Post sends data as JSON. Nil data sends an empty object.
func (c *Client) Post(ctx context.Context, endpoint string, data any) (any, error) {
	return c.data(c.Do(ctx, &Request{Method: http.MethodPost, Endpoint: endpoint, Body: orEmptyObject(data)}))
}

// Put sends data as JSON. Nil data sends an empty object.
func (c *Client) Put(ctx context.Context, endpoint string, data any) (any, error) {
	return c.data(c.Do(ctx, &Request{Method: http.MethodPut, Endpoint: endpoint, Body: orEmptyObject(data)}))
}

// Patch sends data as JSON. Nil data sends no body.
func (c *Client) Patch(ctx context.Context, endpoint string, data any) (any, error) {
	return c.data(c.Do(ctx, &Request{Method: http.MethodPatch, Endpoint: endpoint, Body: data}))
}

// Delete sends a DELETE without a body.
func (c *Client) Delete(ctx context.Context, endpoint string) (any, error) {
	return c.data(c.Do(ctx, &Request{Method: http.MethodDelete, Endpoint: endpoint}))
}

// PostMultipart sends form as multipart/form-data.
func (c *Client) PostMultipart(ctx context.Context, endpoint string, form *Form) (any, error) {
	return c.data(c.Do(ctx, &Request{Method: http.MethodPost, Endpoint: endpoint, Form: form}))
}

// PutMultipart sends form as multipart/form-data with PUT.
func (c *Client) PutMultipart(ctx context.Context, endpoint string, form *Form) (any, error) {
	return c.data(c.Do(ctx, &Request{Method: http.MethodPut, Endpoint: endpoint, Form: form}))
}

func (c *Client) data(resp *Response, err error) (any, error) {
	if err != nil {
		return nil, err
	}
	return resp.Data, nil
}

func orEmptyObject(data any) any {
	if data == nil {
		return map[string]any{}
	}
	return data
}

// Do performs req. Every failure is logged here: a non-2xx answer as
// "API <VERB> request failed" and returned as *StatusError, anything else
// as "API <VERB> request exception".
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	method := strings.ToUpper(req.Method)
	if method == "" {
		method = http.MethodGet
	}
	endpointLabel := metrics.NormalizeEndpoint(req.Endpoint)
	start := time.Now()

	resp, err := c.execute(func() (*Response, error) {
		return c.send(ctx, method, req, endpointLabel)
	})
	duration := time.Since(start)

	if err == nil {
		metrics.RecordBackendRequest(method, endpointLabel, "success", duration)
		return resp, nil
	}

	event := logging.Ctx(ctx).Error().Str("endpoint", req.Endpoint)
	if req.Form != nil {
		event = event.Int("form_parts", req.Form.Len())
	}

	var statusErr *StatusError
	switch {
	case errors.As(err, &statusErr):
		metrics.RecordBackendRequest(method, endpointLabel, "http_error", duration)
		event.Int("status", statusErr.StatusCode).
			Str("response", truncateBody(statusErr.Body)).
			Msgf("API %s request failed", method)
	case errors.Is(err, ErrCircuitOpen):
		metrics.RecordBackendRequest(method, endpointLabel, "rejected", duration)
		event.Str("error", err.Error()).
			Msgf("API %s request exception", method)
	default:
		metrics.RecordBackendRequest(method, endpointLabel, "exception", duration)
		event.Str("error", err.Error()).
			Msgf("API %s request exception", method)
	}
	return nil, err
}

// send performs the HTTP exchange, retrying 429 answers while the body can
// be replayed.
func (c *Client) send(ctx context.Context, method string, req *Request, endpointLabel string) (*Response, error) {
	target := c.resolve(req.Endpoint, req.Query)

	var payload []byte
	if req.Form == nil && req.Body != nil {
		encoded, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		payload = encoded
	}
	replayable := req.Form == nil

	for attempt := 0; ; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}

		httpReq, err := c.newHTTPRequest(ctx, method, target, req, payload)
		if err != nil {
			return nil, err
		}

		resp, err := c.httpClient.Do(httpReq)
		if err != nil {
			return nil, fmt.Errorf("HTTP request failed: %w", err)
		}

		if resp.StatusCode != http.StatusTooManyRequests || !replayable || attempt >= c.maxRetries {
			return readResponse(resp, method, req.Endpoint)
		}

		delay := c.retryDelay(attempt, resp.Header.Get("Retry-After"))
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxLoggedBody))
		_ = resp.Body.Close()

		metrics.RecordBackendRetry(endpointLabel)
		logging.Ctx(ctx).Warn().
			Str("endpoint", req.Endpoint).
			Dur("retry_delay", delay).
			Int("attempt", attempt+1).
			Int("max_retries", c.maxRetries).
			Msg("Course API rate limited (HTTP 429), retrying")

		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		}
	}
}

func (c *Client) newHTTPRequest(ctx context.Context, method, target string, req *Request, payload []byte) (*http.Request, error) {
	var (
		body        io.Reader = http.NoBody
		contentType string
		pipe        io.ReadCloser
	)
	switch {
	case req.Form != nil:
		pipe, contentType = req.Form.pipe()
		body = pipe
	case payload != nil:
		body = bytes.NewReader(payload)
		contentType = "application/json"
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		if pipe != nil {
			_ = pipe.Close()
		}
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for key, values := range req.Header {
		for _, v := range values {
			httpReq.Header.Add(key, v)
		}
	}
	httpReq.Header.Set("Accept", "application/json")
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	if token := TokenFromContext(ctx); token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}
	if id := logging.RequestIDFromContext(ctx); id != "" {
		httpReq.Header.Set("X-Request-ID", id)
	}
	return httpReq, nil
}

// resolve joins the base URL and endpoint with exactly one slash.
func (c *Client) resolve(endpoint string, query url.Values) string {
	target := c.baseURL + "/" + strings.TrimLeft(endpoint, "/")
	if len(query) > 0 {
		sep := "?"
		if strings.Contains(target, "?") {
			sep = "&"
		}
		target += sep + query.Encode()
	}
	return target
}

// retryDelay returns the wait before retry attempt+1: exponential backoff,
// or the server's Retry-After (seconds or HTTP date), capped at one minute.
func (c *Client) retryDelay(attempt int, retryAfter string) time.Duration {
	delay := c.retryBaseDelay * time.Duration(1<<uint(attempt))

	if retryAfter != "" {
		if seconds, err := strconv.Atoi(strings.TrimSpace(retryAfter)); err == nil && seconds >= 0 {
			delay = time.Duration(seconds) * time.Second
		} else if at, err := http.ParseTime(retryAfter); err == nil {
			delay = time.Until(at)
		}
	}

	if delay < 0 {
		delay = 0
	}
	if delay > maxRetryDelay {
		delay = maxRetryDelay
	}
	return delay
}

func readResponse(resp *http.Response, method, endpoint string) (*Response, error) {
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{
			Method:     method,
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Body:       raw,
		}
	}

	data, err := decodeDocument(raw)
	if err != nil {
		return nil, err
	}
	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Data:       data,
	}, nil
}

// decodeDocument decodes a JSON body with numbers kept as json.Number so
// that large IDs survive the round trip to the page props.
func decodeDocument(raw []byte) (any, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return map[string]any{}, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var data any
	if err := dec.Decode(&data); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return data, nil
}

func truncateBody(body []byte) string {
	if len(body) > maxLoggedBody {
		return string(body[:maxLoggedBody]) + "...(truncated)"
	}
	return string(body)
}
