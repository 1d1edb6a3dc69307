// Package providers implements HTTP clients for the monolith endpoints the
// booking orchestrator consults: users, hotels, reviews, and promos.
//
// Clients report transport and status failures as errors. Deciding whether
// a failure blocks a booking is the orchestrator's job.
package providers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hotelio/bookings/internal/platform/requestctx"
	"github.com/hotelio/bookings/internal/platform/timeouts"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// maxBodyBytes bounds provider response bodies.
const maxBodyBytes = 64 << 10

// StatusError reports a non-2xx provider response.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.Path, e.StatusCode)
}

// Config configures the provider clients.
type Config struct {
	// BaseURL is the monolith root, e.g. http://hotelio-monolith:8080.
	BaseURL string
	// Timeout bounds each lookup when HTTPClient is nil.
	Timeout time.Duration
	// HTTPClient overrides the traced default client.
	HTTPClient *http.Client
}

// Clients bundles the four provider clients over one HTTP client.
type Clients struct {
	Users   *UserClient
	Hotels  *HotelClient
	Reviews *ReviewClient
	Promos  *PromoClient
}

// New validates cfg and builds all provider clients.
func New(cfg Config) (*Clients, error) {
	base, err := newClient(cfg)
	if err != nil {
		return nil, err
	}
	return &Clients{
		Users:   &UserClient{c: base},
		Hotels:  &HotelClient{c: base},
		Reviews: &ReviewClient{c: base},
		Promos:  &PromoClient{c: base},
	}, nil
}

type client struct {
	baseURL string
	http    *http.Client
}

func newClient(cfg Config) (*client, error) {
	raw := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if raw == "" {
		return nil, errors.New("provider base url is required")
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse provider base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("provider base url %q must be http or https", raw)
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = timeouts.ProviderRequest
		}
		httpClient = &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	return &client{baseURL: raw, http: httpClient}, nil
}

// HeaderUserID carries the booking caller to the monolith.
const HeaderUserID = "X-User-Id"

func resourcePath(format string, id string) string {
	return fmt.Sprintf(format, url.PathEscape(strings.TrimSpace(id)))
}

// do sends req and returns the status code and bounded body. The caller
// identity in the request context is forwarded as HeaderUserID.
func (c *client) do(req *http.Request) (int, []byte, error) {
	if userID := requestctx.UserIDFromContext(req.Context()); userID != "" {
		req.Header.Set(HeaderUserID, userID)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read %s %s: %w", req.Method, req.URL.Path, err)
	}
	return resp.StatusCode, body, nil
}

func (c *client) get(ctx context.Context, path string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("build GET %s: %w", path, err)
	}
	return c.do(req)
}

// getBool reads a bare "true"/"false" body.
func (c *client) getBool(ctx context.Context, path string) (bool, error) {
	code, body, err := c.get(ctx, path)
	if err != nil {
		return false, err
	}
	if code < 200 || code > 299 {
		return false, &StatusError{Method: http.MethodGet, Path: path, StatusCode: code}
	}
	value, err := strconv.ParseBool(unquote(body))
	if err != nil {
		return false, fmt.Errorf("GET %s: parse boolean %q: %w", path, body, err)
	}
	return value, nil
}

func unquote(body []byte) string {
	return strings.Trim(strings.TrimSpace(string(body)), `"`)
}
