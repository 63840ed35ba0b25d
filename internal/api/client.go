// Package api provides a JSON client for the system under test and a helper
// that creates fake entities through it and deletes them after the test.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ethpandaops/e2e-harness/internal/config"
	"github.com/ethpandaops/e2e-harness/internal/retry"
	"github.com/sirupsen/logrus"
)

const (
	defaultTimeout  = 30 * time.Second
	contentTypeJSON = "application/json"
)

var (
	// ErrBaseURLRequired is returned when no API base URL is configured.
	ErrBaseURLRequired = errors.New("api base url not configured")

	errInvalidBaseURL = errors.New("invalid api base url")
)

// StatusError is returned for any response outside the 2xx range.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Status     string
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %s", e.Method, e.URL, e.Status)
}

// ClientOptions configures a Client.
type ClientOptions struct {
	BaseURL    string
	HTTPClient *http.Client
	Retry      retry.Settings
	Headers    map[string]string
}

// Client sends JSON requests relative to a base URL. Paths starting with a
// slash resolve against the host, other paths against the base path.
type Client struct {
	log     logrus.FieldLogger
	base    *url.URL
	http    *http.Client
	retry   retry.Settings
	headers map[string]string
}

// NewClient creates a client for opts.BaseURL.
func NewClient(log logrus.FieldLogger, opts ClientOptions) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, ErrBaseURLRequired
	}

	base, err := url.Parse(opts.BaseURL)
	if err != nil || !base.IsAbs() {
		return nil, fmt.Errorf("%w: %q", errInvalidBaseURL, opts.BaseURL)
	}

	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}

	return &Client{
		log:     log.WithField("component", "api_client"),
		base:    base,
		http:    httpClient,
		retry:   opts.Retry,
		headers: opts.Headers,
	}, nil
}

// NewClientFromSettings builds a client for Environment.ApiBaseUrl using the
// configured retry policy.
func NewClientFromSettings(log logrus.FieldLogger, settings *config.TestSettings) (*Client, error) {
	client, err := NewClient(log, ClientOptions{
		BaseURL: settings.Environment.APIBaseURL,
		Retry:   retry.FromConfig(settings.Retry),
	})
	if err != nil {
		return nil, fmt.Errorf("environment %s: %w", settings.Environment.Name, err)
	}

	return client, nil
}

// BaseURL returns the resolved base URL.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// Resolve turns path into an absolute URL.
func (c *Client) Resolve(path string) (string, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return "", fmt.Errorf("parsing path %q: %w", path, err)
	}

	return c.base.ResolveReference(ref).String(), nil
}

// Do sends one request and decodes a non-empty 2xx body into out, which may
// be nil. Idempotent methods are retried with the client's retry settings.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	endpoint, err := c.Resolve(path)
	if err != nil {
		return err
	}

	var payload []byte
	if body != nil {
		if payload, err = json.Marshal(body); err != nil {
			return fmt.Errorf("encoding %s %s body: %w", method, endpoint, err)
		}
	}

	send := func(ctx context.Context) error {
		return c.send(ctx, method, endpoint, payload, out)
	}

	if !idempotent(method) {
		return send(ctx)
	}

	// Client errors will not change on retry.
	var permanent error

	err = retry.Do(ctx, c.log, c.retry, func(ctx context.Context) error {
		err := send(ctx)

		var statusErr *StatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode < http.StatusInternalServerError {
			permanent = err

			return nil
		}

		return err
	})
	if permanent != nil {
		return permanent
	}

	return err
}

func (c *Client) send(ctx context.Context, method, endpoint string, payload []byte, out any) error {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("creating %s request: %w", method, err)
	}

	req.Header.Set("Accept", contentTypeJSON)

	if payload != nil {
		req.Header.Set("Content-Type", contentTypeJSON)
	}

	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	log := c.log.WithFields(logrus.Fields{"method": method, "endpoint": endpoint})
	log.Info("sending request")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, endpoint, err)
	}
	defer resp.Body.Close()

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading %s %s response: %w", method, endpoint, err)
	}

	level := logrus.InfoLevel
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		level = logrus.ErrorLevel
	}

	log = log.WithField("status", resp.StatusCode)
	log.Logf(level, "Response Status: %s", resp.Status)
	log.Logf(level, "Response Content: %s", content)

	if level == logrus.ErrorLevel {
		return &StatusError{
			Method:     method,
			URL:        endpoint,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       string(content),
		}
	}

	if out == nil || len(bytes.TrimSpace(content)) == 0 {
		return nil
	}

	if err := json.Unmarshal(content, out); err != nil {
		return fmt.Errorf("decoding %s %s response: %w", method, endpoint, err)
	}

	return nil
}

func idempotent(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodPut, http.MethodDelete:
		return true
	default:
		return false
	}
}

// Get fetches path and decodes the response as T.
func Get[T any](ctx context.Context, c *Client, path string) (T, error) {
	var out T
	err := c.Do(ctx, http.MethodGet, path, nil, &out)

	return out, err
}

// Post sends body to path and decodes the response as T.
func Post[T any](ctx context.Context, c *Client, path string, body any) (T, error) {
	var out T
	err := c.Do(ctx, http.MethodPost, path, body, &out)

	return out, err
}

// Put replaces the resource at path.
func Put[T any](ctx context.Context, c *Client, path string, body any) (T, error) {
	var out T
	err := c.Do(ctx, http.MethodPut, path, body, &out)

	return out, err
}

// Patch partially updates the resource at path.
func Patch[T any](ctx context.Context, c *Client, path string, body any) (T, error) {
	var out T
	err := c.Do(ctx, http.MethodPatch, path, body, &out)

	return out, err
}

// Delete removes the resource at path, decoding any response body as T.
func Delete[T any](ctx context.Context, c *Client, path string) (T, error) {
	var out T
	err := c.Do(ctx, http.MethodDelete, path, nil, &out)

	return out, err
}
