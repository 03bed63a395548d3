// Package remote is the typed HTTP client for the dashboard API. Every call
// is a single round trip; retries belong to the query cache.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// CSRFHeader carries the anti-forgery token on mutating requests.
const CSRFHeader = "X-CSRFToken"

const maxErrorBody = 4 << 10

// TokenSource returns the current anti-forgery token, or "" when none is known.
type TokenSource func() string

// Config holds the API location and transport limits.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client talks to the dashboard API.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	token      TokenSource
	logger     *slog.Logger
	tracer     trace.Tracer
}

// Option configures a Client.
type Option func(*Client)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithHTTPClient replaces the underlying HTTP client. Its timeout is kept.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTokenSource supplies the CSRF token for mutating calls.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) {
		c.token = ts
	}
}

// New creates a client for cfg.BaseURL. The default timeout is 10s.
func New(cfg Config, opts ...Option) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, errors.New("remote: base URL is required")
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("remote: parse base URL: %w", err)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	c := &Client{
		baseURL:    base,
		httpClient: &http.Client{Timeout: timeout},
		logger:     slog.Default(),
		tracer:     otel.Tracer("cosurvival/internal/remote"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// call performs one round trip and decodes a 2xx JSON body into out.
func (c *Client) call(ctx context.Context, resource, method, path string, query url.Values, body any, out any) (err error) {
	ctx, span := c.tracer.Start(ctx, "remote."+resource, trace.WithSpanKind(trace.SpanKindClient))
	start := time.Now()
	defer func() {
		requestDuration.WithLabelValues(resource, outcome(err)).Observe(time.Since(start).Seconds())
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	u := *c.baseURL
	u.Path = u.Path + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	span.SetAttributes(
		attribute.String("http.method", method),
		attribute.String("http.url", u.String()),
	)

	var reader io.Reader
	if body != nil {
		buf, merr := json.Marshal(body)
		if merr != nil {
			return fmt.Errorf("%s: encode request: %w", resource, merr)
		}
		reader = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", resource, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
		if c.token != nil {
			if tok := c.token(); tok != "" {
				req.Header.Set(CSRFHeader, tok)
			}
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &NetworkError{Resource: resource, Err: err}
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		se := &ServerError{Resource: resource, Status: resp.StatusCode, Message: errorMessage(resp)}
		c.logger.DebugContext(ctx, "dashboard api returned error",
			"resource", resource,
			"status", resp.StatusCode,
			"message", se.Message,
		)
		return se
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		var netErr interface{ Timeout() bool }
		if errors.As(err, &netErr) {
			return &NetworkError{Resource: resource, Err: err}
		}
		return &ServerError{Resource: resource, Status: resp.StatusCode, Message: err.Error(), BadData: true}
	}
	return nil
}

// errorMessage pulls a message from {"error": ...} or {"message": ...}
// bodies, falling back to the status text.
func errorMessage(resp *http.Response) string {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(raw, &body) == nil {
		switch {
		case body.Message != "":
			return body.Message
		case body.Error != "":
			return body.Error
		}
	}
	if text := strings.TrimSpace(string(raw)); text != "" && len(text) < 200 {
		return text
	}
	return http.StatusText(resp.StatusCode)
}
