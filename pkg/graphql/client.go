package graphql

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/tidwall/gjson"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/singleflight"

	"github.com/goliatone/go-destform/pkg/destination"
	"github.com/goliatone/go-destform/pkg/errutil"
)

const maxResponseBytes = 8 << 20

var (
	// ErrEndpointRequired is returned by Do when the client has no endpoint.
	ErrEndpointRequired = errors.New("graphql: endpoint is required")
	// ErrInvalidResponse marks a response that is not a GraphQL document or
	// lacks the requested field.
	ErrInvalidResponse = errors.New("graphql: invalid response")
)

// TransportError describes a request that failed before the server produced a
// GraphQL result.
type TransportError struct {
	Operation  string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("graphql: %s: unexpected status %d: %v", e.Operation, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("graphql: %s: %v", e.Operation, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client. Its transport is still wrapped
// with OpenTelemetry instrumentation.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.http = client
		}
	}
}

// WithHeader adds a header to every request.
func WithHeader(key, value string) Option {
	return func(c *Client) {
		c.headers.Set(key, value)
	}
}

// WithBearerToken authenticates requests with token.
func WithBearerToken(token string) Option {
	return func(c *Client) {
		if token = strings.TrimSpace(token); token != "" {
			c.headers.Set("Authorization", "Bearer "+token)
		}
	}
}

// WithTimeout bounds every request.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithLogger overrides the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Client talks to a GraphQL endpoint.
type Client struct {
	endpoint string
	http     *http.Client
	headers  http.Header
	timeout  time.Duration
	logger   *slog.Logger

	group singleflight.Group
	mu    sync.Mutex
	types []destination.TypeInfo
}

// New constructs a client for endpoint.
func New(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpoint: strings.TrimSpace(endpoint),
		http:     &http.Client{},
		headers:  http.Header{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	instrumented := *c.http
	base := instrumented.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	instrumented.Transport = otelhttp.NewTransport(base)
	c.http = &instrumented
	return c
}

type request struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

// Do posts query with vars and returns the data member of the response. When
// the response carries errors they are returned as errutil.Errors alongside
// whatever data came back.
func (c *Client) Do(ctx context.Context, query string, vars map[string]any) (gjson.Result, error) {
	op := operationName(query)
	if c.endpoint == "" {
		return gjson.Result{}, &TransportError{Operation: op, Err: ErrEndpointRequired}
	}

	body, err := json.Marshal(request{Query: query, Variables: vars})
	if err != nil {
		return gjson.Result{}, fmt.Errorf("graphql: %s: encode request: %w", op, err)
	}

	reqCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return gjson.Result{}, &TransportError{Operation: op, Err: err}
	}
	for key, values := range c.headers {
		req.Header[key] = append([]string(nil), values...)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return gjson.Result{}, &TransportError{Operation: op, Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return gjson.Result{}, &TransportError{Operation: op, StatusCode: resp.StatusCode, Err: err}
	}
	c.logger.Debug("graphql: response",
		"operation", op, "status", resp.StatusCode, "duration", time.Since(started))

	var doc gjson.Result
	if gjson.ValidBytes(data) {
		doc = gjson.ParseBytes(data)
	}
	if errs := errutil.DecodeResult(doc.Get("errors")); len(errs) > 0 {
		return doc.Get("data"), errs
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return gjson.Result{}, &TransportError{
			Operation:  op,
			StatusCode: resp.StatusCode,
			Err:        errors.New(snippet(data, resp.StatusCode)),
		}
	}
	if !doc.IsObject() {
		return gjson.Result{}, &TransportError{Operation: op, StatusCode: resp.StatusCode, Err: ErrInvalidResponse}
	}
	return doc.Get("data"), nil
}

func snippet(data []byte, status int) string {
	const limit = 256
	text := strings.TrimSpace(string(data))
	switch {
	case text == "":
		return http.StatusText(status)
	case len(text) > limit:
		return text[:limit] + "..."
	default:
		return text
	}
}

// operationName extracts the name of the first operation for logs and errors.
func operationName(query string) string {
	fields := strings.Fields(query)
	for i, field := range fields {
		if field != "query" && field != "mutation" {
			continue
		}
		if i+1 >= len(fields) {
			break
		}
		name := fields[i+1]
		if idx := strings.IndexAny(name, "({"); idx >= 0 {
			name = name[:idx]
		}
		if name != "" {
			return name
		}
		break
	}
	return "anonymous"
}
