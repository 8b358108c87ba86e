package coubapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"gyre/internal/services"
)

// DefaultBaseURL is the production Coub origin.
const DefaultBaseURL = "https://coub.com"

const userAgent = "gyre/0.1.0"

// Client provides access to the Coub API. One client is shared by every
// pipeline; its transport is the single connection-limit control point.
type Client struct {
	baseURL    string
	retries    int
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the API origin, mainly for tests.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = baseURL
		}
	}
}

// WithRetries sets the transient-failure retry budget. Negative retries
// indefinitely, zero disables retrying.
func WithRetries(retries int) Option {
	return func(c *Client) {
		c.retries = retries
	}
}

// New creates a Coub API client.
func New(opts ...Option) *Client {
	client := &Client{
		baseURL:    DefaultBaseURL,
		retries:    5,
		httpClient: NewHTTPClient(25, 0),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// NewHTTPClient builds the shared transport, capped to the configured
// connection budget. A zero timeout disables the per-request deadline.
func NewHTTPClient(connections int, timeout time.Duration) *http.Client {
	if connections <= 0 {
		connections = 1
	}
	transport := &http.Transport{
		MaxConnsPerHost:     connections,
		MaxIdleConnsPerHost: connections,
	}
	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}
}

// HTTPClient exposes the underlying client so stream downloads share the same
// connection pool as API requests.
func (c *Client) HTTPClient() *http.Client {
	return c.httpClient
}

// CanonicalURL returns the public view URL for an item identifier.
func CanonicalURL(id string) string {
	return "https://coub.com/view/" + id
}

// MetadataURL returns the API endpoint for an item's metadata payload.
func (c *Client) MetadataURL(id string) string {
	return c.baseURL + "/api/v2/coubs/" + url.PathEscape(id)
}

// BaseURL reports the configured API origin.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Metadata fetches and decodes one item's metadata payload, retrying
// transient failures within the configured budget. Exhausting the budget
// reports the item as unavailable.
func (c *Client) Metadata(ctx context.Context, id string) (*Payload, error) {
	var payload Payload
	err := c.GetJSON(ctx, c.MetadataURL(id), &payload)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if services.Retryable(err) {
			return nil, services.Wrap(services.ErrUnavailable, "api", "fetch metadata", "retry budget exhausted", err)
		}
		return nil, err
	}
	return &payload, nil
}

// GetJSON fetches rawURL and decodes the body into v, retrying transient
// failures (connection errors, malformed bodies) within the client's budget.
func (c *Client) GetJSON(ctx context.Context, rawURL string, v any) error {
	return withRetry(ctx, c.retries, services.Retryable, func() error {
		body, err := c.fetch(ctx, rawURL)
		if err != nil {
			return err
		}
		if err := json.Unmarshal(body, v); err != nil {
			return services.Wrap(services.ErrTransient, "api", "decode response", rawURL, err)
		}
		return nil
	})
}

// Ping issues a cheap request against the API origin to verify connectivity.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return fmt.Errorf("build ping request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return services.Wrap(services.ErrTransient, "api", "ping", c.baseURL, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<10))
	return nil
}

// fetch reads the full response body. The Coub API reports missing items via
// the payload, not the status code, so the status is deliberately ignored
// except for server-side failures.
func (c *Client) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "api", "get", rawURL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "api", "read body", rawURL, err)
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, services.Wrap(services.ErrTransient, "api", "get", fmt.Sprintf("%s: status %d", rawURL, resp.StatusCode), nil)
	}
	return body, nil
}
