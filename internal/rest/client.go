// Package rest talks to a hosted PostgREST-style query service and its
// companion auth endpoints.
package rest

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

	"github.com/Veraticus/kroner/internal/common"
)

const (
	restPrefix = "/rest/v1"
	authPrefix = "/auth/v1"

	defaultTimeout = 15 * time.Second
)

// TokenSource yields the access token for the signed-in user.
type TokenSource func(ctx context.Context) (string, error)

// Client is a minimal PostgREST client over the category, expense and
// budget tables.
type Client struct {
	tokens     TokenSource
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// Option configures a Client.
type Option func(*Client)

// WithTokenSource sets where bearer tokens come from. Without one the
// access key doubles as the bearer token.
func WithTokenSource(tokens TokenSource) Option {
	return func(c *Client) {
		c.tokens = tokens
	}
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// New creates a client for the service at baseURL using apiKey.
func New(baseURL, apiKey string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("store url: %w", common.ErrMissingConfig)
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("store key: %w", common.ErrMissingConfig)
	}

	c := &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Close implements service.Gateway. The client holds no resources.
func (c *Client) Close() error {
	return nil
}

type request struct {
	body    any
	query   url.Values
	headers map[string]string
	method  string
	path    string
	bearer  string
}

// apiError is the error body shared by the query and auth services.
type apiError struct {
	Message          string `json:"message"`
	Msg              string `json:"msg"`
	ErrorDescription string `json:"error_description"`
	Code             string `json:"code"`
}

func (e apiError) text() string {
	for _, s := range []string{e.Message, e.ErrorDescription, e.Msg, e.Code} {
		if strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Message    string
	StatusCode int
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed with status %d", e.StatusCode)
	}
	return fmt.Sprintf("request failed with status %d: %s", e.StatusCode, e.Message)
}

// Unwrap maps auth failures to common.ErrUnauthorized and the rest to
// common.ErrStoreResponse.
func (e *StatusError) Unwrap() error {
	if e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden {
		return common.ErrUnauthorized
	}
	return common.ErrStoreResponse
}

func (c *Client) do(ctx context.Context, r request, out any) error {
	target := c.baseURL + r.path
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}

	var body io.Reader
	if r.body != nil {
		payload, err := json.Marshal(r.body)
		if err != nil {
			return fmt.Errorf("encode %s body: %w", r.path, err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, target, body)
	if err != nil {
		return fmt.Errorf("build %s request: %w", r.path, err)
	}

	bearer := r.bearer
	if bearer == "" {
		bearer = c.apiKey
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+bearer)
	req.Header.Set("Accept", "application/json")
	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range r.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("call %s: %w", r.path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s response: %w", r.path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr apiError
		_ = json.Unmarshal(data, &apiErr)
		return &StatusError{StatusCode: resp.StatusCode, Message: apiErr.text()}
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s response: %w: %w", r.path, common.ErrStoreResponse, err)
	}
	return nil
}

// query runs a table request with the signed-in user's token.
func (c *Client) query(ctx context.Context, r request, out any) error {
	if c.tokens != nil {
		token, err := c.tokens(ctx)
		if err != nil {
			return err
		}
		if token == "" {
			return common.ErrNoSession
		}
		r.bearer = token
	}
	r.path = restPrefix + r.path
	return c.do(ctx, r, out)
}

func isStatus(err error, code int) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.StatusCode == code
}
