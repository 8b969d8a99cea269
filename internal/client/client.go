// ABOUTME: HTTP client for the FormationsGest REST API
// ABOUTME: Injects the bearer token per request and decodes the {data,total} envelope

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/markalston/formationsgest/internal/cache"
)

// DefaultBaseURL is the local development backend
const DefaultBaseURL = "http://localhost:5000/api"

// TokenSource supplies the current bearer token. It is consulted on every
// request so login and logout take effect without rebuilding the client.
type TokenSource interface {
	Get() (string, bool)
}

// UnauthorizedHandler is called when an authenticated request is rejected
// with 401. token is the bearer token the request carried.
type UnauthorizedHandler func(ctx context.Context, token string)

// Client is the API client for the FormationsGest backend
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	refs       *cache.Cache[[]string]

	mu             sync.RWMutex
	onUnauthorized UnauthorizedHandler
}

// Option configures a Client
type Option func(*Client)

// WithTokenSource sets where the bearer token is read from
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout of the default http.Client
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithReferenceTTL sets how long category and city lists are reused.
// Zero disables caching.
func WithReferenceTTL(d time.Duration) Option {
	return func(c *Client) {
		if d <= 0 {
			c.refs = nil
			return
		}
		c.refs = cache.New[[]string](d)
	}
}

// New creates a new API client with the given base URL
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		refs: cache.New[[]string](5 * time.Minute),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured API root
func (c *Client) BaseURL() string {
	return c.baseURL
}

// OnUnauthorized registers the handler run when an authenticated request gets 401
func (c *Client) OnUnauthorized(h UnauthorizedHandler) {
	c.mu.Lock()
	c.onUnauthorized = h
	c.mu.Unlock()
}

// Envelope is the standard response wrapper
type Envelope[T any] struct {
	Data    T      `json:"data"`
	Total   *int   `json:"total,omitempty"`
	Message string `json:"message,omitempty"`
}

// List is a decoded collection response
type List[T any] struct {
	Items []T
	Total int
}

// ListOptions are common query parameters for collection endpoints
type ListOptions struct {
	Search  string
	Page    int
	Limit   int
	Filters map[string]string
}

func (o *ListOptions) values() url.Values {
	if o == nil {
		return nil
	}
	q := url.Values{}
	if o.Search != "" {
		q.Set("search", o.Search)
	}
	if o.Page > 0 {
		q.Set("page", strconv.Itoa(o.Page))
	}
	if o.Limit > 0 {
		q.Set("limit", strconv.Itoa(o.Limit))
	}
	for k, v := range o.Filters {
		if v != "" {
			q.Set(k, v)
		}
	}
	return q
}

// request describes one API call
type request struct {
	method string
	path   string
	query  url.Values
	body   any
	form   *multipartBody

	// skipUnauthorizedHook keeps a 401 on this call from ending the session
	skipUnauthorizedHook bool
}

// send executes req and returns the response when the status is 2xx.
// The caller owns the response body.
func (c *Client) send(ctx context.Context, req request) (*http.Response, error) {
	endpoint := c.baseURL + req.path
	if len(req.query) > 0 {
		endpoint += "?" + req.query.Encode()
	}

	var body io.Reader
	contentType := ""
	switch {
	case req.form != nil:
		body = bytes.NewReader(req.form.data)
		contentType = req.form.contentType
	case req.body != nil:
		data, err := json.Marshal(req.body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal input: %w", err)
		}
		body = bytes.NewReader(data)
		contentType = "application/json"
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	httpReq.Header.Set("Accept", "application/json")

	requestID := uuid.NewString()
	httpReq.Header.Set("X-Request-ID", requestID)

	var token string
	if c.tokens != nil {
		if t, ok := c.tokens.Get(); ok {
			token = t
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		slog.Debug("API request failed",
			"request_id", requestID,
			"method", req.method,
			"path", req.path,
			"error", err,
		)
		return nil, c.handleRequestError(ctx, err)
	}

	slog.Debug("API request completed",
		"request_id", requestID,
		"method", req.method,
		"path", req.path,
		"status", resp.StatusCode,
		"latency_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		apiErr := c.handleErrorResponse(req, resp)
		if resp.StatusCode == http.StatusUnauthorized && token != "" && !req.skipUnauthorizedHook {
			c.notifyUnauthorized(ctx, token)
		}
		return nil, apiErr
	}

	return resp, nil
}

func (c *Client) notifyUnauthorized(ctx context.Context, token string) {
	c.mu.RLock()
	h := c.onUnauthorized
	c.mu.RUnlock()
	if h != nil {
		slog.Info("Authenticated request rejected, ending session")
		h(ctx, token)
	}
}

// handleRequestError converts transport failures to TransportError
func (c *Client) handleRequestError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		err = ctxErr
	}
	return &TransportError{BaseURL: c.baseURL, Err: err}
}

// handleErrorResponse parses API error responses
func (c *Client) handleErrorResponse(req request, resp *http.Response) error {
	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		Method:     req.method,
		Path:       req.path,
	}
	var errResp struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil {
		apiErr.Message = errResp.Message
		if apiErr.Message == "" {
			apiErr.Message = errResp.Error
		}
	}
	return apiErr
}

// exec runs req and discards the response body
func (c *Client) exec(ctx context.Context, req request) error {
	resp, err := c.send(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	return nil
}

// decodeRaw runs req and decodes the whole body into T
func decodeRaw[T any](ctx context.Context, c *Client, req request) (*T, error) {
	resp, err := c.send(ctx, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var out T
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("invalid response from backend: %w", err)
	}
	return &out, nil
}

// call runs req and returns the envelope's data
func call[T any](ctx context.Context, c *Client, req request) (*T, error) {
	env, err := decodeRaw[Envelope[T]](ctx, c, req)
	if err != nil {
		return nil, err
	}
	return &env.Data, nil
}

// callList runs req and returns the envelope's data as a list
func callList[T any](ctx context.Context, c *Client, req request) (*List[T], error) {
	env, err := decodeRaw[Envelope[[]T]](ctx, c, req)
	if err != nil {
		return nil, err
	}
	list := &List[T]{Items: env.Data, Total: len(env.Data)}
	if list.Items == nil {
		list.Items = []T{}
	}
	if env.Total != nil {
		list.Total = *env.Total
	}
	return list, nil
}

// idPath joins a collection path and an escaped id
func idPath(collection, id string, suffix ...string) string {
	p := collection + "/" + url.PathEscape(id)
	for _, s := range suffix {
		p += "/" + s
	}
	return p
}
