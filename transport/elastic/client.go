// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/hashicorp/go-cleanhttp"
	"github.com/poiesic/searchflow/core"
	"github.com/poiesic/searchflow/transport"
)

const (
	defaultMaxAttempts = 3
	defaultRetryDelay  = 200 * time.Millisecond
	defaultStreamPath  = "_stream"
	maxErrorBody       = 4096
)

// Client talks to an Elasticsearch-compatible search API.
type Client struct {
	baseURL     *url.URL
	index       string
	httpClient  *http.Client
	dialer      *websocket.Dialer
	logger      *slog.Logger
	maxAttempts int
	retryDelay  time.Duration
	streamPath  string
	now         func() time.Time

	mu      sync.RWMutex
	headers map[string]string
	streams map[*stream]struct{}
	closed  bool
}

var _ transport.Client = (*Client)(nil)

// Option configures a Client.
type Option func(*Client) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) error {
		if logger != nil {
			c.logger = logger
		}
		return nil
	}
}

// WithHTTPClient replaces the pooled HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) error {
		if client != nil {
			c.httpClient = client
		}
		return nil
	}
}

// WithTimeout sets the per-request HTTP timeout. Zero means no timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) error {
		c.httpClient.Timeout = timeout
		return nil
	}
}

// WithRetry sets the attempt count and base backoff delay for transient failures.
// Default is 3 attempts starting at 200ms.
func WithRetry(maxAttempts int, baseDelay time.Duration) Option {
	return func(c *Client) error {
		if maxAttempts <= 0 {
			return ErrInvalidMaxAttempts
		}
		c.maxAttempts = maxAttempts
		c.retryDelay = baseDelay
		return nil
	}
}

// WithStreamPath sets the path segment of the streaming endpoint.
// Default is "_stream".
func WithStreamPath(path string) Option {
	return func(c *Client) error {
		if path != "" {
			c.streamPath = strings.Trim(path, "/")
		}
		return nil
	}
}

// NewClient creates a client for the cluster at rawURL searching index by
// default.
func NewClient(rawURL, index string, opts ...Option) (*Client, error) {
	if rawURL == "" {
		return nil, ErrURLRequired
	}
	base, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrURLRequired, err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("%w: unsupported scheme %q", ErrURLRequired, base.Scheme)
	}

	c := &Client{
		baseURL:     base,
		index:       index,
		httpClient:  cleanhttp.DefaultPooledClient(),
		dialer:      &websocket.Dialer{HandshakeTimeout: 45 * time.Second, Proxy: http.ProxyFromEnvironment},
		logger:      slog.Default().With("component", "elastic-transport"),
		maxAttempts: defaultMaxAttempts,
		retryDelay:  defaultRetryDelay,
		streamPath:  defaultStreamPath,
		now:         time.Now,
		streams:     make(map[*stream]struct{}),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Search posts the request body to the _search endpoint.
func (c *Client) Search(ctx context.Context, req *transport.Request) (*core.SearchResponse, error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}
	if err := transport.Validate(req); err != nil {
		return nil, err
	}
	endpoint, err := c.endpoint(req, "_search", "")
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(req.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", transport.ErrInvalidRequest, err)
	}

	var resp *core.SearchResponse
	err = retryWithBackoff(ctx, c.logger, func() error {
		dispatched := c.now()
		result, err := c.post(ctx, endpoint, payload)
		if err != nil {
			return err
		}
		resp = result.response(dispatched)
		return nil
	}, c.maxAttempts, c.retryDelay)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("search completed",
		"component", req.Component,
		"total", resp.Total,
		"took", resp.Took)
	return resp, nil
}

func (c *Client) post(ctx context.Context, endpoint string, payload []byte) (*searchResult, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, &permanentError{err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	for k, v := range c.currentHeaders() {
		httpReq.Header.Set(k, v)
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return nil, readAPIError(httpResp)
	}

	var result searchResult
	if err := json.NewDecoder(httpResp.Body).Decode(&result); err != nil {
		return nil, &permanentError{fmt.Errorf("decoding search response: %w", err)}
	}
	return &result, nil
}

func readAPIError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	message := strings.TrimSpace(string(data))

	var body errorBody
	if err := json.Unmarshal(data, &body); err == nil && body.Error.Reason != "" {
		message = body.Error.Type + ": " + body.Error.Reason
	}
	if message == "" {
		message = http.StatusText(resp.StatusCode)
	}
	return &APIError{StatusCode: resp.StatusCode, Message: message}
}

// SetHeaders replaces the headers sent with subsequent requests.
func (c *Client) SetHeaders(headers map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.headers = maps.Clone(headers)
}

func (c *Client) currentHeaders() map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.headers
}

// Close stops every open stream and releases idle connections.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	streams := make([]*stream, 0, len(c.streams))
	for s := range c.streams {
		streams = append(streams, s)
	}
	c.mu.Unlock()

	for _, s := range streams {
		s.Stop()
	}
	c.httpClient.CloseIdleConnections()
	return nil
}

func (c *Client) checkOpen() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return transport.ErrClosed
	}
	return nil
}

// endpoint builds <base>/<index>/<action> with the preference parameter.
// scheme overrides the URL scheme when non-empty.
func (c *Client) endpoint(req *transport.Request, action, scheme string) (string, error) {
	index := c.index
	if req.Type != "" {
		index = req.Type
	}
	if index == "" {
		return "", ErrIndexRequired
	}

	u := *c.baseURL
	if scheme != "" {
		u.Scheme = scheme
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/" + index + "/" + action
	if req.Preference != "" {
		q := u.Query()
		q.Set("preference", req.Preference)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}
