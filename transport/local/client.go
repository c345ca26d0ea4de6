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


package local

import (
	"context"
	"errors"
	"log/slog"
	"maps"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/poiesic/searchflow/core"
	"github.com/poiesic/searchflow/storage"
	"github.com/poiesic/searchflow/transport"
)

const defaultStreamBuffer = 64

// ErrRepositoryRequired is returned when no document repository is supplied.
var ErrRepositoryRequired = errors.New("document repository is required")

// Client searches a local document repository.
type Client struct {
	repo         storage.DocumentRepository
	logger       *slog.Logger
	streamBuffer int
	now          func() time.Time

	mu      sync.Mutex
	headers map[string]string
	subs    map[string]*subscription
	closed  bool
}

var _ transport.Client = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithStreamBuffer sets the per-subscription event buffer. Events that do not
// fit are dropped with a warning.
// Default is 64.
func WithStreamBuffer(size int) Option {
	return func(c *Client) {
		if size > 0 {
			c.streamBuffer = size
		}
	}
}

// NewClient creates a client over repo.
func NewClient(repo storage.DocumentRepository, opts ...Option) (*Client, error) {
	if repo == nil {
		return nil, ErrRepositoryRequired
	}
	c := &Client{
		repo:         repo,
		logger:       slog.Default().With("component", "local-transport"),
		streamBuffer: defaultStreamBuffer,
		now:          time.Now,
		subs:         make(map[string]*subscription),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Search evaluates the request body against the stored documents.
func (c *Client) Search(ctx context.Context, req *transport.Request) (*core.SearchResponse, error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}
	if err := transport.Validate(req); err != nil {
		return nil, err
	}
	started := c.now()

	parsed, err := parseRequest(req.Body)
	if err != nil {
		return nil, err
	}

	var (
		hits    []core.Hit
		sources []map[string]any
	)
	err = c.repo.ScanDocuments(ctx, req.Type, func(doc *core.Document) error {
		ok, score := parsed.match(doc.Source)
		if !ok {
			return nil
		}
		hits = append(hits, doc.Hit(score))
		sources = append(sources, doc.Source)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sortHits(hits, parsed.sort)
	resp := &core.SearchResponse{
		Hits:      page(hits, parsed.from, parsed.size),
		Total:     int64(len(hits)),
		Timestamp: started,
		Took:      c.now().Sub(started),
	}
	if len(parsed.aggs) > 0 {
		resp.Aggregations = aggregate(parsed.aggs, sources)
	}

	c.logger.Debug("search evaluated",
		"component", req.Component,
		"preference", req.Preference,
		"total", resp.Total,
		"took", resp.Took)
	return resp, nil
}

// SearchStream opens a subscription delivering documents indexed from now on
// that match the request query.
func (c *Client) SearchStream(ctx context.Context, req *transport.Request) (transport.Stream, error) {
	if err := transport.Validate(req); err != nil {
		return nil, err
	}
	parsed, err := parseRequest(req.Body)
	if err != nil {
		return nil, err
	}

	sub := &subscription{
		id:     uuid.NewString(),
		index:  req.Type,
		match:  parsed.match,
		events: make(chan transport.StreamEvent, c.streamBuffer),
		client: c,
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, transport.ErrClosed
	}
	c.subs[sub.id] = sub

	c.logger.Debug("stream opened", "component", req.Component, "subscription", sub.id)
	return sub, nil
}

// Index stores documents and delivers them to matching subscriptions.
func (c *Client) Index(ctx context.Context, docs ...*core.Document) ([]*core.Document, error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}
	added, err := c.repo.AddDocuments(ctx, docs...)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	subs := make([]*subscription, 0, len(c.subs))
	for _, sub := range c.subs {
		subs = append(subs, sub)
	}
	c.mu.Unlock()

	for _, doc := range added {
		for _, sub := range subs {
			sub.deliver(doc)
		}
	}
	return added, nil
}

// Delete removes documents from an index.
func (c *Client) Delete(ctx context.Context, index string, ids ...string) error {
	if err := c.checkOpen(); err != nil {
		return err
	}
	return c.repo.DeleteDocuments(ctx, index, ids...)
}

// SetHeaders records headers. The local transport has no use for them beyond
// logging.
func (c *Client) SetHeaders(headers map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.headers = maps.Clone(headers)
}

// Close stops every subscription. The repository is left open.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	subs := make([]*subscription, 0, len(c.subs))
	for _, sub := range c.subs {
		subs = append(subs, sub)
	}
	c.mu.Unlock()

	for _, sub := range subs {
		sub.Stop()
	}
	return nil
}

func (c *Client) checkOpen() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return transport.ErrClosed
	}
	return nil
}

func (c *Client) unsubscribe(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.subs, id)
}

// subscription is a live stream over newly indexed documents.
type subscription struct {
	id     string
	index  string
	match  matcher
	client *Client

	mu      sync.Mutex
	events  chan transport.StreamEvent
	stopped bool
}

var _ transport.Stream = (*subscription)(nil)

func (s *subscription) Events() <-chan transport.StreamEvent {
	return s.events
}

// Stop closes the event channel; nothing is delivered afterwards.
func (s *subscription) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	close(s.events)
	s.mu.Unlock()

	s.client.unsubscribe(s.id)
}

func (s *subscription) deliver(doc *core.Document) {
	if s.index != "" && s.index != doc.Index {
		return
	}
	ok, score := s.match(doc.Source)
	if !ok {
		return
	}
	hit := doc.Hit(score)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	select {
	case s.events <- transport.StreamEvent{Hit: &hit}:
	default:
		s.client.logger.Warn("stream buffer full, dropping document",
			"subscription", s.id,
			"document", doc.ID)
	}
}
