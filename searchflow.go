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


// Package searchflow wires a configured search backend, the component state
// store and the query orchestrator into a single Runtime.
package searchflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/poiesic/searchflow/builder"
	"github.com/poiesic/searchflow/config"
	"github.com/poiesic/searchflow/core"
	"github.com/poiesic/searchflow/metrics"
	"github.com/poiesic/searchflow/orchestrator"
	"github.com/poiesic/searchflow/state"
	"github.com/poiesic/searchflow/storage"
	"github.com/poiesic/searchflow/storage/badger"
	"github.com/poiesic/searchflow/transport"
	"github.com/poiesic/searchflow/transport/elastic"
	"github.com/poiesic/searchflow/transport/local"
	"github.com/prometheus/client_golang/prometheus"
)

// ErrIndexingUnsupported is returned by Index when the runtime talks to a
// remote backend.
var ErrIndexingUnsupported = errors.New("indexing requires the local transport")

type Runtime struct {
	cfg      *config.Config
	backend  *badger.Backend
	repo     storage.DocumentRepository
	local    *local.Client
	client   transport.Client
	store    *state.Store
	engine   *orchestrator.Engine
	registry *prometheus.Registry
	monitor  *metrics.Monitor
	logger   *slog.Logger
}

// RuntimeOption configures a Runtime.
type RuntimeOption func(*runtimeOptions)

type runtimeOptions struct {
	logger   *slog.Logger
	registry *prometheus.Registry
}

// WithLogger sets the logger handed to every component.
func WithLogger(logger *slog.Logger) RuntimeOption {
	return func(o *runtimeOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithRegistry registers metrics on reg instead of a private registry.
func WithRegistry(reg *prometheus.Registry) RuntimeOption {
	return func(o *runtimeOptions) {
		o.registry = reg
	}
}

// NewRuntime validates cfg and builds the runtime it describes.
func NewRuntime(cfg *config.Config, opts ...RuntimeOption) (*Runtime, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	options := &runtimeOptions{
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}

	rt := &Runtime{
		cfg:    cfg,
		store:  state.NewStore(),
		logger: options.logger.With("component", "runtime"),
	}

	if err := rt.openTransport(options.logger); err != nil {
		rt.closeTransport()
		return nil, err
	}

	engineOpts := []orchestrator.Option{
		orchestrator.WithLogger(options.logger.With("component", "orchestrator")),
		orchestrator.WithPoolSize(cfg.PoolSize),
		orchestrator.WithHeaders(cfg.Headers),
		orchestrator.WithType(rt.searchType()),
		orchestrator.WithPreferencePrefix(cfg.PreferencePrefix),
	}
	if cfg.MetricsNamespace != "" {
		rt.registry = options.registry
		if rt.registry == nil {
			rt.registry = prometheus.NewRegistry()
		}
		monitor, err := metrics.NewMonitor(rt.registry, cfg.MetricsNamespace)
		if err != nil {
			rt.closeTransport()
			return nil, err
		}
		rt.monitor = monitor
		engineOpts = append(engineOpts, orchestrator.WithMonitor(monitor))
	}

	engine, err := orchestrator.New(rt.store, rt.client, builder.New(), engineOpts...)
	if err != nil {
		rt.closeTransport()
		return nil, err
	}
	rt.engine = engine
	return rt, nil
}

func (rt *Runtime) openTransport(logger *slog.Logger) error {
	switch rt.cfg.Transport {
	case config.TransportElastic:
		client, err := elastic.NewClient(rt.cfg.URL, rt.cfg.Index,
			elastic.WithLogger(logger.With("component", "elastic-transport")),
			elastic.WithTimeout(rt.cfg.Timeout),
			elastic.WithRetry(rt.cfg.MaxRetries, rt.cfg.RetryDelay),
		)
		if err != nil {
			return err
		}
		rt.client = client
		return nil

	default:
		backend, err := badger.OpenBackend(rt.cfg.DBPath, rt.cfg.InMemory)
		if err != nil {
			return fmt.Errorf("opening document store: %w", err)
		}
		rt.backend = backend

		repo, err := badger.NewDocumentRepository(backend)
		if err != nil {
			return err
		}
		rt.repo = repo

		client, err := local.NewClient(repo, local.WithLogger(logger.With("component", "local-transport")))
		if err != nil {
			return err
		}
		rt.local = client
		rt.client = client
		return nil
	}
}

// searchType resolves the per-request index. The local transport has no
// default index of its own so the configured one is always sent.
func (rt *Runtime) searchType() string {
	if rt.cfg.Type != "" && rt.cfg.Type != "*" {
		return rt.cfg.Type
	}
	if rt.cfg.Transport == config.TransportLocal {
		return rt.cfg.Index
	}
	return ""
}

func (rt *Runtime) Engine() *orchestrator.Engine {
	return rt.engine
}

func (rt *Runtime) Store() *state.Store {
	return rt.store
}

// Monitor returns the metrics monitor, or nil when metrics are disabled.
func (rt *Runtime) Monitor() *metrics.Monitor {
	return rt.monitor
}

// Registry returns the metrics registry, or nil when metrics are disabled.
func (rt *Runtime) Registry() *prometheus.Registry {
	return rt.registry
}

// Index stores documents in the local backend. Documents without an index
// go to the configured one.
func (rt *Runtime) Index(ctx context.Context, docs ...*core.Document) ([]*core.Document, error) {
	if rt.local == nil {
		return nil, ErrIndexingUnsupported
	}
	index := rt.searchType()
	for _, doc := range docs {
		if doc.Index == "" {
			doc.Index = index
		}
	}
	return rt.local.Index(ctx, docs...)
}

// Count returns the number of documents in the configured local index.
func (rt *Runtime) Count(ctx context.Context) (int64, error) {
	if rt.repo == nil {
		return 0, ErrIndexingUnsupported
	}
	return rt.repo.CountDocuments(ctx, rt.searchType())
}

func (rt *Runtime) Close() error {
	var errs []error
	if rt.engine != nil {
		if err := rt.engine.Close(); err != nil {
			rt.logger.Error("error closing orchestrator", "err", err)
			errs = append(errs, err)
		}
	}
	if err := rt.closeTransport(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (rt *Runtime) closeTransport() error {
	var errs []error
	if rt.client != nil {
		if err := rt.client.Close(); err != nil {
			rt.logger.Error("error closing transport", "err", err)
			errs = append(errs, err)
		}
	}
	if rt.repo != nil {
		if err := rt.repo.Close(); err != nil {
			rt.logger.Error("error closing document repository", "err", err)
			errs = append(errs, err)
		}
	}
	if rt.backend != nil && !rt.backend.IsClosed() {
		if err := rt.backend.Close(); err != nil {
			rt.logger.Error("error closing backend storage", "err", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
