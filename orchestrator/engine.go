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


package orchestrator

import (
	"fmt"
	"log/slog"
	"maps"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/searchflow/core"
	"github.com/poiesic/searchflow/state"
	"github.com/poiesic/searchflow/transport"
)

const releaseTimeout = 5 * time.Second

// Engine orchestrates query execution for the components in a store.
// Caller operations are serialized; responses are applied from worker goroutines.
type Engine struct {
	mu               sync.Mutex
	store            *state.Store
	client           transport.Client
	builder          QueryBuilder
	pool             *ants.Pool
	monitor          Monitor
	headers          map[string]string
	docType          string
	preferencePrefix string
	logger           *slog.Logger
	inflight         sync.WaitGroup
}

// Option configures an Engine.
type Option func(*Engine) error

// WithPoolSize sets the worker pool size for one-shot requests.
// Default is runtime.NumCPU(), with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(e *Engine) error {
		if size < 1 {
			size = 1
		}
		if e.pool != nil {
			e.pool.Release()
		}
		pool, err := newPool(size, e.logger)
		if err != nil {
			return err
		}
		e.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// WithMonitor sets the observability sink.
// Default is a no-op monitor.
func WithMonitor(monitor Monitor) Option {
	return func(e *Engine) error {
		if monitor == nil {
			monitor = &noopMonitor{}
		}
		e.monitor = monitor
		return nil
	}
}

// WithHeaders sets the headers applied to the client before every one-shot search.
func WithHeaders(headers map[string]string) Option {
	return func(e *Engine) error {
		e.headers = maps.Clone(headers)
		return nil
	}
}

// WithType restricts searches to a document type. "*" means all types.
func WithType(docType string) Option {
	return func(e *Engine) error {
		if docType == "*" {
			docType = ""
		}
		e.docType = docType
		return nil
	}
}

// WithPreferencePrefix prefixes the per-component preference token.
func WithPreferencePrefix(prefix string) Option {
	return func(e *Engine) error {
		e.preferencePrefix = prefix
		return nil
	}
}

// New creates an engine.
func New(store *state.Store, client transport.Client, builder QueryBuilder, opts ...Option) (*Engine, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if client == nil {
		return nil, ErrClientRequired
	}
	if builder == nil {
		return nil, ErrBuilderRequired
	}

	e := &Engine{
		store:   store,
		client:  client,
		builder: builder,
		monitor: &noopMonitor{},
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(e); err != nil {
			e.release()
			return nil, err
		}
	}

	if e.pool == nil {
		poolSize := runtime.NumCPU()
		if poolSize < 1 {
			poolSize = 1
		}
		pool, err := newPool(poolSize, e.logger)
		if err != nil {
			return nil, err
		}
		e.pool = pool
	}

	return e, nil
}

// Store returns the engine's state store.
func (e *Engine) Store() *state.Store {
	return e.store
}

// AddComponent registers a component.
func (e *Engine) AddComponent(component core.Component) error {
	if err := core.ValidateComponentID(component.ID); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.store.Dispatch(state.AddComponent{Component: component})
	return nil
}

// RemoveComponent stops the component's subscription and deregisters it.
// Removing an unknown component is a no-op.
func (e *Engine) RemoveComponent(id core.ComponentID) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopStream(id)
	e.store.Dispatch(state.RemoveComponent{Component: id})
}

// ClearValues drops every component's value.
func (e *Engine) ClearValues() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.store.Dispatch(state.ClearValues{})
}

// Wait blocks until every dispatched one-shot request has been applied.
func (e *Engine) Wait() {
	e.inflight.Wait()
}

// Close stops all live subscriptions, waits for in-flight requests and
// releases the worker pool. The engine must not be used afterwards.
func (e *Engine) Close() error {
	e.mu.Lock()
	var live []core.ComponentID
	e.store.Read(func(st *state.State) {
		for id, s := range st.Streaming {
			if s.Ref != nil {
				live = append(live, id)
			}
		}
	})
	for _, id := range live {
		e.stopStream(id)
	}
	e.mu.Unlock()

	e.inflight.Wait()
	if e.pool != nil {
		return e.pool.ReleaseTimeout(releaseTimeout)
	}
	return nil
}

func (e *Engine) release() {
	if e.pool != nil {
		e.pool.Release()
	}
}

// preference returns the routing token for a component's requests.
func (e *Engine) preference(component core.ComponentID) string {
	return e.preferencePrefix + string(component)
}

// antsLoggerAdapter adapts slog.Logger to the ants.Logger interface.
type antsLoggerAdapter struct {
	logger *slog.Logger
}

var _ ants.Logger = (*antsLoggerAdapter)(nil)

func (al *antsLoggerAdapter) Printf(format string, args ...any) {
	al.logger.Warn(fmt.Sprintf(format, args...))
}

func newPool(size int, logger *slog.Logger) (*ants.Pool, error) {
	return ants.NewPool(size,
		ants.WithLogger(&antsLoggerAdapter{logger: logger}),
		ants.WithPanicHandler(func(p any) {
			logger.Error("search dispatch panicked", "panic", p)
		}),
	)
}
