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
	"context"
	"errors"

	"github.com/poiesic/searchflow/core"
	"github.com/poiesic/searchflow/query"
	"github.com/poiesic/searchflow/state"
)

// UpdateQueryRequest carries a component's new value and query fragment.
type UpdateQueryRequest struct {
	Component  core.ComponentID
	Query      core.Query
	Value      any
	Label      string
	ShowFilter bool
	URLParams  bool
	// OnQueryChange is forwarded to every dependent execution.
	OnQueryChange OnQueryChange
}

// WatchComponent records what a component reacts to and executes its query
// when there is something to run.
func (e *Engine) WatchComponent(ctx context.Context, component core.ComponentID, react core.ReactSpec) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.store.Dispatch(state.Watch{Component: component, React: react})

	q, options := e.build(component)
	if !query.Executable(q, options) {
		return nil
	}
	_, err := e.execute(ctx, component, q, options, false, nil)
	return err
}

// SetQueryOptions stores a component's options. With execute set, the
// component and every dependent are rebuilt and executed.
func (e *Engine) SetQueryOptions(ctx context.Context, component core.ComponentID, options core.Options, execute bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.store.Dispatch(state.SetQueryOptions{Component: component, Options: options})
	if !execute {
		return nil
	}

	var errs []error
	q, opts := e.build(component)
	if query.Executable(q, opts) {
		if _, err := e.execute(ctx, component, q, opts, false, nil); err != nil {
			errs = append(errs, err)
		}
	}
	if err := e.fanOut(ctx, component, nil); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// UpdateQuery records a component's value and query, then re-executes every
// component that reacts to it.
func (e *Engine) UpdateQuery(ctx context.Context, req UpdateQueryRequest) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	var actions []state.Action
	component, ok := e.store.Component(req.Component)
	if !ok {
		component = core.NewComponent(req.Component)
	}
	if !component.Internal {
		actions = append(actions, state.SetValue{
			Component:  req.Component,
			Value:      req.Value,
			Label:      req.Label,
			ShowFilter: req.ShowFilter,
			URLParams:  req.URLParams,
		})
	}
	actions = append(actions, state.SetQuery{Component: req.Component, Query: query.Unwrap(req.Query)})
	e.store.Dispatch(actions...)

	return e.fanOut(ctx, req.Component, req.OnQueryChange)
}

// LoadMore fetches the next page for a component and appends it to its hits.
func (e *Engine) LoadMore(ctx context.Context, component core.ComponentID, extra core.Options) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	q, options := e.build(component)
	_, err := e.execute(ctx, component, q, options.Merge(extra), true, nil)
	return err
}

// UpdateMapData stores a component's geo overlay and re-executes it.
func (e *Engine) UpdateMapData(ctx context.Context, component core.ComponentID, geo core.Query, mustExecute bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.store.Dispatch(state.SetMapData{Component: component, Query: geo, MustExecute: mustExecute})
	q, options := e.build(component)
	_, err := e.execute(ctx, component, q, options, false, nil)
	return err
}

// SetStreaming toggles live results for a component. Enabling re-executes the
// component so a subscription opens right away.
func (e *Engine) SetStreaming(ctx context.Context, component core.ComponentID, enabled bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !enabled {
		e.stopStream(component)
		e.store.Dispatch(state.SetStreaming{Component: component, Enabled: false})
		return nil
	}

	e.store.Dispatch(
		state.SetStreaming{Component: component, Enabled: true},
		state.ForgetQuery{Component: component},
	)
	q, options := e.build(component)
	_, err := e.execute(ctx, component, q, options, false, nil)
	return err
}

// fanOut rebuilds and executes every dependent of source. Requires e.mu.
func (e *Engine) fanOut(ctx context.Context, source core.ComponentID, onChange OnQueryChange) error {
	var errs []error
	for _, dependent := range e.store.DependentsOf(source) {
		q, options := e.build(dependent)
		if _, err := e.execute(ctx, dependent, q, options, false, onChange); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (e *Engine) build(component core.ComponentID) (q core.Query, options core.Options) {
	e.store.Read(func(st *state.State) {
		q, options = e.builder.Build(component, st)
	})
	return q, options
}
