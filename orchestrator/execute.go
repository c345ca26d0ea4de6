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
	"fmt"

	"github.com/poiesic/searchflow/core"
	"github.com/poiesic/searchflow/query"
	"github.com/poiesic/searchflow/state"
	"github.com/poiesic/searchflow/transport"
)

// ExecuteQuery composes the body for a component and dispatches it unless it
// matches the last dispatched body. It reports whether a dispatch happened.
// Results are applied asynchronously; ExecuteQuery never waits for them.
func (e *Engine) ExecuteQuery(ctx context.Context, component core.ComponentID, q core.Query, options core.Options, appendToHits bool, onChange OnQueryChange) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.execute(ctx, component, q, options, appendToHits, onChange)
}

// execute requires e.mu.
func (e *Engine) execute(ctx context.Context, component core.ComponentID, q core.Query, options core.Options, appendToHits bool, onChange OnQueryChange) (bool, error) {
	var (
		registered bool
		overlay    state.MapOverlay
		previous   core.Body
		stream     state.Stream
	)
	e.store.Read(func(st *state.State) {
		registered = st.IsRegistered(component)
		overlay = st.MapData[component]
		previous = st.QueryLog[component]
		stream = st.Streaming[component]
	})

	if !registered {
		e.skip(component, SkipUnregistered)
		return false, nil
	}

	body := query.Compose(q, options, overlay)
	if body.IsEmpty() {
		e.skip(component, SkipEmpty)
		return false, nil
	}
	if body.Equal(previous) {
		e.skip(component, SkipDuplicate)
		return false, nil
	}

	if onChange != nil {
		onChange(previous, body)
	}

	logged := body.Clone()
	e.store.Dispatch(
		state.LogQuery{Component: component, Body: logged},
		state.SetLoading{Component: component, Loading: true},
	)

	if stream.Enabled {
		e.openStream(ctx, component, body, stream.Ref)
	}

	req := &transport.Request{
		Component:  component,
		Preference: e.preference(component),
		Type:       e.docType,
		Body:       body,
	}
	if err := e.dispatch(ctx, req, appendToHits); err != nil {
		// Let the next identical execution through.
		e.store.Dispatch(state.ForgetQuery{Component: component})
		e.handleError(component, err)
		return false, err
	}

	e.monitor.QueryDispatched(component, logged, stream.Enabled)
	e.logger.Debug("query dispatched",
		"component", component,
		"append", appendToHits,
		"streaming", stream.Enabled)
	return true, nil
}

func (e *Engine) skip(component core.ComponentID, reason SkipReason) {
	e.monitor.QuerySkipped(component, reason)
	e.logger.Debug("query skipped", "component", component, "reason", string(reason))
}

// dispatch submits a one-shot search to the worker pool.
func (e *Engine) dispatch(ctx context.Context, req *transport.Request, appendToHits bool) error {
	headers := e.headers
	// The reply outlives the caller's operation.
	ctx = context.WithoutCancel(ctx)

	e.inflight.Add(1)
	err := e.pool.Submit(func() {
		defer e.inflight.Done()
		defer func() {
			if r := recover(); r != nil {
				e.handleError(req.Component, fmt.Errorf("%w: %v", ErrSearchPanicked, r))
			}
		}()
		if headers != nil {
			e.client.SetHeaders(headers)
		}
		resp, err := e.client.Search(ctx, req)
		if err != nil {
			e.handleError(req.Component, err)
			return
		}
		e.applyResults(req.Component, resp, appendToHits)
	})
	if err != nil {
		e.inflight.Done()
		return fmt.Errorf("%w: %v", ErrDispatchFailed, err)
	}
	return nil
}

// openStream replaces the component's live subscription. Requires e.mu.
func (e *Engine) openStream(ctx context.Context, component core.ComponentID, body core.Body, previous state.StreamHandle) {
	if previous != nil {
		previous.Stop()
		e.monitor.StreamStopped(component)
	}

	req := &transport.Request{
		Component:  component,
		Preference: e.preference(component),
		Type:       e.docType,
		Body:       query.WithMatchAll(body),
	}
	stream, err := e.client.SearchStream(context.WithoutCancel(ctx), req)
	if err != nil {
		e.store.Dispatch(state.SetStreamRef{Component: component})
		e.handleError(component, err)
		return
	}

	e.store.Dispatch(state.SetStreamRef{Component: component, Ref: stream})
	e.monitor.StreamOpened(component)
	e.logger.Debug("stream opened", "component", component)
	go e.pump(component, stream)
}

// stopStream stops and clears a component's live subscription. Requires e.mu.
func (e *Engine) stopStream(component core.ComponentID) {
	ref := e.store.Streaming(component).Ref
	if ref == nil {
		return
	}
	ref.Stop()
	e.store.Dispatch(state.SetStreamRef{Component: component})
	e.monitor.StreamStopped(component)
	e.logger.Debug("stream stopped", "component", component)
}
