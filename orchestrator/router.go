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
	"time"

	"github.com/poiesic/searchflow/core"
	"github.com/poiesic/searchflow/state"
	"github.com/poiesic/searchflow/transport"
)

// applyResults routes a full result to the store. The registration and
// staleness checks run inside the reducer so a concurrent RemoveComponent or
// reply cannot interleave with them.
func (e *Engine) applyResults(component core.ComponentID, resp *core.SearchResponse, appendToHits bool) {
	if resp == nil {
		return
	}

	events := e.store.Dispatch(state.ApplyResults{
		Component: component,
		Response:  resp,
		Append:    appendToHits,
	})
	if len(events) == 0 {
		e.logger.Debug("response for unregistered component dropped", "component", component)
		return
	}
	for _, ev := range events {
		if ev.Kind == state.ResponseDiscarded {
			ts, _ := ev.Value.(time.Time)
			e.monitor.StaleResponseDiscarded(component, ts)
			e.logger.Debug("stale response discarded", "component", component, "timestamp", ts)
			return
		}
	}
	e.monitor.ResponseApplied(component, resp)
}

func (e *Engine) handleError(component core.ComponentID, err error) {
	e.monitor.TransportError(component, err)
	e.logger.Error("search failed", "component", component, "error", err)
	if e.store.IsRegistered(component) {
		e.store.Dispatch(state.SetError{Component: component, Err: err})
	}
}

// pump forwards stream events until the stream's channel is closed.
func (e *Engine) pump(component core.ComponentID, stream transport.Stream) {
	for ev := range stream.Events() {
		e.route(component, ev)
	}
}

func (e *Engine) route(component core.ComponentID, ev transport.StreamEvent) {
	switch {
	case ev.Err != nil:
		e.handleError(component, ev.Err)
	case ev.Hit != nil:
		e.store.Dispatch(state.AppendStreamHit{Component: component, Hit: *ev.Hit})
	case ev.Response != nil:
		e.applyResults(component, ev.Response, false)
	}
}
