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


package state

import (
	"slices"

	"github.com/poiesic/searchflow/core"
)

// Action is a state transition. The set of actions is closed; each one is
// reduced atomically by the Store.
type Action interface {
	reduce(s *State) []Event
}

// AddComponent registers a component. Re-registering replaces the record.
type AddComponent struct {
	Component core.Component
}

func (a AddComponent) reduce(s *State) []Event {
	s.Components[a.Component.ID] = a.Component
	return []Event{{Kind: ComponentAdded, Component: a.Component.ID, Value: a.Component}}
}

// RemoveComponent deregisters a component and drops its state. Dependents
// lists of other sources keep pointing at it until they are rewatched.
type RemoveComponent struct {
	Component core.ComponentID
}

func (a RemoveComponent) reduce(s *State) []Event {
	if !s.IsRegistered(a.Component) {
		return nil
	}
	s.purge(a.Component)
	return []Event{{Kind: ComponentRemoved, Component: a.Component}}
}

// Watch records what a component reacts to.
type Watch struct {
	Component core.ComponentID
	React     core.ReactSpec
}

func (a Watch) reduce(s *State) []Event {
	var sources []core.ComponentID
	if a.React != nil {
		sources = a.React.Sources()
		s.Dependencies[a.Component] = a.React
	} else {
		delete(s.Dependencies, a.Component)
	}
	s.Watchman.Watch(a.Component, sources)
	return []Event{{Kind: ComponentWatched, Component: a.Component, Value: a.React}}
}

// SetValue records a component's filter value.
type SetValue struct {
	Component  core.ComponentID
	Value      any
	Label      string
	ShowFilter bool
	URLParams  bool
}

func (a SetValue) reduce(s *State) []Event {
	v := Value{
		Value:      a.Value,
		Label:      a.Label,
		ShowFilter: a.ShowFilter,
		URLParams:  a.URLParams,
	}
	s.Values[a.Component] = v
	return []Event{{Kind: ValueChanged, Component: a.Component, Value: v}}
}

// ClearValues drops every component's value.
type ClearValues struct{}

func (ClearValues) reduce(s *State) []Event {
	clear(s.Values)
	return []Event{{Kind: ValuesCleared}}
}

// SetQuery records a component's own query fragment. A nil query clears it.
type SetQuery struct {
	Component core.ComponentID
	Query     core.Query
}

func (a SetQuery) reduce(s *State) []Event {
	if a.Query == nil {
		delete(s.Queries, a.Component)
	} else {
		s.Queries[a.Component] = a.Query
	}
	return []Event{{Kind: QueryChanged, Component: a.Component, Value: a.Query}}
}

// SetQueryOptions records a component's query options.
type SetQueryOptions struct {
	Component core.ComponentID
	Options   core.Options
}

func (a SetQueryOptions) reduce(s *State) []Event {
	s.QueryOptions[a.Component] = a.Options
	return []Event{{Kind: OptionsChanged, Component: a.Component, Value: a.Options}}
}

// SetMapData records a component's geo overlay.
type SetMapData struct {
	Component   core.ComponentID
	Query       core.Query
	MustExecute bool
}

func (a SetMapData) reduce(s *State) []Event {
	overlay := MapOverlay{Query: a.Query, MustExecute: a.MustExecute}
	s.MapData[a.Component] = overlay
	return []Event{{Kind: MapDataChanged, Component: a.Component, Value: overlay}}
}

// LogQuery records the body last dispatched for a component.
type LogQuery struct {
	Component core.ComponentID
	Body      core.Body
}

func (a LogQuery) reduce(s *State) []Event {
	s.QueryLog[a.Component] = a.Body
	return []Event{{Kind: QueryLogged, Component: a.Component, Value: a.Body}}
}

// ForgetQuery drops the execution log entry so the next execution is dispatched.
type ForgetQuery struct {
	Component core.ComponentID
}

func (a ForgetQuery) reduce(s *State) []Event {
	if _, ok := s.QueryLog[a.Component]; !ok {
		return nil
	}
	delete(s.QueryLog, a.Component)
	return []Event{{Kind: QueryLogged, Component: a.Component}}
}

// SetLoading sets a component's loading flag.
type SetLoading struct {
	Component core.ComponentID
	Loading   bool
}

func (a SetLoading) reduce(s *State) []Event {
	s.Loading[a.Component] = a.Loading
	return []Event{{Kind: LoadingChanged, Component: a.Component, Value: a.Loading}}
}

// ApplyResults applies a full search result unless a newer one was already
// applied for the component. Results for unregistered components produce no
// events.
type ApplyResults struct {
	Component core.ComponentID
	Response  *core.SearchResponse
	Append    bool
}

func (a ApplyResults) reduce(s *State) []Event {
	resp := a.Response
	if resp == nil || !s.IsRegistered(a.Component) {
		return nil
	}
	if applied, ok := s.Timestamps[a.Component]; ok && applied.After(resp.Timestamp) {
		return []Event{{Kind: ResponseDiscarded, Component: a.Component, Value: resp.Timestamp}}
	}
	s.Timestamps[a.Component] = resp.Timestamp

	hits := Hits{Total: resp.Total}
	if a.Append {
		hits.Hits = append(slices.Clone(s.Hits[a.Component].Hits), resp.Hits...)
	} else {
		hits.Hits = slices.Clone(resp.Hits)
	}
	s.Hits[a.Component] = hits
	events := []Event{{Kind: HitsUpdated, Component: a.Component, Value: hits}}

	if s.Loading[a.Component] {
		s.Loading[a.Component] = false
		events = append(events, Event{Kind: LoadingChanged, Component: a.Component, Value: false})
	}
	if resp.HasAggregations() {
		s.Aggregations[a.Component] = resp.Aggregations
		events = append(events, Event{Kind: AggregationsUpdated, Component: a.Component, Value: resp.Aggregations})
	}
	if _, ok := s.Errors[a.Component]; ok {
		delete(s.Errors, a.Component)
		events = append(events, Event{Kind: ErrorChanged, Component: a.Component})
	}
	return events
}

// AppendStreamHit appends a streamed document to a registered component's
// stream hits.
type AppendStreamHit struct {
	Component core.ComponentID
	Hit       core.Hit
}

func (a AppendStreamHit) reduce(s *State) []Event {
	if !s.IsRegistered(a.Component) {
		return nil
	}
	hits := append(slices.Clone(s.StreamHits[a.Component]), a.Hit)
	s.StreamHits[a.Component] = hits
	return []Event{{Kind: StreamHitsUpdated, Component: a.Component, Value: hits}}
}

// SetStreaming toggles streaming for a component. Disabling clears the ref;
// the caller is responsible for stopping it first.
type SetStreaming struct {
	Component core.ComponentID
	Enabled   bool
}

func (a SetStreaming) reduce(s *State) []Event {
	st := s.Streaming[a.Component]
	st.Enabled = a.Enabled
	if !a.Enabled {
		st.Ref = nil
	}
	s.Streaming[a.Component] = st
	return []Event{{Kind: StreamingStatusChanged, Component: a.Component, Value: st.Enabled}}
}

// SetStreamRef stores the live subscription handle for a component.
type SetStreamRef struct {
	Component core.ComponentID
	Ref       StreamHandle
}

func (a SetStreamRef) reduce(s *State) []Event {
	st := s.Streaming[a.Component]
	st.Ref = a.Ref
	s.Streaming[a.Component] = st
	return []Event{{Kind: StreamingStatusChanged, Component: a.Component, Value: st.Enabled}}
}

// SetError records a transport failure for a component and clears its
// loading flag. Hits and aggregations are left untouched.
type SetError struct {
	Component core.ComponentID
	Err       error
}

func (a SetError) reduce(s *State) []Event {
	s.Errors[a.Component] = a.Err
	events := []Event{{Kind: ErrorChanged, Component: a.Component, Value: a.Err}}
	if s.Loading[a.Component] {
		s.Loading[a.Component] = false
		events = append(events, Event{Kind: LoadingChanged, Component: a.Component, Value: false})
	}
	return events
}
