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
	"time"

	"github.com/poiesic/searchflow/core"
)

// Value is a component's published filter value.
type Value struct {
	Value      any
	Label      string
	ShowFilter bool
	URLParams  bool
}

// MapOverlay is an optional geo filter merged into a component's query.
type MapOverlay struct {
	Query       core.Query
	MustExecute bool
}

// Hits is the result list for a component.
type Hits struct {
	Hits  []core.Hit
	Total int64
}

// StreamHandle is a live streaming subscription.
type StreamHandle interface {
	Stop()
}

// Stream is the streaming state for a component.
type Stream struct {
	Enabled bool
	Ref     StreamHandle // nil when no subscription is live
}

// State is the whole store content. All maps are keyed by component ID.
type State struct {
	Components   map[core.ComponentID]core.Component
	Dependencies map[core.ComponentID]core.ReactSpec
	Watchman     *Watchman
	Values       map[core.ComponentID]Value
	Queries      map[core.ComponentID]core.Query
	QueryOptions map[core.ComponentID]core.Options
	QueryLog     map[core.ComponentID]core.Body
	MapData      map[core.ComponentID]MapOverlay
	Loading      map[core.ComponentID]bool
	Hits         map[core.ComponentID]Hits
	Aggregations map[core.ComponentID]map[string]any
	StreamHits   map[core.ComponentID][]core.Hit
	Streaming    map[core.ComponentID]Stream
	Timestamps   map[core.ComponentID]time.Time
	Errors       map[core.ComponentID]error
}

// New creates an empty State.
func New() *State {
	return &State{
		Components:   make(map[core.ComponentID]core.Component),
		Dependencies: make(map[core.ComponentID]core.ReactSpec),
		Watchman:     NewWatchman(),
		Values:       make(map[core.ComponentID]Value),
		Queries:      make(map[core.ComponentID]core.Query),
		QueryOptions: make(map[core.ComponentID]core.Options),
		QueryLog:     make(map[core.ComponentID]core.Body),
		MapData:      make(map[core.ComponentID]MapOverlay),
		Loading:      make(map[core.ComponentID]bool),
		Hits:         make(map[core.ComponentID]Hits),
		Aggregations: make(map[core.ComponentID]map[string]any),
		StreamHits:   make(map[core.ComponentID][]core.Hit),
		Streaming:    make(map[core.ComponentID]Stream),
		Timestamps:   make(map[core.ComponentID]time.Time),
		Errors:       make(map[core.ComponentID]error),
	}
}

// IsRegistered reports whether the component is currently registered.
func (s *State) IsRegistered(id core.ComponentID) bool {
	_, ok := s.Components[id]
	return ok
}

// purge drops everything the store holds for a component except
// the dependents lists of other sources.
func (s *State) purge(id core.ComponentID) {
	delete(s.Components, id)
	delete(s.Dependencies, id)
	delete(s.Values, id)
	delete(s.Queries, id)
	delete(s.QueryOptions, id)
	delete(s.QueryLog, id)
	delete(s.MapData, id)
	delete(s.Loading, id)
	delete(s.Hits, id)
	delete(s.Aggregations, id)
	delete(s.StreamHits, id)
	delete(s.Streaming, id)
	delete(s.Timestamps, id)
	delete(s.Errors, id)
	s.Watchman.RemoveSource(id)
}
