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
	"sync"
	"time"

	"github.com/poiesic/searchflow/core"
)

// Store owns a State and serializes every mutation.
type Store struct {
	mu    sync.RWMutex
	state *State

	listenersMu  sync.Mutex
	listeners    map[int]Listener
	nextListener int
}

// NewStore creates a store with empty state.
func NewStore() *Store {
	return &Store{
		state:     New(),
		listeners: make(map[int]Listener),
	}
}

// Dispatch reduces the actions in order as a single atomic step and returns
// the resulting events. Subscribers are notified after the lock is released.
func (s *Store) Dispatch(actions ...Action) []Event {
	var events []Event
	s.mu.Lock()
	for _, action := range actions {
		events = append(events, action.reduce(s.state)...)
	}
	s.mu.Unlock()

	if len(events) > 0 {
		s.notify(events)
	}
	return events
}

// Read calls fn with a consistent view of the state.
// fn must not modify the state or keep references to it.
func (s *Store) Read(fn func(st *State)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.state)
}

// Subscribe registers a listener for every subsequent event.
// The returned function removes it.
func (s *Store) Subscribe(listener Listener) func() {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()

	id := s.nextListener
	s.nextListener++
	s.listeners[id] = listener

	return func() {
		s.listenersMu.Lock()
		defer s.listenersMu.Unlock()
		delete(s.listeners, id)
	}
}

func (s *Store) notify(events []Event) {
	s.listenersMu.Lock()
	ids := make([]int, 0, len(s.listeners))
	for id := range s.listeners {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	listeners := make([]Listener, 0, len(ids))
	for _, id := range ids {
		listeners = append(listeners, s.listeners[id])
	}
	s.listenersMu.Unlock()

	for _, event := range events {
		for _, listener := range listeners {
			listener(event)
		}
	}
}

// IsRegistered reports whether the component is registered.
func (s *Store) IsRegistered(id core.ComponentID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.IsRegistered(id)
}

// Component returns the registration record for id.
func (s *Store) Component(id core.ComponentID) (core.Component, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.state.Components[id]
	return c, ok
}

// DependentsOf returns the components reacting to source.
func (s *Store) DependentsOf(source core.ComponentID) []core.ComponentID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Watchman.DependentsOf(source)
}

// Value returns a component's current value.
func (s *Store) Value(id core.ComponentID) (Value, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.state.Values[id]
	return v, ok
}

// Query returns a component's own query fragment.
func (s *Store) Query(id core.ComponentID) core.Query {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Queries[id]
}

// QueryOptions returns a component's query options.
func (s *Store) QueryOptions(id core.ComponentID) core.Options {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.QueryOptions[id]
}

// LoggedQuery returns the body last dispatched for a component.
func (s *Store) LoggedQuery(id core.ComponentID) core.Body {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.QueryLog[id]
}

// MapData returns a component's geo overlay.
func (s *Store) MapData(id core.ComponentID) (MapOverlay, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.state.MapData[id]
	return m, ok
}

// Loading reports whether a one-shot request is outstanding for a component.
func (s *Store) Loading(id core.ComponentID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Loading[id]
}

// Hits returns a copy of a component's hits.
func (s *Store) Hits(id core.ComponentID) Hits {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h := s.state.Hits[id]
	return Hits{Hits: slices.Clone(h.Hits), Total: h.Total}
}

// Aggregations returns a component's aggregation data.
func (s *Store) Aggregations(id core.ComponentID) map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Aggregations[id]
}

// StreamHits returns a copy of the documents streamed to a component.
func (s *Store) StreamHits(id core.ComponentID) []core.Hit {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.state.StreamHits[id])
}

// Streaming returns a component's streaming state.
func (s *Store) Streaming(id core.ComponentID) Stream {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Streaming[id]
}

// Timestamp returns the time of the last applied response for a component.
func (s *Store) Timestamp(id core.ComponentID) (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ts, ok := s.state.Timestamps[id]
	return ts, ok
}

// Err returns the last transport error recorded for a component.
func (s *Store) Err(id core.ComponentID) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Errors[id]
}
