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

import "github.com/poiesic/searchflow/core"

// EventKind identifies what changed in the store.
type EventKind int

const (
	ComponentAdded EventKind = iota + 1
	ComponentRemoved
	ComponentWatched
	ValueChanged
	ValuesCleared
	QueryChanged
	OptionsChanged
	MapDataChanged
	QueryLogged
	LoadingChanged
	HitsUpdated
	AggregationsUpdated
	StreamHitsUpdated
	StreamingStatusChanged
	ResponseDiscarded
	ErrorChanged
)

var eventNames = map[EventKind]string{
	ComponentAdded:         "component-added",
	ComponentRemoved:       "component-removed",
	ComponentWatched:       "component-watched",
	ValueChanged:           "value-changed",
	ValuesCleared:          "values-cleared",
	QueryChanged:           "query-changed",
	OptionsChanged:         "options-changed",
	MapDataChanged:         "map-data-changed",
	QueryLogged:            "query-logged",
	LoadingChanged:         "loading-changed",
	HitsUpdated:            "hits-updated",
	AggregationsUpdated:    "aggregations-updated",
	StreamHitsUpdated:      "stream-hits-updated",
	StreamingStatusChanged: "streaming-status-changed",
	ResponseDiscarded:      "response-discarded",
	ErrorChanged:           "error-changed",
}

func (k EventKind) String() string {
	if name, ok := eventNames[k]; ok {
		return name
	}
	return "unknown"
}

// Event reports a change to one component's state.
// Value carries the new value, typed per kind (e.g. Hits for HitsUpdated).
type Event struct {
	Kind      EventKind
	Component core.ComponentID
	Value     any
}

// Listener receives store events.
type Listener func(Event)
