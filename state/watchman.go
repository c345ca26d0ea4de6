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

// Watchman maps a source component to the components that react to it.
// Dependents keep insertion order and appear at most once per source.
// It is not safe for concurrent use; the Store guards it.
type Watchman struct {
	dependents map[core.ComponentID][]core.ComponentID
}

// NewWatchman creates an empty watch graph.
func NewWatchman() *Watchman {
	return &Watchman{
		dependents: make(map[core.ComponentID][]core.ComponentID),
	}
}

// Watch records that component depends on sources. A later call for the same
// component replaces the earlier one: positions for sources named again are
// kept, new sources are appended and sources no longer named are dropped.
func (w *Watchman) Watch(component core.ComponentID, sources []core.ComponentID) {
	for source, list := range w.dependents {
		if slices.Contains(sources, source) {
			continue
		}
		w.detach(source, list, component)
	}
	for _, source := range sources {
		list := w.dependents[source]
		if slices.Contains(list, component) {
			continue
		}
		w.dependents[source] = append(list, component)
	}
}

// Unwatch removes component from every dependents list.
func (w *Watchman) Unwatch(component core.ComponentID) {
	for source, list := range w.dependents {
		w.detach(source, list, component)
	}
}

// RemoveSource forgets every relation whose source is the given component.
func (w *Watchman) RemoveSource(source core.ComponentID) {
	delete(w.dependents, source)
}

// DependentsOf returns the components reacting to source, in the order they
// started watching it. Unknown sources have no dependents.
func (w *Watchman) DependentsOf(source core.ComponentID) []core.ComponentID {
	list := w.dependents[source]
	if len(list) == 0 {
		return nil
	}
	return slices.Clone(list)
}

// Sources returns every component that has at least one dependent.
func (w *Watchman) Sources() []core.ComponentID {
	sources := make([]core.ComponentID, 0, len(w.dependents))
	for source := range w.dependents {
		sources = append(sources, source)
	}
	slices.Sort(sources)
	return sources
}

func (w *Watchman) detach(source core.ComponentID, list []core.ComponentID, component core.ComponentID) {
	idx := slices.Index(list, component)
	if idx < 0 {
		return
	}
	list = slices.Delete(slices.Clone(list), idx, idx+1)
	if len(list) == 0 {
		delete(w.dependents, source)
		return
	}
	w.dependents[source] = list
}
