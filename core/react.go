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


package core

// ReactSpec describes which components a component depends on.
// The engine only needs the set of sources; the query builder interprets the rest.
type ReactSpec interface {
	Sources() []ComponentID
}

// React is the standard react descriptor. Queries of And sources are
// conjoined, Or sources are disjoined and Not sources are negated.
type React struct {
	And []ComponentID `yaml:"and,omitempty" json:"and,omitempty"`
	Or  []ComponentID `yaml:"or,omitempty" json:"or,omitempty"`
	Not []ComponentID `yaml:"not,omitempty" json:"not,omitempty"`
}

var _ ReactSpec = React{}

// Sources returns every referenced component once, in declaration order.
func (r React) Sources() []ComponentID {
	seen := make(map[ComponentID]bool, len(r.And)+len(r.Or)+len(r.Not))
	sources := make([]ComponentID, 0, len(r.And)+len(r.Or)+len(r.Not))
	for _, group := range [][]ComponentID{r.And, r.Or, r.Not} {
		for _, id := range group {
			if seen[id] {
				continue
			}
			seen[id] = true
			sources = append(sources, id)
		}
	}
	return sources
}
