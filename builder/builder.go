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


package builder

import (
	"github.com/poiesic/searchflow/core"
	"github.com/poiesic/searchflow/orchestrator"
	"github.com/poiesic/searchflow/state"
)

// Builder composes queries from react descriptors.
type Builder struct{}

var _ orchestrator.QueryBuilder = (*Builder)(nil)

// New creates the default builder.
func New() *Builder {
	return &Builder{}
}

// Build returns the query a component should run given the current state,
// and the component's options. A component that reacts to nothing, or whose
// sources carry no queries, gets a nil query.
func (b *Builder) Build(component core.ComponentID, st *state.State) (core.Query, core.Options) {
	options := st.QueryOptions[component]

	react, ok := st.Dependencies[component].(core.React)
	if !ok {
		if ptr, isPtr := st.Dependencies[component].(*core.React); isPtr && ptr != nil {
			react, ok = *ptr, true
		}
	}
	if !ok {
		return nil, options
	}

	boolClause := map[string]any{}
	if must := collect(react.And, st); len(must) > 0 {
		boolClause["must"] = must
	}
	if should := collect(react.Or, st); len(should) > 0 {
		boolClause["should"] = should
		boolClause["minimum_should_match"] = 1
	}
	if mustNot := collect(react.Not, st); len(mustNot) > 0 {
		boolClause["must_not"] = mustNot
	}
	if len(boolClause) == 0 {
		return nil, options
	}
	return core.Query{"bool": boolClause}, options
}

func collect(sources []core.ComponentID, st *state.State) []any {
	var clauses []any
	for _, source := range sources {
		if !st.IsRegistered(source) {
			continue
		}
		q := st.Queries[source]
		if q.IsEmpty() {
			continue
		}
		clauses = append(clauses, map[string]any(q))
	}
	return clauses
}
