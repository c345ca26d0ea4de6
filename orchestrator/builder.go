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
	"github.com/poiesic/searchflow/core"
	"github.com/poiesic/searchflow/state"
)

// QueryBuilder composes a component's query from the queries of the
// components it reacts to. Build must be a pure function of its inputs and
// must not modify st.
type QueryBuilder interface {
	Build(component core.ComponentID, st *state.State) (core.Query, core.Options)
}

// BuilderFunc adapts a function to QueryBuilder.
type BuilderFunc func(component core.ComponentID, st *state.State) (core.Query, core.Options)

// Build calls f.
func (f BuilderFunc) Build(component core.ComponentID, st *state.State) (core.Query, core.Options) {
	return f(component, st)
}

// OnQueryChange is notified with the previous and next body before a
// component's query is dispatched.
type OnQueryChange func(previous, next core.Body)
