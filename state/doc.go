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


// Package state holds the single reactive store behind a search UI.
//
// The store keeps, per component: registration, value, query, query options,
// the last dispatched request body (execution log), map overlay, loading flag,
// hits, aggregations, streamed hits, streaming state and the timestamp of the
// last applied response. It also keeps the watch graph ("watchman") that maps a
// source component to the components reacting to it.
//
// # Mutation
//
// State is mutated only by dispatching Actions:
//
//	store.Dispatch(state.SetQuery{Component: "search", Query: q})
//
// Every action is reduced under the store's lock, so the store has a single
// writer regardless of how many goroutines dispatch. Each reduction produces
// Events that are delivered to subscribers after the lock is released.
//
// # Reading
//
// Read gives a consistent, read-only view of the whole state:
//
//	store.Read(func(st *state.State) {
//	    q := st.Queries["search"]
//	})
//
// The State passed to Read must not be modified or retained.
package state
