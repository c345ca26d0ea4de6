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


// Package orchestrator re-executes component queries when the components they
// react to change.
//
// The Engine ties a state.Store, a QueryBuilder and a transport.Client:
//
//	engine, err := orchestrator.New(store, client, builder.New())
//	engine.AddComponent(core.NewComponent("search"))
//	engine.AddComponent(core.NewComponent("results"))
//	engine.WatchComponent(ctx, "results", core.React{And: []core.ComponentID{"search"}})
//	engine.UpdateQuery(ctx, orchestrator.UpdateQueryRequest{
//	    Component: "search",
//	    Query:     core.Query{"match": map[string]any{"title": "shoe"}},
//	    Value:     "shoe",
//	})
//
// Every execution composes the request body (query, geo overlay, options),
// compares it with the body last dispatched for the component and skips the
// request when nothing changed. Dispatched requests run on a worker pool and
// their responses are applied to the store asynchronously; a response older
// than the one already applied for the component is discarded.
//
// Components with streaming enabled additionally keep one live subscription,
// replaced on every dispatched execution.
package orchestrator
