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


// Package transport defines how the orchestrator talks to a search backend.
//
// A Client performs one-shot searches and opens streaming subscriptions:
//
//	resp, err := client.Search(ctx, &transport.Request{Component: "results", Body: body})
//
//	stream, err := client.SearchStream(ctx, req)
//	for ev := range stream.Events() {
//	    ...
//	}
//
// Implementations:
//   - transport/local: in-process search over a BadgerDB document store
//   - transport/elastic: Elasticsearch-compatible HTTP API with websocket streaming
//   - transport/mock: test double
//
// Retry policy, if any, belongs to the implementation.
package transport
