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


package transport

import (
	"context"

	"github.com/poiesic/searchflow/core"
)

// Request is a single search dispatched on behalf of a component.
type Request struct {
	Component core.ComponentID
	// Preference routes repeated requests for the same component consistently.
	Preference string
	// Type restricts the search to a document type; empty means all types.
	Type string
	Body core.Body
}

// StreamEvent is one delivery on a streaming subscription. Exactly one of
// Hit, Response or Err is set.
type StreamEvent struct {
	// Hit is a single new document.
	Hit *core.Hit
	// Response is a full result set.
	Response *core.SearchResponse
	Err      error
}

// Stream is a live subscription.
type Stream interface {
	// Events delivers subscription events. The channel is closed when the
	// stream ends.
	Events() <-chan StreamEvent

	// Stop terminates the subscription. After Stop returns no further events
	// are delivered and Events is closed. Stop is idempotent.
	Stop()
}

// Client is a search backend.
// Implementations must be safe for concurrent use.
type Client interface {
	// Search performs a one-shot search.
	Search(ctx context.Context, req *Request) (*core.SearchResponse, error)

	// SearchStream opens a streaming subscription for req.
	SearchStream(ctx context.Context, req *Request) (Stream, error)

	// SetHeaders replaces the headers sent with subsequent requests.
	SetHeaders(headers map[string]string)

	// Close releases resources held by the client.
	Close() error
}
