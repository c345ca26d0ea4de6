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


package mock

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/poiesic/searchflow/core"
	"github.com/poiesic/searchflow/transport"
)

// MockClient is a test double for transport.Client.
type MockClient struct {
	// SearchFunc allows custom one-shot behavior.
	// If nil, returns an empty response stamped with the current time.
	SearchFunc func(ctx context.Context, req *transport.Request) (*core.SearchResponse, error)

	// SearchStreamFunc allows custom stream behavior.
	// If nil, opens a new MockStream.
	SearchStreamFunc func(ctx context.Context, req *transport.Request) (transport.Stream, error)

	mu         sync.Mutex
	searches   []*transport.Request
	streamReqs []*transport.Request
	streams    []*MockStream
	headers    []map[string]string
	closed     bool
}

var _ transport.Client = (*MockClient)(nil)

// NewMockClient creates a mock client with default behavior.
func NewMockClient() *MockClient {
	return &MockClient{}
}

// Search records the request and delegates to SearchFunc.
func (m *MockClient) Search(ctx context.Context, req *transport.Request) (*core.SearchResponse, error) {
	m.mu.Lock()
	m.searches = append(m.searches, req)
	fn := m.SearchFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, req)
	}
	return &core.SearchResponse{Timestamp: time.Now()}, nil
}

// SearchStream records the request and delegates to SearchStreamFunc.
func (m *MockClient) SearchStream(ctx context.Context, req *transport.Request) (transport.Stream, error) {
	m.mu.Lock()
	m.streamReqs = append(m.streamReqs, req)
	fn := m.SearchStreamFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, req)
	}

	stream := NewMockStream()
	m.mu.Lock()
	m.streams = append(m.streams, stream)
	m.mu.Unlock()
	return stream, nil
}

// SetHeaders records the headers.
func (m *MockClient) SetHeaders(headers map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.headers = append(m.headers, maps.Clone(headers))
}

// Close marks the client closed.
func (m *MockClient) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Searches returns the one-shot requests received so far.
func (m *MockClient) Searches() []*transport.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*transport.Request, len(m.searches))
	copy(out, m.searches)
	return out
}

// SearchCount returns the number of one-shot requests received.
func (m *MockClient) SearchCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.searches)
}

// SearchesFor returns the one-shot requests made for a component.
func (m *MockClient) SearchesFor(component core.ComponentID) []*transport.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*transport.Request
	for _, req := range m.searches {
		if req.Component == component {
			out = append(out, req)
		}
	}
	return out
}

// StreamRequests returns the stream requests received so far.
func (m *MockClient) StreamRequests() []*transport.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*transport.Request, len(m.streamReqs))
	copy(out, m.streamReqs)
	return out
}

// Streams returns the streams opened by the default SearchStream behavior.
func (m *MockClient) Streams() []*MockStream {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*MockStream, len(m.streams))
	copy(out, m.streams)
	return out
}

// Headers returns every SetHeaders call in order.
func (m *MockClient) Headers() []map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]map[string]string, len(m.headers))
	copy(out, m.headers)
	return out
}

// Closed reports whether Close was called.
func (m *MockClient) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Reset clears recorded calls and hooks.
func (m *MockClient) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.searches = nil
	m.streamReqs = nil
	m.streams = nil
	m.headers = nil
	m.SearchFunc = nil
	m.SearchStreamFunc = nil
}
