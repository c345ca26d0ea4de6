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
	"sync"

	"github.com/poiesic/searchflow/transport"
)

// MockStream is a controllable transport.Stream.
type MockStream struct {
	mu      sync.Mutex
	events  chan transport.StreamEvent
	stop    chan struct{}
	sending sync.WaitGroup
	stopped bool
}

var _ transport.Stream = (*MockStream)(nil)

// NewMockStream creates an open stream with a small buffer.
func NewMockStream() *MockStream {
	return &MockStream{
		events: make(chan transport.StreamEvent, 16),
		stop:   make(chan struct{}),
	}
}

// Events returns the event channel.
func (s *MockStream) Events() <-chan transport.StreamEvent {
	return s.events
}

// Send delivers an event, blocking while the buffer is full. It reports
// false if the stream was stopped before the event was taken.
func (s *MockStream) Send(ev transport.StreamEvent) bool {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return false
	}
	s.sending.Add(1)
	s.mu.Unlock()
	defer s.sending.Done()

	select {
	case s.events <- ev:
		return true
	case <-s.stop:
		return false
	}
}

// Stop closes the stream once pending sends have returned.
func (s *MockStream) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	close(s.stop)
	s.mu.Unlock()

	s.sending.Wait()
	close(s.events)
}

// Stopped reports whether Stop was called.
func (s *MockStream) Stopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}
