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
	"time"

	"github.com/poiesic/searchflow/core"
)

// SkipReason explains why an execution was not dispatched.
type SkipReason string

const (
	SkipUnregistered SkipReason = "unregistered"
	SkipEmpty        SkipReason = "empty"
	SkipDuplicate    SkipReason = "duplicate"
)

// Monitor observes the engine. Methods are called from the calling goroutine
// for dispatch decisions and from worker goroutines for responses, so
// implementations must be safe for concurrent use.
type Monitor interface {
	QueryDispatched(component core.ComponentID, body core.Body, streaming bool)
	QuerySkipped(component core.ComponentID, reason SkipReason)
	ResponseApplied(component core.ComponentID, resp *core.SearchResponse)
	StaleResponseDiscarded(component core.ComponentID, timestamp time.Time)
	TransportError(component core.ComponentID, err error)
	StreamOpened(component core.ComponentID)
	StreamStopped(component core.ComponentID)
}

// noopMonitor is a no-op implementation of Monitor
type noopMonitor struct{}

var _ Monitor = (*noopMonitor)(nil)

func (n *noopMonitor) QueryDispatched(_ core.ComponentID, _ core.Body, _ bool) {}
func (n *noopMonitor) QuerySkipped(_ core.ComponentID, _ SkipReason) {}
func (n *noopMonitor) ResponseApplied(_ core.ComponentID, _ *core.SearchResponse) {}
func (n *noopMonitor) StaleResponseDiscarded(_ core.ComponentID, _ time.Time) {}
func (n *noopMonitor) TransportError(_ core.ComponentID, _ error) {}
func (n *noopMonitor) StreamOpened(_ core.ComponentID) {}
func (n *noopMonitor) StreamStopped(_ core.ComponentID) {}
