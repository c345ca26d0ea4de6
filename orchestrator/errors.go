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

import "errors"

var (
	// ErrStoreRequired is returned when a store is not provided.
	ErrStoreRequired = errors.New("state store required")

	// ErrClientRequired is returned when a transport client is not provided.
	ErrClientRequired = errors.New("transport client required")

	// ErrBuilderRequired is returned when a query builder is not provided.
	ErrBuilderRequired = errors.New("query builder required")

	// ErrDispatchFailed is returned when a request could not be handed to the worker pool.
	ErrDispatchFailed = errors.New("dispatch failed")

	// ErrSearchPanicked is surfaced when a dispatched search panics.
	ErrSearchPanicked = errors.New("search panicked")
)
