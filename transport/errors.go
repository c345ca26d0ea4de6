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

import "errors"

var (
	// ErrClosed is returned when the client has been closed.
	ErrClosed = errors.New("transport closed")

	// ErrInvalidRequest is returned for requests without a body or component.
	ErrInvalidRequest = errors.New("invalid search request")

	// ErrUnsupportedQuery is returned when a query clause cannot be evaluated.
	ErrUnsupportedQuery = errors.New("unsupported query clause")
)
