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


package elastic

import (
	"errors"
	"fmt"
)

var (
	// ErrURLRequired is returned when no cluster URL is configured.
	ErrURLRequired = errors.New("elastic url is required")

	// ErrIndexRequired is returned when neither the client nor the request names an index.
	ErrIndexRequired = errors.New("elastic index is required")

	// ErrInvalidMaxAttempts is returned when retry attempts are not positive.
	ErrInvalidMaxAttempts = errors.New("max attempts must be greater than 0")

	// ErrStreamRejected is returned when the server refuses a subscription.
	ErrStreamRejected = errors.New("stream subscription rejected")
)

// APIError is a non-success HTTP response from the search API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("search api error %d: %s", e.StatusCode, e.Message)
}

// Retryable reports whether the request may succeed if repeated.
func (e *APIError) Retryable() bool {
	return e.StatusCode == 429 || e.StatusCode >= 500
}
