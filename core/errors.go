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


package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidComponentID indicates a ComponentID failed validation.
	ErrInvalidComponentID = errors.New("invalid component id")

	// ErrInvalidDocument indicates a Document failed validation.
	ErrInvalidDocument = errors.New("invalid document")

	// ErrEmptyIndex indicates the document Index field is empty.
	ErrEmptyIndex = errors.New("index cannot be empty")

	// ErrInvalidIndex indicates the document Index contains a reserved character.
	ErrInvalidIndex = errors.New("index contains reserved characters")

	// ErrEmptySource indicates the document Source is empty.
	ErrEmptySource = errors.New("source cannot be empty")
)
