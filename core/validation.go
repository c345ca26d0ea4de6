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

import (
	"fmt"
	"strings"
	"unicode"
)

// ValidateComponentID validates a ComponentID.
//
// Validation rules:
//   - must not be empty or whitespace only
//   - must not contain control characters
func ValidateComponentID(id ComponentID) error {
	if strings.TrimSpace(string(id)) == "" {
		return fmt.Errorf("%w: id is empty", ErrInvalidComponentID)
	}
	for _, r := range string(id) {
		if unicode.IsControl(r) {
			return fmt.Errorf("%w: %q contains control characters", ErrInvalidComponentID, id)
		}
	}
	return nil
}

// ValidateDocument validates a Document before it is stored.
//
// Validation rules:
//   - Index must not be empty or contain ':'
//   - Source must have at least one field
//
// NOT validated:
//   - ID (derived from content when empty)
func ValidateDocument(doc *Document) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalidDocument)
	}
	if doc.Index == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyIndex)
	}
	if strings.Contains(doc.Index, ":") {
		return fmt.Errorf("%w: %w: %q", ErrInvalidDocument, ErrInvalidIndex, doc.Index)
	}
	if len(doc.Source) == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptySource)
	}
	return nil
}
