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


package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/poiesic/searchflow/core"
)

// storedDocument is the on-disk form of a document.
type storedDocument struct {
	ID        string         `json:"id"`
	Index     string         `json:"index"`
	Source    map[string]any `json:"source"`
	IndexedAt int64          `json:"indexed_at"`
}

// MarshalDocument serializes a Document to bytes.
// IndexedAt is stored with microsecond precision.
func MarshalDocument(doc *core.Document) ([]byte, error) {
	data, err := json.Marshal(storedDocument{
		ID:        doc.ID,
		Index:     doc.Index,
		Source:    doc.Source,
		IndexedAt: doc.IndexedAt.UnixMicro(),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerializationFailed, err)
	}
	return data, nil
}

// UnmarshalDocument deserializes a Document from bytes.
func UnmarshalDocument(data []byte) (*core.Document, error) {
	var stored storedDocument
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerializationFailed, err)
	}
	return &core.Document{
		ID:        stored.ID,
		Index:     stored.Index,
		Source:    stored.Source,
		IndexedAt: time.UnixMicro(stored.IndexedAt).UTC(),
	}, nil
}
