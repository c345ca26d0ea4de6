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
	"encoding/binary"
	"encoding/hex"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// internalSuffix marks components that never publish a filter value.
const internalSuffix = "__internal"

// ComponentID identifies a search UI component.
// It is unique and stable for the component's lifetime.
type ComponentID string

// Component is a registered search UI unit.
type Component struct {
	ID ComponentID
	// Internal components keep a query but never write to the value store.
	Internal bool
}

// NewComponent creates a Component, deriving Internal from the legacy
// "__internal" identifier suffix.
func NewComponent(id ComponentID) Component {
	return Component{
		ID:       id,
		Internal: strings.HasSuffix(string(id), internalSuffix),
	}
}

// IDFromContent generates a deterministic document ID from text content using BLAKE2b hashing.
// Identical content produces identical IDs.
func IDFromContent(text string) string {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], binary.LittleEndian.Uint64(sum))
	return hex.EncodeToString(buf[:])
}

// Hit is a single document returned by a search.
type Hit struct {
	ID     string         `json:"_id"`
	Index  string         `json:"_index,omitempty"`
	Score  float64        `json:"_score"`
	Source map[string]any `json:"_source"`
}

// SearchResponse is a full result set for one dispatched request.
type SearchResponse struct {
	Hits         []Hit
	Total        int64
	Aggregations map[string]any // nil when the backend returned none
	// Timestamp is the server-reported time of the response. Transports stamp
	// the dispatch time when the server does not report one.
	Timestamp time.Time
	Took      time.Duration
}

// HasAggregations reports whether the response carried aggregation data.
func (r *SearchResponse) HasAggregations() bool {
	return r != nil && r.Aggregations != nil
}

// Document is a stored, searchable record.
type Document struct {
	ID        string
	Index     string
	Source    map[string]any
	IndexedAt time.Time
}

// Hit converts the document into a search hit with the given score.
func (d *Document) Hit(score float64) Hit {
	return Hit{
		ID:     d.ID,
		Index:  d.Index,
		Score:  score,
		Source: d.Source,
	}
}
