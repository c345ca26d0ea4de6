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
	"encoding/json"
	"time"

	"github.com/poiesic/searchflow/core"
)

// searchResult is the subset of an Elasticsearch search response we read.
type searchResult struct {
	Took int64 `json:"took"`
	Hits struct {
		Total json.RawMessage `json:"total"`
		Hits  []wireHit       `json:"hits"`
	} `json:"hits"`
	Aggregations map[string]any `json:"aggregations"`
}

type wireHit struct {
	ID     string         `json:"_id"`
	Index  string         `json:"_index"`
	Score  *float64       `json:"_score"`
	Source map[string]any `json:"_source"`
}

func (h wireHit) hit() core.Hit {
	hit := core.Hit{ID: h.ID, Index: h.Index, Source: h.Source}
	if h.Score != nil {
		hit.Score = *h.Score
	}
	return hit
}

// total accepts both the pre-7.0 number and the {"value": n} object.
func (r *searchResult) total() int64 {
	if len(r.Hits.Total) == 0 {
		return int64(len(r.Hits.Hits))
	}
	var n int64
	if err := json.Unmarshal(r.Hits.Total, &n); err == nil {
		return n
	}
	var obj struct {
		Value int64 `json:"value"`
	}
	if err := json.Unmarshal(r.Hits.Total, &obj); err == nil {
		return obj.Value
	}
	return int64(len(r.Hits.Hits))
}

// response converts the result, stamping it with the dispatch time since
// the search API does not report one.
func (r *searchResult) response(dispatched time.Time) *core.SearchResponse {
	hits := make([]core.Hit, len(r.Hits.Hits))
	for i, h := range r.Hits.Hits {
		hits[i] = h.hit()
	}
	return &core.SearchResponse{
		Hits:         hits,
		Total:        r.total(),
		Aggregations: r.Aggregations,
		Timestamp:    dispatched,
		Took:         time.Duration(r.Took) * time.Millisecond,
	}
}

// errorBody is an Elasticsearch error response.
type errorBody struct {
	Error struct {
		Type   string `json:"type"`
		Reason string `json:"reason"`
	} `json:"error"`
}

// Stream frames.
const (
	frameSubscribe   = "subscribe"
	frameUnsubscribe = "unsubscribe"
)

type clientFrame struct {
	Type       string            `json:"type"`
	ID         string            `json:"id"`
	Preference string            `json:"preference,omitempty"`
	Headers    map[string]string `json:"headers,omitempty"`
	Body       core.Body         `json:"body,omitempty"`
}

type serverFrame struct {
	ID string `json:"id"`
	// Hit is a single new document.
	Hit *wireHit `json:"hit,omitempty"`
	// Response is a full result set.
	Response *searchResult `json:"response,omitempty"`
	// Timestamp, in Unix milliseconds, of a full result set.
	Timestamp int64  `json:"timestamp,omitempty"`
	Error     string `json:"error,omitempty"`
}
