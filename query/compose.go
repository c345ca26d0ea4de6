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


// Package query composes the request body dispatched for a component from its
// own query fragment, its geo overlay and its query options.
package query

import (
	"maps"

	"github.com/poiesic/searchflow/core"
	"github.com/poiesic/searchflow/state"
)

// MergeGeo returns the query with the overlay's geo fragment conjoined.
// The overlay only applies when MustExecute is set and a fragment exists.
// With no query the result is match_all AND geo. The input query is not modified.
func MergeGeo(q core.Query, overlay state.MapOverlay) core.Query {
	if !overlay.MustExecute || overlay.Query.IsEmpty() {
		return q
	}
	geo := overlay.Query.Clone()

	if q.IsEmpty() {
		return core.Query{
			"bool": map[string]any{
				"must": []any{map[string]any(core.MatchAll()), map[string]any(geo)},
			},
		}
	}

	merged := q.Clone()
	if boolClause, ok := asMap(merged["bool"]); ok {
		if must, present := boolClause["must"]; present {
			boolClause["must"] = append(asList(must), map[string]any(geo))
			merged["bool"] = boolClause
			return merged
		}
	}
	return core.Query{
		"bool": map[string]any{
			"must": []any{map[string]any(merged), map[string]any(geo)},
		},
	}
}

// Compose builds the final request body: the geo-merged query under "query",
// then options shallow-merged on top. Options win key conflicts.
func Compose(q core.Query, options core.Options, overlay state.MapOverlay) core.Body {
	body := core.Body{}
	if merged := MergeGeo(q, overlay); !merged.IsEmpty() {
		body["query"] = merged
	}
	maps.Copy(body, options)
	return body
}

// WithMatchAll returns body with a match_all query when it carries none.
// Streaming subscriptions need an explicit match clause.
func WithMatchAll(body core.Body) core.Body {
	if !body.Query().IsEmpty() {
		return body
	}
	out := maps.Clone(body)
	if out == nil {
		out = core.Body{}
	}
	out["query"] = core.MatchAll()
	return out
}

// Executable reports whether a freshly built query is worth running without a
// value change: it has clauses, or its options request aggregations or sorting.
func Executable(q core.Query, options core.Options) bool {
	return !q.IsEmpty() || options.Has("aggs") || options.Has("sort")
}

// Unwrap accepts either a bare query fragment or one wrapped as {"query": {...}}.
func Unwrap(q core.Query) core.Query {
	if inner, ok := asMap(q["query"]); ok && len(q) == 1 {
		return core.Query(inner)
	}
	return q
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case core.Query:
		return map[string]any(m), true
	}
	return nil, false
}

func asList(v any) []any {
	switch l := v.(type) {
	case []any:
		return l
	case []map[string]any:
		out := make([]any, len(l))
		for i, item := range l {
			out[i] = item
		}
		return out
	case []core.Query:
		out := make([]any, len(l))
		for i, item := range l {
			out[i] = map[string]any(item)
		}
		return out
	case nil:
		return nil
	}
	return []any{v}
}
