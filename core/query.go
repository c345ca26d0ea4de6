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
	"maps"
	"reflect"

	"github.com/huandu/go-clone"
)

// Query is a backend query fragment, e.g. {"match": {"title": "shoe"}}.
type Query map[string]any

// Options holds query options such as size, from, sort and aggs.
// Unrecognized keys are passed through verbatim.
type Options map[string]any

// Body is a fully composed request body.
type Body map[string]any

// MatchAll returns a fresh {"match_all": {}} query.
func MatchAll() Query {
	return Query{"match_all": map[string]any{}}
}

// IsEmpty reports whether the query has no clauses.
func (q Query) IsEmpty() bool {
	return len(q) == 0
}

// Clone returns a deep copy of the query.
func (q Query) Clone() Query {
	if q == nil {
		return nil
	}
	return clone.Clone(q).(Query)
}

// Equal reports whether two queries are structurally identical.
func (q Query) Equal(other Query) bool {
	return deepEqual(q, other)
}

// Has reports whether the option key is present.
func (o Options) Has(key string) bool {
	_, ok := o[key]
	return ok
}

// Clone returns a deep copy of the options.
func (o Options) Clone() Options {
	if o == nil {
		return nil
	}
	return clone.Clone(o).(Options)
}

// Merge returns a new Options with extra shallow-merged over o.
// Keys in extra win.
func (o Options) Merge(extra Options) Options {
	merged := make(Options, len(o)+len(extra))
	maps.Copy(merged, o)
	maps.Copy(merged, extra)
	return merged
}

// IsEmpty reports whether the body carries neither a query nor options.
func (b Body) IsEmpty() bool {
	return len(b) == 0
}

// Query returns the "query" clause of the body, or nil.
func (b Body) Query() Query {
	switch q := b["query"].(type) {
	case Query:
		return q
	case map[string]any:
		return Query(q)
	}
	return nil
}

// Clone returns a deep copy of the body.
func (b Body) Clone() Body {
	if b == nil {
		return nil
	}
	return clone.Clone(b).(Body)
}

// Equal reports whether two bodies are structurally identical.
// A nil body equals only another empty body.
func (b Body) Equal(other Body) bool {
	return deepEqual(b, other)
}

func deepEqual[M ~map[string]any](a, b M) bool {
	if len(a) == 0 || len(b) == 0 {
		return len(a) == len(b)
	}
	return reflect.DeepEqual(normalize(map[string]any(a)), normalize(map[string]any(b)))
}

// normalize converts named map and slice types to their plain forms so that
// a Query nested in a Body compares equal to the same map[string]any.
func normalize(v any) any {
	switch t := v.(type) {
	case Query:
		return normalize(map[string]any(t))
	case Options:
		return normalize(map[string]any(t))
	case Body:
		return normalize(map[string]any(t))
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = normalize(val)
		}
		return out
	case []Query:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = normalize(val)
		}
		return out
	case []map[string]any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = normalize(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = normalize(val)
		}
		return out
	case int:
		return float64(t)
	case int32:
		return float64(t)
	case int64:
		return float64(t)
	case float32:
		return float64(t)
	}
	return v
}
