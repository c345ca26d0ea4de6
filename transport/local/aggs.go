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


package local

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

const defaultBucketSize = 10

type aggregation struct {
	name  string
	kind  string
	field string
	size  int
}

// parseAggregations accepts {name: {terms|min|max|avg: {field, size}}}.
func parseAggregations(v any) ([]aggregation, error) {
	m, ok := asMap(v)
	if !ok {
		return nil, unsupported("aggs expects an object")
	}
	aggs := make([]aggregation, 0, len(m))
	for name, def := range m {
		body, ok := asMap(def)
		if !ok {
			return nil, unsupported("aggregation %q", name)
		}
		for kind, params := range body {
			switch kind {
			case "terms", "min", "max", "avg":
			default:
				return nil, unsupported("aggregation type %q", kind)
			}
			p, ok := asMap(params)
			if !ok {
				return nil, unsupported("aggregation %q params", name)
			}
			field, ok := p["field"].(string)
			if !ok {
				return nil, unsupported("aggregation %q requires a field", name)
			}
			size := defaultBucketSize
			if n, ok := toInt(p["size"]); ok && n > 0 {
				size = n
			}
			aggs = append(aggs, aggregation{name: name, kind: kind, field: field, size: size})
		}
	}
	slices.SortFunc(aggs, func(a, b aggregation) int { return strings.Compare(a.name, b.name) })
	return aggs, nil
}

// aggregate computes every aggregation over the matching sources.
func aggregate(aggs []aggregation, sources []map[string]any) map[string]any {
	out := make(map[string]any, len(aggs))
	for _, agg := range aggs {
		switch agg.kind {
		case "terms":
			out[agg.name] = termsBuckets(agg, sources)
		default:
			out[agg.name] = map[string]any{"value": metric(agg, sources)}
		}
	}
	return out
}

func termsBuckets(agg aggregation, sources []map[string]any) map[string]any {
	type bucket struct {
		key   any
		count int64
	}
	index := make(map[string]*bucket)
	var order []*bucket

	for _, source := range sources {
		v, ok := lookup(source, agg.field)
		if !ok {
			continue
		}
		seen := make(map[string]bool)
		for _, item := range values(v) {
			if item == nil {
				continue
			}
			id := fmt.Sprint(item)
			if seen[id] {
				continue
			}
			seen[id] = true
			b, ok := index[id]
			if !ok {
				b = &bucket{key: item}
				index[id] = b
				order = append(order, b)
			}
			b.count++
		}
	}

	slices.SortStableFunc(order, func(a, b *bucket) int {
		if c := cmp.Compare(b.count, a.count); c != 0 {
			return c
		}
		return compareValues(a.key, b.key)
	})

	var others int64
	buckets := make([]any, 0, min(len(order), agg.size))
	for i, b := range order {
		if i >= agg.size {
			others += b.count
			continue
		}
		buckets = append(buckets, map[string]any{"key": b.key, "doc_count": b.count})
	}
	return map[string]any{
		"buckets":                     buckets,
		"sum_other_doc_count":         others,
		"doc_count_error_upper_bound": int64(0),
	}
}

// metric returns nil when no document has a numeric value for the field.
func metric(agg aggregation, sources []map[string]any) any {
	var (
		result float64
		sum    float64
		count  int
	)
	for _, source := range sources {
		v, ok := lookup(source, agg.field)
		if !ok {
			continue
		}
		for _, item := range values(v) {
			f, ok := toFloat(item)
			if !ok {
				continue
			}
			switch {
			case count == 0:
				result = f
			case agg.kind == "min":
				result = min(result, f)
			case agg.kind == "max":
				result = max(result, f)
			}
			sum += f
			count++
		}
	}
	if count == 0 {
		return nil
	}
	if agg.kind == "avg" {
		return sum / float64(count)
	}
	return result
}
