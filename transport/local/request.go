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
	"slices"
	"strings"

	"github.com/poiesic/searchflow/core"
)

const defaultSize = 10

// searchRequest is a parsed request body.
type searchRequest struct {
	match matcher
	from  int
	size  int
	sort  []sortKey
	aggs  []aggregation
}

type sortKey struct {
	field string
	desc  bool
}

func parseRequest(body core.Body) (*searchRequest, error) {
	match, err := compile(body["query"])
	if err != nil {
		return nil, err
	}

	req := &searchRequest{match: match, size: defaultSize}
	for key, v := range body {
		switch key {
		case "query":
		case "from":
			n, ok := toInt(v)
			if !ok || n < 0 {
				return nil, unsupported("from %v", v)
			}
			req.from = n
		case "size":
			n, ok := toInt(v)
			if !ok || n < 0 {
				return nil, unsupported("size %v", v)
			}
			req.size = n
		case "sort":
			if req.sort, err = parseSort(v); err != nil {
				return nil, err
			}
		case "aggs", "aggregations":
			if req.aggs, err = parseAggregations(v); err != nil {
				return nil, err
			}
		default:
			// Options the local evaluator has no use for (highlight,
			// _source, track_total_hits, ...) are ignored.
		}
	}
	return req, nil
}

// parseSort accepts "field", {"field": "desc"}, {"field": {"order": "desc"}}
// or a list of those.
func parseSort(v any) ([]sortKey, error) {
	var keys []sortKey
	for _, item := range asList(v) {
		if field, ok := item.(string); ok {
			keys = append(keys, sortKey{field: field, desc: field == "_score"})
			continue
		}
		m, ok := asMap(item)
		if !ok {
			return nil, unsupported("sort entry %v", item)
		}
		for field, spec := range m {
			order, _ := spec.(string)
			if params, ok := asMap(spec); ok {
				order, _ = params["order"].(string)
			}
			desc := strings.EqualFold(order, "desc")
			if order == "" {
				desc = field == "_score"
			}
			keys = append(keys, sortKey{field: field, desc: desc})
		}
	}
	return keys, nil
}

// sortHits orders hits by the sort keys, falling back to score descending
// and then ID so results are deterministic.
func sortHits(hits []core.Hit, keys []sortKey) {
	slices.SortStableFunc(hits, func(a, b core.Hit) int {
		for _, key := range keys {
			var c int
			if key.field == "_score" {
				c = cmp.Compare(a.Score, b.Score)
			} else {
				c = compareFields(a.Source, b.Source, key.field)
			}
			if key.desc {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}

// compareFields orders documents missing the field last in ascending order.
func compareFields(a, b map[string]any, field string) int {
	va, okA := lookup(a, field)
	vb, okB := lookup(b, field)
	switch {
	case !okA && !okB:
		return 0
	case !okA:
		return 1
	case !okB:
		return -1
	}
	return compareValues(va, vb)
}

// page returns hits[from:from+size] clamped to bounds.
func page(hits []core.Hit, from, size int) []core.Hit {
	if from >= len(hits) {
		return []core.Hit{}
	}
	end := len(hits)
	if size < end-from {
		end = from + size
	}
	return hits[from:end]
}
