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
	"fmt"
	"strconv"
	"strings"

	"github.com/poiesic/searchflow/transport"
)

// matcher reports whether a document source matches and with what score.
type matcher func(source map[string]any) (bool, float64)

func matchAll(map[string]any) (bool, float64) { return true, 1 }

func unsupported(format string, args ...any) error {
	return fmt.Errorf("%w: %s", transport.ErrUnsupportedQuery, fmt.Sprintf(format, args...))
}

// compile turns a query clause into a matcher. A nil or empty clause
// matches everything.
func compile(clause any) (matcher, error) {
	if clause == nil {
		return matchAll, nil
	}
	q, ok := asMap(clause)
	if !ok {
		return nil, unsupported("query must be an object, got %T", clause)
	}
	if len(q) == 0 {
		return matchAll, nil
	}
	if len(q) != 1 {
		return nil, unsupported("query object must have exactly one clause, got %d", len(q))
	}

	for kind, body := range q {
		switch kind {
		case "match_all":
			return matchAll, nil
		case "match":
			return compileMatch(body)
		case "multi_match":
			return compileMultiMatch(body)
		case "term":
			return compileTerm(body)
		case "terms":
			return compileTerms(body)
		case "range":
			return compileRange(body)
		case "exists":
			return compileExists(body)
		case "bool":
			return compileBool(body)
		case "geo_bounding_box":
			return compileGeoBoundingBox(body)
		default:
			return nil, unsupported("%q", kind)
		}
	}
	return matchAll, nil
}

// singleField unpacks {field: params}.
func singleField(kind string, body any) (string, any, error) {
	m, ok := asMap(body)
	if !ok || len(m) != 1 {
		return "", nil, unsupported("%s expects a single field", kind)
	}
	for field, params := range m {
		return field, params, nil
	}
	return "", nil, nil
}

func compileMatch(body any) (matcher, error) {
	field, params, err := singleField("match", body)
	if err != nil {
		return nil, err
	}

	text := params
	operator := "or"
	if m, ok := asMap(params); ok {
		text = m["query"]
		if op, ok := m["operator"].(string); ok {
			operator = strings.ToLower(op)
		}
	}
	words := tokenize(fmt.Sprint(text))
	requireAll := operator == "and"

	return func(source map[string]any) (bool, float64) {
		v, ok := lookup(source, field)
		if !ok {
			return false, 0
		}
		var best float64
		for _, item := range values(v) {
			if score := matchTokens(fmt.Sprint(item), words, requireAll); score > best {
				best = score
			}
		}
		return best > 0, best
	}, nil
}

func compileMultiMatch(body any) (matcher, error) {
	m, ok := asMap(body)
	if !ok {
		return nil, unsupported("multi_match expects an object")
	}
	var matchers []matcher
	for _, f := range asList(m["fields"]) {
		field, ok := f.(string)
		if !ok {
			return nil, unsupported("multi_match fields must be strings")
		}
		// Field boosts such as "title^2" are accepted and ignored.
		field, _, _ = strings.Cut(field, "^")
		sub, err := compileMatch(map[string]any{field: map[string]any{
			"query":    m["query"],
			"operator": m["operator"],
		}})
		if err != nil {
			return nil, err
		}
		matchers = append(matchers, sub)
	}
	if len(matchers) == 0 {
		return nil, unsupported("multi_match requires fields")
	}

	return func(source map[string]any) (bool, float64) {
		var best float64
		for _, sub := range matchers {
			if ok, score := sub(source); ok && score > best {
				best = score
			}
		}
		return best > 0, best
	}, nil
}

func compileTerm(body any) (matcher, error) {
	field, params, err := singleField("term", body)
	if err != nil {
		return nil, err
	}
	want := params
	if m, ok := asMap(params); ok {
		want = m["value"]
	}

	return func(source map[string]any) (bool, float64) {
		v, ok := lookup(source, field)
		if !ok {
			return false, 0
		}
		for _, item := range values(v) {
			if equalValues(item, want) {
				return true, 1
			}
		}
		return false, 0
	}, nil
}

func compileTerms(body any) (matcher, error) {
	m, ok := asMap(body)
	if !ok {
		return nil, unsupported("terms expects an object")
	}
	var (
		field string
		wants []any
	)
	for k, v := range m {
		if k == "boost" {
			continue
		}
		if field != "" {
			return nil, unsupported("terms expects a single field")
		}
		field, wants = k, asList(v)
	}
	if field == "" {
		return nil, unsupported("terms expects a field")
	}

	return func(source map[string]any) (bool, float64) {
		v, ok := lookup(source, field)
		if !ok {
			return false, 0
		}
		for _, item := range values(v) {
			for _, want := range wants {
				if equalValues(item, want) {
					return true, 1
				}
			}
		}
		return false, 0
	}, nil
}

func compileRange(body any) (matcher, error) {
	field, params, err := singleField("range", body)
	if err != nil {
		return nil, err
	}
	bounds, ok := asMap(params)
	if !ok {
		return nil, unsupported("range expects bounds for %q", field)
	}

	type bound struct {
		value     any
		inclusive bool
	}
	var lower, upper *bound
	for op, v := range bounds {
		switch op {
		case "gte":
			lower = &bound{v, true}
		case "gt":
			lower = &bound{v, false}
		case "lte":
			upper = &bound{v, true}
		case "lt":
			upper = &bound{v, false}
		case "format", "boost", "relation":
		default:
			return nil, unsupported("range operator %q", op)
		}
	}

	return func(source map[string]any) (bool, float64) {
		v, ok := lookup(source, field)
		if !ok {
			return false, 0
		}
		for _, item := range values(v) {
			if lower != nil {
				c := compareValues(item, lower.value)
				if c < 0 || (c == 0 && !lower.inclusive) {
					continue
				}
			}
			if upper != nil {
				c := compareValues(item, upper.value)
				if c > 0 || (c == 0 && !upper.inclusive) {
					continue
				}
			}
			return true, 1
		}
		return false, 0
	}, nil
}

func compileExists(body any) (matcher, error) {
	m, ok := asMap(body)
	if !ok {
		return nil, unsupported("exists expects an object")
	}
	field, ok := m["field"].(string)
	if !ok {
		return nil, unsupported("exists requires a field")
	}
	return func(source map[string]any) (bool, float64) {
		v, ok := lookup(source, field)
		return ok && v != nil, 1
	}, nil
}

func compileBool(body any) (matcher, error) {
	m, ok := asMap(body)
	if !ok {
		return nil, unsupported("bool expects an object")
	}

	compileAll := func(key string) ([]matcher, error) {
		var out []matcher
		for _, clause := range asList(m[key]) {
			sub, err := compile(clause)
			if err != nil {
				return nil, err
			}
			out = append(out, sub)
		}
		return out, nil
	}

	must, err := compileAll("must")
	if err != nil {
		return nil, err
	}
	filter, err := compileAll("filter")
	if err != nil {
		return nil, err
	}
	should, err := compileAll("should")
	if err != nil {
		return nil, err
	}
	mustNot, err := compileAll("must_not")
	if err != nil {
		return nil, err
	}

	minShould := 0
	if len(should) > 0 && len(must) == 0 && len(filter) == 0 {
		minShould = 1
	}
	if v, ok := m["minimum_should_match"]; ok {
		n, ok := toInt(v)
		if !ok {
			s, _ := v.(string)
			// Percentages are not supported
			if n, ok = parsePercent(s, len(should)); !ok {
				return nil, unsupported("minimum_should_match %v", v)
			}
		}
		minShould = n
	}

	return func(source map[string]any) (bool, float64) {
		var score float64
		for _, sub := range must {
			ok, s := sub(source)
			if !ok {
				return false, 0
			}
			score += s
		}
		for _, sub := range filter {
			if ok, _ := sub(source); !ok {
				return false, 0
			}
		}
		for _, sub := range mustNot {
			if ok, _ := sub(source); ok {
				return false, 0
			}
		}
		var matched int
		for _, sub := range should {
			if ok, s := sub(source); ok {
				matched++
				score += s
			}
		}
		if matched < minShould {
			return false, 0
		}
		if score == 0 {
			// Pure filter context
			score = 1
		}
		return true, score
	}, nil
}

// parsePercent resolves "50%" against the number of should clauses.
func parsePercent(s string, clauses int) (int, bool) {
	p, ok := strings.CutSuffix(s, "%")
	if !ok {
		return 0, false
	}
	pct, err := strconv.Atoi(p)
	if err != nil {
		return 0, false
	}
	return clauses * pct / 100, true
}

type geoPoint struct {
	lat, lon float64
}

// parseGeoPoint accepts {lat, lon}, "lat,lon" and [lon, lat].
func parseGeoPoint(v any) (geoPoint, bool) {
	if m, ok := asMap(v); ok {
		lat, okLat := toFloat(m["lat"])
		lon, okLon := toFloat(m["lon"])
		return geoPoint{lat, lon}, okLat && okLon
	}
	if s, ok := v.(string); ok {
		latStr, lonStr, found := strings.Cut(s, ",")
		if !found {
			return geoPoint{}, false
		}
		lat, errLat := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
		lon, errLon := strconv.ParseFloat(strings.TrimSpace(lonStr), 64)
		return geoPoint{lat, lon}, errLat == nil && errLon == nil
	}
	if list := asList(v); len(list) == 2 {
		lon, okLon := toFloat(list[0])
		lat, okLat := toFloat(list[1])
		return geoPoint{lat, lon}, okLat && okLon
	}
	return geoPoint{}, false
}

func compileGeoBoundingBox(body any) (matcher, error) {
	m, ok := asMap(body)
	if !ok {
		return nil, unsupported("geo_bounding_box expects an object")
	}
	var (
		field             string
		topLeft, botRight geoPoint
	)
	for k, v := range m {
		switch k {
		case "validation_method", "type", "ignore_unmapped", "boost":
			continue
		}
		box, ok := asMap(v)
		if !ok {
			return nil, unsupported("geo_bounding_box box for %q", k)
		}
		tl, okTL := parseGeoPoint(box["top_left"])
		br, okBR := parseGeoPoint(box["bottom_right"])
		if !okTL || !okBR {
			return nil, unsupported("geo_bounding_box requires top_left and bottom_right for %q", k)
		}
		field, topLeft, botRight = k, tl, br
	}
	if field == "" {
		return nil, unsupported("geo_bounding_box expects a field")
	}

	return func(source map[string]any) (bool, float64) {
		v, ok := lookup(source, field)
		if !ok {
			return false, 0
		}
		p, ok := parseGeoPoint(v)
		if !ok {
			return false, 0
		}
		inside := p.lat <= topLeft.lat && p.lat >= botRight.lat &&
			p.lon >= topLeft.lon && p.lon <= botRight.lon
		return inside, 1
	}, nil
}
