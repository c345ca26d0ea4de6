package query

import (
	"testing"

	"github.com/poiesic/searchflow/core"
	"github.com/poiesic/searchflow/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var geo = core.Query{
	"geo_bounding_box": map[string]any{
		"location": map[string]any{
			"top_left":     map[string]any{"lat": 52.5, "lon": 13.2},
			"bottom_right": map[string]any{"lat": 52.4, "lon": 13.5},
		},
	},
}

func TestMergeGeo(t *testing.T) {
	x := map[string]any{"match": map[string]any{"title": "shoe"}}

	t.Run("appends to existing conjunction", func(t *testing.T) {
		q := core.Query{"bool": map[string]any{"must": []any{x}}}

		merged := MergeGeo(q, state.MapOverlay{Query: geo, MustExecute: true})

		must := merged["bool"].(map[string]any)["must"]
		assert.Equal(t, []any{x, map[string]any(geo)}, must)
		assert.Len(t, q["bool"].(map[string]any)["must"], 1, "stored query must not change")
	})

	t.Run("no query becomes match_all and geo", func(t *testing.T) {
		merged := MergeGeo(nil, state.MapOverlay{Query: geo, MustExecute: true})

		want := core.Query{"bool": map[string]any{"must": []any{
			map[string]any{"match_all": map[string]any{}},
			map[string]any(geo),
		}}}
		assert.Equal(t, want, merged)
	})

	t.Run("query without conjunction is wrapped", func(t *testing.T) {
		merged := MergeGeo(core.Query(x), state.MapOverlay{Query: geo, MustExecute: true})

		must := merged["bool"].(map[string]any)["must"].([]any)
		require.Len(t, must, 2)
		assert.Equal(t, x, must[0])
	})

	t.Run("object-valued must is wrapped in a list", func(t *testing.T) {
		q := core.Query{"bool": map[string]any{"must": x}}

		merged := MergeGeo(q, state.MapOverlay{Query: geo, MustExecute: true})

		assert.Equal(t, []any{x, map[string]any(geo)}, merged["bool"].(map[string]any)["must"])
	})

	t.Run("ignored unless mustExecute", func(t *testing.T) {
		q := core.Query(x)
		assert.Equal(t, q, MergeGeo(q, state.MapOverlay{Query: geo}))
		assert.Nil(t, MergeGeo(nil, state.MapOverlay{Query: geo}))
	})

	t.Run("no geo fragment", func(t *testing.T) {
		assert.Nil(t, MergeGeo(nil, state.MapOverlay{MustExecute: true}))
	})
}

func TestCompose(t *testing.T) {
	q := core.Query{"match": map[string]any{"title": "shoe"}}

	t.Run("options merged on top", func(t *testing.T) {
		body := Compose(q, core.Options{"size": 10, "from": 20}, state.MapOverlay{})
		assert.Equal(t, core.Body{"query": q, "size": 10, "from": 20}, body)
	})

	t.Run("options win key conflicts", func(t *testing.T) {
		body := Compose(q, core.Options{"query": core.MatchAll()}, state.MapOverlay{})
		assert.Equal(t, core.MatchAll(), body["query"])
	})

	t.Run("empty inputs give empty body", func(t *testing.T) {
		assert.True(t, Compose(nil, nil, state.MapOverlay{}).IsEmpty())
		assert.True(t, Compose(core.Query{}, nil, state.MapOverlay{}).IsEmpty())
	})

	t.Run("geo only", func(t *testing.T) {
		body := Compose(nil, nil, state.MapOverlay{Query: geo, MustExecute: true})
		assert.NotNil(t, body.Query())
	})
}

func TestWithMatchAll(t *testing.T) {
	body := core.Body{"size": 5}

	out := WithMatchAll(body)
	assert.Equal(t, core.MatchAll(), out["query"])
	assert.NotContains(t, body, "query", "input must not change")

	q := core.Body{"query": core.Query{"term": map[string]any{"brand": "acme"}}}
	assert.Equal(t, q, WithMatchAll(q))

	assert.Equal(t, core.Body{"query": core.MatchAll()}, WithMatchAll(nil))
}

func TestExecutable(t *testing.T) {
	tests := []struct {
		name    string
		q       core.Query
		options core.Options
		want    bool
	}{
		{name: "nothing", want: false},
		{name: "query", q: core.MatchAll(), want: true},
		{name: "aggs only", options: core.Options{"aggs": map[string]any{}}, want: true},
		{name: "sort only", options: core.Options{"sort": []any{}}, want: true},
		{name: "size only", options: core.Options{"size": 10}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Executable(tt.q, tt.options))
		})
	}
}

func TestUnwrap(t *testing.T) {
	inner := map[string]any{"match": map[string]any{"title": "shoe"}}

	assert.Equal(t, core.Query(inner), Unwrap(core.Query{"query": inner}))
	assert.Equal(t, core.Query(inner), Unwrap(core.Query(inner)))

	withOptions := core.Query{"query": inner, "size": 1}
	assert.Equal(t, withOptions, Unwrap(withOptions))
	assert.Nil(t, Unwrap(nil))
}
