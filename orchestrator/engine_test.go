package orchestrator

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/poiesic/searchflow/core"
	"github.com/poiesic/searchflow/state"
	"github.com/poiesic/searchflow/transport"
	"github.com/poiesic/searchflow/transport/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// andBuilder composes a component's query from its sources' queries.
var andBuilder = BuilderFunc(func(component core.ComponentID, st *state.State) (core.Query, core.Options) {
	options := st.QueryOptions[component]
	react := st.Dependencies[component]
	if react == nil {
		return nil, options
	}
	var must []any
	for _, source := range react.Sources() {
		if q := st.Queries[source]; !q.IsEmpty() {
			must = append(must, map[string]any(q))
		}
	}
	switch len(must) {
	case 0:
		return nil, options
	case 1:
		return core.Query(must[0].(map[string]any)), options
	}
	return core.Query{"bool": map[string]any{"must": must}}, options
})

type recordingMonitor struct {
	noopMonitor
	mu         sync.Mutex
	skipped    []SkipReason
	dispatched int
	stale      int
	errs       int
	opened     int
	stopped    int
}

func (r *recordingMonitor) QueryDispatched(_ core.ComponentID, _ core.Body, _ bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dispatched++
}

func (r *recordingMonitor) QuerySkipped(_ core.ComponentID, reason SkipReason) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.skipped = append(r.skipped, reason)
}

func (r *recordingMonitor) StaleResponseDiscarded(_ core.ComponentID, _ time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stale++
}

func (r *recordingMonitor) TransportError(_ core.ComponentID, _ error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs++
}

func (r *recordingMonitor) StreamOpened(_ core.ComponentID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.opened++
}

func (r *recordingMonitor) StreamStopped(_ core.ComponentID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopped++
}

type monitorCounts struct {
	skipped    []SkipReason
	dispatched int
	stale      int
	errs       int
	opened     int
	stopped    int
}

func (r *recordingMonitor) snapshot() monitorCounts {
	r.mu.Lock()
	defer r.mu.Unlock()
	return monitorCounts{
		skipped:    append([]SkipReason(nil), r.skipped...),
		dispatched: r.dispatched,
		stale:      r.stale,
		errs:       r.errs,
		opened:     r.opened,
		stopped:    r.stopped,
	}
}

func newTestEngine(t *testing.T, client *mock.MockClient, opts ...Option) *Engine {
	t.Helper()
	opts = append([]Option{WithPoolSize(4)}, opts...)
	engine, err := New(state.NewStore(), client, andBuilder, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = engine.Close() })
	return engine
}

func register(t *testing.T, engine *Engine, ids ...core.ComponentID) {
	t.Helper()
	for _, id := range ids {
		require.NoError(t, engine.AddComponent(core.NewComponent(id)))
	}
}

func TestNew(t *testing.T) {
	store := state.NewStore()
	client := mock.NewMockClient()

	t.Run("valid configuration", func(t *testing.T) {
		engine, err := New(store, client, andBuilder)
		require.NoError(t, err)
		assert.NotNil(t, engine)
		assert.Same(t, store, engine.Store())
		require.NoError(t, engine.Close())
	})

	t.Run("with options", func(t *testing.T) {
		engine, err := New(store, client, andBuilder,
			WithLogger(slog.Default()),
			WithPoolSize(2),
			WithMonitor(nil),
			WithHeaders(map[string]string{"Authorization": "Basic x"}),
			WithType("*"),
			WithPreferencePrefix("session-"),
		)
		require.NoError(t, err)
		assert.Empty(t, engine.docType)
		assert.Equal(t, "session-results", engine.preference("results"))
		require.NoError(t, engine.Close())
	})

	t.Run("with nil logger falls back to default", func(t *testing.T) {
		engine, err := New(store, client, andBuilder, WithLogger(nil))
		require.NoError(t, err)
		assert.NotNil(t, engine.logger)
		require.NoError(t, engine.Close())
	})

	t.Run("nil store", func(t *testing.T) {
		_, err := New(nil, client, andBuilder)
		assert.Equal(t, ErrStoreRequired, err)
	})

	t.Run("nil client", func(t *testing.T) {
		_, err := New(store, nil, andBuilder)
		assert.Equal(t, ErrClientRequired, err)
	})

	t.Run("nil builder", func(t *testing.T) {
		_, err := New(store, client, nil)
		assert.Equal(t, ErrBuilderRequired, err)
	})
}

func TestAddComponent_InvalidID(t *testing.T) {
	engine := newTestEngine(t, mock.NewMockClient())
	err := engine.AddComponent(core.Component{ID: "  "})
	assert.ErrorIs(t, err, core.ErrInvalidComponentID)
}

func TestExecuteQuery_Dedup(t *testing.T) {
	client := mock.NewMockClient()
	monitor := &recordingMonitor{}
	engine := newTestEngine(t, client, WithMonitor(monitor))
	register(t, engine, "results")

	ctx := context.Background()
	q := core.Query{"match": map[string]any{"title": "shoe"}}

	dispatched, err := engine.ExecuteQuery(ctx, "results", q, nil, false, nil)
	require.NoError(t, err)
	assert.True(t, dispatched)

	dispatched, err = engine.ExecuteQuery(ctx, "results", q.Clone(), nil, false, nil)
	require.NoError(t, err)
	assert.False(t, dispatched)

	engine.Wait()
	assert.Equal(t, 1, client.SearchCount())

	snap := monitor.snapshot()
	assert.Equal(t, 1, snap.dispatched)
	assert.Equal(t, []SkipReason{SkipDuplicate}, snap.skipped)
}

func TestExecuteQuery_Skips(t *testing.T) {
	client := mock.NewMockClient()
	monitor := &recordingMonitor{}
	engine := newTestEngine(t, client, WithMonitor(monitor))
	register(t, engine, "results")
	ctx := context.Background()

	t.Run("unregistered component", func(t *testing.T) {
		dispatched, err := engine.ExecuteQuery(ctx, "ghost", core.MatchAll(), nil, false, nil)
		require.NoError(t, err)
		assert.False(t, dispatched)
	})

	t.Run("empty body", func(t *testing.T) {
		dispatched, err := engine.ExecuteQuery(ctx, "results", nil, nil, false, nil)
		require.NoError(t, err)
		assert.False(t, dispatched)
		assert.False(t, engine.Store().Loading("results"))
	})

	t.Run("empty non-nil query", func(t *testing.T) {
		dispatched, err := engine.ExecuteQuery(ctx, "results", core.Query{}, nil, false, nil)
		require.NoError(t, err)
		assert.False(t, dispatched)
		assert.Nil(t, engine.Store().LoggedQuery("results"))
	})

	engine.Wait()
	assert.Zero(t, client.SearchCount())
	assert.Equal(t, []SkipReason{SkipUnregistered, SkipEmpty, SkipEmpty}, monitor.snapshot().skipped)
}

func TestExecuteQuery_OnQueryChange(t *testing.T) {
	client := mock.NewMockClient()
	engine := newTestEngine(t, client)
	register(t, engine, "results")
	ctx := context.Background()

	first := core.Query{"term": map[string]any{"color": "red"}}
	second := core.Query{"term": map[string]any{"color": "blue"}}

	var calls [][2]core.Body
	onChange := func(previous, next core.Body) {
		calls = append(calls, [2]core.Body{previous, next})
	}

	_, err := engine.ExecuteQuery(ctx, "results", first, nil, false, onChange)
	require.NoError(t, err)
	_, err = engine.ExecuteQuery(ctx, "results", second, nil, false, onChange)
	require.NoError(t, err)
	_, err = engine.ExecuteQuery(ctx, "results", second, nil, false, onChange)
	require.NoError(t, err)

	require.Len(t, calls, 2)
	assert.Nil(t, calls[0][0])
	assert.True(t, calls[0][1].Equal(core.Body{"query": first}))
	assert.True(t, calls[1][0].Equal(core.Body{"query": first}))
	assert.True(t, calls[1][1].Equal(core.Body{"query": second}))
}

func TestExecuteQuery_RequestShape(t *testing.T) {
	client := mock.NewMockClient()
	headers := map[string]string{"X-Search-Client": "searchflow"}
	engine := newTestEngine(t, client,
		WithHeaders(headers),
		WithType("product"),
		WithPreferencePrefix("p-"),
	)
	register(t, engine, "results")

	q := core.Query{"match_all": map[string]any{}}
	_, err := engine.ExecuteQuery(context.Background(), "results", q, core.Options{"size": 5, "query": "ignored"}, false, nil)
	require.NoError(t, err)
	engine.Wait()

	reqs := client.SearchesFor("results")
	require.Len(t, reqs, 1)
	assert.Equal(t, "p-results", reqs[0].Preference)
	assert.Equal(t, "product", reqs[0].Type)
	// Options win key conflicts.
	assert.Equal(t, "ignored", reqs[0].Body["query"])
	assert.Equal(t, 5, reqs[0].Body["size"])
	assert.Equal(t, []map[string]string{headers}, client.Headers())
}

func TestExecuteQuery_StaleResponseDiscarded(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	older := core.Query{"term": map[string]any{"q": "older"}}

	release := make(chan struct{})
	client := mock.NewMockClient()
	client.SearchFunc = func(_ context.Context, req *transport.Request) (*core.SearchResponse, error) {
		if req.Body.Query().Equal(older) {
			<-release
			return &core.SearchResponse{
				Hits:      []core.Hit{{ID: "r1"}},
				Total:     1,
				Timestamp: base,
			}, nil
		}
		return &core.SearchResponse{
			Hits:      []core.Hit{{ID: "r2"}},
			Total:     1,
			Timestamp: base.Add(time.Second),
		}, nil
	}

	monitor := &recordingMonitor{}
	engine := newTestEngine(t, client, WithMonitor(monitor))
	register(t, engine, "results")
	ctx := context.Background()

	_, err := engine.ExecuteQuery(ctx, "results", older, nil, false, nil)
	require.NoError(t, err)
	_, err = engine.ExecuteQuery(ctx, "results", core.Query{"term": map[string]any{"q": "newer"}}, nil, false, nil)
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		return len(engine.Store().Hits("results").Hits) == 1
	}, time.Second, 5*time.Millisecond)

	close(release)
	engine.Wait()

	hits := engine.Store().Hits("results")
	require.Len(t, hits.Hits, 1)
	assert.Equal(t, "r2", hits.Hits[0].ID)
	ts, ok := engine.Store().Timestamp("results")
	require.True(t, ok)
	assert.Equal(t, base.Add(time.Second), ts)
	assert.Equal(t, 1, monitor.snapshot().stale)
}

func TestExecuteQuery_TransportError(t *testing.T) {
	boom := errors.New("connection refused")
	client := mock.NewMockClient()
	client.SearchFunc = func(_ context.Context, _ *transport.Request) (*core.SearchResponse, error) {
		return &core.SearchResponse{Hits: []core.Hit{{ID: "kept"}}, Total: 1, Timestamp: time.Now()}, nil
	}

	monitor := &recordingMonitor{}
	engine := newTestEngine(t, client, WithMonitor(monitor))
	register(t, engine, "results")
	ctx := context.Background()

	_, err := engine.ExecuteQuery(ctx, "results", core.MatchAll(), nil, false, nil)
	require.NoError(t, err)
	engine.Wait()

	client.SearchFunc = func(_ context.Context, _ *transport.Request) (*core.SearchResponse, error) {
		return nil, boom
	}
	_, err = engine.ExecuteQuery(ctx, "results", core.Query{"term": map[string]any{"a": 1}}, nil, false, nil)
	require.NoError(t, err)
	engine.Wait()

	store := engine.Store()
	assert.ErrorIs(t, store.Err("results"), boom)
	assert.False(t, store.Loading("results"))
	hits := store.Hits("results")
	require.Len(t, hits.Hits, 1)
	assert.Equal(t, "kept", hits.Hits[0].ID)
	assert.Equal(t, 1, monitor.snapshot().errs)
}

func TestExecuteQuery_SearchPanic(t *testing.T) {
	client := mock.NewMockClient()
	client.SearchFunc = func(_ context.Context, _ *transport.Request) (*core.SearchResponse, error) {
		panic("slice bounds out of range")
	}

	monitor := &recordingMonitor{}
	engine := newTestEngine(t, client, WithMonitor(monitor))
	register(t, engine, "results")

	dispatched, err := engine.ExecuteQuery(context.Background(), "results", core.MatchAll(), nil, false, nil)
	require.NoError(t, err)
	require.True(t, dispatched)
	engine.Wait()

	store := engine.Store()
	assert.False(t, store.Loading("results"))
	assert.ErrorIs(t, store.Err("results"), ErrSearchPanicked)
	assert.Equal(t, 1, monitor.snapshot().errs)
}

func TestUpdateQuery_FanOut(t *testing.T) {
	client := mock.NewMockClient()
	engine := newTestEngine(t, client)
	register(t, engine, "a", "b", "c", "d")
	ctx := context.Background()

	require.NoError(t, engine.WatchComponent(ctx, "b", core.React{And: []core.ComponentID{"a"}}))
	require.NoError(t, engine.WatchComponent(ctx, "c", core.React{And: []core.ComponentID{"d"}}))

	err := engine.UpdateQuery(ctx, UpdateQueryRequest{
		Component: "a",
		Query:     core.Query{"term": map[string]any{"color": "red"}},
		Value:     "red",
		Label:     "Color",
	})
	require.NoError(t, err)
	engine.Wait()

	assert.Len(t, client.SearchesFor("b"), 1)
	assert.Empty(t, client.SearchesFor("c"))
	assert.Empty(t, client.SearchesFor("a"))

	value, ok := engine.Store().Value("a")
	require.True(t, ok)
	assert.Equal(t, "red", value.Value)
	assert.Equal(t, "Color", value.Label)
}

func TestUpdateQuery_UnwrapsQuery(t *testing.T) {
	client := mock.NewMockClient()
	engine := newTestEngine(t, client)
	register(t, engine, "search")

	inner := core.Query{"match": map[string]any{"title": "shoe"}}
	err := engine.UpdateQuery(context.Background(), UpdateQueryRequest{
		Component: "search",
		Query:     core.Query{"query": map[string]any(inner)},
	})
	require.NoError(t, err)
	assert.True(t, engine.Store().Query("search").Equal(inner))
}

func TestUpdateQuery_InternalComponentKeepsNoValue(t *testing.T) {
	client := mock.NewMockClient()
	engine := newTestEngine(t, client)
	register(t, engine, "results__internal")

	err := engine.UpdateQuery(context.Background(), UpdateQueryRequest{
		Component: "results__internal",
		Query:     core.MatchAll(),
		Value:     "ignored",
	})
	require.NoError(t, err)

	_, ok := engine.Store().Value("results__internal")
	assert.False(t, ok)
	assert.NotNil(t, engine.Store().Query("results__internal"))
}

func TestWatchComponent_ExecutesOnlyWhenExecutable(t *testing.T) {
	client := mock.NewMockClient()
	engine := newTestEngine(t, client)
	register(t, engine, "results", "facets")
	ctx := context.Background()

	require.NoError(t, engine.WatchComponent(ctx, "results", core.React{And: []core.ComponentID{"search"}}))

	require.NoError(t, engine.SetQueryOptions(ctx, "facets", core.Options{"aggs": map[string]any{}}, false))
	require.NoError(t, engine.WatchComponent(ctx, "facets", core.React{And: []core.ComponentID{"search"}}))
	engine.Wait()

	assert.Empty(t, client.SearchesFor("results"))
	assert.Len(t, client.SearchesFor("facets"), 1)
}

func TestSetQueryOptions_Execute(t *testing.T) {
	client := mock.NewMockClient()
	engine := newTestEngine(t, client)
	register(t, engine, "list", "results")
	ctx := context.Background()

	require.NoError(t, engine.WatchComponent(ctx, "results", core.React{And: []core.ComponentID{"list"}}))
	require.NoError(t, engine.UpdateQuery(ctx, UpdateQueryRequest{
		Component: "list",
		Query:     core.Query{"term": map[string]any{"brand": "acme"}},
	}))
	engine.Wait()
	require.Len(t, client.SearchesFor("results"), 1)

	t.Run("without execute only stores", func(t *testing.T) {
		require.NoError(t, engine.SetQueryOptions(ctx, "list", core.Options{"size": 20}, false))
		engine.Wait()
		assert.Empty(t, client.SearchesFor("list"))
		assert.Equal(t, core.Options{"size": 20}, engine.Store().QueryOptions("list"))
	})

	t.Run("with execute fans out", func(t *testing.T) {
		require.NoError(t, engine.SetQueryOptions(ctx, "list", core.Options{"aggs": map[string]any{"brand": map[string]any{}}}, true))
		engine.Wait()
		assert.Len(t, client.SearchesFor("list"), 1)
		// results' own body is unchanged so the fan-out is deduplicated.
		assert.Len(t, client.SearchesFor("results"), 1)
	})
}

func TestLoadMore_AppendsHits(t *testing.T) {
	client := mock.NewMockClient()
	client.SearchFunc = func(_ context.Context, req *transport.Request) (*core.SearchResponse, error) {
		id := "page-0"
		if req.Body["from"] == 10 {
			id = "page-10"
		}
		return &core.SearchResponse{Hits: []core.Hit{{ID: id}}, Total: 20, Timestamp: time.Now()}, nil
	}
	engine := newTestEngine(t, client)
	register(t, engine, "search", "results")
	ctx := context.Background()

	require.NoError(t, engine.UpdateQuery(ctx, UpdateQueryRequest{Component: "search", Query: core.MatchAll()}))
	require.NoError(t, engine.WatchComponent(ctx, "results", core.React{And: []core.ComponentID{"search"}}))
	engine.Wait()

	require.NoError(t, engine.LoadMore(ctx, "results", core.Options{"from": 10}))
	engine.Wait()

	reqs := client.SearchesFor("results")
	require.Len(t, reqs, 2)
	assert.Equal(t, 10, reqs[1].Body["from"])

	hits := engine.Store().Hits("results")
	require.Len(t, hits.Hits, 2)
	assert.Equal(t, "page-0", hits.Hits[0].ID)
	assert.Equal(t, "page-10", hits.Hits[1].ID)
	assert.Equal(t, int64(20), hits.Total)
}

func TestUpdateMapData(t *testing.T) {
	client := mock.NewMockClient()
	engine := newTestEngine(t, client)
	register(t, engine, "map")
	ctx := context.Background()

	geo := core.Query{"geo_bounding_box": map[string]any{"location": map[string]any{}}}
	require.NoError(t, engine.UpdateMapData(ctx, "map", geo, true))
	engine.Wait()

	reqs := client.SearchesFor("map")
	require.Len(t, reqs, 1)
	expected := core.Body{"query": map[string]any{
		"bool": map[string]any{
			"must": []any{map[string]any{"match_all": map[string]any{}}, map[string]any(geo)},
		},
	}}
	assert.True(t, reqs[0].Body.Equal(expected), "body: %v", reqs[0].Body)

	t.Run("overlay ignored without must execute", func(t *testing.T) {
		require.NoError(t, engine.UpdateMapData(ctx, "map", geo, false))
		engine.Wait()
		assert.Len(t, client.SearchesFor("map"), 1)
	})
}

func TestSetStreaming(t *testing.T) {
	client := mock.NewMockClient()
	monitor := &recordingMonitor{}
	engine := newTestEngine(t, client, WithMonitor(monitor))
	register(t, engine, "search", "feed")
	ctx := context.Background()

	require.NoError(t, engine.UpdateQuery(ctx, UpdateQueryRequest{Component: "search", Query: core.Query{"term": map[string]any{"tag": "go"}}}))
	require.NoError(t, engine.WatchComponent(ctx, "feed", core.React{And: []core.ComponentID{"search"}}))

	require.NoError(t, engine.SetStreaming(ctx, "feed", true))
	require.NoError(t, engine.SetStreaming(ctx, "feed", true))
	engine.Wait()

	streams := client.Streams()
	require.Len(t, streams, 2)
	assert.True(t, streams[0].Stopped())
	assert.False(t, streams[1].Stopped())
	assert.Same(t, streams[1], engine.Store().Streaming("feed").Ref)

	t.Run("stream events are routed", func(t *testing.T) {
		live := streams[1]
		require.True(t, live.Send(transport.StreamEvent{Hit: &core.Hit{ID: "new-1"}}))
		require.True(t, live.Send(transport.StreamEvent{Response: &core.SearchResponse{
			Hits:      []core.Hit{{ID: "full-1"}, {ID: "full-2"}},
			Total:     2,
			Timestamp: time.Now().Add(time.Hour),
		}}))

		assert.Eventually(t, func() bool {
			return len(engine.Store().StreamHits("feed")) == 1 &&
				len(engine.Store().Hits("feed").Hits) == 2
		}, time.Second, 5*time.Millisecond)
	})

	t.Run("disabling stops the live stream", func(t *testing.T) {
		require.NoError(t, engine.SetStreaming(ctx, "feed", false))
		assert.True(t, streams[1].Stopped())
		stream := engine.Store().Streaming("feed")
		assert.False(t, stream.Enabled)
		assert.Nil(t, stream.Ref)
	})

	snap := monitor.snapshot()
	assert.Equal(t, 2, snap.opened)
	assert.Equal(t, 2, snap.stopped)
}

func TestSetStreaming_OpenFailure(t *testing.T) {
	boom := errors.New("upgrade failed")
	client := mock.NewMockClient()
	client.SearchStreamFunc = func(_ context.Context, _ *transport.Request) (transport.Stream, error) {
		return nil, boom
	}
	monitor := &recordingMonitor{}
	engine := newTestEngine(t, client, WithMonitor(monitor))
	register(t, engine, "feed")

	require.NoError(t, engine.SetQueryOptions(context.Background(), "feed", core.Options{"sort": "date"}, false))
	require.NoError(t, engine.SetStreaming(context.Background(), "feed", true))
	engine.Wait()

	assert.Nil(t, engine.Store().Streaming("feed").Ref)
	assert.Equal(t, 1, monitor.snapshot().errs)
	// The one-shot search still ran.
	assert.Len(t, client.SearchesFor("feed"), 1)
	req := client.StreamRequests()
	require.Len(t, req, 1)
	assert.True(t, req[0].Body.Query().Equal(core.MatchAll()))
}

func TestRemoveComponent_StopsStream(t *testing.T) {
	client := mock.NewMockClient()
	engine := newTestEngine(t, client)
	register(t, engine, "feed")
	ctx := context.Background()

	require.NoError(t, engine.SetQueryOptions(ctx, "feed", core.Options{"sort": "date"}, false))
	require.NoError(t, engine.SetStreaming(ctx, "feed", true))
	streams := client.Streams()
	require.Len(t, streams, 1)

	engine.RemoveComponent("feed")
	assert.True(t, streams[0].Stopped())
	assert.False(t, engine.Store().IsRegistered("feed"))

	engine.RemoveComponent("feed")
}

func TestRemoveComponent_DropsLateResponse(t *testing.T) {
	release := make(chan struct{})
	client := mock.NewMockClient()
	client.SearchFunc = func(_ context.Context, _ *transport.Request) (*core.SearchResponse, error) {
		<-release
		return &core.SearchResponse{Hits: []core.Hit{{ID: "late"}}, Total: 1, Timestamp: time.Now()}, nil
	}
	engine := newTestEngine(t, client)
	register(t, engine, "results")

	_, err := engine.ExecuteQuery(context.Background(), "results", core.MatchAll(), nil, false, nil)
	require.NoError(t, err)
	engine.RemoveComponent("results")
	close(release)
	engine.Wait()

	store := engine.Store()
	assert.Empty(t, store.Hits("results").Hits)
	_, ok := store.Timestamp("results")
	assert.False(t, ok)
}

func TestRemovedDependentIsSkipped(t *testing.T) {
	client := mock.NewMockClient()
	engine := newTestEngine(t, client)
	register(t, engine, "a", "b")
	ctx := context.Background()

	require.NoError(t, engine.WatchComponent(ctx, "b", core.React{And: []core.ComponentID{"a"}}))
	engine.RemoveComponent("b")

	require.NoError(t, engine.UpdateQuery(ctx, UpdateQueryRequest{Component: "a", Query: core.MatchAll()}))
	engine.Wait()
	assert.Zero(t, client.SearchCount())
}

func TestClearValues(t *testing.T) {
	engine := newTestEngine(t, mock.NewMockClient())
	register(t, engine, "a")
	require.NoError(t, engine.UpdateQuery(context.Background(), UpdateQueryRequest{Component: "a", Value: "x"}))

	engine.ClearValues()
	_, ok := engine.Store().Value("a")
	assert.False(t, ok)
}

// A search box and a price range both feed a result list.
func TestScenario_SearchAndPriceRange(t *testing.T) {
	client := mock.NewMockClient()
	engine := newTestEngine(t, client)
	register(t, engine, "search", "price-range", "results")
	ctx := context.Background()

	require.NoError(t, engine.WatchComponent(ctx, "results", core.React{And: []core.ComponentID{"search", "price-range"}}))
	engine.Wait()
	assert.Zero(t, client.SearchCount())

	match := core.Query{"match": map[string]any{"title": "shoe"}}
	require.NoError(t, engine.UpdateQuery(ctx, UpdateQueryRequest{Component: "search", Query: match, Value: "shoe"}))
	engine.Wait()
	require.Len(t, client.SearchesFor("results"), 1)

	priceRange := core.Query{"range": map[string]any{"price": map[string]any{"gte": 10, "lte": 50}}}
	require.NoError(t, engine.UpdateQuery(ctx, UpdateQueryRequest{Component: "price-range", Query: priceRange, Value: []int{10, 50}}))
	engine.Wait()

	reqs := client.SearchesFor("results")
	require.Len(t, reqs, 2)
	expected := core.Body{"query": map[string]any{
		"bool": map[string]any{"must": []any{map[string]any(match), map[string]any(priceRange)}},
	}}
	assert.True(t, reqs[1].Body.Equal(expected), "body: %v", reqs[1].Body)

	// Re-applying the same range does not dispatch again.
	require.NoError(t, engine.UpdateQuery(ctx, UpdateQueryRequest{Component: "price-range", Query: priceRange.Clone(), Value: []int{10, 50}}))
	engine.Wait()
	assert.Len(t, client.SearchesFor("results"), 2)
}
