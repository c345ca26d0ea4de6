package elastic

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/poiesic/searchflow/core"
	"github.com/poiesic/searchflow/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const searchResponseJSON = `{
	"took": 7,
	"hits": {
		"total": {"value": 2, "relation": "eq"},
		"hits": [
			{"_id": "p1", "_index": "products", "_score": 1.5, "_source": {"title": "trail shoe"}},
			{"_id": "p2", "_index": "products", "_score": 0.5, "_source": {"title": "road shoe"}}
		]
	},
	"aggregations": {"brand": {"buckets": [{"key": "acme", "doc_count": 2}]}}
}`

func TestNewClient(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		opts    []Option
		wantErr error
	}{
		{"valid", "http://localhost:9200", nil, nil},
		{"with options", "https://search.example.com", []Option{WithLogger(nil), WithTimeout(time.Second), WithRetry(5, time.Millisecond), WithStreamPath("/live/")}, nil},
		{"empty url", "", nil, ErrURLRequired},
		{"bad scheme", "ftp://host", nil, ErrURLRequired},
		{"bad retry", "http://localhost:9200", []Option{WithRetry(0, time.Second)}, ErrInvalidMaxAttempts},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(tt.url, "products", tt.opts...)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, client)
		})
	}
}

func TestSearch(t *testing.T) {
	var (
		gotPath       string
		gotPreference string
		gotHeader     string
		gotBody       map[string]any
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotPreference = r.URL.Query().Get("preference")
		gotHeader = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(searchResponseJSON))
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "products")
	require.NoError(t, err)
	defer client.Close()

	client.SetHeaders(map[string]string{"Authorization": "Basic dXNlcjpwYXNz"})

	before := time.Now()
	resp, err := client.Search(context.Background(), &transport.Request{
		Component:  "results",
		Preference: "results",
		Body:       core.Body{"query": core.MatchAll(), "size": 2},
	})
	require.NoError(t, err)

	assert.Equal(t, "/products/_search", gotPath)
	assert.Equal(t, "results", gotPreference)
	assert.Equal(t, "Basic dXNlcjpwYXNz", gotHeader)
	assert.Equal(t, map[string]any{"match_all": map[string]any{}}, gotBody["query"])

	require.Len(t, resp.Hits, 2)
	assert.Equal(t, "p1", resp.Hits[0].ID)
	assert.Equal(t, 1.5, resp.Hits[0].Score)
	assert.Equal(t, "trail shoe", resp.Hits[0].Source["title"])
	assert.Equal(t, int64(2), resp.Total)
	assert.Equal(t, 7*time.Millisecond, resp.Took)
	assert.True(t, resp.HasAggregations())
	assert.False(t, resp.Timestamp.Before(before))
}

func TestSearch_TypeOverridesIndex(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{"hits": {"total": 0, "hits": []}}`))
	}))
	defer server.Close()

	client, err := NewClient(server.URL+"/es/", "")
	require.NoError(t, err)

	resp, err := client.Search(context.Background(), &transport.Request{
		Component: "results",
		Type:      "places",
		Body:      core.Body{"size": 0},
	})
	require.NoError(t, err)
	assert.Equal(t, "/es/places/_search", gotPath)
	assert.Zero(t, resp.Total)
	assert.Nil(t, resp.Aggregations)

	_, err = client.Search(context.Background(), &transport.Request{Component: "results", Body: core.Body{"size": 0}})
	assert.ErrorIs(t, err, ErrIndexRequired)
}

func TestSearch_RetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(searchResponseJSON))
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "products", WithRetry(3, time.Millisecond))
	require.NoError(t, err)

	resp, err := client.Search(context.Background(), &transport.Request{Component: "results", Body: core.Body{"size": 2}})
	require.NoError(t, err)
	assert.Len(t, resp.Hits, 2)
	assert.Equal(t, int32(3), calls.Load())
}

func TestSearch_APIErrors(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		wantCalls int32
		wantMsg   string
	}{
		{
			name:      "bad request is not retried",
			status:    http.StatusBadRequest,
			body:      `{"error": {"type": "parsing_exception", "reason": "unknown query [fuzzy]"}}`,
			wantCalls: 1,
			wantMsg:   "parsing_exception: unknown query [fuzzy]",
		},
		{
			name:      "server error exhausts retries",
			status:    http.StatusInternalServerError,
			body:      "boom",
			wantCalls: 2,
			wantMsg:   "boom",
		},
		{
			name:      "empty body uses status text",
			status:    http.StatusForbidden,
			wantCalls: 1,
			wantMsg:   "Forbidden",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client, err := NewClient(server.URL, "products", WithRetry(2, time.Millisecond))
			require.NoError(t, err)

			_, err = client.Search(context.Background(), &transport.Request{Component: "results", Body: core.Body{"size": 1}})
			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr), "error: %v", err)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.wantMsg, apiErr.Message)
			assert.Equal(t, tt.wantCalls, calls.Load())
		})
	}
}

func TestSearch_DecodeFailureNotRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"hits":`))
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "products", WithRetry(3, time.Millisecond))
	require.NoError(t, err)

	_, err = client.Search(context.Background(), &transport.Request{Component: "results", Body: core.Body{"size": 1}})
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestSearch_Closed(t *testing.T) {
	client, err := NewClient("http://localhost:9200", "products")
	require.NoError(t, err)
	require.NoError(t, client.Close())
	require.NoError(t, client.Close())

	_, err = client.Search(context.Background(), &transport.Request{Component: "results", Body: core.Body{"size": 1}})
	assert.ErrorIs(t, err, transport.ErrClosed)
}

func TestRetryWithBackoff(t *testing.T) {
	logger := testLogger()

	t.Run("invalid attempts", func(t *testing.T) {
		err := retryWithBackoff(context.Background(), logger, func() error { return nil }, 0, time.Millisecond)
		assert.ErrorIs(t, err, ErrInvalidMaxAttempts)
	})

	t.Run("canceled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := retryWithBackoff(ctx, logger, func() error { return errors.New("x") }, 3, time.Millisecond)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("permanent error stops", func(t *testing.T) {
		var calls int
		err := retryWithBackoff(context.Background(), logger, func() error {
			calls++
			return &permanentError{errors.New("bad")}
		}, 3, time.Millisecond)
		assert.Error(t, err)
		assert.Equal(t, 1, calls)
	})
}

func TestSearchStream(t *testing.T) {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(_ *http.Request) bool { return true },
	}
	subscribed := make(chan clientFrame, 1)
	var gotPath, gotPreference string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotPreference = r.URL.Query().Get("preference")
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Logf("Upgrade error: %v", err)
			return
		}
		defer conn.Close()

		var frame clientFrame
		if err := conn.ReadJSON(&frame); err != nil {
			return
		}
		subscribed <- frame

		_ = conn.WriteJSON(map[string]any{"id": "someone-else", "hit": map[string]any{"_id": "ignored"}})
		_ = conn.WriteJSON(map[string]any{"id": frame.ID, "hit": map[string]any{"_id": "p9", "_index": "products", "_source": map[string]any{"title": "new shoe"}}})
		_ = conn.WriteJSON(map[string]any{"id": frame.ID, "timestamp": 1700000000000, "response": json.RawMessage(searchResponseJSON)})

		// Wait for unsubscribe
		for {
			if err := conn.ReadJSON(&frame); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "products")
	require.NoError(t, err)
	defer client.Close()

	s, err := client.SearchStream(context.Background(), &transport.Request{
		Component:  "feed",
		Preference: "feed",
		Body:       core.Body{"size": 10},
	})
	require.NoError(t, err)

	select {
	case frame := <-subscribed:
		assert.Equal(t, frameSubscribe, frame.Type)
		assert.NotEmpty(t, frame.ID)
		assert.Equal(t, "feed", frame.Preference)
		assert.True(t, frame.Body.Query().Equal(core.MatchAll()))
	case <-time.After(2 * time.Second):
		t.Fatal("Timeout waiting for subscribe frame")
	}
	assert.Equal(t, "/products/_stream", gotPath)
	assert.Equal(t, "feed", gotPreference)

	ev := receive(t, s)
	require.NotNil(t, ev.Hit)
	assert.Equal(t, "p9", ev.Hit.ID)

	ev = receive(t, s)
	require.NotNil(t, ev.Response)
	assert.Len(t, ev.Response.Hits, 2)
	assert.Equal(t, time.UnixMilli(1700000000000), ev.Response.Timestamp)

	s.Stop()
	s.Stop()
	_, ok := <-s.Events()
	assert.False(t, ok)
}

func TestSearchStream_ServerError(t *testing.T) {
	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		var frame clientFrame
		if err := conn.ReadJSON(&frame); err != nil {
			return
		}
		_ = conn.WriteJSON(map[string]any{"id": frame.ID, "error": "index_not_found"})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "products")
	require.NoError(t, err)

	s, err := client.SearchStream(context.Background(), &transport.Request{Component: "feed", Body: core.Body{"size": 1}})
	require.NoError(t, err)

	ev := receive(t, s)
	assert.ErrorIs(t, ev.Err, ErrStreamRejected)
	assert.True(t, strings.Contains(ev.Err.Error(), "index_not_found"))

	require.NoError(t, client.Close())
	_, ok := <-s.Events()
	assert.False(t, ok)
}

func TestSearchStream_HandshakeRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte("missing credentials"))
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "products")
	require.NoError(t, err)

	_, err = client.SearchStream(context.Background(), &transport.Request{Component: "feed", Body: core.Body{"size": 1}})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr), "error: %v", err)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
}

func receive(t *testing.T, s transport.Stream) transport.StreamEvent {
	t.Helper()
	select {
	case ev, ok := <-s.Events():
		require.True(t, ok, "stream closed")
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("Timeout waiting for stream event")
	}
	return transport.StreamEvent{}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
