package transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/strategyone/sdk/cache"
)

// testServer is a minimal Intelligence Server REST facade: login, status,
// logout, and one object endpoint whose hits are counted.
type testServer struct {
	*httptest.Server
	objectHits atomic.Int64
	lastAuth   atomic.Value // string
	lastProj   atomic.Value // string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ts := &testServer{}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-MSTR-AuthToken", "tok-123")
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("POST /auth/logout", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("GET /status", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"iServerVersion":"11.3.0760"}`))
	})
	mux.HandleFunc("/objects/ABC123", func(w http.ResponseWriter, r *http.Request) {
		ts.lastAuth.Store(r.Header.Get("X-MSTR-AuthToken"))
		ts.lastProj.Store(r.Header.Get("X-MSTR-ProjectID"))
		if r.Method == http.MethodGet {
			ts.objectHits.Add(1)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"ABC123","name":"Foo"}`))
	})
	mux.HandleFunc("GET /missing", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"code":"ERR004","message":"Object not found."}`))
	})

	ts.Server = httptest.NewServer(mux)
	t.Cleanup(ts.Server.Close)
	return ts
}

func openTestConnection(t *testing.T, ts *testServer, opts ...Option) *HTTPConnection {
	t.Helper()
	conn, err := Open(context.Background(), Config{
		BaseURL:   ts.URL,
		Username:  "admin",
		Password:  "secret",
		ProjectID: "PROJ1",
	}, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestOpen(t *testing.T) {
	t.Run("login reads the session token and server version", func(t *testing.T) {
		ts := newTestServer(t)
		conn := openTestConnection(t, ts)

		assert.Equal(t, "11.3.0760", conn.ServerVersion().String())
		assert.Equal(t, "PROJ1", conn.ProjectID())
	})

	t.Run("session headers ride on every request", func(t *testing.T) {
		ts := newTestServer(t)
		conn := openTestConnection(t, ts)

		resp, err := conn.Get(context.Background(), "/objects/ABC123")
		require.NoError(t, err)
		require.NoError(t, resp.Err())

		assert.Equal(t, "tok-123", ts.lastAuth.Load())
		assert.Equal(t, "PROJ1", ts.lastProj.Load())
	})

	t.Run("per-request project override", func(t *testing.T) {
		ts := newTestServer(t)
		conn := openTestConnection(t, ts)

		_, err := conn.Get(context.Background(), "/objects/ABC123", WithProject("PROJ2"))
		require.NoError(t, err)
		assert.Equal(t, "PROJ2", ts.lastProj.Load())
	})

	t.Run("login reply without a token fails", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}))
		defer srv.Close()

		_, err := Open(context.Background(), Config{BaseURL: srv.URL, Username: "x", Password: "x"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no session token")
	})

	t.Run("empty base URL fails", func(t *testing.T) {
		_, err := Open(context.Background(), Config{})
		require.Error(t, err)
	})
}

func TestResponseCache(t *testing.T) {
	t.Run("repeated reads are served from the cache", func(t *testing.T) {
		ts := newTestServer(t)
		conn := openTestConnection(t, ts, WithResponseCache(cache.NewMemoryStore(), time.Minute))

		for i := 0; i < 3; i++ {
			resp, err := conn.Get(context.Background(), "/objects/ABC123")
			require.NoError(t, err)
			m, err := resp.JSONMap()
			require.NoError(t, err)
			assert.Equal(t, "Foo", m["name"])
		}
		assert.Equal(t, int64(1), ts.objectHits.Load())
	})

	t.Run("a write to the path drops the cached read", func(t *testing.T) {
		ts := newTestServer(t)
		conn := openTestConnection(t, ts, WithResponseCache(cache.NewMemoryStore(), time.Minute))

		_, err := conn.Get(context.Background(), "/objects/ABC123")
		require.NoError(t, err)
		_, err = conn.Patch(context.Background(), "/objects/ABC123", map[string]any{"name": "Bar"})
		require.NoError(t, err)
		_, err = conn.Get(context.Background(), "/objects/ABC123")
		require.NoError(t, err)

		assert.Equal(t, int64(2), ts.objectHits.Load())
	})

	t.Run("no-cache requests always reach the server", func(t *testing.T) {
		ts := newTestServer(t)
		conn := openTestConnection(t, ts, WithResponseCache(cache.NewMemoryStore(), time.Minute))

		_, err := conn.Get(context.Background(), "/objects/ABC123", WithNoCache())
		require.NoError(t, err)
		_, err = conn.Get(context.Background(), "/objects/ABC123", WithNoCache())
		require.NoError(t, err)

		assert.Equal(t, int64(2), ts.objectHits.Load())
	})

	t.Run("queries key the cache separately", func(t *testing.T) {
		ts := newTestServer(t)
		conn := openTestConnection(t, ts, WithResponseCache(cache.NewMemoryStore(), time.Minute))

		_, err := conn.Get(context.Background(), "/objects/ABC123")
		require.NoError(t, err)
		_, err = conn.Get(context.Background(), "/objects/ABC123", WithQuery("fields", "name"))
		require.NoError(t, err)

		assert.Equal(t, int64(2), ts.objectHits.Load())
	})
}

func TestTracing(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { provider.Shutdown(context.Background()) })

	ts := newTestServer(t)
	conn := openTestConnection(t, ts, WithTracer(provider.Tracer("test")))

	_, err := conn.Get(context.Background(), "/objects/ABC123")
	require.NoError(t, err)

	spans := recorder.Ended()
	require.NotEmpty(t, spans)

	var names []string
	for _, s := range spans {
		names = append(names, s.Name())
	}
	assert.Contains(t, names, "mstr.rest GET")
	assert.Contains(t, names, "mstr.rest POST")
}
