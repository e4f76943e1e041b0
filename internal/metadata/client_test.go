package metadata

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linkmeta/metasite/pkg/core"
	"github.com/linkmeta/metasite/pkg/logging"
	"github.com/linkmeta/metasite/pkg/retry"
)

const successBody = `{"status":"success","data":{"title":"Example","lang":"en","author":null,"image":{"url":"https://example.com/a.png","width":100}}}`

func newTestClient(t *testing.T, endpoint string) *Client {
	t.Helper()
	c := NewClient(Config{
		Endpoint: endpoint,
		APIKey:   "secret",
		Timeout:  time.Second,
		CacheTTL: time.Minute,
		Retry: &retry.Config{
			MaxRetries:   2,
			InitialDelay: time.Millisecond,
			MaxDelay:     time.Millisecond,
			Multiplier:   1,
			RetryIf:      retry.RetryUnlessPermanent(),
		},
		Breaker: &core.CircuitBreakerConfig{MaxErrors: 2, ResetTimeout: time.Hour, SuccessThreshold: 1},
		Logger:  logging.NopLogger{},
	})
	t.Cleanup(func() { c.Close() })
	return c
}

func TestFetch_SuccessAndCache(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "https://example.com", r.URL.Query().Get("url"))
		assert.Equal(t, "true", r.URL.Query().Get("palette"))
		assert.Equal(t, "true", r.URL.Query().Get("iframe"))
		assert.Equal(t, "secret", r.Header.Get("x-api-key"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(successBody))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)

	resp, err := c.Fetch(context.Background(), "https://example.com", DemoOptions)
	require.NoError(t, err)
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, "Example", resp.Data.String("title"))
	assert.True(t, resp.Data.Has("lang"))
	assert.False(t, resp.Data.Has("author"))
	assert.Equal(t, "https://example.com/a.png", resp.Data.URLOf("image"))

	resp.Data["title"] = "mutated"

	again, err := c.Fetch(context.Background(), "https://example.com", DemoOptions)
	require.NoError(t, err)
	assert.Equal(t, "Example", again.Data.String("title"), "cached copy must not be shared")
	assert.Equal(t, int32(1), hits.Load())
}

func TestFetch_InvalidURL(t *testing.T) {
	c := newTestClient(t, "http://127.0.0.1:1")

	_, err := c.Fetch(context.Background(), "not a url", DemoOptions)
	assert.ErrorIs(t, err, ErrInvalidURL)
}

func TestFetch_ClientErrorIsNotRetried(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"status":"fail","message":"The URL is not reachable"}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	for range 3 {
		_, err := c.Fetch(context.Background(), "https://example.com", DemoOptions)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrUpstream)

		var serr *StatusError
		require.ErrorAs(t, err, &serr)
		assert.Equal(t, http.StatusBadRequest, serr.Code)
		assert.Equal(t, "The URL is not reachable", serr.Message)
	}
	assert.Equal(t, int32(3), hits.Load())
	assert.Equal(t, core.CircuitClosed, c.BreakerState(), "4xx must not open the breaker")
}

func TestFetch_ServerErrorIsRetried(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(successBody))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	resp, err := c.Fetch(context.Background(), "https://example.com", DemoOptions)
	require.NoError(t, err)
	assert.Equal(t, "Example", resp.Data.String("title"))
	assert.Equal(t, int32(3), hits.Load())
}

func TestFetch_BreakerOpens(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	for range 2 {
		_, err := c.Fetch(context.Background(), "https://example.com", DemoOptions)
		assert.ErrorIs(t, err, retry.ErrMaxRetriesExceeded)
	}
	require.Equal(t, core.CircuitOpen, c.BreakerState())

	before := hits.Load()
	_, err := c.Fetch(context.Background(), "https://example.com", DemoOptions)
	assert.ErrorIs(t, err, core.ErrCircuitOpen)
	assert.Equal(t, before, hits.Load())
}

func TestFetch_FailStatusInBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"fail","message":"nope"}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	_, err := c.Fetch(context.Background(), "https://example.com", DemoOptions)
	assert.ErrorIs(t, err, ErrUpstream)
	assert.True(t, retry.IsPermanentError(err))
}

func TestFetch_DeduplicatesConcurrentRequests(t *testing.T) {
	var hits atomic.Int32
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		<-release
		w.Write([]byte(successBody))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Fetch(context.Background(), "https://example.com", DemoOptions)
			errs <- err
		}()
	}

	// Let the goroutines pile up on the in-flight call.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, int32(1), hits.Load())
}

func TestFetch_ContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Fetch(ctx, "https://example.com", DemoOptions)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, core.CircuitClosed, c.BreakerState())
}
