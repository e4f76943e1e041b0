package metrics

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounterVecConcurrent(t *testing.T) {
	cv := NewCounterVec("events_total", "Events.", "event")

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cv.Inc("click")
		}()
	}
	wg.Wait()
	cv.Inc("submit")

	assert.Equal(t, map[string]float64{"click": 50, "submit": 1}, cv.Values())
}

func TestHistogram(t *testing.T) {
	h := NewHistogram("d", "D.")
	h.Observe(3)
	h.Observe(1)
	h.ObserveDuration(2 * time.Second)

	s := h.Stats()
	assert.Equal(t, int64(3), s.Count)
	assert.Equal(t, 6.0, s.Sum)
	assert.Equal(t, 1.0, s.Min)
	assert.Equal(t, 3.0, s.Max)
	assert.Equal(t, 2.0, s.Avg)
}

func TestGauge(t *testing.T) {
	g := NewGauge("g", "G.")
	g.Inc()
	g.Inc()
	g.Dec()
	assert.Equal(t, 1.0, g.Value())
	g.Set(7)
	assert.Equal(t, 7.0, g.Value())
}

func TestHandler(t *testing.T) {
	m := New("test")
	m.LiveConnections.Inc()
	m.LiveEvents.Inc("url:change")
	m.Fetches.Inc(OutcomeRateLimited)
	m.FetchDuration.Observe(0.5)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "# TYPE test_live_connections gauge\ntest_live_connections 1\n")
	assert.Contains(t, body, `test_live_events_total{event="url:change"} 1`)
	assert.Contains(t, body, `test_demo_fetches_total{outcome="rate_limited"} 1`)
	assert.Contains(t, body, "test_demo_fetch_duration_seconds_sum 0.5\ntest_demo_fetch_duration_seconds_count 1\n")
	assert.NotContains(t, body, "metasite_")
}

func TestRecordHelpers(t *testing.T) {
	before := Default.Fetches.WithLabel(OutcomeOK).Value()
	RecordFetch(OutcomeOK, time.Millisecond)
	assert.Equal(t, before+1, Default.Fetches.WithLabel(OutcomeOK).Value())

	open := Default.LiveConnections.Value()
	ConnectionOpened()
	assert.Equal(t, open+1, Default.LiveConnections.Value())
	ConnectionClosed()
	assert.Equal(t, open, Default.LiveConnections.Value())
}
