package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linkmeta/metasite/pkg/core"
)

func ok(context.Context) error { return nil }

func TestCheckStatus(t *testing.T) {
	tests := []struct {
		name     string
		critical func(context.Context) error
		optional func(context.Context) error
		want     Status
	}{
		{"all pass", ok, ok, StatusHealthy},
		{"optional fails", ok, func(context.Context) error { return errors.New("stale numbers") }, StatusDegraded},
		{"critical fails", func(context.Context) error { return errors.New("down") }, ok, StatusUnhealthy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hc := NewChecker()
			hc.SetVersion("v1.2.3")
			hc.AddCriticalCheck("sockets", tt.critical, time.Second)
			hc.AddCheck("healthcheck", tt.optional, time.Second)

			status := hc.Check(context.Background())
			assert.Equal(t, tt.want, status.Status)
			assert.Equal(t, "v1.2.3", status.Version)
			assert.Len(t, status.Checks, 2)
		})
	}
}

func TestCheckTimeout(t *testing.T) {
	hc := NewChecker()
	hc.AddCheck("slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}, 20*time.Millisecond)

	status := hc.Check(context.Background())
	assert.Equal(t, StatusUnhealthy, status.Checks["slow"].Status)
	assert.Contains(t, status.Checks["slow"].Error, "deadline")
}

func TestReadinessHandler(t *testing.T) {
	healthy := NewChecker()
	healthy.AddCriticalCheck("sockets", ok, time.Second)

	rec := httptest.NewRecorder()
	healthy.ReadinessHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	// a failing optional check is reported but keeps the site ready
	degraded := NewChecker()
	degraded.AddCheck("healthcheck", func(context.Context) error { return errors.New("no poll yet") }, time.Second)

	rec = httptest.NewRecorder()
	degraded.ReadinessHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	down := NewChecker()
	down.AddCriticalCheck("sockets", func(context.Context) error { return errors.New("full") }, time.Second)

	rec = httptest.NewRecorder()
	down.ReadinessHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHealthHandler(t *testing.T) {
	hc := NewChecker()
	hc.AddCheck("metadata", BreakerCheck(func() core.CircuitState { return core.CircuitOpen }), time.Second)

	rec := httptest.NewRecorder()
	hc.HealthHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

	var status HealthStatus
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&status))
	assert.Equal(t, StatusDegraded, status.Status)
	assert.Equal(t, "circuit open", status.Checks["metadata"].Error)
	assert.Equal(t, map[string]any{"state": "open"}, status.Checks["metadata"].Details)
}

func TestLivenessHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	NewChecker().LivenessHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"alive"`)
}

func TestBreakerCheck(t *testing.T) {
	state := core.CircuitClosed
	check := BreakerCheck(func() core.CircuitState { return state })

	assert.NoError(t, check(context.Background()))
	state = core.CircuitHalfOpen
	assert.NoError(t, check(context.Background()))
	state = core.CircuitOpen

	var he *HealthError
	require.ErrorAs(t, check(context.Background()), &he)
	assert.Equal(t, "open", he.Details["state"])
}

func TestSocketCapacityCheck(t *testing.T) {
	n := 9
	check := SocketCapacityCheck(func() int { return n }, 10)
	assert.NoError(t, check(context.Background()))

	n = 10
	var he *HealthError
	require.ErrorAs(t, check(context.Background()), &he)
	assert.Equal(t, 10, he.Details["current"])

	assert.NoError(t, SocketCapacityCheck(func() int { return 1 << 20 }, 0)(context.Background()))
}

func TestMemoryCheck(t *testing.T) {
	assert.NoError(t, MemoryCheck(1<<40)(context.Background()))
	assert.Error(t, MemoryCheck(1)(context.Background()))
}
