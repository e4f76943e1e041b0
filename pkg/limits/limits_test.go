package limits

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestTokenBucket_BurstThenRefill(t *testing.T) {
	now := time.Unix(1000, 0)
	tb := NewTokenBucket(1, 3)
	defer tb.Stop()
	tb.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		if !tb.Allow("1.2.3.4") {
			t.Fatalf("request %d should be allowed", i)
		}
	}
	if tb.Allow("1.2.3.4") {
		t.Fatal("fourth request should be limited")
	}
	if !tb.Allow("5.6.7.8") {
		t.Error("other keys have their own bucket")
	}

	now = now.Add(1500 * time.Millisecond)
	if !tb.Allow("1.2.3.4") {
		t.Error("expected a refilled token")
	}
	if tb.Allow("1.2.3.4") {
		t.Error("only one token should have been refilled")
	}
}

func TestTokenBucket_Sweep(t *testing.T) {
	now := time.Unix(1000, 0)
	tb := NewTokenBucket(1, 1)
	defer tb.Stop()
	tb.now = func() time.Time { return now }

	tb.Allow("idle")
	now = now.Add(2 * time.Hour)
	tb.sweep(time.Hour)

	if _, ok := tb.buckets.Load("idle"); ok {
		t.Error("idle bucket should be removed")
	}
}

func TestTokenBucket_WaitHonoursContext(t *testing.T) {
	tb := NewTokenBucket(0, 0)
	defer tb.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := tb.Wait(ctx, "k"); err != context.DeadlineExceeded {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	tb := NewTokenBucket(0, 1)
	defer tb.Stop()

	h := RateLimitMiddleware(tb, GetClientIP)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	for i, want := range []int{http.StatusNoContent, http.StatusTooManyRequests} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/meta", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		h.ServeHTTP(rec, req)
		if rec.Code != want {
			t.Errorf("request %d: expected %d, got %d", i, want, rec.Code)
		}
	}
}

func TestConnectionLimiter(t *testing.T) {
	cl := NewConnectionLimiter(2)

	if !cl.Acquire("a") || !cl.Acquire("a") {
		t.Fatal("first two connections should be allowed")
	}
	if cl.Acquire("a") {
		t.Fatal("third connection should be refused")
	}
	if cl.TotalBlocked() != 1 {
		t.Errorf("expected 1 blocked, got %d", cl.TotalBlocked())
	}

	cl.Release("a")
	if cl.Count("a") != 1 {
		t.Errorf("expected count 1, got %d", cl.Count("a"))
	}
	if !cl.Acquire("a") {
		t.Error("released slot should be reusable")
	}
}

func TestGetClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.10:1234"
	if got := GetClientIP(req); got != "192.0.2.10" {
		t.Errorf("expected remote addr host, got %q", got)
	}

	req.Header.Set("X-Real-IP", "198.51.100.2")
	if got := GetClientIP(req); got != "198.51.100.2" {
		t.Errorf("expected X-Real-IP, got %q", got)
	}

	req.Header.Set("X-Forwarded-For", "203.0.113.5, 10.0.0.1")
	if got := GetClientIP(req); got != "203.0.113.5" {
		t.Errorf("expected first forwarded IP, got %q", got)
	}
}
