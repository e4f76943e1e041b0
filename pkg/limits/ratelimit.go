// Package limits provides per-key rate limiting and connection caps.
package limits

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"
)

// ErrRateLimitExceeded is returned when a key has no tokens left.
var ErrRateLimitExceeded = errors.New("rate limit exceeded")

// RateLimiter limits the rate of operations per key.
type RateLimiter interface {
	Allow(key string) bool
	Wait(ctx context.Context, key string) error
}

// TokenBucket keeps one bucket per key. Each bucket holds up to burst
// tokens and refills at rate tokens per second.
type TokenBucket struct {
	rate    float64
	burst   int
	buckets sync.Map
	now     func() time.Time
	stop    chan struct{}
	once    sync.Once
}

type bucket struct {
	tokens   float64
	lastFill time.Time
	mu       sync.Mutex
}

// NewTokenBucket creates a limiter and starts the idle bucket sweeper.
// Call Stop to end it.
func NewTokenBucket(rate float64, burst int) *TokenBucket {
	tb := &TokenBucket{
		rate:  rate,
		burst: burst,
		now:   time.Now,
		stop:  make(chan struct{}),
	}
	go tb.cleanupLoop(time.Minute)
	return tb
}

// Allow takes one token for key.
func (tb *TokenBucket) Allow(key string) bool {
	return tb.AllowN(key, 1)
}

// AllowN takes n tokens for key if available.
func (tb *TokenBucket) AllowN(key string, n int) bool {
	b := tb.getBucket(key)

	b.mu.Lock()
	defer b.mu.Unlock()

	now := tb.now()
	b.tokens += now.Sub(b.lastFill).Seconds() * tb.rate
	if b.tokens > float64(tb.burst) {
		b.tokens = float64(tb.burst)
	}
	b.lastFill = now

	if b.tokens >= float64(n) {
		b.tokens -= float64(n)
		return true
	}
	return false
}

// Wait blocks until a token is available or ctx is done.
func (tb *TokenBucket) Wait(ctx context.Context, key string) error {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		if tb.Allow(key) {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Stop ends the sweeper goroutine.
func (tb *TokenBucket) Stop() {
	tb.once.Do(func() { close(tb.stop) })
}

func (tb *TokenBucket) getBucket(key string) *bucket {
	if b, ok := tb.buckets.Load(key); ok {
		return b.(*bucket)
	}
	actual, _ := tb.buckets.LoadOrStore(key, &bucket{
		tokens:   float64(tb.burst),
		lastFill: tb.now(),
	})
	return actual.(*bucket)
}

func (tb *TokenBucket) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-tb.stop:
			return
		case <-ticker.C:
			tb.sweep(time.Hour)
		}
	}
}

// sweep forgets buckets idle for longer than maxIdle.
func (tb *TokenBucket) sweep(maxIdle time.Duration) {
	now := tb.now()
	tb.buckets.Range(func(key, value any) bool {
		b := value.(*bucket)
		b.mu.Lock()
		if now.Sub(b.lastFill) > maxIdle {
			tb.buckets.Delete(key)
		}
		b.mu.Unlock()
		return true
	})
}

// RateLimitMiddleware rejects requests with 429 once their key runs dry.
func RateLimitMiddleware(limiter RateLimiter, keyFunc func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow(keyFunc(r)) {
				w.Header().Set("Retry-After", "1")
				http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
