package limits

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
)

// ConnectionLimiter caps concurrent live connections per client IP.
type ConnectionLimiter struct {
	maxPerIP    int
	connections map[string]int
	blocked     atomic.Int64
	mu          sync.Mutex
}

// NewConnectionLimiter creates a limiter; maxPerIP <= 0 means 20.
func NewConnectionLimiter(maxPerIP int) *ConnectionLimiter {
	if maxPerIP <= 0 {
		maxPerIP = 20
	}
	return &ConnectionLimiter{
		maxPerIP:    maxPerIP,
		connections: make(map[string]int),
	}
}

// Acquire takes a slot for ip, reporting false when the cap is reached.
func (cl *ConnectionLimiter) Acquire(ip string) bool {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	if cl.connections[ip] >= cl.maxPerIP {
		cl.blocked.Add(1)
		return false
	}
	cl.connections[ip]++
	return true
}

// Release gives a slot back.
func (cl *ConnectionLimiter) Release(ip string) {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	if cl.connections[ip] <= 1 {
		delete(cl.connections, ip)
		return
	}
	cl.connections[ip]--
}

// Count returns the current connection count for an IP.
func (cl *ConnectionLimiter) Count(ip string) int {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	return cl.connections[ip]
}

// TotalBlocked returns how many acquisitions were refused.
func (cl *ConnectionLimiter) TotalBlocked() int64 {
	return cl.blocked.Load()
}

// GetClientIP extracts the client IP from an HTTP request.
// Checks X-Forwarded-For and X-Real-IP headers, falling back to RemoteAddr.
func GetClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ip, _, _ := strings.Cut(xff, ",")
		if ip = strings.TrimSpace(ip); ip != "" {
			return ip
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
