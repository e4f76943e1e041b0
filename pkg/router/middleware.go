package router

import (
	"bufio"
	"compress/gzip"
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"

	"github.com/linkmeta/metasite/pkg/limits"
	"github.com/linkmeta/metasite/pkg/logging"
)

// Common errors.
var (
	ErrNilRenderer = errors.New("component returned nil renderer")
)

// Recovery turns panics into 500 responses and logs the stack.
func Recovery() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					logging.L(r.Context()).Error("panic serving request",
						logging.Any("panic", rec),
						logging.String("stack", string(debug.Stack())),
					)
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// Compress gzips responses for clients that accept it. Websocket upgrades
// pass through untouched.
func Compress() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isWebSocketRequest(r) || !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
				next.ServeHTTP(w, r)
				return
			}

			gz := gzip.NewWriter(w)
			defer gz.Close()

			w.Header().Set("Content-Encoding", "gzip")
			w.Header().Add("Vary", "Accept-Encoding")
			w.Header().Del("Content-Length")

			next.ServeHTTP(&gzipResponseWriter{ResponseWriter: w, Writer: gz}, r)
		})
	}
}

type gzipResponseWriter struct {
	http.ResponseWriter
	io.Writer
}

func (gzw *gzipResponseWriter) Write(b []byte) (int, error) {
	return gzw.Writer.Write(b)
}

func (gzw *gzipResponseWriter) WriteHeader(status int) {
	gzw.ResponseWriter.Header().Del("Content-Length")
	gzw.ResponseWriter.WriteHeader(status)
}

func (gzw *gzipResponseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := gzw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("compress: hijack not supported")
	}
	return hj.Hijack()
}

func (gzw *gzipResponseWriter) Unwrap() http.ResponseWriter {
	return gzw.ResponseWriter
}

// SecureHeadersConfig configures security headers.
type SecureHeadersConfig struct {
	// FrameOptions controls X-Frame-Options. Default: "DENY".
	FrameOptions string

	// ContentTypeNosniff enables X-Content-Type-Options: nosniff.
	ContentTypeNosniff bool

	// ReferrerPolicy sets the Referrer-Policy header.
	ReferrerPolicy string

	// PermissionsPolicy sets the Permissions-Policy header.
	PermissionsPolicy string

	// HSTSEnabled enables Strict-Transport-Security on HTTPS requests.
	HSTSEnabled bool

	// HSTSMaxAge is the max-age for HSTS in seconds.
	HSTSMaxAge int

	// ContentSecurityPolicy overrides the generated policy when set.
	ContentSecurityPolicy string

	// CSPNonceEnabled adds a per-request script nonce to the policy.
	CSPNonceEnabled bool
}

// DefaultSecureHeadersConfig returns the configuration used by the site.
func DefaultSecureHeadersConfig() SecureHeadersConfig {
	return SecureHeadersConfig{
		FrameOptions:       "DENY",
		ContentTypeNosniff: true,
		ReferrerPolicy:     "strict-origin-when-cross-origin",
		PermissionsPolicy:  "geolocation=(), microphone=(), camera=()",
		HSTSEnabled:        true,
		HSTSMaxAge:         31536000,
		CSPNonceEnabled:    true,
	}
}

type cspNonceKey struct{}

// GetCSPNonce retrieves the CSP nonce from context.
func GetCSPNonce(ctx context.Context) string {
	if nonce, ok := ctx.Value(cspNonceKey{}).(string); ok {
		return nonce
	}
	return ""
}

func generateNonce() string {
	b := make([]byte, 16)
	rand.Read(b)
	return base64.StdEncoding.EncodeToString(b)
}

// contentSecurityPolicy allows previews of third party media: embeds are
// rendered in iframes and images or videos come from any https origin.
func contentSecurityPolicy(nonce string) string {
	return "default-src 'self'; " +
		"script-src 'self' 'nonce-" + nonce + "'; " +
		"style-src 'self' 'unsafe-inline'; " +
		"img-src 'self' data: https:; " +
		"media-src 'self' https:; " +
		"frame-src https:; " +
		"connect-src 'self' ws: wss:; " +
		"font-src 'self'; " +
		"frame-ancestors 'none'; " +
		"base-uri 'self'; " +
		"form-action 'self'"
}

// SecureHeaders adds the default security headers.
func SecureHeaders() Middleware {
	return SecureHeadersWithConfig(DefaultSecureHeadersConfig())
}

// SecureHeadersWithConfig creates middleware with custom config.
func SecureHeadersWithConfig(config SecureHeadersConfig) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			if config.FrameOptions != "" {
				h.Set("X-Frame-Options", config.FrameOptions)
			}
			if config.ContentTypeNosniff {
				h.Set("X-Content-Type-Options", "nosniff")
			}
			if config.ReferrerPolicy != "" {
				h.Set("Referrer-Policy", config.ReferrerPolicy)
			}
			if config.PermissionsPolicy != "" {
				h.Set("Permissions-Policy", config.PermissionsPolicy)
			}
			if config.HSTSEnabled && (r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https") {
				h.Set("Strict-Transport-Security", "max-age="+strconv.Itoa(config.HSTSMaxAge)+"; includeSubDomains")
			}

			ctx := r.Context()
			switch {
			case config.ContentSecurityPolicy != "":
				h.Set("Content-Security-Policy", config.ContentSecurityPolicy)
			case config.CSPNonceEnabled:
				nonce := generateNonce()
				ctx = context.WithValue(ctx, cspNonceKey{}, nonce)
				h.Set("Content-Security-Policy", contentSecurityPolicy(nonce))
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RateLimit rejects clients that exceed limiter, keyed by client IP.
// Websocket frames are not counted, only the upgrade request.
func RateLimit(limiter limits.RateLimiter) Middleware {
	return limits.RateLimitMiddleware(limiter, limits.GetClientIP)
}

// CacheControl sets a public max-age on responses, for static assets.
func CacheControl(maxAgeSeconds int) Middleware {
	value := "public, max-age=" + strconv.Itoa(maxAgeSeconds)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", value)
			next.ServeHTTP(w, r)
		})
	}
}

// Chain applies middleware so that the first one is the outermost.
func Chain(h http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}
