// Package router serves live views: a full HTML render over HTTP, then a
// websocket on the same path that carries events up and diffs down.
package router

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/linkmeta/metasite/pkg/core"
	"github.com/linkmeta/metasite/pkg/limits"
	"github.com/linkmeta/metasite/pkg/logging"
	"github.com/linkmeta/metasite/pkg/metrics"
	"github.com/linkmeta/metasite/pkg/pool"
	"github.com/linkmeta/metasite/pkg/protocol"
	"github.com/linkmeta/metasite/pkg/transport"
)

// Common router errors.
var (
	ErrTooManyConnections = errors.New("too many connections")
	ErrShuttingDown       = errors.New("server is shutting down")
	ErrNotJoined          = errors.New("view has not joined")
)

const tracerName = "github.com/linkmeta/metasite/pkg/router"

// Router handles HTTP routing for live views and plain handlers.
type Router struct {
	mux          *http.ServeMux
	middleware   []Middleware
	errorHandler ErrorHandler

	sessions *SessionManager
	sockets  *core.SocketManager
	conns    *limits.ConnectionLimiter

	transportConfig *transport.Config
	wsConfig        *transport.WebSocketConfig
	timeouts        core.TimeoutConfig
	logger          logging.Logger
	tracer          trace.Tracer

	stopJanitor chan struct{}
	stopOnce    sync.Once

	mu sync.RWMutex
}

// LiveRoute is a path served by a live view.
type LiveRoute struct {
	// Pattern is the ServeMux pattern.
	Pattern string

	// Component creates a fresh view for each request and connection.
	Component func() core.Component
}

// Middleware is a function that wraps an HTTP handler.
type Middleware func(http.Handler) http.Handler

// ErrorHandler handles errors during request processing.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// Option configures a Router.
type Option func(*Router)

// WithLogger sets the router logger.
func WithLogger(logger logging.Logger) Option {
	return func(r *Router) { r.logger = logger }
}

// WithTransportConfig sets websocket timeouts and buffer sizes.
func WithTransportConfig(config *transport.Config) Option {
	return func(r *Router) { r.transportConfig = config }
}

// WithWebSocketConfig sets the websocket origin policy.
func WithWebSocketConfig(config *transport.WebSocketConfig) Option {
	return func(r *Router) { r.wsConfig = config }
}

// WithTimeouts sets component callback timeouts.
func WithTimeouts(timeouts core.TimeoutConfig) Option {
	return func(r *Router) { r.timeouts = timeouts }
}

// WithMaxConnectionsPerIP caps concurrent websockets per client IP.
func WithMaxConnectionsPerIP(n int) Option {
	return func(r *Router) { r.conns = limits.NewConnectionLimiter(n) }
}

// WithMaxSessions caps the number of live sessions. The least recently
// active session is closed when a new one would exceed it.
func WithMaxSessions(n int) Option {
	return func(r *Router) { r.sessions = NewSessionManager(n) }
}

// WithErrorHandler sets the handler for render failures.
func WithErrorHandler(h ErrorHandler) Option {
	return func(r *Router) { r.errorHandler = h }
}

// New creates a router.
func New(opts ...Option) *Router {
	r := &Router{
		mux:             http.NewServeMux(),
		sessions:        NewSessionManager(10000),
		sockets:         core.NewSocketManager(),
		conns:           limits.NewConnectionLimiter(0),
		transportConfig: transport.DefaultConfig(),
		wsConfig:        &transport.WebSocketConfig{},
		timeouts:        core.DefaultTimeoutConfig(),
		logger:          logging.DefaultLogger,
		tracer:          otel.Tracer(tracerName),
		stopJanitor:     make(chan struct{}),
		errorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			logging.L(r.Context()).Error("render failed", logging.Err(err))
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	go r.janitor()
	return r
}

// Use adds middleware. It applies to routes registered afterwards.
func (r *Router) Use(mw Middleware) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.middleware = append(r.middleware, mw)
}

// Sessions returns the session manager.
func (r *Router) Sessions() *SessionManager {
	return r.sessions
}

// Sockets returns the socket manager.
func (r *Router) Sockets() *core.SocketManager {
	return r.sockets
}

// Live registers a live view. GET requests render HTML and websocket
// upgrades on the same pattern connect the view.
func (r *Router) Live(pattern string, component func() core.Component, mws ...Middleware) {
	route := &LiveRoute{Pattern: pattern, Component: component}

	var h http.Handler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if isWebSocketRequest(req) {
			r.handleWebSocket(w, req, route)
			return
		}
		r.renderLive(w, req, route)
	})
	h = Chain(h, mws...)
	r.Handle(pattern, h)
}

// Handle registers a standard HTTP handler behind the router middleware.
func (r *Router) Handle(pattern string, handler http.Handler) {
	r.mu.RLock()
	middleware := make([]Middleware, len(r.middleware))
	copy(middleware, r.middleware)
	r.mu.RUnlock()

	r.mux.Handle(pattern, Chain(handler, middleware...))
}

// HandleFunc registers a standard HTTP handler function.
func (r *Router) HandleFunc(pattern string, handler http.HandlerFunc) {
	r.Handle(pattern, handler)
}

// ServeHTTP implements http.Handler.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// Shutdown terminates every live view and closes the sockets.
func (r *Router) Shutdown(ctx context.Context) error {
	r.stopOnce.Do(func() { close(r.stopJanitor) })

	for _, s := range r.sessions.All() {
		s.requestClose(core.TerminateShutdown)
	}
	return r.sockets.Shutdown(ctx)
}

// renderLive mounts a fresh component and writes its HTML.
func (r *Router) renderLive(w http.ResponseWriter, req *http.Request, route *LiveRoute) {
	ctx, span := r.tracer.Start(req.Context(), "live.render",
		trace.WithAttributes(attribute.String("live.route", route.Pattern)))
	defer span.End()

	component := route.Component()
	params := extractParams(req)
	ctx = core.WithParams(ctx, params)

	mountCtx, cancel := context.WithTimeout(ctx, r.timeouts.ComponentMount)
	err := safeCall(func() error { return component.Mount(mountCtx, params, extractSession(req)) })
	cancel()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "mount failed")
		r.errorHandler(w, req, fmt.Errorf("mount %s: %w", component.Name(), err))
		return
	}

	renderer := component.Render(ctx)
	if renderer == nil {
		r.errorHandler(w, req, ErrNilRenderer)
		return
	}

	buf := pool.GetBuffer()
	defer pool.PutBuffer(buf)

	if err := renderer.Render(ctx, buf); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "render failed")
		r.errorHandler(w, req, fmt.Errorf("render %s: %w", component.Name(), err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

// handleWebSocket upgrades the request and runs the connection until it
// closes. The component is mounted when the client joins.
func (r *Router) handleWebSocket(w http.ResponseWriter, req *http.Request, route *LiveRoute) {
	log := logging.L(req.Context())

	if r.sockets.IsShutdown() {
		http.Error(w, ErrShuttingDown.Error(), http.StatusServiceUnavailable)
		return
	}

	ip := limits.GetClientIP(req)
	if !r.conns.Acquire(ip) {
		log.Warn("websocket refused", logging.String("ip", ip), logging.Err(ErrTooManyConnections))
		http.Error(w, ErrTooManyConnections.Error(), http.StatusTooManyRequests)
		return
	}

	ws := transport.NewWebSocketTransport(r.transportConfig, r.wsConfig)
	if err := ws.Upgrade(w, req); err != nil {
		r.conns.Release(ip)
		log.Warn("websocket upgrade failed", logging.Err(err))
		return
	}

	socketID := uuid.NewString()
	ws.OnError(func(err error) {
		r.logger.Debug("websocket error", logging.String("socket_id", socketID), logging.Err(err))
	})

	component := route.Component()
	socket := core.NewSocket(socketID, NewTransportAdapter(ws))
	if sa, ok := component.(core.SocketAware); ok {
		sa.SetSocket(socket)
	}

	session := NewSession(socketID, route.Pattern, component, extractParams(req), extractSession(req))
	session.Socket = socket
	session.Transport = ws

	if evicted := r.sessions.Add(session); evicted != nil {
		evicted.requestClose(core.TerminateTimeout)
	}
	r.sockets.Add(socket)
	metrics.ConnectionOpened()

	r.logger.Debug("websocket connected",
		logging.String("socket_id", socketID),
		logging.String("route", route.Pattern),
		logging.String("codec", ws.Codec().Name()),
	)

	// The connection outlives the upgrade request, so it gets its own context.
	go func() {
		defer r.conns.Release(ip)
		r.serve(session)
	}()
}

// serve runs the message loop of one connection. Client frames and server
// info messages are handled on this goroutine, so components never see
// concurrent callbacks.
func (r *Router) serve(s *Session) {
	defer func() { r.terminate(s, s.CloseReason()) }()

	ctx := core.BuildContext(context.Background(), s.Socket, s.Params)
	ctx = logging.ContextWithLogger(ctx, r.logger.With(
		logging.String("socket_id", s.SocketID),
		logging.String("route", s.Path),
	))

	recv := s.Transport.Receive()
	for {
		select {
		case msg := <-recv:
			s.UpdateActivity()
			if !r.handleMessage(ctx, s, msg) {
				return
			}

		case info := <-s.Socket.Info():
			if !s.IsMounted() {
				continue
			}
			r.handleInfo(ctx, s, info)

		case <-s.Transport.CloseChan():
			return

		case <-s.Socket.Done():
			return
		}
	}
}

// handleMessage dispatches one client frame. It returns false when the
// connection should end.
func (r *Router) handleMessage(ctx context.Context, s *Session, msg *protocol.Message) bool {
	switch protocol.EventToType(msg.Event) {
	case protocol.MsgHeartbeat:
		r.send(s, protocol.OkReply(msg.Ref, msg.Topic, nil))

	case protocol.MsgJoin:
		r.handleJoin(ctx, s, msg)

	case protocol.MsgLeave:
		r.send(s, protocol.OkReply(msg.Ref, msg.Topic, nil))
		return false

	case protocol.MsgEvent:
		if !s.IsMounted() {
			r.send(s, protocol.ErrorReply(msg.Ref, msg.Topic, ErrNotJoined.Error()))
			return true
		}
		if err := r.dispatchEvent(ctx, s, msg); err != nil {
			logging.L(ctx).Warn("event failed", logging.String("event", msg.Event), logging.Err(err))
			r.send(s, protocol.ErrorReply(msg.Ref, msg.Topic, err.Error()))
			return true
		}
		r.send(s, protocol.OkReply(msg.Ref, msg.Topic, nil))
		r.renderAndSendDiff(ctx, s)
	}
	return true
}

// handleJoin mounts the component and replies with the rendered HTML.
func (r *Router) handleJoin(ctx context.Context, s *Session, msg *protocol.Message) {
	s.SetJoin(msg.JoinRef, msg.Topic)

	if !s.IsMounted() {
		mountCtx, cancel := context.WithTimeout(ctx, r.timeouts.ComponentMount)
		err := safeCall(func() error { return s.Component.Mount(mountCtx, s.Params, s.Session) })
		cancel()
		if err != nil {
			logging.L(ctx).Error("mount failed", logging.Err(err))
			r.send(s, protocol.ErrorReply(msg.Ref, msg.Topic, err.Error()))
			return
		}
		s.SetMounted(true)
	}

	html, err := r.render(ctx, s)
	if err != nil {
		r.send(s, protocol.ErrorReply(msg.Ref, msg.Topic, err.Error()))
		return
	}
	// The page on the client came from a different mount, so the join
	// reply carries every slot.
	s.setSlotState(nil, 0)
	diff := buildDiff(s, html)

	rendered := map[string]any{"v": diff.Version}
	if len(diff.Slots) > 0 {
		rendered["s"] = diff.Slots
	}
	if len(diff.HTMLSlots) > 0 {
		rendered["h"] = diff.HTMLSlots
	}
	if diff.Full != "" {
		rendered["f"] = diff.Full
	}
	r.send(s, protocol.OkReply(msg.Ref, msg.Topic, map[string]any{"rendered": rendered}))
}

// dispatchEvent hands a browser event to the component under a timeout.
func (r *Router) dispatchEvent(ctx context.Context, s *Session, msg *protocol.Message) error {
	ctx, span := r.tracer.Start(ctx, "live.event", trace.WithAttributes(
		attribute.String("live.route", s.Path),
		attribute.String("live.event", msg.Event),
	))
	defer span.End()

	payload := msg.Payload
	if payload == nil {
		payload = make(map[string]any)
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeouts.ComponentEvent)
	defer cancel()

	metrics.EventHandled(msg.Event)
	err := safeCall(func() error { return s.Component.HandleEvent(ctx, msg.Event, payload) })
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "event failed")
	}
	return err
}

// handleInfo delivers a server message and pushes the resulting diff.
func (r *Router) handleInfo(ctx context.Context, s *Session, info any) {
	infoCtx, cancel := context.WithTimeout(ctx, r.timeouts.ComponentEvent)
	err := safeCall(func() error { return s.Component.HandleInfo(infoCtx, info) })
	cancel()
	if err != nil {
		logging.L(ctx).Warn("info failed", logging.String("info", fmt.Sprintf("%T", info)), logging.Err(err))
		return
	}
	r.renderAndSendDiff(ctx, s)
}

func (r *Router) render(ctx context.Context, s *Session) (string, error) {
	start := time.Now()
	defer func() { metrics.Default.RenderDuration.Since(start) }()

	renderer := s.Component.Render(ctx)
	if renderer == nil {
		return "", ErrNilRenderer
	}

	buf := pool.GetBuffer()
	defer pool.PutBuffer(buf)

	if err := renderer.Render(ctx, buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// renderAndSendDiff renders the component and sends the slots that changed.
func (r *Router) renderAndSendDiff(ctx context.Context, s *Session) {
	html, err := r.render(ctx, s)
	if err != nil {
		logging.L(ctx).Error("render failed", logging.Err(err))
		return
	}

	payload := buildDiff(s, html)
	if payload.IsEmpty() {
		return
	}
	metrics.Default.Renders.Inc()
	metrics.Default.DiffBytes.Observe(float64(payload.Size()))
	if err := s.Socket.SendDiff(payload); err != nil && !errors.Is(err, core.ErrSocketClosed) {
		logging.L(ctx).Warn("send diff failed", logging.Err(err))
	}
}

func (r *Router) send(s *Session, msg *protocol.Message) {
	if err := s.Transport.Send(msg); err != nil && !errors.Is(err, transport.ErrNotConnected) {
		r.logger.Debug("send failed", logging.String("socket_id", s.SocketID), logging.Err(err))
	}
}

// terminate tears a session down once.
func (r *Router) terminate(s *Session, reason core.TerminateReason) {
	s.closeOnce.Do(func() { r.teardown(s, reason) })
}

func (r *Router) teardown(s *Session, reason core.TerminateReason) {
	r.sessions.Remove(s.SocketID)
	r.sockets.Remove(s.SocketID)

	if s.IsMounted() {
		ctx, cancel := context.WithTimeout(context.Background(), r.timeouts.ComponentEvent)
		if err := safeCall(func() error { return s.Component.Terminate(ctx, reason) }); err != nil {
			r.logger.Warn("terminate failed", logging.String("socket_id", s.SocketID), logging.Err(err))
		}
		cancel()
	}
	s.Socket.Close()
	metrics.ConnectionClosed()

	r.logger.Debug("websocket closed",
		logging.String("socket_id", s.SocketID),
		logging.String("reason", reason.String()),
		logging.Duration("duration", time.Since(s.CreatedAt)),
	)
}

// janitor closes sessions that stopped sending frames.
func (r *Router) janitor() {
	interval := r.timeouts.SessionIdle / 4
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			for _, s := range r.sessions.Idle(r.timeouts.SessionIdle) {
				s.requestClose(core.TerminateTimeout)
			}
		case <-r.stopJanitor:
			return
		}
	}
}

// safeCall runs a component callback and turns a panic into an error.
func safeCall(fn func() error) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			metrics.PanicRecovered()
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	return fn()
}

// extractSession captures the request data a view may need after the
// upgrade request is gone.
func extractSession(req *http.Request) core.Session {
	session := core.Session{
		"remote_ip":  limits.GetClientIP(req),
		"user_agent": req.UserAgent(),
		"request_id": req.Header.Get(logging.RequestIDHeader),
		"path":       req.URL.Path,
	}
	for _, cookie := range req.Cookies() {
		session["cookie:"+cookie.Name] = cookie.Value
	}
	return session
}

// extractParams returns the first value of each query parameter.
func extractParams(req *http.Request) core.Params {
	params := make(core.Params)
	for key, values := range req.URL.Query() {
		if len(values) > 0 {
			params[key] = values[0]
		}
	}
	return params
}

func isWebSocketRequest(req *http.Request) bool {
	return strings.Contains(strings.ToLower(req.Header.Get("Upgrade")), "websocket")
}
