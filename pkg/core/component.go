// Package core provides the live view abstractions shared by pages and the router.
package core

import (
	"context"
	"io"
	"strings"
)

// Component is a stateful server-side view. It is mounted once per
// connection, receives browser events and server messages, and renders HTML
// after each state change.
type Component interface {
	// Name returns the identifier written into the data-live-view attribute.
	Name() string

	// Mount is called for the first HTTP render and again when the websocket
	// joins. It receives the query parameters and session data.
	Mount(ctx context.Context, params Params, session Session) error

	// Render returns the current HTML representation of the component.
	Render(ctx context.Context) Renderer

	// HandleEvent processes browser interactions (clicks, changes, submits).
	HandleEvent(ctx context.Context, event string, payload map[string]any) error

	// HandleInfo processes server-side messages queued on the socket, such as
	// timer ticks and results of background fetches.
	HandleInfo(ctx context.Context, msg any) error

	// Terminate is called when the connection goes away.
	Terminate(ctx context.Context, reason TerminateReason) error
}

// SocketAware is implemented by components that need their socket.
// BaseComponent implements it.
type SocketAware interface {
	SetSocket(s *Socket)
}

// Renderer writes HTML.
type Renderer interface {
	Render(ctx context.Context, w io.Writer) error
}

// RendererFunc is an adapter to allow ordinary functions to be used as Renderers.
type RendererFunc func(ctx context.Context, w io.Writer) error

func (f RendererFunc) Render(ctx context.Context, w io.Writer) error {
	return f(ctx, w)
}

// HTML returns a Renderer that writes a pre-rendered string.
func HTML(s string) Renderer {
	return RendererFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, s)
		return err
	})
}

// RenderString renders r into a string.
func RenderString(ctx context.Context, r Renderer) (string, error) {
	var sb strings.Builder
	if err := r.Render(ctx, &sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// Params contains query string values from the connection.
type Params map[string]string

// Get returns a parameter value or empty string if not found.
func (p Params) Get(key string) string {
	return p[key]
}

// GetDefault returns a parameter value or the default if not found.
func (p Params) GetDefault(key, defaultValue string) string {
	if v, ok := p[key]; ok {
		return v
	}
	return defaultValue
}

// Session contains request data passed from the HTTP handler.
type Session map[string]any

// Get returns a session value.
func (s Session) Get(key string) any {
	return s[key]
}

// GetString returns a session value as string.
func (s Session) GetString(key string) string {
	if v, ok := s[key].(string); ok {
		return v
	}
	return ""
}

// TerminateReason indicates why a component is being terminated.
type TerminateReason int

const (
	// TerminateNormal indicates clean disconnection.
	TerminateNormal TerminateReason = iota
	// TerminateShutdown indicates server shutdown.
	TerminateShutdown
	// TerminateError indicates termination due to an error.
	TerminateError
	// TerminateTimeout indicates termination due to inactivity.
	TerminateTimeout
)

func (r TerminateReason) String() string {
	switch r {
	case TerminateNormal:
		return "normal"
	case TerminateShutdown:
		return "shutdown"
	case TerminateError:
		return "error"
	case TerminateTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// BaseComponent provides default implementations for Component methods.
// Embed it in pages to avoid implementing unused methods.
type BaseComponent struct {
	socket *Socket
}

// SetSocket sets the socket for the component (called by the router).
func (bc *BaseComponent) SetSocket(s *Socket) {
	bc.socket = s
}

// Socket returns the component's socket, or nil during the HTTP render.
func (bc *BaseComponent) Socket() *Socket {
	return bc.socket
}

// Connected reports whether the component is attached to a live socket.
func (bc *BaseComponent) Connected() bool {
	return bc.socket != nil && bc.socket.IsConnected()
}

// Name returns an empty string (override in your component).
func (bc *BaseComponent) Name() string {
	return ""
}

// Mount does nothing by default.
func (bc *BaseComponent) Mount(ctx context.Context, params Params, session Session) error {
	return nil
}

// HandleEvent does nothing by default.
func (bc *BaseComponent) HandleEvent(ctx context.Context, event string, payload map[string]any) error {
	return nil
}

// HandleInfo does nothing by default.
func (bc *BaseComponent) HandleInfo(ctx context.Context, msg any) error {
	return nil
}

// Terminate does nothing by default.
func (bc *BaseComponent) Terminate(ctx context.Context, reason TerminateReason) error {
	return nil
}
