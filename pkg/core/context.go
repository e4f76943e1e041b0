package core

import "context"

type contextKey string

const (
	socketKey contextKey = "live:socket"
	paramsKey contextKey = "live:params"
)

// WithSocket adds a socket to the context.
func WithSocket(ctx context.Context, socket *Socket) context.Context {
	return context.WithValue(ctx, socketKey, socket)
}

// SocketFromContext retrieves the socket from context, or nil.
func SocketFromContext(ctx context.Context) *Socket {
	s, _ := ctx.Value(socketKey).(*Socket)
	return s
}

// WithParams adds the connection's query parameters to the context.
func WithParams(ctx context.Context, params Params) context.Context {
	return context.WithValue(ctx, paramsKey, params)
}

// ParamsFromContext retrieves params from context.
func ParamsFromContext(ctx context.Context) Params {
	p, _ := ctx.Value(paramsKey).(Params)
	return p
}

// BuildContext returns ctx carrying the socket and params of a connection.
func BuildContext(ctx context.Context, socket *Socket, params Params) context.Context {
	if socket != nil {
		ctx = WithSocket(ctx, socket)
	}
	return WithParams(ctx, params)
}
