package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/linkmeta/metasite/pkg/protocol"
)

// Origin errors.
var (
	ErrOriginNotAllowed = errors.New("origin not allowed")
)

// WebSocketConfig configures websocket origin checks.
type WebSocketConfig struct {
	// AllowedOrigins lists origins allowed besides the request's own host.
	AllowedOrigins []string

	// InsecureDevMode disables origin validation. Development only.
	InsecureDevMode bool
}

// WebSocketTransport is a live connection over a websocket. Frames are
// encoded with the codec negotiated through the handshake subprotocol.
type WebSocketTransport struct {
	*base
	conn     *websocket.Conn
	codec    protocol.Codec
	wsConfig *WebSocketConfig
	onError  func(error)
	mu       sync.Mutex
}

// NewWebSocketTransport creates an unconnected transport.
func NewWebSocketTransport(config *Config, wsConfig *WebSocketConfig) *WebSocketTransport {
	if wsConfig == nil {
		wsConfig = &WebSocketConfig{}
	}
	return &WebSocketTransport{
		base:     newBase(config),
		codec:    protocol.NewJSONCodec(),
		wsConfig: wsConfig,
	}
}

// OnError registers a callback for read and write failures other than a
// normal close.
func (t *WebSocketTransport) OnError(fn func(error)) {
	t.onError = fn
}

// Codec returns the negotiated codec.
func (t *WebSocketTransport) Codec() protocol.Codec {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.codec
}

func (t *WebSocketTransport) isOriginAllowed(origin, requestHost string) bool {
	if t.wsConfig.InsecureDevMode || origin == "" {
		return true
	}

	originURL, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if originURL.Host == requestHost {
		return true
	}

	for _, allowed := range t.wsConfig.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
		if allowedURL, err := url.Parse(allowed); err == nil && allowedURL.Host == originURL.Host {
			return true
		}
	}
	return false
}

func (t *WebSocketTransport) originPatterns() []string {
	patterns := make([]string, 0, len(t.wsConfig.AllowedOrigins))
	for _, allowed := range t.wsConfig.AllowedOrigins {
		if allowed == "*" {
			patterns = append(patterns, "*")
			continue
		}
		if u, err := url.Parse(allowed); err == nil && u.Host != "" {
			patterns = append(patterns, u.Host)
		}
	}
	return patterns
}

// Upgrade accepts the websocket handshake and starts the read, write and
// ping loops.
func (t *WebSocketTransport) Upgrade(w http.ResponseWriter, r *http.Request) error {
	if !t.isOriginAllowed(r.Header.Get("Origin"), r.Host) {
		http.Error(w, "Forbidden: Origin not allowed", http.StatusForbidden)
		return ErrOriginNotAllowed
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		Subprotocols:       protocol.Subprotocols(),
		InsecureSkipVerify: t.wsConfig.InsecureDevMode,
		OriginPatterns:     t.originPatterns(),
	})
	if err != nil {
		return fmt.Errorf("accept websocket: %w", err)
	}

	codec, err := protocol.ForSubprotocol(conn.Subprotocol())
	if err != nil {
		conn.Close(websocket.StatusProtocolError, "unsupported subprotocol")
		return err
	}

	t.start(conn, codec)
	return nil
}

// Dial connects to a live endpoint as a client using the given subprotocol.
func Dial(ctx context.Context, rawURL, subprotocol string, config *Config) (*WebSocketTransport, error) {
	codec, err := protocol.ForSubprotocol(subprotocol)
	if err != nil {
		return nil, err
	}

	opts := &websocket.DialOptions{}
	if subprotocol != "" {
		opts.Subprotocols = []string{subprotocol}
	}
	conn, _, err := websocket.Dial(ctx, rawURL, opts)
	if err != nil {
		return nil, fmt.Errorf("dial websocket: %w", err)
	}

	t := NewWebSocketTransport(config, nil)
	t.start(conn, codec)
	return t, nil
}

func (t *WebSocketTransport) start(conn *websocket.Conn, codec protocol.Codec) {
	conn.SetReadLimit(t.config.MaxMessageSize)

	t.mu.Lock()
	t.conn = conn
	t.codec = codec
	t.mu.Unlock()
	t.setConnected(true)

	go t.readLoop()
	go t.writeLoop()
	go t.pingLoop()
}

// Close closes the websocket with a normal closure.
func (t *WebSocketTransport) Close() error {
	if !t.shutdown() {
		return nil
	}

	t.mu.Lock()
	conn := t.conn
	t.mu.Unlock()

	if conn == nil {
		return nil
	}
	return conn.Close(websocket.StatusNormalClosure, "closing")
}

func (t *WebSocketTransport) reportError(err error) {
	status := websocket.CloseStatus(err)
	if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
		return
	}
	if t.onError != nil {
		t.onError(err)
	}
}

func (t *WebSocketTransport) readLoop() {
	defer t.Close()

	for {
		ctx, cancel := context.WithTimeout(context.Background(), t.config.ReadTimeout)
		_, data, err := t.conn.Read(ctx)
		cancel()
		if err != nil {
			select {
			case <-t.closeCh:
			default:
				t.reportError(err)
			}
			return
		}

		msg, err := t.codec.Decode(data)
		if err != nil {
			t.reportError(err)
			continue
		}

		select {
		case t.recvCh <- msg:
		case <-t.closeCh:
			return
		}
	}
}

func (t *WebSocketTransport) writeLoop() {
	typ := websocket.MessageText
	if t.codec.Binary() {
		typ = websocket.MessageBinary
	}

	for {
		select {
		case msg := <-t.sendCh:
			data, err := t.codec.Encode(msg)
			if err != nil {
				t.reportError(err)
				continue
			}

			ctx, cancel := context.WithTimeout(context.Background(), t.config.WriteTimeout)
			err = t.conn.Write(ctx, typ, data)
			cancel()
			if err != nil {
				t.reportError(err)
				t.Close()
				return
			}

		case <-t.closeCh:
			return
		}
	}
}

func (t *WebSocketTransport) pingLoop() {
	ticker := time.NewTicker(t.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), t.config.WriteTimeout)
			_ = t.conn.Ping(ctx)
			cancel()
		case <-t.closeCh:
			return
		}
	}
}
