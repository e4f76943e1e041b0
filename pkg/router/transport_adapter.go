package router

import (
	"github.com/linkmeta/metasite/pkg/core"
	"github.com/linkmeta/metasite/pkg/protocol"
	"github.com/linkmeta/metasite/pkg/transport"
)

// TransportAdapter lets a core.Socket push through a websocket transport.
type TransportAdapter struct {
	ws *transport.WebSocketTransport
}

// NewTransportAdapter wraps ws.
func NewTransportAdapter(ws *transport.WebSocketTransport) *TransportAdapter {
	return &TransportAdapter{ws: ws}
}

// Send converts msg into a protocol message and queues it.
func (a *TransportAdapter) Send(msg core.Message) error {
	out := protocol.NewMessage(msg.Topic, msg.Event, msg.Payload).WithRef(msg.Ref)
	return a.ws.Send(out)
}

// Close closes the websocket.
func (a *TransportAdapter) Close() error {
	return a.ws.Close()
}

// IsConnected reports whether the websocket is up.
func (a *TransportAdapter) IsConnected() bool {
	return a.ws.IsConnected()
}

// WebSocket returns the wrapped transport.
func (a *TransportAdapter) WebSocket() *transport.WebSocketTransport {
	return a.ws
}
