// Package transport carries protocol messages between the browser runtime
// and the server over websockets.
package transport

import (
	"errors"
	"sync"
	"time"

	"github.com/linkmeta/metasite/pkg/protocol"
)

// Common transport errors.
var (
	ErrNotConnected     = errors.New("transport not connected")
	ErrConnectionClosed = errors.New("connection closed")
	ErrSendTimeout      = errors.New("send timeout")
	ErrTransportFull    = errors.New("transport buffer full")
)

// Config holds transport configuration.
type Config struct {
	// ReadTimeout is the maximum idle time between client frames.
	// The client heartbeat must be shorter.
	ReadTimeout time.Duration

	// WriteTimeout bounds a single frame write.
	WriteTimeout time.Duration

	// PingInterval is how often to send websocket pings.
	PingInterval time.Duration

	// MaxMessageSize is the maximum inbound frame size in bytes.
	MaxMessageSize int64

	// SendBufferSize is the size of the outbound queue.
	SendBufferSize int

	// ReceiveBufferSize is the size of the inbound queue.
	ReceiveBufferSize int
}

// DefaultConfig returns the defaults used by the router.
func DefaultConfig() *Config {
	return &Config{
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      10 * time.Second,
		PingInterval:      30 * time.Second,
		MaxMessageSize:    64 * 1024,
		SendBufferSize:    64,
		ReceiveBufferSize: 64,
	}
}

// base holds the queues and connection flag shared by transports.
type base struct {
	config    *Config
	connected bool
	sendCh    chan *protocol.Message
	recvCh    chan *protocol.Message
	closeCh   chan struct{}
	closeOnce sync.Once
	mu        sync.RWMutex
}

func newBase(config *Config) *base {
	if config == nil {
		config = DefaultConfig()
	}
	return &base{
		config:  config,
		sendCh:  make(chan *protocol.Message, config.SendBufferSize),
		recvCh:  make(chan *protocol.Message, config.ReceiveBufferSize),
		closeCh: make(chan struct{}),
	}
}

// IsConnected returns the connection status.
func (b *base) IsConnected() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.connected
}

func (b *base) setConnected(connected bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.connected = connected
}

// Receive returns the inbound message queue.
func (b *base) Receive() <-chan *protocol.Message {
	return b.recvCh
}

// CloseChan is closed when the transport closes.
func (b *base) CloseChan() <-chan struct{} {
	return b.closeCh
}

func (b *base) shutdown() bool {
	first := false
	b.closeOnce.Do(func() {
		first = true
		b.setConnected(false)
		close(b.closeCh)
	})
	return first
}

// Send queues msg for the write loop.
func (b *base) Send(msg *protocol.Message) error {
	if !b.IsConnected() {
		return ErrNotConnected
	}

	timer := time.NewTimer(b.config.WriteTimeout)
	defer timer.Stop()

	select {
	case b.sendCh <- msg:
		return nil
	case <-b.closeCh:
		return ErrConnectionClosed
	case <-timer.C:
		return ErrSendTimeout
	}
}
