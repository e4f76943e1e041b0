package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// Common socket errors.
var (
	ErrSocketClosed   = errors.New("socket is closed")
	ErrSendFailed     = errors.New("failed to send message")
	ErrInfoQueueFull  = errors.New("info queue is full")
	ErrInvalidMessage = errors.New("invalid message format")
)

// DefaultInfoQueueSize bounds the number of pending server messages per socket.
const DefaultInfoQueueSize = 64

// Transport is the interface for underlying connection transports.
type Transport interface {
	Send(msg Message) error
	Close() error
	IsConnected() bool
}

// Message is a server push to the client.
type Message struct {
	Ref     string         `json:"ref,omitempty"`
	Topic   string         `json:"topic"`
	Event   string         `json:"event"`
	Payload map[string]any `json:"payload,omitempty"`
}

// Socket is one live connection. Besides pushing messages to the client it
// owns a queue of server-side info messages which the router delivers to the
// component's HandleInfo, one at a time, on the connection's goroutine.
type Socket struct {
	id          string
	connectedAt time.Time

	lastActivity atomic.Int64

	transport Transport
	metadata  map[string]any

	info      chan any
	done      chan struct{}
	closeOnce sync.Once
	closed    atomic.Bool

	mu sync.RWMutex
}

// NewSocket creates a new socket with the given ID and transport.
func NewSocket(id string, transport Transport) *Socket {
	now := time.Now()
	s := &Socket{
		id:          id,
		connectedAt: now,
		transport:   transport,
		metadata:    make(map[string]any),
		info:        make(chan any, DefaultInfoQueueSize),
		done:        make(chan struct{}),
	}
	s.lastActivity.Store(now.UnixNano())
	return s
}

// ID returns the socket's unique identifier.
func (s *Socket) ID() string {
	return s.id
}

// IsConnected returns true if the socket is open and its transport is up.
func (s *Socket) IsConnected() bool {
	if s.closed.Load() {
		return false
	}
	return s.transport != nil && s.transport.IsConnected()
}

// ConnectedAt returns when the socket connected.
func (s *Socket) ConnectedAt() time.Time {
	return s.connectedAt
}

// LastActivity returns the time of last activity.
func (s *Socket) LastActivity() time.Time {
	return time.Unix(0, s.lastActivity.Load())
}

// UpdateActivity updates the last activity timestamp.
func (s *Socket) UpdateActivity() {
	s.lastActivity.Store(time.Now().UnixNano())
}

// Done is closed when the socket closes.
func (s *Socket) Done() <-chan struct{} {
	return s.done
}

// Send sends a message to the client.
func (s *Socket) Send(msg Message) error {
	if !s.IsConnected() {
		return ErrSocketClosed
	}
	s.UpdateActivity()

	if err := s.transport.Send(msg); err != nil {
		if s.closed.Load() {
			return ErrSocketClosed
		}
		return fmt.Errorf("%w: %v", ErrSendFailed, err)
	}
	return nil
}

// Push sends an event to the client on the socket's topic.
func (s *Socket) Push(event string, payload map[string]any) error {
	return s.Send(Message{
		Topic:   "lv:" + s.id,
		Event:   event,
		Payload: payload,
	})
}

// DiffPayload is the diff format sent to clients: text slots (s), HTML
// slots (h), or a full render (f) when the view has no slots.
type DiffPayload struct {
	Version   uint64            `json:"v"`
	Slots     map[string]string `json:"s,omitempty"`
	HTMLSlots map[string]string `json:"h,omitempty"`
	Full      string            `json:"f,omitempty"`
}

// IsEmpty returns true if the payload has no changes.
func (d *DiffPayload) IsEmpty() bool {
	return len(d.Slots) == 0 && len(d.HTMLSlots) == 0 && d.Full == ""
}

// Size returns the number of content bytes in the payload.
func (d *DiffPayload) Size() int {
	size := len(d.Full)
	for _, content := range d.Slots {
		size += len(content)
	}
	for _, content := range d.HTMLSlots {
		size += len(content)
	}
	return size
}

// SendDiff pushes a non-empty diff to the client.
func (s *Socket) SendDiff(payload *DiffPayload) error {
	if payload == nil || payload.IsEmpty() {
		return nil
	}

	out := map[string]any{"v": payload.Version}
	if len(payload.Slots) > 0 {
		out["s"] = payload.Slots
	}
	if len(payload.HTMLSlots) > 0 {
		out["h"] = payload.HTMLSlots
	}
	if payload.Full != "" {
		out["f"] = payload.Full
	}
	return s.Push("diff", out)
}

// SendInfo queues msg for the component's HandleInfo. It never blocks.
func (s *Socket) SendInfo(msg any) error {
	if s.closed.Load() {
		return ErrSocketClosed
	}
	select {
	case <-s.done:
		return ErrSocketClosed
	case s.info <- msg:
		return nil
	default:
		return ErrInfoQueueFull
	}
}

// SendInfoContext queues msg for HandleInfo, waiting for room in the queue
// until ctx is done. Use it for messages that must not be dropped.
func (s *Socket) SendInfoContext(ctx context.Context, msg any) error {
	if s.closed.Load() {
		return ErrSocketClosed
	}
	select {
	case <-s.done:
		return ErrSocketClosed
	case s.info <- msg:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", ErrInfoQueueFull, ctx.Err())
	}
}

// Info returns the queue of pending server messages.
func (s *Socket) Info() <-chan any {
	return s.info
}

// SendAfter queues msg once after d. The returned function cancels it.
func (s *Socket) SendAfter(msg any, d time.Duration) (cancel func()) {
	t := time.AfterFunc(d, func() {
		_ = s.SendInfo(msg)
	})
	return func() { t.Stop() }
}

// Every queues msg every d until the socket closes or stop is called.
// Ticks are dropped while the queue is full.
func (s *Socket) Every(d time.Duration, msg any) (stop func()) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		ticker := time.NewTicker(d)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-s.done:
				return
			case <-ticker.C:
				_ = s.SendInfo(msg)
			}
		}
	}()
	return cancel
}

// GetMetadata retrieves metadata by key.
func (s *Socket) GetMetadata(key string) any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.metadata[key]
}

// SetMetadata stores metadata.
func (s *Socket) SetMetadata(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metadata[key] = value
}

// Close closes the socket and its transport. It is safe to call more than once.
func (s *Socket) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		close(s.done)
		if s.transport != nil {
			err = s.transport.Close()
		}
	})
	return err
}

// SocketManager tracks the live sockets of a router.
type SocketManager struct {
	sockets    map[string]*Socket
	isShutdown bool
	mu         sync.RWMutex
}

// NewSocketManager creates a new socket manager.
func NewSocketManager() *SocketManager {
	return &SocketManager{
		sockets: make(map[string]*Socket),
	}
}

// Add registers a socket.
func (sm *SocketManager) Add(socket *Socket) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.sockets[socket.ID()] = socket
}

// Remove unregisters a socket.
func (sm *SocketManager) Remove(id string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	delete(sm.sockets, id)
}

// Get retrieves a socket by ID.
func (sm *SocketManager) Get(id string) (*Socket, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	s, ok := sm.sockets[id]
	return s, ok
}

// Count returns the number of active sockets.
func (sm *SocketManager) Count() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.sockets)
}

// BroadcastInfo queues msg on every socket. Uses a bounded worker pool.
func (sm *SocketManager) BroadcastInfo(msg any) {
	sm.mu.RLock()
	sockets := make([]*Socket, 0, len(sm.sockets))
	for _, s := range sm.sockets {
		sockets = append(sockets, s)
	}
	sm.mu.RUnlock()

	const maxWorkers = 32
	sem := make(chan struct{}, maxWorkers)
	var wg sync.WaitGroup
	for _, s := range sockets {
		wg.Add(1)
		sem <- struct{}{}
		go func(socket *Socket) {
			defer func() {
				<-sem
				wg.Done()
			}()
			_ = socket.SendInfo(msg)
		}(s)
	}
	wg.Wait()
}

// Shutdown closes every socket. New sockets are still accepted by Add, but
// the router stops upgrading once its server is shutting down.
func (sm *SocketManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	if sm.isShutdown {
		sm.mu.Unlock()
		return nil
	}
	sm.isShutdown = true
	sockets := make([]*Socket, 0, len(sm.sockets))
	for _, s := range sm.sockets {
		sockets = append(sockets, s)
	}
	sm.mu.Unlock()

	for _, s := range sockets {
		if err := ctx.Err(); err != nil {
			return err
		}
		_ = s.Close()
	}
	return nil
}

// IsShutdown returns true once Shutdown has been called.
func (sm *SocketManager) IsShutdown() bool {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.isShutdown
}
