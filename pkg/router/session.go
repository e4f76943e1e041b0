package router

import (
	"sync"
	"time"

	"github.com/linkmeta/metasite/pkg/core"
	"github.com/linkmeta/metasite/pkg/transport"
)

// Session binds a mounted component to its websocket connection.
type Session struct {
	// SocketID identifies the socket and the session.
	SocketID string

	// Path is the route the view was served from.
	Path string

	// Component is the live view instance owned by this connection.
	Component core.Component

	// Socket is the core socket handed to the component.
	Socket *core.Socket

	// Transport is the underlying websocket.
	Transport *transport.WebSocketTransport

	// Params are the query parameters of the upgrade request.
	Params core.Params

	// Session holds request data captured at upgrade time.
	Session core.Session

	CreatedAt time.Time

	joinRef      string
	topic        string
	mounted      bool
	version      uint64
	lastActivity time.Time

	// Rendered state used to compute diffs.
	slotHashes map[string]uint64
	fullHash   uint64

	closeReason core.TerminateReason
	closeOnce   sync.Once

	mu sync.RWMutex
}

// NewSession creates a session for a freshly upgraded socket.
func NewSession(socketID, path string, comp core.Component, params core.Params, session core.Session) *Session {
	now := time.Now()
	return &Session{
		SocketID:     socketID,
		Path:         path,
		Component:    comp,
		Params:       params,
		Session:      session,
		CreatedAt:    now,
		lastActivity: now,
		topic:        "lv:" + socketID,
	}
}

// UpdateActivity records client activity.
func (s *Session) UpdateActivity() {
	s.mu.Lock()
	s.lastActivity = time.Now()
	s.mu.Unlock()
	if s.Socket != nil {
		s.Socket.UpdateActivity()
	}
}

// LastActivity returns the last time the client sent a frame.
func (s *Session) LastActivity() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastActivity
}

// SetMounted marks the component as mounted.
func (s *Session) SetMounted(mounted bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mounted = mounted
}

// IsMounted reports whether the component has been mounted on this socket.
func (s *Session) IsMounted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mounted
}

// SetJoin records the join ref and topic used by the client.
func (s *Session) SetJoin(ref, topic string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.joinRef = ref
	if topic != "" {
		s.topic = topic
	}
}

// JoinRef returns the join ref.
func (s *Session) JoinRef() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.joinRef
}

// Topic returns the topic the client joined on.
func (s *Session) Topic() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.topic
}

// nextVersion increments and returns the diff version.
func (s *Session) nextVersion() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.version++
	return s.version
}

// Version returns the last diff version sent.
func (s *Session) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

func (s *Session) slotState() (map[string]uint64, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.slotHashes, s.fullHash
}

func (s *Session) setSlotState(hashes map[string]uint64, full uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slotHashes = hashes
	s.fullHash = full
}

// requestClose records why the session is being closed and closes its
// socket. The connection goroutine then terminates the component.
func (s *Session) requestClose(reason core.TerminateReason) {
	s.mu.Lock()
	s.closeReason = reason
	s.mu.Unlock()
	if s.Socket != nil {
		s.Socket.Close()
	}
}

// CloseReason returns the reason passed to the last close request.
func (s *Session) CloseReason() core.TerminateReason {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closeReason
}

// SessionManager tracks the sessions of a router by socket id.
type SessionManager struct {
	sessions    map[string]*Session
	maxSessions int
	mu          sync.RWMutex
}

// NewSessionManager creates a manager. maxSessions <= 0 means no limit.
func NewSessionManager(maxSessions int) *SessionManager {
	return &SessionManager{
		sessions:    make(map[string]*Session),
		maxSessions: maxSessions,
	}
}

// Add registers s. When the manager is full the least recently active
// session is evicted and returned so the caller can close it.
func (m *SessionManager) Add(s *Session) (evicted *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.maxSessions > 0 && len(m.sessions) >= m.maxSessions {
		evicted = m.evictOldestLocked()
	}
	m.sessions[s.SocketID] = s
	return evicted
}

// Get returns the session for a socket id.
func (m *SessionManager) Get(socketID string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[socketID]
	return s, ok
}

// Remove forgets a session.
func (m *SessionManager) Remove(socketID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, socketID)
}

// Count returns the number of active sessions.
func (m *SessionManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// All returns a snapshot of the active sessions.
func (m *SessionManager) All() []*Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		result = append(result, s)
	}
	return result
}

// Idle returns the sessions without client activity for longer than ttl.
func (m *SessionManager) Idle(ttl time.Duration) []*Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	now := time.Now()
	var idle []*Session
	for _, s := range m.sessions {
		if now.Sub(s.LastActivity()) > ttl {
			idle = append(idle, s)
		}
	}
	return idle
}

// evictOldestLocked must be called with m.mu held.
func (m *SessionManager) evictOldestLocked() *Session {
	var oldest *Session
	for _, s := range m.sessions {
		if oldest == nil || s.LastActivity().Before(oldest.LastActivity()) {
			oldest = s
		}
	}
	if oldest != nil {
		delete(m.sessions, oldest.SocketID)
	}
	return oldest
}
