package testing

import (
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/linkmeta/metasite/pkg/core"
)

// MockSocket is an in-memory core.Transport. It records what a view pushes
// so tests can inspect diffs without a browser.
type MockSocket struct {
	ID string

	mu     sync.Mutex
	sent   []core.Message
	closed bool
	err    error
}

// NewMockSocket returns a connected transport with a random id.
func NewMockSocket() *MockSocket {
	return &MockSocket{ID: "mock-" + uuid.NewString()[:8]}
}

func (ms *MockSocket) Send(msg core.Message) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	switch {
	case ms.err != nil:
		return ms.err
	case ms.closed:
		return core.ErrSocketClosed
	}
	ms.sent = append(ms.sent, msg)
	return nil
}

func (ms *MockSocket) Close() error {
	ms.mu.Lock()
	ms.closed = true
	ms.mu.Unlock()
	return nil
}

func (ms *MockSocket) IsConnected() bool {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return !ms.closed
}

// FailWith makes every following Send return err. A nil err clears it.
func (ms *MockSocket) FailWith(err error) {
	ms.mu.Lock()
	ms.err = err
	ms.mu.Unlock()
}

// Sent returns a copy of the pushed messages, oldest first.
func (ms *MockSocket) Sent() []core.Message {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return slices.Clone(ms.sent)
}

// Diffs returns the payloads of the pushed diff events.
func (ms *MockSocket) Diffs() []map[string]any {
	var out []map[string]any
	for _, msg := range ms.Sent() {
		if msg.Event == "diff" {
			out = append(out, msg.Payload)
		}
	}
	return out
}
