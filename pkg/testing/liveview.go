// Package testing mounts live view components without a browser or a
// websocket. Events and server messages go straight to the component and
// every step re-renders, so assertions run against the current HTML.
package testing

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/linkmeta/metasite/pkg/core"
)

// Event is one event handed to the component under test.
type Event struct {
	Name    string
	Payload map[string]any
}

// LiveViewTest provides a testing harness for live view components.
type LiveViewTest struct {
	component core.Component
	transport *MockSocket
	socket    *core.Socket
	params    core.Params
	session   core.Session
	connected bool
	rendered  string
	events    []Event
	t         testing.TB
}

// MountOption configures the test mount.
type MountOption func(*LiveViewTest)

// WithParams sets the query parameters passed to Mount.
func WithParams(params core.Params) MountOption {
	return func(lvt *LiveViewTest) {
		lvt.params = params
	}
}

// WithSession sets the session passed to Mount.
func WithSession(session core.Session) MountOption {
	return func(lvt *LiveViewTest) {
		lvt.session = session
	}
}

// Disconnected mounts the component the way the first HTTP render does,
// without a socket.
func Disconnected() MountOption {
	return func(lvt *LiveViewTest) {
		lvt.connected = false
	}
}

// Mount creates and mounts a component for testing. The socket is closed
// when the test ends.
func Mount(t testing.TB, comp core.Component, opts ...MountOption) *LiveViewTest {
	t.Helper()

	lvt := &LiveViewTest{
		component: comp,
		transport: NewMockSocket(),
		params:    core.Params{},
		session:   core.Session{},
		connected: true,
		t:         t,
	}
	for _, opt := range opts {
		opt(lvt)
	}

	if aware, ok := comp.(core.SocketAware); ok && lvt.connected {
		lvt.socket = core.NewSocket(lvt.transport.ID, lvt.transport)
		aware.SetSocket(lvt.socket)
		t.Cleanup(func() { lvt.socket.Close() })
	}

	if err := comp.Mount(lvt.context(), lvt.params, lvt.session); err != nil {
		t.Fatalf("Mount failed: %v", err)
	}
	lvt.render()
	return lvt
}

func (lvt *LiveViewTest) context() context.Context {
	return core.BuildContext(context.Background(), lvt.socket, lvt.params)
}

// Event sends a browser event and fails the test if the component rejects it.
func (lvt *LiveViewTest) Event(name string, payload map[string]any) *LiveViewTest {
	lvt.t.Helper()
	if err := lvt.EventErr(name, payload); err != nil {
		lvt.t.Errorf("HandleEvent %s failed: %v", name, err)
	}
	return lvt
}

// EventErr sends a browser event and returns the component's error.
func (lvt *LiveViewTest) EventErr(name string, payload map[string]any) error {
	if payload == nil {
		payload = map[string]any{}
	}
	lvt.events = append(lvt.events, Event{Name: name, Payload: payload})

	if err := lvt.component.HandleEvent(lvt.context(), name, payload); err != nil {
		return err
	}
	lvt.render()
	return nil
}

// Click sends an lv-click event. Values come from lv-value-* attributes.
func (lvt *LiveViewTest) Click(event string, values map[string]any) *LiveViewTest {
	lvt.t.Helper()
	return lvt.Event(event, values)
}

// Change sends an lv-change event carrying value.
func (lvt *LiveViewTest) Change(event, value string) *LiveViewTest {
	lvt.t.Helper()
	return lvt.Event(event, map[string]any{"value": value})
}

// Submit sends an lv-submit event with the form fields.
func (lvt *LiveViewTest) Submit(event string, fields map[string]string) *LiveViewTest {
	lvt.t.Helper()
	payload := make(map[string]any, len(fields))
	for k, v := range fields {
		payload[k] = v
	}
	return lvt.Event(event, payload)
}

// Focus sends an lv-focus event.
func (lvt *LiveViewTest) Focus(event string) *LiveViewTest {
	lvt.t.Helper()
	return lvt.Event(event, nil)
}

// Blur sends an lv-blur event.
func (lvt *LiveViewTest) Blur(event string) *LiveViewTest {
	lvt.t.Helper()
	return lvt.Event(event, nil)
}

// SendInfo delivers a server message to the component.
func (lvt *LiveViewTest) SendInfo(msg any) *LiveViewTest {
	lvt.t.Helper()

	if err := lvt.component.HandleInfo(lvt.context(), msg); err != nil {
		lvt.t.Errorf("HandleInfo failed: %v", err)
		return lvt
	}
	lvt.render()
	return lvt
}

// DrainInfo delivers every message already queued on the socket and
// returns how many there were.
func (lvt *LiveViewTest) DrainInfo() int {
	lvt.t.Helper()
	if lvt.socket == nil {
		return 0
	}

	n := 0
	for {
		select {
		case msg := <-lvt.socket.Info():
			lvt.SendInfo(msg)
			n++
		default:
			return n
		}
	}
}

// AwaitInfo waits up to timeout for one queued message and delivers it.
// It is meant for results of background work such as fetches.
func (lvt *LiveViewTest) AwaitInfo(timeout time.Duration) bool {
	lvt.t.Helper()
	if lvt.socket == nil {
		return false
	}

	select {
	case msg := <-lvt.socket.Info():
		lvt.SendInfo(msg)
		return true
	case <-time.After(timeout):
		return false
	}
}

func (lvt *LiveViewTest) render() {
	lvt.t.Helper()

	renderer := lvt.component.Render(lvt.context())
	if renderer == nil {
		lvt.t.Fatalf("Render returned nil")
	}

	var buf bytes.Buffer
	if err := renderer.Render(lvt.context(), &buf); err != nil {
		lvt.t.Fatalf("Render failed: %v", err)
	}
	lvt.rendered = buf.String()
}

// Rendered returns the current rendered HTML.
func (lvt *LiveViewTest) Rendered() string {
	return lvt.rendered
}

// AssertText verifies the rendered output contains text.
func (lvt *LiveViewTest) AssertText(text string) *LiveViewTest {
	lvt.t.Helper()
	if !strings.Contains(lvt.rendered, text) {
		lvt.t.Errorf("Text not found: %q\nRendered HTML:\n%s", text, lvt.rendered)
	}
	return lvt
}

// AssertNoText verifies the rendered output does not contain text.
func (lvt *LiveViewTest) AssertNoText(text string) *LiveViewTest {
	lvt.t.Helper()
	if strings.Contains(lvt.rendered, text) {
		lvt.t.Errorf("Text should not exist: %q", text)
	}
	return lvt
}

// AssertSlot verifies that the data-slot region id contains text.
func (lvt *LiveViewTest) AssertSlot(id, text string) *LiveViewTest {
	lvt.t.Helper()

	marker := `data-slot="` + id + `"`
	idx := strings.Index(lvt.rendered, marker)
	if idx == -1 {
		lvt.t.Errorf("Slot %q not found", id)
		return lvt
	}
	rest := lvt.rendered[idx+len(marker):]
	if end := strings.Index(rest, `data-slot="`); end != -1 {
		rest = rest[:end]
	}
	if !strings.Contains(rest, text) {
		lvt.t.Errorf("Slot %q does not contain %q:\n%s", id, text, rest)
	}
	return lvt
}

// Socket returns the socket given to the component, nil when disconnected.
func (lvt *LiveViewTest) Socket() *core.Socket {
	return lvt.socket
}

// Transport returns the mock transport under the socket.
func (lvt *LiveViewTest) Transport() *MockSocket {
	return lvt.transport
}

// Component returns the component under test.
func (lvt *LiveViewTest) Component() core.Component {
	return lvt.component
}

// Events returns all events that were processed.
func (lvt *LiveViewTest) Events() []Event {
	return lvt.events
}

// Terminate ends the component the way a closed connection does.
func (lvt *LiveViewTest) Terminate(reason core.TerminateReason) {
	lvt.t.Helper()
	if err := lvt.component.Terminate(lvt.context(), reason); err != nil {
		lvt.t.Errorf("Terminate failed: %v", err)
	}
	if lvt.socket != nil {
		lvt.socket.Close()
	}
}
