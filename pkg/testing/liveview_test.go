package testing

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/linkmeta/metasite/pkg/core"
)

type tick struct{}

type toggle struct {
	core.BaseComponent
	on      bool
	label   string
	ticks   int
	stopped bool
	reason  core.TerminateReason
}

func (c *toggle) Name() string { return "toggle" }

func (c *toggle) Mount(ctx context.Context, params core.Params, session core.Session) error {
	c.label = params.GetDefault("label", "off")
	if c.Connected() {
		c.Socket().SendAfter(tick{}, time.Millisecond)
	}
	return nil
}

func (c *toggle) HandleEvent(ctx context.Context, event string, payload map[string]any) error {
	switch event {
	case "toggle":
		c.on = !c.on
	case "rename":
		c.label, _ = payload["value"].(string)
	default:
		return errors.New("unknown event")
	}
	return nil
}

func (c *toggle) HandleInfo(ctx context.Context, msg any) error {
	if _, ok := msg.(tick); ok {
		c.ticks++
	}
	return nil
}

func (c *toggle) Terminate(ctx context.Context, reason core.TerminateReason) error {
	c.stopped = true
	c.reason = reason
	return nil
}

func (c *toggle) Render(ctx context.Context) core.Renderer {
	return core.HTML(fmt.Sprintf(`<div><span data-slot="state">%t</span><b data-slot="label">%s</b><i data-slot="ticks">%d</i></div>`,
		c.on, c.label, c.ticks))
}

func TestMount_ParamsAndRender(t *testing.T) {
	lvt := Mount(t, &toggle{}, WithParams(core.Params{"label": "lamp"}))

	lvt.AssertSlot("label", "lamp").AssertSlot("state", "false")
	if lvt.Socket() == nil {
		t.Fatal("connected mount should have a socket")
	}
}

func TestMount_Disconnected(t *testing.T) {
	lvt := Mount(t, &toggle{}, Disconnected())

	if lvt.Socket() != nil {
		t.Error("disconnected mount should not have a socket")
	}
	if lvt.DrainInfo() != 0 {
		t.Error("no info expected without a socket")
	}
}

func TestEvents(t *testing.T) {
	lvt := Mount(t, &toggle{})

	lvt.Click("toggle", nil).AssertSlot("state", "true")
	lvt.Change("rename", "desk").AssertSlot("label", "desk")

	if err := lvt.EventErr("explode", nil); err == nil {
		t.Error("expected an error for an unknown event")
	}
	if n := len(lvt.Events()); n != 3 {
		t.Errorf("expected 3 recorded events, got %d", n)
	}
}

func TestAwaitInfo(t *testing.T) {
	lvt := Mount(t, &toggle{})

	if !lvt.AwaitInfo(time.Second) {
		t.Fatal("expected the tick queued at mount")
	}
	lvt.AssertSlot("ticks", "1")
}

func TestTerminate(t *testing.T) {
	c := &toggle{}
	lvt := Mount(t, c)
	lvt.Terminate(core.TerminateShutdown)

	if !c.stopped || c.reason != core.TerminateShutdown {
		t.Errorf("expected shutdown termination, got %v", c.reason)
	}
	if lvt.Socket().IsConnected() {
		t.Error("socket should be closed")
	}
}

func TestMockSocket(t *testing.T) {
	ms := NewMockSocket()
	socket := core.NewSocket(ms.ID, ms)

	if err := socket.SendDiff(&core.DiffPayload{Version: 1, Slots: map[string]string{"price": "$24"}}); err != nil {
		t.Fatalf("SendDiff: %v", err)
	}
	diffs := ms.Diffs()
	if len(diffs) != 1 {
		t.Fatalf("expected 1 diff, got %d", len(diffs))
	}
	if slots, _ := diffs[0]["s"].(map[string]string); slots["price"] != "$24" {
		t.Errorf("unexpected diff %v", diffs[0])
	}

	boom := errors.New("boom")
	ms.FailWith(boom)
	if err := ms.Send(core.Message{}); !errors.Is(err, boom) {
		t.Errorf("expected boom, got %v", err)
	}
	ms.FailWith(nil)

	ms.Close()
	if err := ms.Send(core.Message{}); !errors.Is(err, core.ErrSocketClosed) {
		t.Errorf("expected ErrSocketClosed, got %v", err)
	}
	if ms.IsConnected() {
		t.Error("closed mock should not be connected")
	}
	if len(ms.Sent()) != 1 {
		t.Errorf("expected 1 recorded message, got %d", len(ms.Sent()))
	}
}
