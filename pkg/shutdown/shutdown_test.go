package shutdown

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestShutdown_RunsHooksInPriorityOrder(t *testing.T) {
	h := NewHandler(nil)

	var order []string
	record := func(name string) func(context.Context) error {
		return func(context.Context) error {
			order = append(order, name)
			return nil
		}
	}
	h.RegisterFunc("telemetry", PriorityTelemetry, record("telemetry"))
	h.RegisterFunc("http", PriorityHTTP, record("http"))
	h.RegisterFunc("poller", PriorityWorkers, record("poller"))
	h.RegisterFunc("sockets", PriorityLive, record("sockets"))
	h.RegisterFunc("cache", PriorityWorkers, record("cache"))

	if err := h.Shutdown(); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}

	want := []string{"http", "sockets", "poller", "cache", "telemetry"}
	if len(order) != len(want) {
		t.Fatalf("expected %v, got %v", want, order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, order)
		}
	}
}

func TestShutdown_JoinsErrors(t *testing.T) {
	h := NewHandler(nil)
	errA := errors.New("a failed")
	h.RegisterFunc("a", 1, func(context.Context) error { return errA })
	h.RegisterFunc("b", 2, func(context.Context) error { return nil })

	var completed []string
	h.config.OnHookComplete = func(name string, err error, d time.Duration) {
		completed = append(completed, name)
	}

	err := h.Shutdown()
	if !errors.Is(err, errA) {
		t.Errorf("expected errA, got %v", err)
	}
	if len(completed) != 2 {
		t.Errorf("expected both hooks reported, got %v", completed)
	}
}

func TestShutdown_Timeout(t *testing.T) {
	h := NewHandler(&Config{Timeout: 10 * time.Millisecond})
	h.RegisterFunc("slow", 1, func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	ran := false
	h.RegisterFunc("after", 2, func(context.Context) error {
		ran = true
		return nil
	})

	if err := h.Shutdown(); !errors.Is(err, ErrShutdownTimeout) {
		t.Errorf("expected ErrShutdownTimeout, got %v", err)
	}
	if ran {
		t.Error("hooks after the timeout should not run")
	}
}

func TestShutdown_Twice(t *testing.T) {
	h := NewHandler(nil)
	if err := h.Shutdown(); err != nil {
		t.Fatalf("first Shutdown: %v", err)
	}
	if err := h.Shutdown(); !errors.Is(err, ErrAlreadyClosed) {
		t.Errorf("expected ErrAlreadyClosed, got %v", err)
	}
	if !h.IsClosed() {
		t.Error("expected closed")
	}
	select {
	case <-h.Done():
	default:
		t.Error("Done should be closed")
	}
}

func TestWait_ContextCanceled(t *testing.T) {
	h := NewHandler(nil)
	called := false
	h.RegisterFunc("http", PriorityHTTP, func(context.Context) error {
		called = true
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := h.Wait(ctx); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if !called {
		t.Error("hooks should run when the context ends")
	}
}

type closer struct{ closed bool }

func (c *closer) Close() error {
	c.closed = true
	return nil
}

func TestCloseableHook(t *testing.T) {
	c := &closer{}
	h := NewHandler(nil)
	h.Register(CloseableHook("pubsub", PriorityWorkers, c))
	h.Shutdown()

	if !c.closed {
		t.Error("expected Close to be called")
	}
}
