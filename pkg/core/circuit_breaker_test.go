package core

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestCircuitBreaker_Initial(t *testing.T) {
	cb := NewCircuitBreaker(nil)

	if cb.State() != CircuitClosed {
		t.Errorf("expected initial state Closed, got %v", cb.State())
	}
	if err := cb.Allow(); err != nil {
		t.Errorf("expected Allow() to succeed, got %v", err)
	}
}

func TestCircuitBreaker_OpenAfterErrors(t *testing.T) {
	cb := NewCircuitBreaker(&CircuitBreakerConfig{
		MaxErrors:        3,
		ResetTimeout:     time.Second,
		SuccessThreshold: 2,
	})

	for i := 0; i < 3; i++ {
		cb.RecordError()
	}

	if cb.State() != CircuitOpen {
		t.Errorf("expected state Open after 3 errors, got %v", cb.State())
	}
	if err := cb.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("expected ErrCircuitOpen, got %v", err)
	}
}

func TestCircuitBreaker_HalfOpenThenClosed(t *testing.T) {
	cb := NewCircuitBreaker(&CircuitBreakerConfig{
		MaxErrors:        2,
		ResetTimeout:     20 * time.Millisecond,
		SuccessThreshold: 2,
	})
	cb.RecordError()
	cb.RecordError()

	time.Sleep(40 * time.Millisecond)

	if err := cb.Allow(); err != nil {
		t.Fatalf("expected Allow after reset timeout, got %v", err)
	}
	if cb.State() != CircuitHalfOpen {
		t.Fatalf("expected half-open, got %v", cb.State())
	}

	cb.RecordSuccess()
	if cb.State() != CircuitHalfOpen {
		t.Errorf("one success should keep half-open, got %v", cb.State())
	}
	cb.RecordSuccess()
	if cb.State() != CircuitClosed {
		t.Errorf("expected closed, got %v", cb.State())
	}
}

func TestCircuitBreaker_ErrorInHalfOpenReopens(t *testing.T) {
	cb := NewCircuitBreaker(&CircuitBreakerConfig{
		MaxErrors:        1,
		ResetTimeout:     10 * time.Millisecond,
		SuccessThreshold: 1,
	})
	cb.RecordError()
	time.Sleep(20 * time.Millisecond)
	_ = cb.Allow()

	cb.RecordError()
	if cb.State() != CircuitOpen {
		t.Errorf("expected open, got %v", cb.State())
	}
}

func TestCircuitBreaker_ExecuteIgnoresCancellation(t *testing.T) {
	cb := NewCircuitBreaker(&CircuitBreakerConfig{
		MaxErrors:        1,
		ResetTimeout:     time.Minute,
		SuccessThreshold: 1,
	})

	err := cb.Execute(func() error { return context.Canceled })
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if cb.State() != CircuitClosed {
		t.Errorf("cancellation should not trip the breaker, got %v", cb.State())
	}

	_ = cb.Execute(func() error { return errors.New("boom") })
	if cb.State() != CircuitOpen {
		t.Errorf("expected open, got %v", cb.State())
	}
}

func TestCircuitBreaker_ExecuteWithResult(t *testing.T) {
	cb := NewCircuitBreaker(nil)

	got, err := ExecuteWithResult(cb, func() (string, error) { return "ok", nil })
	if err != nil || got != "ok" {
		t.Errorf("expected ok, got %q, %v", got, err)
	}

	cb.Reset()
	cb.config.IsFailure = func(error) bool { return true }
	for i := 0; i < cb.config.MaxErrors; i++ {
		_, _ = ExecuteWithResult(cb, func() (int, error) { return 0, errors.New("x") })
	}
	if _, err := ExecuteWithResult(cb, func() (int, error) { return 1, nil }); !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("expected ErrCircuitOpen, got %v", err)
	}
}

func TestCircuitBreaker_OnStateChange(t *testing.T) {
	var transitions []string
	cb := NewCircuitBreaker(&CircuitBreakerConfig{
		MaxErrors:        1,
		ResetTimeout:     time.Minute,
		SuccessThreshold: 1,
		OnStateChange: func(from, to CircuitState) {
			transitions = append(transitions, from.String()+"->"+to.String())
		},
	})

	cb.RecordError()
	cb.Reset()

	want := []string{"closed->open", "open->closed"}
	if len(transitions) != len(want) {
		t.Fatalf("expected %v, got %v", want, transitions)
	}
	for i := range want {
		if transitions[i] != want[i] {
			t.Errorf("transition %d: expected %s, got %s", i, want[i], transitions[i])
		}
	}
}
