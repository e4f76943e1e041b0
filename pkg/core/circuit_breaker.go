package core

import (
	"context"
	"errors"
	"sync/atomic"
	"time"
)

// ErrCircuitOpen is returned while a breaker rejects calls.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// CircuitState represents the state of a circuit breaker.
type CircuitState int32

const (
	// CircuitClosed lets every call through.
	CircuitClosed CircuitState = iota
	// CircuitOpen rejects calls until ResetTimeout has passed.
	CircuitOpen
	// CircuitHalfOpen lets trial calls through.
	CircuitHalfOpen
)

// String returns the string representation of the circuit state.
func (s CircuitState) String() string {
	switch s {
	case CircuitClosed:
		return "closed"
	case CircuitOpen:
		return "open"
	case CircuitHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// CircuitBreakerConfig configures the circuit breaker behavior.
type CircuitBreakerConfig struct {
	// MaxErrors is the number of consecutive errors before opening the circuit.
	MaxErrors int

	// ResetTimeout is how long the circuit stays open.
	ResetTimeout time.Duration

	// SuccessThreshold is the number of half-open successes needed to close.
	SuccessThreshold int

	// IsFailure decides whether an error counts against the breaker.
	// Nil counts every error except context cancellation.
	IsFailure func(error) bool

	// OnStateChange is called when the circuit state changes.
	OnStateChange func(from, to CircuitState)
}

// DefaultCircuitBreakerConfig returns the defaults used for upstream APIs.
func DefaultCircuitBreakerConfig() *CircuitBreakerConfig {
	return &CircuitBreakerConfig{
		MaxErrors:        5,
		ResetTimeout:     30 * time.Second,
		SuccessThreshold: 2,
	}
}

// CircuitBreaker stops calling a failing dependency for a while.
type CircuitBreaker struct {
	config *CircuitBreakerConfig

	state        atomic.Int32
	errorCount   atomic.Int32
	successCount atomic.Int32
	lastError    atomic.Int64
}

// NewCircuitBreaker creates a new circuit breaker with the given configuration.
func NewCircuitBreaker(config *CircuitBreakerConfig) *CircuitBreaker {
	if config == nil {
		config = DefaultCircuitBreakerConfig()
	}
	cb := &CircuitBreaker{config: config}
	cb.state.Store(int32(CircuitClosed))
	return cb
}

// State returns the current circuit state.
func (cb *CircuitBreaker) State() CircuitState {
	return CircuitState(cb.state.Load())
}

// Allow returns nil when a call may proceed and ErrCircuitOpen otherwise.
func (cb *CircuitBreaker) Allow() error {
	if cb.State() != CircuitOpen {
		return nil
	}
	lastErr := time.Unix(0, cb.lastError.Load())
	if time.Since(lastErr) > cb.config.ResetTimeout {
		cb.setState(CircuitHalfOpen)
		return nil
	}
	return ErrCircuitOpen
}

// RecordSuccess records a successful operation.
func (cb *CircuitBreaker) RecordSuccess() {
	switch cb.State() {
	case CircuitHalfOpen:
		if int(cb.successCount.Add(1)) >= cb.config.SuccessThreshold {
			cb.setState(CircuitClosed)
			cb.successCount.Store(0)
			cb.errorCount.Store(0)
		}
	default:
		cb.errorCount.Store(0)
	}
}

// RecordError records a failed operation.
func (cb *CircuitBreaker) RecordError() {
	cb.lastError.Store(time.Now().UnixNano())

	switch cb.State() {
	case CircuitClosed:
		if int(cb.errorCount.Add(1)) >= cb.config.MaxErrors {
			cb.setState(CircuitOpen)
		}
	case CircuitHalfOpen:
		cb.setState(CircuitOpen)
		cb.successCount.Store(0)
	}
}

// Reset manually closes the circuit.
func (cb *CircuitBreaker) Reset() {
	cb.setState(CircuitClosed)
	cb.errorCount.Store(0)
	cb.successCount.Store(0)
}

func (cb *CircuitBreaker) setState(newState CircuitState) {
	oldState := CircuitState(cb.state.Swap(int32(newState)))
	if cb.config.OnStateChange != nil && oldState != newState {
		cb.config.OnStateChange(oldState, newState)
	}
}

func (cb *CircuitBreaker) record(err error) {
	if err == nil {
		cb.RecordSuccess()
		return
	}
	isFailure := cb.config.IsFailure
	if isFailure == nil {
		isFailure = func(err error) bool { return !errors.Is(err, context.Canceled) }
	}
	if isFailure(err) {
		cb.RecordError()
	}
}

// Execute runs fn with circuit breaker protection.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	if err := cb.Allow(); err != nil {
		return err
	}
	err := fn()
	cb.record(err)
	return err
}

// ExecuteWithResult runs fn with circuit breaker protection and returns its value.
func ExecuteWithResult[T any](cb *CircuitBreaker, fn func() (T, error)) (T, error) {
	var zero T
	if err := cb.Allow(); err != nil {
		return zero, err
	}
	result, err := fn()
	cb.record(err)
	return result, err
}
