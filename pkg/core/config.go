package core

import "time"

// TimeoutConfig bounds the callbacks the router makes into components.
type TimeoutConfig struct {
	// ComponentMount is the timeout for Mount calls.
	ComponentMount time.Duration

	// ComponentEvent is the timeout for HandleEvent and HandleInfo calls.
	ComponentEvent time.Duration

	// WebSocketWrite is the write timeout for outgoing frames.
	WebSocketWrite time.Duration

	// SessionIdle is how long a session may go without activity.
	SessionIdle time.Duration
}

// DefaultTimeoutConfig returns the timeouts used by the router.
func DefaultTimeoutConfig() TimeoutConfig {
	return TimeoutConfig{
		ComponentMount: 5 * time.Second,
		ComponentEvent: 3 * time.Second,
		WebSocketWrite: 10 * time.Second,
		SessionIdle:    30 * time.Minute,
	}
}
