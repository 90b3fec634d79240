package registry

import (
	"errors"
	"sync"
	"time"
)

// CircuitState represents the state of a circuit breaker.
type CircuitState int

const (
	// CircuitClosed is the normal operating state.
	CircuitClosed CircuitState = iota
	// CircuitOpen means requests fail fast.
	CircuitOpen
	// CircuitHalfOpen allows a single probe request to test recovery.
	CircuitHalfOpen
)

const (
	// DefaultFailureThreshold opens a circuit after this many consecutive
	// failures.
	DefaultFailureThreshold = 5
	// DefaultResetTimeout is how long an open circuit waits before a
	// recovery probe.
	DefaultResetTimeout = 30 * time.Second
)

// ErrCircuitOpen is returned when a host's circuit breaker is open.
var ErrCircuitOpen = errors.New("circuit breaker is open: registry temporarily unavailable")

// CircuitBreaker tracks failures per registry host and fails fast after
// consecutive failures, so one misbehaving registry cannot stall every
// lookup in a batch.
type CircuitBreaker struct {
	mu               sync.RWMutex
	circuits         map[string]*circuit
	failureThreshold int
	resetTimeout     time.Duration
}

type circuit struct {
	state           CircuitState
	failures        int
	lastStateChange time.Time
}

// NewCircuitBreaker creates a circuit breaker with default settings.
func NewCircuitBreaker() *CircuitBreaker {
	return NewCircuitBreakerWithConfig(DefaultFailureThreshold, DefaultResetTimeout)
}

// NewCircuitBreakerWithConfig creates a circuit breaker with custom settings.
func NewCircuitBreakerWithConfig(failureThreshold int, resetTimeout time.Duration) *CircuitBreaker {
	if failureThreshold <= 0 {
		failureThreshold = DefaultFailureThreshold
	}
	if resetTimeout <= 0 {
		resetTimeout = DefaultResetTimeout
	}
	return &CircuitBreaker{
		circuits:         make(map[string]*circuit),
		failureThreshold: failureThreshold,
		resetTimeout:     resetTimeout,
	}
}

// Allow reports whether a request to the given host should proceed.
func (cb *CircuitBreaker) Allow(host string) bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	c := cb.getOrCreate(host)

	switch c.state {
	case CircuitClosed:
		return true
	case CircuitOpen:
		if time.Since(c.lastStateChange) >= cb.resetTimeout {
			c.state = CircuitHalfOpen
			c.lastStateChange = time.Now()
			return true
		}
		return false
	case CircuitHalfOpen:
		// One probe at a time; others fail fast until it completes.
		return false
	default:
		return true
	}
}

// RecordSuccess records a successful request, closing the circuit.
func (cb *CircuitBreaker) RecordSuccess(host string) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	c := cb.getOrCreate(host)
	c.failures = 0
	if c.state != CircuitClosed {
		c.state = CircuitClosed
		c.lastStateChange = time.Now()
	}
}

// RecordFailure records a failed request, potentially opening the circuit.
func (cb *CircuitBreaker) RecordFailure(host string) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	c := cb.getOrCreate(host)
	c.failures++

	switch c.state {
	case CircuitClosed:
		if c.failures >= cb.failureThreshold {
			c.state = CircuitOpen
			c.lastStateChange = time.Now()
		}
	case CircuitHalfOpen:
		c.state = CircuitOpen
		c.lastStateChange = time.Now()
	}
}

// State returns the current circuit state for a host.
func (cb *CircuitBreaker) State(host string) CircuitState {
	cb.mu.RLock()
	defer cb.mu.RUnlock()

	if c, exists := cb.circuits[host]; exists {
		if c.state == CircuitOpen && time.Since(c.lastStateChange) >= cb.resetTimeout {
			return CircuitHalfOpen
		}
		return c.state
	}
	return CircuitClosed
}

// Reset clears the circuit for a host.
func (cb *CircuitBreaker) Reset(host string) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	delete(cb.circuits, host)
}

// getOrCreate returns the circuit for a host. Caller must hold the lock.
func (cb *CircuitBreaker) getOrCreate(host string) *circuit {
	if c, exists := cb.circuits[host]; exists {
		return c
	}
	c := &circuit{state: CircuitClosed, lastStateChange: time.Now()}
	cb.circuits[host] = c
	return c
}
