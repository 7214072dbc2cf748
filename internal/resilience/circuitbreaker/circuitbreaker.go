// Package circuitbreaker implements the per-dependency breaker that fails
// fast once a service keeps failing. Each protected dependency owns one
// CircuitBreaker for the life of the process; all state transitions happen
// under its lock, and the protected call itself runs with no lock held.
//
// States follow the classic machine: CLOSED admits everything, OPEN rejects
// everything until OpenTimeout has elapsed since the last failure, and
// HALF_OPEN admits probe calls until enough successes close the circuit or
// a single failure reopens it. The OPEN to HALF_OPEN move is evaluated
// lazily on the next Execute, never by a background timer. HALF_OPEN does
// not cap concurrent admissions: several in-flight probes may all pass the
// gate before the first one reports back.
package circuitbreaker

import (
	"log/slog"
	"sync"
	"time"

	"call-agent/internal/domain/fault"
)

// State identifies the breaker position in its lifecycle.
type State int

const (
	// StateClosed admits all calls and counts consecutive failures.
	StateClosed State = iota
	// StateOpen rejects all calls until OpenTimeout elapses.
	StateOpen
	// StateHalfOpen admits probe calls to test whether the dependency recovered.
	StateHalfOpen
)

// String returns the canonical label used in logs, alerts, and the failure log.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "CLOSED"
	case StateOpen:
		return "OPEN"
	case StateHalfOpen:
		return "HALF_OPEN"
	default:
		return "UNKNOWN"
	}
}

// Config holds the configuration for a circuit breaker.
// All fields are fixed once the breaker is constructed.
type Config struct {
	// Name is the protected service name for logging and metrics
	Name string

	// FailureThreshold is the number of consecutive classified failures
	// in CLOSED that opens the circuit
	FailureThreshold int

	// SuccessThreshold is the number of successes in HALF_OPEN that
	// closes the circuit
	SuccessThreshold int

	// OpenTimeout is how long to stay OPEN after the last failure before
	// admitting probe calls
	OpenTimeout time.Duration

	// OnOpen, when set, is invoked with the service name each time the
	// breaker transitions to OPEN. It runs while the breaker lock is held,
	// so it must not call back into the breaker. Panics are recovered and
	// discarded.
	OnOpen func(service string)
}

// DefaultConfig returns the standard breaker configuration: three strikes
// to open, two successes to close, thirty seconds in the penalty box.
func DefaultConfig(name string) Config {
	return Config{
		Name:             name,
		FailureThreshold: 3,
		SuccessThreshold: 2,
		OpenTimeout:      30 * time.Second,
	}
}

// CircuitBreaker is the per-dependency state machine. The zero value is not
// usable; construct with New.
type CircuitBreaker struct {
	name             string
	failureThreshold int
	successThreshold int
	openTimeout      time.Duration
	onOpen           func(string)

	mu          sync.RWMutex
	state       State
	failures    int
	successes   int
	lastFailure time.Time // zero value means no failure recorded
}

// New creates a circuit breaker in the CLOSED state.
func New(cfg Config) *CircuitBreaker {
	return &CircuitBreaker{
		name:             cfg.Name,
		failureThreshold: cfg.FailureThreshold,
		successThreshold: cfg.SuccessThreshold,
		openTimeout:      cfg.OpenTimeout,
		onOpen:           cfg.OnOpen,
		state:            StateClosed,
	}
}

// Execute runs fn through the breaker.
//
// If the circuit is OPEN and the timeout has not elapsed, fn is never
// invoked and a *fault.CircuitOpenError comes back immediately. Otherwise
// fn runs with no lock held, and its outcome feeds the state machine:
// nil error counts as a success, transient and permanent faults count as
// failures, and any other error passes through without touching breaker
// state at all.
func (cb *CircuitBreaker) Execute(fn func() (interface{}, error)) (interface{}, error) {
	if err := cb.allow(); err != nil {
		return nil, err
	}

	result, err := fn()

	switch {
	case err == nil:
		cb.onSuccess()
	case fault.IsTransient(err) || fault.IsPermanent(err):
		cb.onFailure()
	}

	return result, err
}

// allow decides whether a call may proceed, applying the lazy
// OPEN to HALF_OPEN transition when the timeout has elapsed.
func (cb *CircuitBreaker) allow() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == StateOpen {
		if !cb.lastFailure.IsZero() && time.Since(cb.lastFailure) >= cb.openTimeout {
			cb.transitionTo(StateHalfOpen)
			return nil
		}
		recordRejection(cb.name)
		return fault.CircuitOpen(cb.name)
	}

	return nil
}

func (cb *CircuitBreaker) onSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	recordCall(cb.name, "success")

	if cb.state == StateHalfOpen {
		cb.successes++
		if cb.successes >= cb.successThreshold {
			cb.transitionTo(StateClosed)
		}
		return
	}

	cb.failures = 0
}

func (cb *CircuitBreaker) onFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	recordCall(cb.name, "failure")
	cb.lastFailure = time.Now()

	switch cb.state {
	case StateHalfOpen:
		// One failed probe sends the breaker straight back to OPEN.
		cb.transitionTo(StateOpen)
	case StateClosed:
		cb.failures++
		if cb.failures >= cb.failureThreshold {
			cb.transitionTo(StateOpen)
		}
	}
}

// transitionTo moves the breaker to next, zeroing both counters. Moving to
// CLOSED also clears the last failure timestamp. Callers must hold cb.mu.
func (cb *CircuitBreaker) transitionTo(next State) {
	prev := cb.state
	cb.state = next
	cb.failures = 0
	cb.successes = 0
	if next == StateClosed {
		cb.lastFailure = time.Time{}
	}

	recordStateChange(cb.name, next)

	if next == StateOpen {
		slog.Warn("circuit breaker state changed",
			slog.String("circuit", cb.name),
			slog.String("from", prev.String()),
			slog.String("to", next.String()))
		cb.notifyOpen()
		return
	}

	slog.Info("circuit breaker state changed",
		slog.String("circuit", cb.name),
		slog.String("from", prev.String()),
		slog.String("to", next.String()))
}

// notifyOpen fires the OnOpen hook under cb.mu. A panicking hook is
// recovered so it cannot leave the breaker in a broken state.
func (cb *CircuitBreaker) notifyOpen() {
	if cb.onOpen == nil {
		return
	}
	defer func() {
		_ = recover()
	}()
	cb.onOpen(cb.name)
}

// State returns the stored state. A breaker that is OPEN past its timeout
// still reads OPEN here; the transition to HALF_OPEN happens only when the
// next Execute admits a probe call.
func (cb *CircuitBreaker) State() State {
	cb.mu.RLock()
	defer cb.mu.RUnlock()
	return cb.state
}

// Reset forces the breaker to CLOSED from any state, clearing the counters
// and the last failure timestamp. The health monitor calls this when a
// liveness probe confirms the dependency has recovered.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.transitionTo(StateClosed)
}

// Name returns the name of the protected service.
func (cb *CircuitBreaker) Name() string {
	return cb.name
}

// IsOpen returns true if the circuit breaker is in the open state.
func (cb *CircuitBreaker) IsOpen() bool {
	return cb.State() == StateOpen
}
