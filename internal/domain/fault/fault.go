// Package fault defines the error kinds that drive every resilience
// decision in this codebase. Dependency adapters classify their failures
// into exactly one kind; the circuit breaker, retry executor, and call
// agent key their behavior off that classification instead of inspecting
// transport details.
package fault

import (
	"errors"
	"fmt"
)

// TransientError represents a recoverable failure such as a timeout, a 503,
// or a momentary network drop. Transient failures are retried and count
// toward opening the circuit breaker.
//
// RetryCount is zero until the retry executor exhausts its attempts, at
// which point it records how many retries were consumed before giving up.
type TransientError struct {
	Service    string
	Message    string
	RetryCount int
	Err        error
}

func (e *TransientError) Error() string {
	if e.Service != "" {
		return fmt.Sprintf("%s: %s", e.Service, e.Message)
	}
	return e.Message
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// PermanentError represents a failure that no amount of retrying will fix:
// invalid input, failed authentication, exhausted quota. Permanent failures
// are surfaced immediately but still count toward opening the breaker,
// since a dependency rejecting every request is not healthy either.
type PermanentError struct {
	Service string
	Message string
	Err     error
}

func (e *PermanentError) Error() string {
	if e.Service != "" {
		return fmt.Sprintf("%s: %s", e.Service, e.Message)
	}
	return e.Message
}

func (e *PermanentError) Unwrap() error {
	return e.Err
}

// CircuitOpenError is the fail-fast signal returned when a call is rejected
// because the service's circuit breaker is OPEN. It originates in the
// resilience layer, not in the dependency, so it is never retried and never
// feeds back into breaker bookkeeping.
type CircuitOpenError struct {
	Service string
}

func (e *CircuitOpenError) Error() string {
	return fmt.Sprintf("circuit breaker is OPEN for %s", e.Service)
}

// Transient builds a TransientError. err may be nil when there is no
// underlying cause worth preserving.
func Transient(service, message string, err error) *TransientError {
	return &TransientError{Service: service, Message: message, Err: err}
}

// Permanent builds a PermanentError. err may be nil.
func Permanent(service, message string, err error) *PermanentError {
	return &PermanentError{Service: service, Message: message, Err: err}
}

// CircuitOpen builds the fail-fast error for the named service.
func CircuitOpen(service string) *CircuitOpenError {
	return &CircuitOpenError{Service: service}
}

// IsTransient reports whether err is, or wraps, a TransientError.
func IsTransient(err error) bool {
	var t *TransientError
	return errors.As(err, &t)
}

// AsTransient extracts the TransientError from err's chain, if present.
func AsTransient(err error) (*TransientError, bool) {
	var t *TransientError
	if errors.As(err, &t) {
		return t, true
	}
	return nil, false
}

// IsPermanent reports whether err is, or wraps, a PermanentError.
func IsPermanent(err error) bool {
	var p *PermanentError
	return errors.As(err, &p)
}

// AsPermanent extracts the PermanentError from err's chain, if present.
func AsPermanent(err error) (*PermanentError, bool) {
	var p *PermanentError
	if errors.As(err, &p) {
		return p, true
	}
	return nil, false
}

// IsCircuitOpen reports whether err is, or wraps, a CircuitOpenError.
func IsCircuitOpen(err error) bool {
	var c *CircuitOpenError
	return errors.As(err, &c)
}

// ServiceName returns the originating service recorded on a classified
// error, or "" when err carries no classification.
func ServiceName(err error) string {
	var t *TransientError
	if errors.As(err, &t) {
		return t.Service
	}
	var p *PermanentError
	if errors.As(err, &p) {
		return p.Service
	}
	var c *CircuitOpenError
	if errors.As(err, &c) {
		return c.Service
	}
	return ""
}
