package resilience

import "context"

// Failure categories recorded to the failure sink.
const (
	// CategoryTransient marks a call that failed transiently even after
	// all retry attempts
	CategoryTransient = "TRANSIENT_ERROR"

	// CategoryPermanent marks a call rejected with a non-retryable failure
	CategoryPermanent = "PERMANENT_ERROR"

	// CategoryCircuitOpen marks a call rejected without reaching the
	// dependency because its circuit was open
	CategoryCircuitOpen = "CIRCUIT_BREAKER_OPEN"
)

// FailureRecord is one structured failure entry for the error log.
type FailureRecord struct {
	// Service is the dependency the failed call was aimed at
	Service string

	// Category is one of the Category* constants
	Category string

	// Message is the human-readable failure description
	Message string

	// RetryCount is the number of retries consumed before giving up;
	// zero for failures that are never retried
	RetryCount int

	// CircuitState is the breaker state at the time the failure was
	// recorded (CLOSED, OPEN, or HALF_OPEN)
	CircuitState string
}

// FailureSink receives structured failure records. Implementations must be
// safe for concurrent use and should return quickly; Guard calls Record on
// the caller's goroutine.
type FailureSink interface {
	Record(ctx context.Context, rec FailureRecord)
}
