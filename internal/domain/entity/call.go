package entity

import "time"

// CallOutcome classifies how a single contact call ended.
type CallOutcome string

const (
	// CallSucceeded means both pipeline steps completed and the audio
	// was produced.
	CallSucceeded CallOutcome = "SUCCEEDED"

	// CallSkipped means a circuit breaker rejected the call before any
	// work happened; the contact was skipped, not failed.
	CallSkipped CallOutcome = "SKIPPED"

	// CallFailedTransient means the call exhausted its retry budget on a
	// retryable dependency failure.
	CallFailedTransient CallOutcome = "FAILED_TRANSIENT"

	// CallFailedPermanent means a dependency rejected the call outright;
	// retrying would not have helped.
	CallFailedPermanent CallOutcome = "FAILED_PERMANENT"

	// CallFailedUnexpected means the call died on an error the fault
	// taxonomy does not classify.
	CallFailedUnexpected CallOutcome = "FAILED_UNEXPECTED"
)

// Failed reports whether the outcome counts as a failure for campaign
// statistics. Skipped contacts are degraded service, not failures.
func (o CallOutcome) Failed() bool {
	switch o {
	case CallFailedTransient, CallFailedPermanent, CallFailedUnexpected:
		return true
	default:
		return false
	}
}

// CallRecord captures the result of one attempted call within a campaign.
type CallRecord struct {
	// Contact is the person the call was placed for.
	Contact Contact

	// Outcome classifies how the call ended.
	Outcome CallOutcome

	// Service names the dependency behind a non-success outcome.
	// Empty when the call succeeded.
	Service string

	// Detail carries the failure message for non-success outcomes.
	Detail string

	// Retries is the number of retries consumed before the final result.
	Retries int

	// StartedAt is when the call pipeline began for this contact.
	StartedAt time.Time

	// Duration covers the whole pipeline including retries and backoff.
	Duration time.Duration
}
