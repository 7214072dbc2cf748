package entity

import "time"

// Alert severity levels. They travel as plain strings so collaborators can
// pass them around without extra conversions.
const (
	SeverityCritical = "CRITICAL"
	SeverityError    = "ERROR"
	SeverityWarning  = "WARNING"
	SeverityInfo     = "INFO"
)

// Alert represents an operational alert raised by the call pipeline, such as
// a circuit breaker trip, a dependency outage, or a failed call. The Body
// holds the composed message shared by every delivery channel:
//
//	[SEVERITY] Service: name
//	Time: RFC3339 timestamp
//
//	message
type Alert struct {
	Subject  string
	Body     string
	Severity string
	Service  string
	SentAt   time.Time
}
