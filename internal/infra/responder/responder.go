// Package responder provides language-model implementations for the call agent.
// It includes adapters for OpenAI and Claude (Anthropic) APIs plus a
// deterministic mock used in demos and tests. Adapters carry no retry or
// circuit breaker logic of their own; they classify provider failures into
// the fault kinds the resilience layer acts on.
package responder

import (
	"fmt"
	"net/http"

	"call-agent/internal/domain/fault"
)

// ServiceName identifies the language-model dependency in faults, alerts,
// and failure log records.
const ServiceName = "LLM"

// classifyStatus maps an HTTP status code from a provider API to a fault
// kind. Rate limiting, request timeouts and server errors are transient;
// every other rejection is permanent.
func classifyStatus(status int, detail string, err error) error {
	switch {
	case status == http.StatusTooManyRequests,
		status == http.StatusRequestTimeout,
		status >= http.StatusInternalServerError:
		return fault.Transient(ServiceName, fmt.Sprintf("Service temporarily unavailable (%d)", status), err)
	default:
		if detail != "" {
			return fault.Permanent(ServiceName, fmt.Sprintf("Request rejected with status %d: %s", status, detail), err)
		}
		return fault.Permanent(ServiceName, fmt.Sprintf("Request rejected with status %d", status), err)
	}
}
