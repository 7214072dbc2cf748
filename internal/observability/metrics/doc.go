// Package metrics provides Prometheus metrics registry and recording utilities.
//
// This package centralizes all application metrics including:
//   - Call pipeline metrics (outcome counts, durations, retries)
//   - Campaign metrics (runs, duration, queue size)
//
// All metrics are automatically registered with the Prometheus default registry
// and exposed via the /metrics endpoint.
//
// Example usage:
//
//	import "call-agent/internal/observability/metrics"
//
//	func callContact(contact entity.Contact) {
//	    start := time.Now()
//	    // ... run the call pipeline ...
//
//	    metrics.RecordContactCall("succeeded", time.Since(start), retries)
//	}
package metrics
