// Package observability provides production-grade observability infrastructure
// including structured logging, Prometheus metrics, and OpenTelemetry tracing.
//
// This package centralizes observability concerns to enable:
//   - Correlating log entries across a campaign run
//   - Structured logging with context propagation
//   - Prometheus metrics for monitoring
//   - Distributed tracing of call attempts and retries
//
// Subpackages:
//   - logging: Structured logging utilities with slog
//   - metrics: Prometheus metrics registry and recorders
//   - tracing: OpenTelemetry tracing integration
//   - slo: Service level objective tracking for campaign outcomes
//
// Example usage:
//
//	import (
//	    "call-agent/internal/observability/logging"
//	    "call-agent/internal/observability/metrics"
//	)
//
//	func main() {
//	    logger := logging.NewLogger()
//	    logger.Info("agent started")
//
//	    metrics.RecordContactCall("succeeded", 2*time.Second, 0)
//	}
package observability
