// Package tracing provides OpenTelemetry tracing integration.
//
// Spans are created around guarded dependency calls so that a single trace
// shows the full resilience pipeline for one call: retry attempts, breaker
// rejections, and the final outcome.
//
// The package only uses the OpenTelemetry API; wiring an SDK exporter is
// the binary's job. Without a configured provider the spans are no-ops.
//
// Example usage:
//
//	ctx, span := tracing.StartCall(ctx, "elevenlabs")
//	result, retries, err := guard.Do(ctx, fn)
//	tracing.EndCall(span, retries, err)
package tracing
