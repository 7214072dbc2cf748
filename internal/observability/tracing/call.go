package tracing

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"call-agent/internal/domain/fault"
)

// StartCall creates a client span for one guarded dependency call.
// The span covers the whole resilience pipeline for the call: every retry
// attempt and the breaker decision land inside it.
//
// The returned context carries the span and must be passed down to the
// dependency client so nested instrumentation attaches correctly.
//
// Example usage:
//
//	ctx, span := tracing.StartCall(ctx, "elevenlabs")
//	result, retries, err := guard.Do(ctx, fn)
//	tracing.EndCall(span, retries, err)
func StartCall(ctx context.Context, service string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "call "+service,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("call.service", service),
		),
	)
}

// EndCall finalizes a call span with its outcome.
//
// It records the number of retries consumed and, on failure, the failure
// kind, the error itself, and an error status. Successful calls end with
// the span status untouched.
func EndCall(span trace.Span, retries int, err error) {
	span.SetAttributes(attribute.Int("call.retries", retries))

	if err != nil {
		span.SetAttributes(attribute.String("call.failure_kind", failureKind(err)))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	span.End()
}

// failureKind maps an error to its resilience classification label.
func failureKind(err error) string {
	switch {
	case fault.IsCircuitOpen(err):
		return "circuit_open"
	case fault.IsTransient(err):
		return "transient"
	case fault.IsPermanent(err):
		return "permanent"
	default:
		return "unknown"
	}
}
