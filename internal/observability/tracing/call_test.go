package tracing

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	oteltrace "go.opentelemetry.io/otel/trace"

	"call-agent/internal/domain/fault"
)

// setupExporter installs an in-memory exporter and rebinds the package
// tracer to it. The returned exporter collects finished spans.
func setupExporter(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()

	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
	)
	otel.SetTracerProvider(tp)
	tracer = otel.Tracer("call-agent")

	t.Cleanup(func() {
		otel.SetTracerProvider(sdktrace.NewTracerProvider())
		tracer = otel.Tracer("call-agent")
	})

	return exporter
}

func TestStartCall_CreatesClientSpan(t *testing.T) {
	exporter := setupExporter(t)

	_, span := StartCall(context.Background(), "elevenlabs")
	EndCall(span, 0, nil)

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}

	got := spans[0]
	if got.Name != "call elevenlabs" {
		t.Errorf("expected span name 'call elevenlabs', got %q", got.Name)
	}
	if got.SpanKind != oteltrace.SpanKindClient {
		t.Errorf("expected client span kind, got %v", got.SpanKind)
	}

	foundService := false
	for _, attr := range got.Attributes {
		if attr.Key == "call.service" && attr.Value.AsString() == "elevenlabs" {
			foundService = true
		}
	}
	if !foundService {
		t.Error("call.service attribute not found")
	}
}

func TestEndCall_Success(t *testing.T) {
	exporter := setupExporter(t)

	_, span := StartCall(context.Background(), "openai")
	EndCall(span, 1, nil)

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}

	got := spans[0]
	if got.Status.Code == codes.Error {
		t.Error("successful call must not carry an error status")
	}

	foundRetries := false
	for _, attr := range got.Attributes {
		if attr.Key == "call.retries" && attr.Value.AsInt64() == 1 {
			foundRetries = true
		}
	}
	if !foundRetries {
		t.Error("call.retries attribute not found")
	}
}

func TestEndCall_Failure(t *testing.T) {
	exporter := setupExporter(t)

	_, span := StartCall(context.Background(), "elevenlabs")
	err := fault.Transient("elevenlabs", "service temporarily unavailable (503)", nil)
	err.RetryCount = 2
	EndCall(span, 2, err)

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}

	got := spans[0]
	if got.Status.Code != codes.Error {
		t.Errorf("expected error status, got %v", got.Status.Code)
	}
	if len(got.Events) == 0 {
		t.Error("expected recorded error event")
	}

	foundKind := false
	for _, attr := range got.Attributes {
		if attr.Key == "call.failure_kind" && attr.Value.AsString() == "transient" {
			foundKind = true
		}
	}
	if !foundKind {
		t.Error("call.failure_kind attribute not found")
	}
}

func TestFailureKind(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{name: "transient", err: fault.Transient("svc", "x", nil), expected: "transient"},
		{name: "permanent", err: fault.Permanent("svc", "x", nil), expected: "permanent"},
		{name: "circuit open", err: fault.CircuitOpen("svc"), expected: "circuit_open"},
		{name: "unclassified", err: context.DeadlineExceeded, expected: "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := failureKind(tt.err); got != tt.expected {
				t.Errorf("failureKind() = %q, want %q", got, tt.expected)
			}
		})
	}
}
