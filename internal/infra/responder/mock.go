package responder

import (
	"context"
	"fmt"
	"log/slog"

	"call-agent/internal/domain/fault"
)

// Mock simulates the language-model service for demos and tests.
// Unlike the mock synthesizer it never fails on a valid prompt, so demo
// runs exercise the resilience path of one dependency at a time.
type Mock struct{}

// NewMock creates a new mock responder.
func NewMock() *Mock {
	return &Mock{}
}

// Respond echoes a canned greeting for the given prompt.
// An empty prompt is rejected as a permanent fault, matching the live
// adapters' payload validation.
func (m *Mock) Respond(ctx context.Context, prompt string) (string, error) {
	slog.InfoContext(ctx, "Calling LLM API",
		slog.String("service", ServiceName),
		slog.Bool("mock", true))

	if prompt == "" {
		return "", fault.Permanent(ServiceName, "Invalid payload: prompt must be a non-empty string", nil)
	}

	slog.InfoContext(ctx, "LLM API call successful",
		slog.String("service", ServiceName),
		slog.Bool("mock", true))
	return fmt.Sprintf("Hello! (Generated for prompt: %s)", prompt), nil
}

// Ping always reports the mock healthy.
func (m *Mock) Ping(_ context.Context) error {
	return nil
}
