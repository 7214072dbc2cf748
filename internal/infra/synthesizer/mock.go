package synthesizer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"call-agent/internal/domain/fault"
)

// mockOutageCalls is the number of initial calls the mock fails with a
// simulated 503 before it starts succeeding.
const mockOutageCalls = 3

// mockAudio is the payload every successful mock synthesis returns.
var mockAudio = []byte("FAKE_AUDIO_BYTES")

// Mock simulates the ElevenLabs service for demos and tests. The first
// three non-empty synthesis calls fail with a transient 503, after which
// every call succeeds. The failure counter never resets, so the simulated
// outage happens exactly once per process.
type Mock struct {
	mu           sync.Mutex
	failureCount int
}

// NewMock creates a new mock synthesizer at the start of its simulated outage.
func NewMock() *Mock {
	return &Mock{}
}

// Synthesize simulates a text-to-speech call.
// An empty text is rejected as a permanent fault without touching the
// failure counter, matching the live adapter's payload validation.
func (m *Mock) Synthesize(ctx context.Context, text string) ([]byte, error) {
	slog.InfoContext(ctx, "Calling ElevenLabs text-to-speech API",
		slog.String("service", ServiceName),
		slog.Bool("mock", true))

	if text == "" {
		return nil, fault.Permanent(ServiceName, "Invalid payload: 'text' must be a non-empty string", nil)
	}

	m.mu.Lock()
	m.failureCount++
	count := m.failureCount
	m.mu.Unlock()

	if count <= mockOutageCalls {
		slog.InfoContext(ctx, "Simulating 503 error",
			slog.String("service", ServiceName),
			slog.Int("failure", count))
		return nil, fault.Transient(ServiceName, "Service temporarily unavailable (503)", nil)
	}

	slog.InfoContext(ctx, "ElevenLabs API call successful",
		slog.String("service", ServiceName),
		slog.Bool("mock", true))
	return mockAudio, nil
}

// Ping reports the mock healthy only once a synthesis call has made it
// past the outage window, which takes the three failures plus one success.
// Until then the health monitor sees the dependency as down.
func (m *Mock) Ping(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failureCount > mockOutageCalls {
		return nil
	}
	return fmt.Errorf("simulated outage in progress (failure %d of %d)", m.failureCount, mockOutageCalls)
}
