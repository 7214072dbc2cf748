// Package retry provides bounded-attempt retry with exponential backoff.
// Only transient faults are retried; permanent faults, circuit rejections,
// and unclassified errors propagate immediately. The backoff sequence is
// deterministic (no jitter, no cap) so that callers can reason about the
// exact worst-case latency of a call.
package retry

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"call-agent/internal/domain/fault"
)

// Config holds the configuration for retry logic.
type Config struct {
	// MaxAttempts is the total number of attempts, the initial call included
	MaxAttempts int

	// InitialDelay is the wait before the first retry
	InitialDelay time.Duration

	// Multiplier scales the delay after each retry
	Multiplier float64
}

// DefaultConfig returns the standard retry policy: three attempts with
// waits of 5s and then 10s between them.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:  3,
		InitialDelay: 5 * time.Second,
		Multiplier:   2.0,
	}
}

// WithBackoff executes fn up to cfg.MaxAttempts times and returns the
// result, the number of retries consumed (attempts minus one), and the
// final error.
//
// A transient fault triggers a wait and another attempt; the wait grows by
// cfg.Multiplier each time. Every other error returns on the spot: circuit
// rejections and permanent faults gain nothing from retrying, and an
// unclassified error is not assumed safe to repeat. There is no wait after
// the last attempt. When all attempts are exhausted, the retry count is
// also recorded on the returned transient fault so downstream handlers can
// report how hard the call was tried.
//
// The wait honors ctx cancellation; an aborted wait returns the context
// error wrapped.
func WithBackoff(ctx context.Context, cfg Config, fn func() (interface{}, error)) (interface{}, int, error) {
	attempts := cfg.MaxAttempts
	if attempts < 1 {
		// The initial call always happens, whatever the config says.
		attempts = 1
	}
	delay := cfg.InitialDelay

	for attempt := 1; ; attempt++ {
		result, err := fn()
		if err == nil {
			if attempt > 1 {
				slog.Info("operation succeeded after retry",
					slog.Int("attempt", attempt))
			}
			return result, attempt - 1, nil
		}

		transient, ok := fault.AsTransient(err)
		if !ok {
			slog.Warn("non-retryable error, aborting",
				slog.Int("attempt", attempt),
				slog.Any("error", err))
			return nil, attempt - 1, err
		}

		if attempt >= attempts {
			transient.RetryCount = attempt - 1
			return nil, attempt - 1, err
		}

		slog.Warn("operation failed, retrying",
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", attempts),
			slog.Duration("delay", delay),
			slog.Any("error", err))

		select {
		case <-time.After(delay):
			// Continue to next attempt
		case <-ctx.Done():
			return nil, attempt - 1, fmt.Errorf("retry aborted: %w", ctx.Err())
		}

		delay = time.Duration(float64(delay) * cfg.Multiplier)
	}
}
