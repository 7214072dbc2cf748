// Package alert provides the use case for fanning alerts out to multiple
// delivery channels. It implements the dispatch logic for operational
// alerts (circuit breaker trips, dependency outages, failed calls) with
// asynchronous delivery, per-channel suspend windows, and observability.
package alert

import (
	"context"

	"call-agent/internal/domain/entity"
)

// Channel represents an alert delivery channel (webhook, Telegram, email).
// Each channel implementation handles its own transport, rate limiting,
// and retries.
//
// Thread Safety:
//   - All methods must be safe for concurrent use by multiple goroutines
//
// Context Handling:
//   - Implementations must respect context cancellation and timeout
type Channel interface {
	// Name returns the human-readable name of the channel (e.g., "webhook",
	// "telegram"). This is used for logging, metrics, and health endpoints.
	Name() string

	// IsEnabled returns true if this channel is enabled via configuration.
	// Disabled channels are skipped during dispatch.
	IsEnabled() bool

	// Send delivers an alert through this channel.
	//
	// Implementations must:
	//   - Respect context cancellation/timeout
	//   - Sanitize sensitive data (webhook URLs, tokens) in error messages
	//
	// Returns a non-nil error if delivery failed after the channel's own
	// retry policy was exhausted.
	Send(ctx context.Context, alert *entity.Alert) error
}
