// Package alerter provides abstraction for delivering operational alerts.
// It defines the Alerter interface which allows different delivery mechanisms
// (generic webhook, Telegram, email, etc.) to be used interchangeably through
// dependency injection.
//
// The package includes implementations for webhook endpoints, the Telegram
// Bot API, SMTP email, and a no-op alerter for when a channel is disabled.
package alerter

import (
	"context"

	"call-agent/internal/domain/entity"
)

// Alerter is an interface for delivering operational alerts.
// Implementations should handle rate limiting, retries, and error logging internally.
type Alerter interface {
	// DeliverAlert delivers a single alert to the channel's endpoint.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout control
	//   - alert: The alert to deliver (must not be nil)
	//
	// Returns:
	//   - error: Non-nil if the delivery failed after all retry attempts
	//
	// Implementations should:
	//   - Generate a unique request ID for tracing
	//   - Apply rate limiting to prevent API abuse
	//   - Retry transient failures with exponential backoff
	//   - Log all attempts with the request ID for debugging
	//   - Respect context cancellation
	DeliverAlert(ctx context.Context, alert *entity.Alert) error
}
