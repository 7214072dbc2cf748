package alert

import (
	"context"

	"call-agent/internal/domain/entity"
	"call-agent/internal/infra/alerter"
)

// WebhookChannel implements the Channel interface for generic webhook alerts.
// It wraps the WebhookAlerter from the infrastructure layer to provide the
// Channel abstraction for the alert use case.
//
// This adapter pattern allows webhook delivery to integrate with the
// multi-channel alert system while reusing the HTTP transport, rate limiting,
// and retry implementation.
type WebhookChannel struct {
	alerter alerter.Alerter
	enabled bool
}

// NewWebhookChannel creates a new webhook channel with the specified configuration.
//
// The webhook alerter is wrapped in a circuit breaker: unlike Telegram or
// SMTP, the endpoint is operator-supplied and may be down for long
// stretches, and fail-fast keeps broken receivers from burning the retry
// budget on every alert.
//
// If webhook alerts are disabled (config.Enabled = false), a NoOpAlerter is
// used instead to avoid null checks and ensure the Channel interface contract
// is always satisfied.
//
// Parameters:
//   - config: Webhook configuration (endpoint URL, timeout, enabled state)
//
// Returns:
//   - *WebhookChannel: Configured webhook channel instance
func NewWebhookChannel(config alerter.WebhookConfig) *WebhookChannel {
	var a alerter.Alerter
	if config.Enabled {
		a = alerter.NewBreakered("alert-webhook", alerter.NewWebhookAlerter(config))
	} else {
		a = alerter.NewNoOpAlerter()
	}

	return &WebhookChannel{
		alerter: a,
		enabled: config.Enabled,
	}
}

// Name returns the channel identifier "webhook".
// This is used for logging, metrics labels, and health check endpoints.
func (c *WebhookChannel) Name() string {
	return "webhook"
}

// IsEnabled returns whether webhook alerts are enabled via configuration.
// Disabled channels are skipped during alert dispatching.
func (c *WebhookChannel) IsEnabled() bool {
	return c.enabled
}

// Send delivers an alert to the configured webhook endpoint.
//
// This method performs input validation and delegates to the underlying
// WebhookAlerter for the actual HTTP request. The alerter handles:
//   - Rate limiting (1 req/s with burst of 5)
//   - Retry logic (max 2 attempts with exponential backoff)
//   - Context timeout and cancellation
//   - Request ID generation and logging
//
// Parameters:
//   - ctx: Context with timeout and optional request_id
//   - alert: The alert to deliver (must not be nil)
//
// Returns:
//   - nil: Alert delivered successfully
//   - ErrChannelDisabled: If called on disabled channel
//   - ErrInvalidAlert: If alert is nil
//   - Other errors: Network errors, rate limit errors, endpoint errors
func (c *WebhookChannel) Send(ctx context.Context, alert *entity.Alert) error {
	// Validate that channel is enabled
	if !c.enabled {
		return ErrChannelDisabled
	}

	// Validate alert
	if alert == nil {
		return ErrInvalidAlert
	}

	// Delegate to underlying alerter
	return c.alerter.DeliverAlert(ctx, alert)
}
