package alert

import (
	"context"

	"call-agent/internal/domain/entity"
	"call-agent/internal/infra/alerter"
)

// TelegramChannel implements the Channel interface for Telegram alerts.
// It wraps the TelegramAlerter from the infrastructure layer to provide the
// Channel abstraction for the alert use case.
type TelegramChannel struct {
	alerter alerter.Alerter
	enabled bool
}

// NewTelegramChannel creates a new Telegram channel with the specified configuration.
//
// If Telegram alerts are disabled (config.Enabled = false), a NoOpAlerter is
// used instead to avoid null checks and ensure the Channel interface contract
// is always satisfied.
//
// Parameters:
//   - config: Telegram configuration (bot token, chat ID, timeout, enabled state)
//
// Returns:
//   - *TelegramChannel: Configured Telegram channel instance
func NewTelegramChannel(config alerter.TelegramConfig) *TelegramChannel {
	var a alerter.Alerter
	if config.Enabled {
		a = alerter.NewTelegramAlerter(config)
	} else {
		a = alerter.NewNoOpAlerter()
	}

	return &TelegramChannel{
		alerter: a,
		enabled: config.Enabled,
	}
}

// Name returns the channel identifier "telegram".
// This is used for logging, metrics labels, and health check endpoints.
func (c *TelegramChannel) Name() string {
	return "telegram"
}

// IsEnabled returns whether Telegram alerts are enabled via configuration.
// Disabled channels are skipped during alert dispatching.
func (c *TelegramChannel) IsEnabled() bool {
	return c.enabled
}

// Send delivers an alert to the configured Telegram chat.
//
// This method performs input validation and delegates to the underlying
// TelegramAlerter for the actual Bot API request. The alerter handles:
//   - Rate limiting (1 req/s with burst of 1, per Telegram chat limits)
//   - Retry logic (max 2 attempts, honoring retry_after on 429)
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
//   - Other errors: Network errors, rate limit errors, Telegram API errors
func (c *TelegramChannel) Send(ctx context.Context, alert *entity.Alert) error {
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
