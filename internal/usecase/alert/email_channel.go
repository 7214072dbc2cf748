package alert

import (
	"context"

	"call-agent/internal/domain/entity"
	"call-agent/internal/infra/alerter"
)

// EmailChannel implements the Channel interface for SMTP email alerts.
// It wraps the EmailAlerter from the infrastructure layer to provide the
// Channel abstraction for the alert use case.
type EmailChannel struct {
	alerter alerter.Alerter
	enabled bool
}

// NewEmailChannel creates a new email channel with the specified configuration.
//
// The email alerter is wrapped in a rate limiter. The SMTP transport has no
// limiter of its own, and mail providers throttle or block senders that
// submit in bursts.
//
// If email alerts are disabled (config.Enabled = false), a NoOpAlerter is
// used instead to avoid null checks and ensure the Channel interface contract
// is always satisfied.
//
// Parameters:
//   - config: Email configuration (SMTP host, port, credentials, enabled state)
//
// Returns:
//   - *EmailChannel: Configured email channel instance
func NewEmailChannel(config alerter.EmailConfig) *EmailChannel {
	var a alerter.Alerter
	if config.Enabled {
		a = alerter.NewRateLimited(alerter.NewEmailAlerter(config), 0.5, 2)
	} else {
		a = alerter.NewNoOpAlerter()
	}

	return &EmailChannel{
		alerter: a,
		enabled: config.Enabled,
	}
}

// Name returns the channel identifier "email".
// This is used for logging, metrics labels, and health check endpoints.
func (c *EmailChannel) Name() string {
	return "email"
}

// IsEnabled returns whether email alerts are enabled via configuration.
// Disabled channels are skipped during alert dispatching.
func (c *EmailChannel) IsEnabled() bool {
	return c.enabled
}

// Send delivers an alert email to the configured recipient.
//
// This method performs input validation and delegates to the underlying
// EmailAlerter for the SMTP conversation. Delivery is a single attempt with
// STARTTLS when the server supports it.
//
// Parameters:
//   - ctx: Context with timeout and optional request_id
//   - alert: The alert to deliver (must not be nil)
//
// Returns:
//   - nil: Alert delivered successfully
//   - ErrChannelDisabled: If called on disabled channel
//   - ErrInvalidAlert: If alert is nil
//   - Other errors: SMTP connection or submission errors
func (c *EmailChannel) Send(ctx context.Context, alert *entity.Alert) error {
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
