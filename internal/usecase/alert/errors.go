package alert

import "errors"

// Sentinel errors for alert use case operations.
var (
	// ErrChannelDisabled indicates that Send() was called on a disabled channel.
	// Channel implementations return this when dispatch reaches a channel
	// that is not enabled in the configuration.
	ErrChannelDisabled = errors.New("channel is disabled")

	// ErrInvalidAlert indicates that Send() was called with a nil alert.
	ErrInvalidAlert = errors.New("alert is nil")

	// ErrAlertDropped indicates that an alert was dropped because the worker
	// pool stayed saturated past the acquisition timeout.
	// This is a non-critical error used for observability.
	ErrAlertDropped = errors.New("alert dropped due to pool saturation")

	// ErrChannelSuspended indicates that the channel is inside its suspend
	// window after repeated delivery failures and alerts to it are being
	// skipped. The window closes automatically.
	ErrChannelSuspended = errors.New("channel is temporarily suspended")
)
