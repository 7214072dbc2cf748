package alerter

import (
	"context"

	"call-agent/internal/domain/entity"
)

// NoOpAlerter is a no-operation implementation of the Alerter interface.
// It is used when a channel is disabled to avoid null checks in the code.
// This follows the Null Object pattern.
type NoOpAlerter struct{}

// NewNoOpAlerter creates a new NoOpAlerter instance.
func NewNoOpAlerter() *NoOpAlerter {
	return &NoOpAlerter{}
}

// DeliverAlert does nothing and returns nil immediately.
// This allows a channel to be disabled without changing the code flow.
func (n *NoOpAlerter) DeliverAlert(ctx context.Context, alert *entity.Alert) error {
	// No-op: intentionally does nothing
	return nil
}
