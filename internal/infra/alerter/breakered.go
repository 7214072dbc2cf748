package alerter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"

	"call-agent/internal/domain/entity"
)

// Breakered wraps an Alerter with a circuit breaker so a consistently
// failing alert endpoint stops consuming delivery workers. Each rejected
// delivery fails fast instead of burning the full retry budget of the
// underlying alerter.
//
// The breaker trips after 3 consecutive failed deliveries and probes the
// endpoint again after 2 minutes. Alert volume is low, so consecutive
// failures are a stronger signal here than failure ratios.
type Breakered struct {
	inner   Alerter
	breaker *gobreaker.CircuitBreaker
	name    string
}

// NewBreakered wraps inner with a circuit breaker named after the channel.
//
// Parameters:
//   - name: Circuit name used in logs (e.g., "alert-webhook")
//   - inner: The alerter performing the actual delivery
//
// Returns:
//   - *Breakered: Alerter that fails fast while the endpoint is down
func NewBreakered(name string, inner Alerter) *Breakered {
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     2 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			slog.Warn("Alert endpoint circuit breaker state changed",
				slog.String("circuit", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()))
		},
	}

	return &Breakered{
		inner:   inner,
		breaker: gobreaker.NewCircuitBreaker(settings),
		name:    name,
	}
}

// DeliverAlert runs the wrapped delivery through the circuit breaker.
// While the circuit is open, deliveries are rejected immediately without
// touching the endpoint.
func (b *Breakered) DeliverAlert(ctx context.Context, alert *entity.Alert) error {
	_, err := b.breaker.Execute(func() (interface{}, error) {
		return nil, b.inner.DeliverAlert(ctx, alert)
	})

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			slog.Warn("Alert endpoint circuit breaker open, delivery rejected",
				slog.String("circuit", b.name),
				slog.String("state", b.breaker.State().String()))
			return fmt.Errorf("alert endpoint unavailable: circuit breaker open")
		}
		return err
	}

	return nil
}

// State returns the current circuit state for health reporting.
func (b *Breakered) State() gobreaker.State {
	return b.breaker.State()
}

// Name returns the circuit name.
func (b *Breakered) Name() string {
	return b.name
}
