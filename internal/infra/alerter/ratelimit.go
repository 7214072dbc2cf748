package alerter

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"call-agent/internal/domain/entity"
)

// RateLimiter implements token bucket algorithm for rate limiting.
// It prevents alert endpoints from being overwhelmed when a burst of
// failures produces a burst of alerts.
type RateLimiter struct {
	rate    rate.Limit
	burst   int
	limiter *rate.Limiter
}

// NewRateLimiter creates a new RateLimiter with the specified rate and burst capacity.
//
// Parameters:
//   - requestsPerSecond: Maximum sustained request rate (e.g., 2.0 for 2 requests per second)
//   - burst: Maximum number of requests that can be made in a burst (e.g., 5)
//
// The token bucket algorithm allows up to 'burst' requests immediately,
// then refills tokens at 'requestsPerSecond' rate.
func NewRateLimiter(requestsPerSecond float64, burst int) *RateLimiter {
	r := rate.Limit(requestsPerSecond)
	l := rate.NewLimiter(r, burst)

	return &RateLimiter{
		rate:    r,
		burst:   burst,
		limiter: l,
	}
}

// Allow blocks until a token is available or the context is canceled.
// It should be called before making a rate-limited request.
//
// Parameters:
//   - ctx: Context for cancellation control
//
// Returns:
//   - error: Non-nil if context was canceled or deadline exceeded
func (r *RateLimiter) Allow(ctx context.Context) error {
	return r.limiter.Wait(ctx)
}

// RateLimited wraps an Alerter with a token bucket rate limiter. The
// webhook and Telegram alerters carry their own limiters tuned to their
// endpoints; this decorator serves transports that have none, such as
// SMTP submission, where mail providers throttle aggressive senders.
type RateLimited struct {
	inner   Alerter
	limiter *RateLimiter
}

// NewRateLimited wraps inner so deliveries wait for a token before they run.
//
// Parameters:
//   - inner: The alerter performing the actual delivery
//   - requestsPerSecond: Maximum sustained delivery rate
//   - burst: Maximum deliveries allowed in a burst
//
// Returns:
//   - *RateLimited: Alerter that enforces the configured rate
func NewRateLimited(inner Alerter, requestsPerSecond float64, burst int) *RateLimited {
	return &RateLimited{
		inner:   inner,
		limiter: NewRateLimiter(requestsPerSecond, burst),
	}
}

// DeliverAlert waits for a rate limit token, then delegates to the wrapped
// alerter. Returns the context error if the wait is canceled.
func (r *RateLimited) DeliverAlert(ctx context.Context, alert *entity.Alert) error {
	if err := r.limiter.Allow(ctx); err != nil {
		return fmt.Errorf("rate limiter error: %w", err)
	}
	return r.inner.DeliverAlert(ctx, alert)
}
