package alerter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"call-agent/internal/domain/entity"

	"github.com/google/uuid"
)

// WebhookConfig contains configuration for generic webhook alert delivery.
type WebhookConfig struct {
	// Enabled indicates whether webhook alerts are enabled
	Enabled bool

	// URL is the webhook endpoint URL (may include an authentication token)
	URL string

	// Timeout is the HTTP request timeout for webhook calls
	Timeout time.Duration
}

// WebhookAlerter delivers alerts to a generic webhook endpoint as JSON.
type WebhookAlerter struct {
	config      WebhookConfig
	httpClient  *http.Client
	rateLimiter *RateLimiter
}

// NewWebhookAlerter creates a new WebhookAlerter with the specified configuration.
//
// The alerter is initialized with:
//   - HTTP client with configured timeout
//   - Rate limiter set to 1 request/second with burst of 5, so a burst of
//     failing calls cannot flood the receiving endpoint
//
// Parameters:
//   - config: Webhook configuration including endpoint URL and timeout
//
// Returns:
//   - *WebhookAlerter: Configured webhook alerter instance
func NewWebhookAlerter(config WebhookConfig) *WebhookAlerter {
	return &WebhookAlerter{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		rateLimiter: NewRateLimiter(1.0, 5), // 1 req/s, burst of 5
	}
}

// webhookPayload represents the JSON document posted to the webhook endpoint.
type webhookPayload struct {
	Subject     string `json:"subject"`
	Message     string `json:"message"`
	AlertType   string `json:"alert_type"`
	ServiceName string `json:"service_name"`
	Timestamp   string `json:"timestamp"`
}

// buildPayload creates a webhook payload from an alert.
//
// The message field carries the composed alert body, so receivers that only
// display one field still see the severity, service, and timestamp header.
func (w *WebhookAlerter) buildPayload(alert *entity.Alert) webhookPayload {
	return webhookPayload{
		Subject:     alert.Subject,
		Message:     alert.Body,
		AlertType:   alert.Severity,
		ServiceName: alert.Service,
		Timestamp:   alert.SentAt.Format(time.RFC3339),
	}
}

// sendRequest posts the alert payload to the webhook endpoint.
//
// Returns:
//   - nil: Request succeeded (2xx status)
//   - error: Request failed (non-2xx status or network error)
//
// Error types:
//   - 429: Rate limit error (retryable, honors Retry-After)
//   - 4xx (non-429): Client error (non-retryable)
//   - 5xx: Server error (retryable)
//   - Network error: Connection/timeout error (retryable)
func (w *WebhookAlerter) sendRequest(ctx context.Context, alert *entity.Alert) error {
	payload := w.buildPayload(alert)

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.config.URL, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("create http request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	// Read response body for error messages
	body, _ := io.ReadAll(resp.Body)

	// Success
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	// Rate limit error (429)
	if resp.StatusCode == http.StatusTooManyRequests {
		return &RateLimitError{
			Message:    "webhook rate limit exceeded",
			RetryAfter: extractRetryAfterHeader(resp),
		}
	}

	// Client error (4xx, non-retryable)
	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		return &ClientError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("webhook endpoint client error: %s", string(body)),
		}
	}

	// Server error (5xx, retryable)
	if resp.StatusCode >= 500 {
		return &ServerError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("webhook endpoint server error: %s", string(body)),
		}
	}

	return fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, string(body))
}

// extractRetryAfterHeader extracts the backoff duration from a Retry-After
// header, in seconds. Generic webhooks have no JSON error convention, so
// only the header is consulted.
//
// Returns:
//   - time.Duration: Retry after duration (default 5s if not found)
func extractRetryAfterHeader(resp *http.Response) time.Duration {
	if retryAfterHeader := resp.Header.Get("Retry-After"); retryAfterHeader != "" {
		if seconds, err := strconv.Atoi(retryAfterHeader); err == nil && seconds > 0 {
			return time.Duration(seconds) * time.Second
		}
	}

	// Default retry after 5 seconds
	return 5 * time.Second
}

// sendRequestWithRetry posts the alert with retry logic.
//
// Retry strategy:
//   - Max attempts: 2
//   - Base delay: 5 seconds
//   - 429 errors: Use Retry-After from the response
//   - Server errors (5xx): Exponential backoff (5s, 10s)
//   - Client errors (4xx): No retry, fail immediately
//
// All attempts are logged with request_id for tracing.
func (w *WebhookAlerter) sendRequestWithRetry(ctx context.Context, alert *entity.Alert) error {
	const (
		maxAttempts = 2
		baseDelay   = 5 * time.Second
	)

	requestID, _ := ctx.Value(requestIDKey).(string)

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := w.sendRequest(ctx, alert)

		// Success
		if err == nil {
			slog.Info("Webhook alert delivered",
				slog.String("request_id", requestID),
				slog.String("subject", alert.Subject),
				slog.String("service", alert.Service),
				slog.Int("attempt", attempt))
			return nil
		}

		lastErr = err

		// Handle rate limit error (429)
		if rateLimitErr, ok := is429Error(err); ok {
			slog.Warn("Webhook rate limit hit, backing off",
				slog.String("request_id", requestID),
				slog.String("subject", alert.Subject),
				slog.Duration("retry_after", rateLimitErr.RetryAfter),
				slog.Int("attempt", attempt))

			select {
			case <-time.After(rateLimitErr.RetryAfter):
				continue
			case <-ctx.Done():
				return fmt.Errorf("context canceled during rate limit backoff: %w", ctx.Err())
			}
		}

		// Handle non-retryable errors (4xx client errors)
		if !isRetryableError(err) {
			slog.Error("Webhook alert failed with non-retryable error",
				slog.String("request_id", requestID),
				slog.String("subject", alert.Subject),
				slog.Any("error", err),
				slog.Int("attempt", attempt))
			return err
		}

		// Retry on retryable errors (5xx server errors, network errors)
		if attempt < maxAttempts {
			delay := baseDelay * time.Duration(attempt)
			slog.Warn("Webhook request failed, retrying",
				slog.String("request_id", requestID),
				slog.String("subject", alert.Subject),
				slog.Any("error", err),
				slog.Int("attempt", attempt),
				slog.Duration("delay", delay))

			select {
			case <-time.After(delay):
				continue
			case <-ctx.Done():
				return fmt.Errorf("context canceled during retry backoff: %w", ctx.Err())
			}
		}
	}

	// All retries exhausted
	slog.Error("Webhook alert failed after all retries",
		slog.String("request_id", requestID),
		slog.String("subject", alert.Subject),
		slog.Any("error", lastErr),
		slog.Int("max_attempts", maxAttempts))

	return fmt.Errorf("webhook alert failed after %d attempts: %w", maxAttempts, lastErr)
}

// DeliverAlert posts an alert to the configured webhook endpoint.
// This method implements the Alerter interface.
//
// It performs the following steps:
//  1. Generate unique request_id for tracing
//  2. Add request_id to context
//  3. Apply rate limiting to prevent endpoint abuse
//  4. Post the payload with retry logic
//
// Parameters:
//   - ctx: Context for cancellation and timeout control
//   - alert: The alert to deliver (must not be nil)
//
// Returns:
//   - error: Non-nil if delivery failed after all retry attempts or rate limiting failed
func (w *WebhookAlerter) DeliverAlert(ctx context.Context, alert *entity.Alert) error {
	// Generate unique request ID for tracing
	requestID := uuid.New().String()
	ctx = context.WithValue(ctx, requestIDKey, requestID)

	slog.Info("Starting webhook alert delivery",
		slog.String("request_id", requestID),
		slog.String("subject", alert.Subject),
		slog.String("severity", alert.Severity),
		slog.String("service", alert.Service))

	// Apply rate limiting
	if err := w.rateLimiter.Allow(ctx); err != nil {
		slog.Error("Rate limiter error",
			slog.String("request_id", requestID),
			slog.String("subject", alert.Subject),
			slog.Any("error", err))
		return fmt.Errorf("rate limiter error: %w", err)
	}

	// Post the payload with retry logic
	return w.sendRequestWithRetry(ctx, alert)
}
