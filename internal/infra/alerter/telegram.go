package alerter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"call-agent/internal/domain/entity"

	"github.com/google/uuid"
)

// TelegramConfig contains configuration for Telegram Bot API alert delivery.
type TelegramConfig struct {
	// Enabled indicates whether Telegram alerts are enabled
	Enabled bool

	// BotToken is the Telegram bot token used to authenticate API calls.
	// It becomes part of the request URL and must never appear in logs
	// or error messages.
	BotToken string

	// ChatID identifies the chat or channel that receives the alerts
	ChatID string

	// APIBaseURL is the Telegram Bot API base URL. Overridable for tests.
	APIBaseURL string

	// Timeout is the HTTP request timeout for Telegram API calls
	Timeout time.Duration
}

// TelegramAlerter delivers alerts to a Telegram chat via the Bot API.
type TelegramAlerter struct {
	config      TelegramConfig
	httpClient  *http.Client
	rateLimiter *RateLimiter
}

// NewTelegramAlerter creates a new TelegramAlerter with the specified configuration.
//
// The alerter is initialized with:
//   - HTTP client with configured timeout
//   - Rate limiter set to 1 request/second with burst of 1
//     (Telegram allows roughly one message per second per chat)
//
// Parameters:
//   - config: Telegram configuration including bot token, chat ID, and timeout
//
// Returns:
//   - *TelegramAlerter: Configured Telegram alerter instance
func NewTelegramAlerter(config TelegramConfig) *TelegramAlerter {
	return &TelegramAlerter{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		rateLimiter: NewRateLimiter(1.0, 1), // 1 req/s, burst of 1
	}
}

// telegramPayload represents the JSON payload sent to the sendMessage endpoint.
type telegramPayload struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
}

// telegramErrorResponse represents the error response from the Telegram Bot API.
type telegramErrorResponse struct {
	OK          bool   `json:"ok"`
	ErrorCode   int    `json:"error_code"`
	Description string `json:"description"`
	Parameters  struct {
		RetryAfter int `json:"retry_after"` // In seconds
	} `json:"parameters"`
}

const (
	// Telegram sendMessage text limit
	telegramMaxMessageLength = 4096
	telegramTruncationSuffix = "..."
)

// buildMessage renders the Telegram message text from an alert.
//
// Format: subject, blank line, composed body. Truncated to the Telegram
// message limit of 4096 characters.
func (t *TelegramAlerter) buildMessage(alert *entity.Alert) string {
	text := fmt.Sprintf("%s\n\n%s", alert.Subject, alert.Body)
	return truncateText(text, telegramMaxMessageLength, telegramTruncationSuffix)
}

// sendMessageURL builds the Bot API sendMessage endpoint URL.
// The returned string embeds the bot token and must not be logged.
func (t *TelegramAlerter) sendMessageURL() string {
	return fmt.Sprintf("%s/bot%s/sendMessage", t.config.APIBaseURL, t.config.BotToken)
}

// sendRequest posts the alert message to the Telegram Bot API.
//
// Returns:
//   - nil: Request succeeded (2xx status)
//   - error: Request failed (non-2xx status or network error)
//
// Error types:
//   - 429: Rate limit error (retryable, contains retry_after from Telegram)
//   - 4xx (non-429): Client error (non-retryable)
//   - 5xx: Server error (retryable)
//   - Network error: Connection/timeout error (retryable)
//
// Error messages carry the Telegram error description rather than the raw
// request details, so the bot token cannot leak through error chains.
func (t *TelegramAlerter) sendRequest(ctx context.Context, alert *entity.Alert) error {
	payload := telegramPayload{
		ChatID: t.config.ChatID,
		Text:   t.buildMessage(alert),
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal telegram payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.sendMessageURL(), bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("create http request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(resp.Body)

	// Success
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	// Telegram error responses carry a JSON envelope with a description
	var telegramErr telegramErrorResponse
	_ = json.Unmarshal(body, &telegramErr)

	detail := telegramErr.Description
	if detail == "" {
		detail = fmt.Sprintf("status %d", resp.StatusCode)
	}

	// Rate limit error (429)
	if resp.StatusCode == http.StatusTooManyRequests {
		retryAfter := 5 * time.Second
		if telegramErr.Parameters.RetryAfter > 0 {
			retryAfter = time.Duration(telegramErr.Parameters.RetryAfter) * time.Second
		}
		return &RateLimitError{
			Message:    "Telegram rate limit exceeded",
			RetryAfter: retryAfter,
		}
	}

	// Client error (4xx, non-retryable)
	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		return &ClientError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("Telegram API client error: %s", detail),
		}
	}

	// Server error (5xx, retryable)
	if resp.StatusCode >= 500 {
		return &ServerError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("Telegram API server error: %s", detail),
		}
	}

	return fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, detail)
}

// sendRequestWithRetry posts the alert message with retry logic.
//
// Retry strategy:
//   - Max attempts: 2
//   - Base delay: 5 seconds
//   - 429 errors: Use retry_after from the Telegram response
//   - Server errors (5xx): Exponential backoff (5s, 10s)
//   - Client errors (4xx): No retry, fail immediately
func (t *TelegramAlerter) sendRequestWithRetry(ctx context.Context, alert *entity.Alert) error {
	const (
		maxAttempts = 2
		baseDelay   = 5 * time.Second
	)

	requestID, _ := ctx.Value(requestIDKey).(string)

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := t.sendRequest(ctx, alert)

		// Success
		if err == nil {
			slog.Info("Telegram alert delivered",
				slog.String("request_id", requestID),
				slog.String("subject", alert.Subject),
				slog.String("service", alert.Service),
				slog.Int("attempt", attempt))
			return nil
		}

		lastErr = err

		// Handle rate limit error (429)
		if rateLimitErr, ok := is429Error(err); ok {
			slog.Warn("Telegram rate limit hit, backing off",
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
			slog.Error("Telegram alert failed with non-retryable error",
				slog.String("request_id", requestID),
				slog.String("subject", alert.Subject),
				slog.Any("error", err),
				slog.Int("attempt", attempt))
			return err
		}

		// Retry on retryable errors (5xx server errors, network errors)
		if attempt < maxAttempts {
			delay := baseDelay * time.Duration(attempt)
			slog.Warn("Telegram API request failed, retrying",
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
	slog.Error("Telegram alert failed after all retries",
		slog.String("request_id", requestID),
		slog.String("subject", alert.Subject),
		slog.Any("error", lastErr),
		slog.Int("max_attempts", maxAttempts))

	return fmt.Errorf("telegram alert failed after %d attempts: %w", maxAttempts, lastErr)
}

// DeliverAlert sends an alert to the configured Telegram chat.
// This method implements the Alerter interface.
//
// It performs the following steps:
//  1. Generate unique request_id for tracing
//  2. Add request_id to context
//  3. Apply rate limiting to respect the per-chat message rate
//  4. Send the message with retry logic
//
// Parameters:
//   - ctx: Context for cancellation and timeout control
//   - alert: The alert to deliver (must not be nil)
//
// Returns:
//   - error: Non-nil if delivery failed after all retry attempts or rate limiting failed
func (t *TelegramAlerter) DeliverAlert(ctx context.Context, alert *entity.Alert) error {
	// Generate unique request ID for tracing
	requestID := uuid.New().String()
	ctx = context.WithValue(ctx, requestIDKey, requestID)

	slog.Info("Starting Telegram alert delivery",
		slog.String("request_id", requestID),
		slog.String("subject", alert.Subject),
		slog.String("severity", alert.Severity),
		slog.String("service", alert.Service))

	// Apply rate limiting
	if err := t.rateLimiter.Allow(ctx); err != nil {
		slog.Error("Rate limiter error",
			slog.String("request_id", requestID),
			slog.String("subject", alert.Subject),
			slog.Any("error", err))
		return fmt.Errorf("rate limiter error: %w", err)
	}

	// Send the message with retry logic
	return t.sendRequestWithRetry(ctx, alert)
}
