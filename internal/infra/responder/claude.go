package responder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/google/uuid"

	"call-agent/internal/domain/fault"
	"call-agent/internal/utils/text"
	pkgconfig "call-agent/pkg/config"
)

// ClaudeConfig holds configuration parameters for the Claude responder.
type ClaudeConfig struct {
	// Model is the Claude API model identifier to use for responses.
	Model string

	// MaxTokens is the maximum number of tokens for the API response.
	MaxTokens int

	// Timeout is the maximum duration for a single response API call.
	// Loaded from LLM_TIMEOUT. Default: 30s.
	Timeout time.Duration
}

// LoadClaudeConfig loads configuration from environment variables.
// Invalid values fall back to defaults with a warning log.
//
// Environment variables:
//   - LLM_TIMEOUT: Per-call timeout (default: 30s)
func LoadClaudeConfig() ClaudeConfig {
	return ClaudeConfig{
		Model:     "claude-sonnet-4-5-20250929",
		MaxTokens: 1024,
		Timeout:   pkgconfig.GetEnvDuration("LLM_TIMEOUT", 30*time.Second),
	}
}

// Claude generates call responses through Anthropic's Claude API.
type Claude struct {
	client anthropic.Client
	config ClaudeConfig
}

// NewClaude creates a new Claude responder with the given API key.
// Additional request options are appended after the defaults, which lets
// tests point the client at a local server.
func NewClaude(apiKey string, opts ...option.RequestOption) *Claude {
	config := LoadClaudeConfig()

	slog.Info("Initialized Claude responder",
		slog.String("model", config.Model),
		slog.Int("max_tokens", config.MaxTokens),
		slog.Duration("timeout", config.Timeout))

	// The resilience layer owns retries. The client library's built-in
	// retry is turned off so backoff happens in exactly one place.
	clientOpts := append([]option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}, opts...)

	return &Claude{
		client: anthropic.NewClient(clientOpts...),
		config: config,
	}
}

// Respond generates a response for the given prompt.
// Classification mirrors the OpenAI adapter: empty prompts are permanent,
// 429/408/5xx rejections and transport failures are transient, and other
// rejections are permanent.
func (c *Claude) Respond(ctx context.Context, prompt string) (string, error) {
	if prompt == "" {
		return "", fault.Permanent(ServiceName, "Invalid payload: prompt must be a non-empty string", nil)
	}

	requestID := uuid.New().String()

	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	slog.InfoContext(ctx, "Calling LLM API",
		slog.String("request_id", requestID),
		slog.String("provider", "claude"),
		slog.Int("prompt_length", text.CountRunes(prompt)))

	start := time.Now()

	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.config.Model),
		MaxTokens: int64(c.config.MaxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(
				anthropic.NewTextBlock(prompt),
			),
		},
	})

	duration := time.Since(start)

	if err != nil {
		slog.ErrorContext(ctx, "LLM API call failed",
			slog.String("request_id", requestID),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		return "", classifyClaudeError(err)
	}

	if len(message.Content) == 0 {
		slog.ErrorContext(ctx, "LLM API returned empty response",
			slog.String("request_id", requestID),
			slog.Duration("duration", duration))
		return "", fault.Transient(ServiceName, "empty response from messages API", nil)
	}

	textBlock, ok := message.Content[0].AsAny().(anthropic.TextBlock)
	if !ok {
		slog.ErrorContext(ctx, "LLM API returned unexpected response type",
			slog.String("request_id", requestID),
			slog.Duration("duration", duration))
		return "", fault.Transient(ServiceName, "unexpected response type from messages API", nil)
	}

	response := textBlock.Text

	slog.InfoContext(ctx, "LLM API call successful",
		slog.String("request_id", requestID),
		slog.Int("response_length", text.CountRunes(response)),
		slog.Duration("duration", duration))

	return response, nil
}

// Ping probes the API for reachability by listing available models.
func (c *Claude) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	if _, err := c.client.Models.List(ctx, anthropic.ModelListParams{}); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

// classifyClaudeError converts a client library error into a fault kind.
func classifyClaudeError(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return classifyStatus(apiErr.StatusCode, "", err)
	}

	// Network errors and timeouts are worth retrying.
	return fault.Transient(ServiceName, fmt.Sprintf("request failed: %v", err), err)
}
