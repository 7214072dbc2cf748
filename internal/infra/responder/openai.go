package responder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	openai "github.com/sashabaranov/go-openai"

	"call-agent/internal/domain/fault"
	"call-agent/internal/utils/text"
	pkgconfig "call-agent/pkg/config"
)

// OpenAIConfig holds configuration parameters for the OpenAI responder.
// Configuration is loaded from environment variables with fallback to defaults.
type OpenAIConfig struct {
	// Model is the OpenAI API model identifier to use for responses.
	// Loaded from LLM_MODEL. Default: "gpt-3.5-turbo".
	Model string

	// MaxTokens is the maximum number of tokens for the API response.
	// Loaded from LLM_MAX_TOKENS. Default: 256.
	MaxTokens int

	// BaseURL is the API base URL. The chat completion route is appended
	// by the client library. Loaded from LLM_URL.
	// Default: "https://api.openai.com/v1".
	BaseURL string

	// Timeout is the maximum duration for a single response API call.
	// Loaded from LLM_TIMEOUT. Default: 30s.
	Timeout time.Duration
}

// Validate validates the configuration and returns an error if invalid.
func (c *OpenAIConfig) Validate() error {
	if c.Model == "" {
		return fmt.Errorf("model cannot be empty")
	}

	if c.MaxTokens <= 0 {
		return fmt.Errorf("max tokens must be positive, got %d", c.MaxTokens)
	}

	if c.BaseURL == "" {
		return fmt.Errorf("base url cannot be empty")
	}

	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.Timeout)
	}

	return nil
}

// LoadOpenAIConfig loads configuration from environment variables.
// Returns an error if the configuration is invalid (fail-closed behavior).
//
// Environment variables:
//   - LLM_MODEL: Model identifier (default: "gpt-3.5-turbo")
//   - LLM_MAX_TOKENS: Response token cap (default: 256)
//   - LLM_URL: API base URL (default: "https://api.openai.com/v1")
//   - LLM_TIMEOUT: Per-call timeout (default: 30s)
func LoadOpenAIConfig() (*OpenAIConfig, error) {
	config := &OpenAIConfig{
		Model:     pkgconfig.GetEnvString("LLM_MODEL", openai.GPT3Dot5Turbo),
		MaxTokens: pkgconfig.GetEnvInt("LLM_MAX_TOKENS", 256),
		BaseURL:   pkgconfig.GetEnvString("LLM_URL", "https://api.openai.com/v1"),
		Timeout:   pkgconfig.GetEnvDuration("LLM_TIMEOUT", 30*time.Second),
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid OpenAI configuration: %w", err)
	}

	return config, nil
}

// OpenAI generates call responses through OpenAI's chat completion API.
type OpenAI struct {
	client *openai.Client
	config OpenAIConfig
}

// NewOpenAI creates a new OpenAI responder with the given API key and configuration.
func NewOpenAI(apiKey string, config *OpenAIConfig) *OpenAI {
	clientConfig := openai.DefaultConfig(apiKey)
	clientConfig.BaseURL = config.BaseURL

	slog.Info("Initialized OpenAI responder",
		slog.String("model", config.Model),
		slog.Int("max_tokens", config.MaxTokens),
		slog.Duration("timeout", config.Timeout))

	return &OpenAI{
		client: openai.NewClientWithConfig(clientConfig),
		config: *config,
	}
}

// Respond generates a response for the given prompt.
// An empty prompt is a permanent fault, matching the provider's payload
// validation. API errors are classified by status code: 429, 408 and 5xx
// responses are transient, other rejections are permanent. Transport
// failures are transient.
func (o *OpenAI) Respond(ctx context.Context, prompt string) (string, error) {
	if prompt == "" {
		return "", fault.Permanent(ServiceName, "Invalid payload: prompt must be a non-empty string", nil)
	}

	requestID := uuid.New().String()

	ctx, cancel := context.WithTimeout(ctx, o.config.Timeout)
	defer cancel()

	slog.InfoContext(ctx, "Calling LLM API",
		slog.String("request_id", requestID),
		slog.String("provider", "openai"),
		slog.Int("prompt_length", text.CountRunes(prompt)))

	start := time.Now()

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     o.config.Model,
		MaxTokens: o.config.MaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
	})

	duration := time.Since(start)

	if err != nil {
		slog.ErrorContext(ctx, "LLM API call failed",
			slog.String("request_id", requestID),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		return "", classifyOpenAIError(err)
	}

	if len(resp.Choices) == 0 {
		slog.ErrorContext(ctx, "LLM API returned empty response",
			slog.String("request_id", requestID),
			slog.Duration("duration", duration))
		return "", fault.Transient(ServiceName, "empty response from chat completion", nil)
	}

	response := resp.Choices[0].Message.Content

	slog.InfoContext(ctx, "LLM API call successful",
		slog.String("request_id", requestID),
		slog.Int("response_length", text.CountRunes(response)),
		slog.Duration("duration", duration))

	return response, nil
}

// Ping probes the API for reachability by listing available models.
func (o *OpenAI) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, o.config.Timeout)
	defer cancel()

	if _, err := o.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

// classifyOpenAIError converts a client library error into a fault kind.
// The library reports HTTP rejections as APIError when the body parses as
// an error envelope and as RequestError otherwise; both carry the status.
func classifyOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return classifyStatus(apiErr.HTTPStatusCode, apiErr.Message, err)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return classifyStatus(reqErr.HTTPStatusCode, "", err)
	}

	// Network errors and timeouts are worth retrying.
	return fault.Transient(ServiceName, fmt.Sprintf("request failed: %v", err), err)
}
