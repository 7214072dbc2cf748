// Package synthesizer provides text-to-speech implementations for the call agent.
// It includes an ElevenLabs HTTP adapter and a deterministic mock used in demos
// and tests. Implementations classify provider failures into the fault kinds
// that the resilience layer understands: transient failures are retried,
// permanent failures are surfaced immediately.
package synthesizer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/google/uuid"

	"call-agent/internal/domain/fault"
	pkgconfig "call-agent/pkg/config"
)

// ServiceName identifies the text-to-speech dependency in faults, alerts,
// and failure log records.
const ServiceName = "ElevenLabs"

// ElevenLabsConfig holds configuration parameters for the ElevenLabs synthesizer.
// Configuration is loaded from environment variables with fallback to defaults.
type ElevenLabsConfig struct {
	// APIKey authenticates requests against the ElevenLabs API.
	// Loaded from ELEVENLABS_API_KEY. Required.
	APIKey string

	// VoiceID selects the voice used for synthesis.
	// Loaded from ELEVENLABS_VOICE_ID. Default: "21m00Tcm4TlvDq8ikWAM".
	VoiceID string

	// BaseURL is the text-to-speech endpoint without the voice segment.
	// Loaded from ELEVENLABS_URL. Default: "https://api.elevenlabs.io/v1/text-to-speech".
	BaseURL string

	// ModelID is the ElevenLabs model identifier to use for synthesis.
	// Loaded from ELEVENLABS_MODEL_ID. Default: "eleven_multilingual_v2".
	ModelID string

	// Timeout is the maximum duration for a single synthesis API call.
	// Loaded from ELEVENLABS_TIMEOUT. Default: 30s.
	Timeout time.Duration
}

// Validate validates the configuration and returns an error if invalid.
func (c *ElevenLabsConfig) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("api key cannot be empty")
	}

	if c.VoiceID == "" {
		return fmt.Errorf("voice id cannot be empty")
	}

	if c.BaseURL == "" {
		return fmt.Errorf("base url cannot be empty")
	}

	parsed, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base url %q: %w", c.BaseURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("base url %q must use http or https", c.BaseURL)
	}

	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.Timeout)
	}

	return nil
}

// LoadElevenLabsConfig loads configuration from environment variables.
// The API key is required; a missing key is a startup error rather than a
// per-call failure (fail-closed behavior).
//
// Environment variables:
//   - ELEVENLABS_API_KEY: API key (required)
//   - ELEVENLABS_VOICE_ID: Voice identifier (default: "21m00Tcm4TlvDq8ikWAM")
//   - ELEVENLABS_URL: Text-to-speech endpoint (default: "https://api.elevenlabs.io/v1/text-to-speech")
//   - ELEVENLABS_MODEL_ID: Model identifier (default: "eleven_multilingual_v2")
//   - ELEVENLABS_TIMEOUT: Per-call timeout (default: 30s)
func LoadElevenLabsConfig() (*ElevenLabsConfig, error) {
	config := &ElevenLabsConfig{
		APIKey:  os.Getenv("ELEVENLABS_API_KEY"),
		VoiceID: pkgconfig.GetEnvString("ELEVENLABS_VOICE_ID", "21m00Tcm4TlvDq8ikWAM"),
		BaseURL: pkgconfig.GetEnvString("ELEVENLABS_URL", "https://api.elevenlabs.io/v1/text-to-speech"),
		ModelID: pkgconfig.GetEnvString("ELEVENLABS_MODEL_ID", "eleven_multilingual_v2"),
		Timeout: pkgconfig.GetEnvDuration("ELEVENLABS_TIMEOUT", 30*time.Second),
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid ElevenLabs configuration: %w", err)
	}

	return config, nil
}

// ElevenLabs synthesizes speech through the ElevenLabs HTTP API.
// It carries no retry or circuit breaker logic of its own. Callers wrap it
// in a resilience guard; this type only classifies failures so the guard
// can tell retryable outages from rejected requests.
type ElevenLabs struct {
	config ElevenLabsConfig
	client *http.Client
}

// NewElevenLabs creates a new ElevenLabs synthesizer with the given configuration.
func NewElevenLabs(config *ElevenLabsConfig) *ElevenLabs {
	slog.Info("Initialized ElevenLabs synthesizer",
		slog.String("voice_id", config.VoiceID),
		slog.String("model_id", config.ModelID),
		slog.Duration("timeout", config.Timeout))

	return &ElevenLabs{
		config: *config,
		client: &http.Client{Timeout: config.Timeout},
	}
}

// synthesisRequest is the JSON payload for the text-to-speech endpoint.
type synthesisRequest struct {
	Text    string `json:"text"`
	ModelID string `json:"model_id"`
}

// Synthesize converts text to speech and returns the raw audio bytes.
// An empty text is a permanent fault, matching the provider's payload
// validation. HTTP failures are classified by status code: 429, 408 and
// 5xx responses are transient, other 4xx responses are permanent.
func (e *ElevenLabs) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if text == "" {
		return nil, fault.Permanent(ServiceName, "Invalid payload: 'text' must be a non-empty string", nil)
	}

	requestID := uuid.New().String()

	ctx, cancel := context.WithTimeout(ctx, e.config.Timeout)
	defer cancel()

	payload, err := json.Marshal(synthesisRequest{Text: text, ModelID: e.config.ModelID})
	if err != nil {
		return nil, fault.Permanent(ServiceName, "failed to encode synthesis request", err)
	}

	endpoint := e.config.BaseURL + "/" + e.config.VoiceID
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fault.Permanent(ServiceName, "failed to build synthesis request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")
	req.Header.Set("xi-api-key", e.config.APIKey)

	slog.InfoContext(ctx, "Calling ElevenLabs text-to-speech API",
		slog.String("request_id", requestID),
		slog.Int("text_length", len(text)))

	start := time.Now()
	resp, err := e.client.Do(req)
	duration := time.Since(start)

	if err != nil {
		slog.ErrorContext(ctx, "ElevenLabs request failed",
			slog.String("request_id", requestID),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		// Network errors and timeouts are worth retrying.
		return nil, fault.Transient(ServiceName, fmt.Sprintf("request failed: %v", err), err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		slog.WarnContext(ctx, "ElevenLabs returned non-OK status",
			slog.String("request_id", requestID),
			slog.Int("status", resp.StatusCode),
			slog.Duration("duration", duration))
		return nil, classifyStatus(resp.StatusCode, string(body))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fault.Transient(ServiceName, "failed to read audio response", err)
	}

	slog.InfoContext(ctx, "ElevenLabs API call successful",
		slog.String("request_id", requestID),
		slog.Int("audio_bytes", len(audio)),
		slog.Duration("duration", duration))

	return audio, nil
}

// Ping probes the text-to-speech endpoint for reachability. Transport
// failures and 5xx responses mark the dependency unhealthy; any other
// response proves the service is up and able to reject or serve requests.
func (e *ElevenLabs) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, e.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.config.BaseURL, nil)
	if err != nil {
		return fmt.Errorf("build health check request: %w", err)
	}
	req.Header.Set("xi-api-key", e.config.APIKey)

	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("health check request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// classifyStatus maps an HTTP status code to a fault kind. The body excerpt
// is kept in the message so alerts show what the provider actually said.
func classifyStatus(status int, body string) error {
	message := fmt.Sprintf("Service temporarily unavailable (%d)", status)
	switch {
	case status == http.StatusTooManyRequests,
		status == http.StatusRequestTimeout,
		status >= http.StatusInternalServerError:
		return fault.Transient(ServiceName, message, nil)
	default:
		if body != "" {
			return fault.Permanent(ServiceName, fmt.Sprintf("Request rejected with status %d: %s", status, body), nil)
		}
		return fault.Permanent(ServiceName, fmt.Sprintf("Request rejected with status %d", status), nil)
	}
}
