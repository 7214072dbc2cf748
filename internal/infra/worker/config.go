package worker

import (
	"fmt"
	"log/slog"
	"time"

	"call-agent/internal/pkg/config"
)

// AgentConfig holds the configuration for the call agent process.
// It controls campaign scheduling, call pacing, the resilience policies
// applied to every external dependency, and the operational endpoints.
//
// Configuration sources:
//   - Environment variables (loaded via LoadConfigFromEnv)
//   - Default values (provided by DefaultConfig)
//
// All fields have sensible defaults and validation rules so the agent can
// operate safely even with invalid or missing configuration.
//
// Example usage:
//
//	// Use defaults
//	config := DefaultConfig()
//
//	// Load from environment with fallback
//	config, err := LoadConfigFromEnv(logger, metrics)
//	if err != nil {
//	    // This should never happen with fail-open strategy
//	    log.Fatal("Unexpected configuration error: %v", err)
//	}
//
//	// Validate before use (optional, LoadConfigFromEnv already validates)
//	if err := config.Validate(); err != nil {
//	    log.Fatal("Invalid configuration: %v", err)
//	}
type AgentConfig struct {
	// CampaignSchedule is the cron expression for campaign scheduling.
	// Format: "minute hour day month weekday"
	// Example: "0 9 * * *" (every day at 9:00)
	// Validation: Must be a valid cron expression (5 fields)
	// Default: "0 9 * * *"
	CampaignSchedule string

	// Timezone is the IANA timezone name for campaign scheduling.
	// Example: "Asia/Tokyo", "UTC", "America/New_York"
	// Validation: Must be a valid IANA timezone name
	// Default: "Asia/Tokyo"
	Timezone string

	// RunOnStart triggers one campaign immediately at process start,
	// before the scheduler takes over.
	// Default: true
	RunOnStart bool

	// CampaignTimeout is the maximum duration for a single campaign run.
	// After this timeout, the campaign is interrupted mid-queue.
	// Must be positive (> 0)
	// Default: 30 minutes
	CampaignTimeout time.Duration

	// CallPause is the pause between successful calls, pacing the queue so
	// a recovered dependency is not immediately flooded.
	// Range: 0-60s (zero disables pacing)
	// Default: 2 seconds
	CallPause time.Duration

	// AlertMaxConcurrent is the maximum number of concurrent alert
	// deliveries across all channels.
	// Range: 1-50
	// Default: 10
	AlertMaxConcurrent int

	// BreakerFailureThreshold is the number of consecutive classified
	// failures that opens a dependency's circuit breaker.
	// Range: 1-20
	// Default: 3
	BreakerFailureThreshold int

	// BreakerSuccessThreshold is the number of successful probe calls in
	// HALF_OPEN that closes the breaker again.
	// Range: 1-20
	// Default: 2
	BreakerSuccessThreshold int

	// BreakerOpenTimeout is how long a breaker stays OPEN before admitting
	// probe calls.
	// Range: 1s-1h
	// Default: 30 seconds
	BreakerOpenTimeout time.Duration

	// RetryMaxAttempts is the total number of attempts per dependency
	// call, the initial call included.
	// Range: 1-10
	// Default: 3
	RetryMaxAttempts int

	// RetryInitialDelay is the wait before the first retry.
	// Range: 100ms-5m
	// Default: 5 seconds
	RetryInitialDelay time.Duration

	// RetryMultiplier scales the retry delay after each attempt.
	// Range: 1.0-10.0
	// Default: 2.0
	RetryMultiplier float64

	// HealthCheckInterval is how often each dependency's background
	// monitor pings it.
	// Range: 1s-10m
	// Default: 10 seconds
	HealthCheckInterval time.Duration

	// HealthDownThreshold is the number of consecutive failed pings before
	// a dependency is reported down.
	// Range: 1-20
	// Default: 3
	HealthDownThreshold int

	// HealthPort is the port number for the health check HTTP server.
	// Range: 1024-65535 (avoid privileged ports)
	// Default: 9091
	HealthPort int
}

// DefaultConfig returns an AgentConfig with sensible default values.
// These defaults are optimized for:
//   - Typical usage: Daily campaign at 9:00 JST, run once at startup
//   - Safety: 30-minute timeout prevents stuck campaigns
//   - Resilience: Three strikes to open a breaker, 5s/10s retry waits
//   - Standard ports: 9091 for health checks (common Prometheus exporter port)
//
// Returns:
//   - AgentConfig with production-ready default values
//
// Example:
//
//	config := DefaultConfig()
//	config.CampaignSchedule = "0 */4 * * *"  // Customize to run every 4 hours
func DefaultConfig() AgentConfig {
	return AgentConfig{
		CampaignSchedule:        "0 9 * * *",      // Every day at 9:00 AM
		Timezone:                "Asia/Tokyo",     // JST
		RunOnStart:              true,             // One campaign right away
		CampaignTimeout:         30 * time.Minute, // 30 minutes
		CallPause:               2 * time.Second,  // Pause between successful calls
		AlertMaxConcurrent:      10,               // 10 concurrent alert deliveries
		BreakerFailureThreshold: 3,                // Three strikes to open
		BreakerSuccessThreshold: 2,                // Two probes to close
		BreakerOpenTimeout:      30 * time.Second, // 30 seconds in the penalty box
		RetryMaxAttempts:        3,                // Initial call plus two retries
		RetryInitialDelay:       5 * time.Second,  // First retry after 5s
		RetryMultiplier:         2.0,              // 5s, then 10s
		HealthCheckInterval:     10 * time.Second, // Ping dependencies every 10s
		HealthDownThreshold:     3,                // Three failed pings = down
		HealthPort:              9091,             // Standard Prometheus exporter port
	}
}

// Validate checks if the configuration values are valid.
// This method validates each field using the reusable validators from internal/pkg/config.
// If multiple fields are invalid, all errors are collected and returned together.
//
// Validation rules:
//   - CampaignSchedule: Must be a valid cron expression (validated by robfig/cron parser)
//   - Timezone: Must be a valid IANA timezone name (validated by time.LoadLocation)
//   - CampaignTimeout: Must be positive (> 0)
//   - CallPause: Must be between 0 and 60 seconds
//   - AlertMaxConcurrent: Must be between 1 and 50 (inclusive)
//   - BreakerFailureThreshold: Must be between 1 and 20 (inclusive)
//   - BreakerSuccessThreshold: Must be between 1 and 20 (inclusive)
//   - BreakerOpenTimeout: Must be between 1 second and 1 hour
//   - RetryMaxAttempts: Must be between 1 and 10 (inclusive)
//   - RetryInitialDelay: Must be between 100ms and 5 minutes
//   - RetryMultiplier: Must be between 1.0 and 10.0
//   - HealthCheckInterval: Must be between 1 second and 10 minutes
//   - HealthDownThreshold: Must be between 1 and 20 (inclusive)
//   - HealthPort: Must be between 1024 and 65535 (avoid privileged ports)
//
// Returns:
//   - error: nil if configuration is valid, aggregated error if any validation fails
//
// Example:
//
//	config := DefaultConfig()
//	if err := config.Validate(); err != nil {
//	    log.Fatal("Invalid configuration: %v", err)
//	}
func (c *AgentConfig) Validate() error {
	var errors []error

	if err := config.ValidateCronSchedule(c.CampaignSchedule); err != nil {
		errors = append(errors, fmt.Errorf("campaign schedule: %w", err))
	}

	if err := config.ValidateTimezone(c.Timezone); err != nil {
		errors = append(errors, fmt.Errorf("timezone: %w", err))
	}

	if err := config.ValidatePositiveDuration(c.CampaignTimeout); err != nil {
		errors = append(errors, fmt.Errorf("campaign timeout: %w", err))
	}

	if err := config.ValidateDuration(c.CallPause, 0, 60*time.Second); err != nil {
		errors = append(errors, fmt.Errorf("call pause: %w", err))
	}

	if err := config.ValidateIntRange(c.AlertMaxConcurrent, 1, 50); err != nil {
		errors = append(errors, fmt.Errorf("alert max concurrent: %w", err))
	}

	if err := config.ValidateIntRange(c.BreakerFailureThreshold, 1, 20); err != nil {
		errors = append(errors, fmt.Errorf("breaker failure threshold: %w", err))
	}

	if err := config.ValidateIntRange(c.BreakerSuccessThreshold, 1, 20); err != nil {
		errors = append(errors, fmt.Errorf("breaker success threshold: %w", err))
	}

	if err := config.ValidateDuration(c.BreakerOpenTimeout, 1*time.Second, 1*time.Hour); err != nil {
		errors = append(errors, fmt.Errorf("breaker open timeout: %w", err))
	}

	if err := config.ValidateIntRange(c.RetryMaxAttempts, 1, 10); err != nil {
		errors = append(errors, fmt.Errorf("retry max attempts: %w", err))
	}

	if err := config.ValidateDuration(c.RetryInitialDelay, 100*time.Millisecond, 5*time.Minute); err != nil {
		errors = append(errors, fmt.Errorf("retry initial delay: %w", err))
	}

	if err := config.ValidateFloatRange(c.RetryMultiplier, 1.0, 10.0); err != nil {
		errors = append(errors, fmt.Errorf("retry multiplier: %w", err))
	}

	if err := config.ValidateDuration(c.HealthCheckInterval, 1*time.Second, 10*time.Minute); err != nil {
		errors = append(errors, fmt.Errorf("health check interval: %w", err))
	}

	if err := config.ValidateIntRange(c.HealthDownThreshold, 1, 20); err != nil {
		errors = append(errors, fmt.Errorf("health down threshold: %w", err))
	}

	if err := config.ValidateIntRange(c.HealthPort, 1024, 65535); err != nil {
		errors = append(errors, fmt.Errorf("health port: %w", err))
	}

	if len(errors) > 0 {
		return fmt.Errorf("validation failed: %v", errors)
	}

	return nil
}

// LoadConfigFromEnv loads agent configuration from environment variables
// with validation and automatic fallback to default values on failure.
//
// This function implements the fail-open strategy:
//  1. Start with DefaultConfig() as base
//  2. Load each field from environment variables
//  3. Validate each loaded value
//  4. If validation fails: use default value, log warning, increment metrics
//  5. Never return error - always return a valid configuration
//
// Environment variables:
//   - CAMPAIGN_SCHEDULE: Cron expression (default: "0 9 * * *")
//   - AGENT_TIMEZONE: IANA timezone name (default: "Asia/Tokyo")
//   - RUN_ON_START: Boolean (default: true)
//   - CAMPAIGN_TIMEOUT: Duration string, e.g., "30m" (default: 30 minutes)
//   - CALL_PAUSE: Duration string, e.g., "2s" (default: 2 seconds)
//   - ALERT_MAX_CONCURRENT: Integer 1-50 (default: 10)
//   - BREAKER_FAILURE_THRESHOLD: Integer 1-20 (default: 3)
//   - BREAKER_SUCCESS_THRESHOLD: Integer 1-20 (default: 2)
//   - BREAKER_OPEN_TIMEOUT: Duration 1s-1h (default: 30 seconds)
//   - RETRY_MAX_ATTEMPTS: Integer 1-10 (default: 3)
//   - RETRY_INITIAL_DELAY: Duration 100ms-5m (default: 5 seconds)
//   - RETRY_BACKOFF_MULTIPLIER: Float 1.0-10.0 (default: 2.0)
//   - HEALTH_CHECK_INTERVAL: Duration 1s-10m (default: 10 seconds)
//   - HEALTH_DOWN_THRESHOLD: Integer 1-20 (default: 3)
//   - AGENT_HEALTH_PORT: Integer 1024-65535 (default: 9091)
//
// Metrics updated:
//   - ValidationErrorsTotal: Incremented for each validation failure
//   - FallbacksTotal: Incremented for each fallback applied
//   - FallbackActive: Set to 1 if any fallback is active, 0 otherwise
//   - LoadTimestamp: Set to current time after successful load
//
// Parameters:
//   - logger: Structured logger for warnings
//   - metrics: Metrics instance for tracking fallbacks
//
// Returns:
//   - *AgentConfig: Valid configuration (never nil)
//   - error: Always nil (fail-open strategy)
//
// Example:
//
//	logger := slog.Default()
//	metrics := NewAgentMetrics()
//	config, _ := LoadConfigFromEnv(logger, metrics)
//	// config is always valid and ready to use
func LoadConfigFromEnv(logger *slog.Logger, metrics *AgentMetrics) (*AgentConfig, error) {
	// Start with default config
	cfg := DefaultConfig()
	fallbackApplied := false

	// noteFallback records metrics and warnings for one loaded field.
	noteFallback := func(field string, result config.ConfigLoadResult) {
		if !result.FallbackApplied {
			return
		}
		fallbackApplied = true
		metrics.RecordValidationError(field)
		metrics.RecordFallback(field, "default")
		for _, warning := range result.Warnings {
			logger.Warn("Configuration fallback applied",
				slog.String("field", field),
				slog.String("warning", warning))
		}
	}

	result := config.LoadEnvWithFallback("CAMPAIGN_SCHEDULE", cfg.CampaignSchedule, config.ValidateCronSchedule)
	cfg.CampaignSchedule = result.Value.(string)
	noteFallback("campaign_schedule", result)

	result = config.LoadEnvWithFallback("AGENT_TIMEZONE", cfg.Timezone, config.ValidateTimezone)
	cfg.Timezone = result.Value.(string)
	noteFallback("timezone", result)

	result = config.LoadEnvBool("RUN_ON_START", cfg.RunOnStart)
	cfg.RunOnStart = result.Value.(bool)
	noteFallback("run_on_start", result)

	result = config.LoadEnvDuration("CAMPAIGN_TIMEOUT", cfg.CampaignTimeout, func(d time.Duration) error {
		return config.ValidateDuration(d, 1*time.Minute, 4*time.Hour)
	})
	cfg.CampaignTimeout = result.Value.(time.Duration)
	noteFallback("campaign_timeout", result)

	result = config.LoadEnvDuration("CALL_PAUSE", cfg.CallPause, func(d time.Duration) error {
		return config.ValidateDuration(d, 0, 60*time.Second)
	})
	cfg.CallPause = result.Value.(time.Duration)
	noteFallback("call_pause", result)

	result = config.LoadEnvInt("ALERT_MAX_CONCURRENT", cfg.AlertMaxConcurrent, func(v int) error {
		return config.ValidateIntRange(v, 1, 50)
	})
	cfg.AlertMaxConcurrent = result.Value.(int)
	noteFallback("alert_max_concurrent", result)

	result = config.LoadEnvInt("BREAKER_FAILURE_THRESHOLD", cfg.BreakerFailureThreshold, func(v int) error {
		return config.ValidateIntRange(v, 1, 20)
	})
	cfg.BreakerFailureThreshold = result.Value.(int)
	noteFallback("breaker_failure_threshold", result)

	result = config.LoadEnvInt("BREAKER_SUCCESS_THRESHOLD", cfg.BreakerSuccessThreshold, func(v int) error {
		return config.ValidateIntRange(v, 1, 20)
	})
	cfg.BreakerSuccessThreshold = result.Value.(int)
	noteFallback("breaker_success_threshold", result)

	result = config.LoadEnvDuration("BREAKER_OPEN_TIMEOUT", cfg.BreakerOpenTimeout, func(d time.Duration) error {
		return config.ValidateDuration(d, 1*time.Second, 1*time.Hour)
	})
	cfg.BreakerOpenTimeout = result.Value.(time.Duration)
	noteFallback("breaker_open_timeout", result)

	result = config.LoadEnvInt("RETRY_MAX_ATTEMPTS", cfg.RetryMaxAttempts, func(v int) error {
		return config.ValidateIntRange(v, 1, 10)
	})
	cfg.RetryMaxAttempts = result.Value.(int)
	noteFallback("retry_max_attempts", result)

	result = config.LoadEnvDuration("RETRY_INITIAL_DELAY", cfg.RetryInitialDelay, func(d time.Duration) error {
		return config.ValidateDuration(d, 100*time.Millisecond, 5*time.Minute)
	})
	cfg.RetryInitialDelay = result.Value.(time.Duration)
	noteFallback("retry_initial_delay", result)

	result = config.LoadEnvFloat("RETRY_BACKOFF_MULTIPLIER", cfg.RetryMultiplier, func(v float64) error {
		return config.ValidateFloatRange(v, 1.0, 10.0)
	})
	cfg.RetryMultiplier = result.Value.(float64)
	noteFallback("retry_backoff_multiplier", result)

	result = config.LoadEnvDuration("HEALTH_CHECK_INTERVAL", cfg.HealthCheckInterval, func(d time.Duration) error {
		return config.ValidateDuration(d, 1*time.Second, 10*time.Minute)
	})
	cfg.HealthCheckInterval = result.Value.(time.Duration)
	noteFallback("health_check_interval", result)

	result = config.LoadEnvInt("HEALTH_DOWN_THRESHOLD", cfg.HealthDownThreshold, func(v int) error {
		return config.ValidateIntRange(v, 1, 20)
	})
	cfg.HealthDownThreshold = result.Value.(int)
	noteFallback("health_down_threshold", result)

	result = config.LoadEnvInt("AGENT_HEALTH_PORT", cfg.HealthPort, func(v int) error {
		return config.ValidateIntRange(v, 1024, 65535)
	})
	cfg.HealthPort = result.Value.(int)
	noteFallback("health_port", result)

	// Update metrics
	metrics.SetFallbackActive("", fallbackApplied)
	metrics.RecordLoadTimestamp()

	// Always return valid config (fail-open strategy)
	return &cfg, nil
}
