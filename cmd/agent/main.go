package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"call-agent/internal/domain/entity"
	"call-agent/internal/infra/alerter"
	"call-agent/internal/infra/contactlist"
	"call-agent/internal/infra/faillog"
	"call-agent/internal/infra/responder"
	"call-agent/internal/infra/synthesizer"
	workerPkg "call-agent/internal/infra/worker"
	"call-agent/internal/observability/logging"
	"call-agent/internal/pkg/runid"
	"call-agent/internal/resilience"
	"call-agent/internal/resilience/circuitbreaker"
	"call-agent/internal/resilience/health"
	"call-agent/internal/resilience/retry"
	agentUC "call-agent/internal/usecase/agent"
	alertUC "call-agent/internal/usecase/alert"
	pkgconfig "call-agent/pkg/config"
)

// telegramAPIBaseURL is the only Telegram host alerts are ever sent to.
const telegramAPIBaseURL = "https://api.telegram.org"

// Responder is the language-model dependency as the wiring sees it: the
// campaign calls Respond, the health monitor polls Ping.
type Responder interface {
	agentUC.Responder
	Ping(ctx context.Context) error
}

// Synthesizer is the text-to-speech dependency as the wiring sees it.
type Synthesizer interface {
	agentUC.Synthesizer
	Ping(ctx context.Context) error
}

func main() {
	// .env is optional; local runs pick credentials up from it, deployments
	// set the environment directly.
	dotenvErr := godotenv.Load()

	logger := initLogger()
	if dotenvErr == nil {
		logger.Info(".env file loaded")
	}

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load agent configuration (fail-open strategy)
	agentMetrics := workerPkg.NewAgentMetrics()
	agentMetrics.MustRegister()
	agentConfig, err := workerPkg.LoadConfigFromEnv(logger, agentMetrics)
	if err != nil {
		logger.Error("failed to load agent configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("agent configuration loaded",
		slog.String("campaign_schedule", agentConfig.CampaignSchedule),
		slog.String("timezone", agentConfig.Timezone),
		slog.Bool("run_on_start", agentConfig.RunOnStart),
		slog.Duration("campaign_timeout", agentConfig.CampaignTimeout),
		slog.Duration("call_pause", agentConfig.CallPause),
		slog.Int("health_port", agentConfig.HealthPort))

	// Initialize webhook alert channel
	webhookConfig := loadWebhookConfig(logger)
	var channels []alertUC.Channel
	if webhookConfig.Enabled {
		channels = append(channels, alertUC.NewWebhookChannel(webhookConfig))
		logger.Info("Webhook channel initialized", slog.String("status", "enabled"))
	} else {
		logger.Info("Webhook channel disabled")
	}

	// Initialize Telegram alert channel
	telegramConfig := loadTelegramConfig(logger)
	if telegramConfig.Enabled {
		channels = append(channels, alertUC.NewTelegramChannel(telegramConfig))
		logger.Info("Telegram channel initialized", slog.String("status", "enabled"))
	} else {
		logger.Info("Telegram channel disabled")
	}

	// Initialize email alert channel
	emailConfig := loadEmailConfig(logger)
	if emailConfig.Enabled {
		channels = append(channels, alertUC.NewEmailChannel(emailConfig))
		logger.Info("Email channel initialized", slog.String("status", "enabled"))
	} else {
		logger.Info("Email channel disabled")
	}

	alertManager := alertUC.NewManager(channels, agentConfig.AlertMaxConcurrent)
	logger.Info("Alert manager initialized",
		slog.Int("channels", len(channels)),
		slog.Int("max_concurrent", agentConfig.AlertMaxConcurrent))

	// Open the failure log; every classified failure the guards see lands here
	failLog, err := faillog.New(os.Getenv("FAILLOG_PATH"))
	if err != nil {
		logger.Error("failed to open failure log", slog.Any("error", err))
		os.Exit(1)
	}

	// Build the protected dependencies and their resilience pipelines
	resp := createResponder(logger)
	synth := createSynthesizer(logger)
	llmGuard := buildGuard(responder.ServiceName, resp.Ping, agentConfig, alertManager, failLog)
	ttsGuard := buildGuard(synthesizer.ServiceName, synth.Ping, agentConfig, alertManager, failLog)

	// Start metrics HTTP server
	startMetricsServer(ctx, logger, alertManager)

	// Start health check server
	healthAddr := fmt.Sprintf(":%d", agentConfig.HealthPort)
	healthServer := workerPkg.NewHealthServer(healthAddr, logger,
		func() []resilience.Status {
			return []resilience.Status{llmGuard.Status(), ttsGuard.Status()}
		},
		alertManager.GetChannelHealth)
	go func() {
		if err := healthServer.Start(ctx); err != nil && err != http.ErrServerClosed {
			logger.Error("health server failed", slog.Any("error", err))
		}
	}()
	logger.Info("health check server started", slog.String("addr", healthAddr))

	// Health monitors poll the dependencies between campaigns
	llmGuard.Start()
	ttsGuard.Start()

	contacts := loadContacts(logger)

	svc := agentUC.NewService(resp, synth, llmGuard, ttsGuard, alertManager,
		agentUC.Config{CallPause: agentConfig.CallPause})

	scheduler, oneShot := startScheduler(ctx, logger, &svc, contacts, agentConfig, agentMetrics, healthServer)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down agent...")

	healthServer.SetReady(false)

	// Interrupt any in-flight campaign, then wait for it to wind down
	cancel()
	<-scheduler.Stop().Done()
	oneShot.Wait()

	llmGuard.Stop()
	ttsGuard.Stop()

	// Drain in-flight alert deliveries with a grace period
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := alertManager.Shutdown(shutdownCtx); err != nil {
		logger.Error("alert manager shutdown failed", slog.Any("error", err))
	}

	if err := failLog.Close(); err != nil {
		logger.Error("failed to close failure log", slog.Any("error", err))
	}
	logger.Info("agent stopped")
}

// initLogger initializes and returns a structured logger based on environment configuration.
func initLogger() *slog.Logger {
	logLevel := slog.LevelInfo
	if os.Getenv("LOG_LEVEL") == "debug" {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)
	return logger
}

// buildGuard assembles the full resilience pipeline for one dependency:
// circuit breaker, health monitor, and retry policy. The breaker's open
// transition raises a CRITICAL alert and writes a failure record; per-call
// rejections are recorded by the guard itself.
func buildGuard(service string, probe health.Probe, cfg *workerPkg.AgentConfig, alerts alertUC.Manager, sink resilience.FailureSink) *resilience.Guard {
	breaker := circuitbreaker.New(circuitbreaker.Config{
		Name:             service,
		FailureThreshold: cfg.BreakerFailureThreshold,
		SuccessThreshold: cfg.BreakerSuccessThreshold,
		OpenTimeout:      cfg.BreakerOpenTimeout,
		OnOpen: func(name string) {
			// Runs under the breaker lock: alert dispatch is async and the
			// sink does not touch the breaker, so neither reenters it.
			_ = alerts.SendAlert(context.Background(),
				fmt.Sprintf("Circuit Breaker OPEN: %s", name),
				fmt.Sprintf("Circuit breaker opened for %s. Fail-fast enabled.", name),
				entity.SeverityCritical,
				name)
			sink.Record(context.Background(), resilience.FailureRecord{
				Service:      name,
				Category:     resilience.CategoryCircuitOpen,
				Message:      fmt.Sprintf("Circuit breaker opened for %s. Fail-fast enabled.", name),
				CircuitState: "OPEN",
			})
		},
	})

	monitor := health.NewMonitor(health.Config{
		Name:          service,
		PollInterval:  cfg.HealthCheckInterval,
		DownThreshold: cfg.HealthDownThreshold,
	}, probe, breaker, alerts)

	return resilience.NewGuard(service, breaker, monitor, retry.Config{
		MaxAttempts:  cfg.RetryMaxAttempts,
		InitialDelay: cfg.RetryInitialDelay,
		Multiplier:   cfg.RetryMultiplier,
	}, sink)
}

// createResponder creates a language model client based on the RESPONDER_TYPE
// environment variable. Defaults to the mock responder so the agent runs
// without any credentials.
func createResponder(logger *slog.Logger) Responder {
	responderType := os.Getenv("RESPONDER_TYPE")
	if responderType == "" {
		responderType = "mock"
	}

	switch responderType {
	case "mock":
		logger.Info("Using mock language model", slog.String("type", "mock"))
		return responder.NewMock()
	case "claude":
		apiKey := os.Getenv("ANTHROPIC_API_KEY")
		if apiKey == "" {
			logger.Error("ANTHROPIC_API_KEY is required when RESPONDER_TYPE=claude")
			os.Exit(1)
		}
		logger.Info("Using Claude API for greetings", slog.String("type", "claude"))
		return responder.NewClaude(apiKey)
	case "openai":
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			logger.Error("OPENAI_API_KEY is required when RESPONDER_TYPE=openai")
			os.Exit(1)
		}
		config, err := responder.LoadOpenAIConfig()
		if err != nil {
			logger.Error("Failed to load OpenAI configuration", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Using OpenAI API for greetings", slog.String("type", "openai"))
		return responder.NewOpenAI(apiKey, config)
	default:
		logger.Error("Invalid RESPONDER_TYPE",
			slog.String("type", responderType),
			slog.String("expected", "mock, openai or claude"))
		os.Exit(1)
		return nil
	}
}

// createSynthesizer creates a text-to-speech client based on the
// SYNTHESIZER_TYPE environment variable. Defaults to the mock synthesizer,
// which simulates a short outage before recovering.
func createSynthesizer(logger *slog.Logger) Synthesizer {
	synthesizerType := os.Getenv("SYNTHESIZER_TYPE")
	if synthesizerType == "" {
		synthesizerType = "mock"
	}

	switch synthesizerType {
	case "mock":
		logger.Info("Using mock text-to-speech service", slog.String("type", "mock"))
		return synthesizer.NewMock()
	case "elevenlabs":
		config, err := synthesizer.LoadElevenLabsConfig()
		if err != nil {
			logger.Error("Failed to load ElevenLabs configuration", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Using ElevenLabs API for synthesis",
			slog.String("type", "elevenlabs"),
			slog.String("voice_id", config.VoiceID))
		return synthesizer.NewElevenLabs(config)
	default:
		logger.Error("Invalid SYNTHESIZER_TYPE",
			slog.String("type", synthesizerType),
			slog.String("expected", "mock or elevenlabs"))
		os.Exit(1)
		return nil
	}
}

// loadContacts loads the contact queue from the file named by CONTACTS_FILE,
// falling back to the built-in demo queue when unset or unreadable.
func loadContacts(logger *slog.Logger) []entity.Contact {
	path := os.Getenv("CONTACTS_FILE")
	if path == "" {
		logger.Info("No contact file configured, using built-in demo queue")
		return contactlist.DefaultContacts()
	}

	contacts, err := contactlist.Load(path)
	if err != nil {
		logger.Error("failed to load contact file, using built-in demo queue",
			slog.String("path", path),
			slog.Any("error", err))
		return contactlist.DefaultContacts()
	}

	logger.Info("Contact queue loaded",
		slog.String("path", path),
		slog.Int("contacts", len(contacts)))
	return contacts
}

// loadChannelTimeout reads a per-channel delivery timeout from the given
// environment variable, falling back to 30s when the value is missing or
// not a positive duration.
func loadChannelTimeout(logger *slog.Logger, key string) time.Duration {
	timeout := pkgconfig.GetEnvDuration(key, 30*time.Second)
	if err := pkgconfig.ValidatePositiveDuration(timeout); err != nil {
		logger.Warn("invalid channel timeout, using default",
			slog.String("key", key),
			slog.String("value", timeout.String()),
			slog.String("default", "30s"))
		return 30 * time.Second
	}
	return timeout
}

// loadWebhookConfig loads webhook alert configuration from environment variables.
//
// Environment variables:
//   - WEBHOOK_ENABLED: Boolean flag to enable webhook alerts (default: false)
//   - WEBHOOK_URL: Webhook endpoint URL (required if enabled, must be HTTPS)
//   - WEBHOOK_TIMEOUT: Delivery timeout (default: 30s)
//
// Returns:
//   - alerter.WebhookConfig: Configuration with validation applied
func loadWebhookConfig(logger *slog.Logger) alerter.WebhookConfig {
	enabled := os.Getenv("WEBHOOK_ENABLED") == "true"
	webhookURL := os.Getenv("WEBHOOK_URL")

	if !enabled {
		return alerter.WebhookConfig{Enabled: false}
	}

	if err := entity.ValidateChannelURL(webhookURL); err != nil {
		logger.Warn("Invalid webhook URL, disabling alerts", slog.Any("error", err))
		return alerter.WebhookConfig{Enabled: false}
	}

	// ValidateChannelURL admits plain http; outbound alerts require TLS.
	if u, _ := url.Parse(webhookURL); u.Scheme != "https" {
		logger.Warn("Webhook URL must use HTTPS, disabling alerts")
		return alerter.WebhookConfig{Enabled: false}
	}

	return alerter.WebhookConfig{
		Enabled: true,
		URL:     webhookURL,
		Timeout: loadChannelTimeout(logger, "WEBHOOK_TIMEOUT"),
	}
}

// loadTelegramConfig loads Telegram alert configuration from environment variables.
// Alerts only ever go to the official Bot API host.
//
// Environment variables:
//   - TELEGRAM_ENABLED: Boolean flag to enable Telegram alerts (default: false)
//   - TELEGRAM_BOT_TOKEN: Bot token for the Telegram Bot API (required if enabled)
//   - TELEGRAM_CHAT_ID: Chat or channel that receives the alerts (required if enabled)
//   - TELEGRAM_TIMEOUT: Delivery timeout (default: 30s)
//
// Returns:
//   - alerter.TelegramConfig: Configuration with validation applied
func loadTelegramConfig(logger *slog.Logger) alerter.TelegramConfig {
	enabled := os.Getenv("TELEGRAM_ENABLED") == "true"
	botToken := os.Getenv("TELEGRAM_BOT_TOKEN")
	chatID := os.Getenv("TELEGRAM_CHAT_ID")

	if !enabled {
		return alerter.TelegramConfig{Enabled: false}
	}

	if botToken == "" {
		logger.Warn("Telegram bot token is empty, disabling alerts")
		return alerter.TelegramConfig{Enabled: false}
	}

	if chatID == "" {
		logger.Warn("Telegram chat ID is empty, disabling alerts")
		return alerter.TelegramConfig{Enabled: false}
	}

	return alerter.TelegramConfig{
		Enabled:    true,
		BotToken:   botToken,
		ChatID:     chatID,
		APIBaseURL: telegramAPIBaseURL,
		Timeout:    loadChannelTimeout(logger, "TELEGRAM_TIMEOUT"),
	}
}

// loadEmailConfig loads email alert configuration from environment variables.
//
// Environment variables:
//   - EMAIL_ENABLED: Boolean flag to enable email alerts (default: false)
//   - EMAIL_FROM: Sender address, also the SMTP username (required if enabled)
//   - EMAIL_TO: Recipient address (required if enabled)
//   - EMAIL_PASSWORD: SMTP password or app password (optional, empty skips auth)
//   - EMAIL_SMTP_HOST: SMTP server hostname (default: smtp.gmail.com)
//   - EMAIL_SMTP_PORT: SMTP submission port (default: 587)
//   - EMAIL_TIMEOUT: Delivery timeout (default: 30s)
//
// Returns:
//   - alerter.EmailConfig: Configuration with validation applied
func loadEmailConfig(logger *slog.Logger) alerter.EmailConfig {
	enabled := os.Getenv("EMAIL_ENABLED") == "true"
	from := os.Getenv("EMAIL_FROM")
	to := os.Getenv("EMAIL_TO")

	if !enabled {
		return alerter.EmailConfig{Enabled: false}
	}

	if from == "" {
		logger.Warn("Email sender address is empty, disabling alerts")
		return alerter.EmailConfig{Enabled: false}
	}

	if to == "" {
		logger.Warn("Email recipient address is empty, disabling alerts")
		return alerter.EmailConfig{Enabled: false}
	}

	return alerter.EmailConfig{
		Enabled:  true,
		Host:     pkgconfig.GetEnvString("EMAIL_SMTP_HOST", "smtp.gmail.com"),
		Port:     pkgconfig.GetEnvInt("EMAIL_SMTP_PORT", 587),
		From:     from,
		To:       to,
		Password: os.Getenv("EMAIL_PASSWORD"),
		Timeout:  loadChannelTimeout(logger, "EMAIL_TIMEOUT"),
	}
}

// startScheduler starts the cron scheduler and, when configured, an
// immediate one-shot campaign. Returns the scheduler and a wait group
// tracking the one-shot run so shutdown can wait for both.
func startScheduler(ctx context.Context, logger *slog.Logger, svc *agentUC.Service, contacts []entity.Contact, cfg *workerPkg.AgentConfig, metrics *workerPkg.AgentMetrics, healthServer *workerPkg.HealthServer) (*cron.Cron, *sync.WaitGroup) {
	// Load timezone
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Error("invalid timezone, using UTC", slog.String("timezone", cfg.Timezone), slog.Any("error", err))
		loc = time.UTC
	}
	c := cron.New(cron.WithLocation(loc))

	_, err = c.AddFunc(cfg.CampaignSchedule, func() {
		runCampaignJob(ctx, logger, svc, contacts, cfg, metrics)
	})
	if err != nil {
		logger.Error("failed to add cron job", slog.Any("error", err))
		os.Exit(1)
	}
	c.Start()

	// Mark as ready after cron is set up
	healthServer.SetReady(true)
	logger.Info("agent marked as ready")

	logger.Info("agent started",
		slog.String("schedule", cfg.CampaignSchedule),
		slog.String("timezone", cfg.Timezone))

	oneShot := &sync.WaitGroup{}
	if cfg.RunOnStart {
		oneShot.Add(1)
		go func() {
			defer oneShot.Done()
			runCampaignJob(ctx, logger, svc, contacts, cfg, metrics)
		}()
	}

	return c, oneShot
}

// runCampaignJob executes a single campaign with timeout and error handling.
func runCampaignJob(ctx context.Context, logger *slog.Logger, svc *agentUC.Service, contacts []entity.Contact, cfg *workerPkg.AgentConfig, metrics *workerPkg.AgentMetrics) {
	startTime := time.Now()

	ctx, cancel := context.WithTimeout(ctx, cfg.CampaignTimeout)
	defer cancel()

	// Every log line of this run carries the same run ID
	ctx = runid.WithRunID(ctx, runid.New())
	jobLogger := logging.WithRunID(ctx, logger)
	jobLogger.Info("campaign started", slog.Int("contacts", len(contacts)))

	stats, err := svc.RunCampaign(ctx, contacts)
	if err != nil {
		jobLogger.Error("campaign failed", slog.Any("error", err))
		metrics.RecordCampaignRun("failure")
		metrics.RecordCampaignDuration(time.Since(startTime).Seconds())
		return
	}

	// Record metrics
	metrics.RecordCampaignRun("success")
	metrics.RecordCampaignDuration(time.Since(startTime).Seconds())
	metrics.RecordContactsProcessed(stats.Contacts)
	metrics.RecordLastSuccess()

	jobLogger.Info("campaign completed",
		slog.Int("contacts", stats.Contacts),
		slog.Int("succeeded", stats.Succeeded),
		slog.Int("skipped", stats.Skipped),
		slog.Int("failed", stats.Failed),
		slog.Duration("duration", stats.Duration))
}
