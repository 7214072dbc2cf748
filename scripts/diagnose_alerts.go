package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"call-agent/internal/domain/entity"
	"call-agent/internal/infra/alerter"
	pkgconfig "call-agent/pkg/config"
)

// ChannelDiagnostic represents the diagnostic result for a single alert channel
type ChannelDiagnostic struct {
	Name         string `json:"name"`
	Endpoint     string `json:"endpoint,omitempty"`
	Status       string `json:"status"` // "OK", "DISABLED", "CONFIG_ERROR", "TIMEOUT", "DELIVERY_ERROR"
	ErrorMessage string `json:"error_message,omitempty"`
	ResponseTime int64  `json:"response_time_ms"`
}

// channelTarget pairs a channel name with its configured transport.
// Exactly one of transport, configErr, or disabled is meaningful.
type channelTarget struct {
	name      string
	endpoint  string
	transport alerter.Alerter
	configErr string
	disabled  bool
}

// channelEnvVars lists the environment variables governing each channel,
// used to generate remediation hints for broken or disabled channels.
var channelEnvVars = map[string][]string{
	"webhook":  {"WEBHOOK_ENABLED", "WEBHOOK_URL"},
	"telegram": {"TELEGRAM_ENABLED", "TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID"},
	"email":    {"EMAIL_ENABLED", "EMAIL_FROM", "EMAIL_TO", "EMAIL_SMTP_HOST", "EMAIL_SMTP_PORT", "EMAIL_PASSWORD"},
}

func main() {
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded configuration from .env")
	}

	targets := []channelTarget{
		webhookTarget(),
		telegramTarget(),
		emailTarget(),
	}

	log.Printf("Diagnosing %d alert channels...\n", len(targets))

	diagnostics := make([]ChannelDiagnostic, 0, len(targets))
	for i, target := range targets {
		log.Printf("[%d/%d] Testing channel: %s", i+1, len(targets), target.name)
		diag := diagnoseChannel(target, 30*time.Second)
		diagnostics = append(diagnostics, diag)

		// Rate limiting to be nice to providers
		time.Sleep(500 * time.Millisecond)
	}

	// Generate report
	generateReport(diagnostics)
	generateJSONReport(diagnostics)
	generateEnvHints(diagnostics)
}

func webhookTarget() channelTarget {
	t := channelTarget{name: "webhook"}
	if !pkgconfig.GetEnvBool("WEBHOOK_ENABLED", false) {
		t.disabled = true
		return t
	}

	rawURL := os.Getenv("WEBHOOK_URL")
	if rawURL == "" {
		t.configErr = "WEBHOOK_ENABLED is true but WEBHOOK_URL is empty"
		return t
	}
	if err := entity.ValidateChannelURL(rawURL); err != nil {
		t.configErr = fmt.Sprintf("WEBHOOK_URL rejected: %v", err)
		return t
	}
	parsed, _ := url.Parse(rawURL)
	if parsed.Scheme != "https" {
		t.configErr = fmt.Sprintf("WEBHOOK_URL must be an https URL, got %q", rawURL)
		return t
	}

	// Report the host only; webhook paths often embed a secret
	t.endpoint = parsed.Host
	t.transport = alerter.NewWebhookAlerter(alerter.WebhookConfig{
		Enabled: true,
		URL:     rawURL,
		Timeout: 30 * time.Second,
	})
	return t
}

func telegramTarget() channelTarget {
	t := channelTarget{name: "telegram"}
	if !pkgconfig.GetEnvBool("TELEGRAM_ENABLED", false) {
		t.disabled = true
		return t
	}

	botToken := os.Getenv("TELEGRAM_BOT_TOKEN")
	chatID := os.Getenv("TELEGRAM_CHAT_ID")
	if botToken == "" || chatID == "" {
		t.configErr = "TELEGRAM_ENABLED is true but TELEGRAM_BOT_TOKEN or TELEGRAM_CHAT_ID is empty"
		return t
	}

	t.endpoint = fmt.Sprintf("chat %s via api.telegram.org", chatID)
	t.transport = alerter.NewTelegramAlerter(alerter.TelegramConfig{
		Enabled:    true,
		BotToken:   botToken,
		ChatID:     chatID,
		APIBaseURL: "https://api.telegram.org",
		Timeout:    30 * time.Second,
	})
	return t
}

func emailTarget() channelTarget {
	t := channelTarget{name: "email"}
	if !pkgconfig.GetEnvBool("EMAIL_ENABLED", false) {
		t.disabled = true
		return t
	}

	from := os.Getenv("EMAIL_FROM")
	to := os.Getenv("EMAIL_TO")
	if from == "" || to == "" {
		t.configErr = "EMAIL_ENABLED is true but EMAIL_FROM or EMAIL_TO is empty"
		return t
	}

	host := os.Getenv("EMAIL_SMTP_HOST")
	if host == "" {
		host = "smtp.gmail.com"
	}
	port := 587
	if raw := os.Getenv("EMAIL_SMTP_PORT"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			t.configErr = fmt.Sprintf("EMAIL_SMTP_PORT must be an integer, got %q", raw)
			return t
		}
		port = parsed
	}

	t.endpoint = fmt.Sprintf("%s:%d to %s", host, port, to)
	t.transport = alerter.NewEmailAlerter(alerter.EmailConfig{
		Enabled:  true,
		Host:     host,
		Port:     port,
		From:     from,
		To:       to,
		Password: os.Getenv("EMAIL_PASSWORD"),
		Timeout:  30 * time.Second,
	})
	return t
}

func diagnoseChannel(target channelTarget, timeout time.Duration) ChannelDiagnostic {
	diag := ChannelDiagnostic{
		Name:     target.name,
		Endpoint: target.endpoint,
	}

	if target.disabled {
		diag.Status = "DISABLED"
		return diag
	}
	if target.configErr != "" {
		diag.Status = "CONFIG_ERROR"
		diag.ErrorMessage = target.configErr
		return diag
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Same body format the alert manager composes for production alerts
	sentAt := time.Now()
	testAlert := &entity.Alert{
		Subject:  "Alert Channel Test",
		Severity: entity.SeverityInfo,
		Service:  "Diagnostics",
		SentAt:   sentAt,
	}
	testAlert.Body = fmt.Sprintf("[%s] Service: %s\nTime: %s\n\nDelivery check from diagnose_alerts. No action needed.",
		testAlert.Severity, testAlert.Service, sentAt.Format(time.RFC3339))

	err := target.transport.DeliverAlert(ctx, testAlert)
	diag.ResponseTime = time.Since(sentAt).Milliseconds()

	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			diag.Status = "TIMEOUT"
			diag.ErrorMessage = fmt.Sprintf("Delivery timeout after %v", timeout)
		} else {
			diag.Status = "DELIVERY_ERROR"
			diag.ErrorMessage = err.Error()
		}
		return diag
	}

	diag.Status = "OK"
	return diag
}

// writef is a helper to write to file and handle errors
func writef(f *os.File, format string, args ...interface{}) error {
	_, err := fmt.Fprintf(f, format, args...)
	return err
}

func generateReport(diagnostics []ChannelDiagnostic) {
	f, err := os.Create("alert_diagnostic_report.txt")
	if err != nil {
		log.Printf("Failed to create report file: %v", err)
		return
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.Printf("Failed to close report file: %v", err)
		}
	}()

	// Helper to handle write errors
	writeErr := func(err error) bool {
		if err != nil {
			log.Printf("Failed to write to report: %v", err)
			return true
		}
		return false
	}

	if writeErr(writef(f, "===============================================\n")) {
		return
	}
	if writeErr(writef(f, "Alert Channel Diagnostic Report\n")) {
		return
	}
	if writeErr(writef(f, "Generated: %s\n", time.Now().Format(time.RFC3339))) {
		return
	}
	if writeErr(writef(f, "Total Channels: %d\n", len(diagnostics))) {
		return
	}
	if writeErr(writef(f, "===============================================\n\n")) {
		return
	}

	// Summary statistics
	statusCount := make(map[string]int)
	var okCount, errorCount, disabledCount int
	for _, d := range diagnostics {
		statusCount[d.Status]++
		switch d.Status {
		case "OK":
			okCount++
		case "DISABLED":
			disabledCount++
		default:
			errorCount++
		}
	}

	_ = writef(f, "SUMMARY:\n")
	configured := okCount + errorCount
	if configured > 0 {
		_ = writef(f, "  ✅ Delivering: %d (%.1f%%)\n", okCount, float64(okCount)/float64(configured)*100)
		_ = writef(f, "  ❌ Failing: %d (%.1f%%)\n", errorCount, float64(errorCount)/float64(configured)*100)
	} else {
		_ = writef(f, "  No channels enabled\n")
	}
	_ = writef(f, "  Disabled: %d\n", disabledCount)
	_ = writef(f, "\nSTATUS BREAKDOWN:\n")
	for status, count := range statusCount {
		_ = writef(f, "  %s: %d\n", status, count)
	}
	_ = writef(f, "\n")

	// Detailed results
	_ = writef(f, "DETAILED RESULTS:\n")
	_ = writef(f, "===============================================\n\n")

	// Delivering channels
	_ = writef(f, "✅ DELIVERING CHANNELS (%d):\n", okCount)
	_ = writef(f, "-------------------------------------------\n")
	for _, d := range diagnostics {
		if d.Status == "OK" {
			_ = writef(f, "Name: %s\n", d.Name)
			_ = writef(f, "  Endpoint: %s\n", d.Endpoint)
			_ = writef(f, "  Response: %dms\n", d.ResponseTime)
			_ = writef(f, "\n")
		}
	}

	// Failing channels
	_ = writef(f, "\n❌ FAILING CHANNELS (%d):\n", errorCount)
	_ = writef(f, "-------------------------------------------\n")
	for _, d := range diagnostics {
		if d.Status != "OK" && d.Status != "DISABLED" {
			_ = writef(f, "Name: %s\n", d.Name)
			if d.Endpoint != "" {
				_ = writef(f, "  Endpoint: %s\n", d.Endpoint)
			}
			_ = writef(f, "  Status: %s\n", d.Status)
			_ = writef(f, "  Error: %s\n", d.ErrorMessage)
			_ = writef(f, "  Response: %dms\n", d.ResponseTime)
			_ = writef(f, "\n")
		}
	}

	// Disabled channels
	_ = writef(f, "\nDISABLED CHANNELS (%d):\n", disabledCount)
	_ = writef(f, "-------------------------------------------\n")
	for _, d := range diagnostics {
		if d.Status == "DISABLED" {
			_ = writef(f, "Name: %s\n", d.Name)
		}
	}

	log.Println("✅ Text report generated: alert_diagnostic_report.txt")
}

func generateJSONReport(diagnostics []ChannelDiagnostic) {
	f, err := os.Create("alert_diagnostic_report.json")
	if err != nil {
		log.Printf("Failed to create JSON report: %v", err)
		return
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.Printf("Failed to close JSON report file: %v", err)
		}
	}()

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(diagnostics); err != nil {
		log.Printf("Failed to write JSON report: %v", err)
		return
	}

	log.Println("✅ JSON report generated: alert_diagnostic_report.json")
}

func generateEnvHints(diagnostics []ChannelDiagnostic) {
	f, err := os.Create("alert_channel_hints.txt")
	if err != nil {
		log.Printf("Failed to create hints file: %v", err)
		return
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.Printf("Failed to close hints file: %v", err)
		}
	}()

	_ = writef(f, "# Remediation hints for alert channels\n")
	_ = writef(f, "# Generated: %s\n\n", time.Now().Format(time.RFC3339))

	// Failing channels
	hasFailing := false
	for _, d := range diagnostics {
		if d.Status != "OK" && d.Status != "DISABLED" {
			if !hasFailing {
				_ = writef(f, "# Failing channels (review the listed variables)\n")
				hasFailing = true
			}
			_ = writef(f, "# %s: %s (%s)\n", d.Name, d.Status, d.ErrorMessage)
			for _, envVar := range channelEnvVars[d.Name] {
				_ = writef(f, "#   %s\n", envVar)
			}
			_ = writef(f, "\n")
		}
	}

	// Disabled channels
	hasDisabled := false
	for _, d := range diagnostics {
		if d.Status == "DISABLED" {
			if !hasDisabled {
				_ = writef(f, "# Disabled channels (set the listed variables to enable)\n")
				hasDisabled = true
			}
			_ = writef(f, "# %s:\n", d.Name)
			for _, envVar := range channelEnvVars[d.Name] {
				_ = writef(f, "#   %s\n", envVar)
			}
			_ = writef(f, "\n")
		}
	}

	log.Println("✅ Hints generated: alert_channel_hints.txt")
}
