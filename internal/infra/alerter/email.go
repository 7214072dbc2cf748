package alerter

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"call-agent/internal/domain/entity"

	"github.com/google/uuid"
)

// EmailConfig contains configuration for SMTP email alert delivery.
type EmailConfig struct {
	// Enabled indicates whether email alerts are enabled
	Enabled bool

	// Host is the SMTP server hostname (e.g., "smtp.gmail.com")
	Host string

	// Port is the SMTP submission port (e.g., 587 for STARTTLS)
	Port int

	// From is the sender address, also used as the authentication username
	From string

	// To is the recipient address
	To string

	// Password is the SMTP password or app password. When empty, delivery
	// proceeds without authentication (useful for local relays and tests).
	Password string

	// Timeout bounds the whole SMTP conversation
	Timeout time.Duration
}

// EmailAlerter delivers alerts as plain text email over SMTP with STARTTLS.
// Delivery is a single attempt per alert.
type EmailAlerter struct {
	config EmailConfig
}

// NewEmailAlerter creates a new EmailAlerter with the specified configuration.
func NewEmailAlerter(config EmailConfig) *EmailAlerter {
	return &EmailAlerter{config: config}
}

// buildMessage renders the RFC 5322 message: headers, blank line, then the
// composed alert body.
func (e *EmailAlerter) buildMessage(alert *entity.Alert) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", e.config.From)
	fmt.Fprintf(&b, "To: %s\r\n", e.config.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", alert.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(alert.Body)
	b.WriteString("\r\n")
	return []byte(b.String())
}

// send runs the SMTP conversation: dial, STARTTLS when the server offers it,
// authenticate when a password is configured, then submit the message.
func (e *EmailAlerter) send(ctx context.Context, alert *entity.Alert) error {
	addr := net.JoinHostPort(e.config.Host, strconv.Itoa(e.config.Port))

	dialer := &net.Dialer{Timeout: e.config.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("dial smtp server: %w", err)
	}

	// The smtp.Client does not take a context. Propagate the deadline to the
	// connection so a hung server cannot stall delivery past the timeout.
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	} else if e.config.Timeout > 0 {
		_ = conn.SetDeadline(time.Now().Add(e.config.Timeout))
	}

	client, err := smtp.NewClient(conn, e.config.Host)
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer func() { _ = client.Close() }()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: e.config.Host}); err != nil {
			return fmt.Errorf("start tls: %w", err)
		}
	}

	if e.config.Password != "" {
		auth := smtp.PlainAuth("", e.config.From, e.config.Password, e.config.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}

	if err := client.Mail(e.config.From); err != nil {
		return fmt.Errorf("set sender: %w", err)
	}
	if err := client.Rcpt(e.config.To); err != nil {
		return fmt.Errorf("set recipient: %w", err)
	}

	writer, err := client.Data()
	if err != nil {
		return fmt.Errorf("open data writer: %w", err)
	}
	if _, err := writer.Write(e.buildMessage(alert)); err != nil {
		_ = writer.Close()
		return fmt.Errorf("write message: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("close data writer: %w", err)
	}

	return client.Quit()
}

// DeliverAlert sends an alert email to the configured recipient.
// This method implements the Alerter interface.
//
// Parameters:
//   - ctx: Context for cancellation and timeout control
//   - alert: The alert to deliver (must not be nil)
//
// Returns:
//   - error: Non-nil if the SMTP conversation failed at any step
func (e *EmailAlerter) DeliverAlert(ctx context.Context, alert *entity.Alert) error {
	requestID := uuid.New().String()

	slog.Info("Starting email alert delivery",
		slog.String("request_id", requestID),
		slog.String("subject", alert.Subject),
		slog.String("severity", alert.Severity),
		slog.String("service", alert.Service))

	start := time.Now()
	if err := e.send(ctx, alert); err != nil {
		slog.Error("Email alert failed",
			slog.String("request_id", requestID),
			slog.String("subject", alert.Subject),
			slog.Duration("duration", time.Since(start)),
			slog.Any("error", err))
		return err
	}

	slog.Info("Email alert delivered",
		slog.String("request_id", requestID),
		slog.String("subject", alert.Subject),
		slog.Duration("duration", time.Since(start)))

	return nil
}
