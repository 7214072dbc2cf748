package alert

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"call-agent/internal/domain/entity"

	"github.com/google/uuid"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const requestIDKey contextKey = "request_id"

// Delivery constants
const (
	suspendThreshold  = 5                // Consecutive failures before suspending a channel
	suspendDuration   = 5 * time.Minute  // How long a suspended channel is skipped
	workerPoolTimeout = 5 * time.Second  // Timeout for acquiring a worker slot
	deliveryTimeout   = 30 * time.Second // Timeout for a single channel delivery
)

// Defaults applied when a caller leaves severity or service empty.
const (
	defaultSeverity = entity.SeverityError
	defaultService  = "UNKNOWN"
)

// Manager fans alerts out to every enabled delivery channel.
// Dispatch is asynchronous and never blocks or fails the caller: a dead
// alert channel must not take the call pipeline down with it.
type Manager interface {
	// SendAlert dispatches an alert to all enabled channels.
	//
	// This method is non-blocking and returns immediately. Deliveries run
	// in background goroutines; failures are logged and counted but never
	// propagate to the caller.
	//
	// An empty severity defaults to ERROR; an empty service defaults to
	// UNKNOWN.
	//
	// Returns:
	//   - nil (always succeeds, errors are handled internally)
	SendAlert(ctx context.Context, subject, message, severity, service string) error

	// GetChannelHealth returns the delivery health of all channels,
	// including suspend-window state, for health check endpoints.
	GetChannelHealth() []ChannelHealthStatus

	// Shutdown gracefully stops the manager, waiting for in-flight
	// deliveries to complete or for the context to expire.
	Shutdown(ctx context.Context) error
}

// ChannelHealthStatus represents the delivery health of one channel.
type ChannelHealthStatus struct {
	Name           string     `json:"name"`
	Enabled        bool       `json:"enabled"`
	Suspended      bool       `json:"suspended"`
	SuspendedUntil *time.Time `json:"suspended_until,omitempty"`
}

// manager is the concrete implementation of the Manager interface.
type manager struct {
	channels       []Channel                 // Delivery channels (webhook, Telegram, email)
	workerPool     chan struct{}             // Semaphore limiting concurrent deliveries
	channelHealth  map[string]*channelHealth // Suspend-window state per channel
	healthMu       sync.RWMutex              // Protects channelHealth map
	wg             sync.WaitGroup            // Tracks in-flight deliveries
	shutdownCtx    context.Context           // Context for signaling shutdown
	shutdownCancel context.CancelFunc        // Cancel function for shutdown
}

// channelHealth tracks the suspend window for a channel
type channelHealth struct {
	consecutiveFailures int        // Number of consecutive delivery failures
	suspendedUntil      time.Time  // Deliveries are skipped until this time
	mu                  sync.Mutex // Protects this struct's fields
}

// NewManager creates a new alert manager with the given channels.
//
// Parameters:
//   - channels: Delivery channels (webhook, Telegram, email)
//   - maxConcurrent: Maximum concurrent deliveries (recommended: 10)
func NewManager(channels []Channel, maxConcurrent int) Manager {
	shutdownCtx, shutdownCancel := context.WithCancel(context.Background())

	m := &manager{
		channels:       channels,
		workerPool:     make(chan struct{}, maxConcurrent),
		channelHealth:  make(map[string]*channelHealth),
		shutdownCtx:    shutdownCtx,
		shutdownCancel: shutdownCancel,
	}

	for _, ch := range channels {
		m.channelHealth[ch.Name()] = &channelHealth{}
	}

	return m
}

// SendAlert implements Manager.SendAlert.
func (m *manager) SendAlert(ctx context.Context, subject, message, severity, service string) error {
	if severity == "" {
		severity = defaultSeverity
	}
	if service == "" {
		service = defaultService
	}

	requestID := uuid.New().String()

	alert := &entity.Alert{
		Subject:  subject,
		Severity: severity,
		Service:  service,
		SentAt:   time.Now(),
	}
	alert.Body = composeBody(message, alert)

	enabledCount := 0
	for _, ch := range m.channels {
		if ch.IsEnabled() {
			enabledCount++
		}
	}
	SetChannelsEnabled(float64(enabledCount))

	if enabledCount == 0 {
		slog.Debug("No alert channels enabled",
			slog.String("request_id", requestID),
			slog.String("subject", subject))
		return nil
	}

	slog.Info("Sending alert",
		slog.String("request_id", requestID),
		slog.String("subject", subject),
		slog.String("severity", severity),
		slog.String("service", service),
		slog.Int("enabled_channels", enabledCount))

	for _, ch := range m.channels {
		if ch.IsEnabled() {
			channel := ch // Capture for goroutine
			m.wg.Add(1)
			go m.deliver(requestID, channel, alert)
		}
	}

	return nil
}

// composeBody renders the common alert body shared by every channel:
//
//	[SEVERITY] Service: name
//	Time: RFC3339 timestamp
//
//	message
func composeBody(message string, alert *entity.Alert) string {
	return fmt.Sprintf("[%s] Service: %s\nTime: %s\n\n%s",
		alert.Severity, alert.Service, alert.SentAt.Format(time.RFC3339), message)
}

// deliver sends an alert to a single channel in a goroutine.
func (m *manager) deliver(requestID string, channel Channel, alert *entity.Alert) {
	defer m.wg.Done()

	IncrementActiveGoroutines()
	defer DecrementActiveGoroutines()

	// Panic recovery
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Panic in alert channel",
				slog.String("request_id", requestID),
				slog.String("channel", channel.Name()),
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())))
		}
	}()

	// Acquire worker slot (with timeout to prevent blocking)
	select {
	case m.workerPool <- struct{}{}:
		defer func() { <-m.workerPool }() // Release slot
	case <-time.After(workerPoolTimeout):
		slog.Warn("Alert dropped: worker pool full",
			slog.String("request_id", requestID),
			slog.String("channel", channel.Name()))
		RecordDropped(channel.Name(), "pool_full")
		return
	}

	// Check suspend window
	health := m.getChannelHealth(channel.Name())
	health.mu.Lock()
	if time.Now().Before(health.suspendedUntil) {
		slog.Warn("Channel suspended after repeated failures, skipping",
			slog.String("request_id", requestID),
			slog.String("channel", channel.Name()),
			slog.Time("suspended_until", health.suspendedUntil))
		health.mu.Unlock()
		RecordDropped(channel.Name(), "suspended")
		return
	}
	health.mu.Unlock()

	// Deliveries use the shutdown context so Shutdown can cancel them.
	ctx, cancel := context.WithTimeout(m.shutdownCtx, deliveryTimeout)
	defer cancel()

	ctx = context.WithValue(ctx, requestIDKey, requestID)

	startTime := time.Now()
	RecordDispatch(channel.Name())

	err := channel.Send(ctx, alert)
	duration := time.Since(startTime)

	// Update suspend window
	health.mu.Lock()
	if err != nil {
		health.consecutiveFailures++
		if health.consecutiveFailures >= suspendThreshold {
			health.suspendedUntil = time.Now().Add(suspendDuration)
			slog.Error("Alert channel suspended",
				slog.String("request_id", requestID),
				slog.String("channel", channel.Name()),
				slog.Int("consecutive_failures", health.consecutiveFailures))
			RecordSuspended(channel.Name())
		}
	} else {
		health.consecutiveFailures = 0 // Reset on success
	}
	health.mu.Unlock()

	if err != nil {
		RecordFailure(channel.Name(), duration)
		slog.Warn("Alert delivery failed",
			slog.String("request_id", requestID),
			slog.String("channel", channel.Name()),
			slog.String("subject", alert.Subject),
			slog.String("service", alert.Service),
			slog.Duration("send_duration", duration),
			slog.Any("error", err))
	} else {
		RecordSuccess(channel.Name(), duration)
		slog.Info("Alert delivered",
			slog.String("request_id", requestID),
			slog.String("channel", channel.Name()),
			slog.String("subject", alert.Subject),
			slog.Duration("send_duration", duration))
	}
}

// getChannelHealth returns the suspend-window state for a channel
func (m *manager) getChannelHealth(channelName string) *channelHealth {
	m.healthMu.RLock()
	defer m.healthMu.RUnlock()
	return m.channelHealth[channelName]
}

// GetChannelHealth implements Manager.GetChannelHealth.
func (m *manager) GetChannelHealth() []ChannelHealthStatus {
	m.healthMu.RLock()
	defer m.healthMu.RUnlock()

	statuses := make([]ChannelHealthStatus, 0, len(m.channels))

	for _, ch := range m.channels {
		health := m.channelHealth[ch.Name()]

		health.mu.Lock()

		var suspendedUntil *time.Time
		suspended := false

		if time.Now().Before(health.suspendedUntil) {
			suspended = true
			until := health.suspendedUntil
			suspendedUntil = &until
		}

		health.mu.Unlock()

		statuses = append(statuses, ChannelHealthStatus{
			Name:           ch.Name(),
			Enabled:        ch.IsEnabled(),
			Suspended:      suspended,
			SuspendedUntil: suspendedUntil,
		})
	}

	return statuses
}

// Shutdown implements Manager.Shutdown.
func (m *manager) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down alert manager")

	// Signal all goroutines to stop
	m.shutdownCancel()

	// Wait for in-flight deliveries with timeout
	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		slog.Info("Alert manager shutdown complete")
		return nil
	case <-ctx.Done():
		slog.Warn("Alert manager shutdown timeout")
		return ctx.Err()
	}
}
