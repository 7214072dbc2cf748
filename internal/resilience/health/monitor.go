// Package health implements the background liveness monitor that watches a
// dependency, alerts when it stays down, and closes the dependency's
// circuit breaker once it recovers. One Monitor runs per dependency.
package health

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"call-agent/internal/resilience/circuitbreaker"
)

// stopGracePeriod bounds how long Stop waits for the polling goroutine.
const stopGracePeriod = 2 * time.Second

const severityCritical = "CRITICAL"

// Probe checks whether a dependency is alive. A nil return means healthy.
// Probes receive the monitor's loop context and should honor cancellation.
type Probe func(ctx context.Context) error

// Alerter delivers operator alerts for dependency outages.
type Alerter interface {
	SendAlert(ctx context.Context, subject, message, severity, service string) error
}

// Config holds the configuration for a health monitor.
type Config struct {
	// Name is the monitored service name for logging and alerts
	Name string

	// PollInterval is the wait between liveness probes
	PollInterval time.Duration

	// DownThreshold is the number of consecutive failed probes that
	// triggers the dependency-down alert
	DownThreshold int
}

// DefaultConfig returns the standard monitor configuration: probe every ten
// seconds, alert after three consecutive failures.
func DefaultConfig(name string) Config {
	return Config{
		Name:          name,
		PollInterval:  10 * time.Second,
		DownThreshold: 3,
	}
}

// Monitor polls a dependency in the background. It keeps a consecutive
// failure count, sends exactly one down-alert per outage, and resets the
// paired circuit breaker when the dependency comes back.
//
// Start and Stop are safe to call from multiple goroutines; the probe
// bookkeeping itself is only ever touched by the polling goroutine.
type Monitor struct {
	name          string
	pollInterval  time.Duration
	downThreshold int
	probe         Probe
	breaker       *circuitbreaker.CircuitBreaker
	alerter       Alerter

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}

	consecutiveFailures int
	downAlertSent       bool
}

// NewMonitor creates a monitor for the named dependency. breaker and
// alerter may be nil; the corresponding recovery and alerting steps are
// then skipped.
func NewMonitor(cfg Config, probe Probe, breaker *circuitbreaker.CircuitBreaker, alerter Alerter) *Monitor {
	// A non-positive interval would spin the polling loop.
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 10 * time.Second
	}
	if cfg.DownThreshold <= 0 {
		cfg.DownThreshold = 3
	}

	return &Monitor{
		name:          cfg.Name,
		pollInterval:  cfg.PollInterval,
		downThreshold: cfg.DownThreshold,
		probe:         probe,
		breaker:       breaker,
		alerter:       alerter,
	}
}

// Start launches the polling goroutine. Calling Start on a running monitor
// is a no-op. The monitor probes immediately, then once per PollInterval.
func (m *Monitor) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		slog.Warn("health monitor already running", slog.String("service", m.name))
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.done = make(chan struct{})
	m.running = true

	go m.run(ctx, m.done)

	slog.Info("health monitor started",
		slog.String("service", m.name),
		slog.Duration("interval", m.pollInterval),
		slog.Int("down_threshold", m.downThreshold))
}

// Stop halts the polling goroutine and waits up to stopGracePeriod for it
// to exit. Calling Stop on a stopped monitor is a no-op. The monitor can be
// started again afterwards; the failure count and alert latch survive the
// restart.
func (m *Monitor) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	cancel := m.cancel
	done := m.done
	m.mu.Unlock()

	cancel()

	select {
	case <-done:
	case <-time.After(stopGracePeriod):
		slog.Warn("health monitor did not stop within grace period",
			slog.String("service", m.name))
	}

	slog.Info("health monitor stopped", slog.String("service", m.name))
}

// Running reports whether the polling goroutine is active.
func (m *Monitor) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

func (m *Monitor) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	for {
		m.check(ctx)

		select {
		case <-ctx.Done():
			return
		case <-time.After(m.pollInterval):
		}
	}
}

// check runs one probe and applies the outcome. A panicking probe is
// recovered and logged so the loop keeps going; it counts neither as a
// success nor as a failure.
func (m *Monitor) check(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("health check panicked",
				slog.String("service", m.name),
				slog.Any("panic", r))
		}
	}()

	if err := m.probe(ctx); err != nil {
		m.consecutiveFailures++
		recordProbe(m.name, false)
		slog.Warn("dependency unhealthy",
			slog.String("service", m.name),
			slog.Int("consecutive_failures", m.consecutiveFailures),
			slog.Any("error", err))

		if !m.downAlertSent && m.consecutiveFailures >= m.downThreshold {
			m.downAlertSent = true
			m.sendDownAlert(ctx)
		}
		return
	}

	m.consecutiveFailures = 0
	m.downAlertSent = false
	recordProbe(m.name, true)
	slog.Debug("dependency healthy", slog.String("service", m.name))

	// Auto recovery: a healthy probe closes a breaker stuck OPEN.
	if m.breaker != nil && m.breaker.State() == circuitbreaker.StateOpen {
		slog.Info("dependency recovered, resetting circuit breaker",
			slog.String("service", m.name))
		m.breaker.Reset()
	}
}

// sendDownAlert fires the one-per-outage dependency-down alert. The latch
// is set before sending, so a failing alerter does not cause repeats.
func (m *Monitor) sendDownAlert(ctx context.Context) {
	recordDownAlert(m.name)

	if m.alerter == nil {
		return
	}

	subject := fmt.Sprintf("Dependency Down: %s", m.name)
	message := fmt.Sprintf("%s unhealthy for %d checks.", m.name, m.consecutiveFailures)
	if err := m.alerter.SendAlert(ctx, subject, message, severityCritical, m.name); err != nil {
		slog.Error("failed to send dependency-down alert",
			slog.String("service", m.name),
			slog.Any("error", err))
	}
}
