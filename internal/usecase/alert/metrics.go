package alert

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for alert delivery monitoring
var (
	// alertDispatchedTotal tracks total alerts dispatched per channel
	alertDispatchedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alert_dispatched_total",
			Help: "Total number of alerts dispatched",
		},
		[]string{"channel"},
	)

	// alertSentTotal tracks alert delivery results per channel
	alertSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alert_sent_total",
			Help: "Total number of alerts sent",
		},
		[]string{"channel", "status"}, // status: success|failure
	)

	// alertDuration tracks alert delivery duration
	alertDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "alert_duration_seconds",
			Help:    "Alert delivery duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30}, // 100ms to 30s
		},
		[]string{"channel"},
	)

	// alertRateLimitHits tracks rate limit hits per channel
	alertRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alert_rate_limit_hits_total",
			Help: "Total number of rate limit hits",
		},
		[]string{"channel"},
	)

	// alertRateLimitWaitSeconds tracks time spent waiting for rate limits
	alertRateLimitWaitSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "alert_rate_limit_wait_seconds",
			Help:    "Time spent waiting for rate limits in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60},
		},
		[]string{"channel"},
	)

	// alertChannelSuspendedTotal tracks channel suspend events
	alertChannelSuspendedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alert_channel_suspended_total",
			Help: "Total number of channel suspend events",
		},
		[]string{"channel"},
	)

	// alertDroppedTotal tracks dropped alerts (worker pool full, suspended channel)
	alertDroppedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alert_dropped_total",
			Help: "Total number of dropped alerts",
		},
		[]string{"channel", "reason"}, // reason: pool_full|suspended|disabled
	)

	// activeDeliveries tracks currently active alert delivery goroutines
	activeDeliveries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "alert_active_goroutines",
			Help: "Number of active alert delivery goroutines",
		},
	)

	// channelsEnabled tracks number of enabled channels
	channelsEnabled = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "alert_channels_enabled",
			Help: "Number of enabled alert channels",
		},
	)
)

// RecordDispatch records an alert dispatch attempt.
//
// This should be called when an alert is about to be sent to a channel.
//
// Parameters:
//   - channel: The name of the alert channel (e.g., "Webhook", "Telegram")
func RecordDispatch(channel string) {
	alertDispatchedTotal.WithLabelValues(channel).Inc()
}

// RecordSuccess records a successful alert delivery.
//
// This increments the success counter and records the delivery duration.
//
// Parameters:
//   - channel: The name of the alert channel
//   - duration: The time it took to deliver the alert
func RecordSuccess(channel string, duration time.Duration) {
	alertSentTotal.WithLabelValues(channel, "success").Inc()
	alertDuration.WithLabelValues(channel).Observe(duration.Seconds())
}

// RecordFailure records a failed alert delivery.
//
// This increments the failure counter and records the delivery duration.
//
// Parameters:
//   - channel: The name of the alert channel
//   - duration: The time it took before the delivery failed
func RecordFailure(channel string, duration time.Duration) {
	alertSentTotal.WithLabelValues(channel, "failure").Inc()
	alertDuration.WithLabelValues(channel).Observe(duration.Seconds())
}

// RecordDropped records a dropped alert.
//
// This is called when an alert is dropped due to various reasons
// such as worker pool full, suspended channel, or channel disabled.
//
// Parameters:
//   - channel: The name of the alert channel
//   - reason: The reason for dropping (pool_full, suspended, disabled)
func RecordDropped(channel string, reason string) {
	alertDroppedTotal.WithLabelValues(channel, reason).Inc()
}

// RecordSuspended records a channel suspend event.
//
// This is called when a channel is suspended after consecutive delivery
// failures.
//
// Parameters:
//   - channel: The name of the alert channel
func RecordSuspended(channel string) {
	alertChannelSuspendedTotal.WithLabelValues(channel).Inc()
}

// RecordRateLimitHit records a rate limit hit.
//
// This is called when an alert delivery encounters a rate limit.
//
// Parameters:
//   - channel: The name of the alert channel
func RecordRateLimitHit(channel string) {
	alertRateLimitHits.WithLabelValues(channel).Inc()
}

// RecordRateLimitWait records the time spent waiting for rate limits.
//
// This is called when an alert delivery has to wait due to rate limiting.
//
// Parameters:
//   - channel: The name of the alert channel
//   - waitDuration: The time spent waiting
func RecordRateLimitWait(channel string, waitDuration time.Duration) {
	alertRateLimitWaitSeconds.WithLabelValues(channel).Observe(waitDuration.Seconds())
}

// SetActiveGoroutines sets the current number of active delivery goroutines.
//
// Parameters:
//   - count: The current number of active goroutines
func SetActiveGoroutines(count float64) {
	activeDeliveries.Set(count)
}

// IncrementActiveGoroutines increments the active goroutines gauge by 1.
func IncrementActiveGoroutines() {
	activeDeliveries.Inc()
}

// DecrementActiveGoroutines decrements the active goroutines gauge by 1.
func DecrementActiveGoroutines() {
	activeDeliveries.Dec()
}

// SetChannelsEnabled sets the number of enabled alert channels.
//
// This should be called when the alert manager is initialized or when
// channel configuration changes.
//
// Parameters:
//   - count: The number of enabled channels
func SetChannelsEnabled(count float64) {
	channelsEnabled.Set(count)
}
