package worker

import (
	"call-agent/internal/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// AgentMetrics provides Prometheus metrics for the call agent process.
// It embeds the standard ConfigMetrics for configuration monitoring and adds
// agent-specific metrics for campaign run tracking.
//
// Embedded metrics (from ConfigMetrics):
//   - agent_config_load_timestamp: Unix timestamp of last configuration load
//   - agent_config_validation_errors_total: Total validation errors by field
//   - agent_config_fallbacks_total: Total fallback operations by field
//   - agent_config_fallback_active: 1 if any fallback active, 0 otherwise
//
// Agent-specific metrics:
//   - agent_campaign_runs_total: Total campaign runs by status (success/failure)
//   - agent_campaign_duration_seconds: Duration histogram of campaign execution
//   - agent_campaign_contacts_processed_total: Total contacts processed per run
//   - agent_campaign_last_success_timestamp: Unix timestamp of last successful run
//
// Example usage:
//
//	metrics := NewAgentMetrics()
//	metrics.MustRegister()
//
//	// Record configuration load
//	metrics.RecordLoadTimestamp()
//
//	// Record campaign execution
//	start := time.Now()
//	defer func() {
//	    duration := time.Since(start).Seconds()
//	    metrics.RecordCampaignRun("success")
//	    metrics.RecordCampaignDuration(duration)
//	    metrics.RecordContactsProcessed(42)
//	    metrics.RecordLastSuccess()
//	}()
type AgentMetrics struct {
	// Embedded configuration metrics
	*config.ConfigMetrics

	// CampaignRunsTotal counts the total number of campaign runs.
	// Type: Counter
	// Labels: status (success, failure)
	// Usage: Increment after each run based on success/failure
	CampaignRunsTotal *prometheus.CounterVec

	// CampaignDurationSeconds measures the duration of campaign execution.
	// Type: Histogram
	// Labels: none
	// Buckets: 1s, 5s, 30s, 1m, 5m, 15m, 30m (retry waits and call pacing
	// stretch even small queues into minutes)
	// Usage: Observe duration at the end of each run
	CampaignDurationSeconds prometheus.Histogram

	// CampaignContactsProcessedTotal counts the total number of contacts
	// processed across all campaign runs.
	// Type: Counter
	// Labels: none
	// Usage: Add the number of contacts processed after each run
	CampaignContactsProcessedTotal prometheus.Counter

	// CampaignLastSuccessTimestamp records the Unix timestamp of the last
	// successful campaign run.
	// Type: Gauge
	// Labels: none
	// Usage: Set to current time when a run completes successfully
	CampaignLastSuccessTimestamp prometheus.Gauge
}

// NewAgentMetrics creates a new AgentMetrics instance with all metrics initialized.
// Metrics are created but not registered with Prometheus. Call MustRegister() to register.
//
// Returns:
//   - *AgentMetrics: Initialized metrics ready for registration
//
// Example:
//
//	metrics := NewAgentMetrics()
//	metrics.MustRegister()  // Register with Prometheus
func NewAgentMetrics() *AgentMetrics {
	return &AgentMetrics{
		ConfigMetrics: config.NewConfigMetrics("agent"),

		CampaignRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "agent_campaign_runs_total",
			Help: "Total number of campaign runs by status (success/failure)",
		}, []string{"status"}),

		CampaignDurationSeconds: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "agent_campaign_duration_seconds",
			Help:    "Duration of campaign execution in seconds",
			Buckets: []float64{1, 5, 30, 60, 300, 900, 1800}, // 1s, 5s, 30s, 1m, 5m, 15m, 30m
		}),

		CampaignContactsProcessedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "agent_campaign_contacts_processed_total",
			Help: "Total number of contacts processed across all campaign runs",
		}),

		CampaignLastSuccessTimestamp: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "agent_campaign_last_success_timestamp",
			Help: "Unix timestamp of the last successful campaign run",
		}),
	}
}

// MustRegister is a no-op method for API compatibility.
// Metrics are automatically registered via promauto when created in NewAgentMetrics.
//
// This method exists to maintain consistency with the expected metrics initialization pattern:
//
//	metrics := NewAgentMetrics()
//	metrics.MustRegister()
//
// Even though registration happens automatically, this explicit call makes the
// initialization intent clear and maintains compatibility with future changes.
func (m *AgentMetrics) MustRegister() {
	// No-op: metrics are auto-registered via promauto
}

// RecordCampaignRun increments the campaign run counter for the given status.
// Status should be either "success" or "failure".
//
// Parameters:
//   - status: Campaign execution status ("success" or "failure")
//
// Example:
//
//	if err := runCampaign(); err != nil {
//	    metrics.RecordCampaignRun("failure")
//	} else {
//	    metrics.RecordCampaignRun("success")
//	}
func (m *AgentMetrics) RecordCampaignRun(status string) {
	m.CampaignRunsTotal.WithLabelValues(status).Inc()
}

// RecordCampaignDuration observes the duration of a campaign execution.
// Duration should be in seconds.
//
// Parameters:
//   - seconds: Campaign execution duration in seconds
//
// Example:
//
//	start := time.Now()
//	// ... run campaign ...
//	duration := time.Since(start).Seconds()
//	metrics.RecordCampaignDuration(duration)
func (m *AgentMetrics) RecordCampaignDuration(seconds float64) {
	m.CampaignDurationSeconds.Observe(seconds)
}

// RecordContactsProcessed adds the number of contacts processed to the total counter.
//
// Parameters:
//   - count: Number of contacts processed in this campaign run
//
// Example:
//
//	stats, err := svc.RunCampaign(ctx, contacts)
//	if err == nil {
//	    metrics.RecordContactsProcessed(len(stats.Records))
//	}
func (m *AgentMetrics) RecordContactsProcessed(count int) {
	m.CampaignContactsProcessedTotal.Add(float64(count))
}

// RecordLastSuccess records the current time as the last successful campaign completion.
//
// Example:
//
//	if err := runCampaign(); err == nil {
//	    metrics.RecordLastSuccess()
//	}
func (m *AgentMetrics) RecordLastSuccess() {
	m.CampaignLastSuccessTimestamp.SetToCurrentTime()
}
