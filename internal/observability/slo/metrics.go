package slo

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// SLO targets define the service level objectives for the call agent.
// These targets are used to measure and monitor campaign reliability.
const (
	// CallSuccessSLO defines the target ratio of completed calls (0.95 = 95%)
	CallSuccessSLO = 0.95

	// SkipRateSLO defines the maximum acceptable ratio of contacts skipped
	// by an open circuit (0.10 = 10%)
	SkipRateSLO = 0.10

	// CallLatencyP95SLO defines the target for 95th percentile call pipeline
	// latency in seconds. The target allows for a full retry sequence with
	// backoff (5s + 10s) on top of the call itself.
	CallLatencyP95SLO = 30.0
)

// SLO tracking metrics
// All three gauges are updated at the end of every completed campaign run;
// interrupted runs leave them at their previous values.
var (
	// SLOCallSuccess tracks the call success ratio of the last campaign (0-1)
	// calculated as: succeeded_calls / total_calls
	SLOCallSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "slo_call_success_ratio",
			Help: "Call success ratio of the last campaign (0-1), target: 0.95",
		},
	)

	// SLOSkipRate tracks the circuit-skip ratio of the last campaign (0-1)
	// calculated as: skipped_calls / total_calls
	SLOSkipRate = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "slo_skip_rate_ratio",
			Help: "Circuit-skip ratio of the last campaign (0-1), target: <= 0.10",
		},
	)

	// SLOCallLatencyP95 tracks the current p95 call latency in seconds
	// calculated from the call_duration_seconds histogram
	SLOCallLatencyP95 = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "slo_call_latency_p95_seconds",
			Help: "Current p95 call latency in seconds, target: 30",
		},
	)
)

// UpdateCallSuccess updates the call success SLO metric.
// Call this at the end of a campaign with the calculated success ratio.
//
// Example calculation:
//
//	ratio := float64(stats.Succeeded) / float64(stats.Contacts)
//	slo.UpdateCallSuccess(ratio)
func UpdateCallSuccess(ratio float64) {
	SLOCallSuccess.Set(ratio)
}

// UpdateSkipRate updates the circuit-skip SLO metric.
// Call this at the end of a campaign with the calculated skip ratio.
//
// Example calculation:
//
//	ratio := float64(stats.Skipped) / float64(stats.Contacts)
//	slo.UpdateSkipRate(ratio)
func UpdateSkipRate(ratio float64) {
	SLOSkipRate.Set(ratio)
}

// UpdateCallLatencyP95 updates the p95 call latency SLO metric.
// Call this at the end of a campaign with the nearest-rank p95 over that
// run's call durations, in seconds.
//
// Equivalent Prometheus query over the call histogram:
//
//	histogram_quantile(0.95, rate(call_duration_seconds_bucket[30m]))
func UpdateCallLatencyP95(seconds float64) {
	SLOCallLatencyP95.Set(seconds)
}
