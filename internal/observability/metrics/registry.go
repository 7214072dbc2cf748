// Package metrics provides centralized Prometheus metrics for the application.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Call pipeline metrics track individual contact calls through the agent
var (
	// CallsTotal counts contact calls by outcome
	// (succeeded, skipped, failed_transient, failed_permanent, failed_unexpected)
	CallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "calls_total",
			Help: "Total number of contact calls by outcome",
		},
		[]string{"outcome"},
	)

	// CallDuration measures the duration of one contact call in seconds,
	// retries and backoff included
	CallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "call_duration_seconds",
			Help:    "Duration of one contact call including retries and backoff",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		},
		[]string{"outcome"},
	)

	// CallRetries tracks how many retries each contact call consumed
	CallRetries = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "call_retries",
			Help:    "Number of retries consumed per contact call",
			Buckets: []float64{0, 1, 2, 3, 5, 8},
		},
	)
)

// Campaign metrics track whole campaign runs
var (
	// CampaignsTotal counts campaign runs by final status (completed, interrupted)
	CampaignsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campaigns_total",
			Help: "Total number of campaign runs by status",
		},
		[]string{"status"},
	)

	// CampaignDuration measures the wall-clock duration of a campaign run
	CampaignDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "campaign_duration_seconds",
			Help:    "Wall-clock duration of a campaign run",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		},
	)

	// ContactsQueued tracks the number of contacts in the current campaign queue
	ContactsQueued = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "contacts_queued",
			Help: "Number of contacts in the current campaign queue",
		},
	)
)
