package circuitbreaker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for circuit breaker monitoring
var (
	// breakerState tracks the current state per circuit
	// (0=CLOSED, 1=OPEN, 2=HALF_OPEN)
	breakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Current circuit breaker state (0=closed, 1=open, 2=half_open)",
		},
		[]string{"circuit"},
	)

	// breakerTransitionsTotal tracks state transitions per circuit
	breakerTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"circuit", "to"},
	)

	// breakerCallsTotal tracks call outcomes observed by the breaker
	breakerCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_calls_total",
			Help: "Total number of calls observed by the circuit breaker",
		},
		[]string{"circuit", "outcome"}, // outcome: success|failure
	)

	// breakerRejectedTotal tracks calls rejected while the circuit was open
	breakerRejectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_rejected_total",
			Help: "Total number of calls rejected because the circuit was open",
		},
		[]string{"circuit"},
	)
)

func recordStateChange(circuit string, to State) {
	breakerState.WithLabelValues(circuit).Set(float64(to))
	breakerTransitionsTotal.WithLabelValues(circuit, to.String()).Inc()
}

func recordCall(circuit, outcome string) {
	breakerCallsTotal.WithLabelValues(circuit, outcome).Inc()
}

func recordRejection(circuit string) {
	breakerRejectedTotal.WithLabelValues(circuit).Inc()
}
