package health

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for dependency health monitoring
var (
	// healthChecksTotal tracks probe outcomes per service
	healthChecksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "health_checks_total",
			Help: "Total number of dependency health checks",
		},
		[]string{"service", "result"}, // result: healthy|unhealthy
	)

	// dependencyUp reflects the last probe outcome per service
	dependencyUp = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "dependency_up",
			Help: "Whether the dependency passed its last health check (1=up, 0=down)",
		},
		[]string{"service"},
	)

	// downAlertsTotal tracks dependency-down alerts per service
	downAlertsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dependency_down_alerts_total",
			Help: "Total number of dependency-down alerts sent",
		},
		[]string{"service"},
	)
)

func recordProbe(service string, healthy bool) {
	if healthy {
		healthChecksTotal.WithLabelValues(service, "healthy").Inc()
		dependencyUp.WithLabelValues(service).Set(1)
		return
	}
	healthChecksTotal.WithLabelValues(service, "unhealthy").Inc()
	dependencyUp.WithLabelValues(service).Set(0)
}

func recordDownAlert(service string) {
	downAlertsTotal.WithLabelValues(service).Inc()
}
