package resilience

import (
	"context"

	"call-agent/internal/domain/fault"
	"call-agent/internal/observability/tracing"
	"call-agent/internal/resilience/circuitbreaker"
	"call-agent/internal/resilience/health"
	"call-agent/internal/resilience/retry"
)

// Guard is the resilience pipeline for one external dependency. Every call
// to the dependency goes through Do, which wraps the circuit breaker in the
// retry executor: the breaker sees each individual attempt, the retry
// policy sees the breaker's verdicts.
//
// A Guard also owns the dependency's health monitor, so starting and
// stopping the background watch is part of the same lifecycle as the call
// path.
type Guard struct {
	service  string
	breaker  *circuitbreaker.CircuitBreaker
	monitor  *health.Monitor
	retryCfg retry.Config
	sink     FailureSink
}

// Status is a point-in-time view of one guarded dependency, served by the
// operational health endpoint.
type Status struct {
	Service        string `json:"service"`
	CircuitState   string `json:"circuit_state"`
	MonitorRunning bool   `json:"monitor_running"`
}

// NewGuard assembles the pipeline for one dependency. breaker is required;
// monitor and sink may be nil, disabling background monitoring and failure
// recording respectively.
func NewGuard(service string, breaker *circuitbreaker.CircuitBreaker, monitor *health.Monitor, retryCfg retry.Config, sink FailureSink) *Guard {
	return &Guard{
		service:  service,
		breaker:  breaker,
		monitor:  monitor,
		retryCfg: retryCfg,
		sink:     sink,
	}
}

// Do executes fn through the full pipeline and returns the result, the
// number of retries consumed, and the final error.
//
// Attempt handling follows the fault taxonomy: transient failures are
// retried with backoff, permanent failures and breaker rejections return
// immediately, and unclassified errors pass through untouched. Any
// classified failure that survives the pipeline is recorded to the failure
// sink with the breaker state observed at recording time.
func (g *Guard) Do(ctx context.Context, fn func() (interface{}, error)) (interface{}, int, error) {
	ctx, span := tracing.StartCall(ctx, g.service)

	result, retries, err := retry.WithBackoff(ctx, g.retryCfg, func() (interface{}, error) {
		return g.breaker.Execute(fn)
	})

	if err != nil {
		g.recordFailure(ctx, err)
	}

	tracing.EndCall(span, retries, err)
	return result, retries, err
}

// recordFailure writes one structured record for a classified failure.
// Unclassified errors are not the dependency's fault as far as the
// resilience layer can tell, so they leave no record.
func (g *Guard) recordFailure(ctx context.Context, err error) {
	if g.sink == nil {
		return
	}

	state := g.breaker.State().String()

	if fault.IsCircuitOpen(err) {
		g.sink.Record(ctx, FailureRecord{
			Service:      g.service,
			Category:     CategoryCircuitOpen,
			Message:      err.Error(),
			RetryCount:   0,
			CircuitState: state,
		})
		return
	}

	if t, ok := fault.AsTransient(err); ok {
		g.sink.Record(ctx, FailureRecord{
			Service:      g.service,
			Category:     CategoryTransient,
			Message:      t.Message,
			RetryCount:   t.RetryCount,
			CircuitState: state,
		})
		return
	}

	if p, ok := fault.AsPermanent(err); ok {
		g.sink.Record(ctx, FailureRecord{
			Service:      g.service,
			Category:     CategoryPermanent,
			Message:      p.Message,
			RetryCount:   0,
			CircuitState: state,
		})
	}
}

// Start launches the dependency's health monitor, if one is attached.
func (g *Guard) Start() {
	if g.monitor != nil {
		g.monitor.Start()
	}
}

// Stop halts the dependency's health monitor, if one is attached.
func (g *Guard) Stop() {
	if g.monitor != nil {
		g.monitor.Stop()
	}
}

// Service returns the name of the guarded dependency.
func (g *Guard) Service() string {
	return g.service
}

// Breaker returns the dependency's circuit breaker.
func (g *Guard) Breaker() *circuitbreaker.CircuitBreaker {
	return g.breaker
}

// Status reports the current pipeline state for the health endpoint.
func (g *Guard) Status() Status {
	running := false
	if g.monitor != nil {
		running = g.monitor.Running()
	}
	return Status{
		Service:        g.service,
		CircuitState:   g.breaker.State().String(),
		MonitorRunning: running,
	}
}
