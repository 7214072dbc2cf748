// Package resilience provides reliability and fault tolerance patterns for
// calls to external dependencies. It composes three cooperating parts per
// dependency: a circuit breaker that fails fast during outages, a retry
// executor with exponential backoff for transient failures, and a
// background health monitor that alerts on sustained downtime and closes
// the breaker once the dependency recovers.
//
// A Guard bundles the triad for one dependency and is the single entry
// point callers use. Failed calls are recorded to a FailureSink as
// structured records carrying the failure category, retry count, and the
// breaker state at the time of failure.
//
// Usage Example:
//
//	breaker := circuitbreaker.New(circuitbreaker.DefaultConfig("elevenlabs"))
//	monitor := health.NewMonitor(health.DefaultConfig("elevenlabs"), probe, breaker, alerter)
//	guard := resilience.NewGuard("elevenlabs", breaker, monitor, retry.DefaultConfig(), sink)
//
//	guard.Start()
//	defer guard.Stop()
//
//	result, retries, err := guard.Do(ctx, func() (interface{}, error) {
//	    return client.Synthesize(ctx, text)
//	})
package resilience
