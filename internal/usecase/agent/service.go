// Package agent implements the outbound call campaign. The service walks
// the contact queue sequentially and runs the two-step call pipeline for
// each contact: generate a greeting with the language model, then speak it
// with the text-to-speech service. Both dependencies are called through
// their resilience guards; the campaign itself never fails because a
// dependency does, it degrades per contact and keeps going.
package agent

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"call-agent/internal/domain/entity"
	"call-agent/internal/domain/fault"
	"call-agent/internal/observability/metrics"
	"call-agent/internal/observability/slo"
	"call-agent/internal/resilience"
	"call-agent/internal/usecase/alert"
)

// fallbackGreeting is spoken when the language model returns empty text.
const fallbackGreeting = "Hello"

// DefaultCallPause is the pause between successful calls. Failed or
// skipped contacts are not followed by a pause; the pipeline has already
// spent its time in backoff.
const DefaultCallPause = 2 * time.Second

// Synthesizer is the text-to-speech operation the call pipeline depends on.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// Responder is the language-model operation the call pipeline depends on.
type Responder interface {
	Respond(ctx context.Context, prompt string) (string, error)
}

// Config holds campaign pacing configuration.
type Config struct {
	// CallPause is the wait after each successful call before the next
	// contact is processed. Zero disables pacing.
	CallPause time.Duration
}

// DefaultConfig returns the standard campaign pacing.
func DefaultConfig() Config {
	return Config{CallPause: DefaultCallPause}
}

// Service runs call campaigns over a contact queue.
// It orchestrates the greeting and synthesis steps through their resilience
// guards and turns every failure into a per-contact outcome instead of a
// campaign abort.
type Service struct {
	Responder   Responder
	Synthesizer Synthesizer
	LLMGuard    *resilience.Guard
	TTSGuard    *resilience.Guard
	Alerts      alert.Manager
	config      Config
}

// NewService creates a new campaign Service with the provided dependencies.
//
// Parameters:
//   - responder: Language model that generates greetings
//   - synthesizer: Text-to-speech service that produces the call audio
//   - llmGuard: Resilience guard wrapping every responder call
//   - ttsGuard: Resilience guard wrapping every synthesizer call
//   - alerts: Alert manager for degradation notifications
//   - config: Campaign pacing configuration
//
// Returns:
//   - Service: Configured campaign service ready to use
func NewService(
	responder Responder,
	synthesizer Synthesizer,
	llmGuard *resilience.Guard,
	ttsGuard *resilience.Guard,
	alerts alert.Manager,
	config Config,
) Service {
	return Service{
		Responder:   responder,
		Synthesizer: synthesizer,
		LLMGuard:    llmGuard,
		TTSGuard:    ttsGuard,
		Alerts:      alerts,
		config:      config,
	}
}

// CampaignStats contains statistics about one campaign run.
type CampaignStats struct {
	Contacts  int
	Succeeded int
	Skipped   int
	Failed    int
	Duration  time.Duration
	Records   []entity.CallRecord
}

// SuccessRatio returns the fraction of contacts whose call completed.
// Returns 0 for an empty campaign.
func (s *CampaignStats) SuccessRatio() float64 {
	if s.Contacts == 0 {
		return 0
	}
	return float64(s.Succeeded) / float64(s.Contacts)
}

// SkipRatio returns the fraction of contacts skipped by an open circuit.
// Returns 0 for an empty campaign.
func (s *CampaignStats) SkipRatio() float64 {
	if s.Contacts == 0 {
		return 0
	}
	return float64(s.Skipped) / float64(s.Contacts)
}

// RunCampaign processes every contact in order and returns the campaign
// statistics. Per-contact failures never abort the run; the only early
// exit is context cancellation, which returns the statistics gathered so
// far together with the context error.
//
// After each successful call the service pauses for the configured
// CallPause so a recovered dependency is not immediately hammered back
// into failure.
func (s *Service) RunCampaign(ctx context.Context, contacts []entity.Contact) (*CampaignStats, error) {
	logger := slog.Default()
	startAll := time.Now()
	stats := &CampaignStats{
		Contacts: len(contacts),
		Records:  make([]entity.CallRecord, 0, len(contacts)),
	}

	logger.Info("Starting call campaign",
		slog.Int("contacts", len(contacts)))
	metrics.UpdateContactsQueued(len(contacts))

	for i, contact := range contacts {
		if err := ctx.Err(); err != nil {
			s.finishCampaign(stats, startAll, "interrupted")
			logger.Warn("Campaign interrupted",
				slog.Int("processed", len(stats.Records)),
				slog.Int("remaining", len(contacts)-i))
			return stats, fmt.Errorf("campaign interrupted: %w", err)
		}

		record := s.callContact(ctx, contact)
		stats.Records = append(stats.Records, record)
		s.tally(stats, record)
		metrics.UpdateContactsQueued(len(contacts) - i - 1)
		metrics.RecordContactCall(outcomeLabel(record.Outcome), record.Duration, record.Retries)

		if record.Outcome == entity.CallSucceeded && i < len(contacts)-1 {
			select {
			case <-time.After(s.config.CallPause):
			case <-ctx.Done():
			}
		}
	}

	s.finishCampaign(stats, startAll, "completed")
	logger.Info("Call campaign completed",
		slog.Int("contacts", stats.Contacts),
		slog.Int("succeeded", stats.Succeeded),
		slog.Int("skipped", stats.Skipped),
		slog.Int("failed", stats.Failed),
		slog.Duration("duration", stats.Duration))

	return stats, nil
}

// finishCampaign closes out the run: duration, campaign metrics, and the
// campaign-level SLO gauges. Interrupted runs skip the SLO gauges because
// their ratios would mix processed and unprocessed contacts.
func (s *Service) finishCampaign(stats *CampaignStats, startAll time.Time, status string) {
	stats.Duration = time.Since(startAll)
	metrics.RecordCampaign(status, stats.Duration)
	if status == "completed" && stats.Contacts > 0 {
		slo.UpdateCallSuccess(stats.SuccessRatio())
		slo.UpdateSkipRate(stats.SkipRatio())
		slo.UpdateCallLatencyP95(latencyP95(stats.Records).Seconds())
	}
}

// latencyP95 returns the 95th percentile call duration of the run using the
// nearest-rank method. Returns 0 for an empty record set.
func latencyP95(records []entity.CallRecord) time.Duration {
	if len(records) == 0 {
		return 0
	}

	durations := make([]time.Duration, len(records))
	for i, rec := range records {
		durations[i] = rec.Duration
	}
	sort.Slice(durations, func(i, j int) bool { return durations[i] < durations[j] })

	rank := (len(durations)*95 + 99) / 100 // ceil(0.95 * n)
	return durations[rank-1]
}

// tally updates the outcome counters for one record.
func (s *Service) tally(stats *CampaignStats, record entity.CallRecord) {
	switch {
	case record.Outcome == entity.CallSucceeded:
		stats.Succeeded++
	case record.Outcome == entity.CallSkipped:
		stats.Skipped++
	case record.Outcome.Failed():
		stats.Failed++
	}
}

// callContact runs the two-step pipeline for one contact and classifies
// the result. It never returns an error; every failure becomes an outcome
// on the returned record.
func (s *Service) callContact(ctx context.Context, contact entity.Contact) entity.CallRecord {
	logger := slog.Default()
	start := time.Now()

	logger.Info("Processing contact",
		slog.String("name", contact.Name),
		slog.String("phone", contact.Phone))

	greeting, llmRetries, err := s.generateGreeting(ctx, contact)
	if err != nil {
		return s.failureRecord(ctx, contact, err, llmRetries, start)
	}

	audio, ttsRetries, err := s.synthesize(ctx, greeting)
	if err != nil {
		return s.failureRecord(ctx, contact, err, llmRetries+ttsRetries, start)
	}

	logger.Info("Call completed",
		slog.String("name", contact.Name),
		slog.Int("audio_bytes", len(audio)),
		slog.Int("retries", llmRetries+ttsRetries))

	return entity.CallRecord{
		Contact:   contact,
		Outcome:   entity.CallSucceeded,
		Retries:   llmRetries + ttsRetries,
		StartedAt: start,
		Duration:  time.Since(start),
	}
}

// generateGreeting asks the language model for a personalized greeting
// through the LLM guard. An empty response falls back to a fixed greeting
// rather than failing the call; the synthesizer rejects empty text.
func (s *Service) generateGreeting(ctx context.Context, contact entity.Contact) (string, int, error) {
	prompt := fmt.Sprintf("Generate greeting for %s", contact.Name)

	result, retries, err := s.LLMGuard.Do(ctx, func() (interface{}, error) {
		return s.Responder.Respond(ctx, prompt)
	})
	if err != nil {
		return "", retries, err
	}

	greeting, _ := result.(string)
	if greeting == "" {
		slog.Warn("Language model returned empty greeting, using fallback",
			slog.String("name", contact.Name))
		greeting = fallbackGreeting
	}
	return greeting, retries, nil
}

// synthesize speaks the greeting through the TTS guard.
func (s *Service) synthesize(ctx context.Context, greeting string) ([]byte, int, error) {
	result, retries, err := s.TTSGuard.Do(ctx, func() (interface{}, error) {
		return s.Synthesizer.Synthesize(ctx, greeting)
	})
	if err != nil {
		return nil, retries, err
	}

	audio, _ := result.([]byte)
	return audio, retries, nil
}

// failureRecord classifies a pipeline failure into a call outcome and
// performs the matching degradation action.
//
// Circuit rejections are skips, not failures: the breaker's open
// transition already raised its own alert, so raising another here would
// page twice for one outage. Transient exhaustion and permanent rejections
// alert with the failing service attached. Anything unclassified is logged
// and nothing more; there is no way to tell whose fault it is.
func (s *Service) failureRecord(ctx context.Context, contact entity.Contact, err error, retries int, start time.Time) entity.CallRecord {
	logger := slog.Default()

	record := entity.CallRecord{
		Contact:   contact,
		Service:   fault.ServiceName(err),
		Detail:    err.Error(),
		Retries:   retries,
		StartedAt: start,
	}

	switch {
	case fault.IsCircuitOpen(err):
		record.Outcome = entity.CallSkipped
		logger.Warn("Circuit open, skipping contact",
			slog.String("name", contact.Name),
			slog.String("service", record.Service))

	case fault.IsTransient(err):
		t, _ := fault.AsTransient(err)
		record.Outcome = entity.CallFailedTransient
		logger.Error("Call failed after retries",
			slog.String("name", contact.Name),
			slog.String("service", t.Service),
			slog.Int("retries", t.RetryCount),
			slog.Any("error", err))
		_ = s.Alerts.SendAlert(ctx,
			fmt.Sprintf("Call Failed for %s", contact.Name),
			fmt.Sprintf("Transient error: %s (retries=%d)", t.Message, t.RetryCount),
			entity.SeverityError,
			t.Service)

	case fault.IsPermanent(err):
		p, _ := fault.AsPermanent(err)
		record.Outcome = entity.CallFailedPermanent
		logger.Error("Call rejected permanently",
			slog.String("name", contact.Name),
			slog.String("service", p.Service),
			slog.Any("error", err))
		_ = s.Alerts.SendAlert(ctx,
			fmt.Sprintf("Permanent Failure for %s", contact.Name),
			fmt.Sprintf("Permanent error: %s", p.Message),
			entity.SeverityCritical,
			p.Service)

	default:
		record.Outcome = entity.CallFailedUnexpected
		logger.Error("Unexpected error during call",
			slog.String("name", contact.Name),
			slog.Any("error", err))
	}

	record.Duration = time.Since(start)
	return record
}

// outcomeLabel converts a call outcome to its lowercase metric label.
func outcomeLabel(outcome entity.CallOutcome) string {
	switch outcome {
	case entity.CallSucceeded:
		return "succeeded"
	case entity.CallSkipped:
		return "skipped"
	case entity.CallFailedTransient:
		return "failed_transient"
	case entity.CallFailedPermanent:
		return "failed_permanent"
	case entity.CallFailedUnexpected:
		return "failed_unexpected"
	default:
		return "unknown"
	}
}
