package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"call-agent/internal/domain/fault"
)

func fastConfig() Config {
	return Config{
		MaxAttempts:  3,
		InitialDelay: 10 * time.Millisecond,
		Multiplier:   2.0,
	}
}

func TestWithBackoff_Success(t *testing.T) {
	attempts := 0
	fn := func() (interface{}, error) {
		attempts++
		return "audio.mp3", nil // Success on first attempt
	}

	result, retries, err := WithBackoff(context.Background(), fastConfig(), fn)

	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if result != "audio.mp3" {
		t.Errorf("expected result='audio.mp3', got %v", result)
	}
	if retries != 0 {
		t.Errorf("expected 0 retries, got %d", retries)
	}
	if attempts != 1 {
		t.Errorf("expected 1 attempt, got %d", attempts)
	}
}

func TestWithBackoff_SuccessAfterRetry(t *testing.T) {
	attempts := 0
	fn := func() (interface{}, error) {
		attempts++
		if attempts < 3 {
			return nil, fault.Transient("tts", "service temporarily unavailable (503)", nil)
		}
		return "ok", nil // Success on 3rd attempt
	}

	result, retries, err := WithBackoff(context.Background(), fastConfig(), fn)

	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if result != "ok" {
		t.Errorf("expected result='ok', got %v", result)
	}
	if retries != 2 {
		t.Errorf("expected 2 retries, got %d", retries)
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
}

func TestWithBackoff_TransientExhaustion(t *testing.T) {
	attempts := 0
	fn := func() (interface{}, error) {
		attempts++
		return nil, fault.Transient("tts", "still down", nil)
	}

	start := time.Now()
	result, retries, err := WithBackoff(context.Background(), fastConfig(), fn)
	elapsed := time.Since(start)

	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if result != nil {
		t.Errorf("expected nil result, got %v", result)
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
	if retries != 2 {
		t.Errorf("expected 2 retries, got %d", retries)
	}

	// The final transient fault carries the retry count.
	transient, ok := fault.AsTransient(err)
	if !ok {
		t.Fatalf("expected transient fault, got %v", err)
	}
	if transient.RetryCount != 2 {
		t.Errorf("expected RetryCount=2 on final error, got %d", transient.RetryCount)
	}

	// Waits of 10ms and 20ms happen between attempts, none after the last.
	if elapsed < 30*time.Millisecond {
		t.Errorf("expected at least 30ms of backoff, got %v", elapsed)
	}
}

func TestWithBackoff_BackoffSequence(t *testing.T) {
	cfg := Config{
		MaxAttempts:  3,
		InitialDelay: 50 * time.Millisecond,
		Multiplier:   2.0,
	}

	var stamps []time.Time
	fn := func() (interface{}, error) {
		stamps = append(stamps, time.Now())
		return nil, fault.Transient("tts", "boom", nil)
	}

	_, _, _ = WithBackoff(context.Background(), cfg, fn)

	if len(stamps) != 3 {
		t.Fatalf("expected 3 attempts, got %d", len(stamps))
	}

	// Delay doubles each round: ~50ms then ~100ms.
	first := stamps[1].Sub(stamps[0])
	second := stamps[2].Sub(stamps[1])
	if first < 50*time.Millisecond {
		t.Errorf("expected first wait >= 50ms, got %v", first)
	}
	if second < 100*time.Millisecond {
		t.Errorf("expected second wait >= 100ms, got %v", second)
	}
	if second < first {
		t.Errorf("expected waits to grow, got %v then %v", first, second)
	}
}

func TestWithBackoff_PermanentNotRetried(t *testing.T) {
	attempts := 0
	testErr := fault.Permanent("tts", "invalid payload", nil)
	fn := func() (interface{}, error) {
		attempts++
		return nil, testErr
	}

	start := time.Now()
	_, retries, err := WithBackoff(context.Background(), fastConfig(), fn)
	elapsed := time.Since(start)

	if !errors.Is(err, testErr) {
		t.Errorf("expected same error back, got %v", err)
	}
	if attempts != 1 {
		t.Errorf("expected 1 attempt (permanent), got %d", attempts)
	}
	if retries != 0 {
		t.Errorf("expected 0 retries, got %d", retries)
	}
	if elapsed > 5*time.Millisecond {
		t.Errorf("expected immediate return, took %v", elapsed)
	}
}

func TestWithBackoff_CircuitOpenNotRetried(t *testing.T) {
	attempts := 0
	fn := func() (interface{}, error) {
		attempts++
		return nil, fault.CircuitOpen("tts")
	}

	_, retries, err := WithBackoff(context.Background(), fastConfig(), fn)

	if !fault.IsCircuitOpen(err) {
		t.Errorf("expected CircuitOpenError, got %v", err)
	}
	if attempts != 1 {
		t.Errorf("expected 1 attempt (circuit open), got %d", attempts)
	}
	if retries != 0 {
		t.Errorf("expected 0 retries, got %d", retries)
	}
}

func TestWithBackoff_UnclassifiedNotRetried(t *testing.T) {
	attempts := 0
	testErr := errors.New("unexpected")
	fn := func() (interface{}, error) {
		attempts++
		return nil, testErr
	}

	_, _, err := WithBackoff(context.Background(), fastConfig(), fn)

	if !errors.Is(err, testErr) {
		t.Errorf("expected same error back, got %v", err)
	}
	if attempts != 1 {
		t.Errorf("expected 1 attempt (unclassified), got %d", attempts)
	}
}

func TestWithBackoff_ContextCanceled(t *testing.T) {
	cfg := Config{
		MaxAttempts:  5,
		InitialDelay: 10 * time.Second,
		Multiplier:   2.0,
	}

	ctx, cancel := context.WithCancel(context.Background())

	attempts := 0
	fn := func() (interface{}, error) {
		attempts++
		cancel() // Cancel while the retry wait is pending
		return nil, fault.Transient("tts", "boom", nil)
	}

	start := time.Now()
	_, _, err := WithBackoff(ctx, cfg, fn)
	elapsed := time.Since(start)

	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled error, got %v", err)
	}
	if attempts != 1 {
		t.Errorf("expected 1 attempt before abort, got %d", attempts)
	}
	if elapsed > time.Second {
		t.Errorf("expected abort well before the 10s delay, took %v", elapsed)
	}
}

func TestWithBackoff_ZeroAttemptsStillCallsOnce(t *testing.T) {
	cfg := Config{
		MaxAttempts:  0,
		InitialDelay: 10 * time.Millisecond,
		Multiplier:   2.0,
	}

	attempts := 0
	fn := func() (interface{}, error) {
		attempts++
		return "ok", nil
	}

	result, retries, err := WithBackoff(context.Background(), cfg, fn)

	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if result != "ok" || retries != 0 || attempts != 1 {
		t.Errorf("expected single successful attempt, got result=%v retries=%d attempts=%d",
			result, retries, attempts)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.MaxAttempts != 3 {
		t.Errorf("expected MaxAttempts=3, got %d", cfg.MaxAttempts)
	}
	if cfg.InitialDelay != 5*time.Second {
		t.Errorf("expected InitialDelay=5s, got %v", cfg.InitialDelay)
	}
	if cfg.Multiplier != 2.0 {
		t.Errorf("expected Multiplier=2.0, got %f", cfg.Multiplier)
	}
}
