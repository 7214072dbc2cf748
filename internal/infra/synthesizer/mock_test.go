package synthesizer_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"call-agent/internal/domain/fault"
	"call-agent/internal/infra/synthesizer"
)

func TestMock_OutageThenRecovery(t *testing.T) {
	mock := synthesizer.NewMock()
	ctx := context.Background()

	// First three calls fail with a simulated 503.
	for i := 1; i <= 3; i++ {
		_, err := mock.Synthesize(ctx, "hello")
		require.Error(t, err, "call %d should fail", i)

		tr, ok := fault.AsTransient(err)
		require.True(t, ok, "call %d should be transient", i)
		assert.Equal(t, "Service temporarily unavailable (503)", tr.Message)
		assert.Equal(t, synthesizer.ServiceName, tr.Service)
	}

	// The fourth call and everything after succeeds.
	for i := 4; i <= 6; i++ {
		audio, err := mock.Synthesize(ctx, "hello")
		require.NoError(t, err, "call %d should succeed", i)
		assert.Equal(t, []byte("FAKE_AUDIO_BYTES"), audio)
	}
}

func TestMock_EmptyTextDoesNotBurnOutage(t *testing.T) {
	mock := synthesizer.NewMock()
	ctx := context.Background()

	_, err := mock.Synthesize(ctx, "")
	require.Error(t, err)
	assert.True(t, fault.IsPermanent(err))

	perm, ok := fault.AsPermanent(err)
	require.True(t, ok)
	assert.Equal(t, "Invalid payload: 'text' must be a non-empty string", perm.Message)

	// Payload validation happens before the outage counter, so the
	// three simulated failures are still ahead of us.
	for i := 1; i <= 3; i++ {
		_, err := mock.Synthesize(ctx, "hello")
		assert.True(t, fault.IsTransient(err), "call %d should still be in the outage window", i)
	}
	_, err = mock.Synthesize(ctx, "hello")
	assert.NoError(t, err)
}

func TestMock_PingTracksOutage(t *testing.T) {
	mock := synthesizer.NewMock()
	ctx := context.Background()

	// Unhealthy before any call and throughout the outage window.
	assert.Error(t, mock.Ping(ctx))

	for i := 0; i < 3; i++ {
		_, _ = mock.Synthesize(ctx, "hello")
		assert.Error(t, mock.Ping(ctx), "still unhealthy after failure %d", i+1)
	}

	// The fourth call pushes the counter past the outage window, and only
	// then does the mock report healthy.
	_, err := mock.Synthesize(ctx, "hello")
	require.NoError(t, err)
	assert.NoError(t, mock.Ping(ctx))
}

func TestMock_ConcurrentCallsFailExactlyThreeTimes(t *testing.T) {
	mock := synthesizer.NewMock()

	const calls = 10
	var wg sync.WaitGroup
	results := make(chan error, calls)

	for i := 0; i < calls; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := mock.Synthesize(context.Background(), "hello")
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var failures, successes int
	for err := range results {
		if err != nil {
			failures++
		} else {
			successes++
		}
	}

	assert.Equal(t, 3, failures)
	assert.Equal(t, 7, successes)
}
