package responder_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"call-agent/internal/domain/fault"
	"call-agent/internal/infra/responder"
)

func TestMock_Respond(t *testing.T) {
	mock := responder.NewMock()

	response, err := mock.Respond(context.Background(), "Generate greeting for Contact 1")
	require.NoError(t, err)
	assert.Equal(t, "Hello! (Generated for prompt: Generate greeting for Contact 1)", response)
}

func TestMock_Respond_EmptyPrompt(t *testing.T) {
	mock := responder.NewMock()

	_, err := mock.Respond(context.Background(), "")
	require.Error(t, err)

	perm, ok := fault.AsPermanent(err)
	require.True(t, ok)
	assert.Equal(t, "Invalid payload: prompt must be a non-empty string", perm.Message)
	assert.Equal(t, responder.ServiceName, perm.Service)
}

func TestMock_PingAlwaysHealthy(t *testing.T) {
	mock := responder.NewMock()

	assert.NoError(t, mock.Ping(context.Background()))

	// Even a rejected prompt leaves the mock healthy.
	_, _ = mock.Respond(context.Background(), "")
	assert.NoError(t, mock.Ping(context.Background()))
}
