package runid

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromContext(t *testing.T) {
	tests := []struct {
		name     string
		ctx      context.Context
		expected string
	}{
		{
			name:     "with run ID",
			ctx:      WithRunID(context.Background(), "test-run-123"),
			expected: "test-run-123",
		},
		{
			name:     "without run ID",
			ctx:      context.Background(),
			expected: "",
		},
		{
			name:     "with invalid type in context",
			ctx:      context.WithValue(context.Background(), RunIDKey, 12345),
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FromContext(tt.ctx)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestWithRunID(t *testing.T) {
	ctx := context.Background()
	runID := "test-run-id"

	newCtx := WithRunID(ctx, runID)

	// Verify the run ID is stored in context
	storedID := FromContext(newCtx)
	assert.Equal(t, runID, storedID)
}

func TestNew_GeneratesValidUUID(t *testing.T) {
	id := New()

	assert.NotEmpty(t, id)
	_, err := uuid.Parse(id)
	assert.NoError(t, err)
}

func TestNew_UniqueAcrossRuns(t *testing.T) {
	// Verify that each campaign run gets a unique ID
	runIDs := make(map[string]bool)

	for i := 0; i < 10; i++ {
		runIDs[New()] = true
	}

	// All 10 run IDs should be unique
	assert.Equal(t, 10, len(runIDs))
}

func TestNew_PropagatesThroughContext(t *testing.T) {
	// Test the full flow: generate -> attach -> retrieve
	id := New()
	ctx := WithRunID(context.Background(), id)

	assert.Equal(t, id, FromContext(ctx))
}

func TestContextKey_Type(t *testing.T) {
	// Verify the context key is a custom type (not a string)
	var key = RunIDKey
	require.NotNil(t, key)
}
