// Package runid provides utilities for managing campaign run IDs.
// It generates a unique ID for each campaign run to enable correlation of log
// entries, failure records, and alerts produced by the same run.
package runid

import (
	"context"

	"github.com/google/uuid"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// RunIDKey is the context key for storing campaign run IDs.
const RunIDKey contextKey = "run_id"

// New generates a new campaign run ID (UUID v4).
// The scheduler calls this once at the start of each campaign run.
func New() string {
	return uuid.New().String()
}

// FromContext retrieves the run ID from the context.
// Returns an empty string if no run ID is found.
func FromContext(ctx context.Context) string {
	if id, ok := ctx.Value(RunIDKey).(string); ok {
		return id
	}
	return ""
}

// WithRunID adds a run ID to the context.
func WithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RunIDKey, id)
}
