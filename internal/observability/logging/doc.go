// Package logging provides structured logging utilities with context propagation.
//
// This package wraps the standard library's log/slog package with helper functions
// for common logging patterns used throughout the application.
//
// Key features:
//   - JSON and text output formats
//   - Campaign run ID propagation
//   - Context-aware logging
//   - Configurable log levels
//
// Example usage:
//
//	import "call-agent/internal/observability/logging"
//
//	func main() {
//	    logger := logging.NewLogger()
//	    logger.Info("agent started", slog.String("version", "1.0"))
//	}
//
//	func runCampaign(ctx context.Context) {
//	    logger := logging.WithRunID(ctx, slog.Default())
//	    logger.Info("starting campaign")
//	}
package logging
