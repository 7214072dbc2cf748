// Package faillog persists structured failure records as an append-only
// JSONL file, one JSON object per line. The file is the durable audit
// trail of every failed dependency call; each record is also mirrored to
// the application log.
package faillog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"call-agent/internal/resilience"
)

// DefaultPath is where failure records land unless FAILLOG_PATH overrides it.
const DefaultPath = "logs/error_recovery.jsonl"

// failureRecordsTotal tracks persisted failure records per service and category
var failureRecordsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "failure_records_total",
		Help: "Total number of failure records written to the failure log",
	},
	[]string{"service", "category"},
)

// entry is the wire form of one failure log line.
type entry struct {
	Timestamp    string `json:"timestamp"`
	Level        string `json:"level"`
	Message      string `json:"message"`
	Service      string `json:"service_name"`
	Category     string `json:"error_category"`
	RetryCount   int    `json:"retry_count"`
	CircuitState string `json:"circuit_state"`
}

// Writer appends failure records to a JSONL file. It is safe for
// concurrent use; writes are serialized under an internal mutex.
type Writer struct {
	path string

	mu   sync.Mutex
	file *os.File
}

var _ resilience.FailureSink = (*Writer)(nil)

// New opens (or creates) the failure log at path, creating parent
// directories as needed. An empty path selects DefaultPath.
func New(path string) (*Writer, error) {
	if path == "" {
		path = DefaultPath
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create failure log directory: %w", err)
		}
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open failure log: %w", err)
	}

	return &Writer{path: path, file: file}, nil
}

// Record appends one failure record and mirrors it to the application log.
// A write error is logged but never surfaced; losing a log line must not
// break the call path that reported the failure.
func (w *Writer) Record(ctx context.Context, rec resilience.FailureRecord) {
	failureRecordsTotal.WithLabelValues(rec.Service, rec.Category).Inc()

	line, err := json.Marshal(entry{
		Timestamp:    time.Now().Format(time.RFC3339Nano),
		Level:        "ERROR",
		Message:      rec.Message,
		Service:      rec.Service,
		Category:     rec.Category,
		RetryCount:   rec.RetryCount,
		CircuitState: rec.CircuitState,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to encode failure record",
			slog.String("service", rec.Service),
			slog.Any("error", err))
		return
	}

	w.mu.Lock()
	_, werr := w.file.Write(append(line, '\n'))
	w.mu.Unlock()
	if werr != nil {
		slog.ErrorContext(ctx, "failed to append failure record",
			slog.String("path", w.path),
			slog.Any("error", werr))
	}

	slog.ErrorContext(ctx, "dependency call failed",
		slog.String("service", rec.Service),
		slog.String("category", rec.Category),
		slog.String("message", rec.Message),
		slog.Int("retry_count", rec.RetryCount),
		slog.String("circuit_state", rec.CircuitState))
}

// Path returns the location of the failure log file.
func (w *Writer) Path() string {
	return w.path
}

// Close flushes and closes the underlying file.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file.Close()
}
