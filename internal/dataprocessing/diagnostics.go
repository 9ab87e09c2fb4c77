package dataprocessing

import (
	"context"
	"log/slog"
	"sync"

	"trendpulse/pkg/contracts/domain"
)

// DiagnosticSink receives every file or row that ingestion skips.
type DiagnosticSink interface {
	Skip(ctx context.Context, d domain.Diagnostic)
}

// LogSink logs each diagnostic at WARN and keeps it so the dataset can report
// what was skipped.
type LogSink struct {
	logger *slog.Logger

	mu    sync.Mutex
	items []domain.Diagnostic
}

// NewLogSink creates a sink that writes to logger.
func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{logger: logger}
}

// Skip implements DiagnosticSink.
func (s *LogSink) Skip(ctx context.Context, d domain.Diagnostic) {
	attrs := []any{
		slog.String("category", d.Category.String()),
		slog.String("file", d.File),
		slog.String("reason", d.Reason),
	}
	if d.Row > 0 {
		attrs = append(attrs, slog.Int("row", d.Row))
		s.logger.WarnContext(ctx, "skipping row", attrs...)
	} else {
		s.logger.WarnContext(ctx, "skipping file", attrs...)
	}

	s.mu.Lock()
	s.items = append(s.items, d)
	s.mu.Unlock()
}

// Diagnostics returns a copy of everything recorded so far.
func (s *LogSink) Diagnostics() []domain.Diagnostic {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Diagnostic, len(s.items))
	copy(out, s.items)
	return out
}
