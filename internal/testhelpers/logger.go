package testhelpers

import (
	"alcyxob/hyrox-trainer/internal/logging"
	"io"
	"log/slog"
)

// NewLogger creates a debug-level logger writing to logSink, usually a Writer
// from NewWriter.
func NewLogger(logSink io.Writer) *slog.Logger {
	return slog.New(logging.NewContextHandler(slog.NewTextHandler(logSink, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})))
}
