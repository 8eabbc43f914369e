// Package logging builds the application loggers. Logs go to stderr so
// stdout stays free for playthrough output and JSON-RPC framing.
package logging

import (
	"io"
	"log/slog"
	"os"
)

// renameError standardizes the 'error' key to 'err'.
func renameError(groups []string, a slog.Attr) slog.Attr {
	if a.Key == "error" {
		a.Key = "err"
	}
	return a
}

// New creates a text logger at the given level.
func New(level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: renameError,
	}))
}

// NewJSON creates a JSON logger at the given level, for hosted deployments
// where a collector parses the stream.
func NewJSON(level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: renameError,
	}))
}

// NewNop returns a no-op logger.
func NewNop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
