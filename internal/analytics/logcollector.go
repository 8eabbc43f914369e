package analytics

import (
	"context"
	"log/slog"

	"github.com/prodyssey/vibe-cto-dot-ai-sub000/pkg/domain"
)

// LogCollector writes every event to a structured logger. The default sink
// for hosts without a real analytics backend.
type LogCollector struct {
	logger *slog.Logger
}

// NewLogCollector creates a collector logging at Info level.
func NewLogCollector(logger *slog.Logger) *LogCollector {
	return &LogCollector{logger: logger}
}

// Collect implements ports.Collector.
func (c *LogCollector) Collect(_ context.Context, event domain.Event) error {
	c.logger.Info("funnel event",
		"eventType", event.Type,
		"sessionId", event.SessionID,
		"data", event.Data,
	)
	return nil
}
