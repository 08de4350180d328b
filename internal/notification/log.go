package notification

import (
	"context"
	"log/slog"
)

// LogTransport writes messages to the logger instead of sending them. Used
// for local development.
type LogTransport struct {
	logger *slog.Logger
}

// NewLogTransport creates a new log transport.
func NewLogTransport(logger *slog.Logger) *LogTransport {
	return &LogTransport{logger: logger}
}

// Deliver logs msg.
func (t *LogTransport) Deliver(_ context.Context, msg Message) error {
	t.logger.Info("email", "to", msg.To, "subject", msg.Subject, "body", msg.Text)
	return nil
}
