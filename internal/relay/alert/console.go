package alert

import (
	"context"
	"log/slog"
)

// ConsoleChannel writes alerts to the process log.
type ConsoleChannel struct {
	log *slog.Logger
}

// NewConsoleChannel creates a console channel backed by the default logger.
func NewConsoleChannel() *ConsoleChannel {
	return &ConsoleChannel{log: slog.Default()}
}

func (c *ConsoleChannel) Send(ctx context.Context, message string) error {
	c.log.Warn("ALERT", "message", message)
	return nil
}
