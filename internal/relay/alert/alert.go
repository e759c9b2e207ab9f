// Package alert fans operational alerts out to named channels.
package alert

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Channel delivers one alert message. Implementations must be safe for
// concurrent use.
type Channel interface {
	Send(ctx context.Context, message string) error
}

// Dispatcher routes alerts to registered channels. A failing channel never
// blocks delivery to the others.
type Dispatcher struct {
	mu       sync.RWMutex
	channels map[string]Channel
	names    []string
	log      *slog.Logger
}

// NewDispatcher creates an empty alert dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		channels: make(map[string]Channel),
		log:      slog.Default(),
	}
}

// Register adds a channel under a unique name.
func (d *Dispatcher) Register(name string, ch Channel) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.channels[name]; exists {
		return fmt.Errorf("alert channel %q already registered", name)
	}
	d.channels[name] = ch
	d.names = append(d.names, name)
	d.log.Info("Alert channel registered", "channel", name)
	return nil
}

// Broadcast sends the message to every registered channel, isolating
// per-channel failures.
func (d *Dispatcher) Broadcast(ctx context.Context, message string) {
	d.mu.RLock()
	names := make([]string, len(d.names))
	copy(names, d.names)
	d.mu.RUnlock()

	if len(names) == 0 {
		d.log.Warn("No alert channels registered, alert not sent", "message", message)
		return
	}

	for _, name := range names {
		if err := d.Send(ctx, name, message); err != nil {
			d.log.Error("Failed to send alert", "channel", name, "error", err)
		}
	}
}

// Send delivers the message to one named channel.
func (d *Dispatcher) Send(ctx context.Context, name, message string) error {
	d.mu.RLock()
	ch, ok := d.channels[name]
	d.mu.RUnlock()

	if !ok {
		return fmt.Errorf("alert channel %q not registered", name)
	}
	return ch.Send(ctx, message)
}
