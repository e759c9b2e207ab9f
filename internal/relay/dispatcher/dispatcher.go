// Package dispatcher delivers decoded lock events to the destination sink
// with bounded retries.
package dispatcher

import (
	"context"
	"log/slog"
	"time"

	"github.com/Sevast-st/bega-mon/internal/core/domain"
	"github.com/Sevast-st/bega-mon/internal/relay/metrics"
	"github.com/Sevast-st/bega-mon/internal/relay/sink"
)

// Config tunes delivery behavior. Retries use a fixed inter-attempt delay;
// the destination's transient failures (network, 5xx) and application-level
// rejections are retried identically.
type Config struct {
	MaxAttempts    int
	RetryDelay     time.Duration
	AttemptTimeout time.Duration
}

// Dispatcher holds no per-event state across calls; its only side effect is
// the remote submission.
type Dispatcher struct {
	sink sink.Sink
	cfg  Config
	log  *slog.Logger
}

// New creates a dispatcher over the given sink.
func New(s sink.Sink, cfg Config) *Dispatcher {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	if cfg.AttemptTimeout <= 0 {
		cfg.AttemptTimeout = 10 * time.Second
	}
	return &Dispatcher{
		sink: s,
		cfg:  cfg,
		log:  slog.Default(),
	}
}

// Deliver submits one event, retrying up to MaxAttempts. The outcome always
// reports the number of attempts made; delivered=false after exhaustion means
// the event is dropped with no further recovery path.
func (d *Dispatcher) Deliver(ctx context.Context, event *domain.LockEvent) domain.DispatchOutcome {
	req := &sink.MintRequest{
		SourceTransactionHash: event.TxHash,
		Recipient:             event.Recipient,
		Token:                 event.Token,
		Amount:                event.Amount.String(),
		DestinationChainID:    event.DestinationChainID,
	}

	outcome := domain.DispatchOutcome{Event: event}

	for attempt := 1; attempt <= d.cfg.MaxAttempts; attempt++ {
		if ctx.Err() != nil {
			break
		}

		outcome.Attempts = attempt
		metrics.DispatchAttempts.Inc()

		attemptCtx, cancel := context.WithTimeout(ctx, d.cfg.AttemptTimeout)
		err := d.sink.Submit(attemptCtx, req)
		cancel()

		if err == nil {
			outcome.Delivered = true
			metrics.DispatchOutcomes.WithLabelValues("delivered").Inc()
			d.log.Info("Dispatched mint request",
				"tx", event.TxHash, "block", event.BlockNumber, "attempts", attempt)
			return outcome
		}

		d.log.Warn("Dispatch attempt failed",
			"tx", event.TxHash, "attempt", attempt, "max", d.cfg.MaxAttempts, "error", err)

		if attempt == d.cfg.MaxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			metrics.DispatchOutcomes.WithLabelValues("canceled").Inc()
			return outcome
		case <-time.After(d.cfg.RetryDelay):
		}
	}

	metrics.DispatchOutcomes.WithLabelValues("dropped").Inc()
	d.log.Error("Dropping event after exhausting dispatch attempts",
		"tx", event.TxHash, "block", event.BlockNumber, "attempts", outcome.Attempts)
	return outcome
}
