// Package monitor drives the scan cycle: head read, range compute, log
// fetch, decode, dispatch, checkpoint advance.
package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Sevast-st/bega-mon/internal/core/checkpoint"
	"github.com/Sevast-st/bega-mon/internal/core/domain"
	"github.com/Sevast-st/bega-mon/internal/infra/chain"
	"github.com/Sevast-st/bega-mon/internal/relay/alert"
	"github.com/Sevast-st/bega-mon/internal/relay/metrics"
)

// Decoder maps one raw log to one lock event.
type Decoder interface {
	Decode(log domain.Log) (*domain.LockEvent, error)
}

// Dispatcher delivers one event and always returns an outcome.
type Dispatcher interface {
	Deliver(ctx context.Context, event *domain.LockEvent) domain.DispatchOutcome
}

// CycleObserver is notified after every scan cycle, for health reporting.
type CycleObserver interface {
	RecordCycle(head, checkpoint uint64, err error)
}

// Config wires the monitor's collaborators together.
type Config struct {
	Contract     string
	Reader       chain.HeadReader
	Decoder      Decoder
	Dispatcher   Dispatcher
	Tracker      *checkpoint.Tracker
	Alerts       *alert.Dispatcher
	Observer     CycleObserver
	PollInterval time.Duration

	// DispatchParallelism bounds concurrent deliveries within one range.
	// 1 preserves strict per-range ordering.
	DispatchParallelism int
}

// Monitor runs the relay loop. One scan cycle at a time: the next cycle
// never starts before the current one finishes, so the checkpoint needs no
// cross-cycle coordination.
type Monitor struct {
	cfg     Config
	topics  []string
	running atomic.Bool
	stop    chan struct{}
	log     *slog.Logger
}

// New creates a monitor. The decoder's accepted topic becomes the log filter.
func New(cfg Config) *Monitor {
	if cfg.DispatchParallelism <= 0 {
		cfg.DispatchParallelism = 1
	}

	var topics []string
	if t, ok := cfg.Decoder.(interface{ Topic() string }); ok {
		topics = []string{t.Topic()}
	}

	return &Monitor{
		cfg:    cfg,
		topics: topics,
		stop:   make(chan struct{}),
		log:    slog.Default(),
	}
}

// Start begins the relay loop and blocks until the context is canceled or
// Stop is called. A cycle-level error is logged and the loop continues; only
// cancellation stops it.
func (m *Monitor) Start(ctx context.Context) error {
	if !m.running.CompareAndSwap(false, true) {
		return fmt.Errorf("monitor already running")
	}
	defer m.running.Store(false)

	if err := m.initCheckpoint(ctx); err != nil {
		return err
	}

	m.log.Info("Starting bridge event monitoring loop",
		"contract", m.cfg.Contract, "interval", m.cfg.PollInterval)

	ticker := time.NewTicker(m.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-m.stop:
			return nil
		case <-ticker.C:
			if err := m.runCycle(ctx); err != nil {
				metrics.CycleErrors.Inc()
				m.log.Error("Scan cycle failed", "error", err)
			}
		}
	}
}

// Stop halts scheduling between cycles. A cycle already in flight finishes
// its advance before the loop exits.
func (m *Monitor) Stop() {
	if m.running.Load() {
		close(m.stop)
	}
}

func (m *Monitor) initCheckpoint(ctx context.Context) error {
	head, err := m.cfg.Reader.Head(ctx)
	if err != nil {
		return fmt.Errorf("determine starting block: %w", err)
	}
	return m.cfg.Tracker.Init(ctx, head)
}

// runCycle executes one full scan cycle. The checkpoint advances only when
// every dispatch in the range has returned an outcome; a failed log fetch
// withholds the advance so the range is retried next cycle.
func (m *Monitor) runCycle(ctx context.Context) (err error) {
	var head uint64
	defer func() {
		if m.cfg.Observer != nil {
			m.cfg.Observer.RecordCycle(head, m.cfg.Tracker.Checkpoint(), err)
		}
	}()

	head, err = m.cfg.Reader.Head(ctx)
	if err != nil {
		m.alert(ctx, fmt.Sprintf("source chain head unavailable: %v", err))
		return fmt.Errorf("read head: %w", err)
	}
	metrics.ChainHeadBlock.Set(float64(head))

	rng, ok := m.cfg.Tracker.ComputeRange(head)
	if !ok {
		m.log.Debug("No new confirmed blocks to process",
			"head", head, "checkpoint", m.cfg.Tracker.Checkpoint())
		return nil
	}

	logs, err := m.cfg.Reader.FilterLogs(ctx, rng, m.cfg.Contract, m.topics)
	if err != nil {
		// Withhold the advance: the range is rescanned next cycle instead of
		// being silently marked as exhausted.
		return fmt.Errorf("fetch logs %s: %w", rng, err)
	}

	events := m.decodeAll(logs)
	outcomes := m.dispatchAll(ctx, events)

	delivered, dropped := 0, 0
	for _, o := range outcomes {
		if o.Delivered {
			delivered++
		} else {
			dropped++
		}
	}

	if err := m.cfg.Tracker.Advance(ctx, rng); err != nil {
		return fmt.Errorf("advance checkpoint: %w", err)
	}
	metrics.CheckpointBlock.Set(float64(rng.To))
	metrics.BlocksScanned.Add(float64(rng.Len()))

	m.log.Info("Scan cycle complete",
		"range", rng.String(), "head", head, "logs", len(logs),
		"events", len(events), "delivered", delivered, "dropped", dropped)

	if dropped > 0 {
		m.alert(ctx, fmt.Sprintf("dropped %d event(s) in range %s after exhausting dispatch attempts", dropped, rng))
	}
	return nil
}

func (m *Monitor) decodeAll(logs []domain.Log) []*domain.LockEvent {
	events := make([]*domain.LockEvent, 0, len(logs))
	for _, log := range logs {
		event, err := m.cfg.Decoder.Decode(log)
		if err != nil {
			metrics.DecodeFailures.Inc()
			m.log.Warn("Failed to decode log, dropping entry",
				"tx", log.TxHash, "logIndex", log.LogIndex, "error", err)
			continue
		}
		metrics.EventsDecoded.Inc()
		events = append(events, event)
	}
	return events
}

// dispatchAll delivers every event and waits for all outcomes. Partial
// completion is never observable: the caller advances the checkpoint only
// after this returns.
func (m *Monitor) dispatchAll(ctx context.Context, events []*domain.LockEvent) []domain.DispatchOutcome {
	if len(events) == 0 {
		return nil
	}

	outcomes := make([]domain.DispatchOutcome, len(events))
	if m.cfg.DispatchParallelism == 1 {
		for i, event := range events {
			outcomes[i] = m.cfg.Dispatcher.Deliver(ctx, event)
		}
		return outcomes
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.cfg.DispatchParallelism)
	for i, event := range events {
		g.Go(func() error {
			outcomes[i] = m.cfg.Dispatcher.Deliver(gctx, event)
			return nil
		})
	}
	g.Wait()
	return outcomes
}

func (m *Monitor) alert(ctx context.Context, message string) {
	if m.cfg.Alerts != nil {
		m.cfg.Alerts.Broadcast(ctx, message)
	}
}
