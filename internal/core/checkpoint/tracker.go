package checkpoint

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Sevast-st/bega-mon/internal/core/domain"
)

// Tracker owns the checkpoint. The monitor loop runs one scan cycle at a
// time, so the mutex only matters for implementations that parallelize
// cycles; the single mutation point is Advance.
type Tracker struct {
	mu sync.Mutex

	store          Store
	confirmations  uint64
	backfillWindow uint64

	checkpoint  uint64
	initialized bool

	log *slog.Logger
}

// NewTracker creates a tracker with the given confirmation depth and
// cold-start backfill window.
func NewTracker(store Store, confirmations, backfillWindow uint64) *Tracker {
	return &Tracker{
		store:          store,
		confirmations:  confirmations,
		backfillWindow: backfillWindow,
		log:            slog.Default(),
	}
}

// Init determines the starting checkpoint. A value held by the store wins;
// otherwise the tracker starts backfillWindow blocks behind the current head
// to bound recovery cost after a restart with no persisted state.
func (t *Tracker) Init(ctx context.Context, head uint64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.initialized {
		return nil
	}

	stored, ok, err := t.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load checkpoint: %w", err)
	}
	if ok {
		t.checkpoint = stored
		t.initialized = true
		t.log.Info("Checkpoint restored from store", "block", stored)
		return nil
	}

	start := uint64(0)
	if head > t.backfillWindow {
		start = head - t.backfillWindow
	}
	t.checkpoint = start
	t.initialized = true
	t.log.Info("Checkpoint initialized from backfill window", "block", start, "head", head)

	if err := t.store.Save(ctx, start); err != nil {
		return fmt.Errorf("save initial checkpoint: %w", err)
	}
	return nil
}

// ComputeRange returns the next safe block range to scan, or ok=false when
// no confirmed blocks beyond the checkpoint exist yet. The upper bound is
// head - confirmationDepth so a reorg near the head cannot rewrite a block
// the relay already acted on.
func (t *Tracker) ComputeRange(head uint64) (domain.BlockRange, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.initialized {
		return domain.BlockRange{}, false
	}
	if head <= t.confirmations {
		return domain.BlockRange{}, false
	}

	safe := head - t.confirmations
	if safe <= t.checkpoint {
		return domain.BlockRange{}, false
	}

	return domain.BlockRange{From: t.checkpoint + 1, To: safe}, true
}

// Advance moves the checkpoint to the end of a fully processed range. The
// range must be exactly the one ComputeRange produced: every dispatch in it
// has returned an outcome, delivered or not, before Advance is called.
//
// The in-memory checkpoint is updated before the store write, so a store
// failure never causes a range to be scanned twice within a running process;
// it only widens the restart backfill.
func (t *Tracker) Advance(ctx context.Context, r domain.BlockRange) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.initialized {
		return ErrNotInitialized
	}
	if !r.Valid() || r.From != t.checkpoint+1 {
		return fmt.Errorf("%w: got %s, checkpoint %d", ErrOutOfOrderRange, r, t.checkpoint)
	}

	t.checkpoint = r.To

	if err := t.store.Save(ctx, r.To); err != nil {
		return fmt.Errorf("save checkpoint %d: %w", r.To, err)
	}
	return nil
}

// Checkpoint returns the current checkpoint.
func (t *Tracker) Checkpoint() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.checkpoint
}
