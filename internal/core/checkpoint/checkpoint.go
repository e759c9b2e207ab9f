// Package checkpoint tracks how far the relay has scanned the source chain.
//
// # Purpose
//
// The checkpoint is a single block number: the highest block whose range has
// completed a scan cycle. It acts as a "bookmark" for the monitor loop:
//   - ComputeRange: which blocks are safe to read next (head minus confirmation depth)
//   - Advance: move the bookmark only after every event in the range has a
//     dispatch outcome
//
// # Key Guarantees
//
// Monotonic - the checkpoint never moves backwards.
//
// Contiguous - Advance only accepts the exact range ComputeRange produced,
// so no block is skipped and no block is scanned twice. An out-of-order
// range returns ErrOutOfOrderRange.
//
// Reorg Safety - ComputeRange withholds the newest confirmationDepth blocks
// from the scan frontier, so a short reorg near the head never rewrites a
// block the relay already acted on.
//
// # Quick Start
//
//	tracker := checkpoint.NewTracker(store, 6, 100)
//	tracker.Init(ctx, head)              // cold start: head-100, or the stored value
//
//	rng, ok := tracker.ComputeRange(head)
//	if ok {
//	    // ... fetch, decode, dispatch [rng.From, rng.To] ...
//	    tracker.Advance(ctx, rng)
//	}
package checkpoint

import (
	"context"
	"errors"
)

var (
	// ErrNotInitialized is returned when ComputeRange or Advance is called
	// before Init.
	ErrNotInitialized = errors.New("checkpoint: tracker not initialized")

	// ErrOutOfOrderRange is returned when Advance is called with a range
	// that is not contiguous with the current checkpoint.
	ErrOutOfOrderRange = errors.New("checkpoint: range out of order")
)

// Store persists the checkpoint across restarts. Implementations live in
// internal/infra/storage; the in-memory store keeps the relay dependency-free
// when durability is not configured.
type Store interface {
	// Load returns the stored checkpoint. ok is false when nothing has been
	// stored yet.
	Load(ctx context.Context) (block uint64, ok bool, err error)

	// Save records the checkpoint.
	Save(ctx context.Context, block uint64) error
}
