package chain

import (
	"context"

	"github.com/Sevast-st/bega-mon/internal/core/domain"
)

// HeadReader defines the source-chain query boundary consumed by the monitor
// loop. Implementations handle transport retry internally; the monitor only
// sees a bounded success-or-error result.
type HeadReader interface {
	// Head returns the current chain height. Transient transport failures are
	// retried up to the configured attempt cap; exhaustion surfaces as an
	// error and skips the cycle.
	Head(ctx context.Context) (uint64, error)

	// FilterLogs returns the raw log entries emitted by address within the
	// inclusive range, filtered by topics. Exhaustion of the retry budget
	// surfaces as an error so the caller can withhold the checkpoint advance
	// rather than silently treating the range as empty.
	FilterLogs(ctx context.Context, r domain.BlockRange, address string, topics []string) ([]domain.Log, error)
}
