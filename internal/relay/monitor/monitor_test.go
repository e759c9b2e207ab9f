package monitor

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/Sevast-st/bega-mon/internal/core/checkpoint"
	"github.com/Sevast-st/bega-mon/internal/core/domain"
	"github.com/Sevast-st/bega-mon/internal/infra/storage/memory"
)

// =============================================================================
// Fakes
// =============================================================================

type fakeReader struct {
	mu       sync.Mutex
	head     uint64
	headErr  error
	logs     map[uint64][]domain.Log // block -> logs
	logsErr  error
	fetched  []domain.BlockRange
	headHits int
}

func (r *fakeReader) Head(ctx context.Context) (uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.headHits++
	if r.headErr != nil {
		return 0, r.headErr
	}
	return r.head, nil
}

func (r *fakeReader) FilterLogs(ctx context.Context, rng domain.BlockRange, address string, topics []string) ([]domain.Log, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.logsErr != nil {
		return nil, r.logsErr
	}
	r.fetched = append(r.fetched, rng)
	var out []domain.Log
	for b := rng.From; b <= rng.To; b++ {
		out = append(out, r.logs[b]...)
	}
	return out, nil
}

type fakeDecoder struct{}

func (fakeDecoder) Decode(log domain.Log) (*domain.LockEvent, error) {
	if log.Data == "bad" {
		return nil, errors.New("malformed data")
	}
	return &domain.LockEvent{
		TxHash:      log.TxHash,
		LogIndex:    log.LogIndex,
		BlockNumber: log.BlockNumber,
		Amount:      big.NewInt(1),
	}, nil
}

func (fakeDecoder) Topic() string { return "0xtopic" }

type fakeDispatcher struct {
	mu        sync.Mutex
	delivered []string
	fail      bool
}

func (d *fakeDispatcher) Deliver(ctx context.Context, event *domain.LockEvent) domain.DispatchOutcome {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.delivered = append(d.delivered, event.ID())
	return domain.DispatchOutcome{Event: event, Delivered: !d.fail, Attempts: 1}
}

func newMonitor(reader *fakeReader, disp *fakeDispatcher, confirmations, backfill uint64) (*Monitor, *checkpoint.Tracker) {
	tracker := checkpoint.NewTracker(memory.NewCheckpointStore(), confirmations, backfill)
	m := New(Config{
		Contract:     "0xbridge",
		Reader:       reader,
		Decoder:      fakeDecoder{},
		Dispatcher:   disp,
		Tracker:      tracker,
		PollInterval: time.Hour,
	})
	return m, tracker
}

// =============================================================================
// Cycle behavior
// =============================================================================

func TestCycleAdvancesThroughContiguousRanges(t *testing.T) {
	ctx := context.Background()
	reader := &fakeReader{head: 120, logs: map[uint64][]domain.Log{}}
	disp := &fakeDispatcher{}
	m, tracker := newMonitor(reader, disp, 6, 110)

	if err := m.initCheckpoint(ctx); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	if cp := tracker.Checkpoint(); cp != 10 {
		t.Fatalf("initial checkpoint = %d, want 10", cp)
	}

	heads := []uint64{120, 150, 151, 151, 210}
	for _, h := range heads {
		reader.mu.Lock()
		reader.head = h
		reader.mu.Unlock()
		if err := m.runCycle(ctx); err != nil {
			t.Fatalf("cycle at head %d failed: %v", h, err)
		}
	}

	// Ranges must be contiguous and non-overlapping: 11-114, 115-144, 145, 205-...
	var prev uint64 = 10
	for _, rng := range reader.fetched {
		if rng.From != prev+1 {
			t.Errorf("range %s not contiguous after checkpoint %d", rng, prev)
		}
		prev = rng.To
	}
	if tracker.Checkpoint() != 204 {
		t.Errorf("final checkpoint = %d, want 204", tracker.Checkpoint())
	}
}

func TestCycleNoOpWhenUnconfirmed(t *testing.T) {
	ctx := context.Background()
	reader := &fakeReader{head: 120}
	disp := &fakeDispatcher{}
	m, tracker := newMonitor(reader, disp, 6, 110)
	if err := m.initCheckpoint(ctx); err != nil {
		t.Fatal(err)
	}

	// head=14, depth=6: safe bound 8 <= checkpoint 10, so nothing happens.
	reader.head = 14
	if err := m.runCycle(ctx); err != nil {
		t.Fatalf("cycle failed: %v", err)
	}
	if len(reader.fetched) != 0 {
		t.Errorf("logs fetched for unconfirmed head: %v", reader.fetched)
	}
	if tracker.Checkpoint() != 10 {
		t.Errorf("checkpoint = %d, want unchanged 10", tracker.Checkpoint())
	}
}

func TestCycleWithholdsAdvanceOnFetchFailure(t *testing.T) {
	ctx := context.Background()
	reader := &fakeReader{head: 120}
	disp := &fakeDispatcher{}
	m, tracker := newMonitor(reader, disp, 6, 110)
	if err := m.initCheckpoint(ctx); err != nil {
		t.Fatal(err)
	}

	reader.logsErr = errors.New("provider unreachable")
	if err := m.runCycle(ctx); err == nil {
		t.Fatal("cycle should fail when log fetch fails")
	}
	if tracker.Checkpoint() != 10 {
		t.Errorf("checkpoint advanced to %d past an unfetched range", tracker.Checkpoint())
	}

	// Once the provider recovers, the same range is scanned.
	reader.logsErr = nil
	if err := m.runCycle(ctx); err != nil {
		t.Fatalf("recovery cycle failed: %v", err)
	}
	if len(reader.fetched) != 1 || reader.fetched[0].From != 11 {
		t.Errorf("recovered fetch = %v, want retry from block 11", reader.fetched)
	}
	if tracker.Checkpoint() != 114 {
		t.Errorf("checkpoint = %d, want 114", tracker.Checkpoint())
	}
}

func TestCycleSkipsOnHeadFailure(t *testing.T) {
	ctx := context.Background()
	reader := &fakeReader{head: 120}
	disp := &fakeDispatcher{}
	m, tracker := newMonitor(reader, disp, 6, 110)
	if err := m.initCheckpoint(ctx); err != nil {
		t.Fatal(err)
	}

	reader.headErr = errors.New("connection refused")
	if err := m.runCycle(ctx); err == nil {
		t.Fatal("cycle should fail when head read fails")
	}
	if tracker.Checkpoint() != 10 {
		t.Errorf("checkpoint = %d, want unchanged", tracker.Checkpoint())
	}
}

func TestCycleAdvancesDespiteDroppedEvents(t *testing.T) {
	ctx := context.Background()
	reader := &fakeReader{
		head: 120,
		logs: map[uint64][]domain.Log{
			50: {{TxHash: "0x1", LogIndex: 0, BlockNumber: 50}},
			60: {{TxHash: "0x2", LogIndex: 0, BlockNumber: 60}},
		},
	}
	disp := &fakeDispatcher{fail: true}
	m, tracker := newMonitor(reader, disp, 6, 110)
	if err := m.initCheckpoint(ctx); err != nil {
		t.Fatal(err)
	}

	if err := m.runCycle(ctx); err != nil {
		t.Fatalf("cycle failed: %v", err)
	}

	// Every event got a dispatch outcome, and the range completed regardless.
	if len(disp.delivered) != 2 {
		t.Errorf("dispatched %d events, want 2", len(disp.delivered))
	}
	if tracker.Checkpoint() != 114 {
		t.Errorf("checkpoint = %d, want 114 (advance after all outcomes)", tracker.Checkpoint())
	}
}

func TestCycleDropsUndecodableLogsOnly(t *testing.T) {
	ctx := context.Background()
	reader := &fakeReader{
		head: 120,
		logs: map[uint64][]domain.Log{
			50: {
				{TxHash: "0x1", LogIndex: 0, BlockNumber: 50, Data: "bad"},
				{TxHash: "0x1", LogIndex: 1, BlockNumber: 50},
			},
		},
	}
	disp := &fakeDispatcher{}
	m, _ := newMonitor(reader, disp, 6, 110)
	if err := m.initCheckpoint(ctx); err != nil {
		t.Fatal(err)
	}
	if err := m.runCycle(ctx); err != nil {
		t.Fatalf("cycle failed: %v", err)
	}

	if len(disp.delivered) != 1 || disp.delivered[0] != "0x1:1" {
		t.Errorf("delivered = %v, want only the decodable sibling", disp.delivered)
	}
}

func TestParallelDispatchWaitsForAllOutcomes(t *testing.T) {
	ctx := context.Background()
	logs := map[uint64][]domain.Log{}
	for b := uint64(20); b < 40; b++ {
		logs[b] = []domain.Log{{TxHash: fmt.Sprintf("0x%d", b), LogIndex: 0, BlockNumber: b}}
	}
	reader := &fakeReader{head: 120, logs: logs}
	disp := &fakeDispatcher{}

	tracker := checkpoint.NewTracker(memory.NewCheckpointStore(), 6, 110)
	m := New(Config{
		Contract:            "0xbridge",
		Reader:              reader,
		Decoder:             fakeDecoder{},
		Dispatcher:          disp,
		Tracker:             tracker,
		PollInterval:        time.Hour,
		DispatchParallelism: 4,
	})
	if err := m.initCheckpoint(ctx); err != nil {
		t.Fatal(err)
	}

	if err := m.runCycle(ctx); err != nil {
		t.Fatalf("cycle failed: %v", err)
	}
	if len(disp.delivered) != 20 {
		t.Errorf("delivered %d events, want all 20 before advance", len(disp.delivered))
	}
	if tracker.Checkpoint() != 114 {
		t.Errorf("checkpoint = %d, want 114", tracker.Checkpoint())
	}
}

func TestStartStop(t *testing.T) {
	reader := &fakeReader{head: 120}
	disp := &fakeDispatcher{}
	tracker := checkpoint.NewTracker(memory.NewCheckpointStore(), 6, 110)
	m := New(Config{
		Contract:     "0xbridge",
		Reader:       reader,
		Decoder:      fakeDecoder{},
		Dispatcher:   disp,
		Tracker:      tracker,
		PollInterval: 5 * time.Millisecond,
	})

	done := make(chan error, 1)
	go func() { done <- m.Start(context.Background()) }()

	time.Sleep(30 * time.Millisecond)
	m.Stop()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Start returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("monitor did not stop")
	}

	reader.mu.Lock()
	hits := reader.headHits
	reader.mu.Unlock()
	if hits < 2 {
		t.Errorf("head read %d times, expected ticker-driven cycles", hits)
	}
}
