package checkpoint

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/Sevast-st/bega-mon/internal/core/domain"
)

// =============================================================================
// Mock Store
// =============================================================================

type mockStore struct {
	mu      sync.Mutex
	value   uint64
	ok      bool
	saveErr error
	saves   int
}

func (s *mockStore) Load(ctx context.Context) (uint64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value, s.ok, nil
}

func (s *mockStore) Save(ctx context.Context, block uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.value = block
	s.ok = true
	s.saves++
	return nil
}

// =============================================================================
// Cold start
// =============================================================================

func TestInitColdStart(t *testing.T) {
	ctx := context.Background()
	tr := NewTracker(&mockStore{}, 6, 100)

	if err := tr.Init(ctx, 500); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if got := tr.Checkpoint(); got != 400 {
		t.Errorf("cold start checkpoint = %d, want 400", got)
	}
}

func TestInitColdStartNearGenesis(t *testing.T) {
	ctx := context.Background()
	tr := NewTracker(&mockStore{}, 6, 100)

	if err := tr.Init(ctx, 40); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if got := tr.Checkpoint(); got != 0 {
		t.Errorf("checkpoint = %d, want 0 when head < backfill window", got)
	}
}

func TestInitFromStore(t *testing.T) {
	ctx := context.Background()
	store := &mockStore{value: 1234, ok: true}
	tr := NewTracker(store, 6, 100)

	if err := tr.Init(ctx, 5000); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if got := tr.Checkpoint(); got != 1234 {
		t.Errorf("checkpoint = %d, want stored value 1234", got)
	}
}

// =============================================================================
// Range computation
// =============================================================================

func TestComputeRange(t *testing.T) {
	tests := []struct {
		name          string
		head          uint64
		confirmations uint64
		checkpoint    uint64
		want          domain.BlockRange
		wantOK        bool
	}{
		{"spec scenario", 120, 6, 10, domain.BlockRange{From: 11, To: 114}, true},
		{"nothing confirmed yet", 14, 6, 10, domain.BlockRange{}, false},
		{"safe bound equals checkpoint", 116, 6, 110, domain.BlockRange{}, false},
		{"one new block", 117, 6, 110, domain.BlockRange{From: 111, To: 111}, true},
		{"head below confirmation depth", 5, 6, 0, domain.BlockRange{}, false},
		{"head equals confirmation depth", 6, 6, 0, domain.BlockRange{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &mockStore{value: tt.checkpoint, ok: true}
			tr := NewTracker(store, tt.confirmations, 100)
			if err := tr.Init(context.Background(), tt.head); err != nil {
				t.Fatalf("Init failed: %v", err)
			}

			got, ok := tr.ComputeRange(tt.head)
			if ok != tt.wantOK {
				t.Fatalf("ComputeRange ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("ComputeRange = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestComputeRangeRespectsConfirmationDepth(t *testing.T) {
	store := &mockStore{value: 0, ok: true}
	tr := NewTracker(store, 12, 100)
	if err := tr.Init(context.Background(), 1000); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	for head := uint64(13); head < 100; head += 7 {
		rng, ok := tr.ComputeRange(head)
		if !ok {
			continue
		}
		if rng.To > head-12 {
			t.Fatalf("range %s exceeds safe bound %d at head %d", rng, head-12, head)
		}
	}
}

func TestComputeRangeBeforeInit(t *testing.T) {
	tr := NewTracker(&mockStore{}, 6, 100)
	if _, ok := tr.ComputeRange(100); ok {
		t.Error("ComputeRange should return no range before Init")
	}
}

// =============================================================================
// Advance
// =============================================================================

func TestAdvanceContiguousRanges(t *testing.T) {
	ctx := context.Background()
	store := &mockStore{value: 10, ok: true}
	tr := NewTracker(store, 6, 100)
	if err := tr.Init(ctx, 120); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	heads := []uint64{120, 150, 150, 200}
	var prev uint64 = 10
	for _, head := range heads {
		rng, ok := tr.ComputeRange(head)
		if !ok {
			continue
		}
		if rng.From != prev+1 {
			t.Fatalf("range %s not contiguous with previous checkpoint %d", rng, prev)
		}
		if err := tr.Advance(ctx, rng); err != nil {
			t.Fatalf("Advance(%s) failed: %v", rng, err)
		}
		if tr.Checkpoint() < prev {
			t.Fatalf("checkpoint moved backwards: %d -> %d", prev, tr.Checkpoint())
		}
		if tr.Checkpoint() != rng.To {
			t.Fatalf("checkpoint = %d, want range end %d", tr.Checkpoint(), rng.To)
		}
		prev = rng.To
	}

	if store.value != prev {
		t.Errorf("store holds %d, want %d", store.value, prev)
	}
}

func TestAdvanceOutOfOrder(t *testing.T) {
	ctx := context.Background()
	store := &mockStore{value: 10, ok: true}
	tr := NewTracker(store, 6, 100)
	if err := tr.Init(ctx, 120); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	tests := []struct {
		name string
		rng  domain.BlockRange
	}{
		{"gap after checkpoint", domain.BlockRange{From: 13, To: 20}},
		{"overlaps checkpoint", domain.BlockRange{From: 10, To: 20}},
		{"inverted range", domain.BlockRange{From: 20, To: 11}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tr.Advance(ctx, tt.rng)
			if !errors.Is(err, ErrOutOfOrderRange) {
				t.Errorf("Advance(%s) = %v, want ErrOutOfOrderRange", tt.rng, err)
			}
			if tr.Checkpoint() != 10 {
				t.Errorf("checkpoint moved to %d on rejected range", tr.Checkpoint())
			}
		})
	}
}

func TestAdvanceBeforeInit(t *testing.T) {
	tr := NewTracker(&mockStore{}, 6, 100)
	err := tr.Advance(context.Background(), domain.BlockRange{From: 1, To: 2})
	if !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Advance before Init = %v, want ErrNotInitialized", err)
	}
}

func TestAdvanceKeepsMemoryOnStoreFailure(t *testing.T) {
	ctx := context.Background()
	store := &mockStore{value: 10, ok: true}
	tr := NewTracker(store, 6, 100)
	if err := tr.Init(ctx, 120); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	store.saveErr = errors.New("store down")
	err := tr.Advance(ctx, domain.BlockRange{From: 11, To: 114})
	if err == nil {
		t.Fatal("Advance should surface store failure")
	}
	// The in-process checkpoint still advances: the range was fully processed.
	if tr.Checkpoint() != 114 {
		t.Errorf("checkpoint = %d, want 114 despite store failure", tr.Checkpoint())
	}
}
