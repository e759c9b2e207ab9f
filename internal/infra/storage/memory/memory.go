// Package memory provides the in-process checkpoint store used when no
// durable backend is configured.
package memory

import (
	"context"
	"sync"
)

// CheckpointStore keeps the checkpoint in process memory. State is lost on
// restart; the tracker then falls back to the cold-start backfill window.
type CheckpointStore struct {
	mu    sync.Mutex
	value uint64
	set   bool
}

// NewCheckpointStore creates an empty store.
func NewCheckpointStore() *CheckpointStore {
	return &CheckpointStore{}
}

func (s *CheckpointStore) Load(ctx context.Context) (uint64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value, s.set, nil
}

func (s *CheckpointStore) Save(ctx context.Context, block uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value = block
	s.set = true
	return nil
}
