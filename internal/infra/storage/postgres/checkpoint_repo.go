package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// The relay tracks a single source chain; the name column allows several
// relays to share a table.
const defaultName = "begamon"

// CheckpointStore implements checkpoint.Store on the checkpoints table.
type CheckpointStore struct {
	db   *DB
	name string
}

// NewCheckpointStore creates a store scoped to the given relay name. An empty
// name uses the default.
func NewCheckpointStore(db *DB, name string) *CheckpointStore {
	if name == "" {
		name = defaultName
	}
	return &CheckpointStore{db: db, name: name}
}

func (s *CheckpointStore) Load(ctx context.Context) (uint64, bool, error) {
	var block int64
	err := s.db.GetContext(ctx, &block,
		`SELECT block_number FROM checkpoints WHERE name = $1`, s.name)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("load checkpoint: %w", err)
	}
	return uint64(block), true, nil
}

func (s *CheckpointStore) Save(ctx context.Context, block uint64) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO checkpoints (name, block_number, updated_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (name) DO UPDATE
		 SET block_number = EXCLUDED.block_number, updated_at = EXCLUDED.updated_at`,
		s.name, int64(block), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("save checkpoint: %w", err)
	}
	return nil
}
