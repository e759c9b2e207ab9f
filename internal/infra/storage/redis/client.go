// Package redis provides a Redis-backed checkpoint store.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultKey = "begamon:checkpoint"

// Config holds Redis connection configuration.
type Config struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
	Key      string `yaml:"key"`
}

// CheckpointStore persists the checkpoint under a single Redis key.
type CheckpointStore struct {
	rdb *redis.Client
	key string
}

// NewCheckpointStore connects to Redis and verifies the connection.
func NewCheckpointStore(cfg Config) (*CheckpointStore, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	key := cfg.Key
	if key == "" {
		key = defaultKey
	}

	return &CheckpointStore{rdb: rdb, key: key}, nil
}

func (s *CheckpointStore) Load(ctx context.Context) (uint64, bool, error) {
	value, err := s.rdb.Get(ctx, s.key).Uint64()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("get checkpoint: %w", err)
	}
	return value, true, nil
}

func (s *CheckpointStore) Save(ctx context.Context, block uint64) error {
	if err := s.rdb.Set(ctx, s.key, block, 0).Err(); err != nil {
		return fmt.Errorf("set checkpoint: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func (s *CheckpointStore) Close() error {
	return s.rdb.Close()
}
