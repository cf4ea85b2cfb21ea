// Package redis persists run snapshots in Redis. Each checkpoint is stored
// as a JSON value and indexed per run in a sorted set scored by step.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jemygraw/researchgraph/store"
)

// RedisCheckpointStore implements store.CheckpointStore using Redis
type RedisCheckpointStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

var _ store.CheckpointStore = (*RedisCheckpointStore)(nil)

// RedisOptions configuration for Redis connection
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Prefix   string        // Key prefix, default "research:"
	TTL      time.Duration // Expiration for checkpoints, default 0 (no expiration)
}

// NewRedisCheckpointStore creates a new Redis checkpoint store
func NewRedisCheckpointStore(opts RedisOptions) *RedisCheckpointStore {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	prefix := opts.Prefix
	if prefix == "" {
		prefix = "research:"
	}

	return &RedisCheckpointStore{
		client: client,
		prefix: prefix,
		ttl:    opts.TTL,
	}
}

// Close closes the underlying client
func (s *RedisCheckpointStore) Close() error {
	return s.client.Close()
}

func (s *RedisCheckpointStore) checkpointKey(id string) string {
	return fmt.Sprintf("%scheckpoint:%s", s.prefix, id)
}

func (s *RedisCheckpointStore) runKey(runID string) string {
	return fmt.Sprintf("%srun:%s:checkpoints", s.prefix, runID)
}

// Save stores a checkpoint and indexes it under its run
func (s *RedisCheckpointStore) Save(ctx context.Context, checkpoint *store.Checkpoint) error {
	data, err := json.Marshal(checkpoint)
	if err != nil {
		return fmt.Errorf("failed to marshal checkpoint: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.checkpointKey(checkpoint.ID), data, s.ttl)
	if checkpoint.RunID != "" {
		runKey := s.runKey(checkpoint.RunID)
		pipe.ZAdd(ctx, runKey, redis.Z{Score: float64(checkpoint.Step), Member: checkpoint.ID})
		if s.ttl > 0 {
			pipe.Expire(ctx, runKey, s.ttl)
		}
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save checkpoint to redis: %w", err)
	}
	return nil
}

// Load retrieves a checkpoint by ID
func (s *RedisCheckpointStore) Load(ctx context.Context, checkpointID string) (*store.Checkpoint, error) {
	data, err := s.client.Get(ctx, s.checkpointKey(checkpointID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: %s", store.ErrCheckpointNotFound, checkpointID)
		}
		return nil, fmt.Errorf("failed to load checkpoint from redis: %w", err)
	}

	var checkpoint store.Checkpoint
	if err := json.Unmarshal(data, &checkpoint); err != nil {
		return nil, fmt.Errorf("failed to unmarshal checkpoint: %w", err)
	}
	return &checkpoint, nil
}

// List returns all checkpoints of a run ordered by step. Index entries whose
// checkpoint expired are skipped.
func (s *RedisCheckpointStore) List(ctx context.Context, runID string) ([]*store.Checkpoint, error) {
	ids, err := s.client.ZRange(ctx, s.runKey(runID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list checkpoints for run %s: %w", runID, err)
	}
	if len(ids) == 0 {
		return []*store.Checkpoint{}, nil
	}

	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, s.checkpointKey(id))
	}

	results, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch checkpoints: %w", err)
	}

	checkpoints := make([]*store.Checkpoint, 0, len(results))
	for _, result := range results {
		raw, ok := result.(string)
		if !ok {
			continue
		}
		var checkpoint store.Checkpoint
		if err := json.Unmarshal([]byte(raw), &checkpoint); err != nil {
			return nil, fmt.Errorf("failed to unmarshal checkpoint: %w", err)
		}
		checkpoints = append(checkpoints, &checkpoint)
	}
	store.SortByStep(checkpoints)
	return checkpoints, nil
}

// Delete removes a checkpoint and its index entry
func (s *RedisCheckpointStore) Delete(ctx context.Context, checkpointID string) error {
	cp, err := s.Load(ctx, checkpointID)
	if err != nil {
		if errors.Is(err, store.ErrCheckpointNotFound) {
			return nil
		}
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.checkpointKey(checkpointID))
	if cp.RunID != "" {
		pipe.ZRem(ctx, s.runKey(cp.RunID), checkpointID)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete checkpoint: %w", err)
	}
	return nil
}

// Clear removes all checkpoints of a run
func (s *RedisCheckpointStore) Clear(ctx context.Context, runID string) error {
	runKey := s.runKey(runID)
	ids, err := s.client.ZRange(ctx, runKey, 0, -1).Result()
	if err != nil {
		return fmt.Errorf("failed to list checkpoints for run %s: %w", runID, err)
	}

	pipe := s.client.TxPipeline()
	for _, id := range ids {
		pipe.Del(ctx, s.checkpointKey(id))
	}
	pipe.Del(ctx, runKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to clear checkpoints: %w", err)
	}
	return nil
}
