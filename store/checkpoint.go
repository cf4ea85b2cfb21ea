// Package store defines run snapshots and the backends that persist them.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"time"
)

// ErrCheckpointNotFound is returned by Load when no checkpoint has the given ID.
var ErrCheckpointNotFound = errors.New("checkpoint not found")

// Checkpoint is a snapshot of a run's state taken after one node completed.
type Checkpoint struct {
	ID        string          `json:"id"`
	RunID     string          `json:"run_id"`
	Step      int             `json:"step"`
	Node      string          `json:"node"`
	State     json.RawMessage `json:"state"`
	Metadata  map[string]any  `json:"metadata,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// CheckpointStore defines the interface for checkpoint persistence
type CheckpointStore interface {
	// Save stores a checkpoint, replacing one with the same ID
	Save(ctx context.Context, checkpoint *Checkpoint) error

	// Load retrieves a checkpoint by ID
	Load(ctx context.Context, checkpointID string) (*Checkpoint, error)

	// List returns all checkpoints of a run ordered by step
	List(ctx context.Context, runID string) ([]*Checkpoint, error)

	// Delete removes a checkpoint
	Delete(ctx context.Context, checkpointID string) error

	// Clear removes all checkpoints of a run
	Clear(ctx context.Context, runID string) error
}

// SortByStep orders checkpoints by step, then by timestamp.
func SortByStep(cps []*Checkpoint) {
	sort.SliceStable(cps, func(i, j int) bool {
		if cps[i].Step != cps[j].Step {
			return cps[i].Step < cps[j].Step
		}
		return cps[i].Timestamp.Before(cps[j].Timestamp)
	})
}
