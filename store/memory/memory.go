// Package memory provides an in-process CheckpointStore.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/jemygraw/researchgraph/store"
)

// MemoryCheckpointStore keeps checkpoints in a map guarded by a mutex.
type MemoryCheckpointStore struct {
	mu          sync.RWMutex
	checkpoints map[string]*store.Checkpoint
}

var _ store.CheckpointStore = (*MemoryCheckpointStore)(nil)

// NewMemoryCheckpointStore creates an empty store.
func NewMemoryCheckpointStore() *MemoryCheckpointStore {
	return &MemoryCheckpointStore{
		checkpoints: make(map[string]*store.Checkpoint),
	}
}

// Save stores a copy of the checkpoint
func (m *MemoryCheckpointStore) Save(_ context.Context, checkpoint *store.Checkpoint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *checkpoint
	m.checkpoints[cp.ID] = &cp
	return nil
}

// Load retrieves a checkpoint by ID
func (m *MemoryCheckpointStore) Load(_ context.Context, checkpointID string) (*store.Checkpoint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cp, ok := m.checkpoints[checkpointID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", store.ErrCheckpointNotFound, checkpointID)
	}
	out := *cp
	return &out, nil
}

// List returns all checkpoints of a run ordered by step
func (m *MemoryCheckpointStore) List(_ context.Context, runID string) ([]*store.Checkpoint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*store.Checkpoint
	for _, cp := range m.checkpoints {
		if cp.RunID == runID {
			c := *cp
			out = append(out, &c)
		}
	}
	store.SortByStep(out)
	return out, nil
}

// Delete removes a checkpoint
func (m *MemoryCheckpointStore) Delete(_ context.Context, checkpointID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.checkpoints, checkpointID)
	return nil
}

// Clear removes all checkpoints of a run
func (m *MemoryCheckpointStore) Clear(_ context.Context, runID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, cp := range m.checkpoints {
		if cp.RunID == runID {
			delete(m.checkpoints, id)
		}
	}
	return nil
}
