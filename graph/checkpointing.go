package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jemygraw/researchgraph/log"
	"github.com/jemygraw/researchgraph/store"
)

// CheckpointListener snapshots the state into a CheckpointStore after every
// completed node. Snapshots form an ordered trail for one run; a failed save
// is logged and does not interrupt the run.
type CheckpointListener[S any] struct {
	store  store.CheckpointStore
	runID  string
	logger log.Logger

	mu      sync.Mutex
	step    int
	lastErr error
}

var _ NodeListener[struct{}] = (*CheckpointListener[struct{}])(nil)

// NewCheckpointListener creates a listener writing to st under runID.
// An empty runID is replaced by a fresh UUID.
func NewCheckpointListener[S any](st store.CheckpointStore, runID string, logger log.Logger) *CheckpointListener[S] {
	if runID == "" {
		runID = uuid.NewString()
	}
	return &CheckpointListener[S]{
		store:  st,
		runID:  runID,
		logger: log.OrDefault(logger),
	}
}

// RunID returns the run identifier the snapshots are tagged with.
func (cl *CheckpointListener[S]) RunID() string {
	return cl.runID
}

// LastError returns the most recent save failure, if any.
func (cl *CheckpointListener[S]) LastError() error {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	return cl.lastErr
}

// OnNodeEvent implements NodeListener.
func (cl *CheckpointListener[S]) OnNodeEvent(ctx context.Context, event NodeEvent, nodeName string, state S, _ error) {
	if event != NodeEventComplete {
		return
	}
	if err := cl.save(ctx, nodeName, state); err != nil {
		cl.mu.Lock()
		cl.lastErr = err
		cl.mu.Unlock()
		cl.logger.Warn("checkpoint after %s not saved: %v", nodeName, err)
	}
}

func (cl *CheckpointListener[S]) save(ctx context.Context, nodeName string, state S) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	cl.mu.Lock()
	cl.step++
	step := cl.step
	cl.mu.Unlock()

	cp := &store.Checkpoint{
		ID:        fmt.Sprintf("checkpoint_%s", uuid.NewString()),
		RunID:     cl.runID,
		Step:      step,
		Node:      nodeName,
		State:     data,
		Metadata:  map[string]any{"source": "graph"},
		Timestamp: time.Now().UTC(),
	}
	return cl.store.Save(ctx, cp)
}
