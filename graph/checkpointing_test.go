package graph

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/jemygraw/researchgraph/log"
	"github.com/jemygraw/researchgraph/store"
	"github.com/jemygraw/researchgraph/store/memory"
)

func TestCheckpointListener_SavesEveryCompletedNode(t *testing.T) {
	st := memory.NewMemoryCheckpointStore()
	g := NewStateGraph[TestState]()
	g.AddNode("a", "A", visit("a"))
	g.AddNode("b", "B", visit("b"))
	g.AddEdge("a", "b")
	g.AddEdge("b", END)
	g.SetEntryPoint("a")

	runnable, _ := g.Compile()
	listener := NewCheckpointListener[TestState](st, "run-1", &log.NoOpLogger{})
	runnable.AddListener(listener)

	if _, err := runnable.Invoke(context.Background(), TestState{}); err != nil {
		t.Fatalf("Failed to invoke: %v", err)
	}

	cps, err := st.List(context.Background(), "run-1")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(cps) != 2 {
		t.Fatalf("Expected 2 checkpoints, got %d", len(cps))
	}
	if cps[0].Node != "a" || cps[0].Step != 1 || cps[1].Node != "b" || cps[1].Step != 2 {
		t.Errorf("Unexpected checkpoint order: %+v %+v", cps[0], cps[1])
	}

	var restored TestState
	if err := json.Unmarshal(cps[1].State, &restored); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if restored.Count != 2 {
		t.Errorf("Expected snapshot count 2, got %d", restored.Count)
	}
}

type failingStore struct{ store.CheckpointStore }

func (failingStore) Save(context.Context, *store.Checkpoint) error { return errors.New("disk full") }

func TestCheckpointListener_SaveFailureDoesNotStopRun(t *testing.T) {
	g := NewStateGraph[TestState]()
	g.AddNode("a", "A", visit("a"))
	g.AddEdge("a", END)
	g.SetEntryPoint("a")

	runnable, _ := g.Compile()
	listener := NewCheckpointListener[TestState](failingStore{}, "", &log.NoOpLogger{})
	runnable.AddListener(listener)

	final, err := runnable.Invoke(context.Background(), TestState{})
	if err != nil {
		t.Fatalf("Run should succeed, got %v", err)
	}
	if final.Count != 1 {
		t.Errorf("Expected count 1, got %d", final.Count)
	}
	if listener.LastError() == nil {
		t.Error("Expected LastError to record the failed save")
	}
	if listener.RunID() == "" {
		t.Error("Expected a generated run ID")
	}
}
