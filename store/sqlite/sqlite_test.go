package sqlite

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jemygraw/researchgraph/store"
)

func newTestStore(t *testing.T) *SqliteCheckpointStore {
	t.Helper()
	st, err := NewSqliteCheckpointStore(SqliteOptions{
		Path: filepath.Join(t.TempDir(), "checkpoints.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func TestSqliteCheckpointStore(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	now := time.Now().UTC().Truncate(time.Second)

	second := &store.Checkpoint{
		ID:        "cp-2",
		RunID:     "run-1",
		Step:      2,
		Node:      "ingest",
		State:     json.RawMessage(`{"step_count":1}`),
		Metadata:  map[string]any{"source": "graph"},
		Timestamp: now,
	}
	first := &store.Checkpoint{
		ID:        "cp-1",
		RunID:     "run-1",
		Step:      1,
		Node:      "route",
		State:     json.RawMessage(`{"step_count":1}`),
		Timestamp: now,
	}
	require.NoError(t, st.Save(ctx, second))
	require.NoError(t, st.Save(ctx, first))

	loaded, err := st.Load(ctx, "cp-2")
	require.NoError(t, err)
	assert.Equal(t, "ingest", loaded.Node)
	assert.Equal(t, "run-1", loaded.RunID)
	assert.Equal(t, "graph", loaded.Metadata["source"])
	assert.JSONEq(t, `{"step_count":1}`, string(loaded.State))
	assert.True(t, now.Equal(loaded.Timestamp))

	list, err := st.List(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "cp-1", list[0].ID)
	assert.Equal(t, "cp-2", list[1].ID)
	assert.Nil(t, list[0].Metadata)

	second.Node = "retrieve"
	require.NoError(t, st.Save(ctx, second))
	loaded, err = st.Load(ctx, "cp-2")
	require.NoError(t, err)
	assert.Equal(t, "retrieve", loaded.Node)

	require.NoError(t, st.Delete(ctx, "cp-1"))
	_, err = st.Load(ctx, "cp-1")
	assert.ErrorIs(t, err, store.ErrCheckpointNotFound)

	require.NoError(t, st.Clear(ctx, "run-1"))
	list, err = st.List(ctx, "run-1")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestSqliteCheckpointStore_CustomTable(t *testing.T) {
	st, err := NewSqliteCheckpointStore(SqliteOptions{
		Path:      filepath.Join(t.TempDir(), "custom.db"),
		TableName: "run_snapshots",
	})
	require.NoError(t, err)
	defer st.Close()

	ctx := context.Background()
	require.NoError(t, st.Save(ctx, &store.Checkpoint{ID: "x", RunID: "r", Step: 1, Node: "route", State: json.RawMessage(`{}`), Timestamp: time.Now()}))
	list, err := st.List(ctx, "r")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
