// Package sqlite persists run snapshots in a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/jemygraw/researchgraph/store"
)

// SqliteCheckpointStore implements store.CheckpointStore using SQLite
type SqliteCheckpointStore struct {
	db        *sql.DB
	tableName string
}

var _ store.CheckpointStore = (*SqliteCheckpointStore)(nil)

// SqliteOptions configuration for SQLite connection
type SqliteOptions struct {
	Path      string
	TableName string // Default "checkpoints"
}

// NewSqliteCheckpointStore opens the database and creates the table if needed
func NewSqliteCheckpointStore(opts SqliteOptions) (*SqliteCheckpointStore, error) {
	db, err := sql.Open("sqlite3", opts.Path)
	if err != nil {
		return nil, fmt.Errorf("unable to open database: %w", err)
	}

	tableName := opts.TableName
	if tableName == "" {
		tableName = "checkpoints"
	}

	s := &SqliteCheckpointStore{
		db:        db,
		tableName: tableName,
	}

	if err := s.InitSchema(context.Background()); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// InitSchema creates the necessary table if it doesn't exist
func (s *SqliteCheckpointStore) InitSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			run_id TEXT NOT NULL,
			step INTEGER NOT NULL,
			node TEXT NOT NULL,
			state TEXT NOT NULL,
			metadata TEXT,
			timestamp DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_%s_run_id ON %s (run_id, step);
	`, s.tableName, s.tableName, s.tableName)

	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Close closes the database connection
func (s *SqliteCheckpointStore) Close() error {
	return s.db.Close()
}

// Save stores a checkpoint
func (s *SqliteCheckpointStore) Save(ctx context.Context, checkpoint *store.Checkpoint) error {
	metadataJSON, err := json.Marshal(checkpoint.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, run_id, step, node, state, metadata, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			run_id = excluded.run_id,
			step = excluded.step,
			node = excluded.node,
			state = excluded.state,
			metadata = excluded.metadata,
			timestamp = excluded.timestamp
	`, s.tableName)

	_, err = s.db.ExecContext(ctx, query,
		checkpoint.ID,
		checkpoint.RunID,
		checkpoint.Step,
		checkpoint.Node,
		string(checkpoint.State),
		string(metadataJSON),
		checkpoint.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCheckpoint(row scanner) (*store.Checkpoint, error) {
	var cp store.Checkpoint
	var stateJSON string
	var metadataJSON sql.NullString

	if err := row.Scan(&cp.ID, &cp.RunID, &cp.Step, &cp.Node, &stateJSON, &metadataJSON, &cp.Timestamp); err != nil {
		return nil, err
	}
	cp.State = json.RawMessage(stateJSON)

	if metadataJSON.Valid && metadataJSON.String != "" && metadataJSON.String != "null" {
		if err := json.Unmarshal([]byte(metadataJSON.String), &cp.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
		}
	}
	return &cp, nil
}

// Load retrieves a checkpoint by ID
func (s *SqliteCheckpointStore) Load(ctx context.Context, checkpointID string) (*store.Checkpoint, error) {
	query := fmt.Sprintf(`
		SELECT id, run_id, step, node, state, metadata, timestamp
		FROM %s
		WHERE id = ?
	`, s.tableName)

	cp, err := scanCheckpoint(s.db.QueryRowContext(ctx, query, checkpointID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", store.ErrCheckpointNotFound, checkpointID)
		}
		return nil, fmt.Errorf("failed to load checkpoint: %w", err)
	}
	return cp, nil
}

// List returns all checkpoints of a run ordered by step
func (s *SqliteCheckpointStore) List(ctx context.Context, runID string) ([]*store.Checkpoint, error) {
	query := fmt.Sprintf(`
		SELECT id, run_id, step, node, state, metadata, timestamp
		FROM %s
		WHERE run_id = ?
		ORDER BY step ASC, timestamp ASC
	`, s.tableName)

	rows, err := s.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list checkpoints: %w", err)
	}
	defer rows.Close()

	var checkpoints []*store.Checkpoint
	for rows.Next() {
		cp, err := scanCheckpoint(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan checkpoint row: %w", err)
		}
		checkpoints = append(checkpoints, cp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating checkpoint rows: %w", err)
	}
	return checkpoints, nil
}

// Delete removes a checkpoint
func (s *SqliteCheckpointStore) Delete(ctx context.Context, checkpointID string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = ?", s.tableName)
	if _, err := s.db.ExecContext(ctx, query, checkpointID); err != nil {
		return fmt.Errorf("failed to delete checkpoint: %w", err)
	}
	return nil
}

// Clear removes all checkpoints of a run
func (s *SqliteCheckpointStore) Clear(ctx context.Context, runID string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE run_id = ?", s.tableName)
	if _, err := s.db.ExecContext(ctx, query, runID); err != nil {
		return fmt.Errorf("failed to clear checkpoints: %w", err)
	}
	return nil
}
