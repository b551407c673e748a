// Package statestore persists the seen-state watermark in SQLite so novelty
// detection survives process restarts.
package statestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lepinkainen/steam-herald/internal/herald"
	"github.com/lepinkainen/steam-herald/pkg/database"
)

const schema = `
	CREATE TABLE IF NOT EXISTS seen_state (
		feed_key TEXT PRIMARY KEY,
		last_gid TEXT NOT NULL,
		last_posted_at INTEGER NOT NULL,
		window_json TEXT NOT NULL,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
`

// StoreError reports a failed state read or write. A write failure means the
// corresponding publish is not durable: the event will be re-evaluated as
// novel after a restart.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("state store %s failed: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// Store is a single-row-per-feed seen-state repository.
type Store struct {
	db      *database.Database
	feedKey string
}

// New opens (or creates) the store for one feed identity.
func New(db *database.Database, feedKey string) (*Store, error) {
	if err := db.ExecuteSchema(schema); err != nil {
		return nil, &StoreError{Op: "init", Err: err}
	}
	return &Store{db: db, feedKey: feedKey}, nil
}

// Load returns the persisted state, or the empty sentinel state when no
// record exists yet. A missing record is not an error.
func (s *Store) Load(ctx context.Context) (herald.SeenState, error) {
	var (
		state      herald.SeenState
		windowJSON string
	)

	row := s.db.DB().QueryRowContext(ctx,
		`SELECT last_gid, last_posted_at, window_json FROM seen_state WHERE feed_key = ?`,
		s.feedKey)
	err := row.Scan(&state.LastGID, &state.LastPostedAt, &windowJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return herald.SeenState{}, nil
	}
	if err != nil {
		return herald.SeenState{}, &StoreError{Op: "load", Err: err}
	}

	if err := json.Unmarshal([]byte(windowJSON), &state.Window); err != nil {
		return herald.SeenState{}, &StoreError{Op: "load", Err: fmt.Errorf("corrupt window column: %w", err)}
	}

	return state, nil
}

// Save atomically replaces the persisted state. Either the new state is
// durably readable afterwards or the old one remains.
func (s *Store) Save(ctx context.Context, state herald.SeenState) error {
	window := state.Window
	if window == nil {
		window = []string{}
	}
	windowJSON, err := json.Marshal(window)
	if err != nil {
		return &StoreError{Op: "save", Err: err}
	}

	err = s.db.Transaction(func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO seen_state (feed_key, last_gid, last_posted_at, window_json, updated_at)
			VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
			ON CONFLICT(feed_key) DO UPDATE SET
				last_gid = excluded.last_gid,
				last_posted_at = excluded.last_posted_at,
				window_json = excluded.window_json,
				updated_at = CURRENT_TIMESTAMP`,
			s.feedKey, state.LastGID, state.LastPostedAt, string(windowJSON))
		return err
	})
	if err != nil {
		return &StoreError{Op: "save", Err: err}
	}

	return nil
}
