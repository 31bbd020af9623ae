package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

// ErrStorageUnavailable means the backing database could not be opened or
// created. It is fatal at startup: the agent must not continue with an
// in-memory fallback that would silently diverge from durable semantics.
var ErrStorageUnavailable = errors.New("ledger storage unavailable")

// AppendError reports a failed append. The event may or may not have been
// persisted; producers that retry should carry a correlation id in the
// payload so downstream readers can de-duplicate.
type AppendError struct {
	Type string
	Err  error
}

func (e *AppendError) Error() string {
	return fmt.Sprintf("append %s event: %v", e.Type, e.Err)
}

func (e *AppendError) Unwrap() error { return e.Err }

// Store is the durable append-only event store backed by SQLite.
//
// A Store is owned by exactly one process. Concurrent appends within that
// process are serialized by an internal mutex so that sequence assignment
// and durability form a single total order: a caller observing sequence N
// knows every append that returned a sequence < N is already durable.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// Open opens (or creates) the event store at path, creating the parent
// directory and schema if they do not exist. Safe to call on every start.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	return &Store{db: db}, nil
}

// Append durably persists one event and returns its assigned sequence
// number. The commit is synchronous: when Append returns nil the event has
// been written through to the database.
func (s *Store) Append(ctx context.Context, ts float64, etype string, payload map[string]any) (int64, error) {
	if payload == nil {
		payload = map[string]any{}
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return 0, &AppendError{Type: etype, Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO events (ts, type, payload) VALUES (?, ?, ?)`,
		ts, etype, string(raw),
	)
	if err != nil {
		return 0, &AppendError{Type: etype, Err: err}
	}

	seq, err := res.LastInsertId()
	if err != nil {
		return 0, &AppendError{Type: etype, Err: err}
	}
	return seq, nil
}

// Order selects the sequence ordering for Query results.
type Order int

const (
	Ascending Order = iota
	Descending
)

// Filter narrows a Query. Zero values mean "no constraint".
type Filter struct {
	Type         string
	MinSeq       int64
	MinTimestamp float64
}

// Query returns events matching the filter in the requested sequence order.
// A limit <= 0 means no limit. Reads may run concurrently with appends;
// a read started after an append returned is guaranteed to see that event.
func (s *Store) Query(ctx context.Context, f Filter, order Order, limit int) ([]Event, error) {
	query := `SELECT seq, ts, type, payload FROM events`
	var (
		where []string
		args  []any
	)
	if f.Type != "" {
		where = append(where, "type = ?")
		args = append(args, f.Type)
	}
	if f.MinSeq > 0 {
		where = append(where, "seq >= ?")
		args = append(args, f.MinSeq)
	}
	if f.MinTimestamp > 0 {
		where = append(where, "ts >= ?")
		args = append(args, f.MinTimestamp)
	}
	for i, clause := range where {
		if i == 0 {
			query += " WHERE " + clause
		} else {
			query += " AND " + clause
		}
	}
	if order == Descending {
		query += " ORDER BY seq DESC"
	} else {
		query += " ORDER BY seq ASC"
	}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var (
			ev  Event
			raw string
		)
		if err := rows.Scan(&ev.Seq, &ev.Timestamp, &ev.Type, &raw); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(raw), &ev.Payload); err != nil {
			// Preserve what was stored rather than failing the read.
			ev.Payload = map[string]any{"raw": raw}
		}
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
