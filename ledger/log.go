package ledger

import (
	"context"
	"errors"
)

// ErrMissingType is returned when an event is appended without a type.
var ErrMissingType = errors.New("event type is required")

// Log is the interface the rest of the agent programs against. It decouples
// producers and readers from the storage technology so the SQLite store can
// later be swapped for a replicated log without changing callers.
type Log struct {
	store *Store
}

// NewLog wraps an open Store.
func NewLog(store *Store) *Log {
	return &Log{store: store}
}

// OpenLog opens the store at path and returns it behind the Log facade.
func OpenLog(path string) (*Log, error) {
	store, err := Open(path)
	if err != nil {
		return nil, err
	}
	return NewLog(store), nil
}

// AppendEvent validates and persists one event, returning its assigned
// sequence number. A zero timestamp is defaulted to the current time.
func (l *Log) AppendEvent(ctx context.Context, ev Event) (int64, error) {
	if ev.Type == "" {
		return 0, ErrMissingType
	}
	if ev.Payload == nil {
		ev.Payload = map[string]any{}
	}
	if ev.Timestamp == 0 {
		ev.Timestamp = Now()
	}
	return l.store.Append(ctx, ev.Timestamp, ev.Type, ev.Payload)
}

// LatestSnapshot returns the pnl_snapshot event with the greatest sequence
// number. ok is false if no snapshot has been recorded yet.
func (l *Log) LatestSnapshot(ctx context.Context) (ev Event, ok bool, err error) {
	events, err := l.store.Query(ctx, Filter{Type: TypePnLSnapshot}, Descending, 1)
	if err != nil {
		return Event{}, false, err
	}
	if len(events) == 0 {
		return Event{}, false, nil
	}
	return events[0], true, nil
}

// Events returns recent events newest first, optionally filtered by type.
// A limit <= 0 means no limit.
func (l *Log) Events(ctx context.Context, limit int, etype string) ([]Event, error) {
	return l.store.Query(ctx, Filter{Type: etype}, Descending, limit)
}

// EventsSince returns all events with timestamp >= since, oldest first.
// Callers needing the reverse ordering must reverse it themselves; the two
// orderings are deliberately never conflated here.
func (l *Log) EventsSince(ctx context.Context, since float64) ([]Event, error) {
	return l.store.Query(ctx, Filter{MinTimestamp: since}, Ascending, 0)
}

// Close releases the underlying store.
func (l *Log) Close() error {
	return l.store.Close()
}
