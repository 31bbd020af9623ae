package ledger

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLog(t *testing.T) *Log {
	t.Helper()

	l, err := OpenLog(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })

	return l
}

func TestAppendEventRequiresType(t *testing.T) {
	t.Parallel()

	l := newTestLog(t)

	_, err := l.AppendEvent(context.Background(), Event{Payload: map[string]any{}})
	assert.ErrorIs(t, err, ErrMissingType)
}

func TestAppendEventDefaultsTimestamp(t *testing.T) {
	t.Parallel()

	l := newTestLog(t)
	ctx := context.Background()

	before := Now()
	seq, err := l.AppendEvent(ctx, Event{Type: TypeTradeOpen})
	require.NoError(t, err)
	after := Now()

	events, err := l.Events(ctx, 1, "")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, seq, events[0].Seq)
	assert.GreaterOrEqual(t, events[0].Timestamp, before)
	assert.LessOrEqual(t, events[0].Timestamp, after)
}

func TestAppendEventKeepsProducerTimestamp(t *testing.T) {
	t.Parallel()

	l := newTestLog(t)
	ctx := context.Background()

	_, err := l.AppendEvent(ctx, Event{Type: TypeTradeOpen, Timestamp: 1700000000})
	require.NoError(t, err)

	events, err := l.Events(ctx, 1, "")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.InDelta(t, 1700000000, events[0].Timestamp, 1e-9)
}

func TestLatestSnapshotNone(t *testing.T) {
	t.Parallel()

	l := newTestLog(t)

	_, ok, err := l.LatestSnapshot(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLatestSnapshotPicksGreatestSeq(t *testing.T) {
	t.Parallel()

	l := newTestLog(t)
	ctx := context.Background()

	_, err := l.AppendEvent(ctx, Event{Type: TypePnLSnapshot, Payload: map[string]any{"n": 1}})
	require.NoError(t, err)
	_, err = l.AppendEvent(ctx, Event{Type: TypeTradeOpen})
	require.NoError(t, err)
	seq, err := l.AppendEvent(ctx, Event{Type: TypePnLSnapshot, Payload: map[string]any{"n": 2}})
	require.NoError(t, err)

	ev, ok, err := l.LatestSnapshot(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, seq, ev.Seq)
	assert.InDelta(t, 2.0, ev.Payload["n"].(float64), 1e-9)
}

func TestEventsNewestFirst(t *testing.T) {
	t.Parallel()

	l := newTestLog(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := l.AppendEvent(ctx, Event{Type: TypeStrategyDecision})
		require.NoError(t, err)
	}

	events, err := l.Events(ctx, 2, "")
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, int64(5), events[0].Seq)
	assert.Equal(t, int64(4), events[1].Seq)
}

func TestEventsTypeFilter(t *testing.T) {
	t.Parallel()

	l := newTestLog(t)
	ctx := context.Background()

	_, err := l.AppendEvent(ctx, Event{Type: TypeTradeOpen})
	require.NoError(t, err)
	_, err = l.AppendEvent(ctx, Event{Type: TypeError})
	require.NoError(t, err)

	events, err := l.Events(ctx, 0, TypeError)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, TypeError, events[0].Type)
}

func TestEventsSinceOldestFirst(t *testing.T) {
	t.Parallel()

	l := newTestLog(t)
	ctx := context.Background()

	base := Now()
	for i := 0; i < 4; i++ {
		_, err := l.AppendEvent(ctx, Event{
			Type:      TypeTradeClose,
			Timestamp: base + float64(i)*60,
		})
		require.NoError(t, err)
	}

	events, err := l.EventsSince(ctx, base+60)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, int64(2), events[0].Seq)
	assert.Equal(t, int64(3), events[1].Seq)
	assert.Equal(t, int64(4), events[2].Seq)
}

func TestEndToEndScenario(t *testing.T) {
	t.Parallel()

	l := newTestLog(t)
	ctx := context.Background()

	seq, err := l.AppendEvent(ctx, Event{Type: TypeTradeOpen, Payload: map[string]any{"symbol": "BTC"}})
	require.NoError(t, err)
	assert.Equal(t, int64(1), seq)

	seq, err = l.AppendEvent(ctx, Event{Type: TypeTradeClose, Payload: map[string]any{"realized_pnl": 42.5}})
	require.NoError(t, err)
	assert.Equal(t, int64(2), seq)

	_, ok, err := l.LatestSnapshot(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "no pnl_snapshot recorded yet")

	seq, err = l.AppendEvent(ctx, Event{Type: TypePnLSnapshot, Payload: map[string]any{"note": "first"}})
	require.NoError(t, err)
	assert.Equal(t, int64(3), seq)

	ev, ok, err := l.LatestSnapshot(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(3), ev.Seq)
	assert.Equal(t, "first", ev.Payload["note"])
}

func TestEventTime(t *testing.T) {
	t.Parallel()

	ev := Event{Timestamp: 1700000000.5}
	want := time.Unix(1700000000, 500000000).UTC()
	assert.True(t, ev.Time().Equal(want))
}
