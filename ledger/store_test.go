package ledger

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "ledger.db")

	s, err := Open(path)
	require.NoError(t, err)

	return s, path
}

func TestOpenCreatesSchema(t *testing.T) {
	t.Parallel()

	s, path := newTestStore(t)
	require.NoError(t, s.Close())

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	var name string
	err = db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name='events'`).Scan(&name)
	require.NoError(t, err)
	assert.Equal(t, "events", name)
}

func TestOpenIsIdempotent(t *testing.T) {
	t.Parallel()

	s, path := newTestStore(t)

	ctx := context.Background()
	_, err := s.Append(ctx, 1.0, TypeTradeOpen, map[string]any{"symbol": "BTC"})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	// Reopening an existing store must not disturb its contents.
	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()

	events, err := s2.Query(ctx, Filter{}, Ascending, 0)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, int64(1), events[0].Seq)
}

func TestOpenCreatesParentDir(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "data", "nested", "ledger.db")
	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	_, err = os.Stat(filepath.Dir(path))
	assert.NoError(t, err)
}

func TestOpenUnwritableLocation(t *testing.T) {
	t.Parallel()

	// A regular file where a parent directory is needed.
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	_, err := Open(filepath.Join(blocker, "sub", "ledger.db"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrStorageUnavailable))
}

func TestAppendAssignsIncreasingSequences(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t)
	defer s.Close()

	ctx := context.Background()
	for i := 1; i <= 5; i++ {
		seq, err := s.Append(ctx, float64(i), TypeStrategyDecision, map[string]any{"n": i})
		require.NoError(t, err)
		assert.Equal(t, int64(i), seq)
	}
}

func TestAppendConcurrentNoGapsNoDuplicates(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t)
	defer s.Close()

	const n = 50
	ctx := context.Background()

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seqs = make(map[int64]bool)
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			seq, err := s.Append(ctx, Now(), TypeTradeOpen, map[string]any{})
			assert.NoError(t, err)
			mu.Lock()
			seqs[seq] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	// Strictly increasing permutation-free set {1..n}.
	require.Len(t, seqs, n)
	for i := int64(1); i <= n; i++ {
		assert.True(t, seqs[i], "missing sequence %d", i)
	}
}

func TestAppendDurableAcrossReopen(t *testing.T) {
	t.Parallel()

	s, path := newTestStore(t)

	ctx := context.Background()
	payload := map[string]any{
		"symbol":       "BTC",
		"realized_pnl": 42.5,
		"order_ids":    []any{"77001", "77002"},
	}
	seq, err := s.Append(ctx, 1700000000.25, TypeTradeClose, payload)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()

	events, err := s2.Query(ctx, Filter{MinSeq: seq}, Ascending, 1)
	require.NoError(t, err)
	require.Len(t, events, 1)

	got := events[0]
	assert.Equal(t, seq, got.Seq)
	assert.Equal(t, TypeTradeClose, got.Type)
	assert.InDelta(t, 1700000000.25, got.Timestamp, 1e-9)
	assert.Equal(t, "BTC", got.Payload["symbol"])
	assert.InDelta(t, 42.5, got.Payload["realized_pnl"].(float64), 1e-9)
	assert.Equal(t, []any{"77001", "77002"}, got.Payload["order_ids"])
}

func TestQueryDescendingLimit(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t)
	defer s.Close()

	ctx := context.Background()
	for i := 1; i <= 10; i++ {
		_, err := s.Append(ctx, float64(i), TypeStrategyDecision, map[string]any{"n": i})
		require.NoError(t, err)
	}

	events, err := s.Query(ctx, Filter{}, Descending, 3)
	require.NoError(t, err)
	require.Len(t, events, 3)

	// Exactly the 3 largest sequences, descending.
	assert.Equal(t, int64(10), events[0].Seq)
	assert.Equal(t, int64(9), events[1].Seq)
	assert.Equal(t, int64(8), events[2].Seq)
}

func TestQueryTypeFilter(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t)
	defer s.Close()

	ctx := context.Background()
	_, err := s.Append(ctx, 1, TypeTradeOpen, nil)
	require.NoError(t, err)
	_, err = s.Append(ctx, 2, TypeTradeClose, nil)
	require.NoError(t, err)
	_, err = s.Append(ctx, 3, TypeTradeClose, nil)
	require.NoError(t, err)

	events, err := s.Query(ctx, Filter{Type: TypeTradeClose}, Ascending, 0)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, int64(2), events[0].Seq)
	assert.Equal(t, int64(3), events[1].Seq)
}

func TestQueryMinTimestamp(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t)
	defer s.Close()

	ctx := context.Background()
	// Producer-supplied timestamps out of order with sequence on purpose.
	_, err := s.Append(ctx, 300, TypeTradeOpen, nil)
	require.NoError(t, err)
	_, err = s.Append(ctx, 100, TypeTradeOpen, nil)
	require.NoError(t, err)
	_, err = s.Append(ctx, 200, TypeTradeOpen, nil)
	require.NoError(t, err)

	events, err := s.Query(ctx, Filter{MinTimestamp: 150}, Ascending, 0)
	require.NoError(t, err)
	require.Len(t, events, 2)

	// Timestamp filters select, sequence still orders.
	assert.Equal(t, int64(1), events[0].Seq)
	assert.Equal(t, int64(3), events[1].Seq)
}

func TestQueryUnknownTypePreserved(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t)
	defer s.Close()

	ctx := context.Background()
	_, err := s.Append(ctx, 1, "funding_payment", map[string]any{"amount": 1.5})
	require.NoError(t, err)

	events, err := s.Query(ctx, Filter{Type: "funding_payment"}, Ascending, 0)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "funding_payment", events[0].Type)
}

func TestAppendErrorSurfaced(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t)
	require.NoError(t, s.Close())

	// Appends against a closed store fail loudly, never silently drop.
	_, err := s.Append(context.Background(), 1, TypeTradeOpen, nil)
	require.Error(t, err)

	var appendErr *AppendError
	assert.True(t, errors.As(err, &appendErr))
	assert.Equal(t, TypeTradeOpen, appendErr.Type)
}
