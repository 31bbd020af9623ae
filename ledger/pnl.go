package ledger

import (
	"context"
	"encoding/json"
	"log/slog"
	"math"
	"slices"
)

// Summary is a point-in-time performance summary derived entirely by
// replaying trade_close events. MaxDrawdown is a lifetime risk metric
// computed over the full history regardless of the requested window;
// RealizedPnLWindow is a recency metric scoped to the trailing window.
// That asymmetry is intentional.
type Summary struct {
	CumulativePnL     float64 `json:"cumulative_pnl_usd"`
	RealizedPnLWindow float64 `json:"realized_pnl_window_usd"`
	WindowHours       float64 `json:"window_hours"`
	MaxDrawdown       float64 `json:"max_drawdown_usd"`
	TotalClosedTrades int     `json:"total_closed_trades"`
}

// ComputePnLSummary replays all trade_close events in chronological order
// and derives cumulative PnL, all-time max drawdown, and the realized PnL
// for the trailing windowHours. It is a pure function of log contents:
// calling it twice with no intervening appends yields identical results,
// and it never keeps a running total that could drift from a fresh replay.
//
// Callers needing bounded latency should impose a context deadline; an
// exceeded deadline is soft and reissuing the computation is always safe.
func (l *Log) ComputePnLSummary(ctx context.Context, windowHours float64) (Summary, error) {
	closes, err := l.Events(ctx, 0, TypeTradeClose)
	if err != nil {
		return Summary{}, err
	}
	slices.Reverse(closes) // oldest first: drawdown depends on path

	var cumulative, peak, maxDrawdown float64
	for _, ev := range closes {
		cumulative += realizedPnL(ev)
		if cumulative > peak {
			peak = cumulative
		}
		if dd := peak - cumulative; dd > maxDrawdown {
			maxDrawdown = dd
		}
	}

	cutoff := Now() - windowHours*3600
	var window float64
	for _, ev := range closes {
		if ev.Timestamp >= cutoff {
			window += realizedPnL(ev)
		}
	}

	return Summary{
		CumulativePnL:     round4(cumulative),
		RealizedPnLWindow: round4(window),
		WindowHours:       windowHours,
		MaxDrawdown:       round4(maxDrawdown),
		TotalClosedTrades: len(closes),
	}, nil
}

// realizedPnL extracts the numeric realized_pnl field from a trade_close
// payload. A missing or non-numeric value contributes 0.0 rather than an
// error: the log never rejects a write, so the analytics must tolerate
// partially-formed producer events.
func realizedPnL(ev Event) float64 {
	v, ok := ev.Payload["realized_pnl"]
	if !ok {
		slog.Warn("trade_close event missing realized_pnl", "seq", ev.Seq)
		return 0
	}
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case json.Number:
		if f, err := n.Float64(); err == nil {
			return f
		}
	}
	slog.Warn("trade_close event has non-numeric realized_pnl", "seq", ev.Seq)
	return 0
}

func round4(x float64) float64 {
	return math.Round(x*1e4) / 1e4
}
