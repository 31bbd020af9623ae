package ledger

import (
	"time"
)

// Event types recorded by the agent. The enumeration is closed at any given
// version but unknown types are preserved opaquely, never rejected.
const (
	TypeTradeOpen        = "trade_open"
	TypeTradeClose       = "trade_close"
	TypePnLSnapshot      = "pnl_snapshot"
	TypeStrategyDecision = "strategy_decision"
	TypeError            = "error"
)

// Event is one immutable, sequenced record in the performance ledger.
//
// Seq is assigned by the store at append time and is strictly increasing.
// Timestamp is unix epoch seconds supplied by the producer (or defaulted to
// append time); it is not guaranteed monotonic with Seq, so time-window
// queries filter on Timestamp while ordering queries sort on Seq.
type Event struct {
	Seq       int64          `json:"seq"`
	Timestamp float64        `json:"ts"`
	Type      string         `json:"type"`
	Payload   map[string]any `json:"payload"`
}

// Time converts the epoch-seconds timestamp to a time.Time in UTC.
func (e Event) Time() time.Time {
	sec := int64(e.Timestamp)
	nsec := int64((e.Timestamp - float64(sec)) * 1e9)
	return time.Unix(sec, nsec).UTC()
}

// Now returns the current time as unix epoch seconds, the ledger's native
// timestamp representation.
func Now() float64 {
	return float64(time.Now().UnixNano()) / 1e9
}
