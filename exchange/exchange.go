package exchange

import (
	"context"
	"fmt"
)

// Error reports a rejected exchange operation.
type Error struct {
	Op     string
	Status int
	Detail string
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("exchange %s: HTTP %d: %s", e.Op, e.Status, e.Detail)
	}
	return fmt.Sprintf("exchange %s: %s", e.Op, e.Detail)
}

// MarketInfo is a snapshot of one perp market.
type MarketInfo struct {
	Symbol       string
	MarkPrice    float64
	IndexPrice   float64
	FundingRate  float64 // current 8-hour rate
	OpenInterest float64
	DayVolume    float64
	Premium      float64
}

// Position is one open perp position. Size is positive for longs and
// negative for shorts.
type Position struct {
	Symbol        string
	Size          float64
	EntryPrice    float64
	MarkPrice     float64
	UnrealizedPnL float64
	Leverage      float64
	MarginUsed    float64
}

// OrderResult is the exchange's response to an order placement.
type OrderResult struct {
	OrderID string
	Symbol  string
	Side    string
	Size    float64
	Status  string
}

// Client is the boundary to the perps exchange. The agent only ever records
// what was attempted and what came back; it does not verify the exchange's
// business correctness.
type Client interface {
	GetMarketInfo(ctx context.Context, symbol string) (MarketInfo, error)
	GetPositions(ctx context.Context) ([]Position, error)
	PlaceOrder(ctx context.Context, symbol string, isBuy bool, size float64, orderType string) (OrderResult, error)
	CloseAllPositions(ctx context.Context, symbol string) ([]OrderResult, error)
	IsConnected(ctx context.Context) bool
	Close() error
}
