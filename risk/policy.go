package risk

// Policy bounds what one strategy cycle is allowed to do. Zero-valued
// limits are treated as "no limit" by Evaluate.
type Policy struct {
	// Per-trade limits
	MaxLeverage    float64 // e.g. 3
	MaxNotionalUSD float64 // e.g. 25_000

	// Exposure limits
	MaxOpenPositions int // e.g. 1

	// Circuit breakers, in account currency
	MaxDailyLossUSD  float64 // e.g. 150
	MaxWeeklyLossUSD float64 // e.g. 400
}

// Default returns the policy the agent ships with: one position at a time,
// modest leverage, and loss limits that halt trading well before the
// account is in danger.
func Default() Policy {
	return Policy{
		MaxLeverage:      3,
		MaxNotionalUSD:   25_000,
		MaxOpenPositions: 1,
		MaxDailyLossUSD:  150,
		MaxWeeklyLossUSD: 400,
	}
}

// TradeIntent describes the order a strategy wants to place.
type TradeIntent struct {
	Symbol      string
	NotionalUSD float64
	Leverage    float64
}

// ExposureSnapshot is the account state the gate evaluates against.
type ExposureSnapshot struct {
	OpenPositions int
	DayRealized   float64 // realized PnL over the last 24h
	WeekRealized  float64 // realized PnL over the last 7d
}
