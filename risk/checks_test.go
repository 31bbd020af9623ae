package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvaluateAllows(t *testing.T) {
	t.Parallel()

	d := Evaluate(Default(), TradeIntent{Symbol: "BTC", NotionalUSD: 10_000, Leverage: 2}, ExposureSnapshot{})
	assert.True(t, d.Allowed)
	assert.Empty(t, d.Violations)
	assert.Empty(t, d.Reason())
}

func TestEvaluateRejectsNonPositiveNotional(t *testing.T) {
	t.Parallel()

	d := Evaluate(Default(), TradeIntent{Symbol: "BTC"}, ExposureSnapshot{})
	assert.False(t, d.Allowed)
	assert.Equal(t, "NO_NOTIONAL", d.Violations[0].Code)
}

func TestEvaluateCollectsAllViolations(t *testing.T) {
	t.Parallel()

	d := Evaluate(Default(),
		TradeIntent{Symbol: "BTC", NotionalUSD: 100_000, Leverage: 10},
		ExposureSnapshot{OpenPositions: 1, DayRealized: -200, WeekRealized: -500})

	assert.False(t, d.Allowed)
	codes := make([]string, 0, len(d.Violations))
	for _, v := range d.Violations {
		codes = append(codes, v.Code)
	}
	assert.ElementsMatch(t, []string{
		"NOTIONAL_TOO_HIGH", "LEVERAGE_TOO_HIGH", "TOO_MANY_OPEN_POSITIONS",
		"DAILY_LOSS_LIMIT", "WEEKLY_LOSS_LIMIT",
	}, codes)
	assert.Contains(t, d.Reason(), "; ")
}

func TestEvaluateZeroLimitsMeanNoLimit(t *testing.T) {
	t.Parallel()

	d := Evaluate(Policy{},
		TradeIntent{Symbol: "BTC", NotionalUSD: 1e9, Leverage: 100},
		ExposureSnapshot{OpenPositions: 50, DayRealized: -1e6})
	assert.True(t, d.Allowed)
}
