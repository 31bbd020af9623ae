// Package risk gates strategy orders before they reach the exchange.
package risk

import "fmt"

type Violation struct {
	Code string
	Msg  string
}

type Decision struct {
	Allowed    bool
	Violations []Violation
}

func (d *Decision) add(code, msg string) {
	d.Violations = append(d.Violations, Violation{Code: code, Msg: msg})
	d.Allowed = false
}

// Reason renders the violations as one line for logging and event payloads.
func (d Decision) Reason() string {
	if d.Allowed {
		return ""
	}
	out := ""
	for i, v := range d.Violations {
		if i > 0 {
			out += "; "
		}
		out += v.Msg
	}
	return out
}

// Evaluate checks an intended trade against the policy. Every violated
// limit is reported, not just the first.
func Evaluate(p Policy, intent TradeIntent, exp ExposureSnapshot) Decision {
	d := Decision{Allowed: true}

	if intent.NotionalUSD <= 0 {
		d.add("NO_NOTIONAL", "notional must be positive")
		return d
	}

	if p.MaxNotionalUSD > 0 && intent.NotionalUSD > p.MaxNotionalUSD {
		d.add("NOTIONAL_TOO_HIGH",
			fmt.Sprintf("notional $%.0f exceeds max $%.0f", intent.NotionalUSD, p.MaxNotionalUSD))
	}
	if p.MaxLeverage > 0 && intent.Leverage > p.MaxLeverage {
		d.add("LEVERAGE_TOO_HIGH",
			fmt.Sprintf("leverage %.1fx exceeds max %.1fx", intent.Leverage, p.MaxLeverage))
	}

	// Exposure constraints
	if p.MaxOpenPositions > 0 && exp.OpenPositions >= p.MaxOpenPositions {
		d.add("TOO_MANY_OPEN_POSITIONS",
			fmt.Sprintf("open positions %d >= max %d", exp.OpenPositions, p.MaxOpenPositions))
	}

	// Circuit breakers (loss limits)
	if p.MaxDailyLossUSD > 0 && exp.DayRealized <= -p.MaxDailyLossUSD {
		d.add("DAILY_LOSS_LIMIT",
			fmt.Sprintf("day realized $%.2f breaches limit $%.2f", exp.DayRealized, -p.MaxDailyLossUSD))
	}
	if p.MaxWeeklyLossUSD > 0 && exp.WeekRealized <= -p.MaxWeeklyLossUSD {
		d.add("WEEKLY_LOSS_LIMIT",
			fmt.Sprintf("week realized $%.2f breaches limit $%.2f", exp.WeekRealized, -p.MaxWeeklyLossUSD))
	}

	return d
}
