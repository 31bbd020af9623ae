// Package strategy implements the BTC perp basis strategy and the contract
// by which its decisions are committed to the performance ledger.
//
// Every evaluation produces exactly one event: a strategy_decision when no
// trade is entered, a trade_open when the perp leg fills, or an error event
// when execution fails. A failed attempt never produces a misleading
// trade_open or trade_close.
package strategy

import (
	"context"
	"fmt"
	"math"

	"github.com/rustyeddy/satsagent/exchange"
	"github.com/rustyeddy/satsagent/ledger"
	"github.com/rustyeddy/satsagent/pkg/id"
)

// Decision actions recorded in event payloads.
const (
	ActionNoTrade     = "no_trade"
	ActionOrderPlaced = "order_placed"
	ActionError       = "error"
)

// BasisParams configure one basis strategy evaluation.
type BasisParams struct {
	Symbol        string  // perp symbol, e.g. "BTC"
	IsLongBasis   bool    // true: long spot + short perp (collect funding)
	TargetEdgeBps float64 // minimum annualised funding edge in basis points
	MaxLeverage   float64 // maximum leverage for the perp leg
	NotionalUSD   float64 // notional to deploy when the edge is met
}

// Defaults fills zero-valued params with the strategy's defaults.
func (p BasisParams) Defaults() BasisParams {
	if p.Symbol == "" {
		p.Symbol = "BTC"
	}
	if p.TargetEdgeBps == 0 {
		p.TargetEdgeBps = 10
	}
	if p.MaxLeverage == 0 {
		p.MaxLeverage = 3
	}
	if p.NotionalUSD == 0 {
		p.NotionalUSD = 10_000
	}
	return p
}

// Decision is the outcome of one basis evaluation. Payload is the exact
// document committed to the ledger, including the evaluated market inputs
// and a client-assigned decision_id for retry de-duplication.
type Decision struct {
	ID      string
	Action  string
	Reason  string
	OrderID string
	Payload map[string]any
}

// RunBasis evaluates the funding edge for the configured symbol, enters the
// perp leg when the edge meets the target, and records the outcome in the
// log. The returned error is the exchange failure, if any; the event
// recording the failure has already been appended by then.
func RunBasis(ctx context.Context, x exchange.Client, log *ledger.Log, params BasisParams) (Decision, error) {
	params = params.Defaults()

	market, err := x.GetMarketInfo(ctx, params.Symbol)
	if err != nil {
		return Decision{}, err
	}

	// Annualise the 8-hour funding rate: three payments a day.
	fundingAnnualBps := market.FundingRate * 3 * 365 * 10_000

	decision := Decision{
		ID: id.New(),
		Payload: map[string]any{
			"symbol":             params.Symbol,
			"mark_price":         market.MarkPrice,
			"index_price":        market.IndexPrice,
			"funding_8h":         market.FundingRate,
			"funding_annual_bps": round2(fundingAnnualBps),
			"target_edge_bps":    params.TargetEdgeBps,
			"is_long_basis":      params.IsLongBasis,
			"max_leverage":       params.MaxLeverage,
		},
	}
	decision.Payload["decision_id"] = decision.ID

	meetsEdge := fundingAnnualBps >= params.TargetEdgeBps
	if !params.IsLongBasis {
		meetsEdge = fundingAnnualBps <= -params.TargetEdgeBps
	}

	if !meetsEdge {
		decision.Action = ActionNoTrade
		decision.Reason = fmt.Sprintf(
			"funding edge (%.1f bps ann.) does not meet target (%.0f bps)",
			fundingAnnualBps, params.TargetEdgeBps,
		)
		decision.Payload["action"] = ActionNoTrade
		decision.Payload["reason"] = decision.Reason

		if _, err := log.AppendEvent(ctx, ledger.Event{
			Type:    ledger.TypeStrategyDecision,
			Payload: decision.Payload,
		}); err != nil {
			return decision, err
		}
		return decision, nil
	}

	// Long basis collects funding by shorting the perp.
	isBuy := !params.IsLongBasis
	size := round6(params.NotionalUSD / market.MarkPrice)

	order, err := x.PlaceOrder(ctx, params.Symbol, isBuy, size, "market")
	if err != nil {
		decision.Action = ActionError
		decision.Payload["action"] = ActionError
		decision.Payload["error"] = err.Error()

		if _, appendErr := log.AppendEvent(ctx, ledger.Event{
			Type:    ledger.TypeError,
			Payload: decision.Payload,
		}); appendErr != nil {
			return decision, appendErr
		}
		return decision, err
	}

	decision.Action = ActionOrderPlaced
	decision.OrderID = order.OrderID
	decision.Payload["action"] = ActionOrderPlaced
	decision.Payload["order_id"] = order.OrderID
	decision.Payload["side"] = order.Side
	decision.Payload["size"] = size
	decision.Payload["notional_usd"] = params.NotionalUSD
	decision.Payload["order_status"] = order.Status

	if _, err := log.AppendEvent(ctx, ledger.Event{
		Type:    ledger.TypeTradeOpen,
		Payload: decision.Payload,
	}); err != nil {
		return decision, err
	}
	return decision, nil
}

func round2(x float64) float64 { return math.Round(x*100) / 100 }
func round6(x float64) float64 { return math.Round(x*1e6) / 1e6 }
