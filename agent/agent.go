// Package agent wires the ledger, exchange, social and bridge clients into
// one application context. Nothing here is a package-level singleton; every
// command constructs an Agent, uses it, and closes it.
package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/rustyeddy/satsagent/bridge"
	"github.com/rustyeddy/satsagent/config"
	"github.com/rustyeddy/satsagent/exchange"
	"github.com/rustyeddy/satsagent/ledger"
	"github.com/rustyeddy/satsagent/pkg/id"
	"github.com/rustyeddy/satsagent/risk"
	"github.com/rustyeddy/satsagent/social"
	"github.com/rustyeddy/satsagent/strategy"
)

// Agent holds the live application context.
type Agent struct {
	cfg      *config.Config
	log      *ledger.Log
	exchange exchange.Client
	social   *social.Client
	bridge   *bridge.Client
}

// New opens every resource the agent needs. On any failure the resources
// already acquired are released before returning.
func New(cfg *config.Config) (*Agent, error) {
	log, err := ledger.OpenLog(cfg.Ledger.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}

	var x exchange.Client
	if cfg.Exchange.DryRun {
		slog.Info("dry run, using simulated exchange")
		x = exchange.NewSim()
	} else {
		x = exchange.NewClient(cfg.Exchange.Address, cfg.Exchange.Token, cfg.Exchange.Testnet)
	}

	return &Agent{
		cfg:      cfg,
		log:      log,
		exchange: x,
		social:   social.NewClient(cfg.Social.APIKey, cfg.Agent.Name),
		bridge:   bridge.NewClient(cfg.Bridge.APIKey),
	}, nil
}

// Log exposes the event log for read-only inspection.
func (a *Agent) Log() *ledger.Log { return a.log }

// Exchange exposes the exchange client.
func (a *Agent) Exchange() exchange.Client { return a.exchange }

// Bridge exposes the cross-chain quoting client.
func (a *Agent) Bridge() *bridge.Client { return a.bridge }

// Close releases all resources.
func (a *Agent) Close() error {
	var firstErr error
	if err := a.exchange.Close(); err != nil {
		firstErr = err
	}
	if err := a.social.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := a.bridge.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := a.log.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// Status is a point-in-time view of the agent.
type Status struct {
	Name           string              `json:"name"`
	Connected      bool                `json:"exchange_connected"`
	DryRun         bool                `json:"dry_run"`
	Positions      []exchange.Position `json:"positions"`
	LatestSnapshot *ledger.Event       `json:"latest_pnl_snapshot,omitempty"`
	EventCount     int                 `json:"recent_event_count"`
}

// Status collects connection state, open positions and the most recent
// recorded PnL snapshot.
func (a *Agent) Status(ctx context.Context) (Status, error) {
	st := Status{
		Name:      a.cfg.Agent.Name,
		Connected: a.exchange.IsConnected(ctx),
		DryRun:    a.cfg.Exchange.DryRun,
	}

	positions, err := a.exchange.GetPositions(ctx)
	if err != nil {
		return Status{}, err
	}
	st.Positions = positions

	if snap, ok, err := a.log.LatestSnapshot(ctx); err != nil {
		return Status{}, err
	} else if ok {
		st.LatestSnapshot = &snap
	}

	recent, err := a.log.Events(ctx, 100, "")
	if err != nil {
		return Status{}, err
	}
	st.EventCount = len(recent)
	return st, nil
}

// PnLSnapshot computes 24-hour and 7-day summaries from the ledger and
// records the daily one as a pnl_snapshot event.
func (a *Agent) PnLSnapshot(ctx context.Context) (daily, weekly ledger.Summary, err error) {
	daily, err = a.log.ComputePnLSummary(ctx, 24)
	if err != nil {
		return ledger.Summary{}, ledger.Summary{}, err
	}
	weekly, err = a.log.ComputePnLSummary(ctx, 168)
	if err != nil {
		return ledger.Summary{}, ledger.Summary{}, err
	}

	_, err = a.log.AppendEvent(ctx, ledger.Event{
		Type: ledger.TypePnLSnapshot,
		Payload: map[string]any{
			"cumulative_pnl_usd":      daily.CumulativePnL,
			"realized_pnl_window_usd": daily.RealizedPnLWindow,
			"window_hours":            daily.WindowHours,
			"max_drawdown_usd":        daily.MaxDrawdown,
			"total_closed_trades":     daily.TotalClosedTrades,
		},
	})
	if err != nil {
		return ledger.Summary{}, ledger.Summary{}, err
	}
	return daily, weekly, nil
}

// RunBasis executes one cycle of the basis strategy with the configured
// parameters. The risk gate runs first; a blocked cycle records a no_trade
// decision without touching the exchange order path.
func (a *Agent) RunBasis(ctx context.Context) (strategy.Decision, error) {
	params := strategy.BasisParams{
		Symbol:        a.cfg.Strategy.Symbol,
		IsLongBasis:   a.cfg.Strategy.IsLongBasis,
		TargetEdgeBps: a.cfg.Strategy.TargetEdgeBps,
		MaxLeverage:   a.cfg.Strategy.MaxLeverage,
		NotionalUSD:   a.cfg.Strategy.NotionalUSD,
	}.Defaults()

	gate, err := a.riskGate(ctx, params)
	if err != nil {
		return strategy.Decision{}, err
	}
	if !gate.Allowed {
		dec := strategy.Decision{
			ID:     id.New(),
			Action: strategy.ActionNoTrade,
			Reason: "risk gate: " + gate.Reason(),
		}
		dec.Payload = map[string]any{
			"decision_id": dec.ID,
			"symbol":      params.Symbol,
			"action":      strategy.ActionNoTrade,
			"reason":      dec.Reason,
		}
		if _, err := a.log.AppendEvent(ctx, ledger.Event{
			Type:    ledger.TypeStrategyDecision,
			Payload: dec.Payload,
		}); err != nil {
			return dec, err
		}
		return dec, nil
	}

	return strategy.RunBasis(ctx, a.exchange, a.log, params)
}

// riskGate evaluates the configured trade against open exposure and the
// ledger's realized-loss windows.
func (a *Agent) riskGate(ctx context.Context, params strategy.BasisParams) (risk.Decision, error) {
	positions, err := a.exchange.GetPositions(ctx)
	if err != nil {
		return risk.Decision{}, err
	}
	open := 0
	for _, pos := range positions {
		if pos.Symbol == params.Symbol {
			open++
		}
	}

	daily, err := a.log.ComputePnLSummary(ctx, 24)
	if err != nil {
		return risk.Decision{}, err
	}
	weekly, err := a.log.ComputePnLSummary(ctx, 168)
	if err != nil {
		return risk.Decision{}, err
	}

	policy := risk.Default()
	policy.MaxLeverage = params.MaxLeverage

	return risk.Evaluate(policy, risk.TradeIntent{
		Symbol:      params.Symbol,
		NotionalUSD: params.NotionalUSD,
		Leverage:    1, // basis entries are placed unlevered
	}, risk.ExposureSnapshot{
		OpenPositions: open,
		DayRealized:   daily.RealizedPnLWindow,
		WeekRealized:  weekly.RealizedPnLWindow,
	}), nil
}

// ClosePositions flattens every open position on the configured symbol and
// records one trade_close event. The recorded realized_pnl is the unrealized
// PnL observed at close time, which is what the exchange reports before
// settlement.
func (a *Agent) ClosePositions(ctx context.Context) ([]exchange.OrderResult, error) {
	positions, err := a.exchange.GetPositions(ctx)
	if err != nil {
		return nil, err
	}

	var realized float64
	for _, pos := range positions {
		if pos.Symbol == a.cfg.Strategy.Symbol {
			realized += pos.UnrealizedPnL
		}
	}

	results, err := a.exchange.CloseAllPositions(ctx, a.cfg.Strategy.Symbol)
	if err != nil {
		if _, appendErr := a.log.AppendEvent(ctx, ledger.Event{
			Type:    ledger.TypeError,
			Payload: map[string]any{"operation": "close_positions", "error": err.Error()},
		}); appendErr != nil {
			slog.Error("failed to record close error", "error", appendErr)
		}
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}

	orderIDs := make([]string, 0, len(results))
	for _, r := range results {
		orderIDs = append(orderIDs, r.OrderID)
	}

	_, err = a.log.AppendEvent(ctx, ledger.Event{
		Type: ledger.TypeTradeClose,
		Payload: map[string]any{
			"symbol":       a.cfg.Strategy.Symbol,
			"realized_pnl": realized,
			"order_ids":    orderIDs,
		},
	})
	if err != nil {
		return results, err
	}
	return results, nil
}

// SharePnL publishes a weekly performance update and returns the post id.
// The update is composed from the 7-day ledger summary; in mock mode the
// post goes nowhere but the text is still composed and logged.
func (a *Agent) SharePnL(ctx context.Context) (string, error) {
	weekly, err := a.log.ComputePnLSummary(ctx, 168)
	if err != nil {
		return "", err
	}

	title := fmt.Sprintf("%s weekly PnL update", a.cfg.Agent.Name)
	content := composeUpdate(weekly)

	postID, err := a.social.PublishUpdate(ctx, title, content, a.cfg.Social.Channel)
	if err != nil {
		return "", err
	}
	slog.Info("published pnl update", "post_id", postID)
	return postID, nil
}

// Feed returns the n most recent public posts.
func (a *Agent) Feed(ctx context.Context, n int) ([]social.Post, error) {
	return a.social.GetPosts(ctx, n)
}

func composeUpdate(s ledger.Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Week ending %s.\n\n", time.Now().UTC().Format("2006-01-02"))
	fmt.Fprintf(&b, "Realized PnL (7d): $%.2f\n", s.RealizedPnLWindow)
	fmt.Fprintf(&b, "Cumulative PnL: $%.2f\n", s.CumulativePnL)
	fmt.Fprintf(&b, "Max drawdown (all time): $%.2f\n", s.MaxDrawdown)
	fmt.Fprintf(&b, "Closed trades to date: %d\n", s.TotalClosedTrades)
	b.WriteString("\nEvery trade is recorded in an append-only ledger before this post is written.")
	return b.String()
}
