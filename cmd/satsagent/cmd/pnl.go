package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/satsagent/agent"
	"github.com/rustyeddy/satsagent/ledger"
)

var pnlCmd = &cobra.Command{
	Use:   "pnl",
	Short: "Compute PnL summaries from the ledger and record a snapshot",
	Long: `Replay the full trade history to compute cumulative PnL and max
drawdown, plus realized PnL over the last day and week. The daily summary
is appended to the ledger as a pnl_snapshot event.`,
	RunE: runPnL,
}

func init() {
	rootCmd.AddCommand(pnlCmd)
}

func runPnL(cmd *cobra.Command, args []string) error {
	return withAgent(func(a *agent.Agent) error {
		daily, weekly, err := a.PnLSnapshot(cmd.Context())
		if err != nil {
			return err
		}

		printSummary("Last 24h", daily)
		printSummary("Last 7d", weekly)
		return nil
	})
}

func printSummary(label string, s ledger.Summary) {
	fmt.Printf("%s:\n", label)
	fmt.Printf("  Realized PnL (window):  $%.4f\n", s.RealizedPnLWindow)
	fmt.Printf("  Cumulative PnL:         $%.4f\n", s.CumulativePnL)
	fmt.Printf("  Max drawdown (all time): $%.4f\n", s.MaxDrawdown)
	fmt.Printf("  Closed trades to date:  %d\n", s.TotalClosedTrades)
}
