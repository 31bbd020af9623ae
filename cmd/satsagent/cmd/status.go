package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/satsagent/agent"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show connection state, open positions and the latest snapshot",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	return withAgent(func(a *agent.Agent) error {
		st, err := a.Status(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Printf("Agent: %s\n", st.Name)
		fmt.Printf("Exchange connected: %v (dry run: %v)\n", st.Connected, st.DryRun)
		fmt.Printf("Recent events: %d\n", st.EventCount)

		if len(st.Positions) == 0 {
			fmt.Println("No open positions")
		} else {
			fmt.Println("Open positions:")
			for _, pos := range st.Positions {
				fmt.Printf("  %-6s size %.6f  entry %.2f  mark %.2f  uPnL $%.2f\n",
					pos.Symbol, pos.Size, pos.EntryPrice, pos.MarkPrice, pos.UnrealizedPnL)
			}
		}

		if st.LatestSnapshot != nil {
			fmt.Printf("Latest PnL snapshot: seq %d at %s\n",
				st.LatestSnapshot.Seq, st.LatestSnapshot.Time().Format("2006-01-02 15:04:05 MST"))
		} else {
			fmt.Println("No PnL snapshot recorded yet")
		}
		return nil
	})
}
