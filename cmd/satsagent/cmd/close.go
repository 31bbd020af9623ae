package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/satsagent/agent"
)

var closeCmd = &cobra.Command{
	Use:   "close",
	Short: "Close all open positions and record the trade close",
	RunE:  runClose,
}

func init() {
	rootCmd.AddCommand(closeCmd)
}

func runClose(cmd *cobra.Command, args []string) error {
	return withAgent(func(a *agent.Agent) error {
		results, err := a.ClosePositions(cmd.Context())
		if err != nil {
			return err
		}
		if len(results) == 0 {
			fmt.Println("No open positions to close")
			return nil
		}
		for _, r := range results {
			fmt.Printf("Closed %s: %s %.6f (order %s, %s)\n", r.Symbol, r.Side, r.Size, r.OrderID, r.Status)
		}
		return nil
	})
}
