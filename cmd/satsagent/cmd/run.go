package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/satsagent/agent"
	"github.com/rustyeddy/satsagent/strategy"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one cycle of the basis strategy",
	Long: `Evaluate the funding edge for the configured symbol and enter the
perp leg when it meets the target. The decision is recorded in the ledger
whether or not a trade happens.

Example:
  satsagent run -f examples/configs/basis.yaml`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	return withAgent(func(a *agent.Agent) error {
		dec, err := a.RunBasis(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Printf("Decision %s: %s\n", dec.ID, dec.Action)
		switch dec.Action {
		case strategy.ActionNoTrade:
			fmt.Printf("  %s\n", dec.Reason)
		case strategy.ActionOrderPlaced:
			fmt.Printf("  Order: %s (%v %v @ mark)\n", dec.OrderID, dec.Payload["side"], dec.Payload["size"])
			fmt.Printf("  Funding edge: %v bps annualised\n", dec.Payload["funding_annual_bps"])
		}
		return nil
	})
}
