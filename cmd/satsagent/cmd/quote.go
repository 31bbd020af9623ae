package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/satsagent/agent"
	"github.com/rustyeddy/satsagent/bridge"
)

var quoteReq bridge.QuoteRequest

var quoteCmd = &cobra.Command{
	Use:   "quote",
	Short: "Quote a cross-chain token transfer",
	Long: `Fetch the optimal bridging route for a transfer, e.g. moving USDC
between chains for treasury rebalancing.

Example:
  satsagent quote --from-chain arbitrum --to-chain base \
    --token USDC --amount 1000000 --address 0x...`,
	RunE: runQuote,
}

var quoteToken string

func init() {
	rootCmd.AddCommand(quoteCmd)

	quoteCmd.Flags().StringVar(&quoteReq.FromChain, "from-chain", "", "source chain name or id (required)")
	quoteCmd.Flags().StringVar(&quoteReq.ToChain, "to-chain", "", "destination chain name or id (required)")
	quoteCmd.Flags().StringVar(&quoteToken, "token", "USDC", "token symbol or address on both chains")
	quoteCmd.Flags().StringVar(&quoteReq.FromAmount, "amount", "", "amount in the token's smallest unit (required)")
	quoteCmd.Flags().StringVar(&quoteReq.FromAddress, "address", "", "sending wallet address")
	quoteCmd.Flags().Float64Var(&quoteReq.Slippage, "slippage", 0.005, "max slippage as a decimal")
	quoteCmd.MarkFlagRequired("from-chain")
	quoteCmd.MarkFlagRequired("to-chain")
	quoteCmd.MarkFlagRequired("amount")
}

func runQuote(cmd *cobra.Command, args []string) error {
	return withAgent(func(a *agent.Agent) error {
		quoteReq.FromToken = quoteToken
		quoteReq.ToToken = quoteToken

		quote, err := a.Bridge().GetQuote(cmd.Context(), quoteReq)
		if err != nil {
			return err
		}

		fmt.Printf("Route via %s:\n", quote.Tool)
		fmt.Printf("  Send:     %s\n", quote.FromAmount)
		fmt.Printf("  Receive:  %s (min %s)\n", quote.ToAmount, quote.ToAmountMin)
		fmt.Printf("  Gas:      $%.2f   Fees: $%.2f\n", quote.GasCostsUSD, quote.FeeCostsUSD)
		fmt.Printf("  Duration: ~%.0fs\n", quote.DurationSec)

		routes, err := a.Bridge().GetRoutes(cmd.Context(), quoteReq)
		if err == nil && len(routes) > 1 {
			fmt.Println("\nAlternatives:")
			for _, r := range routes {
				tags := ""
				if len(r.Tags) > 0 {
					tags = " [" + strings.Join(r.Tags, ", ") + "]"
				}
				fmt.Printf("  %d. receive %s, gas $%s, %d step(s)%s\n",
					r.Rank, r.ToAmount, r.GasUSD, r.Steps, tags)
			}
		}
		return nil
	})
}
