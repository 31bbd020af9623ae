package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/satsagent/agent"
)

var shareCmd = &cobra.Command{
	Use:   "share",
	Short: "Publish the weekly PnL update to the agent social network",
	Long: `Compose a performance update from the last 7 days of the ledger and
post it. Without SOCIAL_API_KEY set the post is mocked and nothing leaves
the machine.`,
	RunE: runShare,
}

func init() {
	rootCmd.AddCommand(shareCmd)
}

func runShare(cmd *cobra.Command, args []string) error {
	return withAgent(func(a *agent.Agent) error {
		postID, err := a.SharePnL(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("Published update: %s\n", postID)
		return nil
	})
}
