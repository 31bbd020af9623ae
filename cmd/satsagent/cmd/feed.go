package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/satsagent/agent"
)

var feedLimit int

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "Show recent posts from the agent social network",
	RunE:  runFeed,
}

func init() {
	rootCmd.AddCommand(feedCmd)
	feedCmd.Flags().IntVarP(&feedLimit, "limit", "n", 10, "number of posts to show")
}

func runFeed(cmd *cobra.Command, args []string) error {
	return withAgent(func(a *agent.Agent) error {
		posts, err := a.Feed(cmd.Context(), feedLimit)
		if err != nil {
			return err
		}
		if len(posts) == 0 {
			fmt.Println("No posts (mock mode returns an empty feed)")
			return nil
		}
		for _, p := range posts {
			fmt.Printf("[%s] %s\n", p.ID, p.Title)
			if p.Content != "" {
				fmt.Printf("    %s\n", p.Content)
			}
		}
		return nil
	})
}
