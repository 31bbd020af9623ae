package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/satsagent/agent"
)

var (
	eventsLimit int
	eventsType  string
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Show recent ledger events, newest first",
	RunE:  runEvents,
}

func init() {
	rootCmd.AddCommand(eventsCmd)
	eventsCmd.Flags().IntVarP(&eventsLimit, "limit", "n", 20, "number of events to show")
	eventsCmd.Flags().StringVarP(&eventsType, "type", "t", "", "filter by event type")
}

func runEvents(cmd *cobra.Command, args []string) error {
	return withAgent(func(a *agent.Agent) error {
		events, err := a.Log().Events(cmd.Context(), eventsLimit, eventsType)
		if err != nil {
			return err
		}
		if len(events) == 0 {
			fmt.Println("Ledger is empty")
			return nil
		}
		for _, ev := range events {
			payload, _ := json.Marshal(ev.Payload)
			fmt.Printf("#%d  %s  %-18s %s\n",
				ev.Seq, ev.Time().Format("2006-01-02 15:04:05"), ev.Type, payload)
		}
		return nil
	})
}
