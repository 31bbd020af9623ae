package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

const version = "0.3.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("satsagent version %s\n", version)
		fmt.Println("An autonomous BTC trading agent with a public append-only ledger")
		fmt.Println("https://github.com/rustyeddy/satsagent")
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
