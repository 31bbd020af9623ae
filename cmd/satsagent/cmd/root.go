package cmd

import (
	"github.com/spf13/cobra"

	"github.com/rustyeddy/satsagent/agent"
	"github.com/rustyeddy/satsagent/config"
)

var rootCmd = &cobra.Command{
	Use:   "satsagent",
	Short: "An autonomous BTC trading agent with a public append-only ledger",
	Long: `Satsagent runs a BTC perp basis strategy and records every trade,
decision and error in an append-only event ledger before anything else
happens.

It provides tools for:
  - Running the basis strategy against a perps exchange (or a dry-run sim)
  - Computing PnL summaries and drawdown from the ledger
  - Publishing weekly performance updates to the agent social network
  - Quoting cross-chain USDC transfers for treasury moves
  - Generating ERC-8004 registration metadata

Complete documentation is available at https://github.com/rustyeddy/satsagent`,
}

var cfgFile string

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "f", "", "path to config file (YAML or JSON)")
}

func loadConfig() (*config.Config, error) {
	if cfgFile != "" {
		return config.LoadFromFile(cfgFile)
	}
	return config.Load()
}

// withAgent runs fn with a fully wired agent and closes it afterwards.
func withAgent(fn func(a *agent.Agent) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	a, err := agent.New(cfg)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}
