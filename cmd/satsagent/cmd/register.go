package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/satsagent/identity"
)

var (
	registerOut    string
	registerParams identity.Params
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Generate ERC-8004 agent registration metadata",
	Long: `Build the registration JSON an agent registry points at. The agent
name and description come from the config; endpoints are given as flags.

Example:
  satsagent register --mcp https://agent.example.com/mcp -o registration.json`,
	RunE: runRegister,
}

func init() {
	rootCmd.AddCommand(registerCmd)

	registerCmd.Flags().StringVarP(&registerOut, "out", "o", "", "write JSON to this file instead of stdout")
	registerCmd.Flags().StringVar(&registerParams.MCPEndpoint, "mcp", "", "MCP service endpoint URL")
	registerCmd.Flags().StringVar(&registerParams.SocialProfile, "social", "", "social profile URL")
	registerCmd.Flags().StringVar(&registerParams.LedgerURL, "ledger-url", "", "public trade-ledger URL")
	registerCmd.Flags().StringVar(&registerParams.EVMAddress, "evm-address", "", "agent EVM address")
	registerCmd.Flags().StringVar(&registerParams.Image, "image", "", "agent image URL")
}

func runRegister(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	registerParams.Name = cfg.Agent.Name
	registerParams.Description = cfg.Agent.Description
	registerParams.BTCPubKey = cfg.Agent.BTCPubKey

	md, err := identity.Build(registerParams)
	if err != nil {
		return err
	}
	data, err := md.JSON()
	if err != nil {
		return err
	}

	if registerOut != "" {
		if err := os.WriteFile(registerOut, data, 0644); err != nil {
			return fmt.Errorf("write registration file: %w", err)
		}
		fmt.Printf("Wrote registration metadata to %s\n", registerOut)
		return nil
	}
	fmt.Println(string(data))
	return nil
}
