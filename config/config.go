package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the complete agent configuration
type Config struct {
	Agent    AgentConfig    `json:"agent" yaml:"agent"`
	Ledger   LedgerConfig   `json:"ledger" yaml:"ledger"`
	Exchange ExchangeConfig `json:"exchange" yaml:"exchange"`
	Strategy StrategyConfig `json:"strategy" yaml:"strategy"`
	Social   SocialConfig   `json:"social" yaml:"social"`
	Bridge   BridgeConfig   `json:"bridge" yaml:"bridge"`
}

// AgentConfig contains the agent's identity parameters
type AgentConfig struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	BTCPubKey   string `json:"btc_pubkey,omitempty" yaml:"btc_pubkey,omitempty"`
}

// LedgerConfig contains event-store parameters
type LedgerConfig struct {
	DBPath string `json:"db_path" yaml:"db_path"`
}

// ExchangeConfig contains exchange connection parameters. The API token is
// taken from the environment, never from the config file.
type ExchangeConfig struct {
	Address string `json:"address,omitempty" yaml:"address,omitempty"`
	Testnet bool   `json:"testnet" yaml:"testnet"`
	DryRun  bool   `json:"dry_run" yaml:"dry_run"`
	Token   string `json:"-" yaml:"-"`
}

// StrategyConfig contains basis-strategy parameters
type StrategyConfig struct {
	Symbol        string  `json:"symbol" yaml:"symbol"`
	IsLongBasis   bool    `json:"is_long_basis" yaml:"is_long_basis"`
	TargetEdgeBps float64 `json:"target_edge_bps" yaml:"target_edge_bps"`
	MaxLeverage   float64 `json:"max_leverage" yaml:"max_leverage"`
	NotionalUSD   float64 `json:"notional_usd" yaml:"notional_usd"`
}

// SocialConfig contains posting parameters. The API key comes from the
// environment; without one the social client runs in mock mode.
type SocialConfig struct {
	Channel string `json:"channel,omitempty" yaml:"channel,omitempty"`
	APIKey  string `json:"-" yaml:"-"`
}

// BridgeConfig contains cross-chain quoting parameters
type BridgeConfig struct {
	WalletAddress string `json:"wallet_address,omitempty" yaml:"wallet_address,omitempty"`
	APIKey        string `json:"-" yaml:"-"`
}

// LoadFromFile loads configuration from a file (JSON or YAML based on
// content), then overlays secrets from the environment.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	cfg.loadEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Load returns defaults overlaid with environment secrets, for running
// without a config file.
func Load() (*Config, error) {
	cfg := Default()
	cfg.loadEnv()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// loadEnv pulls secrets and overrides from the environment. A .env file in
// the working directory is honoured but never required.
func (c *Config) loadEnv() {
	_ = godotenv.Load()

	if v := os.Getenv("EXCHANGE_API_TOKEN"); v != "" {
		c.Exchange.Token = v
	}
	if v := os.Getenv("EXCHANGE_ADDRESS"); v != "" {
		c.Exchange.Address = v
	}
	if v := os.Getenv("SOCIAL_API_KEY"); v != "" {
		c.Social.APIKey = v
	}
	if v := os.Getenv("BRIDGE_API_KEY"); v != "" {
		c.Bridge.APIKey = v
	}
	if v := os.Getenv("LEDGER_DB_PATH"); v != "" {
		c.Ledger.DBPath = v
	}
	if v := os.Getenv("EXCHANGE_TESTNET"); v != "" {
		c.Exchange.Testnet = strings.EqualFold(v, "true") || v == "1"
	}
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Agent.Name == "" {
		return fmt.Errorf("agent.name is required")
	}
	if c.Ledger.DBPath == "" {
		return fmt.Errorf("ledger.db_path is required")
	}
	if c.Strategy.Symbol == "" {
		return fmt.Errorf("strategy.symbol is required")
	}
	if c.Strategy.TargetEdgeBps <= 0 {
		return fmt.Errorf("strategy.target_edge_bps must be positive")
	}
	if c.Strategy.MaxLeverage <= 0 || c.Strategy.MaxLeverage > 25 {
		return fmt.Errorf("strategy.max_leverage must be between 0 and 25")
	}
	if c.Strategy.NotionalUSD <= 0 {
		return fmt.Errorf("strategy.notional_usd must be positive")
	}
	if !c.Exchange.DryRun && c.Exchange.Address == "" {
		return fmt.Errorf("exchange.address is required for live trading")
	}
	return nil
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Agent: AgentConfig{
			Name: "satsagent",
		},
		Ledger: LedgerConfig{
			DBPath: "./satsagent.db",
		},
		Exchange: ExchangeConfig{
			Testnet: true,
			DryRun:  true,
		},
		Strategy: StrategyConfig{
			Symbol:        "BTC",
			IsLongBasis:   true,
			TargetEdgeBps: 10,
			MaxLeverage:   3,
			NotionalUSD:   10000,
		},
		Social: SocialConfig{
			Channel: "aithoughts",
		},
	}
}
