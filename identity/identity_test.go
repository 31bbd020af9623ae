package identity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild(t *testing.T) {
	t.Parallel()

	md, err := Build(Params{
		Name:          "satsagent",
		Description:   "BTC basis trader",
		MCPEndpoint:   "https://agent.example.com/mcp",
		SocialProfile: "https://moltbookai.net/u/satsagent",
		LedgerURL:     "https://agent.example.com/ledger",
		BTCPubKey:     "02deadbeef",
		EVMAddress:    "0xABCDEF0123456789abcdef0123456789ABCDEF01",
	})
	require.NoError(t, err)

	assert.Equal(t, RegistrationType, md.Type)
	assert.Equal(t, "satsagent", md.Name)
	assert.True(t, md.Active)
	require.Len(t, md.Services, 3)
	assert.Equal(t, "MCP", md.Services[0].Name)
	assert.Equal(t, "trade-ledger", md.Services[2].Name)
	assert.Equal(t, "02deadbeef", md.ExternalKeys["btc_pubkey"])
	assert.Equal(t, "0xabcdef0123456789abcdef0123456789abcdef01", md.ExternalKeys["evm_address"])
}

func TestBuildRequiresName(t *testing.T) {
	t.Parallel()

	_, err := Build(Params{})
	assert.Error(t, err)
}

func TestBuildOmitsEmptySections(t *testing.T) {
	t.Parallel()

	md, err := Build(Params{Name: "satsagent"})
	require.NoError(t, err)
	assert.NotEmpty(t, md.Description, "default description applied")

	raw, err := md.JSON()
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	_, hasServices := decoded["services"]
	assert.False(t, hasServices)
	_, hasKeys := decoded["externalKeys"]
	assert.False(t, hasKeys)
}
