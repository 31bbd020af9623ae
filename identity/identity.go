// Package identity builds ERC-8004 agent registration metadata: the JSON
// document an agent registry points at to describe who the agent is and
// where its services live.
package identity

import (
	"encoding/json"
	"fmt"
	"strings"
)

// RegistrationType is the ERC-8004 registration schema identifier.
const RegistrationType = "https://eips.ethereum.org/EIPS/eip-8004#registration-v1"

// Service is one endpoint the agent exposes.
type Service struct {
	Name     string `json:"name"`
	Endpoint string `json:"endpoint"`
	Version  string `json:"version,omitempty"`
}

// Metadata is the agent's registration document.
type Metadata struct {
	Type            string            `json:"type"`
	Name            string            `json:"name"`
	Description     string            `json:"description"`
	Image           string            `json:"image,omitempty"`
	Services        []Service         `json:"services,omitempty"`
	ExternalKeys    map[string]string `json:"externalKeys,omitempty"`
	SupportedTrust  []string          `json:"supportedTrust,omitempty"`
	Active          bool              `json:"active"`
	RegistrationURI string            `json:"registrationUri,omitempty"`
}

// Params configures the metadata builder. Empty fields are omitted from
// the document rather than emitted blank.
type Params struct {
	Name          string
	Description   string
	Image         string
	MCPEndpoint   string
	SocialProfile string
	LedgerURL     string
	BTCPubKey     string
	EVMAddress    string
}

// Build assembles a registration document from params.
func Build(p Params) (Metadata, error) {
	if p.Name == "" {
		return Metadata{}, fmt.Errorf("build identity metadata: name is required")
	}
	if p.Description == "" {
		p.Description = "Autonomous BTC trading agent with an append-only public trade ledger."
	}

	md := Metadata{
		Type:           RegistrationType,
		Name:           p.Name,
		Description:    p.Description,
		Image:          p.Image,
		SupportedTrust: []string{"reputation"},
		Active:         true,
	}

	if p.MCPEndpoint != "" {
		md.Services = append(md.Services, Service{Name: "MCP", Endpoint: p.MCPEndpoint, Version: "2025-06-18"})
	}
	if p.SocialProfile != "" {
		md.Services = append(md.Services, Service{Name: "social", Endpoint: p.SocialProfile})
	}
	if p.LedgerURL != "" {
		md.Services = append(md.Services, Service{Name: "trade-ledger", Endpoint: p.LedgerURL})
	}

	keys := map[string]string{}
	if p.BTCPubKey != "" {
		keys["btc_pubkey"] = p.BTCPubKey
	}
	if p.EVMAddress != "" {
		keys["evm_address"] = strings.ToLower(p.EVMAddress)
	}
	if len(keys) > 0 {
		md.ExternalKeys = keys
	}
	return md, nil
}

// JSON renders the document with stable two-space indentation, the form
// registries and IPFS pins expect.
func (m Metadata) JSON() ([]byte, error) {
	return json.MarshalIndent(m, "", "  ")
}
