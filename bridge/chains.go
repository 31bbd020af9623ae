package bridge

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// chainIDs maps well-known chain names to numeric chain IDs.
var chainIDs = map[string]int{
	"ethereum":  1,
	"eth":       1,
	"optimism":  10,
	"op":        10,
	"bsc":       56,
	"gnosis":    100,
	"polygon":   137,
	"matic":     137,
	"fantom":    250,
	"zksync":    324,
	"mantle":    5000,
	"base":      8453,
	"mode":      34443,
	"arbitrum":  42161,
	"arb":       42161,
	"celo":      42220,
	"avalanche": 43114,
	"avax":      43114,
	"linea":     59144,
	"blast":     81457,
	"scroll":    534352,
}

// usdcAddresses maps chain IDs to the canonical USDC contract on that chain.
var usdcAddresses = map[int]string{
	1:     "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48",
	10:    "0x0b2C639c533813f4Aa9D7837CAf62653d097Ff85",
	56:    "0x8AC76a51cc950d9822D68b83fE1Ad97B32Cd580d",
	137:   "0x3c499c542cEF5E3811e1192ce70d8cC03d5c3359",
	8453:  "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913",
	42161: "0xaf88d065e77c8cC2239327C5EDb3A432268e5831",
	43114: "0xB97EF9Ef8734C71904D8002F8b6Bc66Dd9c48a6E",
}

// NativeToken is the zero address, the convention for a chain's gas token.
const NativeToken = "0x0000000000000000000000000000000000000000"

// nativeSymbols are token symbols that alias the chain's native token.
var nativeSymbols = map[string]bool{
	"ETH":   true,
	"MATIC": true,
	"BNB":   true,
	"AVAX":  true,
}

// ResolveChainID resolves a chain name or numeric string to a chain ID.
func ResolveChainID(chain string) (int, error) {
	key := strings.ToLower(strings.TrimSpace(chain))
	if n, err := strconv.Atoi(key); err == nil {
		return n, nil
	}
	if id, ok := chainIDs[key]; ok {
		return id, nil
	}

	names := make([]string, 0, len(chainIDs))
	for name := range chainIDs {
		names = append(names, name)
	}
	sort.Strings(names)
	return 0, fmt.Errorf("unknown chain %q (use a numeric id or one of: %s)", chain, strings.Join(names, ", "))
}

// ResolveToken resolves a token symbol to an address where one is known.
// Raw 0x addresses pass through unchanged; unrecognised symbols are passed
// through upper-cased since the quote endpoint also accepts symbols.
func ResolveToken(symbolOrAddress string, chainID int) string {
	if strings.HasPrefix(symbolOrAddress, "0x") && len(symbolOrAddress) == 42 {
		return symbolOrAddress
	}

	upper := strings.ToUpper(strings.TrimSpace(symbolOrAddress))
	if nativeSymbols[upper] {
		return NativeToken
	}
	if upper == "USDC" {
		if addr, ok := usdcAddresses[chainID]; ok {
			return addr
		}
	}
	return upper
}
