package exchange

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

const (
	// MainnetURL is the production perps API endpoint.
	MainnetURL = "https://api.hyperliquid.xyz"
	// TestnetURL is the testnet perps API endpoint.
	TestnetURL = "https://api.hyperliquid-testnet.xyz"
)

// HTTP is a REST client for the perps exchange. Market data and account
// state need only a wallet address; order placement additionally needs a
// signing token for the agent wallet.
type HTTP struct {
	baseURL    string
	address    string
	token      string
	network    string
	httpClient *http.Client
}

// NewClient creates a perps API client. testnet selects the test
// environment; address is the wallet to read account state for; token
// authorizes trading operations and may be empty for read-only use.
func NewClient(address, token string, testnet bool) *HTTP {
	baseURL := MainnetURL
	network := "mainnet"
	if testnet {
		baseURL = TestnetURL
		network = "testnet"
	}

	return &HTTP{
		baseURL: baseURL,
		address: address,
		token:   token,
		network: network,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Network reports which environment the client targets.
func (c *HTTP) Network() string { return c.network }

type assetCtx struct {
	MarkPx       string `json:"markPx"`
	OraclePx     string `json:"oraclePx"`
	Funding      string `json:"funding"`
	OpenInterest string `json:"openInterest"`
	DayNtlVlm    string `json:"dayNtlVlm"`
	Premium      string `json:"premium"`
}

type metaAsset struct {
	Name string `json:"name"`
}

type metaResponse struct {
	Universe []metaAsset `json:"universe"`
}

// GetMarketInfo fetches mark/index prices, funding, and open interest for
// one perp symbol.
func (c *HTTP) GetMarketInfo(ctx context.Context, symbol string) (MarketInfo, error) {
	var resp []json.RawMessage
	err := c.post(ctx, "/info", map[string]any{"type": "metaAndAssetCtxs"}, &resp)
	if err != nil {
		return MarketInfo{}, err
	}
	if len(resp) < 2 {
		return MarketInfo{}, &Error{Op: "market info", Detail: "malformed metaAndAssetCtxs response"}
	}

	var meta metaResponse
	if err := json.Unmarshal(resp[0], &meta); err != nil {
		return MarketInfo{}, &Error{Op: "market info", Detail: err.Error()}
	}
	var ctxs []assetCtx
	if err := json.Unmarshal(resp[1], &ctxs); err != nil {
		return MarketInfo{}, &Error{Op: "market info", Detail: err.Error()}
	}

	idx := -1
	for i, asset := range meta.Universe {
		if asset.Name == symbol {
			idx = i
			break
		}
	}
	if idx < 0 || idx >= len(ctxs) {
		return MarketInfo{}, &Error{Op: "market info", Detail: fmt.Sprintf("%s not found in universe", symbol)}
	}

	a := ctxs[idx]
	return MarketInfo{
		Symbol:       symbol,
		MarkPrice:    parseFloat(a.MarkPx),
		IndexPrice:   parseFloat(a.OraclePx),
		FundingRate:  parseFloat(a.Funding),
		OpenInterest: parseFloat(a.OpenInterest),
		DayVolume:    parseFloat(a.DayNtlVlm),
		Premium:      parseFloat(a.Premium),
	}, nil
}

type clearinghouseState struct {
	AssetPositions []struct {
		Position struct {
			Coin          string `json:"coin"`
			Szi           string `json:"szi"`
			EntryPx       string `json:"entryPx"`
			MarkPx        string `json:"markPx"`
			UnrealizedPnl string `json:"unrealizedPnl"`
			MarginUsed    string `json:"marginUsed"`
			Leverage      struct {
				Value float64 `json:"value"`
			} `json:"leverage"`
		} `json:"position"`
	} `json:"assetPositions"`
}

// GetPositions returns the open perp positions for the configured wallet.
func (c *HTTP) GetPositions(ctx context.Context) ([]Position, error) {
	if c.address == "" {
		return nil, &Error{Op: "positions", Detail: "wallet address is required for account queries"}
	}

	var state clearinghouseState
	err := c.post(ctx, "/info", map[string]any{
		"type": "clearinghouseState",
		"user": c.address,
	}, &state)
	if err != nil {
		return nil, err
	}

	var out []Position
	for _, ap := range state.AssetPositions {
		p := ap.Position
		size := parseFloat(p.Szi)
		if size == 0 {
			continue
		}
		out = append(out, Position{
			Symbol:        p.Coin,
			Size:          size,
			EntryPrice:    parseFloat(p.EntryPx),
			MarkPrice:     parseFloat(p.MarkPx),
			UnrealizedPnL: parseFloat(p.UnrealizedPnl),
			Leverage:      p.Leverage.Value,
			MarginUsed:    parseFloat(p.MarginUsed),
		})
	}
	return out, nil
}

type orderResponse struct {
	OrderID string `json:"orderId"`
	Side    string `json:"side"`
	Status  string `json:"status"`
}

// PlaceOrder submits a market or limit order for the agent wallet.
func (c *HTTP) PlaceOrder(ctx context.Context, symbol string, isBuy bool, size float64, orderType string) (OrderResult, error) {
	if c.token == "" {
		return OrderResult{}, &Error{Op: "place order", Detail: "trading token is required for order placement"}
	}

	side := "sell"
	if isBuy {
		side = "buy"
	}

	var resp orderResponse
	err := c.post(ctx, "/exchange", map[string]any{
		"type":      "order",
		"symbol":    symbol,
		"side":      side,
		"size":      size,
		"orderType": orderType,
	}, &resp)
	if err != nil {
		return OrderResult{}, err
	}

	return OrderResult{
		OrderID: resp.OrderID,
		Symbol:  symbol,
		Side:    side,
		Size:    size,
		Status:  resp.Status,
	}, nil
}

// CloseAllPositions closes every open position for symbol with market
// orders, one per position, and returns the closure results in order.
func (c *HTTP) CloseAllPositions(ctx context.Context, symbol string) ([]OrderResult, error) {
	positions, err := c.GetPositions(ctx)
	if err != nil {
		return nil, err
	}

	var results []OrderResult
	for _, pos := range positions {
		if pos.Symbol != symbol {
			continue
		}
		// A long closes with a sell, a short with a buy.
		res, err := c.PlaceOrder(ctx, symbol, pos.Size < 0, abs(pos.Size), "market")
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

// IsConnected reports whether the exchange API is reachable.
func (c *HTTP) IsConnected(ctx context.Context) bool {
	var resp metaResponse
	err := c.post(ctx, "/info", map[string]any{"type": "meta"}, &resp)
	return err == nil
}

// Close releases client resources.
func (c *HTTP) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

func (c *HTTP) post(ctx context.Context, path string, body any, out any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return &Error{Op: path, Detail: err.Error()}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return &Error{Op: path, Detail: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &Error{Op: path, Detail: err.Error()}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Op: path, Status: resp.StatusCode, Detail: err.Error()}
	}
	if resp.StatusCode != http.StatusOK {
		return &Error{Op: path, Status: resp.StatusCode, Detail: string(data)}
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return &Error{Op: path, Status: resp.StatusCode, Detail: err.Error()}
		}
	}
	return nil
}

// parseFloat converts the API's string-encoded numbers, treating absent or
// malformed values as zero.
func parseFloat(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
