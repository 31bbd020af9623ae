// Package bridge is a client for the Li.Fi cross-chain liquidity API.
// It is pure request/response: nothing here touches the ledger.
package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DefaultURL is the public Li.Fi API endpoint. No key is required; the
// public rate limit is 10 req/s per IP.
const DefaultURL = "https://li.quest/v1"

// Error reports a rejected bridge API call.
type Error struct {
	Op     string
	Status int
	Detail string
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("bridge %s: HTTP %d: %s", e.Op, e.Status, e.Detail)
	}
	return fmt.Sprintf("bridge %s: %s", e.Op, e.Detail)
}

// Client talks to the Li.Fi REST API.
type Client struct {
	baseURL    string
	apiKey     string
	integrator string
	httpClient *http.Client
}

// NewClient creates a bridge client. apiKey may be empty for public-rate
// access.
func NewClient(apiKey string) *Client {
	return &Client{
		baseURL:    DefaultURL,
		apiKey:     apiKey,
		integrator: "satsagent",
		httpClient: &http.Client{
			Timeout: 20 * time.Second,
		},
	}
}

// QuoteRequest describes a cross-chain (or same-chain) transfer to quote.
type QuoteRequest struct {
	FromChain   string // chain name or numeric id
	ToChain     string
	FromToken   string // token symbol or 0x address
	ToToken     string
	FromAmount  string // amount in smallest unit
	FromAddress string
	Slippage    float64 // decimal, e.g. 0.005
}

// Quote is the subset of a Li.Fi quote the agent cares about, plus the raw
// response for callers that need more.
type Quote struct {
	Tool           string
	FromAmount     string
	ToAmount       string
	ToAmountMin    string
	GasCostsUSD    float64
	FeeCostsUSD    float64
	DurationSec    float64
	HasTransaction bool
	Raw            map[string]any
}

// GetQuote fetches the optimal single route for a transfer.
func (c *Client) GetQuote(ctx context.Context, req QuoteRequest) (Quote, error) {
	fc, err := ResolveChainID(req.FromChain)
	if err != nil {
		return Quote{}, &Error{Op: "quote", Detail: err.Error()}
	}
	tc, err := ResolveChainID(req.ToChain)
	if err != nil {
		return Quote{}, &Error{Op: "quote", Detail: err.Error()}
	}

	slippage := req.Slippage
	if slippage == 0 {
		slippage = 0.005
	}

	params := url.Values{}
	params.Set("fromChain", strconv.Itoa(fc))
	params.Set("toChain", strconv.Itoa(tc))
	params.Set("fromToken", ResolveToken(req.FromToken, fc))
	params.Set("toToken", ResolveToken(req.ToToken, tc))
	params.Set("fromAmount", req.FromAmount)
	params.Set("fromAddress", req.FromAddress)
	params.Set("slippage", strconv.FormatFloat(slippage, 'f', -1, 64))
	params.Set("integrator", c.integrator)

	var raw map[string]any
	if err := c.get(ctx, "/quote", params, &raw); err != nil {
		return Quote{}, err
	}

	estimate, _ := raw["estimate"].(map[string]any)
	action, _ := raw["action"].(map[string]any)
	_, hasTx := raw["transactionRequest"]

	q := Quote{
		Tool:           str(raw["tool"]),
		FromAmount:     str(action["fromAmount"]),
		ToAmount:       str(estimate["toAmount"]),
		ToAmountMin:    str(estimate["toAmountMin"]),
		GasCostsUSD:    sumUSD(estimate["gasCosts"]),
		FeeCostsUSD:    sumUSD(estimate["feeCosts"]),
		HasTransaction: hasTx,
		Raw:            raw,
	}
	if d, ok := estimate["executionDuration"].(float64); ok {
		q.DurationSec = d
	}
	return q, nil
}

// RouteSummary is a compact view of one route option.
type RouteSummary struct {
	Rank        int
	ToAmount    string
	ToAmountMin string
	GasUSD      string
	Steps       int
	Tags        []string
}

// GetRoutes fetches multiple route options so cost/speed tradeoffs can be
// compared before executing. At most the top five routes are summarised.
func (c *Client) GetRoutes(ctx context.Context, req QuoteRequest) ([]RouteSummary, error) {
	fc, err := ResolveChainID(req.FromChain)
	if err != nil {
		return nil, &Error{Op: "routes", Detail: err.Error()}
	}
	tc, err := ResolveChainID(req.ToChain)
	if err != nil {
		return nil, &Error{Op: "routes", Detail: err.Error()}
	}

	slippage := req.Slippage
	if slippage == 0 {
		slippage = 0.005
	}

	body := map[string]any{
		"fromChainId":      fc,
		"toChainId":        tc,
		"fromTokenAddress": ResolveToken(req.FromToken, fc),
		"toTokenAddress":   ResolveToken(req.ToToken, tc),
		"fromAmount":       req.FromAmount,
		"fromAddress":      req.FromAddress,
		"options": map[string]any{
			"slippage":   slippage,
			"integrator": c.integrator,
		},
	}

	var raw struct {
		Routes []map[string]any `json:"routes"`
	}
	if err := c.post(ctx, "/advanced/routes", body, &raw); err != nil {
		return nil, err
	}

	var out []RouteSummary
	for i, route := range raw.Routes {
		if i >= 5 {
			break
		}
		steps, _ := route["steps"].([]any)
		var tags []string
		if rawTags, ok := route["tags"].([]any); ok {
			for _, tag := range rawTags {
				tags = append(tags, str(tag))
			}
		}
		out = append(out, RouteSummary{
			Rank:        i + 1,
			ToAmount:    str(route["toAmount"]),
			ToAmountMin: str(route["toAmountMin"]),
			GasUSD:      str(route["gasCostUSD"]),
			Steps:       len(steps),
			Tags:        tags,
		})
	}
	return out, nil
}

// TransferStatus is the state of an in-flight cross-chain transfer.
type TransferStatus struct {
	Status      string // NOT_FOUND, PENDING, DONE, FAILED
	Substatus   string // on DONE: COMPLETED, PARTIAL, REFUNDED
	SendingTx   string
	ReceivingTx string
	Bridge      string
}

// GetStatus checks the status of a transfer by source-chain tx hash.
func (c *Client) GetStatus(ctx context.Context, txHash, bridgeName string) (TransferStatus, error) {
	params := url.Values{}
	params.Set("txHash", txHash)
	if bridgeName != "" {
		params.Set("bridge", bridgeName)
	}

	var raw map[string]any
	if err := c.get(ctx, "/status", params, &raw); err != nil {
		return TransferStatus{}, err
	}

	status := TransferStatus{
		Status:    str(raw["status"]),
		Substatus: str(raw["substatus"]),
		Bridge:    str(raw["tool"]),
	}
	if sending, ok := raw["sending"].(map[string]any); ok {
		status.SendingTx = str(sending["txHash"])
	}
	if receiving, ok := raw["receiving"].(map[string]any); ok {
		status.ReceivingTx = str(receiving["txHash"])
	}
	return status, nil
}

// PollStatus polls a transfer until DONE or FAILED, or until maxPolls is
// exhausted.
func (c *Client) PollStatus(ctx context.Context, txHash, bridgeName string, interval time.Duration, maxPolls int) (TransferStatus, error) {
	var last TransferStatus
	for i := 0; i < maxPolls; i++ {
		status, err := c.GetStatus(ctx, txHash, bridgeName)
		if err != nil {
			return TransferStatus{}, err
		}
		if status.Status == "DONE" || status.Status == "FAILED" {
			return status, nil
		}
		last = status

		select {
		case <-ctx.Done():
			return last, ctx.Err()
		case <-time.After(interval):
		}
	}
	return last, &Error{Op: "status", Detail: fmt.Sprintf("transfer %s still %s after %d polls", txHash, last.Status, maxPolls)}
}

// Chain is one supported chain.
type Chain struct {
	ID   int    `json:"id"`
	Key  string `json:"key"`
	Name string `json:"name"`
}

// GetChains lists the EVM chains Li.Fi supports.
func (c *Client) GetChains(ctx context.Context) ([]Chain, error) {
	params := url.Values{}
	params.Set("chainTypes", "EVM")

	var raw struct {
		Chains []Chain `json:"chains"`
	}
	if err := c.get(ctx, "/chains", params, &raw); err != nil {
		return nil, err
	}
	return raw.Chains, nil
}

// Tools lists the bridges and exchanges available for routing.
type Tools struct {
	Bridges   []string
	Exchanges []string
}

// GetTools lists available bridges and DEX aggregators.
func (c *Client) GetTools(ctx context.Context) (Tools, error) {
	var raw struct {
		Bridges []struct {
			Key string `json:"key"`
		} `json:"bridges"`
		Exchanges []struct {
			Key string `json:"key"`
		} `json:"exchanges"`
	}
	if err := c.get(ctx, "/tools", nil, &raw); err != nil {
		return Tools{}, err
	}

	var tools Tools
	for _, b := range raw.Bridges {
		tools.Bridges = append(tools.Bridges, b.Key)
	}
	for _, e := range raw.Exchanges {
		tools.Exchanges = append(tools.Exchanges, e.Key)
	}
	return tools, nil
}

// IsConnected reports whether the Li.Fi API is reachable.
func (c *Client) IsConnected(ctx context.Context) bool {
	_, err := c.GetChains(ctx)
	return err == nil
}

// Close releases client resources.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return &Error{Op: path, Detail: err.Error()}
	}
	return c.do(req, path, out)
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return &Error{Op: path, Detail: err.Error()}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(string(raw)))
	if err != nil {
		return &Error{Op: path, Detail: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, path, out)
}

func (c *Client) do(req *http.Request, op string, out any) error {
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-lifi-api-key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &Error{Op: op, Detail: err.Error()}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Op: op, Status: resp.StatusCode, Detail: err.Error()}
	}
	if resp.StatusCode != http.StatusOK {
		detail := string(data)
		if len(detail) > 500 {
			detail = detail[:500]
		}
		return &Error{Op: op, Status: resp.StatusCode, Detail: detail}
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return &Error{Op: op, Status: resp.StatusCode, Detail: err.Error()}
		}
	}
	return nil
}

func str(v any) string {
	s, _ := v.(string)
	return s
}

// sumUSD totals the amountUSD fields of a gasCosts/feeCosts array.
func sumUSD(v any) float64 {
	items, ok := v.([]any)
	if !ok {
		return 0
	}
	var total float64
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		switch amount := m["amountUSD"].(type) {
		case string:
			if f, err := strconv.ParseFloat(amount, 64); err == nil {
				total += f
			}
		case float64:
			total += amount
		}
	}
	return total
}
