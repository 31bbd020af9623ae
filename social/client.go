// Package social posts agent updates to a Moltbook-style social network
// for AI agents. The client is pure request/response; publishing is NOT
// idempotent on the server side, so callers must not retry blindly.
package social

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultURL is the production social API endpoint.
	DefaultURL = "https://moltbookai.net"
	// DefaultChannel is the channel posts go to when none is given.
	DefaultChannel = "aithoughts"
)

// PublishError reports a rejected publish attempt. Because the service does
// not de-duplicate, the post may or may not exist after this error.
type PublishError struct {
	Status int
	Detail string
}

func (e *PublishError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("publish update: HTTP %d: %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("publish update: %s", e.Detail)
}

// Post is a published update.
type Post struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	Channel   string `json:"submolt_name"`
	CreatedAt string `json:"created_at"`
	URL       string `json:"url"`
}

// Client publishes and reads posts. Without an API key the client runs in
// mock mode: publishes succeed locally without touching the network, which
// keeps dry runs and demos side-effect free.
type Client struct {
	baseURL    string
	apiKey     string
	agentName  string
	channel    string
	mock       bool
	httpClient *http.Client
}

// NewClient creates a social client. An empty apiKey selects mock mode.
func NewClient(apiKey, agentName string) *Client {
	if agentName == "" {
		agentName = "satsagent"
	}
	mock := apiKey == ""
	if mock {
		slog.Warn("social api key not set, running in mock mode")
	}
	return &Client{
		baseURL:   DefaultURL,
		apiKey:    apiKey,
		agentName: agentName,
		channel:   DefaultChannel,
		mock:      mock,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// Mock reports whether the client is in mock mode.
func (c *Client) Mock() bool { return c.mock }

// PublishUpdate posts an update and returns the post id. channel may be
// empty to use the default.
func (c *Client) PublishUpdate(ctx context.Context, title, content, channel string) (string, error) {
	if channel == "" {
		channel = c.channel
	}
	if title == "" {
		return "", &PublishError{Detail: "title is required"}
	}

	if c.mock {
		postID := "mock-post-" + strconv.FormatInt(time.Now().Unix(), 10)
		slog.Info("mock social post created", "id", postID, "channel", channel)
		return postID, nil
	}

	body := map[string]any{
		"submolt_name": channel,
		"title":        title,
	}
	if content != "" {
		body["content"] = content
	}

	var resp struct {
		Post Post `json:"post"`
	}
	if err := c.post(ctx, "/api/posts", body, &resp); err != nil {
		return "", err
	}
	slog.Info("social post created", "id", resp.Post.ID, "channel", channel)
	return resp.Post.ID, nil
}

// Profile is an agent's public profile.
type Profile struct {
	Address      string `json:"address"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	PostCount    int    `json:"post_count"`
	CommentCount int    `json:"comment_count"`
}

// GetProfile fetches an agent's public profile by address.
func (c *Client) GetProfile(ctx context.Context, address string) (Profile, error) {
	if c.mock {
		return Profile{Address: address, Name: c.agentName}, nil
	}

	params := url.Values{}
	params.Set("address", address)

	var resp struct {
		Agent Profile `json:"agent"`
	}
	if err := c.get(ctx, "/api/agents/me", params, &resp); err != nil {
		return Profile{}, err
	}
	return resp.Agent, nil
}

// GetPosts fetches the public feed, newest first.
func (c *Client) GetPosts(ctx context.Context, limit int) ([]Post, error) {
	if c.mock {
		return nil, nil
	}

	params := url.Values{}
	params.Set("sort", "new")
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	var resp struct {
		Posts []Post `json:"posts"`
	}
	if err := c.get(ctx, "/api/posts", params, &resp); err != nil {
		return nil, err
	}
	return resp.Posts, nil
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
		return &PublishError{Detail: err.Error()}
	}
	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return &PublishError{Detail: err.Error()}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(string(raw)))
	if err != nil {
		return &PublishError{Detail: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &PublishError{Detail: err.Error()}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &PublishError{Status: resp.StatusCode, Detail: err.Error()}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &PublishError{Status: resp.StatusCode, Detail: string(data)}
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return &PublishError{Status: resp.StatusCode, Detail: err.Error()}
		}
	}
	return nil
}
