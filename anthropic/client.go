// Package anthropic is a minimal client for the Anthropic Messages API
package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
)

const (
	DefaultBaseURL   = "https://api.anthropic.com"
	DefaultModel     = "claude-sonnet-4-20250514"
	DefaultMaxTokens = 2048
	DefaultVersion   = "2023-06-01"
	DefaultBeta      = "projects-2024-12-02"

	// FallbackReply is used when a well-formed response carries no text
	FallbackReply = "Error in response."
)

// Error is returned for non-2xx answers and for bodies that cannot be decoded
type Error struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("assistant error %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("assistant error %d: %s", e.StatusCode, e.Body)
}

func (e *Error) Unwrap() error { return e.Err }

type Client struct {
	http      *http.Client
	baseURL   *url.URL
	apiKey    string
	model     string
	maxTokens int
	version   string
	beta      string
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func WithBaseURL(raw string) Option {
	return func(c *Client) {
		if u, err := url.Parse(raw); err == nil {
			c.baseURL = u
		}
	}
}

// WithAPIKey sets x-api-key. Without it the request relies on the caller's
// network (e.g. a gateway injecting credentials).
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

func WithModel(model string, maxTokens int) Option {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
		if maxTokens > 0 {
			c.maxTokens = maxTokens
		}
	}
}

func WithVersion(version, beta string) Option {
	return func(c *Client) {
		if version != "" {
			c.version = version
		}
		c.beta = beta
	}
}

func New(opts ...Option) *Client {
	u, _ := url.Parse(DefaultBaseURL)
	c := &Client{
		http:      http.DefaultClient,
		baseURL:   u,
		model:     DefaultModel,
		maxTokens: DefaultMaxTokens,
		version:   DefaultVersion,
		beta:      DefaultBeta,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Send posts system as the system prompt and userText as the only message.
// Earlier turns are not sent; the system prompt carries all context.
func (c *Client) Send(ctx context.Context, system, userText string) (string, error) {
	payload, err := json.Marshal(messagesRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		System:    []systemBlock{{Type: "text", Text: system}},
		Messages:  []Message{{Role: RoleUser, Content: userText}},
	})
	if err != nil {
		return "", err
	}

	u := *c.baseURL
	u.Path = path.Join(u.Path, "/v1/messages")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("anthropic-version", c.version)
	if c.beta != "" {
		req.Header.Set("anthropic-beta", c.beta)
	}
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("POST /v1/messages: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &Error{StatusCode: resp.StatusCode, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &Error{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var out messagesResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", &Error{StatusCode: resp.StatusCode, Body: string(body), Err: fmt.Errorf("decode response: %w", err)}
	}
	if len(out.Content) == 0 || out.Content[0].Text == "" {
		return FallbackReply, nil
	}
	return out.Content[0].Text, nil
}
