package suno

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultBaseURL is the hackathon-scoped API root.
const DefaultBaseURL = "https://studio-api.prod.suno.com/api/v2/external/hackathons/"

const defaultTimeout = 30 * time.Second

// Client talks to the generation service. It is stateless; all methods
// are safe for concurrent use.
type Client struct {
	baseURL string
	apiKey  string
	httpc   *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API root (used by tests).
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpc = h }
}

// NewClient builds a Client. The API key is required; generation is the
// one capability the workbench cannot degrade without.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("suno: API key is not set (export SUNO_API_KEY)")
	}
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		httpc:   &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	if !strings.HasSuffix(c.baseURL, "/") {
		c.baseURL += "/"
	}
	return c, nil
}

// Generate submits a generation job and returns the initial, usually
// still-incomplete clip record.
func (c *Client) Generate(ctx context.Context, req GenerateRequest) (Clip, error) {
	var clip Clip
	if err := c.do(ctx, http.MethodPost, "generate", req, &clip); err != nil {
		return Clip{}, err
	}
	return clip, nil
}

// Clips fetches current state for a batch of clip ids. An empty id list
// short-circuits to an empty result without touching the network.
func (c *Client) Clips(ctx context.Context, ids []string) ([]Clip, error) {
	if len(ids) == 0 {
		return []Clip{}, nil
	}
	path := "clips?ids=" + url.QueryEscape(strings.Join(ids, ","))
	var clips []Clip
	if err := c.do(ctx, http.MethodGet, path, nil, &clips); err != nil {
		return nil, err
	}
	return clips, nil
}

// SeparateStems asks the service to split a clip into stems and returns
// the initial stem clip descriptors. The slice may be empty; callers
// decide whether that is an error.
func (c *Client) SeparateStems(ctx context.Context, clipID string) ([]Clip, error) {
	body := struct {
		ClipID string `json:"clip_id"`
	}{ClipID: clipID}
	var clips []Clip
	if err := c.do(ctx, http.MethodPost, "stem", body, &clips); err != nil {
		return nil, err
	}
	if clips == nil {
		clips = []Clip{}
	}
	return clips, nil
}

// do performs one request/response round trip. Non-2xx responses become
// *APIError; transport failures are wrapped as-is.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("suno: encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("suno: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("suno: %s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("suno: decode response: %w", err)
	}
	return nil
}
