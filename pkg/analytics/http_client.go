package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// HTTPConfig configures the HTTP row feed client.
type HTTPConfig struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// HTTPClient loads table rows from a remote JSON feed.
type HTTPClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewHTTPClient builds a client for a live row feed.
func NewHTTPClient(cfg HTTPConfig) (*HTTPClient, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("analytics: base url is required")
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		client:  httpClient,
	}, nil
}

// FetchUsers implements UserSource via GET /users.
func (c *HTTPClient) FetchUsers(ctx context.Context) ([]User, error) {
	var resp envelope[User]
	if err := c.get(ctx, "/users", &resp); err != nil {
		return nil, err
	}
	return resp.rows()
}

// FetchCampaigns implements CampaignSource via GET /campaigns.
func (c *HTTPClient) FetchCampaigns(ctx context.Context) ([]Campaign, error) {
	var resp envelope[Campaign]
	if err := c.get(ctx, "/campaigns", &resp); err != nil {
		return nil, err
	}
	return resp.rows()
}

func (c *HTTPClient) get(ctx context.Context, path string, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("analytics: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("analytics: http request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(resp.Body)
		return fmt.Errorf("analytics: remote error %d: %s", resp.StatusCode, strings.TrimSpace(buf.String()))
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("analytics: decode response: %w", err)
	}
	return nil
}

// envelope is the feed response shape: {"data": [...], "message": "", "success": true}.
type envelope[T any] struct {
	Data    []T    `json:"data"`
	Message string `json:"message"`
	Success bool   `json:"success"`
}

func (e envelope[T]) rows() ([]T, error) {
	if !e.Success {
		msg := e.Message
		if msg == "" {
			msg = "request was not successful"
		}
		return nil, fmt.Errorf("analytics: %s", msg)
	}
	return e.Data, nil
}
