// Package policyclient provides an HTTP client for a remote alphabet
// policy service, implementing the session controller's client interfaces.
package policyclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/ashureev/alphabet-lab/internal/domain"
	"github.com/ashureev/alphabet-lab/internal/session"
)

// Ensure Client satisfies the controller's client interfaces.
var (
	_ session.RecommendationClient = (*Client)(nil)
	_ session.FeedbackClient       = (*Client)(nil)
)

// Config holds configuration for the policy client.
type Config struct {
	BaseURL        string
	RequestTimeout time.Duration
}

// DefaultConfig returns default configuration.
func DefaultConfig() Config {
	return Config{
		BaseURL:        "http://localhost:8080",
		RequestTimeout: 10 * time.Second,
	}
}

// Client talks to the policy service over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// New creates a policy client. An empty baseURL falls back to the default.
func New(baseURL string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}

	cfg := DefaultConfig()
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	return &Client{
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		logger:     logger,
	}
}

// Next requests the next recommendation for a session snapshot.
func (c *Client) Next(ctx context.Context, req domain.NextRequest) (domain.NextResponse, error) {
	var resp domain.NextResponse
	if err := c.post(ctx, "/alphabet/next", req, &resp); err != nil {
		return domain.NextResponse{}, fmt.Errorf("request next recommendation: %w", err)
	}
	return resp, nil
}

// Feedback reports an attempt outcome. The response body is not consumed.
func (c *Client) Feedback(ctx context.Context, req domain.FeedbackRequest) error {
	if err := c.post(ctx, "/alphabet/feedback", req, nil); err != nil {
		return fmt.Errorf("send feedback: %w", err)
	}
	return nil
}

// post sends a JSON body and optionally decodes a JSON response.
func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.logger.Debug("failed to close response body", "path", path, "error", closeErr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, path)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
