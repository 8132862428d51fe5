// Package worldapi provides an HTTP client for a remote world agent.
//
// A world agent is a small service sitting inside (or next to) the shared
// environment that accepts placement and clearing commands on behalf of
// this process.
package worldapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/mkaji/scenebox/internal/domain/scene"
)

// Client is a world agent API client.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client

	maxRetries int
	retryDelay time.Duration
}

// Config represents world agent client configuration.
type Config struct {
	BaseURL string // e.g. "http://agent.local:9090"
	APIKey  string // optional, sent as X-Api-Key
}

// PlaceRequest is the body of a placement command.
type PlaceRequest struct {
	Scene  string       `json:"scene"`
	Data   []byte       `json:"data"` // snapshot bytes, base64 on the wire
	Bounds scene.Region `json:"bounds"`
	At     *scene.Vec3  `json:"at,omitempty"`
}

// ClearRequest is the body of a clear command.
type ClearRequest struct {
	Region scene.Region `json:"region"`
}

// New creates a new world agent client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("world agent base URL is required")
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		maxRetries: 3,
		retryDelay: time.Second,
	}, nil
}

// PlaceScene asks the agent to materialize a scene snapshot.
func (c *Client) PlaceScene(ctx context.Context, req PlaceRequest) error {
	if req.Scene == "" {
		return errors.New("scene name is required")
	}
	return c.post(ctx, "/v1/place", req)
}

// ClearRegion asks the agent to clear the given region.
func (c *Client) ClearRegion(ctx context.Context, req ClearRequest) error {
	return c.post(ctx, "/v1/clear", req)
}

// Ping checks that the agent is reachable.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/health", nil)
	if err != nil {
		return errors.Wrap(err, "failed to create request")
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "world agent unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.Newf("world agent health returned %d", resp.StatusCode)
	}
	return nil
}

// post sends a JSON command with retries.
func (c *Client) post(ctx context.Context, path string, body any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return errors.Wrap(err, "failed to encode request")
	}

	return c.retry(func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
		if err != nil {
			return errors.Wrap(err, "failed to create request")
		}
		req.Header.Set("Content-Type", "application/json")
		if c.apiKey != "" {
			req.Header.Set("X-Api-Key", c.apiKey)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return errors.Wrap(err, "failed to send request")
		}
		defer resp.Body.Close()

		if resp.StatusCode >= http.StatusMultipleChoices {
			msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			return errors.Newf("world agent returned %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
		}
		return nil
	})
}

// retry retries an operation with linear backoff.
func (c *Client) retry(fn func() error) error {
	var lastErr error
	for i := 0; i < c.maxRetries; i++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if !isRetryable(err) {
			return err
		}

		if i < c.maxRetries-1 {
			time.Sleep(c.retryDelay * time.Duration(i+1))
		}
	}
	return errors.Wrap(lastErr, "max retries exceeded")
}

// isRetryable checks if an error is retryable.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	// Rate limit and server errors are retryable
	errStr := err.Error()
	return strings.Contains(errStr, "429") ||
		strings.Contains(errStr, "500") ||
		strings.Contains(errStr, "502") ||
		strings.Contains(errStr, "503") ||
		strings.Contains(errStr, "504")
}
