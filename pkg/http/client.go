// Package http fetches remote import sources with retries.
package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// ErrUnexpectedStatus is returned for non-200 responses that are not retried
var ErrUnexpectedStatus = errors.New("unexpected HTTP status")

// ClientConfig represents HTTP client configuration
type ClientConfig struct {
	Timeout      time.Duration
	MaxRetries   int
	RetryBackoff time.Duration
	UserAgent    string
	MaxBodySize  int64
}

// DefaultConfig returns default HTTP client configuration
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		Timeout:      10 * time.Second,
		MaxRetries:   3,
		RetryBackoff: time.Second,
		UserAgent:    "content-feed/1.0",
		MaxBodySize:  10 << 20,
	}
}

// Client is an HTTP client that retries transient failures
type Client struct {
	client *http.Client
	config *ClientConfig
}

// NewClient creates a new HTTP client. A nil config uses DefaultConfig.
func NewClient(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultConfig()
	}

	return &Client{
		client: &http.Client{Timeout: config.Timeout},
		config: config,
	}
}

// Get performs a GET request, retrying network errors and retryable status
// codes with exponential backoff
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	var lastErr error
	backoff := c.config.RetryBackoff

	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			slog.Debug("Retrying request", "url", url, "attempt", attempt, "backoff", backoff)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
				backoff *= 2
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create GET request: %w", err)
		}
		if c.config.UserAgent != "" {
			req.Header.Set("User-Agent", c.config.UserAgent)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		if IsRetryableStatusCode(resp.StatusCode) && attempt < c.config.MaxRetries {
			closeBody(resp)
			lastErr = fmt.Errorf("retryable HTTP status: %d", resp.StatusCode)
			continue
		}

		return resp, nil
	}

	return nil, fmt.Errorf("request failed after %d attempts: %w", c.config.MaxRetries+1, lastErr)
}

// Fetch downloads url and returns its body and Content-Type header.
// Bodies larger than MaxBodySize are rejected.
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, string, error) {
	resp, err := c.Get(ctx, url)
	if err != nil {
		return nil, "", err
	}
	defer closeBody(resp)

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("%w: %s from %s", ErrUnexpectedStatus, resp.Status, url)
	}

	limit := c.config.MaxBodySize
	if limit <= 0 {
		limit = DefaultConfig().MaxBodySize
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read response from %s: %w", url, err)
	}
	if int64(len(body)) > limit {
		return nil, "", fmt.Errorf("response from %s exceeds %d bytes", url, limit)
	}

	return body, resp.Header.Get("Content-Type"), nil
}

// IsRetryableStatusCode determines if an HTTP status code should be retried
func IsRetryableStatusCode(statusCode int) bool {
	switch statusCode {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

func closeBody(resp *http.Response) {
	if err := resp.Body.Close(); err != nil {
		slog.Error("Failed to close response body", "error", err)
	}
}
