package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/lepinkainen/steam-herald/pkg/httputil"
)

// ClientConfig configures the enhanced HTTP client
type ClientConfig struct {
	BaseClient     *http.Client
	RateLimiter    RateLimiter
	RetryPolicy    *RetryPolicy
	UserAgent      string
	DefaultHeaders map[string]string
}

// Client provides HTTP client functionality with rate limiting, retries,
// and standard headers
type Client struct {
	client         *http.Client
	rateLimiter    RateLimiter
	retryPolicy    *RetryPolicy
	userAgent      string
	defaultHeaders map[string]string
}

// NewClient creates a new enhanced HTTP client with the provided configuration
func NewClient(config *ClientConfig) *Client {
	if config.BaseClient == nil {
		config.BaseClient = &http.Client{Timeout: 30 * time.Second}
	}
	if config.RateLimiter == nil {
		config.RateLimiter = NewNoOpRateLimiter()
	}
	if config.RetryPolicy == nil {
		config.RetryPolicy = DefaultRetryPolicy()
	}
	if config.UserAgent == "" {
		config.UserAgent = "steam-herald/1.0"
	}
	if config.DefaultHeaders == nil {
		config.DefaultHeaders = make(map[string]string)
	}

	return &Client{
		client:         config.BaseClient,
		rateLimiter:    config.RateLimiter,
		retryPolicy:    config.RetryPolicy,
		userAgent:      config.UserAgent,
		defaultHeaders: config.DefaultHeaders,
	}
}

// GetAndDecode performs an HTTP GET request with rate limiting, retries, and
// JSON decoding of the response body into target.
func (c *Client) GetAndDecode(ctx context.Context, url string, target any) error {
	operation := func() error {
		c.rateLimiter.Wait()

		req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}

		req.Header.Set("User-Agent", c.userAgent)
		for key, value := range c.defaultHeaders {
			req.Header.Set(key, value)
		}

		start := time.Now()
		res, err := c.client.Do(req)
		duration := time.Since(start)

		if err != nil {
			c.logAPICall(url, duration, false, err)
			return fmt.Errorf("failed to perform GET request: %w", err)
		}
		defer func() { _ = res.Body.Close() }()

		if err := httputil.EnsureStatusOK(res); err != nil {
			c.logAPICall(url, duration, false, err)
			// Convert to our HTTPError type for retry logic
			return &HTTPError{
				StatusCode: res.StatusCode,
				Message:    err.Error(),
			}
		}

		if err := json.NewDecoder(res.Body).Decode(target); err != nil {
			c.logAPICall(url, duration, false, err)
			return fmt.Errorf("failed to decode json response: %w", err)
		}

		c.logAPICall(url, duration, true, nil)
		return nil
	}

	return ExecuteWithRetry(operation, c.retryPolicy, fmt.Sprintf("GET %s", url))
}

// logAPICall logs API call statistics
func (c *Client) logAPICall(url string, duration time.Duration, success bool, err error) {
	status := "success"
	if !success {
		status = "failure"
	}

	fields := []any{
		"url", url,
		"duration", duration,
		"status", status,
	}
	if err != nil {
		fields = append(fields, "error", err)
	}

	if success {
		slog.Debug("API call completed", fields...)
	} else {
		slog.Warn("API call failed", fields...)
	}
}

// NewSteamClient creates an enhanced client configured for the Steam
// partner-events API.
func NewSteamClient(timeout time.Duration) *Client {
	return NewClient(&ClientConfig{
		BaseClient:  &http.Client{Timeout: timeout},
		RateLimiter: NewSimpleRateLimiter(1 * time.Second),
		RetryPolicy: ConservativeRetryPolicy(),
		UserAgent:   "steam-herald/1.0",
		DefaultHeaders: map[string]string{
			"Accept": "application/json",
		},
	})
}
