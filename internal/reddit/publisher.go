// Package reddit publishes announcements as selftext posts via the Reddit
// OAuth2 API.
package reddit

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/lepinkainen/steam-herald/internal/config"
	"github.com/lepinkainen/steam-herald/pkg/api"
	"github.com/lepinkainen/steam-herald/pkg/httputil"
)

const defaultSubmitURL = "https://oauth.reddit.com/api/submit"

// submitResponse is Reddit's api_type=json envelope.
type submitResponse struct {
	JSON struct {
		Errors [][]any `json:"errors"`
		Data   struct {
			ID  string `json:"id"`
			URL string `json:"url"`
		} `json:"data"`
	} `json:"json"`
}

// Publisher submits posts to one subreddit through an authenticated client.
type Publisher struct {
	http      *httputil.Client
	limiter   api.RateLimiter
	submitURL string
	subreddit string
	flairText string
}

// NewPublisher builds a publisher over an authenticated HTTP client (see
// TokenSourceClient). Submissions drain a token bucket so catch-up bursts
// stay inside Reddit's posting limits.
func NewPublisher(authed *http.Client, cfg *config.Config) *Publisher {
	hc := httputil.NewClient(&httputil.ClientConfig{
		BaseClient:   authed,
		MaxRetries:   2,
		RetryBackoff: 2 * time.Second,
		UserAgent:    cfg.Reddit.UserAgent,
	})

	return &Publisher{
		http:      hc,
		limiter:   api.NewTokenBucketRateLimiter(2, 10*time.Second),
		submitURL: defaultSubmitURL,
		subreddit: cfg.Reddit.Subreddit,
		flairText: cfg.Reddit.FlairText,
	}
}

// Submit posts one selftext submission. The error is typed: *AuthError,
// *RateLimitError, or *SubmissionError.
func (p *Publisher) Submit(ctx context.Context, post Post) error {
	p.limiter.Wait()

	form := url.Values{}
	form.Set("api_type", "json")
	form.Set("kind", "self")
	form.Set("sr", p.subreddit)
	form.Set("title", post.Title)
	form.Set("text", post.Body)
	form.Set("resubmit", "true")
	if p.flairText != "" {
		form.Set("flair_text", p.flairText)
	}
	encoded := form.Encode()

	resp, err := p.http.PostFormWithContext(ctx, p.submitURL, func() io.Reader {
		return strings.NewReader(encoded)
	})
	if err != nil {
		return &SubmissionError{Msg: err.Error()}
	}

	switch resp.StatusCode {
	case http.StatusOK:
		// fall through to envelope inspection
	case http.StatusUnauthorized, http.StatusForbidden:
		body, _ := httputil.ReadResponseBody(resp)
		return &AuthError{Status: resp.StatusCode, Msg: strings.TrimSpace(string(body))}
	case http.StatusTooManyRequests:
		body, _ := httputil.ReadResponseBody(resp)
		return &RateLimitError{Msg: strings.TrimSpace(string(body))}
	default:
		body, _ := httputil.ReadResponseBody(resp)
		return &SubmissionError{Msg: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))}
	}

	var envelope submitResponse
	if err := httputil.DecodeJSONResponse(resp, &envelope); err != nil {
		return &SubmissionError{Msg: "malformed submit response: " + err.Error()}
	}

	if len(envelope.JSON.Errors) > 0 {
		code, msg := flattenAPIError(envelope.JSON.Errors[0])
		if code == "RATELIMIT" {
			return &RateLimitError{Msg: msg}
		}
		return &SubmissionError{Code: code, Msg: msg}
	}

	slog.Info("Posted to Reddit",
		"subreddit", p.subreddit,
		"title", post.Title,
		"url", envelope.JSON.Data.URL)
	return nil
}

// flattenAPIError turns Reddit's [code, message, field] triple into strings.
func flattenAPIError(parts []any) (code, msg string) {
	if len(parts) > 0 {
		code, _ = parts[0].(string)
	}
	if len(parts) > 1 {
		msg, _ = parts[1].(string)
	}
	return code, msg
}
