// Package steam fetches game-update announcements from the Steam
// partner-events feed and normalizes them into canonical announcement values.
package steam

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/lepinkainen/steam-herald/internal/herald"
	"github.com/lepinkainen/steam-herald/pkg/api"
)

// DefaultEndpoint is the partner-events pageable feed.
const DefaultEndpoint = "https://store.steampowered.com/events/ajaxgetpartnereventspageable/"

// FetchError reports a failed feed fetch: transport failure, non-2xx status,
// or an API-level failure envelope.
type FetchError struct {
	Status int // HTTP status when known, 0 for transport/API-level failures
	Msg    string
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("steam fetch failed: HTTP %d: %s", e.Status, e.Msg)
	}
	return "steam fetch failed: " + e.Msg
}

func (e *FetchError) Unwrap() error { return e.Err }

// Config holds feed client settings.
type Config struct {
	Endpoint  string
	AppID     int
	BatchSize int
	Timeout   time.Duration
}

// Client fetches event batches from the feed.
type Client struct {
	http    *api.Client
	feedURL string
	appID   int
}

// NewClient creates a feed client. A nil-safe zero Config gets the CS2
// defaults.
func NewClient(cfg Config) *Client {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.AppID == 0 {
		cfg.AppID = 730
	}
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 100
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	params := url.Values{}
	params.Set("clan_accountid", "0")
	params.Set("appid", fmt.Sprintf("%d", cfg.AppID))
	params.Set("offset", "0")
	params.Set("count", fmt.Sprintf("%d", cfg.BatchSize))
	params.Set("l", "english")

	return &Client{
		http:    api.NewSteamClient(cfg.Timeout),
		feedURL: cfg.Endpoint + "?" + params.Encode(),
		appID:   cfg.AppID,
	}
}

// FetchEvents performs one feed request and returns the raw event records,
// newest first as the feed delivers them.
func (c *Client) FetchEvents(ctx context.Context) ([]Event, error) {
	var resp eventsResponse
	if err := c.http.GetAndDecode(ctx, c.feedURL, &resp); err != nil {
		var httpErr *api.HTTPError
		if errors.As(err, &httpErr) {
			return nil, &FetchError{Status: httpErr.StatusCode, Msg: httpErr.Message, Err: err}
		}
		return nil, &FetchError{Msg: err.Error(), Err: err}
	}

	if resp.Success != 1 {
		msg := resp.ErrMsg
		if msg == "" {
			msg = "API indicated failure without a message"
		}
		return nil, &FetchError{Msg: msg}
	}

	return resp.Events, nil
}

// FetchBatch fetches and normalizes one poll's worth of announcements.
// Malformed records are logged and dropped; non-update announcements are
// filtered out silently. A non-empty response that normalizes to zero update
// candidates because every record was malformed is a fetch failure.
func (c *Client) FetchBatch(ctx context.Context) ([]herald.Announcement, error) {
	events, err := c.FetchEvents(ctx)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		slog.Info("feed returned no events")
		return nil, nil
	}

	batch := make([]herald.Announcement, 0, len(events))
	malformed := 0
	for _, ev := range events {
		ann, err := Normalize(ev, c.appID)
		if err != nil {
			slog.Warn("dropping malformed event", "error", err)
			malformed++
			continue
		}
		if !IsUpdateAnnouncement(ann.Title) {
			slog.Debug("skipping non-update announcement", "gid", ann.GID, "title", ann.Title)
			continue
		}
		batch = append(batch, ann)
	}

	if malformed == len(events) {
		return nil, &FetchError{Msg: fmt.Sprintf("all %d events failed normalization", malformed)}
	}

	return batch, nil
}
