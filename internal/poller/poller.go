// Package poller drives the polling pipeline: fetch, filter, publish,
// persist, on a fixed cadence, advancing the durable watermark only behind
// successful publishes.
package poller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lepinkainen/steam-herald/internal/herald"
	"github.com/lepinkainen/steam-herald/internal/reddit"
)

// Phase is the poll cycle's current position in the state machine.
type Phase int

// Cycle phases. Error routes back to Idle; a failed cycle never stops the
// loop, recovery waits for the next tick.
const (
	PhaseIdle Phase = iota
	PhaseFetching
	PhaseFiltering
	PhasePublishing
	PhasePersisting
	PhaseError
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseFetching:
		return "fetching"
	case PhaseFiltering:
		return "filtering"
	case PhasePublishing:
		return "publishing"
	case PhasePersisting:
		return "persisting"
	case PhaseError:
		return "error"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// FeedSource fetches one normalized batch, newest first.
type FeedSource interface {
	FetchBatch(ctx context.Context) ([]herald.Announcement, error)
}

// Publisher performs the irreversible side effect for one announcement.
type Publisher interface {
	Submit(ctx context.Context, post reddit.Post) error
}

// StateStore loads and durably saves the seen-state watermark.
type StateStore interface {
	Load(ctx context.Context) (herald.SeenState, error)
	Save(ctx context.Context, state herald.SeenState) error
}

// Config holds the tuning knobs the poller takes from the application config.
type Config struct {
	Interval   time.Duration
	WindowSize int
	BurstMax   int
}

// Poller owns the seen-state and runs the cycle state machine. One cycle
// runs to completion before the next tick is considered; ticks arriving
// mid-cycle coalesce.
type Poller struct {
	feed      FeedSource
	publisher Publisher
	store     StateStore
	cfg       Config

	phase   Phase
	lastErr error
}

// New creates a poller.
func New(feed FeedSource, publisher Publisher, store StateStore, cfg Config) *Poller {
	if cfg.Interval <= 0 {
		cfg.Interval = 60 * time.Second
	}
	if cfg.WindowSize <= 0 {
		cfg.WindowSize = 200
	}
	if cfg.BurstMax <= 0 {
		cfg.BurstMax = 5
	}
	return &Poller{
		feed:      feed,
		publisher: publisher,
		store:     store,
		cfg:       cfg,
		phase:     PhaseIdle,
	}
}

// Phase returns the poller's current phase.
func (p *Poller) Phase() Phase {
	return p.phase
}

// Run polls on a fixed cadence until ctx is cancelled. Cycle failures are
// logged and absorbed; the loop itself only ends with the context.
func (p *Poller) Run(ctx context.Context) error {
	slog.Info("Poller starting", "interval", p.cfg.Interval)

	// First cycle immediately, then on the ticker.
	if err := p.RunCycle(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("Poll cycle failed", "error", err)
	}

	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("Poller stopping")
			return ctx.Err()
		case <-ticker.C:
			if err := p.RunCycle(ctx); err != nil && !errors.Is(err, context.Canceled) {
				slog.Error("Poll cycle failed", "error", err)
			}
		}
	}
}

// RunCycle executes one full poll cycle. The returned error reports why the
// cycle entered the error phase; the poller is always back at idle on return,
// with the outcome retained for LastError.
func (p *Poller) RunCycle(ctx context.Context) error {
	err := p.cycle(ctx)
	p.lastErr = err
	if err != nil {
		p.phase = PhaseError
		slog.Debug("Cycle entered error phase", "phase", p.phase.String(), "error", err)
	}
	p.phase = PhaseIdle
	return err
}

// LastError reports how the most recent cycle ended: nil after a clean cycle,
// the cycle's error after one that went through the error phase.
func (p *Poller) LastError() error {
	return p.lastErr
}

func (p *Poller) cycle(ctx context.Context) error {
	state, err := p.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading state: %w", err)
	}

	p.phase = PhaseFetching
	batch, err := p.feed.FetchBatch(ctx)
	if err != nil {
		return fmt.Errorf("fetching batch: %w", err)
	}

	p.phase = PhaseFiltering

	// Cold start: set the watermark to the newest entry without publishing
	// the historical backlog.
	if state.Empty() {
		if len(batch) == 0 {
			slog.Info("Cold start with empty feed, nothing to observe")
			return nil
		}
		newest := batch[0]
		state = state.Advance([]herald.Announcement{newest}, p.cfg.WindowSize)

		p.phase = PhasePersisting
		if err := p.store.Save(ctx, state); err != nil {
			return fmt.Errorf("persisting cold-start watermark: %w", err)
		}
		slog.Info("Cold start observed, watermark set",
			"gid", newest.GID, "posted_at", newest.PostedAt)
		return nil
	}

	novel, catchUp := herald.SelectNew(batch, state, p.cfg.BurstMax)
	if catchUp {
		slog.Warn("Watermark fell behind feed retention, catch-up backlog in progress",
			"emitting", len(novel), "burst_max", p.cfg.BurstMax)
	}
	if len(novel) == 0 {
		slog.Info("No new announcements")
		return nil
	}
	slog.Info("Found new announcements", "count", len(novel))

	p.phase = PhasePublishing
	for i, ann := range novel {
		// Honor shutdown between events, never mid-publish.
		select {
		case <-ctx.Done():
			slog.Info("Shutdown during publishing, remaining announcements stay novel",
				"published", i, "remaining", len(novel)-i)
			return ctx.Err()
		default:
		}

		if err := p.publisher.Submit(ctx, reddit.FormatPost(ann)); err != nil {
			p.logPublishError(ann, err)
			return fmt.Errorf("publishing %s: %w", ann.GID, err)
		}

		// Advance and persist after every single publish so a crash loses
		// at most the in-flight event.
		state = state.Advance([]herald.Announcement{ann}, p.cfg.WindowSize)

		p.phase = PhasePersisting
		if err := p.store.Save(ctx, state); err != nil {
			// The publish happened but is not durable: prefer a duplicate
			// on restart over a lost announcement.
			return fmt.Errorf("persisting state after %s: %w", ann.GID, err)
		}
		p.phase = PhasePublishing

		slog.Info("Published announcement",
			"gid", ann.GID, "title", ann.Title, "posted_at", ann.PostedAt)
	}

	return nil
}

func (p *Poller) logPublishError(ann herald.Announcement, err error) {
	var (
		authErr *reddit.AuthError
		rlErr   *reddit.RateLimitError
	)
	switch {
	case errors.As(err, &authErr):
		slog.Error("Publish rejected: credentials", "gid", ann.GID, "phase", p.phase.String(), "error", err)
	case errors.As(err, &rlErr):
		slog.Warn("Publish rate limited, batch halted until next tick", "gid", ann.GID, "phase", p.phase.String(), "error", err)
	default:
		slog.Error("Publish failed", "gid", ann.GID, "phase", p.phase.String(), "error", err)
	}
}
