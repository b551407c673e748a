// Package main provides the CLI entry point for steam-herald.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	kongyaml "github.com/alecthomas/kong-yaml"

	"github.com/lepinkainen/steam-herald/internal/config"
	"github.com/lepinkainen/steam-herald/internal/herald"
	"github.com/lepinkainen/steam-herald/internal/poller"
	"github.com/lepinkainen/steam-herald/internal/preview"
	"github.com/lepinkainen/steam-herald/internal/reddit"
	"github.com/lepinkainen/steam-herald/internal/statestore"
	"github.com/lepinkainen/steam-herald/internal/steam"
	"github.com/lepinkainen/steam-herald/pkg/database"
)

// CLI structure
var CLI struct {
	Config string `help:"Configuration file path" default:"config.yaml"`
	Debug  bool   `help:"Enable debug logging" default:"false"`

	Run struct {
	} `cmd:"run" help:"Poll the Steam feed and publish new announcements until interrupted."`

	Once struct {
	} `cmd:"once" help:"Run a single poll cycle and exit."`

	Status struct {
	} `cmd:"status" help:"Print the persisted watermark and seen-window size."`

	Preview struct {
		Index int `help:"Print the rendered post for a specific pending item (0-based) to stdout" default:"-1"`
	} `cmd:"preview" help:"Show pending announcements without publishing or advancing state."`

	Auth struct {
	} `cmd:"auth" help:"Run the Reddit OAuth browser flow and store the tokens."`
}

func main() {
	// Parse CLI with Kong YAML configuration file loading
	ctx := kong.Parse(&CLI,
		kong.Configuration(kongyaml.Loader, "config.yaml", "~/.steam-herald/config.yaml"),
	)

	// Configure logging level based on debug flag
	if CLI.Debug {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	} else {
		slog.SetLogLoggerLevel(slog.LevelInfo)
	}

	cfg, err := config.LoadConfig(CLI.Config)
	if err != nil {
		slog.Error("Failed to load config", "path", CLI.Config, "error", err)
		os.Exit(1)
	}

	switch ctx.Command() {
	case "run":
		runLoop(cfg, false)

	case "once":
		runLoop(cfg, true)

	case "status":
		printStatus(cfg)

	case "preview":
		previewPending(cfg, CLI.Preview.Index)

	case "auth":
		if _, err := reddit.AuthenticateUser(cfg, CLI.Config); err != nil {
			slog.Error("Authentication failed", "error", err)
			os.Exit(1)
		}
		fmt.Println("Reddit authentication complete, tokens saved")

	default:
		panic(ctx.Command())
	}
}

// openStore opens the state database and the seen-state row for the
// configured feed key.
func openStore(cfg *config.Config) (*database.Database, *statestore.Store) {
	dbCfg := database.DefaultConfig()
	dbCfg.Path = cfg.State.DatabasePath
	db, err := database.New(dbCfg)
	if err != nil {
		slog.Error("Failed to open state database", "path", cfg.State.DatabasePath, "error", err)
		os.Exit(1)
	}

	store, err := statestore.New(db, cfg.Herald.FeedKey)
	if err != nil {
		db.Close()
		slog.Error("Failed to initialize state store", "error", err)
		os.Exit(1)
	}
	return db, store
}

func feedClient(cfg *config.Config) *steam.Client {
	return steam.NewClient(steam.Config{
		Endpoint:  cfg.Steam.Endpoint,
		AppID:     cfg.Steam.AppID,
		BatchSize: cfg.Steam.BatchSize,
		Timeout:   30 * time.Second,
	})
}

func runLoop(cfg *config.Config, once bool) {
	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	db, store := openStore(cfg)
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	authed, err := reddit.TokenSourceClient(ctx, cfg)
	if err != nil {
		slog.Error("Reddit authentication unavailable, run 'steam-herald auth' first", "error", err)
		os.Exit(1)
	}

	p := poller.New(feedClient(cfg), reddit.NewPublisher(authed, cfg), store, poller.Config{
		Interval:   cfg.PollInterval(),
		WindowSize: cfg.Herald.WindowSize,
		BurstMax:   cfg.Herald.BurstMax,
	})

	if once {
		if err := p.RunCycle(ctx); err != nil {
			slog.Error("Poll cycle failed", "error", err)
			os.Exit(1)
		}
		return
	}

	slog.Info("Starting poll loop",
		"app_id", cfg.Steam.AppID,
		"subreddit", cfg.Reddit.Subreddit,
		"interval", cfg.PollInterval())
	if err := p.Run(ctx); err != nil {
		slog.Error("Poll loop terminated", "error", err)
		os.Exit(1)
	}
}

func printStatus(cfg *config.Config) {
	db, store := openStore(cfg)
	defer db.Close()

	state, err := store.Load(context.Background())
	if err != nil {
		slog.Error("Failed to load state", "error", err)
		os.Exit(1)
	}

	if state.Empty() {
		fmt.Printf("feed %s: no watermark yet (first cycle observes without publishing)\n", cfg.Herald.FeedKey)
		return
	}

	fmt.Printf("feed:        %s\n", cfg.Herald.FeedKey)
	fmt.Printf("state db:    %s\n", db.Path())
	fmt.Printf("last gid:    %s\n", state.LastGID)
	fmt.Printf("last posted: %s\n", time.Unix(state.LastPostedAt, 0).UTC().Format(time.RFC3339))
	fmt.Printf("seen window: %d entries\n", len(state.Window))
}

// previewPending fetches one batch and shows what the next cycle would
// publish, without submitting or advancing the watermark.
func previewPending(cfg *config.Config, index int) {
	db, store := openStore(cfg)
	defer db.Close()

	ctx := context.Background()

	state, err := store.Load(ctx)
	if err != nil {
		slog.Error("Failed to load state", "error", err)
		os.Exit(1)
	}

	batch, err := feedClient(cfg).FetchBatch(ctx)
	if err != nil {
		slog.Error("Failed to fetch feed", "error", err)
		os.Exit(1)
	}

	if state.Empty() {
		fmt.Println("No watermark yet: the first cycle observes the feed without publishing")
		return
	}

	novel, catchUp := herald.SelectNew(batch, state, cfg.Herald.BurstMax)

	// If index is specified, print the rendered post directly to stdout
	if index >= 0 {
		if index >= len(novel) {
			slog.Error("Index out of range", "index", index, "pending", len(novel))
			os.Exit(1)
		}
		post := reddit.FormatPost(novel[index])
		fmt.Printf("# %s\n\n%s\n", post.Title, post.Body)
		return
	}

	if err := preview.Run(novel, catchUp); err != nil {
		slog.Error("Preview failed", "error", err)
		os.Exit(1)
	}
}
