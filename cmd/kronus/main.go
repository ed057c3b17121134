// Kronus daemon: the developer-journal assistant service. It serves the
// chat gateway, keeps the Linear/Slite mirrors fresh on a cron cadence, and
// watches the soul file for live edits.
//
// Usage:
//
//	kronus              Start the daemon
//	kronus sync         Run one mirror sync and exit
//	kronus version      Print the version
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/GuiArSt/kronus/internal/bus"
	"github.com/GuiArSt/kronus/internal/config"
	"github.com/GuiArSt/kronus/internal/engine"
	"github.com/GuiArSt/kronus/internal/gateway"
	"github.com/GuiArSt/kronus/internal/mirror"
	kotel "github.com/GuiArSt/kronus/internal/otel"
	"github.com/GuiArSt/kronus/internal/persistence"
	"github.com/GuiArSt/kronus/internal/prompt"
	"github.com/GuiArSt/kronus/internal/repository"
	"github.com/GuiArSt/kronus/internal/skillset"
	"github.com/GuiArSt/kronus/internal/soul"
	"github.com/GuiArSt/kronus/internal/telemetry"
	"github.com/GuiArSt/kronus/internal/tools"
)

// Version is set via ldflags at build time: -ldflags "-X main.Version=..."
var Version = "v0.1-dev"

func main() {
	home := flag.String("home", config.DefaultHomeDir(), "data directory")
	flag.Parse()

	syncOnly := false
	if args := flag.Args(); len(args) > 0 {
		switch args[0] {
		case "version", "--version", "-v":
			fmt.Printf("kronus %s\n", Version)
			return
		case "sync":
			syncOnly = true
		default:
			fmt.Fprintf(os.Stderr, "unknown command %q\n", args[0])
			os.Exit(1)
		}
	}

	if err := run(*home, syncOnly); err != nil {
		fmt.Fprintf(os.Stderr, "kronus: %v\n", err)
		os.Exit(1)
	}
}

func run(home string, syncOnly bool) error {
	if err := os.MkdirAll(home, 0o755); err != nil {
		return fmt.Errorf("creating home dir: %w", err)
	}

	cfg, err := config.Load(home)
	if err != nil {
		return err
	}

	logger, logCloser, err := telemetry.NewLogger(cfg.HomeDir, cfg.LogLevel, cfg.Quiet)
	if err != nil {
		return fmt.Errorf("initializing logging: %w", err)
	}
	defer logCloser.Close()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	otelProvider, err := kotel.Init(ctx, cfg.OTel)
	if err != nil {
		return fmt.Errorf("initializing otel: %w", err)
	}
	defer func() { _ = otelProvider.Shutdown(context.Background()) }()

	metrics, err := kotel.NewMetrics(otelProvider.Meter)
	if err != nil {
		return fmt.Errorf("creating metrics: %w", err)
	}

	store, err := persistence.Open(cfg.DBPath())
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer store.Close()

	var mirrorSources []mirror.Source
	if cfg.Linear.APIKey != "" {
		mirrorSources = append(mirrorSources, mirror.NewLinearSource(cfg.Linear.APIKey, cfg.Linear.TeamID))
	}
	if cfg.Slite.APIKey != "" {
		slite := mirror.NewSliteSource(cfg.Slite.APIKey)
		slite.SetBaseURL(cfg.Slite.BaseURL)
		mirrorSources = append(mirrorSources, slite)
	}

	scheduler, err := mirror.NewScheduler(mirror.Config{
		Store:    store,
		Logger:   logger,
		Metrics:  metrics,
		CronExpr: cfg.Mirror.Cron,
		Sources:  mirrorSources,
	})
	if err != nil {
		return fmt.Errorf("mirror scheduler: %w", err)
	}

	if syncOnly {
		scheduler.SyncAll(ctx)
		return nil
	}

	soulLoader := soul.NewLoader(cfg.SoulFile)
	if _, err := soulLoader.Get(); err != nil {
		logger.Warn("soul file not readable; chat turns will fail until it exists",
			"path", cfg.SoulFile, "error", err)
	} else if err := soul.Watch(ctx, soulLoader, logger); err != nil {
		logger.Warn("soul watcher unavailable; edits need a restart", "error", err)
	}

	skills := skillset.NewRegistry(store, logger)

	policy := repository.StatePolicy{
		ExcludedStates:  cfg.Linear.ExcludedStates,
		CompletedStates: cfg.Linear.CompletedStates,
	}
	repoLoader := repository.NewLoader(store, policy, logger)

	toolRegistry := tools.NewRegistry(tools.Options{
		Store:           store,
		Logger:          logger,
		Skills:          skills,
		BraveAPIKey:     cfg.Search.BraveAPIKey,
		PerplexityKey:   cfg.Search.PerplexityAPIKey,
		PreferredSearch: cfg.Search.Preferred,
		GitRepos:        gitRepoMap(cfg.GitRepos),
		Policy: tools.StatePolicy{
			ExcludedStates:  cfg.Linear.ExcludedStates,
			CompletedStates: cfg.Linear.CompletedStates,
		},
		ImagesDir: filepath.Join(cfg.HomeDir, "images"),
	})

	b := bus.New()
	eng := engine.New(ctx, engine.Deps{
		LLM:     cfg.LLM,
		Soul:    soulLoader,
		Skills:  skills,
		Repo:    repoLoader,
		Tools:   toolRegistry,
		Bus:     b,
		Metrics: metrics,
		Logger:  logger,
		Identity: prompt.Identity{
			LinearUserID: cfg.Linear.UserID,
			LinearTeamID: cfg.Linear.TeamID,
		},
	})

	if cfg.Mirror.Enabled && len(mirrorSources) > 0 {
		scheduler.Start(ctx)
		defer scheduler.Stop()
	}

	srv := gateway.New(cfg.Gateway, eng, b, skills, logger)
	logger.Info("kronus starting", "version", Version, "home", cfg.HomeDir)
	return srv.ListenAndServe(ctx)
}

// gitRepoMap keys configured repository paths by their directory name so
// tools can refer to them by a short stable name.
func gitRepoMap(paths []string) map[string]string {
	if len(paths) == 0 {
		return nil
	}
	m := make(map[string]string, len(paths))
	for _, p := range paths {
		m[filepath.Base(filepath.Clean(p))] = p
	}
	return m
}
