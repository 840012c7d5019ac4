package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/walkersim/internal/config"
	"github.com/udisondev/walkersim/internal/db"
	"github.com/udisondev/walkersim/internal/sim"
	"github.com/udisondev/walkersim/internal/snapshot"
	"github.com/udisondev/walkersim/internal/walker"
)

// shutdownSaveTimeout bounds the final save after the tick loop stopped.
const shutdownSaveTimeout = 10 * time.Second

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfgPath := config.Path()
	cfg, err := config.LoadSimulation(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logLevel := parseLogLevel(cfg.LogLevel)
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})))

	debug := logLevel == slog.LevelDebug
	sim.EnableDebugLogging(debug)
	walker.EnableDebugLogging(debug)

	slog.Info("walkersim starting",
		"config", cfgPath,
		"log_level", cfg.LogLevel,
		"tick_rate", cfg.TickRate,
		"seed", cfg.Seed)

	var stores []sim.Store

	// database goes first: Load prefers it over the snapshot file
	if cfg.Database.Enabled {
		database, err := db.New(ctx, cfg.Database.DSN())
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		defer database.Close()
		slog.Info("database connected")

		if err := db.RunMigrations(ctx, cfg.Database.DSN()); err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}
		slog.Info("database migrations applied")

		stores = append(stores, database.Snapshots())
	}
	if cfg.Snapshot.Path != "" {
		stores = append(stores, snapshot.NewFileStore(cfg.Snapshot.Path))
	}

	world, err := sim.NewWorld(cfg, stores...)
	if err != nil {
		return fmt.Errorf("creating world: %w", err)
	}

	snap, err := world.Load(ctx)
	switch {
	case errors.Is(err, snapshot.ErrNotFound):
		slog.Info("no snapshot found, starting fresh")
		world.Spawners().SpawnAll()
	case err != nil:
		return fmt.Errorf("loading snapshot: %w", err)
	default:
		if err := world.Restore(snap); err != nil {
			return fmt.Errorf("restoring snapshot: %w", err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := world.Ticks().Start(gctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("tick loop: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		slog.Info("starting autosave loop", "interval", cfg.Snapshot.Interval)
		return world.Autosave(gctx, cfg.Snapshot.Interval)
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("simulation error: %w", err)
	}

	saveCtx, cancel := context.WithTimeout(context.Background(), shutdownSaveTimeout)
	defer cancel()
	if err := world.Save(saveCtx); err != nil {
		return fmt.Errorf("final save: %w", err)
	}

	slog.Info("walkersim stopped",
		"tick", world.Ticks().Tick(),
		"walkers", world.Ticks().Count(),
		"despawned", world.Despawned())
	return nil
}

// parseLogLevel converts string log level to slog.Level.
// Defaults to Info if invalid or empty.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
