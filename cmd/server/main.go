package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/JonMunkholm/runplan/internal/audit"
	"github.com/JonMunkholm/runplan/internal/config"
	"github.com/JonMunkholm/runplan/internal/core"
	"github.com/JonMunkholm/runplan/internal/logging"
	"github.com/JonMunkholm/runplan/internal/persist"
	"github.com/JonMunkholm/runplan/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"plan_source", cfg.Plan.Source,
		"autosave_delay", cfg.Plan.AutosaveDelay,
		"database", cfg.Database.Enabled(),
		"rate_limit_enabled", cfg.Rate.Enabled,
	)

	if err := run(cfg); err != nil {
		slog.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := newStore(cfg)
	if err != nil {
		return err
	}

	history, closeHistory, err := newHistory(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeHistory()

	service := core.NewService(store, history)
	if err := service.Load(ctx); err != nil {
		return err
	}

	autosaver := core.NewAutosaver(service, cfg.Plan.AutosaveDelay, cfg.Plan.SaveTimeout)
	service.OnChange(autosaver.Notify)

	server := web.NewServer(service, autosaver, cfg)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return autosaver.Run(gctx)
	})

	if local, ok := store.(*persist.LocalFile); ok && cfg.Plan.Watch {
		watcher, err := core.NewWatcher(local.Path(), service, 0)
		if err != nil {
			return fmt.Errorf("create plan watcher: %w", err)
		}
		g.Go(func() error {
			return watcher.Run(gctx)
		})
	}

	g.Go(func() error {
		return service.StartPruneScheduler(gctx, core.PruneConfig{
			RetentionDays: cfg.Audit.RetentionDays,
			CheckInterval: cfg.Audit.PruneInterval,
		})
	})

	g.Go(func() error {
		if err := server.Start(cfg.Server.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}

		// The autosaver flushes pending edits when its context ends.
		select {
		case <-autosaver.Done():
		case <-shutdownCtx.Done():
			slog.Warn("pending save did not finish in time")
			return nil
		}
		if err := autosaver.WaitForDrain(shutdownCtx); err != nil {
			slog.Warn("save did not complete in time", "error", err)
		}
		return nil
	})

	return g.Wait()
}

// newStore builds the plan store selected by PLAN_SOURCE.
func newStore(cfg *config.Config) (persist.Store, error) {
	if !strings.EqualFold(cfg.Plan.Source, config.SourceGitHub) {
		return persist.NewLocalFile(cfg.Plan.Path), nil
	}

	saved, err := persist.LoadSettings(cfg.GitHub.SettingsFile)
	if err != nil {
		return nil, err
	}
	settings := saved.Merge(persist.Settings{
		Owner:  cfg.GitHub.Owner,
		Repo:   cfg.GitHub.Repo,
		Branch: cfg.GitHub.Branch,
		Path:   cfg.GitHub.Path,
	}).WithDefaults()
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	if settings != saved {
		if err := persist.SaveSettings(cfg.GitHub.SettingsFile, settings); err != nil {
			slog.Warn("failed to store github settings", "path", cfg.GitHub.SettingsFile, "error", err)
		}
	}

	slog.Info("saving plan to github",
		"owner", settings.Owner,
		"repo", settings.Repo,
		"branch", settings.Branch,
		"path", settings.Path,
	)
	client := &http.Client{Timeout: cfg.GitHub.Timeout}
	return persist.NewGitHub(cfg.GitHub.APIURL, cfg.GitHub.Token, settings, client), nil
}

// newHistory opens the Postgres history store when a database is
// configured and falls back to memory otherwise.
func newHistory(ctx context.Context, cfg *config.Config) (audit.Store, func(), error) {
	if !cfg.Database.Enabled() {
		slog.Info("no database configured, keeping plan history in memory", "limit", cfg.Audit.MemoryLimit)
		return audit.NewMemoryStore(cfg.Audit.MemoryLimit), func() {}, nil
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("parse database URL: %w", err)
	}
	poolConfig.MaxConns = int32(cfg.Database.MaxConns)
	poolConfig.MinConns = int32(cfg.Database.MinConns)
	poolConfig.MaxConnLifetime = cfg.Database.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.Database.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("ping database: %w", err)
	}

	if u, err := url.Parse(cfg.Database.URL); err == nil {
		slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
	} else {
		slog.Info("connected to database")
	}

	store := audit.NewPostgresStore(pool)
	if err := store.Migrate(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	return store, pool.Close, nil
}
