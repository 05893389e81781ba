package core

// scheduler.go removes old plan history entries on a fixed interval.
//
// The scheduler is long-running and context-aware for graceful shutdown. A
// failed prune is logged and retried on the next tick; it never stops the
// application.

import (
	"context"
	"log/slog"
	"time"
)

// PruneConfig holds configuration for the history prune scheduler.
// Zero values fall back to the defaults.
type PruneConfig struct {
	RetentionDays int           // Days of history to keep (default: 365)
	CheckInterval time.Duration // How often to run (default: 24h)
}

func (c PruneConfig) withDefaults() PruneConfig {
	if c.RetentionDays <= 0 {
		c.RetentionDays = 365
	}
	if c.CheckInterval <= 0 {
		c.CheckInterval = 24 * time.Hour
	}
	return c
}

// StartPruneScheduler prunes history immediately and then every
// CheckInterval until ctx is cancelled.
func (s *Service) StartPruneScheduler(ctx context.Context, cfg PruneConfig) error {
	cfg = cfg.withDefaults()
	slog.Info("history prune scheduler started",
		"retention_days", cfg.RetentionDays,
		"interval", cfg.CheckInterval,
	)

	s.runPruneJob(ctx, cfg, time.Now())

	ticker := time.NewTicker(cfg.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("history prune scheduler stopped")
			return nil
		case now := <-ticker.C:
			s.runPruneJob(ctx, cfg, now)
		}
	}
}

// runPruneJob performs one prune cycle.
func (s *Service) runPruneJob(ctx context.Context, cfg PruneConfig, now time.Time) {
	start := time.Now()
	cutoff := now.AddDate(0, 0, -cfg.RetentionDays)

	removed, err := s.history.Prune(ctx, cutoff)
	if err != nil {
		slog.Error("history prune failed", "error", err)
		return
	}
	slog.Info("pruned plan history",
		"entries_removed", removed,
		"cutoff", cutoff.Format(time.RFC3339),
		"duration_ms", time.Since(start).Milliseconds(),
	)
}
