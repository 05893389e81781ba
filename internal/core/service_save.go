package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/runplan/internal/audit"
	"github.com/JonMunkholm/runplan/internal/grid"
	"github.com/JonMunkholm/runplan/internal/observability"
	"github.com/JonMunkholm/runplan/internal/persist"
)

// Save writes the current plan to the store when it has unsaved changes.
// Changes made while the save is running stay dirty and are picked up by the
// next save.
func (s *Service) Save(ctx context.Context) error {
	s.mu.RLock()
	g, version, dirty := s.grid, s.version, s.version != s.savedVersion
	s.mu.RUnlock()

	if !dirty {
		return nil
	}

	saveID := uuid.NewString()
	logger := slog.With("save_id", saveID, "sink", s.store.Name(), "version", version)
	text := grid.Serialize(g)

	start := time.Now()
	err := s.store.Save(ctx, text)
	took := time.Since(start)
	observability.RecordSave(s.store.Name(), took, err)

	if err != nil {
		logger.Error("plan save failed", "error", err, "duration_ms", took.Milliseconds())
		if errors.Is(err, persist.ErrConflict) {
			logger.Warn("stored plan changed since it was loaded; saves keep failing until local edits are discarded with a reload")
		}
		s.record(ctx, audit.Params{
			Action: audit.ActionSaveFailed,
			Sink:   s.store.Name(),
			Reason: err.Error(),
		})
		return fmt.Errorf("save plan to %s: %w", s.store.Name(), err)
	}

	s.mu.Lock()
	if version > s.savedVersion {
		s.savedVersion = version
	}
	s.stored = persist.Revision(text)
	s.mu.Unlock()

	s.record(ctx, audit.Params{
		Action:   audit.ActionPlanSave,
		Sink:     s.store.Name(),
		Revision: revisionOf(s.store, text),
	})
	logger.Info("plan saved", "bytes", len(text), "duration_ms", took.Milliseconds())
	return nil
}

// Reload re-reads the store and replaces the plan when its content differs
// from what was last loaded or saved. It reports whether the plan changed.
// With unsaved edits pending nothing is replaced and ErrUnsavedChanges is
// returned, including edits accepted while the store was being read. The
// store is not read at all when edits are already pending, since loading
// refreshes its revision marker.
func (s *Service) Reload(ctx context.Context) (bool, error) {
	s.mu.RLock()
	seen := s.version
	dirty := s.version != s.savedVersion
	s.mu.RUnlock()
	if dirty {
		slog.Debug("reload skipped; plan has unsaved edits", "source", s.store.Name())
		return false, ErrUnsavedChanges
	}

	content, err := s.store.Load(ctx)
	if err != nil {
		return false, fmt.Errorf("reload plan: %w", err)
	}

	rev := persist.Revision(content.Text)
	s.mu.RLock()
	same := rev == s.stored
	s.mu.RUnlock()
	if same {
		return false, nil
	}

	g, err := parse(content.Text)
	if err != nil {
		return false, err
	}

	s.mu.Lock()
	if s.version != seen || s.version != s.savedVersion {
		s.mu.Unlock()
		slog.Warn("plan changed in store while edits are unsaved; keeping local edits",
			"source", s.store.Name(),
		)
		return false, ErrUnsavedChanges
	}
	previous := s.grid
	s.grid = g
	s.loaded = true
	s.version++
	s.savedVersion = s.version
	s.stored = rev
	s.mu.Unlock()

	weeks := grid.Project(g)
	observability.RecordReload()
	observability.RecordWeeks(len(weeks))
	s.record(ctx, audit.Params{
		Action:   audit.ActionPlanReload,
		Changes:  grid.Diff(previous, g),
		Sink:     s.store.Name(),
		Revision: content.Revision,
	})
	slog.Info("plan reloaded", "source", s.store.Name(), "weeks", len(weeks))
	return true, nil
}

// Discard replaces the plan with the stored one, dropping any unsaved edits.
// It is how the service recovers from a save conflict: loading picks up the
// store's current revision so the next save can succeed. It reports whether
// the plan changed.
func (s *Service) Discard(ctx context.Context) (bool, error) {
	content, err := s.store.Load(ctx)
	if err != nil {
		return false, fmt.Errorf("reload plan: %w", err)
	}
	g, err := parse(content.Text)
	if err != nil {
		return false, err
	}

	s.mu.Lock()
	previous := s.grid
	dropped := s.version - s.savedVersion
	s.grid = g
	s.loaded = true
	s.version++
	s.savedVersion = s.version
	s.stored = persist.Revision(content.Text)
	s.mu.Unlock()

	changes := grid.Diff(previous, g)
	weeks := grid.Project(g)
	observability.RecordReload()
	observability.RecordWeeks(len(weeks))

	params := audit.Params{
		Action:   audit.ActionPlanReload,
		Changes:  changes,
		Sink:     s.store.Name(),
		Revision: content.Revision,
	}
	if dropped > 0 {
		params.Reason = "local edits discarded"
	}
	s.record(ctx, params)
	slog.Warn("plan reloaded, discarding local edits",
		"source", s.store.Name(),
		"weeks", len(weeks),
		"discarded_versions", dropped,
		"changed_cells", len(changes),
	)
	return len(changes) > 0, nil
}

// revisionOf returns the store's own revision marker when it has one.
func revisionOf(store persist.Store, text string) string {
	if r, ok := store.(interface{ Revision() string }); ok {
		return r.Revision()
	}
	return persist.Revision(text)
}
