package core

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/JonMunkholm/runplan/internal/audit"
	"github.com/JonMunkholm/runplan/internal/grid"
	"github.com/JonMunkholm/runplan/internal/observability"
	"github.com/JonMunkholm/runplan/internal/persist"
)

// DefaultSaveTimeout bounds a single save when no timeout is configured.
const DefaultSaveTimeout = 30 * time.Second

// Service holds the current plan and is the only writer of it.
//
// Reads take a snapshot under a read lock. Writes build a new grid with
// grid.Update and swap it in, so a snapshot handed out earlier is never
// modified.
type Service struct {
	store   persist.Store
	history audit.Store

	mu           sync.RWMutex
	grid         grid.Grid
	loaded       bool
	version      uint64
	savedVersion uint64

	// stored is the content revision last read from or written to the
	// store. Reload skips content with this revision.
	stored string

	onChange func()
}

// NewService creates a service backed by store. A nil history keeps no
// edit history.
func NewService(store persist.Store, history audit.Store) *Service {
	if history == nil {
		history = audit.NewMemoryStore(0)
	}
	return &Service{
		store:    store,
		history:  history,
		onChange: func() {},
	}
}

// OnChange registers fn to be called after every change to the plan. It is
// how the autosaver learns about edits.
func (s *Service) OnChange(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if fn == nil {
		fn = func() {}
	}
	s.onChange = fn
}

// Store returns the backing store.
func (s *Service) Store() persist.Store {
	return s.store
}

// History returns the edit history store.
func (s *Service) History() audit.Store {
	return s.history
}

// Load reads the plan from the store and replaces the current one.
func (s *Service) Load(ctx context.Context) error {
	content, err := s.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load plan from %s: %w", s.store.Name(), err)
	}

	g, err := parse(content.Text)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.grid = g
	s.loaded = true
	s.version++
	s.savedVersion = s.version
	s.stored = persist.Revision(content.Text)
	s.mu.Unlock()

	weeks := grid.Project(g)
	observability.RecordWeeks(len(weeks))
	slog.Info("plan loaded",
		"source", s.store.Name(),
		"revision", content.Revision,
		"rows", len(g),
		"weeks", len(weeks),
		"layout", grid.DetectLayout(g).String(),
	)
	return nil
}

// parse strips a byte order mark and parses text, counting failures.
func parse(text string) (grid.Grid, error) {
	g, err := grid.ParseReader(strings.NewReader(text))
	if err != nil {
		observability.RecordParseError()
		return nil, fmt.Errorf("parse plan: %w", err)
	}
	return g, nil
}

// swap installs g as the current plan and notifies the change hook. Callers
// hold no lock.
func (s *Service) swap(g grid.Grid) uint64 {
	s.mu.Lock()
	s.grid = g
	s.loaded = true
	s.version++
	version := s.version
	notify := s.onChange
	s.mu.Unlock()

	notify()
	return version
}

// record writes a history entry. History is best effort: a failure is
// logged and never fails the change itself.
func (s *Service) record(ctx context.Context, p audit.Params) {
	if _, err := s.history.Record(ctx, p); err != nil {
		slog.Warn("failed to record plan history", "action", p.Action, "error", err)
	}
}
