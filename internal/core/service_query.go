package core

import (
	"context"
	"fmt"

	"github.com/JonMunkholm/runplan/internal/audit"
	"github.com/JonMunkholm/runplan/internal/grid"
)

// Snapshot returns the current plan with its projection.
func (s *Service) Snapshot() Snapshot {
	s.mu.RLock()
	g, version, dirty := s.grid, s.version, s.version != s.savedVersion
	s.mu.RUnlock()

	weeks := grid.Project(g)
	return Snapshot{
		Grid:        g,
		Layout:      grid.DetectLayout(g),
		Weeks:       weeks,
		CurrentWeek: grid.CurrentWeek(weeks),
		Version:     version,
		Dirty:       dirty,
	}
}

// Weeks returns the projected training weeks in file order.
func (s *Service) Weeks() []grid.TrainingWeek {
	s.mu.RLock()
	g := s.grid
	s.mu.RUnlock()
	return grid.Project(g)
}

// Week returns one projected week.
func (s *Service) Week(index int) (grid.TrainingWeek, error) {
	weeks := s.Weeks()
	if index < 0 || index >= len(weeks) {
		return grid.TrainingWeek{}, fmt.Errorf("%w: week %d of %d", grid.ErrOutOfRange, index, len(weeks))
	}
	return weeks[index], nil
}

// CSV returns the current plan serialized as CSV text.
func (s *Service) CSV() string {
	s.mu.RLock()
	g := s.grid
	s.mu.RUnlock()
	return grid.Serialize(g)
}

// Loaded reports whether a plan is available.
func (s *Service) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Dirty reports whether there are changes that have not been saved.
func (s *Service) Dirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version != s.savedVersion
}

// ListHistory returns recorded plan changes, newest first.
func (s *Service) ListHistory(ctx context.Context, f audit.Filter) ([]audit.Entry, error) {
	entries, err := s.history.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	return entries, nil
}
