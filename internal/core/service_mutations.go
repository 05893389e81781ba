package core

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/JonMunkholm/runplan/internal/audit"
	"github.com/JonMunkholm/runplan/internal/grid"
	"github.com/JonMunkholm/runplan/internal/logging"
	"github.com/JonMunkholm/runplan/internal/observability"
)

// UpdateWeek applies edit to week index and returns the updated week. The
// difference is recomputed whenever the actual mileage changes. Edits that
// leave every cell as it was are accepted without recording a change.
func (s *Service) UpdateWeek(ctx context.Context, index int, edit WeekEdit) (grid.TrainingWeek, error) {
	if err := edit.validate(); err != nil {
		return grid.TrainingWeek{}, err
	}

	s.mu.Lock()
	if !s.loaded {
		s.mu.Unlock()
		return grid.TrainingWeek{}, ErrNotLoaded
	}
	current := s.grid
	weeks := grid.Project(current)
	if index < 0 || index >= len(weeks) {
		s.mu.Unlock()
		return grid.TrainingWeek{}, fmt.Errorf("update week: %w: week %d of %d", grid.ErrOutOfRange, index, len(weeks))
	}

	week := edit.apply(weeks[index])
	next, err := grid.Update(current, index, week)
	if err != nil {
		s.mu.Unlock()
		return grid.TrainingWeek{}, fmt.Errorf("update week: %w", err)
	}

	changes := grid.Diff(current, next)
	if len(changes) == 0 {
		s.mu.Unlock()
		return week, nil
	}

	s.grid = next
	s.version++
	notify := s.onChange
	s.mu.Unlock()

	notify()
	observability.RecordEdit(string(audit.ActionWeekEdit))
	s.record(ctx, audit.Params{
		Action:    audit.ActionWeekEdit,
		WeekIndex: &index,
		Changes:   changes,
	})
	logging.WithFields(ctx, "week_index", index, "cells", len(changes)).Info("week updated")

	return week, nil
}

// ReplaceCSV replaces the whole plan with the parsed text.
func (s *Service) ReplaceCSV(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("replace plan: %w", ErrEmptyPlan)
	}

	g, err := parse(text)
	if err != nil {
		return err
	}

	s.mu.RLock()
	previous := s.grid
	s.mu.RUnlock()

	changes := grid.Diff(previous, g)
	s.swap(g)

	weeks := grid.Project(g)
	observability.RecordEdit(string(audit.ActionPlanReplace))
	observability.RecordWeeks(len(weeks))
	s.record(ctx, audit.Params{
		Action: audit.ActionPlanReplace,
		Reason: fmt.Sprintf("%d rows, %d cells changed", len(g), len(changes)),
	})
	slog.Info("plan replaced", "rows", len(g), "weeks", len(weeks), "cells_changed", len(changes))
	return nil
}

func (e WeekEdit) validate() error {
	if e.ActualMileage == nil || e.ClearActual {
		return nil
	}
	a := *e.ActualMileage
	if math.IsNaN(a) || math.IsInf(a, 0) {
		return fmt.Errorf("%w: actual mileage must be a number", ErrInvalidEdit)
	}
	if a < 0 {
		return fmt.Errorf("%w: actual mileage must be non-negative", ErrInvalidEdit)
	}
	return nil
}

func (e WeekEdit) apply(w grid.TrainingWeek) grid.TrainingWeek {
	switch {
	case e.ClearActual:
		w = w.WithActual(nil)
	case e.ActualMileage != nil:
		w = w.WithActual(e.ActualMileage)
	}
	if e.Q1Notes != nil {
		w.Q1.Notes = *e.Q1Notes
	}
	if e.Q2Notes != nil {
		w.Q2.Notes = *e.Q2Notes
	}
	if e.Notes != nil {
		w.Notes = *e.Notes
	}
	return w
}
