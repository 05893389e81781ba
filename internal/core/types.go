package core

import (
	"context"
	"errors"

	"github.com/JonMunkholm/runplan/internal/grid"
)

var (
	// ErrInvalidEdit is returned when a week edit carries values that cannot
	// be written to the plan.
	ErrInvalidEdit = errors.New("invalid edit")

	// ErrUnsavedChanges is returned by Reload when the stored plan changed
	// while edits made here have not been saved yet.
	ErrUnsavedChanges = errors.New("reload skipped: plan has unsaved changes")

	// ErrNotLoaded is returned by operations that need a plan before Load
	// has succeeded.
	ErrNotLoaded = errors.New("plan not loaded")

	// ErrEmptyPlan is returned when a replacement plan has no content.
	ErrEmptyPlan = errors.New("empty file")
)

// WeekEdit carries the user-editable fields of one week. Nil fields keep
// their current value. ClearActual removes the actual mileage and the
// difference.
type WeekEdit struct {
	ActualMileage *float64 `json:"actualMileage,omitempty"`
	ClearActual   bool     `json:"clearActual,omitempty"`
	Q1Notes       *string  `json:"q1Notes,omitempty"`
	Q2Notes       *string  `json:"q2Notes,omitempty"`
	Notes         *string  `json:"notes,omitempty"`
}

// Snapshot is a consistent view of the plan at one version.
type Snapshot struct {
	Grid        grid.Grid
	Layout      grid.Layout
	Weeks       []grid.TrainingWeek
	CurrentWeek int
	Version     uint64
	Dirty       bool
}

// Saver writes the current plan to its store. Implemented by Service.
type Saver interface {
	Save(ctx context.Context) error
}

// Reloader re-reads the plan from its store. Implemented by Service.
type Reloader interface {
	Reload(ctx context.Context) (bool, error)
}
