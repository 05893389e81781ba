// Package audit records the history of plan changes: week edits, raw
// replacements, reloads from disk and saves.
//
// Entries are kept in PostgreSQL when a database is configured and in a
// bounded in-memory buffer otherwise. Both stores implement [Store].
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/runplan/internal/grid"
)

// DefaultListLimit is used when a Filter has no limit.
const DefaultListLimit = 50

// MaxListLimit caps the entries returned by one List call.
const MaxListLimit = 500

// Action represents the type of change being recorded.
type Action string

const (
	ActionWeekEdit    Action = "week_edit"
	ActionPlanReplace Action = "plan_replace"
	ActionPlanReload  Action = "plan_reload"
	ActionPlanSave    Action = "plan_save"
	ActionSaveFailed  Action = "save_failed"
)

// Severity represents how disruptive a change is.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Entry is one recorded change.
type Entry struct {
	ID        string            `json:"id"`
	Action    Action            `json:"action"`
	Severity  Severity          `json:"severity"`
	WeekIndex *int              `json:"weekIndex,omitempty"`
	Changes   []grid.CellChange `json:"changes,omitempty"`
	Sink      string            `json:"sink,omitempty"`
	Revision  string            `json:"revision,omitempty"`
	IPAddress string            `json:"ipAddress,omitempty"`
	UserAgent string            `json:"userAgent,omitempty"`
	Reason    string            `json:"reason,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
}

// Params contains the fields of a new entry. IPAddress and UserAgent are
// taken from the context when left empty.
type Params struct {
	Action    Action
	WeekIndex *int
	Changes   []grid.CellChange
	Sink      string
	Revision  string
	IPAddress string
	UserAgent string
	Reason    string
}

// Filter narrows List results. Entries are returned newest first.
type Filter struct {
	Action Action
	Since  time.Time
	Limit  int
}

// Store persists entries.
type Store interface {
	Record(ctx context.Context, p Params) (*Entry, error)
	List(ctx context.Context, f Filter) ([]Entry, error)

	// Prune deletes entries created before the cutoff and returns how many
	// were removed.
	Prune(ctx context.Context, before time.Time) (int64, error)
}

// determineSeverity returns the appropriate severity for an action.
func determineSeverity(action Action) Severity {
	switch action {
	case ActionPlanReplace, ActionSaveFailed:
		return SeverityHigh
	case ActionPlanSave:
		return SeverityLow
	default:
		return SeverityMedium
	}
}

// newEntry builds an entry from params, filling request metadata from ctx.
func newEntry(ctx context.Context, p Params, now time.Time) Entry {
	if p.IPAddress == "" {
		p.IPAddress = IPAddressFromContext(ctx)
	}
	if p.UserAgent == "" {
		p.UserAgent = UserAgentFromContext(ctx)
	}
	return Entry{
		ID:        uuid.NewString(),
		Action:    p.Action,
		Severity:  determineSeverity(p.Action),
		WeekIndex: p.WeekIndex,
		Changes:   p.Changes,
		Sink:      p.Sink,
		Revision:  p.Revision,
		IPAddress: p.IPAddress,
		UserAgent: p.UserAgent,
		Reason:    p.Reason,
		CreatedAt: now.UTC(),
	}
}

func (f Filter) limit() int {
	switch {
	case f.Limit <= 0:
		return DefaultListLimit
	case f.Limit > MaxListLimit:
		return MaxListLimit
	default:
		return f.Limit
	}
}
