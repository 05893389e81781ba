package grid

import "errors"

// Row positions within a plan file.
const (
	// HeaderRow is the row whose width selects the layout.
	HeaderRow = 9

	// FirstDataRow is the row holding the first training week.
	FirstDataRow = 10

	// minDataCells is the width below which a data row is ignored.
	minDataCells = 5
)

var (
	// ErrMalformedInput is returned by Parse when a quoted field is never closed.
	ErrMalformedInput = errors.New("invalid csv: malformed input")

	// ErrOutOfRange is returned by Update when the week index does not map to a
	// row of the grid. It is not fatal: the grid is returned unchanged.
	ErrOutOfRange = errors.New("week index out of range")
)

// Grid is the lossless string-cell representation of a plan file.
// Rows may have different lengths.
type Grid [][]string

// Clone returns a deep copy of g.
func (g Grid) Clone() Grid {
	if g == nil {
		return nil
	}
	out := make(Grid, len(g))
	for i, row := range g {
		if row == nil {
			continue
		}
		out[i] = append([]string(nil), row...)
	}
	return out
}

// Cell returns the cell at (row, col), or "" when it does not exist.
func (g Grid) Cell(row, col int) string {
	if row < 0 || row >= len(g) || col < 0 || col >= len(g[row]) {
		return ""
	}
	return g[row][col]
}

// Equal reports whether a and b hold the same cells in the same shape.
func Equal(a, b Grid) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if len(a[i]) != len(b[i]) {
			return false
		}
		for j := range a[i] {
			if a[i][j] != b[i][j] {
				return false
			}
		}
	}
	return true
}

// Workout is one quality session of a week.
type Workout struct {
	Description    string  `json:"description"`
	Notes          string  `json:"notes"`
	TargetDistance float64 `json:"targetDistance"`
}

// TrainingWeek is the typed view of one data row.
type TrainingWeek struct {
	WeeksUntilRace    int      `json:"weeksUntilRace"`
	FractionOfPeak    float64  `json:"fractionOfPeak"`
	Q1                Workout  `json:"q1"`
	Q2                Workout  `json:"q2"`
	WeeklyEasyMileage float64  `json:"weeklyEasyMileage"`
	ActualMileage     *float64 `json:"actualMileage,omitempty"`
	Difference        *float64 `json:"difference,omitempty"`
	Notes             string   `json:"notes"`
}

// TargetTotal is the planned volume of the week: easy mileage plus both
// quality sessions.
func (w TrainingWeek) TargetTotal() float64 {
	return w.WeeklyEasyMileage + w.Q1.TargetDistance + w.Q2.TargetDistance
}

// WithActual returns a copy of w with the actual mileage set and the difference
// recomputed against TargetTotal. A nil actual clears both.
func (w TrainingWeek) WithActual(actual *float64) TrainingWeek {
	if actual == nil {
		w.ActualMileage = nil
		w.Difference = nil
		return w
	}
	a := *actual
	d := roundTenth(a - w.TargetTotal())
	w.ActualMileage = &a
	w.Difference = &d
	return w
}

// Done reports whether any mileage has been logged for the week.
func (w TrainingWeek) Done() bool {
	return w.ActualMileage != nil && *w.ActualMileage > 0
}

// CurrentWeek returns the index of the first week without logged mileage,
// or -1 when every week has some.
func CurrentWeek(weeks []TrainingWeek) int {
	for i, w := range weeks {
		if w.ActualMileage == nil || *w.ActualMileage == 0 {
			return i
		}
	}
	return -1
}
