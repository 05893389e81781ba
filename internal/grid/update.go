package grid

import "fmt"

// Update writes the editable fields of w into the row of week weekIndex and
// returns the resulting grid.
//
// The week maps to row FirstDataRow+weekIndex. When that row does not exist
// the input grid is returned unchanged together with ErrOutOfRange.
//
// Only five cells are written: actual mileage, difference, both quality
// session notes and the weekly notes. The target row is copied and padded to
// the layout's minimum width first; every other row is shared with g. g
// itself is never modified.
func Update(g Grid, weekIndex int, w TrainingWeek) (Grid, error) {
	if weekIndex < 0 || weekIndex >= len(g)-FirstDataRow {
		return g, fmt.Errorf("%w: week %d (grid has %d rows)", ErrOutOfRange, weekIndex, len(g))
	}
	target := FirstDataRow + weekIndex

	cols := ColumnsFor(DetectLayout(g))

	row := make([]string, max(len(g[target]), cols.MinColumns))
	copy(row, g[target])

	row[cols.ActualMileage] = formatOptional(w.ActualMileage)
	row[cols.Difference] = formatOptional(w.Difference)
	row[cols.Q1Notes] = w.Q1.Notes
	row[cols.Q2Notes] = w.Q2.Notes
	row[cols.WeeklyNotes] = w.Notes

	out := make(Grid, len(g))
	copy(out, g)
	out[target] = row
	return out, nil
}

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return formatNumber(*v)
}

// CellChange describes one cell that differs between two grids.
type CellChange struct {
	Row int    `json:"row"`
	Col int    `json:"col"`
	Old string `json:"old"`
	New string `json:"new"`
}

// Diff lists the cells that differ between from and to, row by row. A cell
// missing on one side compares as "".
func Diff(from, to Grid) []CellChange {
	var changes []CellChange
	for r := 0; r < max(len(from), len(to)); r++ {
		var a, b []string
		if r < len(from) {
			a = from[r]
		}
		if r < len(to) {
			b = to[r]
		}
		for c := 0; c < max(len(a), len(b)); c++ {
			before, after := cellAt(a, c), cellAt(b, c)
			if before != after {
				changes = append(changes, CellChange{Row: r, Col: c, Old: before, New: after})
			}
		}
	}
	return changes
}
