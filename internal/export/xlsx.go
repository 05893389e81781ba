// Package export converts a plan into other file formats.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/runplan/internal/grid"
)

// Sheet names of the exported workbook.
const (
	PlanSheet  = "Plan"
	WeeksSheet = "Weeks"
)

var weekHeaders = []string{
	"Week", "Weeks Until Race", "Fraction of Peak",
	"Q1", "Q1 km", "Q1 Notes",
	"Q2", "Q2 km", "Q2 Notes",
	"Easy km", "Target km", "Actual km", "Difference", "Notes",
}

// WriteXLSX writes g as a workbook with two sheets: the raw plan cells, kept
// as text exactly as they appear in the file, and the projected weeks with
// numeric columns.
func WriteXLSX(w io.Writer, g grid.Grid) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", PlanSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := writePlan(f, g); err != nil {
		return err
	}

	idx, err := f.NewSheet(WeeksSheet)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	if err := writeWeeks(f, grid.Project(g)); err != nil {
		return err
	}
	f.SetActiveSheet(idx)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writePlan(f *excelize.File, g grid.Grid) error {
	for r, row := range g {
		for c, v := range row {
			if v == "" {
				continue
			}
			if err := setCell(f, PlanSheet, c, r, v); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeWeeks(f *excelize.File, weeks []grid.TrainingWeek) error {
	for c, h := range weekHeaders {
		if err := setCell(f, WeeksSheet, c, 0, h); err != nil {
			return err
		}
	}

	for i, w := range weeks {
		values := []any{
			i + 1, w.WeeksUntilRace, w.FractionOfPeak,
			w.Q1.Description, w.Q1.TargetDistance, w.Q1.Notes,
			w.Q2.Description, w.Q2.TargetDistance, w.Q2.Notes,
			w.WeeklyEasyMileage, w.TargetTotal(), optional(w.ActualMileage), optional(w.Difference), w.Notes,
		}
		for c, v := range values {
			if v == nil {
				continue
			}
			if err := setCell(f, WeeksSheet, c, i+1, v); err != nil {
				return err
			}
		}
	}
	return nil
}

func setCell(f *excelize.File, sheet string, col, row int, v any) error {
	cell, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return err
	}
	if err := f.SetCellValue(sheet, cell, v); err != nil {
		return fmt.Errorf("set %s!%s: %w", sheet, cell, err)
	}
	return nil
}

func optional(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}
