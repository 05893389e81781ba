package grid

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// leadingNumberRegex matches the longest numeric prefix of a cell, so "42km"
// reads as 42 and "0.80" as 0.8.
var leadingNumberRegex = regexp.MustCompile(`^[+-]?(?:\d+(?:\.\d*)?|\.\d+)(?:[eE][+-]?\d+)?`)

// Project returns the training weeks of g using the layout detected from its
// header row.
func Project(g Grid) []TrainingWeek {
	return ProjectWith(g, ColumnsFor(DetectLayout(g)))
}

// ProjectWith returns the training weeks of g read through cols.
//
// Rows narrower than five cells are skipped. A row whose weeks-until-race is 0
// and whose first quality session is blank marks trailing filler and is left
// out of the result. Note that this also drops a race week (0 weeks to go)
// with no Q1 description. Output follows file order.
func ProjectWith(g Grid, cols ColumnMap) []TrainingWeek {
	var weeks []TrainingWeek
	for i := FirstDataRow; i < len(g); i++ {
		row := g[i]
		if len(row) < minDataCells {
			continue
		}

		// Tested on the parsed value: "0.5" weeks is not filler.
		if numberOrZero(row, cols.WeeksUntilRace) == 0 && cellAt(row, cols.Q1Description) == "" {
			continue
		}
		weeks = append(weeks, projectRow(row, cols))
	}
	return weeks
}

func projectRow(row []string, cols ColumnMap) TrainingWeek {
	q1 := cellAt(row, cols.Q1Description)
	q2 := cellAt(row, cols.Q2Description)

	return TrainingWeek{
		WeeksUntilRace: int(math.Trunc(numberOrZero(row, cols.WeeksUntilRace))),
		FractionOfPeak: numberOrZero(row, cols.FractionOfPeak),
		Q1: Workout{
			Description:    q1,
			Notes:          cellAt(row, cols.Q1Notes),
			TargetDistance: ExtractDistance(q1),
		},
		Q2: Workout{
			Description:    q2,
			Notes:          cellAt(row, cols.Q2Notes),
			TargetDistance: ExtractDistance(q2),
		},
		WeeklyEasyMileage: numberOrZero(row, cols.WeeklyEasyMileage),
		ActualMileage:     optionalNumber(row, cols.ActualMileage),
		Difference:        optionalNumber(row, cols.Difference),
		Notes:             cellAt(row, cols.WeeklyNotes),
	}
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// ParseNumber reads the leading number of a cell the way a lenient
// spreadsheet would: leading whitespace is ignored and trailing text after the
// number is dropped. It reports false for blank or non-numeric cells.
func ParseNumber(cell string) (float64, bool) {
	s := strings.TrimLeftFunc(cell, unicode.IsSpace)
	if s == "" {
		return 0, false
	}
	m := leadingNumberRegex.FindString(s)
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func numberOrZero(row []string, idx int) float64 {
	v, _ := ParseNumber(cellAt(row, idx))
	return v
}

func optionalNumber(row []string, idx int) *float64 {
	v, ok := ParseNumber(cellAt(row, idx))
	if !ok {
		return nil
	}
	return &v
}
