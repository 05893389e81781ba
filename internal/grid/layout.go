package grid

import (
	"fmt"
	"strings"
)

// Layout identifies one of the known column arrangements of a plan file.
type Layout int

const (
	// Standard is the original 13-column export.
	Standard Layout = iota

	// Shifted has spacer columns after each quality session (15+ columns).
	Shifted
)

// ColumnMap holds the column index of every field the codec reads or writes.
type ColumnMap struct {
	WeeksUntilRace    int
	FractionOfPeak    int
	Q1Description     int
	Q1Notes           int
	Q2Description     int
	Q2Notes           int
	WeeklyEasyMileage int
	ActualMileage     int
	Difference        int
	WeeklyNotes       int

	// MinColumns is the width a row is padded to before it is written.
	MinColumns int
}

var columnMaps = map[Layout]ColumnMap{
	Standard: {3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13},
	// Columns 7 and 10 are spacers.
	Shifted: {3, 4, 5, 6, 8, 9, 11, 12, 13, 14, 15},
}

// layoutRules maps a minimum header width to a layout, widest first.
// The first rule the header satisfies wins; narrower headers are Standard.
var layoutRules = []struct {
	minHeaderWidth int
	layout         Layout
}{
	{15, Shifted},
}

// DetectLayout selects the layout of g from the width of its header row.
// A grid without a header row is Standard.
func DetectLayout(g Grid) Layout {
	if len(g) <= HeaderRow {
		return Standard
	}
	width := len(g[HeaderRow])
	for _, rule := range layoutRules {
		if width >= rule.minHeaderWidth {
			return rule.layout
		}
	}
	return Standard
}

// ColumnsFor returns the column map of l. Unknown layouts fall back to Standard.
func ColumnsFor(l Layout) ColumnMap {
	if cols, ok := columnMaps[l]; ok {
		return cols
	}
	return columnMaps[Standard]
}

// String returns the lower-case layout name.
func (l Layout) String() string {
	switch l {
	case Standard:
		return "standard"
	case Shifted:
		return "shifted"
	default:
		return fmt.Sprintf("layout(%d)", int(l))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (l Layout) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Layout) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "standard":
		*l = Standard
	case "shifted":
		*l = Shifted
	default:
		return fmt.Errorf("unknown layout %q", text)
	}
	return nil
}
