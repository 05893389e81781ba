package grid

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestUpdate_WritesEditableCells(t *testing.T) {
	tests := []struct {
		name   string
		header []string
		row    func(weeks, fraction, q1, q1Notes, q2, q2Notes, easy, actual, diff, notes string) []string
	}{
		{"standard", standardHeader(), standardRow},
		{"shifted", shiftedHeader(), shiftedRow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := planGrid(tt.header,
				tt.row("3", "0.7", "3 x 2k", "", "13 Ez", "", "40", "", "", ""),
				tt.row("2", "0.6", "5k", "old note", "8 Mp", "", "30", "44", "1", ""),
				tt.row("1", "0.4", "4k", "", "", "", "20", "", "", "taper"),
			)
			before := g.Clone()

			for i, week := range Project(g) {
				edited := week.WithActual(ptr(float64(50 + i)))
				edited.Q1.Notes = "q1 edited"
				edited.Q2.Notes = "q2, \"edited\""
				edited.Notes = "weekly\nedited"

				updated, err := Update(g, i, edited)
				if err != nil {
					t.Fatalf("Update(%d) error = %v", i, err)
				}

				weeks := Project(updated)
				got := weeks[i]
				if diff := cmp.Diff(edited.ActualMileage, got.ActualMileage); diff != "" {
					t.Errorf("week %d ActualMileage (-want +got):\n%s", i, diff)
				}
				if diff := cmp.Diff(edited.Difference, got.Difference); diff != "" {
					t.Errorf("week %d Difference (-want +got):\n%s", i, diff)
				}
				if got.Q1.Notes != edited.Q1.Notes || got.Q2.Notes != edited.Q2.Notes || got.Notes != edited.Notes {
					t.Errorf("week %d notes = %q/%q/%q", i, got.Q1.Notes, got.Q2.Notes, got.Notes)
				}

				original := Project(g)
				for j := range weeks {
					if j == i {
						continue
					}
					if diff := cmp.Diff(original[j], weeks[j]); diff != "" {
						t.Errorf("editing week %d changed week %d (-want +got):\n%s", i, j, diff)
					}
				}
			}

			if diff := cmp.Diff(before, g); diff != "" {
				t.Errorf("Update mutated its input (-before +after):\n%s", diff)
			}
		})
	}
}

func TestUpdate_TouchesOnlyFiveCells(t *testing.T) {
	g := planGrid(shiftedHeader(),
		shiftedRow("3", "0.80", "3 x 2k", "a", "13 Ez", "b", "40.0", "", "", "c"),
	)

	w := Project(g)[0].WithActual(ptr(62))
	w.Q1.Notes = "A"
	w.Q2.Notes = "B"
	w.Notes = "C"

	updated, err := Update(g, 0, w)
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	want := []CellChange{
		{Row: 10, Col: 6, Old: "a", New: "A"},
		{Row: 10, Col: 9, Old: "b", New: "B"},
		{Row: 10, Col: 12, Old: "", New: "62"},
		{Row: 10, Col: 13, Old: "", New: "3"},
		{Row: 10, Col: 14, Old: "c", New: "C"},
	}
	if diff := cmp.Diff(want, Diff(g, updated)); diff != "" {
		t.Errorf("Diff mismatch (-want +got):\n%s", diff)
	}

	row := updated[FirstDataRow]
	if row[7] != " for Q1" || row[10] != " for Q2" {
		t.Errorf("spacer columns changed: %q, %q", row[7], row[10])
	}
	if row[4] != "0.80" || row[11] != "40.0" {
		t.Errorf("untouched numeric cells reformatted: %q, %q", row[4], row[11])
	}
}

func TestUpdate_SharesUntouchedRows(t *testing.T) {
	g := planGrid(standardHeader(),
		standardRow("2", "", "5k", "", "", "", "", "", "", ""),
		standardRow("1", "", "4k", "", "", "", "", "", "", ""),
	)

	updated, err := Update(g, 1, Project(g)[1])
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	if &updated[FirstDataRow][0] != &g[FirstDataRow][0] {
		t.Error("untouched row was copied instead of shared")
	}
	if &updated[FirstDataRow+1][0] == &g[FirstDataRow+1][0] {
		t.Error("edited row shares storage with the input")
	}
}

func TestUpdate_PadsShortRow(t *testing.T) {
	tests := []struct {
		name      string
		header    []string
		wantWidth int
		notesCol  int
	}{
		{"standard", standardHeader(), 13, 12},
		{"shifted", shiftedHeader(), 15, 14},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := planGrid(tt.header, []string{"", "", "", "5", "0.5", "5k"})

			w := Project(g)[0]
			w.Notes = "padded"
			updated, err := Update(g, 0, w)
			if err != nil {
				t.Fatalf("Update() error = %v", err)
			}

			row := updated[FirstDataRow]
			if len(row) != tt.wantWidth {
				t.Fatalf("row width = %d, want %d", len(row), tt.wantWidth)
			}
			if row[tt.notesCol] != "padded" {
				t.Errorf("notes cell = %q, want %q", row[tt.notesCol], "padded")
			}
			if len(g[FirstDataRow]) != 6 {
				t.Errorf("input row width changed to %d", len(g[FirstDataRow]))
			}
		})
	}
}

func TestUpdate_KeepsWideRowWidth(t *testing.T) {
	row := append(standardRow("5", "", "5k", "", "", "", "", "", "", ""), "extra 1", "extra 2")
	g := planGrid(standardHeader(), row)

	updated, err := Update(g, 0, Project(g)[0])
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if got := updated[FirstDataRow]; len(got) != 15 || got[14] != "extra 2" {
		t.Errorf("wide row = %q", got)
	}
}

func TestUpdate_ClearsAbsentNumbers(t *testing.T) {
	g := planGrid(standardHeader(),
		standardRow("5", "", "5k", "", "", "", "10", "16", "1", ""),
	)

	updated, err := Update(g, 0, Project(g)[0].WithActual(nil))
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	row := updated[FirstDataRow]
	if row[10] != "" || row[11] != "" {
		t.Errorf("actual/diff = %q/%q, want both empty", row[10], row[11])
	}
}

func TestUpdate_OutOfRange(t *testing.T) {
	g := planGrid(standardHeader(),
		standardRow("1", "", "4k", "", "", "", "", "", "", ""),
	)
	before := g.Clone()

	for _, idx := range []int{1, 5, -1, -11, math.MaxInt, math.MaxInt - FirstDataRow + 1, math.MinInt} {
		got, err := Update(g, idx, TrainingWeek{Notes: "nope"})
		if !errors.Is(err, ErrOutOfRange) {
			t.Errorf("Update(%d) error = %v, want ErrOutOfRange", idx, err)
		}
		if !Equal(got, before) {
			t.Errorf("Update(%d) changed the grid", idx)
		}
	}
}

func TestUpdate_SerializedOutputKeepsOtherRowsVerbatim(t *testing.T) {
	text := "\"Plan\",\"0.80\"\n\"\"\n" +
		"\"p2\"\n\"p3\"\n\"p4\"\n\"p5\"\n\"p6\"\n\"p7\"\n\"p8\"\n" +
		"\"\",\"\",\"\",\"Weeks\",\"Frac\",\"Q1\",\"N1\",\"Q2\",\"N2\",\"Easy\",\"Act\",\"Diff\",\"Notes\"\n" +
		"\"\",\"\",\"\",\"4\",\"0.70\",\"3 x 2k\",\"\",\"13 Ez\",\"\",\"40\",\"\",\"\",\"\"\n" +
		"\"\",\"\",\"\",\"3\",\"0.60\",\"5k\",\"\",\"\",\"\",\"30\",\"\",\"\",\"\"\n"

	g, err := Parse(text)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	w := Project(g)[1].WithActual(ptr(36))
	updated, err := Update(g, 1, w)
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	want := text[:len(text)-len("\"\",\"\",\"\",\"3\",\"0.60\",\"5k\",\"\",\"\",\"\",\"30\",\"\",\"\",\"\"\n")] +
		"\"\",\"\",\"\",\"3\",\"0.60\",\"5k\",\"\",\"\",\"\",\"30\",\"36\",\"1\",\"\"\n"
	if got := Serialize(updated); got != want {
		t.Errorf("Serialize() =\n%s\nwant\n%s", got, want)
	}
}

// Week indexes address rows by position, so a skipped short row shifts the
// projected weeks but not the row Update writes.
func TestUpdate_IndexesRowsNotProjectedWeeks(t *testing.T) {
	g := planGrid(standardHeader(),
		[]string{""},
		standardRow("8", "0.5", "5k", "", "", "", "20", "", "", ""),
	)
	if weeks := Project(g); len(weeks) != 1 {
		t.Fatalf("Project() returned %d weeks, want 1", len(weeks))
	}

	got, err := Update(g, 0, TrainingWeek{Notes: "tempo felt easy"})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if cell := got.Cell(FirstDataRow, 12); cell != "tempo felt easy" {
		t.Errorf("blank row notes = %q, want the edit", cell)
	}
	if cell := got.Cell(FirstDataRow+1, 12); cell != "" {
		t.Errorf("week 8 notes = %q, want untouched", cell)
	}
}
