package grid

import "fmt"

// planGrid builds a grid with a nine-row preamble, the given header and data rows.
func planGrid(header []string, rows ...[]string) Grid {
	g := make(Grid, 0, FirstDataRow+len(rows))
	for i := 0; i < HeaderRow; i++ {
		if i%3 == 2 {
			g = append(g, []string{""})
			continue
		}
		g = append(g, []string{fmt.Sprintf("Plan line %d", i), "", "note, with comma"})
	}
	g = append(g, header)
	return append(g, rows...)
}

func standardHeader() []string {
	return []string{"", "", "", "Weeks to go", "Fraction", "Q1", "Q1 notes", "Q2", "Q2 notes", "Easy", "Actual", "Diff", "Notes"}
}

func shiftedHeader() []string {
	return []string{"", "", "", "Weeks to go", "Fraction", "Q1", "Q1 notes", "", "Q2", "Q2 notes", "", "Easy", "Actual", "Diff", "Notes"}
}

func standardRow(weeks, fraction, q1, q1Notes, q2, q2Notes, easy, actual, diff, notes string) []string {
	return []string{"", "", "", weeks, fraction, q1, q1Notes, q2, q2Notes, easy, actual, diff, notes}
}

func shiftedRow(weeks, fraction, q1, q1Notes, q2, q2Notes, easy, actual, diff, notes string) []string {
	return []string{"", "", "", weeks, fraction, q1, q1Notes, " for Q1", q2, q2Notes, " for Q2", easy, actual, diff, notes}
}

func ptr(v float64) *float64 {
	return &v
}
