package grid

import "testing"

func TestDetectLayout(t *testing.T) {
	tests := []struct {
		name string
		grid Grid
		want Layout
	}{
		{"no header row", Grid{{"a"}, {"b"}}, Standard},
		{"empty grid", Grid{}, Standard},
		{"13 column header", planGrid(standardHeader()), Standard},
		{"14 column header", planGrid(make([]string, 14)), Standard},
		{"15 column header", planGrid(shiftedHeader()), Shifted},
		{"16 column header", planGrid(make([]string, 16)), Shifted},
		{"blank header line", planGrid([]string{""}), Standard},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectLayout(tt.grid); got != tt.want {
				t.Errorf("DetectLayout() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDetectLayout_IgnoresDataRowWidth(t *testing.T) {
	g := planGrid(standardHeader(), make([]string, 20))
	if got := DetectLayout(g); got != Standard {
		t.Errorf("DetectLayout() = %v, want standard", got)
	}
}

func TestColumnsFor(t *testing.T) {
	std := ColumnsFor(Standard)
	if std.ActualMileage != 10 || std.Difference != 11 || std.WeeklyNotes != 12 || std.Q2Notes != 8 {
		t.Errorf("standard columns = %+v", std)
	}
	if std.MinColumns != 13 {
		t.Errorf("standard MinColumns = %d, want 13", std.MinColumns)
	}

	sh := ColumnsFor(Shifted)
	want := ColumnMap{
		WeeksUntilRace:    3,
		FractionOfPeak:    4,
		Q1Description:     5,
		Q1Notes:           6,
		Q2Description:     8,
		Q2Notes:           9,
		WeeklyEasyMileage: 11,
		ActualMileage:     12,
		Difference:        13,
		WeeklyNotes:       14,
		MinColumns:        15,
	}
	if sh != want {
		t.Errorf("shifted columns = %+v, want %+v", sh, want)
	}

	if got := ColumnsFor(Layout(42)); got != std {
		t.Errorf("unknown layout columns = %+v, want standard", got)
	}
}

func TestLayout_Text(t *testing.T) {
	for _, l := range []Layout{Standard, Shifted} {
		text, err := l.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText() error = %v", err)
		}
		var back Layout
		if err := back.UnmarshalText(text); err != nil {
			t.Fatalf("UnmarshalText(%q) error = %v", text, err)
		}
		if back != l {
			t.Errorf("layout %v came back as %v", l, back)
		}
	}

	var l Layout
	if err := l.UnmarshalText([]byte("diagonal")); err == nil {
		t.Error("expected error for unknown layout name")
	}
}
