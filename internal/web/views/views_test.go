package views

import (
	"context"
	"strings"
	"testing"

	"github.com/JonMunkholm/runplan/internal/grid"
)

func TestPlanPage(t *testing.T) {
	actual := 50.0
	diff := -2.0
	data := PlanData{
		Layout: "standard",
		Source: "file",
		Dirty:  true,
		Weeks: []WeekRow{
			{Index: 0, Week: grid.TrainingWeek{
				WeeksUntilRace:    3,
				FractionOfPeak:    0.7,
				Q1:                grid.Workout{Description: "3 x 2k", TargetDistance: 6},
				WeeklyEasyMileage: 46,
				ActualMileage:     &actual,
				Difference:        &diff,
				Notes:             "<felt good>",
			}},
			{Index: 1, Current: true, Week: grid.TrainingWeek{WeeksUntilRace: 2}},
		},
	}

	var b strings.Builder
	if err := PlanPage(data).Render(context.Background(), &b); err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := b.String()

	for _, want := range []string{
		"2 weeks, standard layout, saved to file",
		"unsaved changes",
		`<tr id="week-0" class="done">`,
		`<tr id="week-1" class="current">`,
		"3 x 2k",
		`<td class="neg">-2</td>`,
		"&lt;felt good&gt;",
		"70%",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("page missing %q", want)
		}
	}
	if strings.Contains(out, "<felt good>") {
		t.Error("notes were not escaped")
	}
}

func TestPlanPage_Empty(t *testing.T) {
	var b strings.Builder
	if err := PlanPage(PlanData{Layout: "standard", Source: "file"}).Render(context.Background(), &b); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(b.String(), "No weeks found") {
		t.Errorf("expected empty message, got %s", b.String())
	}
}

func TestErrorAlert(t *testing.T) {
	var b strings.Builder
	if err := ErrorAlert("Week not found.", "Pick another week.", "PLAN001").Render(context.Background(), &b); err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := b.String()
	for _, want := range []string{"Week not found.", "Pick another week.", "PLAN001"} {
		if !strings.Contains(out, want) {
			t.Errorf("alert missing %q", want)
		}
	}
}
