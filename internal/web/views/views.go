// Package views renders the HTML pages of the web UI as templ components.
package views

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/runplan/internal/grid"
)

// WeekRow is one row of the week list.
type WeekRow struct {
	Index   int
	Week    grid.TrainingWeek
	Current bool
}

// PlanData is everything the plan page shows.
type PlanData struct {
	Weeks  []WeekRow
	Layout string
	Source string
	Dirty  bool
}

const pageStyle = `body{font-family:system-ui,sans-serif;margin:2rem;color:#1f2937}
table{border-collapse:collapse;width:100%}
th,td{border-bottom:1px solid #e5e7eb;padding:.4rem .6rem;text-align:left;vertical-align:top}
tr.current{background:#fef9c3}
tr.done td{color:#6b7280}
.neg{color:#b91c1c}.pos{color:#15803d}
.alert{border:1px solid #fca5a5;background:#fef2f2;padding:1rem;border-radius:.375rem}
.meta{color:#6b7280;font-size:.875rem}`

// PlanPage renders the full week list.
func PlanPage(data PlanData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &printer{w: w}
		p.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		p.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		p.raw(`<title>Training plan</title><style>` + pageStyle + `</style></head><body>`)
		p.raw(`<h1>Training plan</h1><p class="meta">`)
		p.text(fmt.Sprintf("%d weeks, %s layout, saved to %s", len(data.Weeks), data.Layout, data.Source))
		if data.Dirty {
			p.raw(` &middot; unsaved changes`)
		}
		p.raw(`</p>`)

		if len(data.Weeks) == 0 {
			p.raw(`<p>No weeks found in the plan.</p>`)
		} else {
			p.raw(`<table><thead><tr>`)
			for _, h := range []string{"Weeks to race", "Peak", "Q1", "Q2", "Easy", "Target", "Actual", "Diff", "Notes"} {
				p.raw(`<th>`)
				p.text(h)
				p.raw(`</th>`)
			}
			p.raw(`</tr></thead><tbody>`)
			for _, row := range data.Weeks {
				if p.err == nil {
					p.err = weekRow(row).Render(ctx, w)
				}
			}
			p.raw(`</tbody></table>`)
		}

		p.raw(`<p class="meta"><a href="/api/plan.csv">CSV</a> &middot; <a href="/api/plan.xlsx">Excel</a></p>`)
		p.raw(`</body></html>`)
		return p.err
	})
}

func weekRow(row WeekRow) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		week := row.Week
		p := &printer{w: w}

		class := ""
		switch {
		case row.Current:
			class = "current"
		case week.Done():
			class = "done"
		}
		p.raw(`<tr id="week-` + strconv.Itoa(row.Index) + `"`)
		if class != "" {
			p.raw(` class="` + class + `"`)
		}
		p.raw(`>`)

		p.cell(strconv.Itoa(week.WeeksUntilRace))
		p.cell(fmt.Sprintf("%.0f%%", week.FractionOfPeak*100))
		p.workout(week.Q1)
		p.workout(week.Q2)
		p.cell(number(week.WeeklyEasyMileage))
		p.cell(number(week.TargetTotal()))
		p.cell(optional(week.ActualMileage))

		p.raw(`<td`)
		if d := week.Difference; d != nil {
			if *d < 0 {
				p.raw(` class="neg"`)
			} else {
				p.raw(` class="pos"`)
			}
		}
		p.raw(`>`)
		p.text(optional(week.Difference))
		p.raw(`</td>`)

		p.cell(week.Notes)
		p.raw(`</tr>`)
		return p.err
	})
}

// ErrorAlert renders an error message with an optional suggested action.
func ErrorAlert(message, action, code string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &printer{w: w}
		p.raw(`<div class="alert" role="alert"><p>`)
		p.text(message)
		p.raw(`</p>`)
		if action != "" {
			p.raw(`<p>`)
			p.text(action)
			p.raw(`</p>`)
		}
		p.raw(`<p class="meta">`)
		p.text(code)
		p.raw(`</p></div>`)
		return p.err
	})
}

// printer writes markup and keeps the first write error.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) raw(s string) {
	if p.err != nil {
		return
	}
	_, p.err = io.WriteString(p.w, s)
}

func (p *printer) text(s string) {
	p.raw(templ.EscapeString(s))
}

func (p *printer) cell(s string) {
	p.raw(`<td>`)
	p.text(s)
	p.raw(`</td>`)
}

func (p *printer) workout(wo grid.Workout) {
	p.raw(`<td>`)
	p.text(wo.Description)
	if wo.TargetDistance > 0 {
		p.raw(` <span class="meta">`)
		p.text(number(wo.TargetDistance) + " km")
		p.raw(`</span>`)
	}
	if wo.Notes != "" {
		p.raw(`<br><span class="meta">`)
		p.text(wo.Notes)
		p.raw(`</span>`)
	}
	p.raw(`</td>`)
}

func number(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func optional(v *float64) string {
	if v == nil {
		return ""
	}
	return number(*v)
}
