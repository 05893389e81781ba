package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/runplan/internal/core"
	"github.com/JonMunkholm/runplan/internal/export"
	"github.com/JonMunkholm/runplan/internal/grid"
	"github.com/JonMunkholm/runplan/internal/persist"
)

// openPlan loads the plan file into a service. Edit history stays in memory.
func openPlan(ctx context.Context, path string) (*core.Service, error) {
	svc := core.NewService(persist.NewLocalFile(path), nil)
	if err := svc.Load(ctx); err != nil {
		return nil, err
	}
	return svc, nil
}

// =============================================================================
// WEEKS
// =============================================================================

func newWeeksCmd(opts *rootOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "weeks",
		Short: "List the training weeks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := openPlan(cmd.Context(), opts.file)
			if err != nil {
				return err
			}
			snap := svc.Snapshot()
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(snap.Weeks)
			}
			return printWeeks(cmd.OutOrStdout(), snap.Weeks, snap.CurrentWeek)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print weeks as JSON")
	return cmd
}

func printWeeks(w io.Writer, weeks []grid.TrainingWeek, current int) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tTO RACE\tQ1\tQ2\tEASY\tTARGET\tACTUAL\tDIFF\t")
	for i, week := range weeks {
		marker := ""
		if i == current {
			marker = "*"
		}
		fmt.Fprintf(tw, "%d%s\t%d\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
			i, marker,
			week.WeeksUntilRace,
			week.Q1.Description,
			week.Q2.Description,
			formatNumber(week.WeeklyEasyMileage),
			formatNumber(week.TargetTotal()),
			formatOptional(week.ActualMileage),
			formatOptional(week.Difference),
		)
	}
	return tw.Flush()
}

// =============================================================================
// DISTANCE
// =============================================================================

func newDistanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "distance <description>",
		Short: "Print the distance in km a workout description adds up to",
		Example: `  planctl distance "3 x 2k"
  planctl distance 400m + 3k`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d := grid.ExtractDistance(strings.Join(args, " "))
			fmt.Fprintln(cmd.OutOrStdout(), formatNumber(d))
			return nil
		},
	}
}

// =============================================================================
// SET
// =============================================================================

func newSetCmd(opts *rootOptions) *cobra.Command {
	var (
		actual      float64
		clearActual bool
		q1Notes     string
		q2Notes     string
		notes       string
	)

	cmd := &cobra.Command{
		Use:   "set <week-index>",
		Short: "Record actual mileage or notes for a week",
		Example: `  planctl set 3 --actual 52.5
  planctl set 3 --notes "calf tight" --q1-notes "hit splits"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("week index %q: %w", args[0], grid.ErrOutOfRange)
			}

			flags := cmd.Flags()
			var edit core.WeekEdit
			if flags.Changed("actual") {
				edit.ActualMileage = &actual
			}
			edit.ClearActual = clearActual
			if flags.Changed("q1-notes") {
				edit.Q1Notes = &q1Notes
			}
			if flags.Changed("q2-notes") {
				edit.Q2Notes = &q2Notes
			}
			if flags.Changed("notes") {
				edit.Notes = &notes
			}
			if edit == (core.WeekEdit{}) {
				return fmt.Errorf("nothing to set: use --actual, --clear-actual or a notes flag")
			}

			ctx := cmd.Context()
			svc, err := openPlan(ctx, opts.file)
			if err != nil {
				return err
			}
			week, err := svc.UpdateWeek(ctx, index, edit)
			if err != nil {
				return err
			}
			if err := svc.Save(ctx); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "week %d: actual %s, diff %s\n",
				index, formatOptional(week.ActualMileage), formatOptional(week.Difference))
			return nil
		},
	}

	cmd.Flags().Float64Var(&actual, "actual", 0, "actual mileage run")
	cmd.Flags().BoolVar(&clearActual, "clear-actual", false, "remove the actual mileage")
	cmd.Flags().StringVar(&q1Notes, "q1-notes", "", "notes for the first quality session")
	cmd.Flags().StringVar(&q2Notes, "q2-notes", "", "notes for the second quality session")
	cmd.Flags().StringVar(&notes, "notes", "", "notes for the week")
	cmd.MarkFlagsMutuallyExclusive("actual", "clear-actual")
	return cmd
}

// =============================================================================
// EXPORT
// =============================================================================

func newExportCmd(opts *rootOptions) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the plan as an Excel workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := openPlan(cmd.Context(), opts.file)
			if err != nil {
				return err
			}
			g := svc.Snapshot().Grid

			if out == "-" {
				return export.WriteXLSX(cmd.OutOrStdout(), g)
			}

			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("create %s: %w", out, err)
			}
			if err := export.WriteXLSX(f, g); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("close %s: %w", out, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "plan.xlsx", "output file, - for stdout")
	return cmd
}

// =============================================================================
// FMT
// =============================================================================

func newFmtCmd(opts *rootOptions) *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "fmt",
		Short: "Rewrite the plan file in canonical CSV form",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			file := persist.NewLocalFile(opts.file)
			content, err := file.Load(ctx)
			if err != nil {
				return err
			}

			g, err := grid.ParseReader(strings.NewReader(content.Text))
			if err != nil {
				return fmt.Errorf("parse %s: %w", opts.file, err)
			}
			formatted := grid.Serialize(g)
			if formatted == content.Text {
				return nil
			}
			if check {
				return fmt.Errorf("%s is not formatted", opts.file)
			}
			if err := file.Save(ctx, formatted); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "formatted %s\n", opts.file)
			return nil
		},
	}
	cmd.Flags().BoolVar(&check, "check", false, "fail instead of rewriting when the file is not formatted")
	return cmd
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatOptional(v *float64) string {
	if v == nil {
		return "-"
	}
	return formatNumber(*v)
}
