// Command planctl inspects and edits a training plan CSV from the shell.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/runplan/internal/logging"
)

const defaultPlanPath = "public/plan.csv"

func main() {
	// A missing .env is fine for a CLI.
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

type rootOptions struct {
	file     string
	logLevel string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "planctl",
		Short: "Inspect and edit a training plan CSV",
		Long: `planctl reads the training plan spreadsheet export, lists its weeks,
records actual mileage and notes, and exports the plan to Excel.

The plan file defaults to $PLAN_PATH, then public/plan.csv.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			slog.SetDefault(logging.New(cmd.ErrOrStderr(), opts.logLevel, "text"))
		},
	}

	file := os.Getenv("PLAN_PATH")
	if file == "" {
		file = defaultPlanPath
	}
	rootCmd.PersistentFlags().StringVarP(&opts.file, "file", "f", file, "plan CSV file")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level: debug, info, warn, error")

	rootCmd.AddCommand(
		newWeeksCmd(opts),
		newDistanceCmd(),
		newSetCmd(opts),
		newExportCmd(opts),
		newFmtCmd(opts),
	)
	return rootCmd
}
