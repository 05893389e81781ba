package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/runplan/internal/grid"
)

func writePlan(t *testing.T, text string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "plan.csv")
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))
	return path
}

func planText() string {
	g := grid.Grid{}
	for i := 0; i < grid.HeaderRow; i++ {
		g = append(g, []string{"Preamble"})
	}
	g = append(g,
		[]string{"", "", "", "Weeks", "Fraction", "Q1", "Q1 Notes", "Q2", "Q2 Notes", "Easy", "Actual", "Diff", "Notes"},
		[]string{"", "", "", "2", "0.85", "3 x 2k", "", "10 Ez", "", "30", "", "", ""},
		[]string{"", "", "", "1", "1.00", "400m + 3k", "", "", "", "20", "", "", ""},
	)
	return grid.Serialize(g)
}

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestWeeksCommand(t *testing.T) {
	path := writePlan(t, planText())

	out, err := runCmd(t, "weeks", "-f", path)
	require.NoError(t, err)
	require.Contains(t, out, "TO RACE")
	require.Contains(t, out, "3 x 2k")
	require.Contains(t, out, "0*")

	out, err = runCmd(t, "weeks", "--json", "-f", path)
	require.NoError(t, err)
	var weeks []grid.TrainingWeek
	require.NoError(t, json.Unmarshal([]byte(out), &weeks))
	require.Len(t, weeks, 2)
	require.Equal(t, 3.4, weeks[1].Q1.TargetDistance)
}

func TestDistanceCommand(t *testing.T) {
	out, err := runCmd(t, "distance", "400m", "+", "3k")
	require.NoError(t, err)
	require.Equal(t, "3.4\n", out)

	out, err = runCmd(t, "distance", "Rest")
	require.NoError(t, err)
	require.Equal(t, "0\n", out)
}

func TestSetCommand(t *testing.T) {
	path := writePlan(t, planText())

	out, err := runCmd(t, "set", "0", "--actual", "50", "--notes", "hilly", "-f", path)
	require.NoError(t, err)
	require.Equal(t, "week 0: actual 50, diff 4\n", out)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	g, err := grid.Parse(string(data))
	require.NoError(t, err)
	weeks := grid.Project(g)
	require.NotNil(t, weeks[0].ActualMileage)
	require.Equal(t, 50.0, *weeks[0].ActualMileage)
	require.Equal(t, "hilly", weeks[0].Notes)

	out, err = runCmd(t, "set", "0", "--clear-actual", "-f", path)
	require.NoError(t, err)
	require.Equal(t, "week 0: actual -, diff -\n", out)
}

func TestSetCommand_Errors(t *testing.T) {
	path := writePlan(t, planText())

	_, err := runCmd(t, "set", "0", "-f", path)
	require.ErrorContains(t, err, "nothing to set")

	_, err = runCmd(t, "set", "7", "--notes", "x", "-f", path)
	require.ErrorIs(t, err, grid.ErrOutOfRange)

	_, err = runCmd(t, "set", "0", "--actual", "-3", "-f", path)
	require.ErrorContains(t, err, "invalid edit")

	_, err = runCmd(t, "set", "0", "--actual", "3", "--clear-actual", "-f", path)
	require.Error(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, planText(), string(data))
}

func TestExportCommand(t *testing.T) {
	path := writePlan(t, planText())
	out := filepath.Join(t.TempDir(), "plan.xlsx")

	_, err := runCmd(t, "export", "-f", path, "-o", out)
	require.NoError(t, err)

	f, err := excelize.OpenFile(out)
	require.NoError(t, err)
	defer f.Close()
	v, err := f.GetCellValue("Plan", "F11")
	require.NoError(t, err)
	require.Equal(t, "3 x 2k", v)
}

func TestFmtCommand(t *testing.T) {
	messy := strings.ReplaceAll(planText(), "\n", "\r\n")
	path := writePlan(t, messy)

	_, err := runCmd(t, "fmt", "--check", "-f", path)
	require.ErrorContains(t, err, "not formatted")

	_, err = runCmd(t, "fmt", "-f", path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, planText(), string(data))

	_, err = runCmd(t, "fmt", "--check", "-f", path)
	require.NoError(t, err)
}

func TestMissingPlanFile(t *testing.T) {
	_, err := runCmd(t, "weeks", "-f", filepath.Join(t.TempDir(), "nope.csv"))
	require.ErrorContains(t, err, "plan file not found")
}
