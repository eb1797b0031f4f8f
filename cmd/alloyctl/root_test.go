package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/MikeSquared-Agency/Alloy/internal/report"
)

func writeDataset(t *testing.T) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	rows := [][]interface{}{
		{"Steel_Grade", "Yield_Strength", "UTS"},
		{"S275", 250, 400},
		{"S500", 500, 600},
	}
	sheet := f.GetSheetName(0)
	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &rows[i]))
	}
	path := filepath.Join(t.TempDir(), "steels.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestEvaluateRanksAdmitted(t *testing.T) {
	path := writeDataset(t)
	out, err := run(t, "evaluate", "--dataset", path, "--yield", "200", "--uts", "300", "--fos", "1.5")
	require.NoError(t, err)

	assert.Contains(t, out, "allowable stress 133.33 MPa")
	assert.Contains(t, out, "Admitted 2 of 2")
	s500 := strings.Index(out, "S500")
	s275 := strings.Index(out, "S275")
	require.True(t, s500 >= 0 && s275 >= 0, out)
	assert.Less(t, s500, s275, "higher strength-to-density ranks first")
}

func TestEvaluateNoMatches(t *testing.T) {
	path := writeDataset(t)
	out, err := run(t, "evaluate", "--dataset", path, "--yield", "600", "--uts", "300", "--fos", "1.5")
	require.NoError(t, err)
	assert.Contains(t, out, report.NoMatchesMessage)
}

func TestEvaluateZeroFactorOfSafety(t *testing.T) {
	path := writeDataset(t)
	_, err := run(t, "evaluate", "--dataset", path, "--fos", "0")
	assert.Error(t, err)
}

func TestEvaluateWritesReports(t *testing.T) {
	path := writeDataset(t)
	dir := t.TempDir()
	xlsxPath := filepath.Join(dir, "out.xlsx")
	pdfPath := filepath.Join(dir, "out.pdf")

	_, err := run(t, "evaluate", "--dataset", path, "--xlsx", xlsxPath, "--pdf", pdfPath, "--project", "Bridge")
	require.NoError(t, err)

	pdf, err := os.ReadFile(pdfPath)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF-")))

	f, err := excelize.OpenFile(xlsxPath)
	require.NoError(t, err)
	defer f.Close()
	assert.Contains(t, f.GetSheetList(), report.SheetAdmitted)
}

func TestLimits(t *testing.T) {
	path := writeDataset(t)
	out, err := run(t, "limits", "--dataset", path, "--fos", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "250.0 .. 500.0")
	assert.Contains(t, out, "125.00 .. 250.00")
}

func TestShow(t *testing.T) {
	path := writeDataset(t)
	out, err := run(t, "show", "--dataset", path, "--id", "0", "--yield", "300")
	require.NoError(t, err)
	assert.Contains(t, out, "S275")
	assert.Regexp(t, `Admitted:\s+false`, out)

	_, err = run(t, "show", "--dataset", path, "--id", "9")
	assert.EqualError(t, err, "grade 9 not found")
}

func TestMissingDataset(t *testing.T) {
	_, err := run(t, "evaluate", "--dataset", filepath.Join(t.TempDir(), "missing.xlsx"))
	assert.Error(t, err)
}

func TestConfigSuppliesBoundsAndDataset(t *testing.T) {
	path := writeDataset(t)
	cfgPath := filepath.Join(t.TempDir(), "alloy.yaml")
	cfg := "dataset:\n  path: " + path + "\nselection:\n  min_factor_of_safety: 1.5\n  max_factor_of_safety: 2.5\n  default_factor_of_safety: 2.0\n  factor_of_safety_step: 0.1\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o644))

	out, err := run(t, "limits", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "FoS 2.00")
	assert.Contains(t, out, "125.00 .. 250.00")

	out, err = run(t, "evaluate", "--config", cfgPath, "--fos", "10", "--clamp")
	require.NoError(t, err)
	assert.Contains(t, out, "FoS 2.50")
}
