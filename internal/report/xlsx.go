package report

import (
	"fmt"
	"io"
	"math"

	"github.com/xuri/excelize/v2"

	"github.com/MikeSquared-Agency/Alloy/internal/selection"
)

const (
	SheetAdmitted = "Admitted"
	SheetAll      = "All"
)

// WriteXLSX writes two sheets: the ranked admitted grades and every record
// in input order with its admission flags.
func WriteXLSX(w io.Writer, res selection.RankedResult) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetAdmitted); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(SheetAll); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}

	rows := make([][]interface{}, 0, len(res.Admitted)+1)
	rows = append(rows, toRow(tableHeader))
	if res.Empty() {
		rows = append(rows, []interface{}{NoMatchesMessage})
	}
	for i, e := range res.Admitted {
		rows = append(rows, []interface{}{
			i + 1, e.ID, e.Grade,
			cellNumber(e.YieldStrength), cellNumber(e.UTS),
			cellNumber(e.AshbyIndex), cellNumber(e.SafetyIndex), cellNumber(e.YieldToUTSRatio),
		})
	}
	if err := writeRows(f, SheetAdmitted, rows); err != nil {
		return err
	}

	allHeader := []string{"ID", "Grade", "Yield (MPa)", "UTS (MPa)", "Strength OK", "UTS OK", "Safety OK", "Admitted", "Strength/Density", "Safety Index", "Yield/UTS"}
	rows = make([][]interface{}, 0, len(res.All)+1)
	rows = append(rows, toRow(allHeader))
	for _, e := range res.All {
		rows = append(rows, []interface{}{
			e.ID, e.Grade,
			cellNumber(e.YieldStrength), cellNumber(e.UTS),
			e.StrengthOK, e.UTSOK, e.SafetyOK, e.Admitted,
			cellNumber(e.AshbyIndex), cellNumber(e.SafetyIndex), cellNumber(e.YieldToUTSRatio),
		})
	}
	if err := writeRows(f, SheetAll, rows); err != nil {
		return err
	}

	return f.Write(w)
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &rows[i]); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

// cellNumber keeps finite values numeric; Excel has no infinity, so the
// sentinels are written as text.
func cellNumber(v float64) interface{} {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return FormatFloat(v, 0)
	}
	return v
}

func toRow(cells []string) []interface{} {
	out := make([]interface{}, len(cells))
	for i, c := range cells {
		out[i] = c
	}
	return out
}
