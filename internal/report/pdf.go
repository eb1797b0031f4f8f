package report

import (
	"fmt"
	"io"

	"github.com/phpdave11/gofpdf"

	"github.com/MikeSquared-Agency/Alloy/internal/selection"
)

var pdfColumnWidths = []float64{12, 12, 38, 22, 22, 30, 25, 22}

// WritePDF renders the ranked admitted grades of res as an A4 report.
func WritePDF(w io.Writer, res selection.RankedResult, meta Meta) error {
	meta = meta.withDefaults()

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(meta.Title, false)
	pdf.SetAuthor(meta.Author, false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, meta.Title)
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 10)
	for _, line := range []string{
		fmt.Sprintf("Project: %s", meta.Project),
		fmt.Sprintf("Author: %s", meta.Author),
		fmt.Sprintf("Evaluation: %s", meta.EvaluationID),
		fmt.Sprintf("Date: %s", meta.GeneratedAt.Format("2006-01-02 15:04")),
	} {
		pdf.Cell(0, 5, line)
		pdf.Ln(5)
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Design Requirements")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 10)
	req := res.Requirement
	for _, line := range []string{
		fmt.Sprintf("Required yield strength: %s MPa", FormatFloat(req.RequiredYield, 1)),
		fmt.Sprintf("Minimum UTS: %s MPa", FormatFloat(req.RequiredUTS, 1)),
		fmt.Sprintf("Factor of safety: %s", FormatFloat(req.FactorOfSafety, 2)),
		fmt.Sprintf("Allowable stress: %s MPa", FormatFloat(res.AllowableStress, 2)),
		fmt.Sprintf("Admitted: %d of %d", len(res.Admitted), len(res.All)),
	} {
		pdf.Cell(0, 5, line)
		pdf.Ln(5)
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Suitable Steel Conditions")
	pdf.Ln(8)

	if res.Empty() {
		pdf.SetFont("Helvetica", "I", 10)
		pdf.MultiCell(0, 6, NoMatchesMessage, "", "L", false)
	} else {
		pdf.SetFont("Helvetica", "B", 8)
		pdf.SetFillColor(230, 230, 230)
		for i, h := range tableHeader {
			pdf.CellFormat(pdfColumnWidths[i], 6, h, "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)

		pdf.SetFont("Helvetica", "", 8)
		for i, e := range res.Admitted {
			for j, cell := range tableRow(i+1, e) {
				align := "R"
				if j == 2 {
					align = "L"
				}
				pdf.CellFormat(pdfColumnWidths[j], 5, cell, "1", 0, align, false, 0, "")
			}
			pdf.Ln(-1)
		}
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return pdf.Output(w)
}
