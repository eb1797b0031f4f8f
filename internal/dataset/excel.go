package dataset

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/MikeSquared-Agency/Alloy/internal/selection"
)

// ExcelSource reads steel records from an xlsx workbook. The first row is the
// header; columns are located by name.
type ExcelSource struct {
	Path        string
	Sheet       string // defaults to the first sheet
	YieldColumn string
	UTSColumn   string
	GradeColumn string // optional
	Density     float64
	Logger      *slog.Logger
}

// NewExcelSource returns a source for path with the standard column names.
func NewExcelSource(path string, logger *slog.Logger) *ExcelSource {
	return &ExcelSource{
		Path:        path,
		YieldColumn: "Yield_Strength",
		UTSColumn:   "UTS",
		GradeColumn: "Steel_Grade",
		Density:     selection.DefaultDensity,
		Logger:      logger,
	}
}

func (s *ExcelSource) Load(ctx context.Context) ([]selection.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := excelize.OpenFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()
	return s.parse(f)
}

// Read parses a workbook from r, e.g. an uploaded file.
func (s *ExcelSource) Read(r io.Reader) ([]selection.Record, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()
	return s.parse(f)
}

func (s *ExcelSource) parse(f *excelize.File) ([]selection.Record, error) {
	sheet := s.Sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q is empty", sheet)
	}

	header := make([]string, len(rows[0]))
	index := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		name = strings.TrimSpace(name)
		header[i] = name
		if _, dup := index[name]; !dup && name != "" {
			index[name] = i
		}
	}
	yieldCol, ok := index[s.YieldColumn]
	if !ok {
		return nil, fmt.Errorf("missing column %q", s.YieldColumn)
	}
	utsCol, ok := index[s.UTSColumn]
	if !ok {
		return nil, fmt.Errorf("missing column %q", s.UTSColumn)
	}
	gradeCol, hasGrade := index[s.GradeColumn]
	if s.GradeColumn == "" {
		hasGrade = false
	}

	density := s.Density
	if density <= 0 {
		density = selection.DefaultDensity
	}

	records := make([]selection.Record, 0, len(rows)-1)
	skipped := 0
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		yield, err := cellFloat(row, yieldCol)
		if err != nil {
			skipped++
			continue
		}
		uts, err := cellFloat(row, utsCol)
		if err != nil {
			skipped++
			continue
		}

		rec := selection.Record{
			// positional id: data row index, stable across reloads of the same sheet
			ID:            i - 1,
			YieldStrength: yield,
			UTS:           uts,
			Density:       density,
		}
		if hasGrade && gradeCol < len(row) {
			rec.Grade = strings.TrimSpace(row[gradeCol])
		}
		for col, v := range row {
			if col == yieldCol || col == utsCol || (hasGrade && col == gradeCol) {
				continue
			}
			if col >= len(header) || header[col] == "" || strings.TrimSpace(v) == "" {
				continue
			}
			if rec.Attributes == nil {
				rec.Attributes = make(map[string]string)
			}
			rec.Attributes[header[col]] = strings.TrimSpace(v)
		}
		records = append(records, rec)
	}

	if skipped > 0 && s.Logger != nil {
		s.Logger.Warn("skipped rows without numeric strength values", "sheet", sheet, "skipped", skipped)
	}
	return records, nil
}

func cellFloat(row []string, col int) (float64, error) {
	if col >= len(row) {
		return 0, fmt.Errorf("column %d missing", col)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(row[col]), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("column %d: non-finite value %q", col, row[col])
	}
	return v, nil
}
