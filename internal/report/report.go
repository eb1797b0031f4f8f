package report

import (
	"math"
	"strconv"
	"time"

	"github.com/MikeSquared-Agency/Alloy/internal/selection"
)

// NoMatchesMessage is shown wherever an evaluation admits nothing.
const NoMatchesMessage = "No steel grades satisfy the current requirements."

// Meta describes the report header.
type Meta struct {
	Title        string    `json:"title"`
	Project      string    `json:"project"`
	Author       string    `json:"author"`
	EvaluationID string    `json:"evaluation_id"`
	GeneratedAt  time.Time `json:"generated_at"`
}

func (m Meta) withDefaults() Meta {
	if m.Title == "" {
		m.Title = "Steel Selection Report"
	}
	if m.GeneratedAt.IsZero() {
		m.GeneratedAt = time.Now()
	}
	return m
}

// Column headers shared by the PDF and XLSX tables.
var tableHeader = []string{"Rank", "ID", "Grade", "Yield (MPa)", "UTS (MPa)", "Strength/Density", "Safety Index", "Yield/UTS"}

func tableRow(rank int, e selection.EnrichedRecord) []string {
	return []string{
		strconv.Itoa(rank),
		strconv.Itoa(e.ID),
		e.Grade,
		FormatFloat(e.YieldStrength, 1),
		FormatFloat(e.UTS, 1),
		FormatFloat(e.AshbyIndex, 5),
		FormatFloat(e.SafetyIndex, 3),
		FormatFloat(e.YieldToUTSRatio, 3),
	}
}

// FormatFloat renders v with prec decimals; infinite sentinels print as "inf".
func FormatFloat(v float64, prec int) string {
	switch {
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	case math.IsNaN(v):
		return "n/a"
	}
	return strconv.FormatFloat(v, 'f', prec, 64)
}
