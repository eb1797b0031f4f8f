package api

import (
	"encoding/json"
	"math"
	"net/http"

	"github.com/MikeSquared-Agency/Alloy/internal/selection"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// finite maps the engine's infinite sentinels to JSON null.
func finite(v float64) *float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return nil
	}
	return &v
}

type GradeResponse struct {
	ID            int               `json:"id"`
	Grade         string            `json:"grade,omitempty"`
	YieldStrength float64           `json:"yield_strength"`
	UTS           float64           `json:"uts"`
	Density       float64           `json:"density"`
	Attributes    map[string]string `json:"attributes,omitempty"`

	StrengthOK bool `json:"strength_ok"`
	UTSOK      bool `json:"uts_ok"`
	SafetyOK   bool `json:"safety_ok"`
	Admitted   bool `json:"admitted"`

	AshbyIndex      *float64 `json:"ashby_index"`
	SafetyIndex     *float64 `json:"safety_index"`
	YieldToUTSRatio *float64 `json:"yield_to_uts_ratio"`
}

func newGradeResponse(e selection.EnrichedRecord) GradeResponse {
	return GradeResponse{
		ID:              e.ID,
		Grade:           e.Grade,
		YieldStrength:   e.YieldStrength,
		UTS:             e.UTS,
		Density:         e.Density,
		Attributes:      e.Attributes,
		StrengthOK:      e.StrengthOK,
		UTSOK:           e.UTSOK,
		SafetyOK:        e.SafetyOK,
		Admitted:        e.Admitted,
		AshbyIndex:      finite(e.AshbyIndex),
		SafetyIndex:     finite(e.SafetyIndex),
		YieldToUTSRatio: finite(e.YieldToUTSRatio),
	}
}

func newGradeResponses(in []selection.EnrichedRecord) []GradeResponse {
	out := make([]GradeResponse, len(in))
	for i, e := range in {
		out[i] = newGradeResponse(e)
	}
	return out
}

type EvaluationResponse struct {
	EvaluationID    string                `json:"evaluation_id"`
	DatasetVersion  int64                 `json:"dataset_version"`
	Requirement     selection.Requirement `json:"requirement"`
	AllowableStress *float64              `json:"allowable_stress"`
	AdmittedCount   int                   `json:"admitted_count"`
	Total           int                   `json:"total"`
	NoMatches       bool                  `json:"no_matches"`
	Message         string                `json:"message,omitempty"`
	Admitted        []GradeResponse       `json:"admitted"`
	All             []GradeResponse       `json:"all"`
}

type PointResponse struct {
	ID       int      `json:"id"`
	Grade    string   `json:"grade,omitempty"`
	X        *float64 `json:"x"`
	Y        *float64 `json:"y"`
	Admitted bool     `json:"admitted"`
}

type MapResponse struct {
	DatasetVersion int64           `json:"dataset_version"`
	XLabel         string          `json:"x_label"`
	YLabel         string          `json:"y_label"`
	Points         []PointResponse `json:"points"`
}

func newMapResponse(version int64, all []selection.EnrichedRecord) MapResponse {
	points := selection.MapPoints(all)
	resp := MapResponse{
		DatasetVersion: version,
		XLabel:         selection.MapXLabel,
		YLabel:         selection.MapYLabel,
		Points:         make([]PointResponse, len(points)),
	}
	for i, p := range points {
		resp.Points[i] = PointResponse{ID: p.ID, Grade: p.Grade, X: finite(p.X), Y: finite(p.Y), Admitted: p.Admitted}
	}
	return resp
}
