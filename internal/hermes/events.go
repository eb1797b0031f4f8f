package hermes

import "time"

type DatasetLoadedEvent struct {
	Version  int64     `json:"version"`
	Source   string    `json:"source"`
	Records  int       `json:"records"`
	MinYield float64   `json:"min_yield"`
	MaxYield float64   `json:"max_yield"`
	MinUTS   float64   `json:"min_uts"`
	MaxUTS   float64   `json:"max_uts"`
	LoadedAt time.Time `json:"loaded_at"`
}

// DatasetReloadRequest is the optional payload of SubjectDatasetReload.
type DatasetReloadRequest struct {
	RequestedBy string `json:"requested_by,omitempty"`
}

type SelectionEvaluatedEvent struct {
	EvaluationID    string    `json:"evaluation_id"`
	DatasetVersion  int64     `json:"dataset_version"`
	RequiredYield   float64   `json:"required_yield"`
	RequiredUTS     float64   `json:"required_uts"`
	FactorOfSafety  float64   `json:"factor_of_safety"`
	AllowableStress *float64  `json:"allowable_stress"` // nil when the division overflows
	AdmittedCount   int       `json:"admitted_count"`
	Total           int       `json:"total"`
	TopGradeID      *int      `json:"top_grade_id,omitempty"`
	Timestamp       time.Time `json:"timestamp"`
}
