package selection

// DefaultDensity is the uniform steel density in kg/m³ applied by loaders
// when the dataset carries no per-record density.
const DefaultDensity = 7850.0

// Record is one steel grade/condition as loaded from the dataset.
// Records are read-only once loaded; the engine never mutates them.
type Record struct {
	ID            int               `json:"id"`
	Grade         string            `json:"grade,omitempty"`
	YieldStrength float64           `json:"yield_strength"` // MPa
	UTS           float64           `json:"uts"`            // MPa
	Density       float64           `json:"density"`        // kg/m³
	Attributes    map[string]string `json:"attributes,omitempty"`
}

// Requirement holds the three design inputs for one evaluation.
type Requirement struct {
	RequiredYield  float64 `json:"required_yield"`
	RequiredUTS    float64 `json:"required_uts"`
	FactorOfSafety float64 `json:"factor_of_safety"`
}

// EnrichedRecord is a Record with the admission flags and derived indices of
// a single evaluation. It is recomputed on every call to Evaluate.
type EnrichedRecord struct {
	Record

	StrengthOK bool `json:"strength_ok"`
	UTSOK      bool `json:"uts_ok"`
	SafetyOK   bool `json:"safety_ok"`
	Admitted   bool `json:"admitted"`

	AshbyIndex      float64 `json:"ashby_index"`
	SafetyIndex     float64 `json:"safety_index"`
	YieldToUTSRatio float64 `json:"yield_to_uts_ratio"`
}

// RankedResult is the output of Evaluate.
type RankedResult struct {
	Requirement     Requirement `json:"requirement"`
	AllowableStress float64     `json:"allowable_stress"`

	// All holds every input record in input order.
	All []EnrichedRecord `json:"all"`
	// Admitted holds the admitted subsequence, ranked.
	Admitted []EnrichedRecord `json:"admitted"`
}

// Empty reports whether no record was admitted.
func (r RankedResult) Empty() bool {
	return len(r.Admitted) == 0
}

// Find looks up a record of this evaluation by id.
func (r RankedResult) Find(id int) (EnrichedRecord, bool) {
	return FindByID(r.All, id)
}
