package selection

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

var (
	// ErrInvalidInput is returned for requirements the engine cannot evaluate.
	ErrInvalidInput = errors.New("invalid input")
	// ErrDivisionByZero is returned when the factor of safety is zero.
	ErrDivisionByZero = fmt.Errorf("%w: factor of safety must not be zero (division by zero)", ErrInvalidInput)
)

// Validate checks that the requirement can be evaluated.
func (r Requirement) Validate() error {
	fields := []struct {
		name  string
		value float64
	}{
		{"required_yield", r.RequiredYield},
		{"required_uts", r.RequiredUTS},
		{"factor_of_safety", r.FactorOfSafety},
	}
	for _, f := range fields {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return fmt.Errorf("%w: %s must be finite, got %v", ErrInvalidInput, f.name, f.value)
		}
	}
	if r.FactorOfSafety == 0 {
		return ErrDivisionByZero
	}
	return nil
}

// AllowableStress returns requiredYield / factorOfSafety.
func (r Requirement) AllowableStress() (float64, error) {
	if err := r.Validate(); err != nil {
		return 0, err
	}
	return r.RequiredYield / r.FactorOfSafety, nil
}

// Evaluate applies the three design rules to every record and ranks the
// admitted ones. It is a pure function: records are never modified and the
// result shares no mutable state with the input.
func Evaluate(records []Record, req Requirement) (RankedResult, error) {
	allowable, err := req.AllowableStress()
	if err != nil {
		return RankedResult{}, err
	}

	all := make([]EnrichedRecord, len(records))
	admitted := make([]EnrichedRecord, 0, len(records))
	for i, rec := range records {
		e := enrich(rec, req, allowable)
		all[i] = e
		if e.Admitted {
			admitted = append(admitted, e)
		}
	}

	Rank(admitted)

	return RankedResult{
		Requirement:     req,
		AllowableStress: allowable,
		All:             all,
		Admitted:        admitted,
	}, nil
}

// enrich computes flags and indices for one record. The safety check compares
// the record's own yield strength to the allowable stress derived from the
// requirement, so it is independent of the strength check.
func enrich(rec Record, req Requirement, allowable float64) EnrichedRecord {
	if rec.Attributes != nil {
		attrs := make(map[string]string, len(rec.Attributes))
		for k, v := range rec.Attributes {
			attrs[k] = v
		}
		rec.Attributes = attrs
	}

	e := EnrichedRecord{Record: rec}
	e.StrengthOK = rec.YieldStrength >= req.RequiredYield
	e.UTSOK = rec.UTS >= req.RequiredUTS
	e.SafetyOK = rec.YieldStrength >= allowable
	e.Admitted = e.StrengthOK && e.UTSOK && e.SafetyOK

	e.AshbyIndex = ratio(rec.YieldStrength, rec.Density)
	e.SafetyIndex = ratio(rec.YieldStrength, allowable)
	e.YieldToUTSRatio = ratio(rec.YieldStrength, rec.UTS)
	return e
}

// ratio divides a by b, returning +Inf instead of NaN or ±Inf when b is zero.
func ratio(a, b float64) float64 {
	if b == 0 {
		return math.Inf(1)
	}
	return a / b
}

// Rank sorts records in place: AshbyIndex descending, then YieldToUTSRatio
// ascending. Ties keep their relative order.
func Rank(records []EnrichedRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.AshbyIndex != b.AshbyIndex {
			return a.AshbyIndex > b.AshbyIndex
		}
		return a.YieldToUTSRatio < b.YieldToUTSRatio
	})
}

// FindByID returns the record with the given id. Lookup is by the id assigned
// at load time, never by position, so it stays correct after filtering.
func FindByID(all []EnrichedRecord, id int) (EnrichedRecord, bool) {
	for _, e := range all {
		if e.ID == id {
			return e, true
		}
	}
	return EnrichedRecord{}, false
}
