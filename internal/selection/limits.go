package selection

import "math"

// Limits are the observed strength ranges of a dataset. UIs use them to
// bound the yield and UTS inputs.
type Limits struct {
	Count    int     `json:"count"`
	MinYield float64 `json:"min_yield"`
	MaxYield float64 `json:"max_yield"`
	MinUTS   float64 `json:"min_uts"`
	MaxUTS   float64 `json:"max_uts"`
}

// ComputeLimits scans records for min/max yield strength and UTS.
func ComputeLimits(records []Record) Limits {
	if len(records) == 0 {
		return Limits{}
	}
	l := Limits{
		Count:    len(records),
		MinYield: math.Inf(1),
		MaxYield: math.Inf(-1),
		MinUTS:   math.Inf(1),
		MaxUTS:   math.Inf(-1),
	}
	for _, r := range records {
		l.MinYield = math.Min(l.MinYield, r.YieldStrength)
		l.MaxYield = math.Max(l.MaxYield, r.YieldStrength)
		l.MinUTS = math.Min(l.MinUTS, r.UTS)
		l.MaxUTS = math.Max(l.MaxUTS, r.UTS)
	}
	return l
}

// AllowableRange returns the allowable stress range implied by the dataset's
// yield range at the given factor of safety.
func (l Limits) AllowableRange(fos float64) (min, max float64, err error) {
	if fos == 0 {
		return 0, 0, ErrDivisionByZero
	}
	return l.MinYield / fos, l.MaxYield / fos, nil
}

// Bounds are the advisory input ranges a UI applies before calling Evaluate.
// The engine itself never clamps.
type Bounds struct {
	MinFactorOfSafety     float64 `json:"min_factor_of_safety" yaml:"min_factor_of_safety"`
	MaxFactorOfSafety     float64 `json:"max_factor_of_safety" yaml:"max_factor_of_safety"`
	DefaultFactorOfSafety float64 `json:"default_factor_of_safety" yaml:"default_factor_of_safety"`
	FactorOfSafetyStep    float64 `json:"factor_of_safety_step" yaml:"factor_of_safety_step"`
}

// DefaultBounds returns the factor-of-safety slider range [1.2, 3.0], default 1.7.
func DefaultBounds() Bounds {
	return Bounds{
		MinFactorOfSafety:     1.2,
		MaxFactorOfSafety:     3.0,
		DefaultFactorOfSafety: 1.7,
		FactorOfSafetyStep:    0.1,
	}
}

// DefaultRequirement is the starting point of the input controls: the
// weakest yield and UTS in the dataset at the default factor of safety.
func (b Bounds) DefaultRequirement(l Limits) Requirement {
	return Requirement{
		RequiredYield:  l.MinYield,
		RequiredUTS:    l.MinUTS,
		FactorOfSafety: b.DefaultFactorOfSafety,
	}
}

// Clamp pulls req into the advisory bounds. Yield and UTS are only clamped
// when the dataset is non-empty.
func (b Bounds) Clamp(req Requirement, l Limits) Requirement {
	req.FactorOfSafety = clamp(req.FactorOfSafety, b.MinFactorOfSafety, b.MaxFactorOfSafety)
	if l.Count > 0 {
		req.RequiredYield = clamp(req.RequiredYield, l.MinYield, l.MaxYield)
		req.RequiredUTS = clamp(req.RequiredUTS, l.MinUTS, l.MaxUTS)
	}
	return req
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
