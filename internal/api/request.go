package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/MikeSquared-Agency/Alloy/internal/dataset"
	"github.com/MikeSquared-Agency/Alloy/internal/selection"
)

// RequirementRequest is the body of every /selection endpoint. Omitted
// fields fall back to the dataset's default requirement. Clamp applies the
// advisory bounds before evaluating.
type RequirementRequest struct {
	RequiredYield  *float64 `json:"required_yield"`
	RequiredUTS    *float64 `json:"required_uts"`
	FactorOfSafety *float64 `json:"factor_of_safety"`
	Clamp          bool     `json:"clamp,omitempty"`
}

func (rr RequirementRequest) resolve(cat *dataset.Catalog, bounds selection.Bounds) selection.Requirement {
	req := bounds.DefaultRequirement(cat.Limits)
	if rr.RequiredYield != nil {
		req.RequiredYield = *rr.RequiredYield
	}
	if rr.RequiredUTS != nil {
		req.RequiredUTS = *rr.RequiredUTS
	}
	if rr.FactorOfSafety != nil {
		req.FactorOfSafety = *rr.FactorOfSafety
	}
	if rr.Clamp {
		req = bounds.Clamp(req, cat.Limits)
	}
	return req
}

type ReportRequest struct {
	RequirementRequest
	Title   string `json:"title,omitempty"`
	Project string `json:"project,omitempty"`
	Author  string `json:"author,omitempty"`
}

// decodeBody decodes an optional JSON body; an empty body leaves v untouched.
func decodeBody(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
