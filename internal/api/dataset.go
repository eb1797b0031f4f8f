package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/MikeSquared-Agency/Alloy/internal/dataset"
	"github.com/MikeSquared-Agency/Alloy/internal/selection"
)

type DatasetHandler struct {
	registry *dataset.Registry
	bounds   selection.Bounds
	logger   *slog.Logger
}

func NewDatasetHandler(reg *dataset.Registry, bounds selection.Bounds, logger *slog.Logger) *DatasetHandler {
	return &DatasetHandler{registry: reg, bounds: bounds, logger: logger}
}

type DatasetSummary struct {
	Version            int64                 `json:"version"`
	Source             string                `json:"source"`
	LoadedAt           time.Time             `json:"loaded_at"`
	Records            int                   `json:"records"`
	Limits             selection.Limits      `json:"limits"`
	Bounds             selection.Bounds      `json:"bounds"`
	DefaultRequirement selection.Requirement `json:"default_requirement"`
}

func (h *DatasetHandler) summary(cat *dataset.Catalog) DatasetSummary {
	return DatasetSummary{
		Version:            cat.Version,
		Source:             cat.Source,
		LoadedAt:           cat.LoadedAt,
		Records:            cat.Len(),
		Limits:             cat.Limits,
		Bounds:             h.bounds,
		DefaultRequirement: h.bounds.DefaultRequirement(cat.Limits),
	}
}

func (h *DatasetHandler) Summary(w http.ResponseWriter, r *http.Request) {
	cat := h.registry.Current()
	if cat == nil {
		writeError(w, http.StatusServiceUnavailable, "dataset not loaded")
		return
	}
	writeJSON(w, http.StatusOK, h.summary(cat))
}

type LimitsResponse struct {
	Limits             selection.Limits      `json:"limits"`
	FactorOfSafety     float64               `json:"factor_of_safety"`
	MinAllowable       *float64              `json:"min_allowable"`
	MaxAllowable       *float64              `json:"max_allowable"`
	Bounds             selection.Bounds      `json:"bounds"`
	DefaultRequirement selection.Requirement `json:"default_requirement"`
}

func (h *DatasetHandler) Limits(w http.ResponseWriter, r *http.Request) {
	cat := h.registry.Current()
	if cat == nil {
		writeError(w, http.StatusServiceUnavailable, "dataset not loaded")
		return
	}

	fos := h.bounds.DefaultFactorOfSafety
	if v := r.URL.Query().Get("factor_of_safety"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid factor_of_safety")
			return
		}
		fos = f
	}

	min, max, err := cat.Limits.AllowableRange(fos)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, LimitsResponse{
		Limits:             cat.Limits,
		FactorOfSafety:     fos,
		MinAllowable:       finite(min),
		MaxAllowable:       finite(max),
		Bounds:             h.bounds,
		DefaultRequirement: h.bounds.DefaultRequirement(cat.Limits),
	})
}

func (h *DatasetHandler) Reload(w http.ResponseWriter, r *http.Request) {
	if err := h.registry.Reload(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, h.summary(h.registry.Current()))
}
