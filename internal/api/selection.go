package api

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/Alloy/internal/dataset"
	"github.com/MikeSquared-Agency/Alloy/internal/hermes"
	"github.com/MikeSquared-Agency/Alloy/internal/metrics"
	"github.com/MikeSquared-Agency/Alloy/internal/report"
	"github.com/MikeSquared-Agency/Alloy/internal/selection"
)

const (
	contentTypePDF  = "application/pdf"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type SelectionHandler struct {
	registry *dataset.Registry
	hermes   hermes.Client
	bounds   selection.Bounds
	logger   *slog.Logger
	now      func() time.Time
}

func NewSelectionHandler(reg *dataset.Registry, h hermes.Client, bounds selection.Bounds, logger *slog.Logger) *SelectionHandler {
	return &SelectionHandler{registry: reg, hermes: h, bounds: bounds, logger: logger, now: time.Now}
}

// evaluate decodes the requirement, runs it against the current catalog and
// writes the error response itself. ok is false when a response was written.
func (h *SelectionHandler) evaluate(w http.ResponseWriter, body *RequirementRequest) (*dataset.Catalog, selection.RankedResult, bool) {
	cat := h.registry.Current()
	if cat == nil {
		writeError(w, http.StatusServiceUnavailable, "dataset not loaded")
		return nil, selection.RankedResult{}, false
	}

	res, err := cat.Evaluate(body.resolve(cat, h.bounds))
	metrics.ObserveEvaluation(len(res.Admitted), err)
	if err != nil {
		if errors.Is(err, selection.ErrInvalidInput) {
			writeError(w, http.StatusBadRequest, err.Error())
		} else {
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return nil, selection.RankedResult{}, false
	}
	return cat, res, true
}

func (h *SelectionHandler) Evaluate(w http.ResponseWriter, r *http.Request) {
	var body RequirementRequest
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	cat, res, ok := h.evaluate(w, &body)
	if !ok {
		return
	}

	evalID := uuid.New().String()
	resp := EvaluationResponse{
		EvaluationID:    evalID,
		DatasetVersion:  cat.Version,
		Requirement:     res.Requirement,
		AllowableStress: finite(res.AllowableStress),
		AdmittedCount:   len(res.Admitted),
		Total:           len(res.All),
		NoMatches:       res.Empty(),
		Admitted:        newGradeResponses(res.Admitted),
		All:             newGradeResponses(res.All),
	}
	if res.Empty() {
		resp.Message = report.NoMatchesMessage
	}

	if h.hermes != nil {
		ev := hermes.NewSelectionEvaluatedEvent(evalID, cat.Version, res, h.now())
		if err := h.hermes.Publish(hermes.SubjectSelectionEvaluated, ev); err != nil {
			h.logger.Warn("failed to publish selection event", "evaluation_id", evalID, "error", err)
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *SelectionHandler) Map(w http.ResponseWriter, r *http.Request) {
	var body RequirementRequest
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	cat, res, ok := h.evaluate(w, &body)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, newMapResponse(cat.Version, res.All))
}

// Grade returns one record of the evaluation by id, whether or not it was
// admitted.
func (h *SelectionHandler) Grade(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid grade id")
		return
	}
	var body RequirementRequest
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	_, res, ok := h.evaluate(w, &body)
	if !ok {
		return
	}

	rec, found := res.Find(id)
	if !found {
		metrics.Lookups.WithLabelValues("miss").Inc()
		writeError(w, http.StatusNotFound, "grade not found")
		return
	}
	metrics.Lookups.WithLabelValues("hit").Inc()
	writeJSON(w, http.StatusOK, newGradeResponse(rec))
}

func (h *SelectionHandler) ReportPDF(w http.ResponseWriter, r *http.Request) {
	var body ReportRequest
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	_, res, ok := h.evaluate(w, &body.RequirementRequest)
	if !ok {
		return
	}

	meta := report.Meta{
		Title:        body.Title,
		Project:      body.Project,
		Author:       body.Author,
		EvaluationID: uuid.New().String(),
		GeneratedAt:  h.now(),
	}
	var buf bytes.Buffer
	if err := report.WritePDF(&buf, res, meta); err != nil {
		h.logger.Error("pdf report failed", "error", err)
		writeError(w, http.StatusInternalServerError, "report generation failed")
		return
	}
	metrics.ReportsGenerated.WithLabelValues("pdf").Inc()
	writeAttachment(w, contentTypePDF, "steel_selection_report.pdf", buf.Bytes())
}

func (h *SelectionHandler) ReportXLSX(w http.ResponseWriter, r *http.Request) {
	var body ReportRequest
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	_, res, ok := h.evaluate(w, &body.RequirementRequest)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := report.WriteXLSX(&buf, res); err != nil {
		h.logger.Error("xlsx report failed", "error", err)
		writeError(w, http.StatusInternalServerError, "report generation failed")
		return
	}
	metrics.ReportsGenerated.WithLabelValues("xlsx").Inc()
	writeAttachment(w, contentTypeXLSX, "steel_selection_results.xlsx", buf.Bytes())
}

func writeAttachment(w http.ResponseWriter, contentType, filename string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
