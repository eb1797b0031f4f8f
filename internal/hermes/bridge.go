package hermes

import (
	"context"
	"encoding/json"
	"log/slog"
	"math"
	"time"

	"github.com/MikeSquared-Agency/Alloy/internal/dataset"
	"github.com/MikeSquared-Agency/Alloy/internal/selection"
)

// NewDatasetLoadedEvent summarizes a freshly loaded catalog.
func NewDatasetLoadedEvent(cat *dataset.Catalog) DatasetLoadedEvent {
	return DatasetLoadedEvent{
		Version:  cat.Version,
		Source:   cat.Source,
		Records:  cat.Len(),
		MinYield: cat.Limits.MinYield,
		MaxYield: cat.Limits.MaxYield,
		MinUTS:   cat.Limits.MinUTS,
		MaxUTS:   cat.Limits.MaxUTS,
		LoadedAt: cat.LoadedAt,
	}
}

// NewSelectionEvaluatedEvent summarizes one evaluation.
func NewSelectionEvaluatedEvent(evaluationID string, datasetVersion int64, res selection.RankedResult, at time.Time) SelectionEvaluatedEvent {
	ev := SelectionEvaluatedEvent{
		EvaluationID:    evaluationID,
		DatasetVersion:  datasetVersion,
		RequiredYield:   res.Requirement.RequiredYield,
		RequiredUTS:     res.Requirement.RequiredUTS,
		FactorOfSafety:  res.Requirement.FactorOfSafety,
		AllowableStress: finite(res.AllowableStress),
		AdmittedCount:   len(res.Admitted),
		Total:           len(res.All),
		Timestamp:       at,
	}
	if !res.Empty() {
		top := res.Admitted[0].ID
		ev.TopGradeID = &top
	}
	return ev
}

// AnnounceLoads publishes SubjectDatasetLoaded after every load of reg.
func AnnounceLoads(c Client, reg *dataset.Registry, logger *slog.Logger) {
	reg.OnLoad(func(cat *dataset.Catalog) {
		if err := c.Publish(SubjectDatasetLoaded, NewDatasetLoadedEvent(cat)); err != nil {
			logger.Warn("failed to publish dataset loaded event", "error", err)
		}
	})
}

// HandleReloadRequests reloads reg whenever a message arrives on
// SubjectDatasetReload.
func HandleReloadRequests(ctx context.Context, c Client, reg *dataset.Registry, logger *slog.Logger) error {
	return c.Subscribe(SubjectDatasetReload, func(_ string, data []byte) {
		var req DatasetReloadRequest
		if len(data) > 0 {
			if err := json.Unmarshal(data, &req); err != nil {
				logger.Warn("ignoring malformed reload request", "error", err)
				return
			}
		}
		logger.Info("dataset reload requested", "requested_by", req.RequestedBy)
		_ = reg.Reload(ctx)
	})
}

func finite(v float64) *float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return nil
	}
	return &v
}
