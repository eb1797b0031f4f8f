package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MikeSquared-Agency/Alloy/internal/dataset"
	"github.com/MikeSquared-Agency/Alloy/internal/hermes"
	"github.com/MikeSquared-Agency/Alloy/internal/selection"
)

// NewRouter builds the public API. h may be nil when events are disabled.
func NewRouter(reg *dataset.Registry, h hermes.Client, bounds selection.Bounds, adminToken string, requestsPerMinute int, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(RequestLogger(logger))
	r.Use(RateLimitMiddleware(requestsPerMinute))

	ds := NewDatasetHandler(reg, bounds, logger)
	sel := NewSelectionHandler(reg, h, bounds, logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/dataset", ds.Summary)
		r.Get("/dataset/limits", ds.Limits)

		r.Post("/selection/evaluate", sel.Evaluate)
		r.Post("/selection/map", sel.Map)
		r.Post("/selection/grades/{id}", sel.Grade)
		r.Post("/selection/report.pdf", sel.ReportPDF)
		r.Post("/selection/report.xlsx", sel.ReportXLSX)

		r.Group(func(r chi.Router) {
			r.Use(AdminAuthMiddleware(adminToken))
			r.Post("/dataset/reload", ds.Reload)
		})
	})

	return r
}

func NewMetricsRouter() http.Handler {
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())
	return r
}
