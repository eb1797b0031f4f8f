package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	Evaluations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "alloy",
		Name:      "evaluations_total",
		Help:      "Selection evaluations by outcome (matched, no_matches, invalid).",
	}, []string{"outcome"})

	AdmittedGrades = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "alloy",
		Name:      "admitted_grades",
		Help:      "Number of admitted grades per successful evaluation.",
		Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
	})

	Lookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "alloy",
		Name:      "grade_lookups_total",
		Help:      "Id lookups by result (hit, miss).",
	}, []string{"result"})

	DatasetRecords = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "alloy",
		Name:      "dataset_records",
		Help:      "Records in the active dataset catalog.",
	})

	DatasetVersion = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "alloy",
		Name:      "dataset_version",
		Help:      "Version of the active dataset catalog.",
	})

	ReportsGenerated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "alloy",
		Name:      "reports_generated_total",
		Help:      "Reports written by format.",
	}, []string{"format"})
)

// Outcome labels for Evaluations.
const (
	OutcomeMatched   = "matched"
	OutcomeNoMatches = "no_matches"
	OutcomeInvalid   = "invalid"
)

// ObserveEvaluation records one evaluation result.
func ObserveEvaluation(admitted int, err error) {
	switch {
	case err != nil:
		Evaluations.WithLabelValues(OutcomeInvalid).Inc()
	case admitted == 0:
		Evaluations.WithLabelValues(OutcomeNoMatches).Inc()
		AdmittedGrades.Observe(0)
	default:
		Evaluations.WithLabelValues(OutcomeMatched).Inc()
		AdmittedGrades.Observe(float64(admitted))
	}
}

// ObserveCatalog records the size and version of a newly active catalog.
func ObserveCatalog(records int, version int64) {
	DatasetRecords.Set(float64(records))
	DatasetVersion.Set(float64(version))
}
