package store

import (
	"context"

	"github.com/MikeSquared-Agency/Alloy/internal/selection"
)

// GradeStore persists the steel grade dataset. Selections and evaluation
// results are never stored.
type GradeStore interface {
	ListGrades(ctx context.Context) ([]selection.Record, error)
	ReplaceGrades(ctx context.Context, records []selection.Record) error
	CountGrades(ctx context.Context) (int, error)
	Close() error
}

// GradeRow is the database shape of a record. Density is nullable; the
// store's default density fills it on read.
type GradeRow struct {
	ID            int
	Grade         string
	YieldStrength float64
	UTS           float64
	Density       *float64
	Attributes    map[string]string
}

// ToRecord converts a row, applying defaultDensity when the row has none.
func (g GradeRow) ToRecord(defaultDensity float64) selection.Record {
	density := defaultDensity
	if g.Density != nil && *g.Density > 0 {
		density = *g.Density
	}
	return selection.Record{
		ID:            g.ID,
		Grade:         g.Grade,
		YieldStrength: g.YieldStrength,
		UTS:           g.UTS,
		Density:       density,
		Attributes:    g.Attributes,
	}
}

// FromRecord converts a record for storage.
func FromRecord(r selection.Record) GradeRow {
	d := r.Density
	return GradeRow{
		ID:            r.ID,
		Grade:         r.Grade,
		YieldStrength: r.YieldStrength,
		UTS:           r.UTS,
		Density:       &d,
		Attributes:    r.Attributes,
	}
}
