package dataset

import (
	"context"
	"time"

	"github.com/MikeSquared-Agency/Alloy/internal/selection"
)

// Source produces the raw record set. Implementations assign ids and density.
type Source interface {
	Load(ctx context.Context) ([]selection.Record, error)
}

// Catalog is one loaded snapshot of the dataset. It is never modified after
// construction; a reload produces a new Catalog.
type Catalog struct {
	Version  int64              `json:"version"`
	Source   string             `json:"source"`
	LoadedAt time.Time          `json:"loaded_at"`
	Limits   selection.Limits   `json:"limits"`
	Records  []selection.Record `json:"-"`
}

func newCatalog(version int64, source string, loadedAt time.Time, records []selection.Record) *Catalog {
	return &Catalog{
		Version:  version,
		Source:   source,
		LoadedAt: loadedAt,
		Limits:   selection.ComputeLimits(records),
		Records:  records,
	}
}

// Len returns the number of records.
func (c *Catalog) Len() int {
	return len(c.Records)
}

// Evaluate runs the selection engine over this snapshot.
func (c *Catalog) Evaluate(req selection.Requirement) (selection.RankedResult, error) {
	return selection.Evaluate(c.Records, req)
}
