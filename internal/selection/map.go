package selection

// Axis labels of the Ashby selection map.
const (
	MapXLabel = "Strength / Density"
	MapYLabel = "Yield / UTS Ratio (Ductility Indicator)"
)

// MapPoint is one scatter point of the selection map. ID is what a click
// handler passes back to FindByID.
type MapPoint struct {
	ID       int     `json:"id"`
	Grade    string  `json:"grade,omitempty"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Admitted bool    `json:"admitted"`
}

// MapPoints projects every enriched record onto the map, keeping input order.
func MapPoints(all []EnrichedRecord) []MapPoint {
	points := make([]MapPoint, len(all))
	for i, e := range all {
		points[i] = MapPoint{
			ID:       e.ID,
			Grade:    e.Grade,
			X:        e.AshbyIndex,
			Y:        e.YieldToUTSRatio,
			Admitted: e.Admitted,
		}
	}
	return points
}
