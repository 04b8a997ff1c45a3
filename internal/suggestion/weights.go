// Package suggestion ranks groups of free furniture for a booking
// request.  It is a greedy heuristic over an occupancy snapshot and
// never touches the database: callers build the snapshot and must
// re-validate the chosen cluster when they book it.
package suggestion

// Weights holds the scoring parameters.  The composite score is
// Contiguity*contiguity + Preference*preference + Capacity*capacity.
type Weights struct {
	Contiguity      float64 `json:"contiguity"`
	Preference      float64 `json:"preference"`
	Capacity        float64 `json:"capacity"`
	GapPenalty      float64 `json:"gap_penalty"`       // per occupied item inside a row run
	CrossRowPenalty float64 `json:"cross_row_penalty"` // per extra row in a cluster
	RowTolerance    float64 `json:"row_tolerance"`     // vertical band in map units
}

// DefaultWeights returns the stock 40/35/25 weighting.
func DefaultWeights() Weights {
	return Weights{
		Contiguity:      0.40,
		Preference:      0.35,
		Capacity:        0.25,
		GapPenalty:      0.3,
		CrossRowPenalty: 0.1,
		RowTolerance:    25,
	}
}
