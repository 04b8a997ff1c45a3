package suggestion

import "github.com/menfistoo/purobeach/internal/model"

// Strategy tells the caller how a multi-day suggestion was built.
type Strategy string

const (
	// StrategyConsistent: the same furniture is free on every date.
	StrategyConsistent Strategy = "consistent"
	// StrategyPerDay: no cluster covers every date; each date got its
	// own best cluster and the caller should warn the user.
	StrategyPerDay Strategy = "per_day"
)

// Request is an occupancy snapshot plus what the customer asked for.
type Request struct {
	Furniture []model.Furniture
	// Dates are YYYY-MM-DD keys in request order.
	Dates []string
	// Occupied maps a date to the furniture ids not available on it.
	Occupied  map[string]map[uint64]bool
	PartySize int
	Features  []string
	Limit     int
}

// Result holds the ranked clusters.  PerDay is only filled for the
// per_day strategy and maps each date to its best cluster.
type Result struct {
	Strategy Strategy           `json:"strategy"`
	Clusters []Cluster          `json:"clusters"`
	PerDay   map[string]Cluster `json:"per_day,omitempty"`
}

// Suggest prefers clusters free on every requested date and falls back
// to the best cluster of each date when none exists.
func Suggest(req Request, w Weights) Result {
	rows := BuildRows(req.Furniture, w.RowTolerance)

	union := map[uint64]bool{}
	for _, d := range req.Dates {
		for id, busy := range req.Occupied[d] {
			if busy {
				union[id] = true
			}
		}
	}
	clusters := Rank(rows, union, req.PartySize, req.Features, req.Limit, w)
	if len(clusters) > 0 || len(req.Dates) <= 1 {
		return Result{Strategy: StrategyConsistent, Clusters: clusters}
	}

	res := Result{Strategy: StrategyPerDay, Clusters: []Cluster{}, PerDay: map[string]Cluster{}}
	for _, d := range req.Dates {
		best := Rank(rows, req.Occupied[d], req.PartySize, req.Features, 1, w)
		if len(best) > 0 {
			res.PerDay[d] = best[0]
		}
	}
	return res
}
