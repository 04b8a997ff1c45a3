package suggestion

import (
	"sort"
	"strconv"
	"strings"

	"github.com/menfistoo/purobeach/internal/model"
)

// Cluster is a candidate set of furniture with its scores.
type Cluster struct {
	FurnitureIDs []uint64 `json:"furniture_ids"`
	Numbers      []string `json:"numbers"`
	Zone         string   `json:"zone"`
	Capacity     int      `json:"capacity"`
	Rows         int      `json:"rows"`
	Gaps         int      `json:"gaps"`
	Contiguity   float64  `json:"contiguity"`
	Preference   float64  `json:"preference"`
	CapacityFit  float64  `json:"capacity_fit"`
	Score        float64  `json:"score"`
}

func (c Cluster) key() string {
	parts := make([]string, len(c.FurnitureIDs))
	for i, id := range c.FurnitureIDs {
		parts[i] = strconv.FormatUint(id, 10)
	}
	return strings.Join(parts, ",")
}

func newCluster(items []model.Furniture, rows, gapCount int) Cluster {
	sorted := make([]model.Furniture, len(items))
	copy(sorted, items)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })
	c := Cluster{Rows: rows, Gaps: gapCount}
	if len(sorted) > 0 {
		c.Zone = sorted[0].Zone
	}
	for _, f := range sorted {
		c.FurnitureIDs = append(c.FurnitureIDs, f.ID)
		c.Numbers = append(c.Numbers, f.Number)
		c.Capacity += f.Capacity
	}
	return c
}

// rowCandidates grows a run from every free item of every row until the
// party fits.  Blocked items inside the run are skipped and counted as
// gaps.
func rowCandidates(rows []Row, blocked map[uint64]bool, partySize int) ([]Cluster, map[string][]model.Furniture) {
	var out []Cluster
	members := map[string][]model.Furniture{}
	for _, row := range rows {
		for start := range row.Items {
			if blocked[row.Items[start].ID] {
				continue
			}
			var picked []model.Furniture
			selected := map[uint64]bool{}
			capacity := 0
			for j := start; j < len(row.Items); j++ {
				f := row.Items[j]
				if blocked[f.ID] {
					continue
				}
				picked = append(picked, f)
				selected[f.ID] = true
				capacity += f.Capacity
				if capacity >= partySize {
					break
				}
			}
			if capacity < partySize {
				break
			}
			c := newCluster(picked, 1, gaps(row, selected, blocked))
			members[c.key()] = picked
			out = append(out, c)
		}
	}
	return out, members
}

// crossRowCandidates is the fallback when no single row fits the
// party: starting from each row it takes every free item, then adds free
// items of the following rows of the same zone in x order.
func crossRowCandidates(rows []Row, blocked map[uint64]bool, partySize int) ([]Cluster, map[string][]model.Furniture) {
	var out []Cluster
	members := map[string][]model.Furniture{}
	for start := range rows {
		zone := rows[start].Zone
		var picked []model.Furniture
		perRow := map[int]map[uint64]bool{}
		capacity := 0
		for ri := start; ri < len(rows) && rows[ri].Zone == zone && capacity < partySize; ri++ {
			for _, f := range rows[ri].Items {
				if blocked[f.ID] {
					continue
				}
				if perRow[ri] == nil {
					perRow[ri] = map[uint64]bool{}
				}
				perRow[ri][f.ID] = true
				picked = append(picked, f)
				capacity += f.Capacity
				if ri > start && capacity >= partySize {
					break
				}
			}
		}
		if capacity < partySize || len(perRow) < 2 {
			continue
		}
		gapCount := 0
		for ri, sel := range perRow {
			gapCount += gaps(rows[ri], sel, blocked)
		}
		c := newCluster(picked, len(perRow), gapCount)
		members[c.key()] = picked
		out = append(out, c)
	}
	return out, members
}

// crossZoneCandidates is the last resort when no zone can seat the party
// on its own.  Rows of every zone are walked by vertical band, nearest
// band first, and their free items are pooled until the party fits.
func crossZoneCandidates(rows []Row, blocked map[uint64]bool, partySize int) ([]Cluster, map[string][]model.Furniture) {
	order := make([]int, len(rows))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		ra, rb := rows[order[a]], rows[order[b]]
		if ra.Y != rb.Y {
			return ra.Y < rb.Y
		}
		return ra.Zone < rb.Zone
	})

	var out []Cluster
	members := map[string][]model.Furniture{}
	for start := range order {
		var picked []model.Furniture
		perRow := map[int]map[uint64]bool{}
		zones := map[string]bool{}
		capacity := 0
		for k := start; k < len(order) && capacity < partySize; k++ {
			ri := order[k]
			for _, f := range rows[ri].Items {
				if blocked[f.ID] {
					continue
				}
				if perRow[ri] == nil {
					perRow[ri] = map[uint64]bool{}
				}
				perRow[ri][f.ID] = true
				zones[f.Zone] = true
				picked = append(picked, f)
				capacity += f.Capacity
				if capacity >= partySize {
					break
				}
			}
		}
		if capacity < partySize || len(zones) < 2 {
			continue
		}
		gapCount := 0
		for ri, sel := range perRow {
			gapCount += gaps(rows[ri], sel, blocked)
		}
		c := newCluster(picked, len(perRow), gapCount)
		members[c.key()] = picked
		out = append(out, c)
	}
	return out, members
}
