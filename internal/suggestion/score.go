package suggestion

import (
	"sort"

	"github.com/menfistoo/purobeach/internal/model"
)

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// contiguityScore is 1.0 for a gap-free single row.
func contiguityScore(c Cluster, w Weights) float64 {
	return clamp01(1 - w.GapPenalty*float64(c.Gaps) - w.CrossRowPenalty*float64(c.Rows-1))
}

// preferenceScore is the fraction of wanted features present on at
// least one item.  Nothing wanted means nothing unmet.
func preferenceScore(items []model.Furniture, wanted []string) float64 {
	if len(wanted) == 0 {
		return 1
	}
	hit := 0
	for _, key := range wanted {
		for _, f := range items {
			if f.HasFeature(key) {
				hit++
				break
			}
		}
	}
	return float64(hit) / float64(len(wanted))
}

// capacityScore is 1.0 on an exact fit and shrinks with wasted seats.
// Under-capacity clusters are never scored.
func capacityScore(capacity, partySize int) float64 {
	if capacity <= 0 || capacity < partySize {
		return 0
	}
	return float64(partySize) / float64(capacity)
}

func score(c Cluster, items []model.Furniture, partySize int, wanted []string, w Weights) Cluster {
	c.Contiguity = contiguityScore(c, w)
	c.Preference = preferenceScore(items, wanted)
	c.CapacityFit = capacityScore(c.Capacity, partySize)
	c.Score = w.Contiguity*c.Contiguity + w.Preference*c.Preference + w.Capacity*c.CapacityFit
	return c
}

// lessIDs orders clusters by their sorted furniture ids.
func lessIDs(a, b []uint64) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}

// Rank scores every candidate cluster over free items and returns the
// best limit of them, highest score first.  Equal scores are ordered by
// furniture ids so the output is deterministic.
func Rank(rows []Row, blocked map[uint64]bool, partySize int, wanted []string, limit int, w Weights) []Cluster {
	if partySize <= 0 {
		return nil
	}
	candidates, members := rowCandidates(rows, blocked, partySize)
	if len(candidates) == 0 {
		candidates, members = crossRowCandidates(rows, blocked, partySize)
	}
	if len(candidates) == 0 {
		candidates, members = crossZoneCandidates(rows, blocked, partySize)
	}
	seen := map[string]bool{}
	out := make([]Cluster, 0, len(candidates))
	for _, c := range candidates {
		k := c.key()
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, score(c, members[k], partySize, wanted, w))
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return lessIDs(out[i].FurnitureIDs, out[j].FurnitureIDs)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
