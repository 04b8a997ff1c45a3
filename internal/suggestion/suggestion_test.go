package suggestion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menfistoo/purobeach/internal/model"
)

func item(id uint64, number, zone string, x, y float64, capacity int, features ...string) model.Furniture {
	return model.Furniture{ID: id, Number: number, Zone: zone, X: x, Y: y, Capacity: capacity, Features: features, Active: true}
}

func TestBuildRows(t *testing.T) {
	items := []model.Furniture{
		item(3, "H3", "A", 200, 10, 2),
		item(1, "H1", "A", 0, 0, 2),
		item(2, "H2", "A", 100, 20, 2),
		item(4, "H4", "A", 0, 100, 2),
		item(5, "B1", "B", 0, 0, 2),
	}
	rows := BuildRows(items, 25)
	require.Len(t, rows, 3)

	assert.Equal(t, "A", rows[0].Zone)
	var ids []uint64
	for _, f := range rows[0].Items {
		ids = append(ids, f.ID)
	}
	assert.Equal(t, []uint64{1, 2, 3}, ids)
	assert.Equal(t, uint64(4), rows[1].Items[0].ID)
	assert.Equal(t, "B", rows[2].Zone)
}

func TestSuggest_ShadePreferenceRanksFirst(t *testing.T) {
	var items []model.Furniture
	for i := uint64(1); i <= 6; i++ {
		f := item(i, "H"+string(rune('0'+i)), "A", float64(i)*50, 0, 2)
		if i == 5 {
			f.Features = []string{"shade"}
		}
		items = append(items, f)
	}
	res := Suggest(Request{
		Furniture: items,
		Dates:     []string{"2025-07-01"},
		Occupied:  map[string]map[uint64]bool{"2025-07-01": {}},
		PartySize: 2,
		Features:  []string{"shade"},
		Limit:     1,
	}, DefaultWeights())

	assert.Equal(t, StrategyConsistent, res.Strategy)
	require.Len(t, res.Clusters, 1)
	assert.Equal(t, []uint64{5}, res.Clusters[0].FurnitureIDs)
	assert.Equal(t, []string{"H5"}, res.Clusters[0].Numbers)
	assert.InDelta(t, 1.0, res.Clusters[0].Score, 1e-9)
}

func TestRank_GapsAreCounted(t *testing.T) {
	rows := BuildRows([]model.Furniture{
		item(1, "H1", "A", 0, 0, 2),
		item(2, "H2", "A", 50, 0, 2),
		item(3, "H3", "A", 100, 0, 2),
	}, 25)
	got := Rank(rows, map[uint64]bool{2: true}, 4, nil, 5, DefaultWeights())

	require.Len(t, got, 1)
	assert.Equal(t, []uint64{1, 3}, got[0].FurnitureIDs)
	assert.Equal(t, 1, got[0].Gaps)
	assert.InDelta(t, 0.7, got[0].Contiguity, 1e-9)
	assert.InDelta(t, 1.0, got[0].CapacityFit, 1e-9)
}

func TestRank_CrossRowFallback(t *testing.T) {
	rows := BuildRows([]model.Furniture{
		item(1, "H1", "A", 0, 0, 2),
		item(2, "H2", "A", 0, 100, 2),
	}, 25)
	got := Rank(rows, nil, 4, nil, 5, DefaultWeights())

	require.Len(t, got, 1)
	assert.Equal(t, []uint64{1, 2}, got[0].FurnitureIDs)
	assert.Equal(t, 2, got[0].Rows)
	assert.InDelta(t, 0.9, got[0].Contiguity, 1e-9)
	assert.InDelta(t, 0.4*0.9+0.35+0.25, got[0].Score, 1e-9)
}

func TestRank_CrossZoneLastResort(t *testing.T) {
	items := []model.Furniture{
		item(1, "H1", "A", 0, 0, 2),
		item(2, "B1", "B", 0, 0, 2),
	}
	got := Rank(BuildRows(items, 25), nil, 4, nil, 5, DefaultWeights())

	require.Len(t, got, 1)
	assert.Equal(t, []uint64{1, 2}, got[0].FurnitureIDs)
	assert.Equal(t, 2, got[0].Rows)
	assert.InDelta(t, 0.9, got[0].Contiguity, 1e-9)

	res := Suggest(Request{
		Furniture: items,
		Dates:     []string{"2025-07-01"},
		Occupied:  map[string]map[uint64]bool{"2025-07-01": {}},
		PartySize: 4,
	}, DefaultWeights())
	assert.Equal(t, StrategyConsistent, res.Strategy)
	assert.NotEmpty(t, res.Clusters)
}

func TestRank_SameZoneBeatsCrossZone(t *testing.T) {
	rows := BuildRows([]model.Furniture{
		item(1, "H1", "A", 0, 0, 2),
		item(2, "H2", "A", 0, 100, 2),
		item(3, "B1", "B", 0, 0, 2),
	}, 25)
	got := Rank(rows, nil, 4, nil, 5, DefaultWeights())

	require.Len(t, got, 1)
	assert.Equal(t, []uint64{1, 2}, got[0].FurnitureIDs)
	assert.Equal(t, "A", got[0].Zone)
}

func TestRank_UnderCapacityExcluded(t *testing.T) {
	rows := BuildRows([]model.Furniture{
		item(1, "H1", "A", 0, 0, 2),
		item(2, "H2", "A", 50, 0, 2),
	}, 25)
	assert.Empty(t, Rank(rows, nil, 10, nil, 5, DefaultWeights()))
	assert.Empty(t, Rank(rows, nil, 0, nil, 5, DefaultWeights()))
}

func TestRank_TiesOrderedByFurnitureID(t *testing.T) {
	rows := BuildRows([]model.Furniture{
		item(3, "H3", "A", 0, 0, 2),
		item(1, "H1", "A", 50, 0, 2),
		item(2, "H2", "A", 100, 0, 2),
	}, 25)
	got := Rank(rows, nil, 2, nil, 0, DefaultWeights())

	require.Len(t, got, 3)
	assert.Equal(t, []uint64{1}, got[0].FurnitureIDs)
	assert.Equal(t, []uint64{2}, got[1].FurnitureIDs)
	assert.Equal(t, []uint64{3}, got[2].FurnitureIDs)
}

func TestRank_CapacityFitPrefersSmallerWaste(t *testing.T) {
	rows := BuildRows([]model.Furniture{
		item(1, "B1", "A", 0, 0, 4),
		item(2, "H2", "A", 50, 0, 2),
	}, 25)
	got := Rank(rows, nil, 2, nil, 0, DefaultWeights())

	require.Len(t, got, 2)
	assert.Equal(t, []uint64{2}, got[0].FurnitureIDs)
	assert.InDelta(t, 0.5, got[1].CapacityFit, 1e-9)
}

func TestSuggest_PerDayFallback(t *testing.T) {
	items := []model.Furniture{
		item(1, "H1", "A", 0, 0, 2),
		item(2, "H2", "A", 50, 0, 2),
	}
	res := Suggest(Request{
		Furniture: items,
		Dates:     []string{"2025-07-01", "2025-07-02"},
		Occupied: map[string]map[uint64]bool{
			"2025-07-01": {1: true},
			"2025-07-02": {2: true},
		},
		PartySize: 2,
		Limit:     3,
	}, DefaultWeights())

	assert.Equal(t, StrategyPerDay, res.Strategy)
	assert.Empty(t, res.Clusters)
	require.Len(t, res.PerDay, 2)
	assert.Equal(t, []uint64{2}, res.PerDay["2025-07-01"].FurnitureIDs)
	assert.Equal(t, []uint64{1}, res.PerDay["2025-07-02"].FurnitureIDs)
}

func TestPreferenceScore(t *testing.T) {
	items := []model.Furniture{item(1, "H1", "A", 0, 0, 2, "shade"), item(2, "H2", "A", 0, 0, 2, "first_line")}
	assert.InDelta(t, 1.0, preferenceScore(items, nil), 1e-9)
	assert.InDelta(t, 1.0, preferenceScore(items, []string{"shade", "first_line"}), 1e-9)
	assert.InDelta(t, 0.5, preferenceScore(items, []string{"shade", "near_bar"}), 1e-9)
}
