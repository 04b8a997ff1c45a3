package suggestion

import (
	"sort"

	"github.com/menfistoo/purobeach/internal/model"
)

// Row is a horizontal line of furniture inside one zone, ordered by x.
type Row struct {
	Zone  string
	Y     float64
	Items []model.Furniture
}

// BuildRows groups items into rows per zone.  An item joins the current
// row while its y stays within tolerance of the row's first item.
func BuildRows(items []model.Furniture, tolerance float64) []Row {
	sorted := make([]model.Furniture, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Zone != b.Zone {
			return a.Zone < b.Zone
		}
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		if a.X != b.X {
			return a.X < b.X
		}
		return a.ID < b.ID
	})

	var rows []Row
	for _, f := range sorted {
		n := len(rows)
		if n > 0 && rows[n-1].Zone == f.Zone && f.Y-rows[n-1].Y <= tolerance {
			rows[n-1].Items = append(rows[n-1].Items, f)
			continue
		}
		rows = append(rows, Row{Zone: f.Zone, Y: f.Y, Items: []model.Furniture{f}})
	}
	for i := range rows {
		items := rows[i].Items
		sort.SliceStable(items, func(a, b int) bool {
			if items[a].X != items[b].X {
				return items[a].X < items[b].X
			}
			return items[a].ID < items[b].ID
		})
	}
	return rows
}

// gaps counts blocked items strictly between the first and last
// selected position of a row.
func gaps(row Row, selected map[uint64]bool, blocked map[uint64]bool) int {
	first, last := -1, -1
	for i, f := range row.Items {
		if selected[f.ID] {
			if first < 0 {
				first = i
			}
			last = i
		}
	}
	n := 0
	for i := first + 1; i < last; i++ {
		if blocked[row.Items[i].ID] {
			n++
		}
	}
	return n
}
