package booking

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/menfistoo/purobeach/internal/model"
)

// liveConflicts filters claims down to the ones that block allocation:
// the owning reservation is not in a releasing display state and is not
// the excluded reservation.  Every conflict is reported.
func liveConflicts(claims []model.Claim, p Palette, exclude uint64) []Conflict {
	out := make([]Conflict, 0)
	for _, c := range claims {
		if exclude != 0 && c.ReservationID == exclude {
			continue
		}
		if p.Releasing(c.CurrentState) {
			continue
		}
		out = append(out, Conflict{
			FurnitureID:   c.FurnitureID,
			Date:          model.DateKey(c.Date),
			ReservationID: c.ReservationID,
			Ticket:        c.Ticket,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		if out[i].FurnitureID != out[j].FurnitureID {
			return out[i].FurnitureID < out[j].FurnitureID
		}
		return out[i].ReservationID < out[j].ReservationID
	})
	return out
}

// conflicts runs the availability query inside tx.  numbers, when
// given, labels each conflict with the furniture number.
func (e *Engine) conflicts(ctx context.Context, tx Tx, p Palette, furnitureIDs []uint64, dates []time.Time, exclude uint64, numbers map[uint64]string) ([]Conflict, error) {
	claims, err := tx.Claims(ctx, furnitureIDs, dates)
	if err != nil {
		return nil, fmt.Errorf("load claims: %w", err)
	}
	out := liveConflicts(claims, p, exclude)
	for i := range out {
		out[i].FurnitureNumber = numbers[out[i].FurnitureID]
	}
	return out, nil
}

// IsAvailable reports whether furnitureID is free on date.  exclude
// ignores one reservation, used when editing it.
func (e *Engine) IsAvailable(ctx context.Context, furnitureID uint64, date time.Time, exclude uint64) (bool, error) {
	found, err := e.BulkCheck(ctx, []uint64{furnitureID}, []time.Time{date}, exclude)
	if err != nil {
		return false, err
	}
	return len(found) == 0, nil
}

// BulkCheck returns every (furniture, date) conflict for the cross
// product of furnitureIDs and dates.  Releasing states are read fresh.
// Unknown furniture fails with NotFound.
func (e *Engine) BulkCheck(ctx context.Context, furnitureIDs []uint64, dates []time.Time, exclude uint64) ([]Conflict, error) {
	ids := uniqueIDs(furnitureIDs)
	days := normalizeDates(dates)
	if len(ids) == 0 || len(days) == 0 {
		return nil, invalid("furniture ids and dates are required")
	}
	var out []Conflict
	err := e.store.Snapshot(ctx, func(tx Tx) error {
		p, err := e.palette(ctx, tx)
		if err != nil {
			return err
		}
		items, err := loadFurniture(ctx, tx, ids)
		if err != nil {
			return err
		}
		numbers := make(map[uint64]string, len(items))
		for _, f := range items {
			numbers[f.ID] = f.Number
		}
		out, err = e.conflicts(ctx, tx, p, ids, days, exclude, numbers)
		return err
	})
	return out, err
}
