package booking

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/menfistoo/purobeach/internal/model"
)

// DuplicateMatch summarises an existing live reservation of the same
// customer on a requested date.  It is advisory: the caller may proceed
// anyway, open the existing reservation or abort.
type DuplicateMatch struct {
	ReservationID uint64   `json:"reservation_id"`
	Ticket        string   `json:"ticket"`
	Date          string   `json:"date"`
	States        []string `json:"states"`
	CurrentState  string   `json:"current_state"`
}

func findDuplicate(ctx context.Context, tx Tx, p Palette, customerID uint64, dates []time.Time, exclude uint64) (*DuplicateMatch, error) {
	existing, err := tx.ReservationsByCustomer(ctx, customerID, dates)
	if err != nil {
		return nil, fmt.Errorf("load customer reservations: %w", err)
	}
	sort.SliceStable(existing, func(i, j int) bool { return existing[i].ID < existing[j].ID })
	for _, d := range dates {
		key := model.DateKey(d)
		for _, r := range existing {
			if model.DateKey(r.Date) != key {
				continue
			}
			if exclude != 0 && r.ID == exclude {
				continue
			}
			if p.Releasing(r.CurrentState) {
				continue
			}
			return &DuplicateMatch{
				ReservationID: r.ID,
				Ticket:        r.Ticket,
				Date:          key,
				States:        r.States,
				CurrentState:  r.CurrentState,
			}, nil
		}
	}
	return nil, nil
}

// FindDuplicate returns the first live reservation the customer already
// holds on one of dates, scanning dates in the given order.
func (e *Engine) FindDuplicate(ctx context.Context, customerID uint64, dates []time.Time, exclude uint64) (*DuplicateMatch, error) {
	days := normalizeDates(dates)
	if customerID == 0 || len(days) == 0 {
		return nil, invalid("customer id and dates are required")
	}
	var match *DuplicateMatch
	err := e.store.Snapshot(ctx, func(tx Tx) error {
		p, err := e.palette(ctx, tx)
		if err != nil {
			return err
		}
		match, err = findDuplicate(ctx, tx, p, customerID, days, exclude)
		return err
	})
	return match, err
}

func duplicateError(m *DuplicateMatch) *Error {
	return newError(KindDuplicateReservation, "customer already holds a reservation on this date", map[string]any{
		"match": m,
	})
}
