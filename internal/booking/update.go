package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/menfistoo/purobeach/internal/model"
)

// UpdateRequest patches a reservation.  Nil fields are left unchanged.
// FurnitureIDs replaces the whole assignment set.
type UpdateRequest struct {
	Date         *time.Time
	PartySize    *int
	TimeSlot     *string
	Notes        *string
	Preferences  []string
	FurnitureIDs []uint64
	Actor        string
}

func (u UpdateRequest) touchesAllocation() bool {
	return u.Date != nil || u.PartySize != nil || u.FurnitureIDs != nil
}

// Detail is a reservation with its assignments and state timeline.
type Detail struct {
	Reservation model.Reservation         `json:"reservation"`
	Furniture   []model.Assignment        `json:"furniture"`
	History     []model.StateHistoryEntry `json:"history"`
	Children    []model.Reservation       `json:"children,omitempty"`
}

// GetReservation loads a reservation with its assignments, history and,
// for a multi-day parent, its children.
func (e *Engine) GetReservation(ctx context.Context, id uint64) (*Detail, error) {
	var out *Detail
	err := e.store.Snapshot(ctx, func(tx Tx) error {
		r, err := loadReservation(ctx, tx, id)
		if err != nil {
			return err
		}
		as, err := tx.Assignments(ctx, id)
		if err != nil {
			return err
		}
		hist, err := tx.History(ctx, id)
		if err != nil {
			return err
		}
		out = &Detail{Reservation: *r, Furniture: as, History: hist}
		if !r.IsChild() {
			children, err := tx.Children(ctx, id)
			if err != nil {
				return err
			}
			out.Children = children
		}
		return nil
	})
	return out, err
}

// UpdateReservation applies patch.  Changing date, party size or
// furniture re-runs availability (ignoring the reservation itself),
// capacity and eligibility under the locks of both the old and the new
// date.  A released reservation holds nothing, so only capacity and
// eligibility are checked for it.
func (e *Engine) UpdateReservation(ctx context.Context, id uint64, patch UpdateRequest) (*model.Reservation, error) {
	if patch.PartySize != nil && *patch.PartySize <= 0 {
		return nil, invalid("party size must be positive")
	}
	if patch.TimeSlot != nil && !model.ValidSlot(*patch.TimeSlot) {
		return nil, invalid("unknown time slot " + *patch.TimeSlot)
	}
	if patch.FurnitureIDs != nil && len(patch.FurnitureIDs) == 0 {
		return nil, invalid("furniture list cannot be empty")
	}

	var before time.Time
	err := e.store.Snapshot(ctx, func(tx Tx) error {
		r, err := loadReservation(ctx, tx, id)
		if err != nil {
			return err
		}
		before = r.Date
		return nil
	})
	if err != nil {
		return nil, err
	}
	dates := []time.Time{before}
	if patch.Date != nil {
		dates = append(dates, model.DateOnly(*patch.Date))
	}

	var out *model.Reservation
	var furnitureIDs []uint64
	err = e.store.Serialized(ctx, normalizeDates(dates), func(tx Tx) error {
		r, err := loadReservation(ctx, tx, id)
		if err != nil {
			return err
		}
		if !r.Date.Equal(before) {
			return errDateMoved
		}
		p, err := e.palette(ctx, tx)
		if err != nil {
			return err
		}
		if patch.Date != nil {
			r.Date = model.DateOnly(*patch.Date)
		}
		if patch.PartySize != nil {
			r.PartySize = *patch.PartySize
		}
		if patch.TimeSlot != nil {
			r.TimeSlot = *patch.TimeSlot
		}
		if patch.Notes != nil {
			r.Notes = *patch.Notes
		}
		if patch.Preferences != nil {
			r.Preferences = patch.Preferences
		}
		if patch.touchesAllocation() {
			ids, err := e.resolveFurniture(ctx, tx, r.ID, patch.FurnitureIDs)
			if err != nil {
				return err
			}
			furnitureIDs = ids
			if err := e.reallocate(ctx, tx, p, r, ids); err != nil {
				return err
			}
		}
		r.UpdatedAt = e.now()
		if err := tx.UpdateReservation(ctx, r); err != nil {
			return fmt.Errorf("update reservation: %w", err)
		}
		out = r
		return nil
	})
	if errors.Is(err, errDateMoved) {
		return nil, invalid("reservation was moved by another request, retry")
	}
	if err != nil {
		return nil, err
	}
	e.log.Info("reservation updated", zap.Uint64("reservation_id", id), zap.String("actor", patch.Actor))
	e.publish(ctx, Event{
		Type:          EventReservationUpdated,
		ReservationID: out.ID,
		Ticket:        out.Ticket,
		CustomerID:    out.CustomerID,
		Date:          model.DateKey(out.Date),
		CurrentState:  out.CurrentState,
		FurnitureIDs:  furnitureIDs,
		Actor:         patch.Actor,
	})
	return out, nil
}

func (e *Engine) resolveFurniture(ctx context.Context, tx Tx, reservationID uint64, requested []uint64) ([]uint64, error) {
	if requested != nil {
		return uniqueIDs(requested), nil
	}
	as, err := tx.Assignments(ctx, reservationID)
	if err != nil {
		return nil, fmt.Errorf("load assignments: %w", err)
	}
	ids := make([]uint64, 0, len(as))
	for _, a := range as {
		ids = append(ids, a.FurnitureID)
	}
	return uniqueIDs(ids), nil
}

// reallocate validates ids for r's (possibly new) date and party size
// and replaces its assignments.
func (e *Engine) reallocate(ctx context.Context, tx Tx, p Palette, r *model.Reservation, ids []uint64) error {
	customer, err := loadCustomer(ctx, tx, r.CustomerID)
	if err != nil {
		return err
	}
	claim := !p.Releasing(r.CurrentState)
	if err := e.checkFurniture(ctx, tx, p, customer, ids, r.Date, r.PartySize, r.ID, claim); err != nil {
		return err
	}
	if err := tx.DeleteAssignments(ctx, r.ID); err != nil {
		return fmt.Errorf("delete assignments: %w", err)
	}
	as := make([]model.Assignment, 0, len(ids))
	for _, id := range ids {
		as = append(as, model.Assignment{ReservationID: r.ID, FurnitureID: id, Date: r.Date})
	}
	if err := tx.InsertAssignments(ctx, as); err != nil {
		return fmt.Errorf("insert assignments: %w", err)
	}
	return nil
}
