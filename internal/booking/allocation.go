package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/menfistoo/purobeach/internal/model"
)

// CreateRequest carries everything needed to book furniture for a
// single date.
type CreateRequest struct {
	CustomerID       uint64
	Date             time.Time
	PartySize        int
	FurnitureIDs     []uint64
	TimeSlot         string
	Preferences      []string
	Notes            string
	Actor            string
	RejectDuplicates bool // turn the duplicate warning into a failure
}

// CreateResult is returned by CreateReservation.  Duplicate is the
// advisory warning channel and never implies failure.
type CreateResult struct {
	ReservationID uint64          `json:"reservation_id"`
	Ticket        string          `json:"ticket"`
	CurrentState  string          `json:"current_state"`
	Duplicate     *DuplicateMatch `json:"duplicate,omitempty"`
}

// allocation is one date's worth of a booking inside an open
// serialized transaction.
type allocation struct {
	date         time.Time
	partySize    int
	furnitureIDs []uint64
	timeSlot     string
	preferences  []string
	notes        string
	actor        string
}

func validateBooking(partySize int, furnitureIDs []uint64, slot string) error {
	if partySize <= 0 {
		return invalid("party size must be positive")
	}
	if len(furnitureIDs) == 0 {
		return invalid("at least one furniture id is required")
	}
	if slot != "" && !model.ValidSlot(slot) {
		return invalid("unknown time slot " + slot)
	}
	return nil
}

// CreateReservation validates and books furniture for one date.  The
// whole operation runs in one serialized transaction; on any failure
// nothing is written.
func (e *Engine) CreateReservation(ctx context.Context, req CreateRequest) (*CreateResult, error) {
	if req.CustomerID == 0 {
		return nil, invalid("customer id is required")
	}
	if req.Date.IsZero() {
		return nil, invalid("date is required")
	}
	if err := validateBooking(req.PartySize, req.FurnitureIDs, req.TimeSlot); err != nil {
		return nil, err
	}
	date := model.DateOnly(req.Date)

	var out *CreateResult
	var created *model.Reservation
	var furnitureIDs []uint64
	err := e.store.Serialized(ctx, []time.Time{date}, func(tx Tx) error {
		p, err := e.palette(ctx, tx)
		if err != nil {
			return err
		}
		customer, err := loadCustomer(ctx, tx, req.CustomerID)
		if err != nil {
			return err
		}
		dup, err := findDuplicate(ctx, tx, p, customer.ID, []time.Time{date}, 0)
		if err != nil {
			return err
		}
		if dup != nil && req.RejectDuplicates {
			return duplicateError(dup)
		}
		r, err := e.allocate(ctx, tx, p, customer, allocation{
			date:         date,
			partySize:    req.PartySize,
			furnitureIDs: req.FurnitureIDs,
			timeSlot:     req.TimeSlot,
			preferences:  req.Preferences,
			notes:        req.Notes,
			actor:        req.Actor,
		}, nil)
		if err != nil {
			return err
		}
		created = r
		furnitureIDs = uniqueIDs(req.FurnitureIDs)
		out = &CreateResult{ReservationID: r.ID, Ticket: r.Ticket, CurrentState: r.CurrentState, Duplicate: dup}
		return nil
	})
	if err != nil {
		e.log.Info("reservation rejected",
			zap.Uint64("customer_id", req.CustomerID),
			zap.String("date", model.DateKey(date)),
			zap.String("kind", string(KindOf(err))),
			zap.Error(err),
		)
		return nil, err
	}
	e.log.Info("reservation created",
		zap.Uint64("reservation_id", created.ID),
		zap.String("ticket", created.Ticket),
		zap.String("date", model.DateKey(date)),
		zap.Uint64s("furniture_ids", furnitureIDs),
	)
	e.publish(ctx, Event{
		Type:          EventReservationCreated,
		ReservationID: created.ID,
		Ticket:        created.Ticket,
		CustomerID:    created.CustomerID,
		Date:          model.DateKey(date),
		CurrentState:  created.CurrentState,
		FurnitureIDs:  furnitureIDs,
		Actor:         req.Actor,
	})
	return out, nil
}

func loadCustomer(ctx context.Context, tx Tx, id uint64) (*model.Customer, error) {
	c, err := tx.Customer(ctx, id)
	if errors.Is(err, ErrRecordNotFound) {
		return nil, notFound("customer", id)
	}
	if err != nil {
		return nil, fmt.Errorf("load customer: %w", err)
	}
	return c, nil
}

// loadFurniture returns the requested items keyed by id, failing with
// NotFound listing every unknown id.
func loadFurniture(ctx context.Context, tx Tx, ids []uint64) (map[uint64]model.Furniture, error) {
	items, err := tx.FurnitureByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load furniture: %w", err)
	}
	byID := make(map[uint64]model.Furniture, len(items))
	for _, f := range items {
		byID[f.ID] = f
	}
	var missing []uint64
	for _, id := range ids {
		if _, ok := byID[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return nil, newError(KindNotFound, "furniture not found", map[string]any{
			"resource":      "furniture",
			"furniture_ids": missing,
		})
	}
	return byID, nil
}

// checkFurniture runs availability, capacity and eligibility for one
// date, in that order, excluding reservation exclude from conflicts.
// claim=false skips availability for rows that hold nothing.
func (e *Engine) checkFurniture(ctx context.Context, tx Tx, p Palette, customer *model.Customer, ids []uint64, date time.Time, partySize int, exclude uint64, claim bool) error {
	byID, err := loadFurniture(ctx, tx, ids)
	if err != nil {
		return err
	}
	if claim {
		numbers := make(map[uint64]string, len(byID))
		for id, f := range byID {
			numbers[id] = f.Number
		}
		found, err := e.conflicts(ctx, tx, p, ids, []time.Time{date}, exclude, numbers)
		if err != nil {
			return err
		}
		if len(found) > 0 {
			return unavailable(found)
		}
	}
	capacity := 0
	for _, id := range ids {
		capacity += byID[id].Capacity
	}
	if partySize > capacity {
		return newError(KindCapacityExceeded, "party size exceeds furniture capacity", map[string]any{
			"party_size":    partySize,
			"capacity":      capacity,
			"furniture_ids": ids,
		})
	}
	var restricted []uint64
	for _, id := range ids {
		f := byID[id]
		if !f.Active || (f.SuiteOnly && !customer.Suite) {
			restricted = append(restricted, id)
		}
	}
	if len(restricted) > 0 {
		return newError(KindRestrictionViolation, "customer is not eligible for the requested furniture", map[string]any{
			"furniture_ids": restricted,
			"customer_id":   customer.ID,
		})
	}
	return nil
}

// allocate performs the write path for one date: checks, ticket,
// reservation row, assignments and the default initial state.  parent
// is nil for top-level reservations.
func (e *Engine) allocate(ctx context.Context, tx Tx, p Palette, customer *model.Customer, a allocation, parent *model.Reservation) (*model.Reservation, error) {
	ids := uniqueIDs(a.furnitureIDs)
	if err := e.checkFurniture(ctx, tx, p, customer, ids, a.date, a.partySize, 0, true); err != nil {
		return nil, err
	}
	initial, ok := p.Default()
	if !ok {
		return nil, newError(KindInvalidStateTransition, "no default state configured", nil)
	}
	slot := a.timeSlot
	if slot == "" {
		slot = model.SlotAllDay
	}
	now := e.now()
	r := &model.Reservation{
		CustomerID:  customer.ID,
		Date:        a.date,
		PartySize:   a.partySize,
		TimeSlot:    slot,
		States:      []string{},
		Preferences: a.preferences,
		Notes:       a.notes,
		CreatedBy:   a.actor,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if parent != nil {
		pid := parent.ID
		r.ParentID = &pid
	}
	if err := e.insertWithTicket(ctx, tx, r, parent); err != nil {
		return nil, err
	}
	as := make([]model.Assignment, 0, len(ids))
	for _, id := range ids {
		as = append(as, model.Assignment{ReservationID: r.ID, FurnitureID: id, Date: a.date})
	}
	if err := tx.InsertAssignments(ctx, as); err != nil {
		return nil, fmt.Errorf("insert assignments: %w", err)
	}
	if _, err := e.applyAdd(ctx, tx, p, r, initial.Name, a.actor, ""); err != nil {
		return nil, err
	}
	return r, nil
}
