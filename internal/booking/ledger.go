package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/menfistoo/purobeach/internal/model"
)

// StateChange is the outcome of AddState or RemoveState.
type StateChange struct {
	ReservationID uint64   `json:"reservation_id"`
	Ticket        string   `json:"ticket"`
	States        []string `json:"states"`
	CurrentState  string   `json:"current_state"`
	Changed       bool     `json:"changed"`
}

// errDateMoved aborts a locked transaction whose reservation changed
// date between the unlocked read and the lock.
var errDateMoved = errors.New("reservation date changed while locking")

// withReservation runs fn in a serialized transaction locking the date
// of reservation id.
func (e *Engine) withReservation(ctx context.Context, id uint64, fn func(tx Tx, p Palette, r *model.Reservation) error) error {
	for attempt := 0; attempt < 3; attempt++ {
		var date time.Time
		err := e.store.Snapshot(ctx, func(tx Tx) error {
			r, err := loadReservation(ctx, tx, id)
			if err != nil {
				return err
			}
			date = r.Date
			return nil
		})
		if err != nil {
			return err
		}
		err = e.store.Serialized(ctx, []time.Time{date}, func(tx Tx) error {
			r, err := loadReservation(ctx, tx, id)
			if err != nil {
				return err
			}
			if !r.Date.Equal(date) {
				return errDateMoved
			}
			p, err := e.palette(ctx, tx)
			if err != nil {
				return err
			}
			return fn(tx, p, r)
		})
		if errors.Is(err, errDateMoved) {
			continue
		}
		return err
	}
	return fmt.Errorf("reservation %d: %w", id, errDateMoved)
}

func loadReservation(ctx context.Context, tx Tx, id uint64) (*model.Reservation, error) {
	r, err := tx.Reservation(ctx, id)
	if errors.Is(err, ErrRecordNotFound) {
		return nil, notFound("reservation", id)
	}
	if err != nil {
		return nil, fmt.Errorf("load reservation: %w", err)
	}
	return r, nil
}

// AddState attaches state to the reservation.  Adding a state that is
// already active changes nothing and writes no history.
func (e *Engine) AddState(ctx context.Context, reservationID uint64, state, actor, note string) (*StateChange, error) {
	var out *StateChange
	var customerID uint64
	var date string
	err := e.withReservation(ctx, reservationID, func(tx Tx, p Palette, r *model.Reservation) error {
		changed, err := e.applyAdd(ctx, tx, p, r, state, actor, note)
		if err != nil {
			return err
		}
		out = changeOf(r, changed)
		customerID, date = r.CustomerID, model.DateKey(r.Date)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if out.Changed {
		e.log.Info("state added",
			zap.Uint64("reservation_id", reservationID),
			zap.String("state", state),
			zap.String("current_state", out.CurrentState),
			zap.String("actor", actor),
		)
		e.publish(ctx, Event{
			Type:          EventStateChanged,
			ReservationID: reservationID,
			Ticket:        out.Ticket,
			CustomerID:    customerID,
			Date:          date,
			State:         state,
			CurrentState:  out.CurrentState,
			Actor:         actor,
		})
	}
	return out, nil
}

// RemoveState detaches state.  Removing the last state leaves the
// display state at NoState.
func (e *Engine) RemoveState(ctx context.Context, reservationID uint64, state, actor, note string) (*StateChange, error) {
	var out *StateChange
	var customerID uint64
	var date string
	err := e.withReservation(ctx, reservationID, func(tx Tx, p Palette, r *model.Reservation) error {
		changed, err := e.applyRemove(ctx, tx, p, r, state, actor, note)
		if err != nil {
			return err
		}
		out = changeOf(r, changed)
		customerID, date = r.CustomerID, model.DateKey(r.Date)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if out.Changed {
		e.log.Info("state removed",
			zap.Uint64("reservation_id", reservationID),
			zap.String("state", state),
			zap.String("current_state", out.CurrentState),
			zap.String("actor", actor),
		)
		e.publish(ctx, Event{
			Type:          EventStateChanged,
			ReservationID: reservationID,
			Ticket:        out.Ticket,
			CustomerID:    customerID,
			Date:          date,
			State:         state,
			CurrentState:  out.CurrentState,
			Actor:         actor,
		})
	}
	return out, nil
}

func changeOf(r *model.Reservation, changed bool) *StateChange {
	states := make([]string, len(r.States))
	copy(states, r.States)
	return &StateChange{
		ReservationID: r.ID,
		Ticket:        r.Ticket,
		States:        states,
		CurrentState:  r.CurrentState,
		Changed:       changed,
	}
}

func (e *Engine) applyAdd(ctx context.Context, tx Tx, p Palette, r *model.Reservation, state, actor, note string) (bool, error) {
	def, ok := p.Lookup(state)
	if !ok || !def.Active {
		return false, newError(KindInvalidStateTransition, "unknown or inactive state", map[string]any{"state": state})
	}
	states, added := withState(r.States, state)
	if !added {
		return false, nil
	}
	if err := e.commitStates(ctx, tx, p, r, states, state, model.ActionAdded, actor, note); err != nil {
		return false, err
	}
	if state == e.opts.NoShowState {
		in := &model.Incident{
			ReservationID: r.ID,
			CustomerID:    r.CustomerID,
			Kind:          model.IncidentNoShow,
			Actor:         actor,
			Note:          note,
			CreatedAt:     e.now(),
		}
		if err := tx.InsertIncident(ctx, in); err != nil {
			return false, fmt.Errorf("insert incident: %w", err)
		}
	}
	return true, nil
}

func (e *Engine) applyRemove(ctx context.Context, tx Tx, p Palette, r *model.Reservation, state, actor, note string) (bool, error) {
	if state == "" {
		return false, newError(KindInvalidStateTransition, "state name is required", nil)
	}
	if _, ok := p.Lookup(state); !ok {
		return false, newError(KindInvalidStateTransition, "unknown state", map[string]any{"state": state})
	}
	states, removed := withoutState(r.States, state)
	if !removed {
		return false, nil
	}
	if err := e.commitStates(ctx, tx, p, r, states, state, model.ActionRemoved, actor, note); err != nil {
		return false, err
	}
	return true, nil
}

// commitStates stores the new state set, its display state and the
// history entry, then refreshes customer statistics.  A change that
// takes the reservation out of a releasing state re-claims its
// furniture and fails if somebody else holds it now.
func (e *Engine) commitStates(ctx context.Context, tx Tx, p Palette, r *model.Reservation, states []string, state, action, actor, note string) error {
	current := CurrentDisplayState(states, p)
	if p.Releasing(r.CurrentState) && !p.Releasing(current) {
		if err := e.reclaim(ctx, tx, p, r); err != nil {
			return err
		}
	}
	if err := tx.UpdateStates(ctx, r.ID, states, current); err != nil {
		return fmt.Errorf("update states: %w", err)
	}
	r.States = states
	r.CurrentState = current
	entry := &model.StateHistoryEntry{
		ReservationID: r.ID,
		State:         state,
		Action:        action,
		Actor:         actor,
		Note:          note,
		CreatedAt:     e.now(),
	}
	if err := tx.AppendHistory(ctx, entry); err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	return e.refreshCustomerStats(ctx, tx, r.CustomerID)
}

func (e *Engine) reclaim(ctx context.Context, tx Tx, p Palette, r *model.Reservation) error {
	as, err := tx.Assignments(ctx, r.ID)
	if err != nil {
		return fmt.Errorf("load assignments: %w", err)
	}
	if len(as) == 0 {
		return nil
	}
	ids := make([]uint64, 0, len(as))
	for _, a := range as {
		ids = append(ids, a.FurnitureID)
	}
	found, err := e.conflicts(ctx, tx, p, ids, []time.Time{r.Date}, r.ID, nil)
	if err != nil {
		return err
	}
	if len(found) > 0 {
		return unavailable(found)
	}
	return nil
}

// History returns the state timeline of a reservation, oldest first.
func (e *Engine) History(ctx context.Context, reservationID uint64) ([]model.StateHistoryEntry, error) {
	var out []model.StateHistoryEntry
	err := e.store.Snapshot(ctx, func(tx Tx) error {
		if _, err := loadReservation(ctx, tx, reservationID); err != nil {
			return err
		}
		var err error
		out, err = tx.History(ctx, reservationID)
		return err
	})
	return out, err
}
