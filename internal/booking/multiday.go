package booking

import (
	"context"
	"errors"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/menfistoo/purobeach/internal/model"
)

// FallbackPolicy decides what happens when the consistent furniture set
// is taken on one of the dates of a multi-day request.
type FallbackPolicy string

const (
	// FallbackAbort fails the whole group.
	FallbackAbort FallbackPolicy = "abort"
	// FallbackPerDay books the best suggested cluster for that date.
	FallbackPerDay FallbackPolicy = "per_day"
)

// LinkedRequest books the same customer over several dates.  Either
// FurnitureIDs (the same items every day) or FurnitureByDate (keyed by
// YYYY-MM-DD) must be set.
type LinkedRequest struct {
	CustomerID       uint64
	Dates            []time.Time
	PartySize        int
	FurnitureIDs     []uint64
	FurnitureByDate  map[string][]uint64
	Fallback         FallbackPolicy
	TimeSlot         string
	Preferences      []string
	Notes            string
	Actor            string
	RejectDuplicates bool
}

// MemberAllocation is one booked date of a group.
type MemberAllocation struct {
	ReservationID uint64   `json:"reservation_id"`
	Ticket        string   `json:"ticket"`
	Date          string   `json:"date"`
	FurnitureIDs  []uint64 `json:"furniture_ids"`
	Substituted   bool     `json:"substituted"` // furniture chosen by the per-day fallback
}

// LinkedResult describes a created multi-day group.
type LinkedResult struct {
	ParentID     uint64             `json:"parent_id"`
	ParentTicket string             `json:"parent_ticket"`
	ChildIDs     []uint64           `json:"child_ids"`
	Members      []MemberAllocation `json:"members"`
	Duplicate    *DuplicateMatch    `json:"duplicate,omitempty"`
}

func (req LinkedRequest) validate(days []time.Time) error {
	if req.CustomerID == 0 {
		return invalid("customer id is required")
	}
	if len(days) == 0 {
		return invalid("at least one date is required")
	}
	switch req.Fallback {
	case "", FallbackAbort, FallbackPerDay:
	default:
		return invalid("unknown fallback policy " + string(req.Fallback))
	}
	if req.FurnitureByDate == nil {
		return validateBooking(req.PartySize, req.FurnitureIDs, req.TimeSlot)
	}
	for _, d := range days {
		if err := validateBooking(req.PartySize, req.FurnitureByDate[model.DateKey(d)], req.TimeSlot); err != nil {
			return atDate(err, model.DateKey(d))
		}
	}
	return nil
}

// CreateLinked books a parent reservation on the earliest date and one
// child per later date.  Every date is locked in a single transaction;
// any failure leaves no rows behind.
func (e *Engine) CreateLinked(ctx context.Context, req LinkedRequest) (*LinkedResult, error) {
	days := normalizeDates(req.Dates)
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	if err := req.validate(days); err != nil {
		return nil, err
	}

	var out *LinkedResult
	var created []*model.Reservation
	err := e.store.Serialized(ctx, days, func(tx Tx) error {
		out, created = nil, nil
		p, err := e.palette(ctx, tx)
		if err != nil {
			return err
		}
		customer, err := loadCustomer(ctx, tx, req.CustomerID)
		if err != nil {
			return err
		}
		dup, err := findDuplicate(ctx, tx, p, customer.ID, days, 0)
		if err != nil {
			return err
		}
		if dup != nil && req.RejectDuplicates {
			return duplicateError(dup)
		}

		res := &LinkedResult{Duplicate: dup, ChildIDs: []uint64{}}
		var parent *model.Reservation
		for _, d := range days {
			key := model.DateKey(d)
			ids := req.FurnitureIDs
			if req.FurnitureByDate != nil {
				ids = req.FurnitureByDate[key]
			}
			a := allocation{
				date:         d,
				partySize:    req.PartySize,
				furnitureIDs: ids,
				timeSlot:     req.TimeSlot,
				preferences:  req.Preferences,
				notes:        req.Notes,
				actor:        req.Actor,
			}
			substituted := false
			r, err := e.allocate(ctx, tx, p, customer, a, parent)
			if IsKind(err, KindFurnitureUnavailable) && req.Fallback == FallbackPerDay && req.FurnitureByDate == nil {
				alt, ferr := e.bestClusterFor(ctx, tx, p, customer, d, req.PartySize, req.Preferences)
				if ferr != nil {
					return ferr
				}
				if alt != nil {
					a.furnitureIDs = alt
					substituted = true
					r, err = e.allocate(ctx, tx, p, customer, a, parent)
				}
			}
			if err != nil {
				return atDate(err, key)
			}
			if parent == nil {
				parent = r
				res.ParentID, res.ParentTicket = r.ID, r.Ticket
			} else {
				res.ChildIDs = append(res.ChildIDs, r.ID)
			}
			created = append(created, r)
			res.Members = append(res.Members, MemberAllocation{
				ReservationID: r.ID,
				Ticket:        r.Ticket,
				Date:          key,
				FurnitureIDs:  uniqueIDs(a.furnitureIDs),
				Substituted:   substituted,
			})
		}
		out = res
		return nil
	})
	if err != nil {
		e.log.Info("multi-day reservation rejected",
			zap.Uint64("customer_id", req.CustomerID),
			zap.Int("dates", len(days)),
			zap.String("kind", string(KindOf(err))),
			zap.Error(err),
		)
		return nil, err
	}
	e.log.Info("multi-day reservation created",
		zap.Uint64("parent_id", out.ParentID),
		zap.String("ticket", out.ParentTicket),
		zap.Int("children", len(out.ChildIDs)),
	)
	for i, r := range created {
		e.publish(ctx, Event{
			Type:          EventReservationCreated,
			ReservationID: r.ID,
			Ticket:        r.Ticket,
			CustomerID:    r.CustomerID,
			Date:          model.DateKey(r.Date),
			CurrentState:  r.CurrentState,
			FurnitureIDs:  out.Members[i].FurnitureIDs,
			Actor:         req.Actor,
		})
	}
	return out, nil
}

// atDate tags an engine error with the date it happened on.
func atDate(err error, key string) error {
	var e *Error
	if !errors.As(err, &e) {
		return err
	}
	details := make(map[string]any, len(e.Details)+1)
	for k, v := range e.Details {
		details[k] = v
	}
	details["date"] = key
	return &Error{Kind: e.Kind, Message: e.Message, Details: details, Err: e.Err}
}

// MemberFailure records a group member an operation could not change.
type MemberFailure struct {
	ReservationID uint64 `json:"reservation_id"`
	Ticket        string `json:"ticket"`
	Date          string `json:"date"`
	Kind          Kind   `json:"kind"`
	Message       string `json:"message"`
}

// GroupResult is the outcome of a best-effort group operation.
type GroupResult struct {
	Updated  []uint64        `json:"updated"`
	Failures []MemberFailure `json:"failures"`
}

func (g *GroupResult) fail(r model.Reservation, err error) {
	f := MemberFailure{ReservationID: r.ID, Ticket: r.Ticket, Date: model.DateKey(r.Date), Kind: KindOf(err), Message: err.Error()}
	var e *Error
	if errors.As(err, &e) {
		f.Message = e.Message
	}
	g.Failures = append(g.Failures, f)
}

// groupMembers returns the parent and children of the group id belongs
// to, ordered by date.  A reservation outside any group is a group of
// one.
func (e *Engine) groupMembers(ctx context.Context, id uint64) ([]model.Reservation, error) {
	var members []model.Reservation
	err := e.store.Snapshot(ctx, func(tx Tx) error {
		r, err := loadReservation(ctx, tx, id)
		if err != nil {
			return err
		}
		if r.IsChild() {
			if r, err = loadReservation(ctx, tx, *r.ParentID); err != nil {
				return err
			}
		}
		children, err := tx.Children(ctx, r.ID)
		if err != nil {
			return err
		}
		members = append([]model.Reservation{*r}, children...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(members, func(i, j int) bool { return members[i].Date.Before(members[j].Date) })
	return members, nil
}

// ApplyStateToGroup adds state to every member of the group, one
// transaction per member.  Failures are collected and do not stop the
// remaining members.
func (e *Engine) ApplyStateToGroup(ctx context.Context, id uint64, state, actor, note string) (*GroupResult, error) {
	members, err := e.groupMembers(ctx, id)
	if err != nil {
		return nil, err
	}
	res := &GroupResult{Updated: []uint64{}, Failures: []MemberFailure{}}
	for _, m := range members {
		if _, err := e.AddState(ctx, m.ID, state, actor, note); err != nil {
			res.fail(m, err)
			continue
		}
		res.Updated = append(res.Updated, m.ID)
	}
	return res, nil
}

// CancelGroup applies the configured cancelled state to every member.
func (e *Engine) CancelGroup(ctx context.Context, id uint64, actor, note string) (*GroupResult, error) {
	if e.opts.CancelledState == "" {
		return nil, newError(KindInvalidStateTransition, "no cancelled state configured", nil)
	}
	return e.ApplyStateToGroup(ctx, id, e.opts.CancelledState, actor, note)
}

// UpdateGroup applies patch to every member.  Members keep their own
// dates, so a date change is rejected.
func (e *Engine) UpdateGroup(ctx context.Context, id uint64, patch UpdateRequest) (*GroupResult, error) {
	if patch.Date != nil {
		return nil, invalid("date cannot be changed for a whole group")
	}
	members, err := e.groupMembers(ctx, id)
	if err != nil {
		return nil, err
	}
	res := &GroupResult{Updated: []uint64{}, Failures: []MemberFailure{}}
	for _, m := range members {
		if _, err := e.UpdateReservation(ctx, m.ID, patch); err != nil {
			res.fail(m, err)
			continue
		}
		res.Updated = append(res.Updated, m.ID)
	}
	return res, nil
}
