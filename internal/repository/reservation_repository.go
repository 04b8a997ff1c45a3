package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/menfistoo/purobeach/internal/model"
)

// ReservationRepo provides the reservation rows.  Each row covers one
// customer on one calendar date; multi-day stays link children to a
// parent through parent_id.  The active state set is stored as a
// comma separated column and exposed as an ordered slice.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

const reservationColumns = `id, ticket, customer_id, reservation_date, party_size, time_slot, states, current_state,
	parent_id, preferences, notes, created_by, created_at, updated_at`

func scanReservation(s scanner) (model.Reservation, error) {
	var r model.Reservation
	var states, prefs string
	var parent sql.NullInt64
	var notes sql.NullString
	err := s.Scan(&r.ID, &r.Ticket, &r.CustomerID, &r.Date, &r.PartySize, &r.TimeSlot, &states, &r.CurrentState,
		&parent, &prefs, &notes, &r.CreatedBy, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return r, err
	}
	r.Date = model.DateOnly(r.Date)
	r.States = model.SplitList(states)
	r.Preferences = model.SplitList(prefs)
	r.Notes = notes.String
	if parent.Valid {
		pid := uint64(parent.Int64)
		r.ParentID = &pid
	}
	return r, nil
}

func (r *ReservationRepo) list(ctx context.Context, q queryer, query string, args ...any) ([]model.Reservation, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

// GetTx returns the reservation with the given id or ErrNotFound.
func (r *ReservationRepo) GetTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Reservation, error) {
	res, err := scanReservation(tx.QueryRowContext(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// ChildrenTx returns the children of a multi-day parent in creation order.
func (r *ReservationRepo) ChildrenTx(ctx context.Context, tx *sql.Tx, parentID uint64) ([]model.Reservation, error) {
	return r.list(ctx, tx, `SELECT `+reservationColumns+` FROM reservations WHERE parent_id = ? ORDER BY id`, parentID)
}

// ByCustomerTx returns the customer's reservations on the given dates,
// or on every date when dates is nil.
func (r *ReservationRepo) ByCustomerTx(ctx context.Context, tx *sql.Tx, customerID uint64, dates []time.Time) ([]model.Reservation, error) {
	if dates == nil {
		return r.list(ctx, tx, `SELECT `+reservationColumns+` FROM reservations WHERE customer_id = ? ORDER BY id`, customerID)
	}
	if len(dates) == 0 {
		return nil, nil
	}
	q := `SELECT ` + reservationColumns + ` FROM reservations
	      WHERE customer_id = ? AND reservation_date IN (` + placeholders(len(dates)) + `) ORDER BY id`
	args := append([]any{customerID}, dateArgs(dates)...)
	return r.list(ctx, tx, q, args...)
}

// TicketsWithPrefixTx returns every ticket starting with prefix,
// children included.
func (r *ReservationRepo) TicketsWithPrefixTx(ctx context.Context, tx *sql.Tx, prefix string) ([]string, error) {
	rows, err := tx.QueryContext(ctx, `SELECT ticket FROM reservations WHERE ticket LIKE ?`, prefix+"%")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// CreateTx inserts res and sets its generated id.  A ticket collision
// is reported as ErrDuplicateTicket.
func (r *ReservationRepo) CreateTx(ctx context.Context, tx *sql.Tx, res *model.Reservation) error {
	const q = `INSERT INTO reservations (ticket, customer_id, reservation_date, party_size, time_slot, states,
	           current_state, parent_id, preferences, notes, created_by, created_at, updated_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	var parent any
	if res.ParentID != nil {
		parent = *res.ParentID
	}
	result, err := tx.ExecContext(ctx, q, res.Ticket, res.CustomerID, model.DateKey(res.Date), res.PartySize,
		res.TimeSlot, model.JoinList(res.States), res.CurrentState, parent, model.JoinList(res.Preferences),
		res.Notes, res.CreatedBy, res.CreatedAt.UTC(), res.UpdatedAt.UTC())
	if isDuplicateKey(err) {
		return ErrDuplicateTicket
	}
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	res.ID = uint64(id)
	return nil
}

// UpdateTx writes the editable fields of res.  Ticket, customer, parent
// and states are not touched.
func (r *ReservationRepo) UpdateTx(ctx context.Context, tx *sql.Tx, res *model.Reservation) error {
	result, err := tx.ExecContext(ctx,
		`UPDATE reservations SET reservation_date = ?, party_size = ?, time_slot = ?, preferences = ?, notes = ?, updated_at = ?
		 WHERE id = ?`,
		model.DateKey(res.Date), res.PartySize, res.TimeSlot, model.JoinList(res.Preferences), res.Notes,
		res.UpdatedAt.UTC(), res.ID)
	if err != nil {
		return err
	}
	return requireRow(result)
}

// UpdateStatesTx stores the state set and its display state.
func (r *ReservationRepo) UpdateStatesTx(ctx context.Context, tx *sql.Tx, id uint64, states []string, current string) error {
	result, err := tx.ExecContext(ctx, `UPDATE reservations SET states = ?, current_state = ? WHERE id = ?`,
		model.JoinList(states), current, id)
	if err != nil {
		return err
	}
	return requireRow(result)
}

// requireRow maps an update that matched nothing to ErrNotFound.  The
// DSN sets clientFoundRows so matched rows are counted even when the
// values did not change.
func requireRow(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
