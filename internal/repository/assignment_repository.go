package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/menfistoo/purobeach/internal/model"
)

// AssignmentRepo provides the reservation_furniture rows binding
// furniture to a reservation on its date.
type AssignmentRepo struct {
	db *sql.DB
}

// NewAssignmentRepo returns a new AssignmentRepo bound to the given database.
func NewAssignmentRepo(db *sql.DB) *AssignmentRepo { return &AssignmentRepo{db: db} }

// ByReservationTx lists the furniture of one reservation.
func (r *AssignmentRepo) ByReservationTx(ctx context.Context, tx *sql.Tx, reservationID uint64) ([]model.Assignment, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT id, reservation_id, furniture_id, assignment_date FROM reservation_furniture
		 WHERE reservation_id = ? ORDER BY furniture_id`, reservationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Assignment
	for rows.Next() {
		var a model.Assignment
		if err := rows.Scan(&a.ID, &a.ReservationID, &a.FurnitureID, &a.Date); err != nil {
			return nil, err
		}
		a.Date = model.DateOnly(a.Date)
		out = append(out, a)
	}
	return out, rows.Err()
}

// CreateBulkTx inserts every assignment in a single statement.  Passing
// an empty slice has no effect.
func (r *AssignmentRepo) CreateBulkTx(ctx context.Context, tx *sql.Tx, as []model.Assignment) error {
	if len(as) == 0 {
		return nil
	}
	query := `INSERT INTO reservation_furniture (reservation_id, furniture_id, assignment_date) VALUES `
	args := make([]any, 0, len(as)*3)
	for i, a := range as {
		if i > 0 {
			query += ", "
		}
		query += "(?, ?, ?)"
		args = append(args, a.ReservationID, a.FurnitureID, model.DateKey(a.Date))
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// DeleteByReservationTx removes every assignment of a reservation.
func (r *AssignmentRepo) DeleteByReservationTx(ctx context.Context, tx *sql.Tx, reservationID uint64) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM reservation_furniture WHERE reservation_id = ?`, reservationID)
	return err
}

// ClaimsTx returns the assignments on dates joined with the owning
// reservation's ticket and display state.  A nil furnitureIDs slice
// means every item.
func (r *AssignmentRepo) ClaimsTx(ctx context.Context, tx *sql.Tx, furnitureIDs []uint64, dates []time.Time) ([]model.Claim, error) {
	if len(dates) == 0 || (furnitureIDs != nil && len(furnitureIDs) == 0) {
		return nil, nil
	}
	query := `SELECT rf.furniture_id, rf.assignment_date, r.id, r.ticket, r.current_state
	          FROM reservation_furniture rf
	          JOIN reservations r ON r.id = rf.reservation_id
	          WHERE rf.assignment_date IN (` + placeholders(len(dates)) + `)`
	args := dateArgs(dates)
	if furnitureIDs != nil {
		query += ` AND rf.furniture_id IN (` + placeholders(len(furnitureIDs)) + `)`
		args = append(args, idArgs(furnitureIDs)...)
	}
	query += ` ORDER BY rf.assignment_date, rf.furniture_id, r.id`

	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Claim
	for rows.Next() {
		var c model.Claim
		if err := rows.Scan(&c.FurnitureID, &c.Date, &c.ReservationID, &c.Ticket, &c.CurrentState); err != nil {
			return nil, err
		}
		c.Date = model.DateOnly(c.Date)
		out = append(out, c)
	}
	return out, rows.Err()
}
