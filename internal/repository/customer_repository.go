package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/menfistoo/purobeach/internal/model"
)

// CustomerRepo reads customers and maintains their derived statistics.
type CustomerRepo struct {
	db *sql.DB
}

// NewCustomerRepo returns a new CustomerRepo bound to the given database.
func NewCustomerRepo(db *sql.DB) *CustomerRepo { return &CustomerRepo{db: db} }

// GetTx returns the customer with the given id or ErrNotFound.
func (r *CustomerRepo) GetTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Customer, error) {
	const q = `SELECT id, name, customer_type, suite, preferences, total_visits, no_shows, cancellations, last_visit
	           FROM customers WHERE id = ?`
	var c model.Customer
	var prefs string
	var last sql.NullTime
	err := tx.QueryRowContext(ctx, q, id).Scan(&c.ID, &c.Name, &c.Type, &c.Suite, &prefs,
		&c.Stats.Visits, &c.Stats.NoShows, &c.Stats.Cancellations, &last)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	c.Preferences = model.SplitList(prefs)
	if last.Valid {
		t := model.DateOnly(last.Time)
		c.Stats.LastVisit = &t
	}
	return &c, nil
}

// IDsWithReservationsTx lists every customer holding at least one
// reservation.
func (r *CustomerRepo) IDsWithReservationsTx(ctx context.Context, tx *sql.Tx) ([]uint64, error) {
	rows, err := tx.QueryContext(ctx, `SELECT DISTINCT customer_id FROM reservations ORDER BY customer_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []uint64
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// UpdateStatsTx overwrites the derived counters.
func (r *CustomerRepo) UpdateStatsTx(ctx context.Context, tx *sql.Tx, id uint64, st model.CustomerStats) error {
	var last any
	if st.LastVisit != nil {
		last = model.DateKey(*st.LastVisit)
	}
	_, err := tx.ExecContext(ctx,
		`UPDATE customers SET total_visits = ?, no_shows = ?, cancellations = ?, last_visit = ? WHERE id = ?`,
		st.Visits, st.NoShows, st.Cancellations, last, id)
	return err
}
