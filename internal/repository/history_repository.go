package repository

import (
	"context"
	"database/sql"

	"github.com/menfistoo/purobeach/internal/model"
)

// HistoryRepo appends to and reads the state change timeline.  Rows are
// never updated; ordering is by insertion id.
type HistoryRepo struct {
	db *sql.DB
}

// NewHistoryRepo returns a new HistoryRepo bound to the given database.
func NewHistoryRepo(db *sql.DB) *HistoryRepo { return &HistoryRepo{db: db} }

// AppendTx inserts e and sets its id.
func (r *HistoryRepo) AppendTx(ctx context.Context, tx *sql.Tx, e *model.StateHistoryEntry) error {
	result, err := tx.ExecContext(ctx,
		`INSERT INTO reservation_state_history (reservation_id, state, action, actor, note, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.ReservationID, e.State, e.Action, e.Actor, e.Note, e.CreatedAt.UTC())
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = uint64(id)
	return nil
}

// ListTx returns the timeline of a reservation, oldest first.
func (r *HistoryRepo) ListTx(ctx context.Context, tx *sql.Tx, reservationID uint64) ([]model.StateHistoryEntry, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT id, reservation_id, state, action, actor, note, created_at
		 FROM reservation_state_history WHERE reservation_id = ? ORDER BY id`, reservationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.StateHistoryEntry
	for rows.Next() {
		var e model.StateHistoryEntry
		if err := rows.Scan(&e.ID, &e.ReservationID, &e.State, &e.Action, &e.Actor, &e.Note, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// IncidentRepo records customer incidents such as no-shows.
type IncidentRepo struct {
	db *sql.DB
}

// NewIncidentRepo returns a new IncidentRepo bound to the given database.
func NewIncidentRepo(db *sql.DB) *IncidentRepo { return &IncidentRepo{db: db} }

// CreateTx inserts in and sets its id.
func (r *IncidentRepo) CreateTx(ctx context.Context, tx *sql.Tx, in *model.Incident) error {
	result, err := tx.ExecContext(ctx,
		`INSERT INTO incidents (reservation_id, customer_id, kind, actor, note, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		in.ReservationID, in.CustomerID, in.Kind, in.Actor, in.Note, in.CreatedAt.UTC())
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	in.ID = uint64(id)
	return nil
}
