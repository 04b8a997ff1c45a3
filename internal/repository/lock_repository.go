package repository

import (
	"context"
	"database/sql"
	"sort"
	"time"

	"github.com/menfistoo/purobeach/internal/model"
)

// LockRepo serializes allocation per calendar date through row locks on
// allocation_locks.
type LockRepo struct {
	db *sql.DB
}

// NewLockRepo returns a new LockRepo bound to the given database.
func NewLockRepo(db *sql.DB) *LockRepo { return &LockRepo{db: db} }

// lockDays returns the distinct calendar days of dates in ascending
// order, the only order locks are ever taken in.
func lockDays(dates []time.Time) []time.Time {
	seen := map[string]bool{}
	var out []time.Time
	for _, d := range dates {
		d = model.DateOnly(d)
		if k := model.DateKey(d); !seen[k] {
			seen[k] = true
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// Ensure creates the lock rows outside of any transaction.  Creating
// them inside the locking transaction would take shared locks on
// existing rows first and deadlock two writers upgrading them.
func (r *LockRepo) Ensure(ctx context.Context, days []time.Time) error {
	if len(days) == 0 {
		return nil
	}
	q := `INSERT IGNORE INTO allocation_locks (lock_date) VALUES `
	for i := range days {
		if i > 0 {
			q += ", "
		}
		q += "(?)"
	}
	_, err := r.db.ExecContext(ctx, q, dateArgs(days)...)
	return err
}

// LockTx takes exclusive locks on the rows of days, ascending, and
// holds them until tx ends.
func (r *LockRepo) LockTx(ctx context.Context, tx *sql.Tx, days []time.Time) error {
	if len(days) == 0 {
		return nil
	}
	rows, err := tx.QueryContext(ctx,
		`SELECT lock_date FROM allocation_locks WHERE lock_date IN (`+placeholders(len(days))+`) ORDER BY lock_date FOR UPDATE`,
		dateArgs(days)...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
	}
	return rows.Err()
}
