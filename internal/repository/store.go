package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/menfistoo/purobeach/internal/booking"
	"github.com/menfistoo/purobeach/internal/model"
)

// maxLockRetries bounds how often a transaction aborted by a deadlock or
// lock wait timeout is run again.
const maxLockRetries = 3

// Store implements booking.Store on MySQL.
type Store struct {
	db  *sql.DB
	log *zap.Logger

	Furniture    *FurnitureRepo
	Customers    *CustomerRepo
	States       *StateRepo
	Reservations *ReservationRepo
	Assignments  *AssignmentRepo
	History      *HistoryRepo
	Incidents    *IncidentRepo
	Locks        *LockRepo
}

// NewStore builds the repositories on db.
func NewStore(db *sql.DB, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{
		db:           db,
		log:          log,
		Furniture:    NewFurnitureRepo(db),
		Customers:    NewCustomerRepo(db),
		States:       NewStateRepo(db),
		Reservations: NewReservationRepo(db),
		Assignments:  NewAssignmentRepo(db),
		History:      NewHistoryRepo(db),
		Incidents:    NewIncidentRepo(db),
		Locks:        NewLockRepo(db),
	}
}

// DB exposes the underlying handle for health checks.
func (s *Store) DB() *sql.DB { return s.db }

// Serialized runs fn in a READ COMMITTED transaction holding the lock
// rows of every date.  Reads after the lock see every allocation
// committed before it.  Deadlocks and lock wait timeouts restart fn.
func (s *Store) Serialized(ctx context.Context, dates []time.Time, fn func(booking.Tx) error) error {
	days := lockDays(dates)
	if err := s.Locks.Ensure(ctx, days); err != nil {
		return fmt.Errorf("ensure lock rows: %w", err)
	}
	opts := &sql.TxOptions{Isolation: sql.LevelReadCommitted}
	for attempt := 1; ; attempt++ {
		err := s.run(ctx, opts, days, fn)
		if isRetryable(err) && attempt < maxLockRetries {
			s.log.Warn("allocation transaction aborted by lock conflict, retrying",
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
			continue
		}
		return err
	}
}

// Snapshot runs fn in a read-only transaction.
func (s *Store) Snapshot(ctx context.Context, fn func(booking.Tx) error) error {
	return s.run(ctx, &sql.TxOptions{ReadOnly: true}, nil, fn)
}

func (s *Store) run(ctx context.Context, opts *sql.TxOptions, days []time.Time, fn func(booking.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := s.Locks.LockTx(ctx, tx, days); err != nil {
		return fmt.Errorf("lock dates: %w", err)
	}
	if err := fn(&sqlTx{s: s, tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	committed = true
	return nil
}

// sqlTx adapts the repositories to booking.Tx for one transaction.
type sqlTx struct {
	s  *Store
	tx *sql.Tx
}

func (t *sqlTx) States(ctx context.Context) ([]model.StateDefinition, error) {
	return t.s.States.ListTx(ctx, t.tx)
}

func (t *sqlTx) PreferenceFeatures(ctx context.Context) (map[string]string, error) {
	return t.s.States.PreferenceFeaturesTx(ctx, t.tx)
}

func (t *sqlTx) Customer(ctx context.Context, id uint64) (*model.Customer, error) {
	return t.s.Customers.GetTx(ctx, t.tx, id)
}

func (t *sqlTx) CustomerIDsWithReservations(ctx context.Context) ([]uint64, error) {
	return t.s.Customers.IDsWithReservationsTx(ctx, t.tx)
}

func (t *sqlTx) UpdateCustomerStats(ctx context.Context, customerID uint64, stats model.CustomerStats) error {
	return t.s.Customers.UpdateStatsTx(ctx, t.tx, customerID, stats)
}

func (t *sqlTx) FurnitureByIDs(ctx context.Context, ids []uint64) ([]model.Furniture, error) {
	return t.s.Furniture.ByIDsTx(ctx, t.tx, ids)
}

func (t *sqlTx) ActiveFurniture(ctx context.Context) ([]model.Furniture, error) {
	return t.s.Furniture.ActiveTx(ctx, t.tx)
}

func (t *sqlTx) Claims(ctx context.Context, furnitureIDs []uint64, dates []time.Time) ([]model.Claim, error) {
	return t.s.Assignments.ClaimsTx(ctx, t.tx, furnitureIDs, dates)
}

func (t *sqlTx) Reservation(ctx context.Context, id uint64) (*model.Reservation, error) {
	return t.s.Reservations.GetTx(ctx, t.tx, id)
}

func (t *sqlTx) Children(ctx context.Context, parentID uint64) ([]model.Reservation, error) {
	return t.s.Reservations.ChildrenTx(ctx, t.tx, parentID)
}

func (t *sqlTx) ReservationsByCustomer(ctx context.Context, customerID uint64, dates []time.Time) ([]model.Reservation, error) {
	return t.s.Reservations.ByCustomerTx(ctx, t.tx, customerID, dates)
}

func (t *sqlTx) TicketsForDate(ctx context.Context, prefix string) ([]string, error) {
	return t.s.Reservations.TicketsWithPrefixTx(ctx, t.tx, prefix)
}

func (t *sqlTx) InsertReservation(ctx context.Context, r *model.Reservation) error {
	return t.s.Reservations.CreateTx(ctx, t.tx, r)
}

func (t *sqlTx) UpdateReservation(ctx context.Context, r *model.Reservation) error {
	return t.s.Reservations.UpdateTx(ctx, t.tx, r)
}

func (t *sqlTx) UpdateStates(ctx context.Context, id uint64, states []string, current string) error {
	return t.s.Reservations.UpdateStatesTx(ctx, t.tx, id, states, current)
}

func (t *sqlTx) Assignments(ctx context.Context, reservationID uint64) ([]model.Assignment, error) {
	return t.s.Assignments.ByReservationTx(ctx, t.tx, reservationID)
}

func (t *sqlTx) InsertAssignments(ctx context.Context, as []model.Assignment) error {
	return t.s.Assignments.CreateBulkTx(ctx, t.tx, as)
}

func (t *sqlTx) DeleteAssignments(ctx context.Context, reservationID uint64) error {
	return t.s.Assignments.DeleteByReservationTx(ctx, t.tx, reservationID)
}

func (t *sqlTx) AppendHistory(ctx context.Context, e *model.StateHistoryEntry) error {
	return t.s.History.AppendTx(ctx, t.tx, e)
}

func (t *sqlTx) History(ctx context.Context, reservationID uint64) ([]model.StateHistoryEntry, error) {
	return t.s.History.ListTx(ctx, t.tx, reservationID)
}

func (t *sqlTx) InsertIncident(ctx context.Context, in *model.Incident) error {
	return t.s.Incidents.CreateTx(ctx, t.tx, in)
}

var (
	_ booking.Store = (*Store)(nil)
	_ booking.Tx    = (*sqlTx)(nil)
)
