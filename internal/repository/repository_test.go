package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menfistoo/purobeach/internal/model"
)

var (
	jul1 = time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	jul2 = time.Date(2025, 7, 2, 0, 0, 0, 0, time.UTC)
)

func setupMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func beginTx(t *testing.T, db *sql.DB, mock sqlmock.Sqlmock) *sql.Tx {
	t.Helper()
	mock.ExpectBegin()
	tx, err := db.Begin()
	require.NoError(t, err)
	return tx
}

var reservationCols = []string{"id", "ticket", "customer_id", "reservation_date", "party_size", "time_slot", "states",
	"current_state", "parent_id", "preferences", "notes", "created_by", "created_at", "updated_at"}

func TestReservationRepo_CreateTx(t *testing.T) {
	db, mock := setupMock(t)
	repo := NewReservationRepo(db)
	tx := beginTx(t, db, mock)

	res := &model.Reservation{
		Ticket: "25070101", CustomerID: 7, Date: jul1, PartySize: 3, TimeSlot: model.SlotAllDay,
		States: []string{}, Preferences: []string{"pref_sombra"}, CreatedBy: "staff-1",
	}
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO reservations`)).
		WithArgs("25070101", uint64(7), "2025-07-01", 3, "all_day", "", "", nil, "pref_sombra", "", "staff-1", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(41, 1))

	require.NoError(t, repo.CreateTx(context.Background(), tx, res))
	assert.Equal(t, uint64(41), res.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReservationRepo_CreateTx_DuplicateTicket(t *testing.T) {
	db, mock := setupMock(t)
	repo := NewReservationRepo(db)
	tx := beginTx(t, db, mock)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO reservations`)).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry '25070101' for key 'uq_reservation_ticket'"})

	err := repo.CreateTx(context.Background(), tx, &model.Reservation{Ticket: "25070101", Date: jul1})
	assert.ErrorIs(t, err, ErrDuplicateTicket)
}

func TestReservationRepo_GetTx(t *testing.T) {
	db, mock := setupMock(t)
	repo := NewReservationRepo(db)
	tx := beginTx(t, db, mock)
	now := time.Date(2025, 6, 20, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM reservations WHERE id = ?`)).
		WithArgs(uint64(42)).
		WillReturnRows(sqlmock.NewRows(reservationCols).
			AddRow(42, "25070101-1", 7, jul2, 2, "morning", "Confirmada,Sentada", "Sentada", 41, "", nil, "staff-1", now, now))

	r, err := repo.GetTx(context.Background(), tx, 42)
	require.NoError(t, err)
	assert.Equal(t, []string{"Confirmada", "Sentada"}, r.States)
	assert.Equal(t, "Sentada", r.CurrentState)
	require.NotNil(t, r.ParentID)
	assert.Equal(t, uint64(41), *r.ParentID)
	assert.Equal(t, "", r.Notes)
	assert.Empty(t, r.Preferences)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM reservations WHERE id = ?`)).
		WithArgs(uint64(99)).
		WillReturnRows(sqlmock.NewRows(reservationCols))
	_, err = repo.GetTx(context.Background(), tx, 99)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReservationRepo_UpdateStatesTx(t *testing.T) {
	db, mock := setupMock(t)
	repo := NewReservationRepo(db)
	tx := beginTx(t, db, mock)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE reservations SET states = ?, current_state = ? WHERE id = ?`)).
		WithArgs("Confirmada,Cancelada", "Cancelada", uint64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.UpdateStatesTx(context.Background(), tx, 5, []string{"Confirmada", "Cancelada"}, "Cancelada"))

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE reservations SET states`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.UpdateStatesTx(context.Background(), tx, 6, nil, ""), ErrNotFound)
}

func TestReservationRepo_ByCustomerTx(t *testing.T) {
	db, mock := setupMock(t)
	repo := NewReservationRepo(db)
	tx := beginTx(t, db, mock)

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE customer_id = ? AND reservation_date IN (?, ?)`)).
		WithArgs(uint64(7), "2025-07-01", "2025-07-02").
		WillReturnRows(sqlmock.NewRows(reservationCols))
	rs, err := repo.ByCustomerTx(context.Background(), tx, 7, []time.Time{jul1, jul2})
	require.NoError(t, err)
	assert.Empty(t, rs)

	rs, err = repo.ByCustomerTx(context.Background(), tx, 7, []time.Time{})
	require.NoError(t, err)
	assert.Nil(t, rs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepo_ClaimsTx(t *testing.T) {
	db, mock := setupMock(t)
	repo := NewAssignmentRepo(db)
	tx := beginTx(t, db, mock)
	cols := []string{"furniture_id", "assignment_date", "id", "ticket", "current_state"}

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE rf.assignment_date IN (?) AND rf.furniture_id IN (?, ?) ORDER BY`)).
		WithArgs("2025-07-01", uint64(1), uint64(2)).
		WillReturnRows(sqlmock.NewRows(cols).AddRow(1, jul1, 10, "25070101", "Confirmada"))
	claims, err := repo.ClaimsTx(context.Background(), tx, []uint64{1, 2}, []time.Time{jul1})
	require.NoError(t, err)
	require.Len(t, claims, 1)
	assert.Equal(t, model.Claim{FurnitureID: 1, Date: jul1, ReservationID: 10, Ticket: "25070101", CurrentState: "Confirmada"}, claims[0])

	mock.ExpectQuery(`WHERE rf.assignment_date IN \(\?, \?\) ORDER BY`).
		WithArgs("2025-07-01", "2025-07-02").
		WillReturnRows(sqlmock.NewRows(cols))
	_, err = repo.ClaimsTx(context.Background(), tx, nil, []time.Time{jul1, jul2})
	require.NoError(t, err)

	claims, err = repo.ClaimsTx(context.Background(), tx, []uint64{}, []time.Time{jul1})
	require.NoError(t, err)
	assert.Nil(t, claims)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepo_CreateBulkTx(t *testing.T) {
	db, mock := setupMock(t)
	repo := NewAssignmentRepo(db)
	tx := beginTx(t, db, mock)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO reservation_furniture (reservation_id, furniture_id, assignment_date) VALUES (?, ?, ?), (?, ?, ?)`)).
		WithArgs(uint64(10), uint64(1), "2025-07-01", uint64(10), uint64(2), "2025-07-01").
		WillReturnResult(sqlmock.NewResult(0, 2))
	require.NoError(t, repo.CreateBulkTx(context.Background(), tx, []model.Assignment{
		{ReservationID: 10, FurnitureID: 1, Date: jul1},
		{ReservationID: 10, FurnitureID: 2, Date: jul1},
	}))
	require.NoError(t, repo.CreateBulkTx(context.Background(), tx, nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCustomerRepo_GetTx(t *testing.T) {
	db, mock := setupMock(t)
	repo := NewCustomerRepo(db)
	tx := beginTx(t, db, mock)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM customers WHERE id = ?`)).
		WithArgs(uint64(8)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "customer_type", "suite", "preferences", "total_visits", "no_shows", "cancellations", "last_visit"}).
			AddRow(8, "John Smith", "interno", 1, "pref_sombra, pref_vip", 4, 1, 0, jul1))

	c, err := repo.GetTx(context.Background(), tx, 8)
	require.NoError(t, err)
	assert.True(t, c.Suite)
	assert.Equal(t, []string{"pref_sombra", "pref_vip"}, c.Preferences)
	assert.Equal(t, 4, c.Stats.Visits)
	require.NotNil(t, c.Stats.LastVisit)
	assert.True(t, c.Stats.LastVisit.Equal(jul1))
}

func TestLockDays(t *testing.T) {
	got := lockDays([]time.Time{jul2, jul1.Add(15 * time.Hour), jul2})
	assert.Equal(t, []time.Time{jul1, jul2}, got)
	assert.Nil(t, lockDays(nil))
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, "", placeholders(0))
	assert.Equal(t, "?", placeholders(1))
	assert.Equal(t, "?, ?, ?", placeholders(3))
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, isRetryable(&mysql.MySQLError{Number: 1213}))
	assert.True(t, isRetryable(&mysql.MySQLError{Number: 1205}))
	assert.False(t, isRetryable(&mysql.MySQLError{Number: 1062}))
	assert.False(t, isRetryable(errors.New("boom")))
	assert.False(t, isRetryable(nil))
}

func modelStats() model.CustomerStats {
	last := jul1
	return model.CustomerStats{Visits: 3, NoShows: 1, LastVisit: &last}
}
