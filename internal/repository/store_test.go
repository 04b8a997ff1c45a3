package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menfistoo/purobeach/internal/booking"
)

const lockSelect = `SELECT lock_date FROM allocation_locks WHERE lock_date IN (?, ?) ORDER BY lock_date FOR UPDATE`

func TestStore_SerializedLocksDatesAscending(t *testing.T) {
	db, mock := setupMock(t)
	s := NewStore(db, nil)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT IGNORE INTO allocation_locks (lock_date) VALUES (?), (?)`)).
		WithArgs("2025-07-01", "2025-07-02").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(lockSelect)).
		WithArgs("2025-07-01", "2025-07-02").
		WillReturnRows(sqlmock.NewRows([]string{"lock_date"}).AddRow(jul1).AddRow(jul2))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT ticket FROM reservations WHERE ticket LIKE ?`)).
		WithArgs("250701%").
		WillReturnRows(sqlmock.NewRows([]string{"ticket"}).AddRow("25070101"))
	mock.ExpectCommit()

	var tickets []string
	err := s.Serialized(context.Background(), []time.Time{jul2, jul1}, func(tx booking.Tx) error {
		var err error
		tickets, err = tx.TicketsForDate(context.Background(), "250701")
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"25070101"}, tickets)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_SerializedRollsBackOnError(t *testing.T) {
	db, mock := setupMock(t)
	s := NewStore(db, nil)
	boom := errors.New("boom")

	mock.ExpectExec(regexp.QuoteMeta(`INSERT IGNORE INTO allocation_locks`)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`FOR UPDATE`)).WillReturnRows(sqlmock.NewRows([]string{"lock_date"}).AddRow(jul1))
	mock.ExpectRollback()

	err := s.Serialized(context.Background(), []time.Time{jul1}, func(tx booking.Tx) error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_SerializedRetriesDeadlock(t *testing.T) {
	db, mock := setupMock(t)
	s := NewStore(db, nil)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT IGNORE INTO allocation_locks`)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`FOR UPDATE`)).WillReturnError(&mysql.MySQLError{Number: 1213, Message: "Deadlock found"})
	mock.ExpectRollback()
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`FOR UPDATE`)).WillReturnRows(sqlmock.NewRows([]string{"lock_date"}).AddRow(jul1))
	mock.ExpectCommit()

	calls := 0
	err := s.Serialized(context.Background(), []time.Time{jul1}, func(tx booking.Tx) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_SerializedWithoutDatesTakesNoLocks(t *testing.T) {
	db, mock := setupMock(t)
	s := NewStore(db, nil)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE customers SET total_visits`)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := s.Serialized(context.Background(), nil, func(tx booking.Tx) error {
		return tx.UpdateCustomerStats(context.Background(), 7, modelStats())
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_SnapshotNeverCommitsWrites(t *testing.T) {
	db, mock := setupMock(t)
	s := NewStore(db, nil)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`FROM reservation_states`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "color", "priority", "releases_availability", "is_default", "is_settled_override", "active", "display_order"}).
			AddRow(1, "Confirmada", "#2E8B57", 3, 0, 1, 0, 1, 1).
			AddRow(5, "Cancelada", "#DC143C", 10, 1, 0, 0, 1, 5))
	mock.ExpectCommit()

	var n int
	err := s.Snapshot(context.Background(), func(tx booking.Tx) error {
		defs, err := tx.States(context.Background())
		n = len(defs)
		if err == nil {
			assert.True(t, defs[1].ReleasesAvailability)
			assert.True(t, defs[0].IsDefault)
		}
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
