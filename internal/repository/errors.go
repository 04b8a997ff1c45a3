// Package repository holds the MySQL data access for the reservation
// engine.  Repositories expose XxxTx methods that run inside a caller
// supplied *sql.Tx; Store wires them into booking.Store.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"

	"github.com/menfistoo/purobeach/internal/booking"
)

// ErrNotFound is returned when a lookup by id yields no row.
var ErrNotFound = booking.ErrRecordNotFound

// ErrDuplicateTicket is returned when inserting a reservation whose
// ticket already exists.
var ErrDuplicateTicket = booking.ErrDuplicateTicket

// MySQL server error numbers the repositories react to.
const (
	errDupEntry     = 1062
	errLockDeadlock = 1213
	errLockTimeout  = 1205
)

func mysqlErrNumber(err error) uint16 {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number
	}
	return 0
}

func isDuplicateKey(err error) bool { return mysqlErrNumber(err) == errDupEntry }

// isRetryable reports lock conflicts that are safe to retry from the
// start of the transaction.
func isRetryable(err error) bool {
	n := mysqlErrNumber(err)
	return n == errLockDeadlock || n == errLockTimeout
}
