package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/menfistoo/purobeach/internal/model"
)

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// placeholders returns "?, ?, ?" for n arguments.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func idArgs(ids []uint64) []any {
	out := make([]any, len(ids))
	for i, id := range ids {
		out[i] = id
	}
	return out
}

// dateArgs formats dates as DATE literals so the driver never shifts
// them through a time zone.
func dateArgs(dates []time.Time) []any {
	out := make([]any, len(dates))
	for i, d := range dates {
		out[i] = model.DateKey(d)
	}
	return out
}
