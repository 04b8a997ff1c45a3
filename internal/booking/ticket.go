package booking

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/menfistoo/purobeach/internal/model"
)

// MaxDailyReservations is the ceiling imposed by the two-digit ticket
// sequence.
const MaxDailyReservations = 99

// TicketPrefix returns the YYMMDD prefix shared by every top-level
// ticket of date.
func TicketPrefix(date time.Time) string { return date.Format("060102") }

// nextSequence returns max(sequence)+1 over the tickets carrying prefix.
// Child tickets and foreign formats are ignored.
func nextSequence(prefix string, tickets []string) (int, error) {
	max := 0
	for _, t := range tickets {
		if len(t) != len(prefix)+2 || !strings.HasPrefix(t, prefix) {
			continue
		}
		n, err := strconv.Atoi(t[len(prefix):])
		if err != nil {
			continue
		}
		if n > max {
			max = n
		}
	}
	next := max + 1
	if next > MaxDailyReservations {
		return 0, newError(KindCapacityExceeded, "daily reservation limit reached", map[string]any{
			"prefix": prefix,
			"limit":  MaxDailyReservations,
		})
	}
	return next, nil
}

// nextTicket computes the ticket for a new row.  Children extend the
// parent ticket with -N; offset skips numbers already lost to a
// collision on an earlier attempt.
func (e *Engine) nextTicket(ctx context.Context, tx Tx, date time.Time, parent *model.Reservation, offset int) (string, error) {
	if parent != nil {
		children, err := tx.Children(ctx, parent.ID)
		if err != nil {
			return "", fmt.Errorf("count children: %w", err)
		}
		return fmt.Sprintf("%s-%d", parent.Ticket, len(children)+1+offset), nil
	}
	prefix := TicketPrefix(date)
	tickets, err := tx.TicketsForDate(ctx, prefix)
	if err != nil {
		return "", fmt.Errorf("scan tickets: %w", err)
	}
	seq, err := nextSequence(prefix, tickets)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%02d", prefix, seq), nil
}

// insertWithTicket assigns a ticket to r and inserts it, re-scanning on
// a uniqueness violation up to the configured number of attempts.
func (e *Engine) insertWithTicket(ctx context.Context, tx Tx, r *model.Reservation, parent *model.Reservation) error {
	for attempt := 0; attempt < e.opts.TicketRetries; attempt++ {
		ticket, err := e.nextTicket(ctx, tx, r.Date, parent, attempt)
		if err != nil {
			return err
		}
		r.Ticket = ticket
		err = tx.InsertReservation(ctx, r)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrDuplicateTicket) {
			return fmt.Errorf("insert reservation: %w", err)
		}
		e.log.Warn("ticket collision, retrying",
			zap.String("ticket", ticket),
			zap.Int("attempt", attempt+1),
		)
	}
	return newError(KindSequenceGenerationFailed, "could not allocate a unique ticket", map[string]any{
		"date":     model.DateKey(r.Date),
		"attempts": e.opts.TicketRetries,
	})
}
