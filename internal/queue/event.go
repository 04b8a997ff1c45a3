// Package queue defines the reservation event envelope exchanged over
// the message broker and the consumer that writes it to the audit log.
package queue

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/menfistoo/purobeach/internal/booking"
)

// ReservationEvent wraps an engine event with a unique id so consumers
// can recognise redelivered messages.  It carries enough data for
// downstream logging and notifications without querying the database.
type ReservationEvent struct {
	ID string `json:"id"`
	booking.Event
}

// NewReservationEvent assigns a fresh id to ev.
func NewReservationEvent(ev booking.Event) ReservationEvent {
	return ReservationEvent{ID: uuid.NewString(), Event: ev}
}

// AuditLine renders the event as one line of the audit log.
func (e ReservationEvent) AuditLine() string {
	furniture := make([]string, len(e.FurnitureIDs))
	for i, id := range e.FurnitureIDs {
		furniture[i] = fmt.Sprint(id)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s | event_id=%s | reservation_id=%d | ticket=%s | customer_id=%d | date=%s",
		e.OccurredAt.UTC().Format("2006-01-02T15:04:05Z"), e.Type, e.ID, e.ReservationID, e.Ticket, e.CustomerID, e.Date)
	if e.State != "" {
		fmt.Fprintf(&b, " | state=%q", e.State)
	}
	if e.CurrentState != "" {
		fmt.Fprintf(&b, " | current_state=%q", e.CurrentState)
	}
	if len(furniture) > 0 {
		fmt.Fprintf(&b, " | furniture=[%s]", strings.Join(furniture, ","))
	}
	fmt.Fprintf(&b, " | actor=%s\n", e.Actor)
	return b.String()
}
