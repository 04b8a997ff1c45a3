package model

import (
	"strings"
	"time"
)

// Time slots a reservation may cover.
const (
	SlotAllDay    = "all_day"
	SlotMorning   = "morning"
	SlotAfternoon = "afternoon"
)

// ValidSlot reports whether s is one of the known time slots.
func ValidSlot(s string) bool {
	return s == SlotAllDay || s == SlotMorning || s == SlotAfternoon
}

// Reservation is one customer's claim on furniture for exactly one
// calendar date.  Multi-day stays are modelled as a parent row plus one
// child row per extra date, linked through ParentID.
//
// Fields:
//  ID           – primary key identifier.
//  Ticket       – YYMMDDRR for top-level rows, <parent>-N for children.
//  CustomerID   – customer holding the reservation.
//  Date         – reserved calendar date (UTC midnight).
//  PartySize    – number of people.
//  TimeSlot     – all_day, morning or afternoon.
//  States       – active state names in the order they were added.
//  CurrentState – display state derived from States by priority.
//  ParentID     – parent reservation for children (nil for top-level rows).
//  Preferences  – preference codes requested for this booking.
//  Notes        – free-form observations.
//  CreatedBy    – actor that created the row.
type Reservation struct {
	ID           uint64    `json:"id"`            // reservations.id
	Ticket       string    `json:"ticket"`        // reservations.ticket
	CustomerID   uint64    `json:"customer_id"`   // reservations.customer_id
	Date         time.Time `json:"date"`          // reservations.reservation_date
	PartySize    int       `json:"party_size"`    // reservations.party_size
	TimeSlot     string    `json:"time_slot"`     // reservations.time_slot
	States       []string  `json:"states"`        // reservations.states (comma separated on disk)
	CurrentState string    `json:"current_state"` // reservations.current_state
	ParentID     *uint64   `json:"parent_id"`     // reservations.parent_id (nullable)
	Preferences  []string  `json:"preferences"`   // reservations.preferences (comma separated on disk)
	Notes        string    `json:"notes"`         // reservations.notes
	CreatedBy    string    `json:"created_by"`    // reservations.created_by
	CreatedAt    time.Time `json:"created_at"`    // reservations.created_at
	UpdatedAt    time.Time `json:"updated_at"`    // reservations.updated_at
}

// IsChild reports whether the reservation belongs to a multi-day group
// as a non-first day.
func (r *Reservation) IsChild() bool { return r.ParentID != nil }

// HasState reports whether name is among the active states.
func (r *Reservation) HasState(name string) bool {
	for _, s := range r.States {
		if s == name {
			return true
		}
	}
	return false
}

// DateOnly truncates t to midnight UTC of its calendar day.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DateKey formats a date as YYYY-MM-DD.
func DateKey(t time.Time) string { return t.Format("2006-01-02") }

// ParseDate parses a YYYY-MM-DD string into a UTC date.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", strings.TrimSpace(s), time.UTC)
}

// SplitList splits a comma separated column into trimmed, non-empty,
// de-duplicated values keeping their first-seen order.
func SplitList(s string) []string {
	out := []string{}
	seen := map[string]bool{}
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}

// JoinList is the inverse of SplitList.
func JoinList(vals []string) string { return strings.Join(vals, ",") }
