package model

import "time"

// StateDefinition is one entry of the reservation state configuration.
// The configuration is owned by an admin surface; the engine only reads
// it, once per operation.
//
// Fields:
//  ID                   – primary key identifier.
//  Name                 – unique state name (e.g. Confirmada, Cancelada).
//  Color                – display color (hex).
//  Priority             – higher wins when several states are active.
//  ReleasesAvailability – the state frees assigned furniture.
//  IsDefault            – state attached to every new reservation.
//  IsSettledOverride    – paid/settled state that always wins the display.
//  Active               – inactive states cannot be added.
//  DisplayOrder         – ordering for pickers in the UI.
type StateDefinition struct {
	ID                   uint64 `json:"id"`
	Name                 string `json:"name"`
	Color                string `json:"color"`
	Priority             int    `json:"priority"`
	ReleasesAvailability bool   `json:"releases_availability"`
	IsDefault            bool   `json:"is_default"`
	IsSettledOverride    bool   `json:"is_settled_override"`
	Active               bool   `json:"active"`
	DisplayOrder         int    `json:"display_order"`
}

// History actions.
const (
	ActionAdded   = "added"
	ActionRemoved = "removed"
)

// StateHistoryEntry is an immutable audit record of one state change.
type StateHistoryEntry struct {
	ID            uint64    `json:"id"`
	ReservationID uint64    `json:"reservation_id"`
	State         string    `json:"state"`
	Action        string    `json:"action"`
	Actor         string    `json:"actor"`
	Note          string    `json:"note,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// IncidentNoShow is the only incident kind the engine raises itself.
const IncidentNoShow = "no_show"

// Incident records a customer-facing problem attached to a reservation.
type Incident struct {
	ID            uint64    `json:"id"`
	ReservationID uint64    `json:"reservation_id"`
	CustomerID    uint64    `json:"customer_id"`
	Kind          string    `json:"kind"`
	Actor         string    `json:"actor"`
	Note          string    `json:"note,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}
