package booking

import (
	"context"
	"errors"
	"time"

	"github.com/menfistoo/purobeach/internal/model"
)

// ErrRecordNotFound is returned by Tx lookups that yield no row.
var ErrRecordNotFound = errors.New("record not found")

// ErrDuplicateTicket is returned by InsertReservation when the ticket
// collides with an existing row.
var ErrDuplicateTicket = errors.New("duplicate ticket")

// Store opens transactions against the backing database.
//
// Serialized must hold an exclusive lock on every date in dates for the
// whole life of fn so that an availability read and the assignment
// write for the same furniture and date can never interleave with
// another process.  fn's error rolls the transaction back.
type Store interface {
	Serialized(ctx context.Context, dates []time.Time, fn func(Tx) error) error
	Snapshot(ctx context.Context, fn func(Tx) error) error
}

// Tx is the set of queries and writes the engine runs inside one
// transaction.
type Tx interface {
	States(ctx context.Context) ([]model.StateDefinition, error)
	PreferenceFeatures(ctx context.Context) (map[string]string, error)

	Customer(ctx context.Context, id uint64) (*model.Customer, error)
	CustomerIDsWithReservations(ctx context.Context) ([]uint64, error)
	UpdateCustomerStats(ctx context.Context, customerID uint64, stats model.CustomerStats) error

	FurnitureByIDs(ctx context.Context, ids []uint64) ([]model.Furniture, error)
	ActiveFurniture(ctx context.Context) ([]model.Furniture, error)

	// Claims returns every assignment on the given dates together with
	// the owning reservation's current state.  A nil furnitureIDs slice
	// means all furniture.
	Claims(ctx context.Context, furnitureIDs []uint64, dates []time.Time) ([]model.Claim, error)

	Reservation(ctx context.Context, id uint64) (*model.Reservation, error)
	Children(ctx context.Context, parentID uint64) ([]model.Reservation, error)
	ReservationsByCustomer(ctx context.Context, customerID uint64, dates []time.Time) ([]model.Reservation, error)
	TicketsForDate(ctx context.Context, prefix string) ([]string, error)
	InsertReservation(ctx context.Context, r *model.Reservation) error
	UpdateReservation(ctx context.Context, r *model.Reservation) error
	UpdateStates(ctx context.Context, id uint64, states []string, current string) error

	Assignments(ctx context.Context, reservationID uint64) ([]model.Assignment, error)
	InsertAssignments(ctx context.Context, as []model.Assignment) error
	DeleteAssignments(ctx context.Context, reservationID uint64) error

	AppendHistory(ctx context.Context, e *model.StateHistoryEntry) error
	History(ctx context.Context, reservationID uint64) ([]model.StateHistoryEntry, error)
	InsertIncident(ctx context.Context, in *model.Incident) error
}

// Event is a domain notification emitted after a successful commit.
type Event struct {
	Type          string    `json:"type"`
	ReservationID uint64    `json:"reservation_id"`
	Ticket        string    `json:"ticket"`
	CustomerID    uint64    `json:"customer_id"`
	Date          string    `json:"date"`
	State         string    `json:"state,omitempty"`
	CurrentState  string    `json:"current_state,omitempty"`
	FurnitureIDs  []uint64  `json:"furniture_ids,omitempty"`
	Actor         string    `json:"actor"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// Event types.
const (
	EventReservationCreated = "reservation.created"
	EventReservationUpdated = "reservation.updated"
	EventStateChanged       = "reservation.state_changed"
)

// Publisher delivers events to downstream consumers.  Failures never
// affect the committed reservation.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}
