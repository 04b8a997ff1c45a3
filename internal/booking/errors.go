package booking

import (
	"errors"
	"fmt"
)

// Kind classifies engine failures.  Callers translate kinds into
// user-facing messages; the engine only guarantees complete details.
type Kind string

const (
	KindFurnitureUnavailable     Kind = "FurnitureUnavailable"
	KindCapacityExceeded         Kind = "CapacityExceeded"
	KindDuplicateReservation     Kind = "DuplicateReservation"
	KindRestrictionViolation     Kind = "RestrictionViolation"
	KindSequenceGenerationFailed Kind = "SequenceGenerationFailed"
	KindNotFound                 Kind = "NotFound"
	KindInvalidStateTransition   Kind = "InvalidStateTransition"
	KindValidation               Kind = "Validation"
)

// Error is the structured failure returned by every engine operation.
// Details carries the offending ids so the caller never needs to query
// again to build a message.
type Error struct {
	Kind    Kind           `json:"kind"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
	Err     error          `json:"-"`
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, msg string, details map[string]any) *Error {
	return &Error{Kind: kind, Message: msg, Details: details}
}

// KindOf returns the engine kind carried by err, or "" when err is not
// an engine error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool { return KindOf(err) == kind }

func notFound(resource string, id any) *Error {
	return newError(KindNotFound, resource+" not found", map[string]any{
		"resource": resource,
		"id":       id,
	})
}

func invalid(msg string) *Error { return newError(KindValidation, msg, nil) }

// NewValidationError builds a Validation error for callers outside the
// engine that reject input before reaching it.
func NewValidationError(msg string) *Error { return invalid(msg) }

// Conflict describes one (furniture, date) pair already held by a live
// reservation.
type Conflict struct {
	FurnitureID     uint64 `json:"furniture_id"`
	FurnitureNumber string `json:"furniture_number,omitempty"`
	Date            string `json:"date"`
	ReservationID   uint64 `json:"reservation_id"`
	Ticket          string `json:"ticket,omitempty"`
}

func unavailable(conflicts []Conflict) *Error {
	ids := make([]uint64, 0, len(conflicts))
	seen := map[uint64]bool{}
	for _, c := range conflicts {
		if !seen[c.FurnitureID] {
			seen[c.FurnitureID] = true
			ids = append(ids, c.FurnitureID)
		}
	}
	return newError(KindFurnitureUnavailable, "furniture already reserved", map[string]any{
		"furniture_ids": ids,
		"conflicts":     conflicts,
	})
}
