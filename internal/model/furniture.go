package model

import "time"

// Furniture is a physical item on the beach that can be assigned to a
// reservation: a lounger, a balinese bed, a cabana.  Items belong to a
// zone and carry a map position used for contiguity scoring.
//
// Fields:
//  ID        – primary key identifier.
//  Number    – human label painted on the item (e.g. H1, B12).
//  Type      – category of the item (hamaca, balinesa, cabana).
//  Zone      – zone name the item is placed in.
//  Capacity  – number of people the item seats.
//  Features  – feature keys (shade, first_line, near_bar…).
//  X, Y      – position on the map in editor units.
//  SuiteOnly – only customers with the suite flag may book it.
//  Active    – soft flag; inactive items are never offered or assigned.
type Furniture struct {
	ID        uint64    `json:"id"`         // furniture.id
	Number    string    `json:"number"`     // furniture.number
	Type      string    `json:"type"`       // furniture.type
	Zone      string    `json:"zone"`       // furniture.zone
	Capacity  int       `json:"capacity"`   // furniture.capacity
	Features  []string  `json:"features"`   // furniture.features (comma separated on disk)
	X         float64   `json:"x"`          // furniture.position_x
	Y         float64   `json:"y"`          // furniture.position_y
	SuiteOnly bool      `json:"suite_only"` // furniture.suite_only
	Active    bool      `json:"active"`     // furniture.active
	CreatedAt time.Time `json:"created_at"` // furniture.created_at
	UpdatedAt time.Time `json:"updated_at"` // furniture.updated_at
}

// HasFeature reports whether the item carries the given feature key.
func (f Furniture) HasFeature(key string) bool {
	for _, k := range f.Features {
		if k == key {
			return true
		}
	}
	return false
}

// Assignment binds one furniture item to one reservation for one date.
type Assignment struct {
	ID            uint64    `json:"id"`
	ReservationID uint64    `json:"reservation_id"`
	FurnitureID   uint64    `json:"furniture_id"`
	Date          time.Time `json:"date"`
}

// Claim is an assignment joined with the state of its owning
// reservation.  The availability checks only ever look at claims.
type Claim struct {
	FurnitureID   uint64
	Date          time.Time
	ReservationID uint64
	Ticket        string
	CurrentState  string
}
