package model

import "time"

// Customer types.  Hotel guests are imported from the hotel roster,
// everybody else is an external walk-in customer.
const (
	CustomerInternal = "interno"
	CustomerExternal = "externo"
)

// Customer is the read model the engine needs from the customer
// directory.  Suite drives the eligibility restriction on suite-only
// furniture; Preferences holds the preference codes remembered from
// earlier visits.
type Customer struct {
	ID          uint64   `json:"id"`
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Suite       bool     `json:"suite"`
	Preferences []string `json:"preferences"`
	Stats       CustomerStats
}

// CustomerStats are derived counters recomputed from the customer's
// reservations every time one of their reservation states changes.
type CustomerStats struct {
	Visits        int        `json:"visits"`
	NoShows       int        `json:"no_shows"`
	Cancellations int        `json:"cancellations"`
	LastVisit     *time.Time `json:"last_visit,omitempty"`
}
