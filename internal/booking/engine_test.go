package booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/menfistoo/purobeach/internal/model"
)

var testNow = time.Date(2025, 6, 20, 9, 30, 0, 0, time.UTC)

func day(d int) time.Time { return time.Date(2025, 7, d, 0, 0, 0, 0, time.UTC) }

func days(ds ...int) []time.Time {
	out := make([]time.Time, len(ds))
	for i, d := range ds {
		out[i] = day(d)
	}
	return out
}

func testStates() []model.StateDefinition {
	return []model.StateDefinition{
		{ID: 1, Name: "Confirmada", Color: "#2E8B57", Priority: 3, IsDefault: true, Active: true, DisplayOrder: 1},
		{ID: 2, Name: "Sentada", Color: "#1E90FF", Priority: 6, Active: true, DisplayOrder: 2},
		{ID: 3, Name: "Pagada", Color: "#FFD700", Priority: 5, IsSettledOverride: true, Active: true, DisplayOrder: 3},
		{ID: 4, Name: "Finalizada", Color: "#808080", Priority: 4, Active: true, DisplayOrder: 4},
		{ID: 5, Name: "Cancelada", Color: "#DC143C", Priority: 10, ReleasesAvailability: true, Active: true, DisplayOrder: 5},
		{ID: 6, Name: "No Show", Color: "#8B0000", Priority: 9, ReleasesAvailability: true, Active: true, DisplayOrder: 6},
		{ID: 7, Name: "Obsoleta", Priority: 1, Active: false, DisplayOrder: 7},
	}
}

// newTestEngine builds an engine over a seeded in-memory store:
//
//	H1..H5  zone A, one row, capacity 2 each, H5 has shade
//	S1      zone A second row, capacity 4, suite only
//	X1      inactive
//
// Customer 7 is external, customer 8 is a suite guest who likes shade.
func newTestEngine(t *testing.T) (*Engine, *memStore, *capturePublisher) {
	t.Helper()
	s := newMemStore()
	s.data.states = testStates()
	s.data.prefs["sombra"] = "shade"
	s.data.customers[7] = model.Customer{ID: 7, Name: "Ana Ruiz", Type: model.CustomerExternal}
	s.data.customers[8] = model.Customer{ID: 8, Name: "John Smith", Type: model.CustomerInternal, Suite: true, Preferences: []string{"sombra"}}
	for i, n := range []string{"H1", "H2", "H3", "H4", "H5"} {
		f := model.Furniture{ID: uint64(i + 1), Number: n, Type: "hamaca", Zone: "A", Capacity: 2, X: float64(i * 50), Active: true}
		if n == "H5" {
			f.Features = []string{"shade"}
		}
		s.data.furniture[f.ID] = f
	}
	s.data.furniture[6] = model.Furniture{ID: 6, Number: "S1", Type: "balinesa", Zone: "A", Capacity: 4, Y: 200, SuiteOnly: true, Active: true}
	s.data.furniture[7] = model.Furniture{ID: 7, Number: "X1", Type: "hamaca", Zone: "A", Capacity: 2, Y: 400}
	s.data.nextID = 100

	pub := &capturePublisher{}
	e := New(s, pub, zap.NewNop(), DefaultOptions())
	e.now = func() time.Time { return testNow }
	return e, s, pub
}

func mustCreate(t *testing.T, e *Engine, customer uint64, date time.Time, party int, ids ...uint64) *CreateResult {
	t.Helper()
	res, err := e.CreateReservation(context.Background(), CreateRequest{
		CustomerID:   customer,
		Date:         date,
		PartySize:    party,
		FurnitureIDs: ids,
		Actor:        "staff-1",
	})
	require.NoError(t, err)
	return res
}

func requireKind(t *testing.T, err error, kind Kind) *Error {
	t.Helper()
	require.Error(t, err)
	var be *Error
	require.ErrorAs(t, err, &be)
	require.Equal(t, kind, be.Kind, be.Error())
	return be
}

func reservationCount(s *memStore) int {
	n := 0
	s.view(func(d *memData) { n = len(d.reservations) })
	return n
}
