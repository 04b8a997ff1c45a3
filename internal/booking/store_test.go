package booking

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/menfistoo/purobeach/internal/model"
)

// memData is the whole fake database.  Every transaction works on a
// clone; Serialized copies the clone back on success.
type memData struct {
	states       []model.StateDefinition
	prefs        map[string]string
	customers    map[uint64]model.Customer
	furniture    map[uint64]model.Furniture
	reservations map[uint64]model.Reservation
	assignments  []model.Assignment
	history      []model.StateHistoryEntry
	incidents    []model.Incident
	nextID       uint64
}

func (d *memData) clone() *memData {
	c := &memData{
		states:       append([]model.StateDefinition(nil), d.states...),
		prefs:        map[string]string{},
		customers:    map[uint64]model.Customer{},
		furniture:    map[uint64]model.Furniture{},
		reservations: map[uint64]model.Reservation{},
		assignments:  append([]model.Assignment(nil), d.assignments...),
		history:      append([]model.StateHistoryEntry(nil), d.history...),
		incidents:    append([]model.Incident(nil), d.incidents...),
		nextID:       d.nextID,
	}
	for k, v := range d.prefs {
		c.prefs[k] = v
	}
	for k, v := range d.customers {
		c.customers[k] = v
	}
	for k, v := range d.furniture {
		c.furniture[k] = v
	}
	for k, v := range d.reservations {
		v.States = append([]string{}, v.States...)
		c.reservations[k] = v
	}
	return c
}

// memStore serializes every write transaction on one mutex, which is a
// stricter lock than the per-date rows of the MySQL store.
type memStore struct {
	mu   sync.Mutex
	data *memData

	// insertHook, when set, may reject an insert before it happens.
	insertHook func(r *model.Reservation) error
	// serialized counts write transactions.
	serialized int
}

func newMemStore() *memStore {
	return &memStore{data: &memData{
		prefs:        map[string]string{},
		customers:    map[uint64]model.Customer{},
		furniture:    map[uint64]model.Furniture{},
		reservations: map[uint64]model.Reservation{},
	}}
}

func (s *memStore) Serialized(ctx context.Context, dates []time.Time, fn func(Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.serialized++
	tx := &memTx{d: s.data.clone(), hook: s.insertHook}
	if err := fn(tx); err != nil {
		return err
	}
	s.data = tx.d
	return nil
}

func (s *memStore) Snapshot(ctx context.Context, fn func(Tx) error) error {
	s.mu.Lock()
	d := s.data.clone()
	s.mu.Unlock()
	return fn(&memTx{d: d})
}

// view runs fn against the committed data.
func (s *memStore) view(fn func(d *memData)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.data)
}

type memTx struct {
	d    *memData
	hook func(r *model.Reservation) error
}

func (t *memTx) id() uint64 {
	t.d.nextID++
	return t.d.nextID
}

func (t *memTx) States(ctx context.Context) ([]model.StateDefinition, error) {
	return append([]model.StateDefinition(nil), t.d.states...), nil
}

func (t *memTx) PreferenceFeatures(ctx context.Context) (map[string]string, error) {
	return t.d.prefs, nil
}

func (t *memTx) Customer(ctx context.Context, id uint64) (*model.Customer, error) {
	c, ok := t.d.customers[id]
	if !ok {
		return nil, ErrRecordNotFound
	}
	return &c, nil
}

func (t *memTx) CustomerIDsWithReservations(ctx context.Context) ([]uint64, error) {
	seen := map[uint64]bool{}
	var out []uint64
	for _, r := range t.d.reservations {
		if !seen[r.CustomerID] {
			seen[r.CustomerID] = true
			out = append(out, r.CustomerID)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

func (t *memTx) UpdateCustomerStats(ctx context.Context, customerID uint64, stats model.CustomerStats) error {
	c, ok := t.d.customers[customerID]
	if !ok {
		return ErrRecordNotFound
	}
	c.Stats = stats
	t.d.customers[customerID] = c
	return nil
}

func (t *memTx) FurnitureByIDs(ctx context.Context, ids []uint64) ([]model.Furniture, error) {
	var out []model.Furniture
	for _, id := range ids {
		if f, ok := t.d.furniture[id]; ok {
			out = append(out, f)
		}
	}
	return out, nil
}

func (t *memTx) ActiveFurniture(ctx context.Context) ([]model.Furniture, error) {
	var out []model.Furniture
	for _, f := range t.d.furniture {
		if f.Active {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (t *memTx) Claims(ctx context.Context, furnitureIDs []uint64, dates []time.Time) ([]model.Claim, error) {
	wantIDs := map[uint64]bool{}
	for _, id := range furnitureIDs {
		wantIDs[id] = true
	}
	wantDates := map[string]bool{}
	for _, d := range dates {
		wantDates[model.DateKey(d)] = true
	}
	var out []model.Claim
	for _, a := range t.d.assignments {
		if furnitureIDs != nil && !wantIDs[a.FurnitureID] {
			continue
		}
		if !wantDates[model.DateKey(a.Date)] {
			continue
		}
		r := t.d.reservations[a.ReservationID]
		out = append(out, model.Claim{
			FurnitureID:   a.FurnitureID,
			Date:          a.Date,
			ReservationID: r.ID,
			Ticket:        r.Ticket,
			CurrentState:  r.CurrentState,
		})
	}
	return out, nil
}

func (t *memTx) Reservation(ctx context.Context, id uint64) (*model.Reservation, error) {
	r, ok := t.d.reservations[id]
	if !ok {
		return nil, ErrRecordNotFound
	}
	return &r, nil
}

func (t *memTx) Children(ctx context.Context, parentID uint64) ([]model.Reservation, error) {
	var out []model.Reservation
	for _, r := range t.d.reservations {
		if r.ParentID != nil && *r.ParentID == parentID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (t *memTx) ReservationsByCustomer(ctx context.Context, customerID uint64, dates []time.Time) ([]model.Reservation, error) {
	want := map[string]bool{}
	for _, d := range dates {
		want[model.DateKey(d)] = true
	}
	var out []model.Reservation
	for _, r := range t.d.reservations {
		if r.CustomerID != customerID {
			continue
		}
		if dates != nil && !want[model.DateKey(r.Date)] {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (t *memTx) TicketsForDate(ctx context.Context, prefix string) ([]string, error) {
	var out []string
	for _, r := range t.d.reservations {
		if strings.HasPrefix(r.Ticket, prefix) {
			out = append(out, r.Ticket)
		}
	}
	return out, nil
}

func (t *memTx) InsertReservation(ctx context.Context, r *model.Reservation) error {
	if t.hook != nil {
		if err := t.hook(r); err != nil {
			return err
		}
	}
	for _, other := range t.d.reservations {
		if other.Ticket == r.Ticket {
			return ErrDuplicateTicket
		}
	}
	r.ID = t.id()
	cp := *r
	cp.States = append([]string{}, r.States...)
	t.d.reservations[r.ID] = cp
	return nil
}

func (t *memTx) UpdateReservation(ctx context.Context, r *model.Reservation) error {
	if _, ok := t.d.reservations[r.ID]; !ok {
		return ErrRecordNotFound
	}
	cp := *r
	cp.States = append([]string{}, r.States...)
	t.d.reservations[r.ID] = cp
	return nil
}

func (t *memTx) UpdateStates(ctx context.Context, id uint64, states []string, current string) error {
	r, ok := t.d.reservations[id]
	if !ok {
		return ErrRecordNotFound
	}
	r.States = append([]string{}, states...)
	r.CurrentState = current
	t.d.reservations[id] = r
	return nil
}

func (t *memTx) Assignments(ctx context.Context, reservationID uint64) ([]model.Assignment, error) {
	var out []model.Assignment
	for _, a := range t.d.assignments {
		if a.ReservationID == reservationID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (t *memTx) InsertAssignments(ctx context.Context, as []model.Assignment) error {
	for _, a := range as {
		a.ID = t.id()
		t.d.assignments = append(t.d.assignments, a)
	}
	return nil
}

func (t *memTx) DeleteAssignments(ctx context.Context, reservationID uint64) error {
	kept := t.d.assignments[:0:0]
	for _, a := range t.d.assignments {
		if a.ReservationID != reservationID {
			kept = append(kept, a)
		}
	}
	t.d.assignments = kept
	return nil
}

func (t *memTx) AppendHistory(ctx context.Context, e *model.StateHistoryEntry) error {
	e.ID = t.id()
	t.d.history = append(t.d.history, *e)
	return nil
}

func (t *memTx) History(ctx context.Context, reservationID uint64) ([]model.StateHistoryEntry, error) {
	var out []model.StateHistoryEntry
	for _, h := range t.d.history {
		if h.ReservationID == reservationID {
			out = append(out, h)
		}
	}
	return out, nil
}

func (t *memTx) InsertIncident(ctx context.Context, in *model.Incident) error {
	in.ID = t.id()
	t.d.incidents = append(t.d.incidents, *in)
	return nil
}

// capturePublisher records published events.
type capturePublisher struct {
	mu     sync.Mutex
	events []Event
}

func (p *capturePublisher) Publish(ctx context.Context, ev Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *capturePublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, ev := range p.events {
		out[i] = ev.Type
	}
	return out
}
