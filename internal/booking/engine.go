// Package booking implements the reservation availability and
// allocation engine: ticket generation, the state ledger, availability
// and duplicate checks, the allocation transaction, multi-day linking
// and the orchestration of furniture suggestions.
//
// The engine owns no locks.  Every read-then-write runs inside a
// Store.Serialized transaction so correctness holds across processes.
package booking

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/menfistoo/purobeach/internal/model"
	"github.com/menfistoo/purobeach/internal/suggestion"
)

// Options tunes the engine.  State names refer to entries of the state
// configuration; they are matched by name at call time.
type Options struct {
	NoShowState     string             // adding it raises a no-show incident
	CancelledState  string             // applied by CancelGroup
	VisitStates     []string           // states that count as a visit in customer stats
	TicketRetries   int                // insert attempts on ticket collisions
	SuggestionLimit int                // default number of clusters returned
	Scoring         suggestion.Weights // suggestion scoring parameters
}

// DefaultOptions returns the stock configuration.
func DefaultOptions() Options {
	return Options{
		NoShowState:     "No Show",
		CancelledState:  "Cancelada",
		VisitStates:     []string{"Sentada", "Finalizada"},
		TicketRetries:   5,
		SuggestionLimit: 5,
		Scoring:         suggestion.DefaultWeights(),
	}
}

// Engine is the entry point used by the HTTP layer and the scheduler.
type Engine struct {
	store Store
	pub   Publisher
	log   *zap.Logger
	opts  Options
	now   func() time.Time
}

// New builds an Engine.  pub may be nil when no broker is configured.
func New(store Store, pub Publisher, log *zap.Logger, opts Options) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.TicketRetries <= 0 {
		opts.TicketRetries = 5
	}
	if opts.SuggestionLimit <= 0 {
		opts.SuggestionLimit = 5
	}
	return &Engine{
		store: store,
		pub:   pub,
		log:   log,
		opts:  opts,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// palette loads a fresh snapshot of the state configuration.
func (e *Engine) palette(ctx context.Context, tx Tx) (Palette, error) {
	defs, err := tx.States(ctx)
	if err != nil {
		return Palette{}, err
	}
	return NewPalette(defs), nil
}

// States returns the current state configuration in display order.
func (e *Engine) States(ctx context.Context) ([]model.StateDefinition, error) {
	var out []model.StateDefinition
	err := e.store.Snapshot(ctx, func(tx Tx) error {
		p, err := e.palette(ctx, tx)
		if err != nil {
			return err
		}
		out = p.Definitions()
		return nil
	})
	return out, err
}

// publish delivers ev after commit.  Failures are logged only.
func (e *Engine) publish(ctx context.Context, ev Event) {
	if e.pub == nil {
		return
	}
	ev.OccurredAt = e.now()
	if err := e.pub.Publish(ctx, ev); err != nil {
		e.log.Warn("event publish failed",
			zap.String("type", ev.Type),
			zap.Uint64("reservation_id", ev.ReservationID),
			zap.Error(err),
		)
	}
}

// normalizeDates truncates to calendar days and drops repeats while
// keeping the caller's order.
func normalizeDates(dates []time.Time) []time.Time {
	out := make([]time.Time, 0, len(dates))
	seen := map[string]bool{}
	for _, d := range dates {
		d = model.DateOnly(d)
		k := model.DateKey(d)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, d)
	}
	return out
}

func uniqueIDs(ids []uint64) []uint64 {
	out := make([]uint64, 0, len(ids))
	seen := map[uint64]bool{}
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
