package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/menfistoo/purobeach/internal/model"
	"github.com/menfistoo/purobeach/internal/suggestion"
)

// SuggestRequest asks for furniture able to seat a party on dates.
type SuggestRequest struct {
	Dates       []time.Time
	PartySize   int
	Preferences []string // preference codes
	CustomerID  uint64   // optional; merges stored preferences and applies suite rules
	Limit       int
}

// Suggest ranks free furniture clusters for the request.  The result is
// a read-only snapshot: nothing is held and booking a suggestion
// re-validates everything.
func (e *Engine) Suggest(ctx context.Context, req SuggestRequest) (*suggestion.Result, error) {
	days := normalizeDates(req.Dates)
	if len(days) == 0 {
		return nil, invalid("at least one date is required")
	}
	if req.PartySize <= 0 {
		return nil, invalid("party size must be positive")
	}
	limit := req.Limit
	if limit <= 0 {
		limit = e.opts.SuggestionLimit
	}

	var out suggestion.Result
	err := e.store.Snapshot(ctx, func(tx Tx) error {
		p, err := e.palette(ctx, tx)
		if err != nil {
			return err
		}
		var customer *model.Customer
		codes := req.Preferences
		if req.CustomerID != 0 {
			customer, err = loadCustomer(ctx, tx, req.CustomerID)
			if err != nil {
				return err
			}
			codes = append(append([]string{}, req.Preferences...), customer.Preferences...)
		}
		features, err := featureKeys(ctx, tx, codes)
		if err != nil {
			return err
		}
		items, occupied, err := e.occupancy(ctx, tx, p, customer, days)
		if err != nil {
			return err
		}
		keys := make([]string, len(days))
		for i, d := range days {
			keys[i] = model.DateKey(d)
		}
		out = suggestion.Suggest(suggestion.Request{
			Furniture: items,
			Dates:     keys,
			Occupied:  occupied,
			PartySize: req.PartySize,
			Features:  features,
			Limit:     limit,
		}, e.opts.Scoring)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// featureKeys maps preference codes to furniture feature keys.  A code
// with no mapping is used as a feature key as is.
func featureKeys(ctx context.Context, tx Tx, codes []string) ([]string, error) {
	if len(codes) == 0 {
		return nil, nil
	}
	mapping, err := tx.PreferenceFeatures(ctx)
	if err != nil {
		return nil, fmt.Errorf("load preference mapping: %w", err)
	}
	out := make([]string, 0, len(codes))
	seen := map[string]bool{}
	for _, c := range codes {
		key := c
		if f, ok := mapping[c]; ok && f != "" {
			key = f
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, key)
	}
	return out, nil
}

// occupancy returns the furniture the customer may book and, per date,
// the ids held by live reservations.
func (e *Engine) occupancy(ctx context.Context, tx Tx, p Palette, customer *model.Customer, days []time.Time) ([]model.Furniture, map[string]map[uint64]bool, error) {
	all, err := tx.ActiveFurniture(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load furniture: %w", err)
	}
	items := make([]model.Furniture, 0, len(all))
	for _, f := range all {
		if !f.Active {
			continue
		}
		if f.SuiteOnly && (customer == nil || !customer.Suite) {
			continue
		}
		items = append(items, f)
	}
	claims, err := tx.Claims(ctx, nil, days)
	if err != nil {
		return nil, nil, fmt.Errorf("load claims: %w", err)
	}
	occupied := make(map[string]map[uint64]bool, len(days))
	for _, d := range days {
		occupied[model.DateKey(d)] = map[uint64]bool{}
	}
	for _, c := range liveConflicts(claims, p, 0) {
		if occupied[c.Date] != nil {
			occupied[c.Date][c.FurnitureID] = true
		}
	}
	return items, occupied, nil
}

// bestClusterFor returns the furniture ids of the top ranked cluster on
// a single date, or nil when nothing fits.
func (e *Engine) bestClusterFor(ctx context.Context, tx Tx, p Palette, customer *model.Customer, date time.Time, partySize int, codes []string) ([]uint64, error) {
	features, err := featureKeys(ctx, tx, append(append([]string{}, codes...), customer.Preferences...))
	if err != nil {
		return nil, err
	}
	items, occupied, err := e.occupancy(ctx, tx, p, customer, []time.Time{date})
	if err != nil {
		return nil, err
	}
	rows := suggestion.BuildRows(items, e.opts.Scoring.RowTolerance)
	best := suggestion.Rank(rows, occupied[model.DateKey(date)], partySize, features, 1, e.opts.Scoring)
	if len(best) == 0 {
		return nil, nil
	}
	return best[0].FurnitureIDs, nil
}
