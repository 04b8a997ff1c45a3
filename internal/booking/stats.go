package booking

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/menfistoo/purobeach/internal/model"
)

// computeStats derives the customer counters from their reservations.
func computeStats(rs []model.Reservation, opts Options) model.CustomerStats {
	var st model.CustomerStats
	for i := range rs {
		r := &rs[i]
		if opts.NoShowState != "" && r.HasState(opts.NoShowState) {
			st.NoShows++
		}
		if opts.CancelledState != "" && r.HasState(opts.CancelledState) {
			st.Cancellations++
		}
		visited := false
		for _, v := range opts.VisitStates {
			if r.HasState(v) {
				visited = true
				break
			}
		}
		if !visited {
			continue
		}
		st.Visits++
		if st.LastVisit == nil || r.Date.After(*st.LastVisit) {
			d := r.Date
			st.LastVisit = &d
		}
	}
	return st
}

func (e *Engine) refreshCustomerStats(ctx context.Context, tx Tx, customerID uint64) error {
	rs, err := tx.ReservationsByCustomer(ctx, customerID, nil)
	if err != nil {
		return fmt.Errorf("load customer reservations: %w", err)
	}
	if err := tx.UpdateCustomerStats(ctx, customerID, computeStats(rs, e.opts)); err != nil {
		return fmt.Errorf("update customer stats: %w", err)
	}
	return nil
}

// ReconcileCustomerStats recomputes the statistics of every customer
// holding reservations.  It returns how many customers were refreshed;
// one customer failing does not stop the others.
func (e *Engine) ReconcileCustomerStats(ctx context.Context) (int, error) {
	var ids []uint64
	err := e.store.Snapshot(ctx, func(tx Tx) error {
		var err error
		ids, err = tx.CustomerIDsWithReservations(ctx)
		return err
	})
	if err != nil {
		return 0, err
	}
	done := 0
	var firstErr error
	for _, id := range ids {
		if ctx.Err() != nil {
			return done, ctx.Err()
		}
		err := e.store.Serialized(ctx, nil, func(tx Tx) error {
			return e.refreshCustomerStats(ctx, tx, id)
		})
		if err != nil {
			e.log.Warn("customer stats reconcile failed", zap.Uint64("customer_id", id), zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		done++
	}
	return done, firstErr
}
