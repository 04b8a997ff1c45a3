package repository

import (
	"context"
	"database/sql"

	"github.com/menfistoo/purobeach/internal/model"
)

// StateRepo reads the reservation state configuration and the
// preference-to-feature mapping.  Both are edited from the admin panel
// and read fresh by every engine call.
type StateRepo struct {
	db *sql.DB
}

// NewStateRepo returns a new StateRepo bound to the given database.
func NewStateRepo(db *sql.DB) *StateRepo { return &StateRepo{db: db} }

// ListTx returns every state definition, active or not, in display order.
func (r *StateRepo) ListTx(ctx context.Context, tx *sql.Tx) ([]model.StateDefinition, error) {
	rows, err := tx.QueryContext(ctx, `SELECT id, name, color, priority, releases_availability, is_default,
	                                          is_settled_override, active, display_order
	                                   FROM reservation_states ORDER BY display_order, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.StateDefinition
	for rows.Next() {
		var d model.StateDefinition
		if err := rows.Scan(&d.ID, &d.Name, &d.Color, &d.Priority, &d.ReleasesAvailability, &d.IsDefault,
			&d.IsSettledOverride, &d.Active, &d.DisplayOrder); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// PreferenceFeaturesTx maps preference codes to furniture feature keys.
func (r *StateRepo) PreferenceFeaturesTx(ctx context.Context, tx *sql.Tx) (map[string]string, error) {
	rows, err := tx.QueryContext(ctx, `SELECT code, feature_key FROM preference_features`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[string]string{}
	for rows.Next() {
		var code, key string
		if err := rows.Scan(&code, &key); err != nil {
			return nil, err
		}
		out[code] = key
	}
	return out, rows.Err()
}
