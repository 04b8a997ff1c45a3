package repository

import (
	"context"
	"database/sql"

	"github.com/menfistoo/purobeach/internal/model"
)

// FurnitureRepo reads the furniture catalog.  The catalog is maintained
// by the map editor; the engine never writes it.
type FurnitureRepo struct {
	db *sql.DB
}

// NewFurnitureRepo returns a new FurnitureRepo bound to the given database.
func NewFurnitureRepo(db *sql.DB) *FurnitureRepo { return &FurnitureRepo{db: db} }

const furnitureColumns = `id, number, type, zone, capacity, features, position_x, position_y, suite_only, active, created_at, updated_at`

func scanFurniture(s scanner) (model.Furniture, error) {
	var f model.Furniture
	var features string
	err := s.Scan(&f.ID, &f.Number, &f.Type, &f.Zone, &f.Capacity, &features,
		&f.X, &f.Y, &f.SuiteOnly, &f.Active, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return f, err
	}
	f.Features = model.SplitList(features)
	return f, nil
}

func (r *FurnitureRepo) list(ctx context.Context, q queryer, query string, args ...any) ([]model.Furniture, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Furniture
	for rows.Next() {
		f, err := scanFurniture(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// ByIDsTx loads the given items regardless of their active flag.  Ids
// without a row are simply absent from the result.
func (r *FurnitureRepo) ByIDsTx(ctx context.Context, tx *sql.Tx, ids []uint64) ([]model.Furniture, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	q := `SELECT ` + furnitureColumns + ` FROM furniture WHERE id IN (` + placeholders(len(ids)) + `) ORDER BY id`
	return r.list(ctx, tx, q, idArgs(ids)...)
}

// ActiveTx loads every active item ordered by zone and map position.
func (r *FurnitureRepo) ActiveTx(ctx context.Context, tx *sql.Tx) ([]model.Furniture, error) {
	return r.list(ctx, tx, `SELECT `+furnitureColumns+` FROM furniture WHERE active = 1 ORDER BY zone, position_y, position_x, id`)
}

// ListActive is the non-transactional catalog read behind GET /v1/furniture.
func (r *FurnitureRepo) ListActive(ctx context.Context) ([]model.Furniture, error) {
	return r.list(ctx, r.db, `SELECT `+furnitureColumns+` FROM furniture WHERE active = 1 ORDER BY zone, position_y, position_x, id`)
}
