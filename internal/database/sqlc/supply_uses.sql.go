package sqldb

import (
	"context"
	"database/sql"
)

const insertSupplyUse = `INSERT INTO supply_uses (name, is_default) VALUES (?, ?)`

type InsertSupplyUseParams struct {
	Name      string
	IsDefault int64
}

func (q *Queries) InsertSupplyUse(ctx context.Context, arg InsertSupplyUseParams) (sql.Result, error) {
	return q.db.ExecContext(ctx, insertSupplyUse, arg.Name, arg.IsDefault)
}

// Existing rows win on id conflict so seeded defaults survive a restore.
const restoreSupplyUse = `INSERT INTO supply_uses (id, name, is_default) VALUES (?, ?, ?)
ON CONFLICT(id) DO NOTHING`

type RestoreSupplyUseParams struct {
	ID        int64
	Name      string
	IsDefault int64
}

func (q *Queries) RestoreSupplyUse(ctx context.Context, arg RestoreSupplyUseParams) error {
	_, err := q.db.ExecContext(ctx, restoreSupplyUse, arg.ID, arg.Name, arg.IsDefault)
	return err
}

const findSupplyUseByID = `SELECT id, name, is_default FROM supply_uses WHERE id = ?`

func (q *Queries) FindSupplyUseByID(ctx context.Context, id int64) (SupplyUse, error) {
	row := q.db.QueryRowContext(ctx, findSupplyUseByID, id)
	var i SupplyUse
	err := row.Scan(&i.ID, &i.Name, &i.IsDefault)
	return i, err
}

const listSupplyUses = `SELECT id, name, is_default FROM supply_uses ORDER BY id`

func (q *Queries) ListSupplyUses(ctx context.Context) ([]SupplyUse, error) {
	return q.querySupplyUses(ctx, listSupplyUses)
}

const listSupplyUsesBySupply = `SELECT u.id, u.name, u.is_default
FROM supply_uses u
JOIN supplies_supply_uses su ON su.supply_use_id = u.id
WHERE su.supply_barcode = ?
ORDER BY u.id`

func (q *Queries) ListSupplyUsesBySupply(ctx context.Context, supplyBarcode string) ([]SupplyUse, error) {
	return q.querySupplyUses(ctx, listSupplyUsesBySupply, supplyBarcode)
}

func (q *Queries) querySupplyUses(ctx context.Context, query string, args ...any) ([]SupplyUse, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []SupplyUse
	for rows.Next() {
		var i SupplyUse
		if err := rows.Scan(&i.ID, &i.Name, &i.IsDefault); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const deleteNonDefaultSupplyUseByID = `DELETE FROM supply_uses WHERE id = ? AND is_default = 0`

func (q *Queries) DeleteNonDefaultSupplyUseByID(ctx context.Context, id int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteNonDefaultSupplyUseByID, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
