package sqldb

import "context"

const insertSuppliesSupplyUse = `INSERT INTO supplies_supply_uses (supply_barcode, supply_use_id) VALUES (?, ?)
ON CONFLICT(supply_barcode, supply_use_id) DO NOTHING`

type InsertSuppliesSupplyUseParams struct {
	SupplyBarcode string
	SupplyUseID   int64
}

func (q *Queries) InsertSuppliesSupplyUse(ctx context.Context, arg InsertSuppliesSupplyUseParams) error {
	_, err := q.db.ExecContext(ctx, insertSuppliesSupplyUse, arg.SupplyBarcode, arg.SupplyUseID)
	return err
}

const listSuppliesSupplyUses = `SELECT supply_barcode, supply_use_id FROM supplies_supply_uses
ORDER BY supply_barcode, supply_use_id`

func (q *Queries) ListSuppliesSupplyUses(ctx context.Context) ([]SuppliesSupplyUse, error) {
	rows, err := q.db.QueryContext(ctx, listSuppliesSupplyUses)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []SuppliesSupplyUse
	for rows.Next() {
		var i SuppliesSupplyUse
		if err := rows.Scan(&i.SupplyBarcode, &i.SupplyUseID); err != nil {
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

const deleteSuppliesSupplyUsesBySupply = `DELETE FROM supplies_supply_uses WHERE supply_barcode = ?`

func (q *Queries) DeleteSuppliesSupplyUsesBySupply(ctx context.Context, supplyBarcode string) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteSuppliesSupplyUsesBySupply, supplyBarcode)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
