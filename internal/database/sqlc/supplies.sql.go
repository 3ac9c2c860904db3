package sqldb

import (
	"context"
	"database/sql"
)

const supplyColumns = `barcode, name, quantity, expiration_date, container_barcode`

func scanSupply(scanner interface{ Scan(dest ...any) error }) (Supply, error) {
	var i Supply
	err := scanner.Scan(&i.Barcode, &i.Name, &i.Quantity, &i.ExpirationDate, &i.ContainerBarcode)
	return i, err
}

func (q *Queries) querySupplies(ctx context.Context, query string, args ...any) ([]Supply, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Supply
	for rows.Next() {
		i, err := scanSupply(rows)
		if err != nil {
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

const insertSupply = `INSERT INTO supplies (` + supplyColumns + `) VALUES (?, ?, ?, ?, ?)`

type InsertSupplyParams struct {
	Barcode          string
	Name             string
	Quantity         int64
	ExpirationDate   sql.NullString
	ContainerBarcode sql.NullString
}

func (q *Queries) InsertSupply(ctx context.Context, arg InsertSupplyParams) error {
	_, err := q.db.ExecContext(ctx, insertSupply,
		arg.Barcode,
		arg.Name,
		arg.Quantity,
		arg.ExpirationDate,
		arg.ContainerBarcode,
	)
	return err
}

const updateSupply = `UPDATE supplies
SET name = ?, quantity = ?, expiration_date = ?, container_barcode = ?
WHERE barcode = ?`

type UpdateSupplyParams struct {
	Name             string
	Quantity         int64
	ExpirationDate   sql.NullString
	ContainerBarcode sql.NullString
	Barcode          string
}

func (q *Queries) UpdateSupply(ctx context.Context, arg UpdateSupplyParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateSupply,
		arg.Name,
		arg.Quantity,
		arg.ExpirationDate,
		arg.ContainerBarcode,
		arg.Barcode,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const findSupplyByBarcode = `SELECT ` + supplyColumns + ` FROM supplies WHERE barcode = ?`

func (q *Queries) FindSupplyByBarcode(ctx context.Context, barcode string) (Supply, error) {
	return scanSupply(q.db.QueryRowContext(ctx, findSupplyByBarcode, barcode))
}

const listSupplies = `SELECT ` + supplyColumns + ` FROM supplies ORDER BY barcode`

func (q *Queries) ListSupplies(ctx context.Context) ([]Supply, error) {
	return q.querySupplies(ctx, listSupplies)
}

const listSuppliesByContainer = `SELECT ` + supplyColumns + ` FROM supplies WHERE container_barcode = ? ORDER BY barcode`

func (q *Queries) ListSuppliesByContainer(ctx context.Context, containerBarcode string) ([]Supply, error) {
	return q.querySupplies(ctx, listSuppliesByContainer, containerBarcode)
}

const listSuppliesExpiringOn = `SELECT ` + supplyColumns + ` FROM supplies WHERE expiration_date = ? ORDER BY name, barcode`

func (q *Queries) ListSuppliesExpiringOn(ctx context.Context, date string) ([]Supply, error) {
	return q.querySupplies(ctx, listSuppliesExpiringOn, date)
}

const listSuppliesExpiringBefore = `SELECT ` + supplyColumns + ` FROM supplies
WHERE expiration_date IS NOT NULL AND expiration_date < ?
ORDER BY expiration_date, barcode`

func (q *Queries) ListSuppliesExpiringBefore(ctx context.Context, date string) ([]Supply, error) {
	return q.querySupplies(ctx, listSuppliesExpiringBefore, date)
}

const deleteSupplyByBarcode = `DELETE FROM supplies WHERE barcode = ?`

func (q *Queries) DeleteSupplyByBarcode(ctx context.Context, barcode string) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteSupplyByBarcode, barcode)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
