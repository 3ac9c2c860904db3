package sqldb

import "context"

const insertContainer = `INSERT INTO containers (barcode, name) VALUES (?, ?)`

type InsertContainerParams struct {
	Barcode string
	Name    string
}

func (q *Queries) InsertContainer(ctx context.Context, arg InsertContainerParams) error {
	_, err := q.db.ExecContext(ctx, insertContainer, arg.Barcode, arg.Name)
	return err
}

const updateContainer = `UPDATE containers SET name = ? WHERE barcode = ?`

type UpdateContainerParams struct {
	Name    string
	Barcode string
}

func (q *Queries) UpdateContainer(ctx context.Context, arg UpdateContainerParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateContainer, arg.Name, arg.Barcode)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const findContainerByBarcode = `SELECT barcode, name FROM containers WHERE barcode = ?`

func (q *Queries) FindContainerByBarcode(ctx context.Context, barcode string) (Container, error) {
	row := q.db.QueryRowContext(ctx, findContainerByBarcode, barcode)
	var i Container
	err := row.Scan(&i.Barcode, &i.Name)
	return i, err
}

const listContainers = `SELECT barcode, name FROM containers ORDER BY barcode`

func (q *Queries) ListContainers(ctx context.Context) ([]Container, error) {
	rows, err := q.db.QueryContext(ctx, listContainers)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Container
	for rows.Next() {
		var i Container
		if err := rows.Scan(&i.Barcode, &i.Name); err != nil {
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

const deleteContainerByBarcode = `DELETE FROM containers WHERE barcode = ?`

func (q *Queries) DeleteContainerByBarcode(ctx context.Context, barcode string) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteContainerByBarcode, barcode)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
