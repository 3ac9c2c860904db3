package sqldb

import "context"

const deleteAllSuppliesSupplyUses = `DELETE FROM supplies_supply_uses`

func (q *Queries) DeleteAllSuppliesSupplyUses(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deleteAllSuppliesSupplyUses)
	return err
}

const deleteAllSupplies = `DELETE FROM supplies`

func (q *Queries) DeleteAllSupplies(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deleteAllSupplies)
	return err
}

const deleteAllContainers = `DELETE FROM containers`

func (q *Queries) DeleteAllContainers(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deleteAllContainers)
	return err
}

const deleteNonDefaultSupplyUses = `DELETE FROM supply_uses WHERE is_default = 0`

func (q *Queries) DeleteNonDefaultSupplyUses(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deleteNonDefaultSupplyUses)
	return err
}
