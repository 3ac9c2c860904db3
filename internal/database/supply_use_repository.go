package database

import (
	"context"
	"fmt"
)

type SupplyUseRepository struct {
	ctx *Context
}

func NewSupplyUseRepository(dbCtx *Context) *SupplyUseRepository {
	return &SupplyUseRepository{ctx: dbCtx}
}

func (r *SupplyUseRepository) FindAll(ctx context.Context) ([]SupplyUseRecord, error) {
	queries := queriesFromContext(r.ctx)
	if queries == nil {
		return nil, fmt.Errorf("supply use repository: missing database context")
	}

	rows, err := queries.ListSupplyUses(ctx)
	if err != nil {
		return nil, err
	}
	return SupplyUseRecordsFromRows(rows), nil
}

func (r *SupplyUseRepository) FindBySupply(ctx context.Context, supplyBarcode string) ([]SupplyUseRecord, error) {
	queries := queriesFromContext(r.ctx)
	if queries == nil {
		return nil, fmt.Errorf("supply use repository: missing database context")
	}

	rows, err := queries.ListSupplyUsesBySupply(ctx, supplyBarcode)
	if err != nil {
		return nil, err
	}
	return SupplyUseRecordsFromRows(rows), nil
}

func (r *SupplyUseRepository) FindAllAssociations(ctx context.Context) ([]SupplySupplyUseRecord, error) {
	queries := queriesFromContext(r.ctx)
	if queries == nil {
		return nil, fmt.Errorf("supply use repository: missing database context")
	}

	rows, err := queries.ListSuppliesSupplyUses(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]SupplySupplyUseRecord, 0, len(rows))
	for _, row := range rows {
		result = append(result, SupplySupplyUseRecordFromRow(row))
	}
	return result, nil
}
