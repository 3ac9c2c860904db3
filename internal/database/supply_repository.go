package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type SupplyRepository struct {
	ctx *Context
}

func NewSupplyRepository(dbCtx *Context) *SupplyRepository {
	return &SupplyRepository{ctx: dbCtx}
}

func (r *SupplyRepository) FindByBarcode(ctx context.Context, barcode string) (*SupplyRecord, error) {
	queries := queriesFromContext(r.ctx)
	if queries == nil {
		return nil, fmt.Errorf("supply repository: missing database context")
	}

	row, err := queries.FindSupplyByBarcode(ctx, barcode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	record, err := SupplyRecordFromRow(row)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *SupplyRepository) FindAll(ctx context.Context) ([]SupplyRecord, error) {
	queries := queriesFromContext(r.ctx)
	if queries == nil {
		return nil, fmt.Errorf("supply repository: missing database context")
	}

	rows, err := queries.ListSupplies(ctx)
	if err != nil {
		return nil, err
	}
	return SupplyRecordsFromRows(rows)
}

func (r *SupplyRepository) FindByContainer(ctx context.Context, containerBarcode string) ([]SupplyRecord, error) {
	queries := queriesFromContext(r.ctx)
	if queries == nil {
		return nil, fmt.Errorf("supply repository: missing database context")
	}

	rows, err := queries.ListSuppliesByContainer(ctx, containerBarcode)
	if err != nil {
		return nil, err
	}
	return SupplyRecordsFromRows(rows)
}

// FindExpiringOn lists supplies whose expiration date is exactly day.
func (r *SupplyRepository) FindExpiringOn(ctx context.Context, day time.Time) ([]SupplyRecord, error) {
	queries := queriesFromContext(r.ctx)
	if queries == nil {
		return nil, fmt.Errorf("supply repository: missing database context")
	}

	rows, err := queries.ListSuppliesExpiringOn(ctx, FormatDate(day))
	if err != nil {
		return nil, err
	}
	return SupplyRecordsFromRows(rows)
}

// FindExpiredBefore lists supplies whose expiration date is strictly before day.
func (r *SupplyRepository) FindExpiredBefore(ctx context.Context, day time.Time) ([]SupplyRecord, error) {
	queries := queriesFromContext(r.ctx)
	if queries == nil {
		return nil, fmt.Errorf("supply repository: missing database context")
	}

	rows, err := queries.ListSuppliesExpiringBefore(ctx, FormatDate(day))
	if err != nil {
		return nil, err
	}
	return SupplyRecordsFromRows(rows)
}
