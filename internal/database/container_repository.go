package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type ContainerRepository struct {
	ctx *Context
}

func NewContainerRepository(dbCtx *Context) *ContainerRepository {
	return &ContainerRepository{ctx: dbCtx}
}

func (r *ContainerRepository) FindByBarcode(ctx context.Context, barcode string) (*ContainerRecord, error) {
	queries := queriesFromContext(r.ctx)
	if queries == nil {
		return nil, fmt.Errorf("container repository: missing database context")
	}

	row, err := queries.FindContainerByBarcode(ctx, barcode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	record := ContainerRecordFromRow(row)
	return &record, nil
}

func (r *ContainerRepository) FindAll(ctx context.Context) ([]ContainerRecord, error) {
	queries := queriesFromContext(r.ctx)
	if queries == nil {
		return nil, fmt.Errorf("container repository: missing database context")
	}

	rows, err := queries.ListContainers(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]ContainerRecord, 0, len(rows))
	for _, row := range rows {
		result = append(result, ContainerRecordFromRow(row))
	}
	return result, nil
}
