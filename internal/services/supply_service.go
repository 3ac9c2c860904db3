// Package services exposes inventory operations on top of the sqlc queries.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/medkit-app/medkit/internal/database"
	sqldb "github.com/medkit-app/medkit/internal/database/sqlc"
)

// ErrNotFound is returned when a requested supply, container or use does not exist.
var ErrNotFound = errors.New("not found")

// SupplyDetail is a supply together with the uses it is linked to.
type SupplyDetail struct {
	Supply database.SupplyRecord
	Uses   []database.SupplyUseRecord
}

// SupplyService manages supplies and their supply-use links.
type SupplyService struct {
	ctx *database.Context
}

// NewSupplyService creates a new SupplyService.
func NewSupplyService(ctx *database.Context) *SupplyService {
	return &SupplyService{ctx: ctx}
}

// Save inserts or updates a supply and replaces its supply-use links with useIDs.
func (s *SupplyService) Save(ctx context.Context, supply database.SupplyRecord, useIDs []int64) error {
	supply.Barcode = strings.TrimSpace(supply.Barcode)
	if supply.Barcode == "" {
		return fmt.Errorf("supply barcode is required")
	}
	if strings.TrimSpace(supply.Name) == "" {
		return fmt.Errorf("supply name is required")
	}
	if supply.Quantity < 0 {
		return fmt.Errorf("supply quantity cannot be negative")
	}

	return s.ctx.WithTx(ctx, func(q *sqldb.Queries) error {
		if supply.ContainerBarcode != nil && *supply.ContainerBarcode != "" {
			if _, err := q.FindContainerByBarcode(ctx, *supply.ContainerBarcode); err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return fmt.Errorf("container %s: %w", *supply.ContainerBarcode, ErrNotFound)
				}
				return err
			}
		}

		affected, err := q.UpdateSupply(ctx, database.SupplyUpdateParams(supply))
		if err != nil {
			return fmt.Errorf("failed to update supply: %w", err)
		}
		if affected == 0 {
			if err := q.InsertSupply(ctx, database.SupplyInsertParams(supply)); err != nil {
				return fmt.Errorf("failed to insert supply: %w", err)
			}
		}

		if _, err := q.DeleteSuppliesSupplyUsesBySupply(ctx, supply.Barcode); err != nil {
			return fmt.Errorf("failed to clear supply uses: %w", err)
		}
		for _, id := range useIDs {
			if _, err := q.FindSupplyUseByID(ctx, id); err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return fmt.Errorf("supply use %d: %w", id, ErrNotFound)
				}
				return err
			}
			if err := q.InsertSuppliesSupplyUse(ctx, sqldb.InsertSuppliesSupplyUseParams{
				SupplyBarcode: supply.Barcode,
				SupplyUseID:   id,
			}); err != nil {
				return fmt.Errorf("failed to link supply use %d: %w", id, err)
			}
		}
		return nil
	})
}

// Get returns the supply with its uses, or ErrNotFound.
func (s *SupplyService) Get(ctx context.Context, barcode string) (*SupplyDetail, error) {
	q, err := s.queries()
	if err != nil {
		return nil, err
	}

	row, err := q.FindSupplyByBarcode(ctx, barcode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	uses, err := q.ListSupplyUsesBySupply(ctx, barcode)
	if err != nil {
		return nil, err
	}

	supply, err := database.SupplyRecordFromRow(row)
	if err != nil {
		return nil, err
	}

	return &SupplyDetail{
		Supply: supply,
		Uses:   database.SupplyUseRecordsFromRows(uses),
	}, nil
}

// List returns every supply ordered by barcode.
func (s *SupplyService) List(ctx context.Context) ([]database.SupplyRecord, error) {
	q, err := s.queries()
	if err != nil {
		return nil, err
	}
	rows, err := q.ListSupplies(ctx)
	if err != nil {
		return nil, err
	}
	return database.SupplyRecordsFromRows(rows)
}

// ListByContainer returns the supplies stored in a container.
func (s *SupplyService) ListByContainer(ctx context.Context, containerBarcode string) ([]database.SupplyRecord, error) {
	q, err := s.queries()
	if err != nil {
		return nil, err
	}
	rows, err := q.ListSuppliesByContainer(ctx, containerBarcode)
	if err != nil {
		return nil, err
	}
	return database.SupplyRecordsFromRows(rows)
}

// ExpiringOn returns supplies whose expiration date is the calendar day of day.
func (s *SupplyService) ExpiringOn(ctx context.Context, day time.Time) ([]database.SupplyRecord, error) {
	q, err := s.queries()
	if err != nil {
		return nil, err
	}
	rows, err := q.ListSuppliesExpiringOn(ctx, database.FormatDate(day))
	if err != nil {
		return nil, err
	}
	return database.SupplyRecordsFromRows(rows)
}

// ExpiredBefore returns supplies that expired strictly before day.
func (s *SupplyService) ExpiredBefore(ctx context.Context, day time.Time) ([]database.SupplyRecord, error) {
	q, err := s.queries()
	if err != nil {
		return nil, err
	}
	rows, err := q.ListSuppliesExpiringBefore(ctx, database.FormatDate(day))
	if err != nil {
		return nil, err
	}
	return database.SupplyRecordsFromRows(rows)
}

// Delete removes a supply and its links, returning true if a row was removed.
func (s *SupplyService) Delete(ctx context.Context, barcode string) (bool, error) {
	var deleted bool
	err := s.ctx.WithTx(ctx, func(q *sqldb.Queries) error {
		if _, err := q.DeleteSuppliesSupplyUsesBySupply(ctx, barcode); err != nil {
			return err
		}
		affected, err := q.DeleteSupplyByBarcode(ctx, barcode)
		if err != nil {
			return err
		}
		deleted = affected > 0
		return nil
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}

func (s *SupplyService) queries() (*sqldb.Queries, error) {
	return queriesFor(s.ctx, "supply service")
}

func queriesFor(ctx *database.Context, owner string) (*sqldb.Queries, error) {
	if ctx == nil {
		return nil, fmt.Errorf("%s: missing database context", owner)
	}
	if ctx.Queries == nil {
		if ctx.DB == nil {
			return nil, fmt.Errorf("%s: database handle not initialised", owner)
		}
		ctx.Queries = sqldb.New(ctx.DB)
	}
	return ctx.Queries, nil
}
