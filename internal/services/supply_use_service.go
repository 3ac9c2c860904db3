package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/medkit-app/medkit/internal/database"
	sqldb "github.com/medkit-app/medkit/internal/database/sqlc"
)

// SupplyUseService manages the catalogue of supply uses.
type SupplyUseService struct {
	ctx *database.Context
}

func NewSupplyUseService(ctx *database.Context) *SupplyUseService {
	return &SupplyUseService{ctx: ctx}
}

// Create adds a user-defined (non-default) supply use and returns its id.
func (s *SupplyUseService) Create(ctx context.Context, name string) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, fmt.Errorf("supply use name is required")
	}

	var id int64
	err := s.ctx.WithTx(ctx, func(q *sqldb.Queries) error {
		res, err := q.InsertSupplyUse(ctx, sqldb.InsertSupplyUseParams{Name: name})
		if err != nil {
			return fmt.Errorf("failed to insert supply use: %w", err)
		}
		id, err = res.LastInsertId()
		return err
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (s *SupplyUseService) List(ctx context.Context) ([]database.SupplyUseRecord, error) {
	return database.NewSupplyUseRepository(s.ctx).FindAll(ctx)
}

// Delete removes a non-default supply use. Default uses yield ErrDefaultSupplyUse.
func (s *SupplyUseService) Delete(ctx context.Context, id int64) error {
	return s.ctx.WithTx(ctx, func(q *sqldb.Queries) error {
		row, err := q.FindSupplyUseByID(ctx, id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return err
		}
		if row.IsDefault != 0 {
			return database.ErrDefaultSupplyUse
		}
		_, err = q.DeleteNonDefaultSupplyUseByID(ctx, id)
		return err
	})
}
