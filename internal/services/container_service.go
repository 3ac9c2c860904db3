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

// ContainerService manages kits, bags and cabinets.
type ContainerService struct {
	ctx *database.Context
}

func NewContainerService(ctx *database.Context) *ContainerService {
	return &ContainerService{ctx: ctx}
}

// Save inserts the container or renames an existing one.
func (s *ContainerService) Save(ctx context.Context, container database.ContainerRecord) error {
	container.Barcode = strings.TrimSpace(container.Barcode)
	if container.Barcode == "" {
		return fmt.Errorf("container barcode is required")
	}
	if strings.TrimSpace(container.Name) == "" {
		return fmt.Errorf("container name is required")
	}

	return s.ctx.WithTx(ctx, func(q *sqldb.Queries) error {
		affected, err := q.UpdateContainer(ctx, sqldb.UpdateContainerParams{
			Name:    container.Name,
			Barcode: container.Barcode,
		})
		if err != nil {
			return fmt.Errorf("failed to update container: %w", err)
		}
		if affected > 0 {
			return nil
		}
		if err := q.InsertContainer(ctx, sqldb.InsertContainerParams{
			Barcode: container.Barcode,
			Name:    container.Name,
		}); err != nil {
			return fmt.Errorf("failed to insert container: %w", err)
		}
		return nil
	})
}

func (s *ContainerService) Get(ctx context.Context, barcode string) (*database.ContainerRecord, error) {
	q, err := queriesFor(s.ctx, "container service")
	if err != nil {
		return nil, err
	}
	row, err := q.FindContainerByBarcode(ctx, barcode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	record := database.ContainerRecordFromRow(row)
	return &record, nil
}

func (s *ContainerService) List(ctx context.Context) ([]database.ContainerRecord, error) {
	return database.NewContainerRepository(s.ctx).FindAll(ctx)
}

// Delete removes a container. Supplies inside it are kept and lose their container.
func (s *ContainerService) Delete(ctx context.Context, barcode string) (bool, error) {
	var deleted bool
	err := s.ctx.WithTx(ctx, func(q *sqldb.Queries) error {
		affected, err := q.DeleteContainerByBarcode(ctx, barcode)
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
