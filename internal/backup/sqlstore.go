package backup

import (
	"context"
	"fmt"

	"github.com/medkit-app/medkit/internal/database"
	sqldb "github.com/medkit-app/medkit/internal/database/sqlc"
)

// SQLStore adapts the SQLite inventory to Store.
type SQLStore struct {
	ctx *database.Context
}

func NewSQLStore(dbCtx *database.Context) *SQLStore {
	return &SQLStore{ctx: dbCtx}
}

func (s *SQLStore) SchemaVersion() int {
	if s.ctx == nil {
		return 0
	}
	return s.ctx.SchemaVersion
}

// Snapshot reads all four tables inside one read transaction so the result is
// consistent even if a writer commits midway.
func (s *SQLStore) Snapshot(ctx context.Context) (Content, error) {
	if s.ctx == nil || s.ctx.DB == nil {
		return Content{}, fmt.Errorf("backup store: missing database context")
	}

	tx, err := s.ctx.DB.BeginTx(ctx, nil)
	if err != nil {
		return Content{}, fmt.Errorf("failed to begin snapshot: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	q := sqldb.New(tx)

	containers, err := q.ListContainers(ctx)
	if err != nil {
		return Content{}, fmt.Errorf("failed to read containers: %w", err)
	}
	supplies, err := q.ListSupplies(ctx)
	if err != nil {
		return Content{}, fmt.Errorf("failed to read supplies: %w", err)
	}
	uses, err := q.ListSupplyUses(ctx)
	if err != nil {
		return Content{}, fmt.Errorf("failed to read supply uses: %w", err)
	}
	links, err := q.ListSuppliesSupplyUses(ctx)
	if err != nil {
		return Content{}, fmt.Errorf("failed to read supplies_supply_uses: %w", err)
	}

	content := Content{
		Supplies:           make([]Supply, 0, len(supplies)),
		Containers:         make([]Container, 0, len(containers)),
		SupplyUses:         make([]SupplyUse, 0, len(uses)),
		SuppliesSupplyUses: make([]SupplySupplyUse, 0, len(links)),
	}
	for _, row := range supplies {
		rec, err := database.SupplyRecordFromRow(row)
		if err != nil {
			return Content{}, fmt.Errorf("failed to read supplies: %w", err)
		}
		content.Supplies = append(content.Supplies, supplyFromRecord(rec))
	}
	for _, row := range containers {
		rec := database.ContainerRecordFromRow(row)
		content.Containers = append(content.Containers, Container{Barcode: rec.Barcode, Name: rec.Name})
	}
	for _, row := range uses {
		rec := database.SupplyUseRecordFromRow(row)
		content.SupplyUses = append(content.SupplyUses, SupplyUse{ID: rec.ID, Name: rec.Name, IsDefault: rec.IsDefault})
	}
	for _, row := range links {
		rec := database.SupplySupplyUseRecordFromRow(row)
		content.SuppliesSupplyUses = append(content.SuppliesSupplyUses, SupplySupplyUse{
			SupplyBarcode: rec.SupplyBarcode,
			SupplyUseID:   rec.SupplyUseID,
		})
	}

	return content, nil
}

// Replace runs fn in a write transaction under the database write lock.
func (s *SQLStore) Replace(ctx context.Context, fn func(Writer) error) error {
	return s.ctx.WithTx(ctx, func(q *sqldb.Queries) error {
		return fn(&sqlWriter{q: q})
	})
}

type sqlWriter struct {
	q *sqldb.Queries
}

func (w *sqlWriter) DeleteAllSuppliesSupplyUses(ctx context.Context) error {
	return w.q.DeleteAllSuppliesSupplyUses(ctx)
}

func (w *sqlWriter) DeleteAllSupplies(ctx context.Context) error {
	return w.q.DeleteAllSupplies(ctx)
}

func (w *sqlWriter) DeleteAllContainers(ctx context.Context) error {
	return w.q.DeleteAllContainers(ctx)
}

func (w *sqlWriter) DeleteNonDefaultSupplyUses(ctx context.Context) error {
	return w.q.DeleteNonDefaultSupplyUses(ctx)
}

func (w *sqlWriter) InsertContainers(ctx context.Context, containers []Container) error {
	for _, c := range containers {
		if err := w.q.InsertContainer(ctx, sqldb.InsertContainerParams{Barcode: c.Barcode, Name: c.Name}); err != nil {
			return fmt.Errorf("container %s: %w", c.Barcode, err)
		}
	}
	return nil
}

func (w *sqlWriter) InsertSupplies(ctx context.Context, supplies []Supply) error {
	for _, s := range supplies {
		if err := w.q.InsertSupply(ctx, database.SupplyInsertParams(supplyToRecord(s))); err != nil {
			return fmt.Errorf("supply %s: %w", s.Barcode, err)
		}
	}
	return nil
}

func (w *sqlWriter) InsertSupplyUses(ctx context.Context, uses []SupplyUse) error {
	for _, u := range uses {
		params := database.SupplyUseRestoreParams(database.SupplyUseRecord{ID: u.ID, Name: u.Name, IsDefault: u.IsDefault})
		if err := w.q.RestoreSupplyUse(ctx, params); err != nil {
			return fmt.Errorf("supply use %d: %w", u.ID, err)
		}
	}
	return nil
}

func (w *sqlWriter) InsertSuppliesSupplyUses(ctx context.Context, links []SupplySupplyUse) error {
	for _, l := range links {
		if err := w.q.InsertSuppliesSupplyUse(ctx, sqldb.InsertSuppliesSupplyUseParams{
			SupplyBarcode: l.SupplyBarcode,
			SupplyUseID:   l.SupplyUseID,
		}); err != nil {
			return fmt.Errorf("supply %s use %d: %w", l.SupplyBarcode, l.SupplyUseID, err)
		}
	}
	return nil
}

func supplyFromRecord(rec database.SupplyRecord) Supply {
	return Supply{
		Barcode:          rec.Barcode,
		Name:             rec.Name,
		Quantity:         rec.Quantity,
		ExpirationDate:   DateFrom(rec.ExpirationDate),
		ContainerBarcode: rec.ContainerBarcode,
	}
}

func supplyToRecord(s Supply) database.SupplyRecord {
	return database.SupplyRecord{
		Barcode:          s.Barcode,
		Name:             s.Name,
		Quantity:         s.Quantity,
		ExpirationDate:   s.ExpirationDate.Ptr(),
		ContainerBarcode: s.ContainerBarcode,
	}
}
