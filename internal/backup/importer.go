package backup

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Importer validates a backup and replaces the store contents with it.
type Importer struct {
	store  Store
	hasher *HashManager
	logger *slog.Logger
}

func NewImporter(store Store, hasher *HashManager, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{
		store:  store,
		hasher: hasher,
		logger: logger.With("system", "backup-import"),
	}
}

// ImportFile opens path and imports it.
func (i *Importer) ImportFile(ctx context.Context, path string) error {
	//nolint:gosec // G304: path is chosen by the operator
	f, err := os.Open(path)
	if err != nil {
		i.logger.Error("import failed", "path", path, "error", err)
		return fmt.Errorf("failed to open backup: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	return i.Import(ctx, f)
}

// Import reads an envelope from r. Hash and version are checked before any
// write, and the replacement runs in a single transaction.
func (i *Importer) Import(ctx context.Context, r io.Reader) error {
	if err := i.importFrom(ctx, r); err != nil {
		i.logger.Error("import failed", "error", err)
		return err
	}
	return nil
}

func (i *Importer) importFrom(ctx context.Context, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read backup: %w", err)
	}

	b, err := FromJSON(string(data))
	if err != nil {
		return err
	}

	body, err := ToContentJSON(b.Content)
	if err != nil {
		return err
	}
	if !i.hasher.IsHashEqual(body, b.Hash) {
		return ErrHashMismatch
	}

	if current := i.store.SchemaVersion(); b.Version != current {
		return fmt.Errorf("%w: backup %d, database %d", ErrVersionMismatch, b.Version, current)
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("import cancelled: %w", err)
	}

	content := b.Content
	err = i.store.Replace(ctx, func(w Writer) error {
		if err := w.DeleteAllSuppliesSupplyUses(ctx); err != nil {
			return fmt.Errorf("failed to clear supplies_supply_uses: %w", err)
		}
		if err := w.DeleteAllSupplies(ctx); err != nil {
			return fmt.Errorf("failed to clear supplies: %w", err)
		}
		if err := w.DeleteAllContainers(ctx); err != nil {
			return fmt.Errorf("failed to clear containers: %w", err)
		}
		if err := w.DeleteNonDefaultSupplyUses(ctx); err != nil {
			return fmt.Errorf("failed to clear supply uses: %w", err)
		}

		if err := w.InsertContainers(ctx, content.Containers); err != nil {
			return fmt.Errorf("failed to restore containers: %w", err)
		}
		if err := w.InsertSupplies(ctx, content.Supplies); err != nil {
			return fmt.Errorf("failed to restore supplies: %w", err)
		}
		if err := w.InsertSupplyUses(ctx, content.SupplyUses); err != nil {
			return fmt.Errorf("failed to restore supply uses: %w", err)
		}
		if err := w.InsertSuppliesSupplyUses(ctx, content.SuppliesSupplyUses); err != nil {
			return fmt.Errorf("failed to restore supplies_supply_uses: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	i.logger.Info("backup imported",
		"version", b.Version,
		"supplies", len(content.Supplies),
		"containers", len(content.Containers),
		"supply_uses", len(content.SupplyUses))
	return nil
}
