package backup

import "context"

// Writer is the set of bulk mutations a restore needs. Every call happens
// inside the transaction opened by Store.Replace.
type Writer interface {
	DeleteAllSuppliesSupplyUses(ctx context.Context) error
	DeleteAllSupplies(ctx context.Context) error
	DeleteAllContainers(ctx context.Context) error
	DeleteNonDefaultSupplyUses(ctx context.Context) error

	InsertContainers(ctx context.Context, containers []Container) error
	InsertSupplies(ctx context.Context, supplies []Supply) error
	// InsertSupplyUses keeps existing rows on id conflict.
	InsertSupplyUses(ctx context.Context, uses []SupplyUse) error
	// InsertSuppliesSupplyUses skips pairs that already exist.
	InsertSuppliesSupplyUses(ctx context.Context, links []SupplySupplyUse) error
}

// Store is the relational storage seen by the exporter and importer.
type Store interface {
	// Snapshot reads every table in a stable order.
	Snapshot(ctx context.Context) (Content, error)
	// SchemaVersion is the version a backup must carry to be imported.
	SchemaVersion() int
	// Replace runs fn atomically; an error from fn leaves storage unchanged.
	Replace(ctx context.Context, fn func(Writer) error) error
}
