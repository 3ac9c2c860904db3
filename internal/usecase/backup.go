package usecase

import (
	"context"
	"io"
	"log/slog"

	"github.com/medkit-app/medkit/internal/backup"
	"github.com/medkit-app/medkit/internal/database"
	"github.com/medkit-app/medkit/internal/filesystem"
)

// Backup binds the exporter and importer to one database and cache.
type Backup struct {
	exporter *backup.Exporter
	importer *backup.Importer
	cache    *filesystem.Cache
}

// NewBackup wires backups over dbCtx. salt keys the content hash; cache may be nil.
func NewBackup(dbCtx *database.Context, salt string, cache *filesystem.Cache, logger *slog.Logger) *Backup {
	store := backup.NewSQLStore(dbCtx)
	hasher := backup.NewHashManager(salt)
	return &Backup{
		exporter: backup.NewExporter(store, hasher, cache, logger),
		importer: backup.NewImporter(store, hasher, logger),
		cache:    cache,
	}
}

func (u *Backup) Export(ctx context.Context, w io.Writer) error {
	return u.exporter.Export(ctx, w)
}

func (u *Backup) ExportInCache(ctx context.Context) (string, error) {
	return u.exporter.ExportInCache(ctx)
}

// ExportJSON returns the serialized envelope as a string.
func (u *Backup) ExportJSON(ctx context.Context) (string, error) {
	b, err := u.exporter.Build(ctx)
	if err != nil {
		return "", err
	}
	return backup.ToJSON(*b)
}

func (u *Backup) Import(ctx context.Context, r io.Reader) error {
	return u.importer.Import(ctx, r)
}

func (u *Backup) ImportFile(ctx context.Context, path string) error {
	return u.importer.ImportFile(ctx, path)
}
