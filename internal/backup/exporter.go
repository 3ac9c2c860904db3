package backup

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/medkit-app/medkit/internal/filesystem"
)

// Exporter snapshots a Store into a hashed Backup envelope.
type Exporter struct {
	store  Store
	hasher *HashManager
	cache  *filesystem.Cache
	logger *slog.Logger
}

// NewExporter wires an exporter. cache may be nil when ExportInCache is not used.
func NewExporter(store Store, hasher *HashManager, cache *filesystem.Cache, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{
		store:  store,
		hasher: hasher,
		cache:  cache,
		logger: logger.With("system", "backup-export"),
	}
}

// Build reads the store and returns the envelope without writing it anywhere.
func (e *Exporter) Build(ctx context.Context) (*Backup, error) {
	content, err := e.store.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot inventory: %w", err)
	}
	content = normalize(content)

	body, err := ToContentJSON(content)
	if err != nil {
		return nil, err
	}

	return &Backup{
		Hash:    e.hasher.GetHash(body),
		Version: e.store.SchemaVersion(),
		Content: content,
	}, nil
}

// Export writes a serialized envelope to w.
func (e *Exporter) Export(ctx context.Context, w io.Writer) error {
	b, data, err := e.encode(ctx)
	if err != nil {
		e.logger.Error("export failed", "error", err)
		return err
	}

	if _, err := io.WriteString(w, data); err != nil {
		e.logger.Error("export failed", "error", err)
		return fmt.Errorf("failed to write backup: %w", err)
	}

	e.logger.Info("backup exported",
		"version", b.Version,
		"supplies", len(b.Content.Supplies),
		"containers", len(b.Content.Containers))
	return nil
}

// ExportInCache writes the envelope into the cache directory and returns its
// path. A cached file that already holds the same bytes is reused as is.
func (e *Exporter) ExportInCache(ctx context.Context) (string, error) {
	if e.cache == nil {
		return "", fmt.Errorf("backup export: no cache configured")
	}

	b, data, err := e.encode(ctx)
	if err != nil {
		e.logger.Error("cache export failed", "error", err)
		return "", err
	}

	name := CacheFileName(b)
	digest := filesystem.CalculateHash([]byte(data))

	ok, err := e.cache.Verify(name, digest)
	if err != nil {
		e.logger.Warn("cached backup unreadable, rewriting", "file", name, "error", err)
	}
	if ok {
		if err := e.cache.Touch(name); err != nil {
			return "", fmt.Errorf("failed to refresh cached backup: %w", err)
		}
		e.logger.Info("reusing cached backup", "file", name)
		return e.cache.Path(name), nil
	}

	path, _, err := e.cache.Save(name, []byte(data))
	if err != nil {
		e.logger.Error("cache export failed", "file", name, "error", err)
		return "", fmt.Errorf("failed to write cached backup: %w", err)
	}

	e.logger.Info("backup cached", "path", path, "version", b.Version)
	return path, nil
}

// CacheFileName derives a stable file name from the schema version and content hash.
func CacheFileName(b *Backup) string {
	hash := b.Hash
	if len(hash) > 16 {
		hash = hash[:16]
	}
	return fmt.Sprintf("medkit-backup-v%d-%s.json", b.Version, hash)
}

func (e *Exporter) encode(ctx context.Context) (*Backup, string, error) {
	b, err := e.Build(ctx)
	if err != nil {
		return nil, "", err
	}
	data, err := ToJSON(*b)
	if err != nil {
		return nil, "", err
	}
	return b, data, nil
}
