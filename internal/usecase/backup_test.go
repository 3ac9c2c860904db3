package usecase

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/medkit-app/medkit/internal/backup"
	"github.com/medkit-app/medkit/internal/database"
	"github.com/medkit-app/medkit/internal/filesystem"
	"github.com/medkit-app/medkit/internal/services"
)

func TestBackupFileRoundTrip(t *testing.T) {
	dbCtx := setupUsecaseDB(t)
	ctx := context.Background()

	if err := services.NewContainerService(dbCtx).Save(ctx, database.ContainerRecord{Barcode: "KIT-1", Name: "Car kit"}); err != nil {
		t.Fatalf("container Save error: %v", err)
	}

	cache := filesystem.NewCache(filepath.Join(t.TempDir(), "cache"))
	u := NewBackup(dbCtx, "salt", cache, nil)

	path, err := u.ExportInCache(ctx)
	if err != nil {
		t.Fatalf("ExportInCache error: %v", err)
	}

	if err := database.ClearDatabase(dbCtx); err != nil {
		t.Fatalf("ClearDatabase error: %v", err)
	}
	if err := u.ImportFile(ctx, path); err != nil {
		t.Fatalf("ImportFile error: %v", err)
	}

	if _, err := services.NewContainerService(dbCtx).Get(ctx, "KIT-1"); err != nil {
		t.Fatalf("expected container restored, got %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile error: %v", err)
	}
	other := NewBackup(dbCtx, "different-salt", nil, nil)
	if err := other.Import(ctx, bytes.NewReader(data)); !errors.Is(err, backup.ErrHashMismatch) {
		t.Fatalf("expected ErrHashMismatch with another salt, got %v", err)
	}

	jsonText, err := u.ExportJSON(ctx)
	if err != nil {
		t.Fatalf("ExportJSON error: %v", err)
	}
	if jsonText != string(data) {
		t.Fatalf("ExportJSON must match the cached file for unchanged inventory")
	}
}
