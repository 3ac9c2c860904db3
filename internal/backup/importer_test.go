package backup

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/medkit-app/medkit/internal/database"
	"github.com/medkit-app/medkit/internal/filesystem"
	"github.com/medkit-app/medkit/internal/services"
)

// memStore is an in-memory Store. Replace stages writes on a copy and only
// commits it when fn succeeds.
type memStore struct {
	content  Content
	version  int
	replaced int
}

func (m *memStore) Snapshot(context.Context) (Content, error) {
	return cloneContent(m.content), nil
}

func (m *memStore) SchemaVersion() int { return m.version }

func (m *memStore) Replace(_ context.Context, fn func(Writer) error) error {
	staged := &memWriter{content: cloneContent(m.content)}
	if err := fn(staged); err != nil {
		return err
	}
	m.content = staged.content
	m.replaced++
	return nil
}

type memWriter struct {
	content Content
}

func (w *memWriter) DeleteAllSuppliesSupplyUses(context.Context) error {
	w.content.SuppliesSupplyUses = nil
	return nil
}

func (w *memWriter) DeleteAllSupplies(context.Context) error {
	w.content.Supplies = nil
	return nil
}

func (w *memWriter) DeleteAllContainers(context.Context) error {
	w.content.Containers = nil
	return nil
}

func (w *memWriter) DeleteNonDefaultSupplyUses(context.Context) error {
	kept := w.content.SupplyUses[:0]
	for _, u := range w.content.SupplyUses {
		if u.IsDefault {
			kept = append(kept, u)
		}
	}
	w.content.SupplyUses = kept
	return nil
}

func (w *memWriter) InsertContainers(_ context.Context, containers []Container) error {
	w.content.Containers = append(w.content.Containers, containers...)
	return nil
}

func (w *memWriter) InsertSupplies(_ context.Context, supplies []Supply) error {
	w.content.Supplies = append(w.content.Supplies, supplies...)
	return nil
}

func (w *memWriter) InsertSupplyUses(_ context.Context, uses []SupplyUse) error {
	for _, u := range uses {
		exists := false
		for _, existing := range w.content.SupplyUses {
			if existing.ID == u.ID {
				exists = true
				break
			}
		}
		if !exists {
			w.content.SupplyUses = append(w.content.SupplyUses, u)
		}
	}
	return nil
}

func (w *memWriter) InsertSuppliesSupplyUses(_ context.Context, links []SupplySupplyUse) error {
	for _, l := range links {
		for _, existing := range w.content.SuppliesSupplyUses {
			if existing == l {
				return fmt.Errorf("duplicate link %v", l)
			}
		}
		w.content.SuppliesSupplyUses = append(w.content.SuppliesSupplyUses, l)
	}
	return nil
}

func cloneContent(c Content) Content {
	return Content{
		Supplies:           append([]Supply{}, c.Supplies...),
		Containers:         append([]Container{}, c.Containers...),
		SupplyUses:         append([]SupplyUse{}, c.SupplyUses...),
		SuppliesSupplyUses: append([]SupplySupplyUse{}, c.SuppliesSupplyUses...),
	}
}

func encodeBackup(t *testing.T, h *HashManager, version int, content Content) []byte {
	t.Helper()
	body, err := ToContentJSON(content)
	if err != nil {
		t.Fatalf("ToContentJSON error: %v", err)
	}
	data, err := ToJSON(Backup{Hash: h.GetHash(body), Version: version, Content: content})
	if err != nil {
		t.Fatalf("ToJSON error: %v", err)
	}
	return []byte(data)
}

func TestImportReplacesContent(t *testing.T) {
	h := NewHashManager(testSalt)
	store := &memStore{
		version: 1,
		content: Content{
			Containers: []Container{{Barcode: "OLD", Name: "Old kit"}},
			SupplyUses: []SupplyUse{{ID: 1, Name: "Wound care", IsDefault: true}, {ID: 9, Name: "Obsolete"}},
		},
	}

	data := encodeBackup(t, h, 1, sampleContent())
	if err := NewImporter(store, h, nil).Import(context.Background(), bytes.NewReader(data)); err != nil {
		t.Fatalf("Import error: %v", err)
	}

	want := sampleContent()
	if !reflect.DeepEqual(normalize(store.content), want) {
		t.Fatalf("unexpected store content:\n got %#v\nwant %#v", store.content, want)
	}
}

func TestImportHashMismatchLeavesStoreUntouched(t *testing.T) {
	h := NewHashManager(testSalt)
	store := &memStore{version: 1, content: sampleContent()}
	before := cloneContent(store.content)

	data := encodeBackup(t, h, 1, Content{Containers: []Container{{Barcode: "NEW", Name: "New kit"}}})
	tampered := bytes.Replace(data, []byte("New kit"), []byte("Bad kit"), 1)

	err := NewImporter(store, h, nil).Import(context.Background(), bytes.NewReader(tampered))
	if !errors.Is(err, ErrHashMismatch) {
		t.Fatalf("expected ErrHashMismatch, got %v", err)
	}
	if store.replaced != 0 || !reflect.DeepEqual(store.content, before) {
		t.Fatalf("store must be unchanged after hash mismatch")
	}

	other := NewHashManager("another-salt")
	data = encodeBackup(t, other, 1, Content{})
	if err := NewImporter(store, h, nil).Import(context.Background(), bytes.NewReader(data)); !errors.Is(err, ErrHashMismatch) {
		t.Fatalf("expected ErrHashMismatch for foreign salt, got %v", err)
	}
}

func TestImportVersionMismatchLeavesStoreUntouched(t *testing.T) {
	h := NewHashManager(testSalt)
	store := &memStore{version: 2, content: sampleContent()}
	before := cloneContent(store.content)

	data := encodeBackup(t, h, 1, Content{})
	err := NewImporter(store, h, nil).Import(context.Background(), bytes.NewReader(data))
	if !errors.Is(err, ErrVersionMismatch) {
		t.Fatalf("expected ErrVersionMismatch, got %v", err)
	}
	if !strings.Contains(err.Error(), "backup 1, database 2") {
		t.Fatalf("expected versions in error, got %v", err)
	}
	if store.replaced != 0 || !reflect.DeepEqual(store.content, before) {
		t.Fatalf("store must be unchanged after version mismatch")
	}
}

func TestImportMalformedAndCancelled(t *testing.T) {
	h := NewHashManager(testSalt)
	store := &memStore{version: 1}
	importer := NewImporter(store, h, nil)

	if err := importer.Import(context.Background(), strings.NewReader("{")); !errors.Is(err, ErrMalformedBackup) {
		t.Fatalf("expected ErrMalformedBackup, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	data := encodeBackup(t, h, 1, sampleContent())
	if err := importer.Import(ctx, bytes.NewReader(data)); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if store.replaced != 0 {
		t.Fatalf("cancelled import must not touch the store")
	}

	if err := importer.ImportFile(context.Background(), filepath.Join(t.TempDir(), "missing.json")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected os.ErrNotExist, got %v", err)
	}
}

func setupBackupDB(t *testing.T) *database.Context {
	t.Helper()
	dbCtx, err := database.CreateDatabase(filepath.Join(t.TempDir(), "inventory.db"))
	if err != nil {
		t.Fatalf("CreateDatabase error: %v", err)
	}
	t.Cleanup(func() {
		if err := database.CloseDatabase(dbCtx); err != nil {
			t.Fatalf("CloseDatabase error: %v", err)
		}
	})
	return dbCtx
}

func seedInventory(t *testing.T, dbCtx *database.Context) {
	t.Helper()
	ctx := context.Background()

	if err := services.NewContainerService(dbCtx).Save(ctx, database.ContainerRecord{Barcode: "KIT-1", Name: "Car kit"}); err != nil {
		t.Fatalf("container Save error: %v", err)
	}
	useID, err := services.NewSupplyUseService(dbCtx).Create(ctx, "Snake bites")
	if err != nil {
		t.Fatalf("use Create error: %v", err)
	}

	kit := "KIT-1"
	expires := time.Date(2031, time.March, 1, 0, 0, 0, 0, time.UTC)
	supplies := services.NewSupplyService(dbCtx)
	if err := supplies.Save(ctx, database.SupplyRecord{
		Barcode: "4006381333931", Name: "Sterile gauze", Quantity: 3,
		ExpirationDate: &expires, ContainerBarcode: &kit,
	}, []int64{1, useID}); err != nil {
		t.Fatalf("supply Save error: %v", err)
	}
	if err := supplies.Save(ctx, database.SupplyRecord{Barcode: "5000000000001", Name: "Cold pack", Quantity: 1}, nil); err != nil {
		t.Fatalf("supply Save error: %v", err)
	}
}

func TestExportThenImportRestoresInventory(t *testing.T) {
	dbCtx := setupBackupDB(t)
	seedInventory(t, dbCtx)
	ctx := context.Background()

	store := NewSQLStore(dbCtx)
	h := NewHashManager(testSalt)

	before, err := store.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot error: %v", err)
	}
	if len(before.Supplies) != 2 || len(before.SupplyUses) != 7 || len(before.SuppliesSupplyUses) != 2 {
		t.Fatalf("unexpected seeded snapshot: %#v", before)
	}

	var buf bytes.Buffer
	if err := NewExporter(store, h, nil, nil).Export(ctx, &buf); err != nil {
		t.Fatalf("Export error: %v", err)
	}

	if err := database.ClearDatabase(dbCtx); err != nil {
		t.Fatalf("ClearDatabase error: %v", err)
	}
	cleared, err := store.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot error: %v", err)
	}
	if len(cleared.Supplies) != 0 || len(cleared.SupplyUses) != 6 {
		t.Fatalf("expected cleared store, got %#v", cleared)
	}

	if err := NewImporter(store, h, nil).Import(ctx, &buf); err != nil {
		t.Fatalf("Import error: %v", err)
	}

	after, err := store.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot error: %v", err)
	}
	if !reflect.DeepEqual(after, before) {
		t.Fatalf("restored inventory differs:\n got %#v\nwant %#v", after, before)
	}
}

func TestImportOverExistingRowsSkipsDuplicates(t *testing.T) {
	dbCtx := setupBackupDB(t)
	seedInventory(t, dbCtx)
	ctx := context.Background()

	store := NewSQLStore(dbCtx)
	h := NewHashManager(testSalt)

	var buf bytes.Buffer
	if err := NewExporter(store, h, nil, nil).Export(ctx, &buf); err != nil {
		t.Fatalf("Export error: %v", err)
	}
	data := buf.Bytes()

	for i := 0; i < 2; i++ {
		if err := NewImporter(store, h, nil).Import(ctx, bytes.NewReader(data)); err != nil {
			t.Fatalf("Import %d error: %v", i+1, err)
		}
	}
}

func TestFailedImportRollsBack(t *testing.T) {
	dbCtx := setupBackupDB(t)
	seedInventory(t, dbCtx)
	ctx := context.Background()

	store := NewSQLStore(dbCtx)
	h := NewHashManager(testSalt)

	before, err := store.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot error: %v", err)
	}

	broken := Content{
		Containers:         []Container{{Barcode: "NEW", Name: "New kit"}},
		SuppliesSupplyUses: []SupplySupplyUse{{SupplyBarcode: "ghost", SupplyUseID: 1}},
	}
	data := encodeBackup(t, h, store.SchemaVersion(), broken)

	if err := NewImporter(store, h, nil).Import(ctx, bytes.NewReader(data)); err == nil {
		t.Fatalf("expected foreign key failure")
	}

	after, err := store.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot error: %v", err)
	}
	if !reflect.DeepEqual(after, before) {
		t.Fatalf("failed import must leave storage unchanged")
	}
}

func TestExportFailsOnCorruptStoredDate(t *testing.T) {
	dbCtx := setupBackupDB(t)
	seedInventory(t, dbCtx)
	ctx := context.Background()

	if _, err := dbCtx.DB.ExecContext(ctx, `UPDATE supplies SET expiration_date = '31/12/2030' WHERE barcode = ?`, "4006381333931"); err != nil {
		t.Fatalf("corrupt date: %v", err)
	}

	var out bytes.Buffer
	err := NewExporter(NewSQLStore(dbCtx), NewHashManager(testSalt), nil, nil).Export(ctx, &out)
	if !errors.Is(err, database.ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
	if out.Len() != 0 {
		t.Fatalf("nothing must be written when the snapshot fails, got %s", out.String())
	}
}

func TestExportInCacheReusesValidArtifact(t *testing.T) {
	dbCtx := setupBackupDB(t)
	seedInventory(t, dbCtx)
	ctx := context.Background()

	cache := filesystem.NewCache(filepath.Join(t.TempDir(), "cache"))
	exporter := NewExporter(NewSQLStore(dbCtx), NewHashManager(testSalt), cache, nil)

	path, err := exporter.ExportInCache(ctx)
	if err != nil {
		t.Fatalf("ExportInCache error: %v", err)
	}
	if filepath.Dir(path) != cache.Dir() || !strings.HasPrefix(filepath.Base(path), "medkit-backup-v1-") {
		t.Fatalf("unexpected cache path %s", path)
	}

	past := time.Now().Add(-time.Hour).Truncate(time.Second)
	if err := os.Chtimes(path, past, past); err != nil {
		t.Fatalf("Chtimes error: %v", err)
	}

	original, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile error: %v", err)
	}

	again, err := exporter.ExportInCache(ctx)
	if err != nil {
		t.Fatalf("second ExportInCache error: %v", err)
	}
	if again != path {
		t.Fatalf("expected same path, got %s and %s", path, again)
	}
	reused, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile error: %v", err)
	}
	if !bytes.Equal(reused, original) {
		t.Fatalf("valid cached artifact must keep its bytes")
	}

	// A reused file is fresh again, so cleanup of older files keeps it.
	removed, err := cache.PurgeOlderThan(past.Add(time.Minute))
	if err != nil {
		t.Fatalf("PurgeOlderThan error: %v", err)
	}
	if removed != 0 || !cache.Exists(filepath.Base(path)) {
		t.Fatalf("reused cached backup was purged")
	}

	if err := os.WriteFile(path, []byte("corrupt"), 0o600); err != nil {
		t.Fatalf("WriteFile error: %v", err)
	}
	if _, err := exporter.ExportInCache(ctx); err != nil {
		t.Fatalf("ExportInCache after corruption error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile error: %v", err)
	}
	b, err := FromJSON(string(data))
	if err != nil {
		t.Fatalf("rewritten cache must parse: %v", err)
	}
	if len(b.Content.Supplies) != 2 {
		t.Fatalf("unexpected rewritten content: %#v", b.Content)
	}
}
