package database

import (
	"context"
	"testing"
	"time"
)

func TestSupplyRepositoryLookups(t *testing.T) {
	ctx := context.Background()
	dbCtx := setupTestDB(t)

	insertContainer(t, dbCtx.DB, "KIT-1", "Car kit")
	insertSupply(t, dbCtx.DB, "111", "Bandage", "KIT-1")
	if _, err := dbCtx.DB.Exec(`INSERT INTO supplies(barcode, name, quantity) VALUES('222', 'Gloves', 10)`); err != nil {
		t.Fatalf("insert supply without date: %v", err)
	}

	repo := NewSupplyRepository(dbCtx)

	found, err := repo.FindByBarcode(ctx, "111")
	if err != nil {
		t.Fatalf("FindByBarcode returned error: %v", err)
	}
	if found == nil || found.Name != "Bandage" {
		t.Fatalf("unexpected supply: %#v", found)
	}
	if found.ExpirationDate == nil || FormatDate(*found.ExpirationDate) != "2030-01-31" {
		t.Fatalf("unexpected expiration date: %v", found.ExpirationDate)
	}
	if found.ContainerBarcode == nil || *found.ContainerBarcode != "KIT-1" {
		t.Fatalf("unexpected container barcode: %v", found.ContainerBarcode)
	}

	undated, err := repo.FindByBarcode(ctx, "222")
	if err != nil || undated == nil {
		t.Fatalf("FindByBarcode undated failed: %v", err)
	}
	if undated.ExpirationDate != nil || undated.ContainerBarcode != nil {
		t.Fatalf("expected nil date and container, got %#v", undated)
	}

	missing, err := repo.FindByBarcode(ctx, "404")
	if err != nil {
		t.Fatalf("FindByBarcode missing returned error: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for missing supply, got %#v", missing)
	}

	all, err := repo.FindAll(ctx)
	if err != nil {
		t.Fatalf("FindAll returned error: %v", err)
	}
	if len(all) != 2 || all[0].Barcode != "111" || all[1].Barcode != "222" {
		t.Fatalf("unexpected FindAll result: %#v", all)
	}

	inKit, err := repo.FindByContainer(ctx, "KIT-1")
	if err != nil {
		t.Fatalf("FindByContainer returned error: %v", err)
	}
	if len(inKit) != 1 || inKit[0].Barcode != "111" {
		t.Fatalf("unexpected FindByContainer result: %#v", inKit)
	}

	day := time.Date(2030, time.January, 31, 0, 0, 0, 0, time.UTC)
	expiring, err := repo.FindExpiringOn(ctx, day)
	if err != nil {
		t.Fatalf("FindExpiringOn returned error: %v", err)
	}
	if len(expiring) != 1 || expiring[0].Barcode != "111" {
		t.Fatalf("unexpected FindExpiringOn result: %#v", expiring)
	}

	expired, err := repo.FindExpiredBefore(ctx, day.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("FindExpiredBefore returned error: %v", err)
	}
	if len(expired) != 1 {
		t.Fatalf("expected 1 expired supply, got %d", len(expired))
	}
}

func TestContainerAndSupplyUseRepositories(t *testing.T) {
	ctx := context.Background()
	dbCtx := setupTestDB(t)

	insertContainer(t, dbCtx.DB, "KIT-2", "Home cabinet")
	insertContainer(t, dbCtx.DB, "KIT-1", "Car kit")
	insertSupply(t, dbCtx.DB, "111", "Bandage", "KIT-1")
	insertAssociation(t, dbCtx.DB, "111", 1)
	insertAssociation(t, dbCtx.DB, "111", 3)

	containers, err := NewContainerRepository(dbCtx).FindAll(ctx)
	if err != nil {
		t.Fatalf("container FindAll returned error: %v", err)
	}
	if len(containers) != 2 || containers[0].Barcode != "KIT-1" {
		t.Fatalf("expected containers ordered by barcode, got %#v", containers)
	}

	kit, err := NewContainerRepository(dbCtx).FindByBarcode(ctx, "KIT-2")
	if err != nil || kit == nil || kit.Name != "Home cabinet" {
		t.Fatalf("FindByBarcode failed: kit=%#v err=%v", kit, err)
	}

	uses := NewSupplyUseRepository(dbCtx)
	all, err := uses.FindAll(ctx)
	if err != nil {
		t.Fatalf("supply use FindAll returned error: %v", err)
	}
	for _, use := range all {
		if !use.IsDefault {
			t.Fatalf("expected only seeded defaults, got %#v", use)
		}
	}

	bySupply, err := uses.FindBySupply(ctx, "111")
	if err != nil {
		t.Fatalf("FindBySupply returned error: %v", err)
	}
	if len(bySupply) != 2 || bySupply[0].ID != 1 || bySupply[1].ID != 3 {
		t.Fatalf("unexpected FindBySupply result: %#v", bySupply)
	}

	links, err := uses.FindAllAssociations(ctx)
	if err != nil {
		t.Fatalf("FindAllAssociations returned error: %v", err)
	}
	if len(links) != 2 {
		t.Fatalf("expected 2 associations, got %d", len(links))
	}
}
