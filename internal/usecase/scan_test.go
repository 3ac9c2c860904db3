package usecase

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/medkit-app/medkit/internal/database"
	"github.com/medkit-app/medkit/internal/scanner"
	"github.com/medkit-app/medkit/internal/services"
)

var viewport = scanner.Rect{Left: 0, Top: 0, Right: 100, Bottom: 100}

func setupUsecaseDB(t *testing.T) *database.Context {
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

func frame(value string) []scanner.Detection {
	return []scanner.Detection{{Value: value, Box: scanner.Rect{Left: 20, Top: 20, Right: 60, Bottom: 60}}}
}

func TestScanSessionResolvesOncePerConfirmation(t *testing.T) {
	dbCtx := setupUsecaseDB(t)
	ctx := context.Background()

	if err := services.NewSupplyService(dbCtx).Save(ctx, database.SupplyRecord{Barcode: "123", Name: "Gauze", Quantity: 1}, []int64{1}); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	session := NewScanSession(dbCtx, scanner.Config{ConfirmationFrames: 3}, nil)
	if session.ID() == "" {
		t.Fatalf("expected a session id")
	}

	var targets int
	for i := 1; i <= 5; i++ {
		event, emitted, err := session.HandleFrame(ctx, frame("123"), nil, viewport)
		if err != nil || !emitted {
			t.Fatalf("frame %d: err=%v emitted=%v", i, err, emitted)
		}
		if i < 3 && event.Phase != "recognize" {
			t.Fatalf("frame %d: expected recognize, got %s", i, event.Phase)
		}
		if i >= 3 && event.Phase != "communicate" {
			t.Fatalf("frame %d: expected communicate, got %s", i, event.Phase)
		}
		if event.Target != nil {
			targets++
			if i != 3 {
				t.Fatalf("target must be resolved on the confirming frame, got frame %d", i)
			}
			if event.Target.Kind != TargetSupply || event.Target.Supply == nil || event.Target.Supply.Name != "Gauze" {
				t.Fatalf("unexpected target: %#v", event.Target)
			}
			if len(event.Target.Supply.Uses) != 1 || event.Target.Supply.Uses[0] != "Wound care" {
				t.Fatalf("expected resolved uses, got %#v", event.Target.Supply.Uses)
			}
		}
	}
	if targets != 1 {
		t.Fatalf("expected one resolution, got %d", targets)
	}

	// Losing the barcode and finding it again confirms a second time.
	if event, _, _ := session.HandleFrame(ctx, nil, nil, viewport); event.Phase != "sense" {
		t.Fatalf("expected sense, got %s", event.Phase)
	}
	var event ScanEvent
	for i := 0; i < 3; i++ {
		event, _, _ = session.HandleFrame(ctx, frame("123"), nil, viewport)
	}
	if event.Target == nil {
		t.Fatalf("expected a new resolution after reacquiring the barcode")
	}
}

func TestScanSessionResolvesContainersAndUnknown(t *testing.T) {
	dbCtx := setupUsecaseDB(t)
	ctx := context.Background()

	if err := services.NewContainerService(dbCtx).Save(ctx, database.ContainerRecord{Barcode: "KIT-1", Name: "Car kit"}); err != nil {
		t.Fatalf("container Save error: %v", err)
	}

	session := NewScanSession(dbCtx, scanner.Config{ConfirmationFrames: 1}, nil)

	event, _, err := session.HandleFrame(ctx, frame("KIT-1"), nil, viewport)
	if err != nil {
		t.Fatalf("HandleFrame error: %v", err)
	}
	if event.Phase != "recognize" || event.Target != nil {
		t.Fatalf("first sighting must only recognize, got %s %#v", event.Phase, event.Target)
	}

	event, _, err = session.HandleFrame(ctx, frame("KIT-1"), nil, viewport)
	if err != nil {
		t.Fatalf("HandleFrame error: %v", err)
	}
	if event.Target == nil || event.Target.Kind != TargetContainer || event.Target.Container.Name != "Car kit" {
		t.Fatalf("expected container target, got %#v", event.Target)
	}

	if event, _, _ = session.HandleFrame(ctx, frame("999"), nil, viewport); event.Phase != "recognize" {
		t.Fatalf("expected recognize for a new value, got %s", event.Phase)
	}
	event, _, err = session.HandleFrame(ctx, frame("999"), nil, viewport)
	if err != nil {
		t.Fatalf("HandleFrame error: %v", err)
	}
	if event.Target == nil || event.Target.Kind != TargetUnknown || event.Target.Barcode != "999" {
		t.Fatalf("expected unknown target, got %#v", event.Target)
	}
}

func TestScanSessionResolvesEachConfirmedValue(t *testing.T) {
	dbCtx := setupUsecaseDB(t)
	ctx := context.Background()

	if err := services.NewContainerService(dbCtx).Save(ctx, database.ContainerRecord{Barcode: "KIT-1", Name: "Car kit"}); err != nil {
		t.Fatalf("container Save error: %v", err)
	}
	session := NewScanSession(dbCtx, scanner.Config{}, nil)

	event, err := session.handleState(ctx, scanner.CommunicateState("KIT-1"))
	if err != nil || event.Target == nil || event.Target.Kind != TargetContainer {
		t.Fatalf("expected container target, got %#v (err %v)", event.Target, err)
	}
	if event, _ = session.handleState(ctx, scanner.CommunicateState("KIT-1")); event.Target != nil {
		t.Fatalf("same value must not be resolved twice")
	}

	event, err = session.handleState(ctx, scanner.CommunicateState("999"))
	if err != nil || event.Target == nil || event.Target.Kind != TargetUnknown {
		t.Fatalf("expected unknown target after value change, got %#v (err %v)", event.Target, err)
	}

	session.SetActive(false)
	session.SetActive(true)
	if event, _ = session.handleState(ctx, scanner.CommunicateState("999")); event.Target == nil {
		t.Fatalf("expected a new resolution after pausing")
	}
}

func TestPausedScanSessionEmitsNothing(t *testing.T) {
	dbCtx := setupUsecaseDB(t)
	session := NewScanSession(dbCtx, scanner.Config{}, nil)
	session.SetActive(false)

	if _, emitted, err := session.HandleFrame(context.Background(), frame("123"), nil, viewport); emitted || err != nil {
		t.Fatalf("paused session emitted=%v err=%v", emitted, err)
	}
}
