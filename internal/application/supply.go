package application

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/medkit-app/medkit/internal/database"
	"github.com/medkit-app/medkit/internal/services"
)

// SaveSupplyInput is a supply as typed by a user. Expires is YYYY-MM-DD or
// empty, Container is empty for a loose supply, and Uses holds use ids or names.
type SaveSupplyInput struct {
	Barcode   string
	Name      string
	Quantity  int64
	Expires   string
	Container string
	Uses      []string
}

// SaveSupply parses input, resolves use names to ids and stores the supply.
func SaveSupply(ctx context.Context, dbCtx *database.Context, input SaveSupplyInput) (database.SupplyRecord, error) {
	record := database.SupplyRecord{
		Barcode:  strings.TrimSpace(input.Barcode),
		Name:     strings.TrimSpace(input.Name),
		Quantity: input.Quantity,
	}

	if input.Expires != "" {
		day, err := ParseDate(input.Expires)
		if err != nil {
			return database.SupplyRecord{}, err
		}
		record.ExpirationDate = &day
	}
	if container := strings.TrimSpace(input.Container); container != "" {
		record.ContainerBarcode = &container
	}

	useIDs, err := ResolveSupplyUses(ctx, dbCtx, input.Uses)
	if err != nil {
		return database.SupplyRecord{}, err
	}

	if err := services.NewSupplyService(dbCtx).Save(ctx, record, useIDs); err != nil {
		return database.SupplyRecord{}, err
	}
	return record, nil
}

// ParseDate reads a YYYY-MM-DD calendar date at UTC midnight.
func ParseDate(value string) (time.Time, error) {
	day, err := time.Parse(database.DateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", value)
	}
	return day, nil
}

// ResolveSupplyUses maps ids or case-insensitive names to use ids.
func ResolveSupplyUses(ctx context.Context, dbCtx *database.Context, refs []string) ([]int64, error) {
	if len(refs) == 0 {
		return nil, nil
	}

	uses, err := services.NewSupplyUseService(dbCtx).List(ctx)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(refs))
	seen := make(map[int64]bool, len(refs))
	for _, ref := range refs {
		ref = strings.TrimSpace(ref)
		if ref == "" {
			continue
		}
		id, ok := lookupUse(uses, ref)
		if !ok {
			return nil, fmt.Errorf("supply use %q: %w", ref, services.ErrNotFound)
		}
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func lookupUse(uses []database.SupplyUseRecord, ref string) (int64, bool) {
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		for _, u := range uses {
			if u.ID == id {
				return id, true
			}
		}
		return 0, false
	}
	for _, u := range uses {
		if strings.EqualFold(u.Name, ref) {
			return u.ID, true
		}
	}
	return 0, false
}
