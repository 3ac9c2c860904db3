// Package inventory provides the display shapes shared by the CLI and the MCP server.
package inventory

import (
	"time"

	"github.com/medkit-app/medkit/internal/database"
	"github.com/medkit-app/medkit/internal/services"
)

// ExpiryStatus classifies a supply against a reference day.
type ExpiryStatus string

const (
	StatusOK       ExpiryStatus = "ok"
	StatusToday    ExpiryStatus = "expires today"
	StatusExpired  ExpiryStatus = "expired"
	StatusNoExpiry ExpiryStatus = "-"
)

// SupplyView is a supply flattened for output.
type SupplyView struct {
	Barcode   string       `json:"barcode"`
	Name      string       `json:"name"`
	Quantity  int64        `json:"quantity"`
	Expires   string       `json:"expiration_date,omitempty"`
	Container string       `json:"container_barcode,omitempty"`
	Uses      []string     `json:"uses,omitempty"`
	Status    ExpiryStatus `json:"status"`
}

// ContainerView is a container with the number of supplies it holds.
type ContainerView struct {
	Barcode  string `json:"barcode"`
	Name     string `json:"name"`
	Supplies int    `json:"supplies"`
}

// SupplyUseView is a supply use for output.
type SupplyUseView struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	IsDefault bool   `json:"is_default"`
}

// NewSupplyView builds a view. day is the reference for Status.
func NewSupplyView(rec database.SupplyRecord, uses []database.SupplyUseRecord, day time.Time) SupplyView {
	view := SupplyView{
		Barcode:  rec.Barcode,
		Name:     rec.Name,
		Quantity: rec.Quantity,
		Status:   StatusOf(rec, day),
	}
	if rec.ExpirationDate != nil {
		view.Expires = database.FormatDate(*rec.ExpirationDate)
	}
	if rec.ContainerBarcode != nil {
		view.Container = *rec.ContainerBarcode
	}
	for _, u := range uses {
		view.Uses = append(view.Uses, u.Name)
	}
	return view
}

// NewSupplyDetailView builds a view from a service detail.
func NewSupplyDetailView(detail *services.SupplyDetail, day time.Time) SupplyView {
	return NewSupplyView(detail.Supply, detail.Uses, day)
}

// NewSupplyViews builds views without uses.
func NewSupplyViews(records []database.SupplyRecord, day time.Time) []SupplyView {
	views := make([]SupplyView, 0, len(records))
	for _, rec := range records {
		views = append(views, NewSupplyView(rec, nil, day))
	}
	return views
}

func NewSupplyUseViews(records []database.SupplyUseRecord) []SupplyUseView {
	views := make([]SupplyUseView, 0, len(records))
	for _, rec := range records {
		views = append(views, SupplyUseView{ID: rec.ID, Name: rec.Name, IsDefault: rec.IsDefault})
	}
	return views
}

// StatusOf compares the calendar dates of the expiration and day.
func StatusOf(rec database.SupplyRecord, day time.Time) ExpiryStatus {
	if rec.ExpirationDate == nil {
		return StatusNoExpiry
	}
	expires := database.FormatDate(*rec.ExpirationDate)
	today := database.FormatDate(day)
	switch {
	case expires == today:
		return StatusToday
	case expires < today:
		return StatusExpired
	default:
		return StatusOK
	}
}
