// Package backup writes and restores hashed, versioned JSON snapshots of the inventory.
package backup

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// DateLayout is the calendar-date format used inside backup files.
const DateLayout = "2006-01-02"

// nullDateSentinel is written for absent dates. It is a JSON string, not the
// null literal, so the field is always present in the hashed body.
const nullDateSentinel = "null"

// Backup is the envelope written to disk.
type Backup struct {
	Hash    string  `json:"hash"`
	Version int     `json:"version"`
	Content Content `json:"content"`
}

// Content is the hashed payload. Field order here fixes the serialized order.
type Content struct {
	Supplies           []Supply          `json:"supplies"`
	Containers         []Container       `json:"containers"`
	SupplyUses         []SupplyUse       `json:"supply_uses"`
	SuppliesSupplyUses []SupplySupplyUse `json:"supplies_supply_uses"`
}

type Supply struct {
	Barcode          string   `json:"barcode"`
	Name             string   `json:"name"`
	Quantity         int64    `json:"quantity"`
	ExpirationDate   NullDate `json:"expiration_date"`
	ContainerBarcode *string  `json:"container_barcode"`
}

type Container struct {
	Barcode string `json:"barcode"`
	Name    string `json:"name"`
}

type SupplyUse struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	IsDefault bool   `json:"is_default"`
}

type SupplySupplyUse struct {
	SupplyBarcode string `json:"supply_barcode"`
	SupplyUseID   int64  `json:"supply_use_id"`
}

// NullDate is a calendar date that may be absent.
type NullDate struct {
	Time  time.Time
	Valid bool
}

// NewDate returns a valid NullDate at UTC midnight.
func NewDate(year int, month time.Month, day int) NullDate {
	return NullDate{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC), Valid: true}
}

// DateFrom converts an optional time to its calendar date.
func DateFrom(t *time.Time) NullDate {
	if t == nil {
		return NullDate{}
	}
	return NewDate(t.Year(), t.Month(), t.Day())
}

// Ptr returns nil for an absent date.
func (d NullDate) Ptr() *time.Time {
	if !d.Valid {
		return nil
	}
	t := d.Time
	return &t
}

func (d NullDate) String() string {
	if !d.Valid {
		return nullDateSentinel
	}
	return d.Time.Format(DateLayout)
}

func (d NullDate) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts the "null" sentinel, the JSON null literal and YYYY-MM-DD.
func (d *NullDate) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*d = NullDate{}
		return nil
	}

	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	if raw == nullDateSentinel || raw == "" {
		*d = NullDate{}
		return nil
	}

	parsed, err := time.Parse(DateLayout, raw)
	if err != nil {
		return fmt.Errorf("invalid date %q: %w", raw, err)
	}
	*d = NullDate{Time: parsed, Valid: true}
	return nil
}
