package backup

import (
	"encoding/json"
	"fmt"
)

// ToJSON serializes the full envelope.
func ToJSON(b Backup) (string, error) {
	b.Content = normalize(b.Content)
	data, err := json.Marshal(b)
	if err != nil {
		return "", fmt.Errorf("failed to encode backup: %w", err)
	}
	return string(data), nil
}

// ToContentJSON serializes the payload exactly as it is hashed. Empty
// collections are written as [] so a body never depends on nil vs empty.
func ToContentJSON(c Content) (string, error) {
	data, err := json.Marshal(normalize(c))
	if err != nil {
		return "", fmt.Errorf("failed to encode backup content: %w", err)
	}
	return string(data), nil
}

// wireBackup catches envelopes with missing members.
type wireBackup struct {
	Hash    *string  `json:"hash"`
	Version *int     `json:"version"`
	Content *Content `json:"content"`
}

// FromJSON parses an envelope. Any structural problem yields ErrMalformedBackup.
// Collections always come back non-nil, so FromJSON(ToJSON(b)) equals b once b's
// nil collections are read as empty ones; Exporter.Build produces that form.
func FromJSON(data string) (*Backup, error) {
	var wire wireBackup
	if err := json.Unmarshal([]byte(data), &wire); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedBackup, err)
	}
	switch {
	case wire.Hash == nil || *wire.Hash == "":
		return nil, fmt.Errorf("%w: missing hash", ErrMalformedBackup)
	case wire.Version == nil:
		return nil, fmt.Errorf("%w: missing version", ErrMalformedBackup)
	case wire.Content == nil:
		return nil, fmt.Errorf("%w: missing content", ErrMalformedBackup)
	}

	return &Backup{
		Hash:    *wire.Hash,
		Version: *wire.Version,
		Content: normalize(*wire.Content),
	}, nil
}

// normalize replaces nil collections with empty ones.
func normalize(c Content) Content {
	if c.Supplies == nil {
		c.Supplies = []Supply{}
	}
	if c.Containers == nil {
		c.Containers = []Container{}
	}
	if c.SupplyUses == nil {
		c.SupplyUses = []SupplyUse{}
	}
	if c.SuppliesSupplyUses == nil {
		c.SuppliesSupplyUses = []SupplySupplyUse{}
	}
	return c
}
