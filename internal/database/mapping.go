package database

import (
	"fmt"

	sqldb "github.com/medkit-app/medkit/internal/database/sqlc"
)

// ContainerRecordFromRow converts a database container row to a ContainerRecord.
func ContainerRecordFromRow(row sqldb.Container) ContainerRecord {
	return ContainerRecord{
		Barcode: row.Barcode,
		Name:    row.Name,
	}
}

// SupplyRecordFromRow converts a database supply row to a SupplyRecord. A
// stored expiration date that does not parse yields ErrInvalidDate.
func SupplyRecordFromRow(row sqldb.Supply) (SupplyRecord, error) {
	expires, err := optionalDate(row.ExpirationDate)
	if err != nil {
		return SupplyRecord{}, fmt.Errorf("supply %s: %w", row.Barcode, err)
	}
	return SupplyRecord{
		Barcode:          row.Barcode,
		Name:             row.Name,
		Quantity:         row.Quantity,
		ExpirationDate:   expires,
		ContainerBarcode: optionalStringPtr(row.ContainerBarcode),
	}, nil
}

// SupplyRecordsFromRows converts a slice of supply rows.
func SupplyRecordsFromRows(rows []sqldb.Supply) ([]SupplyRecord, error) {
	result := make([]SupplyRecord, 0, len(rows))
	for _, row := range rows {
		rec, err := SupplyRecordFromRow(row)
		if err != nil {
			return nil, err
		}
		result = append(result, rec)
	}
	return result, nil
}

// SupplyInsertParams creates insert parameters from a supply record.
func SupplyInsertParams(rec SupplyRecord) sqldb.InsertSupplyParams {
	return sqldb.InsertSupplyParams{
		Barcode:          rec.Barcode,
		Name:             rec.Name,
		Quantity:         rec.Quantity,
		ExpirationDate:   datePtrToNullString(rec.ExpirationDate),
		ContainerBarcode: stringPtrToNullString(rec.ContainerBarcode),
	}
}

// SupplyUpdateParams creates update parameters from a supply record.
func SupplyUpdateParams(rec SupplyRecord) sqldb.UpdateSupplyParams {
	params := SupplyInsertParams(rec)
	return sqldb.UpdateSupplyParams{
		Name:             params.Name,
		Quantity:         params.Quantity,
		ExpirationDate:   params.ExpirationDate,
		ContainerBarcode: params.ContainerBarcode,
		Barcode:          params.Barcode,
	}
}

// SupplyUseRecordFromRow converts a database supply use row to a SupplyUseRecord.
func SupplyUseRecordFromRow(row sqldb.SupplyUse) SupplyUseRecord {
	return SupplyUseRecord{
		ID:        row.ID,
		Name:      row.Name,
		IsDefault: row.IsDefault != 0,
	}
}

// SupplyUseRecordsFromRows converts a slice of supply use rows.
func SupplyUseRecordsFromRows(rows []sqldb.SupplyUse) []SupplyUseRecord {
	result := make([]SupplyUseRecord, 0, len(rows))
	for _, row := range rows {
		result = append(result, SupplyUseRecordFromRow(row))
	}
	return result
}

// SupplyUseRestoreParams creates id-preserving insert parameters from a record.
func SupplyUseRestoreParams(rec SupplyUseRecord) sqldb.RestoreSupplyUseParams {
	return sqldb.RestoreSupplyUseParams{
		ID:        rec.ID,
		Name:      rec.Name,
		IsDefault: boolToInt64(rec.IsDefault),
	}
}

// SupplySupplyUseRecordFromRow converts an association row.
func SupplySupplyUseRecordFromRow(row sqldb.SuppliesSupplyUse) SupplySupplyUseRecord {
	return SupplySupplyUseRecord{
		SupplyBarcode: row.SupplyBarcode,
		SupplyUseID:   row.SupplyUseID,
	}
}
