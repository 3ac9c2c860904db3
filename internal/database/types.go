package database

import "time"

// ContainerRecord represents a row in the containers table. A container is a
// kit, bag or cabinet identified by its own barcode.
type ContainerRecord struct {
	Barcode string
	Name    string
}

// SupplyRecord represents a row in the supplies table. ExpirationDate holds a
// calendar date at UTC midnight, nil when the supply does not expire.
type SupplyRecord struct {
	Barcode          string
	Name             string
	Quantity         int64
	ExpirationDate   *time.Time
	ContainerBarcode *string
}

// SupplyUseRecord mirrors the supply_uses table. Default rows are seeded by
// migration and survive restores.
type SupplyUseRecord struct {
	ID        int64
	Name      string
	IsDefault bool
}

// SupplySupplyUseRecord links one supply to one supply use.
type SupplySupplyUseRecord struct {
	SupplyBarcode string
	SupplyUseID   int64
}
