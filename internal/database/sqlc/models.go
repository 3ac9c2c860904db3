package sqldb

import "database/sql"

type Container struct {
	Barcode string
	Name    string
}

type Supply struct {
	Barcode          string
	Name             string
	Quantity         int64
	ExpirationDate   sql.NullString
	ContainerBarcode sql.NullString
}

type SupplyUse struct {
	ID        int64
	Name      string
	IsDefault int64
}

type SuppliesSupplyUse struct {
	SupplyBarcode string
	SupplyUseID   int64
}
