package database

import "errors"

// ErrNotFound indicates a requested record does not exist.
var ErrNotFound = errors.New("database: not found")

// ErrDefaultSupplyUse is returned when deleting a seeded supply use.
var ErrDefaultSupplyUse = errors.New("database: default supply use cannot be deleted")

// ErrInvalidDate is returned when a stored date is not in DateLayout.
var ErrInvalidDate = errors.New("database: invalid stored date")
