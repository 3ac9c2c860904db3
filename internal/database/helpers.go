package database

import (
	"database/sql"
	"fmt"
	"time"

	sqldb "github.com/medkit-app/medkit/internal/database/sqlc"
)

// DateLayout is the on-disk format of calendar dates.
const DateLayout = "2006-01-02"

func stringPtrToNullString(value *string) sql.NullString {
	if value == nil {
		return sql.NullString{}
	}
	if *value == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *value, Valid: true}
}

func optionalStringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	val := ns.String
	return &val
}

func datePtrToNullString(value *time.Time) sql.NullString {
	if value == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: FormatDate(*value), Valid: true}
}

func optionalDate(ns sql.NullString) (*time.Time, error) {
	if !ns.Valid || ns.String == "" {
		return nil, nil
	}
	parsed, err := time.Parse(DateLayout, ns.String)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrInvalidDate, ns.String, err)
	}
	return &parsed, nil
}

// FormatDate renders t as YYYY-MM-DD in its own location.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

func boolToInt64(value bool) int64 {
	if value {
		return 1
	}
	return 0
}

func queriesFromContext(ctx *Context) *sqldb.Queries {
	if ctx == nil {
		return nil
	}
	if ctx.Queries != nil {
		return ctx.Queries
	}
	if ctx.DB == nil {
		return nil
	}
	return sqldb.New(ctx.DB)
}
