// Package database provides connection management and repositories for the medkit inventory.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/medkit-app/medkit/db/migrations"
	"github.com/medkit-app/medkit/internal/config"
	sqldb "github.com/medkit-app/medkit/internal/database/sqlc"

	// Import SQLite driver for database/sql
	_ "modernc.org/sqlite"
)

// LatestSchemaVersion is the highest migration shipped in db/migrations.
const LatestSchemaVersion = 1

// Context holds the database connection and query interface.
type Context struct {
	DB            *sql.DB
	Queries       *sqldb.Queries
	SchemaVersion int

	// writeMu serializes every mutating transaction in the process.
	writeMu sync.Mutex
}

// CreateDatabase creates and initializes a database connection with migrations.
func CreateDatabase(dbPath string) (*Context, error) {
	path := dbPath
	if path == "" {
		path = config.GetDBPath()
	}

	useMemory := path == ":memory:"

	if !useMemory {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	var dsn string
	if useMemory {
		dsn = "file::memory:?cache=shared&_pragma=foreign_keys(ON)"
	} else {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve database path: %w", err)
		}
		dsn = fmt.Sprintf("file:%s?_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)", filepath.ToSlash(absPath))
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	version, err := runMigrations(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Context{
		DB:            db,
		Queries:       sqldb.New(db),
		SchemaVersion: version,
	}, nil
}

// CloseDatabase closes the database connection.
func CloseDatabase(ctx *Context) error {
	if ctx == nil || ctx.DB == nil {
		return nil
	}
	return ctx.DB.Close()
}

// WithTx runs fn inside a transaction while holding the process-wide write
// lock. The transaction is rolled back when fn returns an error.
func (c *Context) WithTx(ctx context.Context, fn func(*sqldb.Queries) error) error {
	if c == nil || c.DB == nil {
		return fmt.Errorf("database: missing database context")
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	tx, err := c.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	queries := c.Queries
	if queries == nil {
		queries = sqldb.New(c.DB)
	}

	if err := fn(queries.WithTx(tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback error: %w)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ClearDatabase removes all inventory rows. Seeded default supply uses are kept.
func ClearDatabase(ctx *Context) error {
	if ctx == nil || ctx.DB == nil {
		return nil
	}

	return ctx.WithTx(context.Background(), func(q *sqldb.Queries) error {
		bg := context.Background()

		if err := q.DeleteAllSuppliesSupplyUses(bg); err != nil {
			return fmt.Errorf("failed to delete supplies_supply_uses: %w", err)
		}
		if err := q.DeleteAllSupplies(bg); err != nil {
			return fmt.Errorf("failed to delete supplies: %w", err)
		}
		if err := q.DeleteAllContainers(bg); err != nil {
			return fmt.Errorf("failed to delete containers: %w", err)
		}
		if err := q.DeleteNonDefaultSupplyUses(bg); err != nil {
			return fmt.Errorf("failed to delete supply_uses: %w", err)
		}
		return nil
	})
}

func runMigrations(db *sql.DB) (int, error) {
	driver, err := sqlite.WithInstance(db, &sqlite.Config{})
	if err != nil {
		return 0, fmt.Errorf("failed to initialise migrate driver: %w", err)
	}

	sourceDriver, err := iofs.New(migrations.Files, ".")
	if err != nil {
		return 0, fmt.Errorf("failed to load embedded migrations: %w", err)
	}
	defer func() {
		_ = sourceDriver.Close()
	}()

	migrator, err := migrate.NewWithInstance("iofs", sourceDriver, "sqlite", driver)
	if err != nil {
		return 0, fmt.Errorf("failed to create migrator: %w", err)
	}

	if err := migrator.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, dirty, err := migrator.Version()
	if err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	if dirty {
		return 0, fmt.Errorf("database schema version %d is dirty", version)
	}

	return int(version), nil
}
