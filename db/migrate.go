package db

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	_ "github.com/golang-migrate/migrate/v4/source/file" // file:// source
)

// MigrateUp applies all pending up migrations. A database with nothing
// pending is not an error. The migrator takes ownership of conn and closes
// it; do not reuse the connection afterwards.
func MigrateUp(conn *sql.DB, migrationsPath string) error {
	m, err := newMigrator(conn, migrationsPath)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("db: applying migrations: %w", err)
	}
	return nil
}

// MigrateUpFromPath opens the database at dbPath on its own connection and
// applies pending migrations. Preferred at startup, since the migration
// connection must not be reused.
func MigrateUpFromPath(dbPath, migrationsPath string) error {
	conn, err := OpenWithDefaults(dbPath)
	if err != nil {
		return err
	}
	return MigrateUp(conn, migrationsPath)
}

// MigrateDown rolls back steps migrations (-1 rolls back everything). Takes
// ownership of conn like MigrateUp.
func MigrateDown(conn *sql.DB, migrationsPath string, steps int) error {
	m, err := newMigrator(conn, migrationsPath)
	if err != nil {
		return err
	}
	defer m.Close()

	var downErr error
	if steps == -1 {
		downErr = m.Down()
	} else {
		downErr = m.Steps(-steps)
	}
	if downErr != nil && !errors.Is(downErr, migrate.ErrNoChange) {
		return fmt.Errorf("db: rolling back migrations: %w", downErr)
	}
	return nil
}

// MigrationVersion reports the current schema version and dirty state.
// Returns (0, false) when no migrations have been applied. Takes ownership
// of conn.
func MigrationVersion(conn *sql.DB, migrationsPath string) (uint, bool, error) {
	m, err := newMigrator(conn, migrationsPath)
	if err != nil {
		return 0, false, err
	}
	defer m.Close()

	version, dirty, err := m.Version()
	if err != nil {
		if errors.Is(err, migrate.ErrNilVersion) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("db: reading migration version: %w", err)
	}
	return version, dirty, nil
}

func newMigrator(conn *sql.DB, migrationsPath string) (*migrate.Migrate, error) {
	if conn == nil {
		return nil, errors.New("db: database connection is required")
	}
	if migrationsPath == "" {
		return nil, errors.New("db: migrations path is required")
	}

	driver, err := sqlite.WithInstance(conn, &sqlite.Config{DatabaseName: "main"})
	if err != nil {
		return nil, fmt.Errorf("db: creating sqlite migrate driver: %w", err)
	}
	m, err := migrate.NewWithDatabaseInstance(migrationsPath, "sqlite", driver)
	if err != nil {
		return nil, fmt.Errorf("db: creating migrator: %w", err)
	}
	return m, nil
}
