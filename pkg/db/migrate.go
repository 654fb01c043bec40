package db

import (
	"errors"
	"fmt"
	"io/fs"
	"path"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	migrations "github.com/doodlesbykumbi/incidentd/db"
)

// ErrNoVersion is returned by MigrationVersion when no migration has been applied.
var ErrNoVersion = migrate.ErrNilVersion

func newMigrate(dbURL string) (*migrate.Migrate, error) {
	dialect, dsn, err := ParseURL(dbURL)
	if err != nil {
		return nil, err
	}

	migrationsFS, err := fs.Sub(migrations.Migrations, path.Join("migrations", string(dialect)))
	if err != nil {
		return nil, fmt.Errorf("failed to get embedded migrations: %w", err)
	}

	d, err := iofs.New(migrationsFS, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to create iofs driver: %w", err)
	}

	target := dbURL
	if dialect == SQLite {
		target = "sqlite3://" + dsn
	}

	m, err := migrate.NewWithSourceInstance("iofs", d, target)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return m, nil
}

func closeMigrate(m *migrate.Migrate) {
	_, _ = m.Close()
}

// Migrate applies all pending migrations and returns the resulting schema
// version. An up-to-date database is not an error.
func Migrate(dbURL string) (uint, error) {
	m, err := newMigrate(dbURL)
	if err != nil {
		return 0, err
	}
	defer closeMigrate(m)

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("migration failed: %w", err)
	}

	version, _, err := m.Version()
	if err != nil {
		return 0, fmt.Errorf("failed to read version: %w", err)
	}
	return version, nil
}

// MigrateDown rolls back steps migrations and returns the resulting schema
// version, 0 when every migration has been rolled back.
func MigrateDown(dbURL string, steps int) (uint, error) {
	if steps < 1 {
		return 0, fmt.Errorf("steps must be positive, got %d", steps)
	}

	m, err := newMigrate(dbURL)
	if err != nil {
		return 0, err
	}
	defer closeMigrate(m)

	if err := m.Steps(-steps); err != nil {
		return 0, fmt.Errorf("rollback failed: %w", err)
	}

	version, _, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read version: %w", err)
	}
	return version, nil
}

// MigrationVersion reports the applied schema version and whether the last
// migration left the database dirty. It returns ErrNoVersion for a database
// no migration has touched.
func MigrationVersion(dbURL string) (uint, bool, error) {
	m, err := newMigrate(dbURL)
	if err != nil {
		return 0, false, err
	}
	defer closeMigrate(m)

	return m.Version()
}
