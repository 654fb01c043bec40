package db

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Songmu/retry"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Dialect names a supported SQL backend.
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite3"
)

// ErrUnsupportedURL is returned for database URLs with an unknown scheme.
var ErrUnsupportedURL = errors.New("unsupported database URL")

// Config holds database connection configuration
type Config struct {
	// URL is the database connection URL. Its scheme selects the dialect.
	URL string
	// Debug enables GORM's SQL statement logging.
	Debug bool
	// Attempts is the number of connection attempts before giving up (minimum 1).
	Attempts uint
	// RetryInterval is the pause between connection attempts.
	RetryInterval time.Duration
}

// ParseURL splits a database URL into its dialect and the DSN the dialect's
// driver expects. Postgres URLs are passed through unchanged; SQLite URLs
// are reduced to the file path.
func ParseURL(rawURL string) (Dialect, string, error) {
	switch {
	case rawURL == "":
		return "", "", fmt.Errorf("%w: database URL is required", ErrUnsupportedURL)
	case strings.HasPrefix(rawURL, "postgres://"), strings.HasPrefix(rawURL, "postgresql://"):
		return Postgres, rawURL, nil
	case strings.HasPrefix(rawURL, "sqlite3://"):
		return sqliteDSN(strings.TrimPrefix(rawURL, "sqlite3://"))
	case strings.HasPrefix(rawURL, "sqlite://"):
		return sqliteDSN(strings.TrimPrefix(rawURL, "sqlite://"))
	}

	scheme, _, ok := strings.Cut(rawURL, "://")
	if !ok {
		return "", "", fmt.Errorf("%w: missing scheme", ErrUnsupportedURL)
	}
	return "", "", fmt.Errorf("%w: scheme %q", ErrUnsupportedURL, scheme)
}

func sqliteDSN(path string) (Dialect, string, error) {
	if path == "" {
		return "", "", fmt.Errorf("%w: sqlite path is required", ErrUnsupportedURL)
	}
	return SQLite, path, nil
}

// Connect opens a GORM handle for cfg.URL and verifies it with a ping,
// retrying up to cfg.Attempts times.
func Connect(cfg Config) (*gorm.DB, error) {
	dialect, dsn, err := ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	// Default to silent logging unless debug logging is requested
	logMode := logger.Silent
	if cfg.Debug {
		logMode = logger.Info
	}

	var dialector gorm.Dialector
	switch dialect {
	case Postgres:
		dialector = postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true, // disables implicit prepared statement usage
		})
	case SQLite:
		dialector = sqlite.Open(dsn)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 logger.Default.LogMode(logMode),
		DisableAutomaticPing:   true,
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database handle: %w", err)
	}

	if dialect == SQLite {
		// SQLite allows a single writer; the pragmas below stay bound to it.
		sqlDB.SetMaxOpenConns(1)
	}

	attempts := cfg.Attempts
	if attempts == 0 {
		attempts = 1
	}
	if err := retry.Retry(attempts, cfg.RetryInterval, sqlDB.Ping); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if dialect == SQLite {
		if err := applyPragmas(db); err != nil {
			_ = sqlDB.Close()
			return nil, err
		}
	}

	return db, nil
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *gorm.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if err := db.Exec(pragma).Error; err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// Close releases the connection pool behind db.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
