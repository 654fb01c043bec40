package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	_ "github.com/lib/pq"
)

// Store handles audit message persistence to database
type Store struct {
	db       *sql.DB
	hostname string
	procid   string
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS messages (
	facility INTEGER NOT NULL,
	severity INTEGER NOT NULL,
	timestamp TIMESTAMPTZ NOT NULL,
	hostname TEXT,
	appname TEXT,
	procid TEXT,
	msgid TEXT,
	sdata JSONB,
	message TEXT NOT NULL
)`

// NewStore opens the PostgreSQL audit database at dbURL.
// Returns nil if dbURL is empty (audit DB disabled).
func NewStore(dbURL string) (*Store, error) {
	if dbURL == "" {
		return nil, nil
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		return nil, err
	}

	return NewStoreWithDB(db), nil
}

// NewStoreWithDB creates a store with an existing database connection
// Useful for testing with sqlmock
func NewStoreWithDB(db *sql.DB) *Store {
	hostname, _ := os.Hostname()
	return &Store{db: db, hostname: hostname, procid: strconv.Itoa(os.Getpid())}
}

// EnsureSchema creates the messages table when it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if s.db == nil {
		return nil
	}
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to create audit schema: %w", err)
	}
	return nil
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Save persists an audit event logged at the given time
func (s *Store) Save(ctx context.Context, event Event, at time.Time) error {
	if s.db == nil {
		return nil
	}

	sdataJSON, err := json.Marshal(event.StructuredData())
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO messages (facility, severity, timestamp, hostname, appname, procid, msgid, sdata, message)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		event.Facility(),
		int(event.Severity()),
		at,
		s.hostname,
		AppName,
		s.procid,
		event.MessageID(),
		sdataJSON,
		event.Message(),
	)

	return err
}
