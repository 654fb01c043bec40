package integration

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"

	"github.com/doodlesbykumbi/incidentd/pkg/db"
)

// TestContext holds all the resources needed for integration tests
type TestContext struct {
	DB          *gorm.DB
	Container   testcontainers.Container
	DatabaseURL string
	HTTPClient  *http.Client
	Server      *ServerInstance
}

// NewTestContext starts a PostgreSQL testcontainer, migrates it and starts
// an incidents server against it.
// Modes:
//   - Binary mode (default): Set INCIDENTS_BINARY to the path of the incidentctl binary
//   - Inline mode: Set INCIDENTS_INLINE=1 to run the server in-process (no binary needed)
func NewTestContext(ctx context.Context) (*TestContext, error) {
	inlineMode := os.Getenv("INCIDENTS_INLINE") == "1"
	binaryPath := os.Getenv("INCIDENTS_BINARY")

	if !inlineMode && binaryPath == "" {
		return nil, fmt.Errorf("Either INCIDENTS_BINARY or INCIDENTS_INLINE=1 is required.\n\nBinary mode:\n  go build -o incidentctl ./cmd/incidentctl\n  INTEGRATION_TEST=1 INCIDENTS_BINARY=$(pwd)/incidentctl go test -v ./test/integration/...\n\nInline mode:\n  INTEGRATION_TEST=1 INCIDENTS_INLINE=1 go test -v ./test/integration/...")
	}

	if !inlineMode {
		if _, err := os.Stat(binaryPath); err != nil {
			return nil, fmt.Errorf("INCIDENTS_BINARY path does not exist: %s", binaryPath)
		}
		log.Printf("Using binary: %s", binaryPath)
	} else {
		log.Println("Using inline server mode")
	}

	pgContainer, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("incidents_test"),
		tcpostgres.WithUsername("incidents"),
		tcpostgres.WithPassword("incidents"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start postgres container: %w", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to get connection string: %w", err)
	}

	if _, err := db.Migrate(connStr); err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	gdb, err := db.Connect(db.Config{URL: connStr, Attempts: 5, RetryInterval: time.Second})
	if err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	var instance *ServerInstance
	if inlineMode {
		instance, err = startInlineServer(gdb)
	} else {
		instance, err = startBinaryServer(binaryPath, connStr)
	}
	if err != nil {
		_ = db.Close(gdb)
		_ = pgContainer.Terminate(ctx)
		return nil, err
	}

	return &TestContext{
		DB:          gdb,
		Container:   pgContainer,
		DatabaseURL: connStr,
		HTTPClient:  &http.Client{Timeout: 10 * time.Second},
		Server:      instance,
	}, nil
}

// ServerURL is the base URL of the running server.
func (tc *TestContext) ServerURL() string {
	return tc.Server.ServerURL
}

// Close cleans up all test resources
func (tc *TestContext) Close(ctx context.Context) {
	if tc.Server != nil {
		tc.Server.Stop()
	}
	if tc.DB != nil {
		_ = db.Close(tc.DB)
	}
	if tc.Container != nil {
		_ = tc.Container.Terminate(ctx)
	}
}
