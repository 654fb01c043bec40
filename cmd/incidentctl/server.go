package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/doodlesbykumbi/incidentd/pkg/audit"
	"github.com/doodlesbykumbi/incidentd/pkg/config"
	"github.com/doodlesbykumbi/incidentd/pkg/db"
	"github.com/doodlesbykumbi/incidentd/pkg/logging"
	"github.com/doodlesbykumbi/incidentd/pkg/server"
	"github.com/doodlesbykumbi/incidentd/pkg/server/endpoints"
)

const (
	connectAttempts      = 10
	connectRetryInterval = 2 * time.Second
)

// serverCmd represents the server command
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Run the incidents HTTP server",
	Long: `Run the incidents HTTP server.

The database is selected by DATABASE_URL (postgres://... or sqlite3://path).
Set AUDIT_DATABASE_URL to also persist audit events to PostgreSQL.

By default, database migrations are run on startup. Use --no-migrate to skip.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
			os.Exit(1)
		}

		if cmd.Flags().Changed("bind-address") {
			cfg.BindAddress, _ = cmd.Flags().GetString("bind-address")
		}
		if cmd.Flags().Changed("port") {
			cfg.Port, _ = cmd.Flags().GetInt("port")
		}
		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
			os.Exit(1)
		}

		noMigrate, _ := cmd.Flags().GetBool("no-migrate")
		if err := runServer(cfg, !noMigrate); err != nil {
			fmt.Fprintf(os.Stderr, "Server failed: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)

	serverCmd.Flags().StringP("bind-address", "b", "", "server bind address (overrides bind_address)")
	serverCmd.Flags().IntP("port", "p", 0, "server listen port (overrides port)")
	serverCmd.Flags().Bool("no-migrate", false, "skip running database migrations on start")
}

// loadConfig loads and validates the configuration.
func loadConfig() (*config.IncidentsConfig, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// connect opens the configured database, retrying while it comes up.
func connect(cfg *config.IncidentsConfig) (*gorm.DB, error) {
	return db.Connect(db.Config{
		URL:           cfg.DatabaseURL,
		Debug:         logging.ParseLevel(cfg.LogLevel) == slog.LevelDebug,
		Attempts:      connectAttempts,
		RetryInterval: connectRetryInterval,
	})
}

func runServer(cfg *config.IncidentsConfig, migrate bool) error {
	logger, level := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)

	if migrate {
		logger.Info("running database migrations")
		schemaVersion, err := db.Migrate(cfg.DatabaseURL)
		if err != nil {
			return err
		}
		logger.Info("database schema is up to date", "version", schemaVersion)
	}

	gdb, err := connect(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close(gdb) }()

	auditor, auditStore, err := newAuditor(cfg, logger)
	if err != nil {
		return err
	}
	if auditStore != nil {
		defer func() { _ = auditStore.Close() }()
	}

	s := server.NewServer(gdb, cfg, logger, auditor, version)
	endpoints.RegisterAll(s)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	watchConfig(ctx, cfg, logger, level)

	errCh := make(chan error, 1)
	go func() { errCh <- s.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down", "timeout", cfg.ShutdownTimeoutDuration())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeoutDuration())
	defer cancel()
	if err := s.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return <-errCh
}

// newAuditor builds the audit logger, or returns nil when auditing is
// disabled. Events are also persisted when AUDIT_DATABASE_URL is set.
func newAuditor(cfg *config.IncidentsConfig, logger *slog.Logger) (*audit.Logger, *audit.Store, error) {
	if !cfg.AuditEnabled {
		return nil, nil, nil
	}

	store, err := audit.NewStore(os.Getenv("AUDIT_DATABASE_URL"))
	if err != nil {
		return nil, nil, err
	}
	if store != nil {
		if err := store.EnsureSchema(context.Background()); err != nil {
			_ = store.Close()
			return nil, nil, err
		}
	}

	return audit.NewLogger(os.Stdout, store, logger), store, nil
}

// watchConfig applies log level changes from the config file until ctx is
// done. A missing config directory disables watching.
func watchConfig(ctx context.Context, current *config.IncidentsConfig, logger *slog.Logger, level *slog.LevelVar) {
	watcher, err := config.NewWatcher(current.ConfigFilePath(), logger)
	if err != nil {
		logger.Debug("config file not watched", "error", err)
		return
	}

	go func() {
		defer func() { _ = watcher.Close() }()
		watcher.Run(ctx, func(next *config.IncidentsConfig) {
			level.Set(logging.ParseLevel(next.LogLevel))
			logger.Info("log level updated", "level", next.LogLevel)
			if changed := restartRequired(current, next); len(changed) > 0 {
				logger.Warn("configuration changes require a restart", "attributes", changed)
			}
		})
	}()
}

// restartRequired lists the attributes, other than log_level, whose values
// differ between old and next.
func restartRequired(old, next *config.IncidentsConfig) []string {
	previous := make(map[string]string)
	for _, attr := range old.Attributes() {
		previous[attr.Name] = attr.Value
	}

	var changed []string
	for _, attr := range next.Attributes() {
		if attr.Name == "log_level" {
			continue
		}
		if previous[attr.Name] != attr.Value {
			changed = append(changed, attr.Name)
		}
	}
	return changed
}
