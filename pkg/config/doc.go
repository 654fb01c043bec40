// Package config provides configuration management for incidentd.
//
// Configuration is resolved in three layers, each overriding the previous:
// built-in defaults, the YAML file at $INCIDENTS_CONFIG_PATH/incidents.yml
// (default /etc/incidents/incidents.yml) and environment variables. The
// source of every attribute is tracked and reported by
// "incidentctl configuration show".
//
// # Environment Variables
//
//   - INCIDENTS_BIND_ADDRESS, PORT: HTTP listen address
//   - DATABASE_URL: database connection (postgres:// or sqlite3://)
//   - INCIDENTS_LOG_LEVEL, INCIDENTS_LOG_FORMAT: application logging
//   - INCIDENTS_READ_TIMEOUT, INCIDENTS_WRITE_TIMEOUT, INCIDENTS_SHUTDOWN_TIMEOUT: seconds
//   - INCIDENTS_MAX_REQUEST_BYTES: request body limit
//   - INCIDENTS_AUDIT_ENABLED: audit trail on/off
//
// A Watcher reports changes to the config file while the server runs.
package config
