// Command incidentctl runs and manages the incidents HTTP service.
//
// The service records operational incidents (title, description and a Low,
// Medium or High severity) and exposes them over a small JSON API:
//
//	GET    /incidents       list, most recently reported first
//	POST   /incidents       validate and create
//	GET    /incidents/{id}  fetch one
//	DELETE /incidents/{id}  delete one
//	GET    /                status and database connectivity
//
// # Quick Start
//
//	# SQLite, no setup needed
//	export DATABASE_URL=sqlite3://incidents.db
//
//	# Run database migrations
//	incidentctl db migrate
//
//	# Start the server
//	incidentctl server
//
// # Environment Variables
//
//   - DATABASE_URL: postgres://... or sqlite3://path (default: sqlite3://incidents.db)
//   - AUDIT_DATABASE_URL: optional PostgreSQL database for audit events
//   - INCIDENTS_CONFIG_PATH: directory holding incidents.yml (default: /etc/incidents)
//   - INCIDENTS_LOG_LEVEL: Log level (debug, info, warn, error)
//   - PORT: Server port (default: 5000)
package main
