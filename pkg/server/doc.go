// Package server provides the HTTP server for the incidents API.
//
// It uses gorilla/mux for routing and gorilla/handlers for access logging
// and panic recovery. Every response carries an X-Request-Id header.
//
// # Server Setup
//
//	srv := server.NewServer(db, cfg, logger, auditor, version)
//	endpoints.RegisterAll(srv)
//	if err := srv.Start(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Components
//
// The Server struct holds:
//
//   - Router: HTTP request router
//   - DB: Database connection
//   - IncidentsStore, HealthStore: persistence behind the handlers
//   - Auditor: RFC5424 audit trail (nil when disabled)
//
// # Endpoints
//
// API endpoints are registered via the endpoints subpackage:
//
//   - GET /incidents, POST /incidents
//   - GET /incidents/{id}, DELETE /incidents/{id}
//   - GET / (service status)
//
// Unknown routes answer 404 and known routes with the wrong method answer
// 405, both with a JSON {"message": ...} body.
package server
