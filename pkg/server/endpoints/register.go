package endpoints

import (
	"github.com/doodlesbykumbi/incidentd/pkg/server"
)

// RegisterAll registers all API endpoints on the server
func RegisterAll(srv *server.Server) {
	RegisterIncidentsEndpoints(srv)
	RegisterStatusEndpoints(srv)
}
