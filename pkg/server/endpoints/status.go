package endpoints

import (
	"net/http"

	"github.com/doodlesbykumbi/incidentd/pkg/server"
	"github.com/doodlesbykumbi/incidentd/pkg/server/store"
)

// StatusResponse represents the response from GET /
type StatusResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Error   string `json:"error,omitempty"`
}

// RegisterStatusEndpoints registers the service status endpoint
func RegisterStatusEndpoints(s *server.Server) {
	// GET / - Service status and database connectivity
	s.Router.HandleFunc("/", handleStatus(s.HealthStore, s.Version)).Methods("GET")
}

func handleStatus(healthStore store.HealthStore, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := healthStore.CheckConnectivity(r.Context()); err != nil {
			respondWithJSON(w, http.StatusServiceUnavailable, StatusResponse{
				Status: "error",
				Error:  "database connectivity check failed",
			})
			return
		}

		respondWithJSON(w, http.StatusOK, StatusResponse{
			Status:  "ok",
			Version: version,
		})
	}
}
