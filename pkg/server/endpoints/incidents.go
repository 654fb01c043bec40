package endpoints

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/doodlesbykumbi/incidentd/pkg/audit"
	"github.com/doodlesbykumbi/incidentd/pkg/schema"
	"github.com/doodlesbykumbi/incidentd/pkg/server"
	"github.com/doodlesbykumbi/incidentd/pkg/server/store"
)

const (
	msgListFailed     = "Error retrieving incidents"
	msgSaveFailed     = "Error saving incident"
	msgNotFound       = "Incident not found"
	msgFetchFailed    = "Error retrieving details"
	msgDeleteFailed   = "Error deleting incident"
	msgBodyTooLarge   = "Request body too large"
	msgUnreadableBody = "Invalid JSON body"
)

func RegisterIncidentsEndpoints(s *server.Server) {
	router := s.Router
	incidentsStore := s.IncidentsStore
	auditor := s.Auditor
	logger := s.Logger

	// GET /incidents - List all incidents, newest first
	router.HandleFunc("/incidents", handleListIncidents(incidentsStore, logger)).Methods("GET")

	// POST /incidents - Validate and create an incident
	router.HandleFunc(
		"/incidents",
		handleCreateIncident(incidentsStore, auditor, logger, s.Config.MaxRequestBytes),
	).Methods("POST")

	// GET /incidents/{id} - Fetch a single incident
	router.HandleFunc("/incidents/{id:[0-9]+}", handleGetIncident(incidentsStore, auditor, logger)).Methods("GET")

	// DELETE /incidents/{id} - Delete an incident
	router.HandleFunc("/incidents/{id:[0-9]+}", handleDeleteIncident(incidentsStore, auditor, logger)).Methods("DELETE")
}

func handleListIncidents(incidentsStore store.IncidentsStore, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		incidents, err := incidentsStore.ListIncidents(r.Context())
		if err != nil {
			requestLogger(logger, r).Error("failed to list incidents", "error", err)
			respondWithError(w, http.StatusInternalServerError, msgListFailed)
			return
		}

		respondWithJSON(w, http.StatusOK, schema.DumpAll(incidents))
	}
}

func handleCreateIncident(
	incidentsStore store.IncidentsStore,
	auditor *audit.Logger,
	logger *slog.Logger,
	maxRequestBytes int64,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		client := auditClient(r)

		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBytes))
		if err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				respondWithError(w, http.StatusRequestEntityTooLarge, msgBodyTooLarge)
				return
			}
			respondWithError(w, http.StatusBadRequest, msgUnreadableBody)
			return
		}

		input, err := schema.Load(body)
		if err != nil {
			auditor.Log(r.Context(), audit.CreateEvent{Client: client, ErrorMessage: err.Error()})

			var inputErr *schema.InputError
			if errors.As(err, &inputErr) {
				respondWithError(w, http.StatusBadRequest, inputErr.Message)
				return
			}
			var validationErr *schema.ValidationError
			if errors.As(err, &validationErr) {
				respondWithJSON(w, http.StatusBadRequest, validationErr)
				return
			}
			requestLogger(logger, r).Error("failed to load incident", "error", err)
			respondWithError(w, http.StatusInternalServerError, msgSaveFailed)
			return
		}

		incident := input.Record()
		if err := incidentsStore.CreateIncident(r.Context(), incident); err != nil {
			requestLogger(logger, r).Error("failed to save incident", "error", err)
			auditor.Log(r.Context(), audit.CreateEvent{Client: client, ErrorMessage: msgSaveFailed})
			respondWithError(w, http.StatusInternalServerError, msgSaveFailed)
			return
		}

		auditor.Log(r.Context(), audit.CreateEvent{
			Client:           client,
			IncidentID:       incident.ID,
			IncidentSeverity: incident.Severity.String(),
			Success:          true,
		})
		respondWithJSON(w, http.StatusCreated, schema.Dump(*incident))
	}
}

func handleGetIncident(incidentsStore store.IncidentsStore, auditor *audit.Logger, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := incidentID(r)
		if !ok {
			respondWithError(w, http.StatusNotFound, msgNotFound)
			return
		}
		client := auditClient(r)

		incident, err := incidentsStore.GetIncident(r.Context(), id)
		if err != nil {
			if errors.Is(err, store.ErrIncidentNotFound) {
				auditor.Log(r.Context(), audit.FetchEvent{Client: client, IncidentID: id, ErrorMessage: msgNotFound})
				respondWithError(w, http.StatusNotFound, msgNotFound)
				return
			}
			requestLogger(logger, r).Error("failed to fetch incident", "id", id, "error", err)
			auditor.Log(r.Context(), audit.FetchEvent{Client: client, IncidentID: id, ErrorMessage: msgFetchFailed})
			respondWithError(w, http.StatusInternalServerError, msgFetchFailed)
			return
		}

		auditor.Log(r.Context(), audit.FetchEvent{Client: client, IncidentID: id, Success: true})
		respondWithJSON(w, http.StatusOK, schema.Dump(*incident))
	}
}

func handleDeleteIncident(incidentsStore store.IncidentsStore, auditor *audit.Logger, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := incidentID(r)
		if !ok {
			respondWithError(w, http.StatusNotFound, msgNotFound)
			return
		}
		client := auditClient(r)

		fail := func(code int, message string, err error) {
			if err != nil {
				requestLogger(logger, r).Error("failed to delete incident", "id", id, "error", err)
			}
			auditor.Log(r.Context(), audit.DeleteEvent{Client: client, IncidentID: id, ErrorMessage: message})
			respondWithError(w, code, message)
		}

		if _, err := incidentsStore.GetIncident(r.Context(), id); err != nil {
			if errors.Is(err, store.ErrIncidentNotFound) {
				fail(http.StatusNotFound, msgNotFound, nil)
				return
			}
			fail(http.StatusInternalServerError, msgDeleteFailed, err)
			return
		}

		// A concurrent delete may win between the lookup and the delete
		if err := incidentsStore.DeleteIncident(r.Context(), id); err != nil {
			if errors.Is(err, store.ErrIncidentNotFound) {
				fail(http.StatusNotFound, msgNotFound, nil)
				return
			}
			fail(http.StatusInternalServerError, msgDeleteFailed, err)
			return
		}

		auditor.Log(r.Context(), audit.DeleteEvent{Client: client, IncidentID: id, Success: true})
		w.WriteHeader(http.StatusNoContent)
	}
}

// incidentID parses the {id} route variable. Ids that overflow int64 cannot
// name a stored incident.
func incidentID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
