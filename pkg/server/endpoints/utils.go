package endpoints

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/doodlesbykumbi/incidentd/pkg/audit"
	"github.com/doodlesbykumbi/incidentd/pkg/server/middleware"
)

// MessageResponse is the body of every non-validation error.
type MessageResponse struct {
	Message string `json:"message"`
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, MessageResponse{Message: message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

// requestLogger annotates logger with the id of the request being served.
func requestLogger(logger *slog.Logger, r *http.Request) *slog.Logger {
	if req, ok := middleware.FromContext(r.Context()); ok {
		return logger.With("request_id", req.ID)
	}
	return logger
}

// auditClient identifies the caller for audit events.
func auditClient(r *http.Request) audit.Client {
	req, _ := middleware.FromContext(r.Context())
	return audit.Client{IP: req.ClientIP, RequestID: req.ID}
}
