package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/doodlesbykumbi/incidentd/pkg/audit"
	"github.com/doodlesbykumbi/incidentd/pkg/config"
	"github.com/doodlesbykumbi/incidentd/pkg/server/middleware"
	"github.com/doodlesbykumbi/incidentd/pkg/server/store"
	gormstore "github.com/doodlesbykumbi/incidentd/pkg/server/store/gorm"
)

type Server struct {
	Router  *mux.Router
	DB      *gorm.DB
	Config  *config.IncidentsConfig
	Logger  *slog.Logger
	Auditor *audit.Logger
	Version string

	// AccessLog receives one Apache common log line per request.
	AccessLog io.Writer

	// Store interfaces
	IncidentsStore store.IncidentsStore
	HealthStore    store.HealthStore

	srv *http.Server
}

// NewServer wires the GORM stores for db into a Server configured by cfg.
// A nil auditor disables the audit trail.
func NewServer(
	db *gorm.DB,
	cfg *config.IncidentsConfig,
	logger *slog.Logger,
	auditor *audit.Logger,
	version string,
) *Server {
	router := mux.NewRouter()
	router.NotFoundHandler = jsonMessageHandler(http.StatusNotFound, "Not found")
	router.MethodNotAllowedHandler = jsonMessageHandler(http.StatusMethodNotAllowed, "Method not allowed")

	srv := &http.Server{
		Addr:         cfg.Addr(),
		WriteTimeout: cfg.WriteTimeoutDuration(),
		ReadTimeout:  cfg.ReadTimeoutDuration(),
	}

	return &Server{
		Router:         router,
		DB:             db,
		Config:         cfg,
		Logger:         logger,
		Auditor:        auditor,
		Version:        version,
		AccessLog:      os.Stdout,
		IncidentsStore: gormstore.NewIncidentsStore(db),
		HealthStore:    gormstore.NewHealthStore(db),
		srv:            srv,
	}
}

// Handler returns the router wrapped in the request id, access log and
// panic recovery middleware.
func (s *Server) Handler() http.Handler {
	recovery := handlers.RecoveryHandler(
		handlers.RecoveryLogger(slog.NewLogLogger(s.Logger.Handler(), slog.LevelError)),
		handlers.PrintRecoveryStack(true),
	)
	return middleware.RequestID(
		handlers.LoggingHandler(s.AccessLog, recovery(s.Router)),
	)
}

// Start listens on the configured address and serves until Shutdown.
func (s *Server) Start() error {
	s.srv.Handler = s.Handler()
	s.Logger.Info("running server", "addr", s.srv.Addr, "version", s.Version)
	return ignoreClosed(s.srv.ListenAndServe())
}

// Serve accepts connections on l until Shutdown.
func (s *Server) Serve(l net.Listener) error {
	s.srv.Handler = s.Handler()
	s.Logger.Info("running server", "addr", l.Addr().String(), "version", s.Version)
	return ignoreClosed(s.srv.Serve(l))
}

// Shutdown stops accepting connections and waits for in-flight requests
// until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func ignoreClosed(err error) error {
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func jsonMessageHandler(code int, message string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": message})
	})
}
