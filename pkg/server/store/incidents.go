package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/doodlesbykumbi/incidentd/pkg/model"
)

// ErrIncidentNotFound is returned when no incident has the requested id
var ErrIncidentNotFound = errors.New("incident not found")

// StorageError reports a failed read or write against the durable store.
// Any transaction involved has been rolled back by the time it is returned.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// IncidentsStore abstracts incident storage operations
type IncidentsStore interface {
	// CreateIncident inserts inc in its own transaction and fills in the
	// assigned ID and ReportedAt.
	CreateIncident(ctx context.Context, inc *model.Incident) error

	// ListIncidents returns every incident, most recently reported first.
	// Incidents reported at the same instant are ordered by descending id.
	ListIncidents(ctx context.Context) ([]model.Incident, error)

	// GetIncident returns the incident with the given id.
	// Returns ErrIncidentNotFound if it doesn't exist.
	GetIncident(ctx context.Context, id int64) (*model.Incident, error)

	// DeleteIncident removes the incident with the given id in its own transaction.
	// Returns ErrIncidentNotFound if it doesn't exist.
	DeleteIncident(ctx context.Context, id int64) error
}
