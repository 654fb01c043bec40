package gorm

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/doodlesbykumbi/incidentd/pkg/model"
	"github.com/doodlesbykumbi/incidentd/pkg/server/store"
)

// Ensure IncidentsStore implements store.IncidentsStore
var _ store.IncidentsStore = (*IncidentsStore)(nil)

// IncidentsStore implements store.IncidentsStore using GORM
type IncidentsStore struct {
	db *gorm.DB
}

// NewIncidentsStore creates a new IncidentsStore
func NewIncidentsStore(db *gorm.DB) *IncidentsStore {
	return &IncidentsStore{db: db}
}

// CreateIncident inserts inc and fills in the generated id and reported_at.
func (s *IncidentsStore) CreateIncident(ctx context.Context, inc *model.Incident) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(inc).Error
	})
	if err != nil {
		return &store.StorageError{Op: "create", Err: err}
	}
	return nil
}

// ListIncidents returns all incidents, newest first.
func (s *IncidentsStore) ListIncidents(ctx context.Context) ([]model.Incident, error) {
	incidents := make([]model.Incident, 0)
	err := s.db.WithContext(ctx).
		Order("reported_at desc").
		Order("id desc").
		Find(&incidents).Error
	if err != nil {
		return nil, &store.StorageError{Op: "list", Err: err}
	}
	return incidents, nil
}

// GetIncident retrieves an incident by id.
func (s *IncidentsStore) GetIncident(ctx context.Context, id int64) (*model.Incident, error) {
	var inc model.Incident
	err := s.db.WithContext(ctx).Where("id = ?", id).Take(&inc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, store.ErrIncidentNotFound
		}
		return nil, &store.StorageError{Op: "get", Err: err}
	}
	return &inc, nil
}

// DeleteIncident removes an incident by id.
func (s *IncidentsStore) DeleteIncident(ctx context.Context, id int64) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ?", id).Delete(&model.Incident{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return store.ErrIncidentNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrIncidentNotFound) {
			return err
		}
		return &store.StorageError{Op: "delete", Err: err}
	}
	return nil
}
