package endpoints

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/doodlesbykumbi/incidentd/pkg/model"
	"github.com/doodlesbykumbi/incidentd/pkg/server/store"
)

// MockIncidentsStore implements store.IncidentsStore for testing using testify/mock
type MockIncidentsStore struct {
	mock.Mock
}

var _ store.IncidentsStore = (*MockIncidentsStore)(nil)

func NewMockIncidentsStore() *MockIncidentsStore {
	return &MockIncidentsStore{}
}

func (m *MockIncidentsStore) CreateIncident(ctx context.Context, inc *model.Incident) error {
	args := m.Called(ctx, inc)
	return args.Error(0)
}

func (m *MockIncidentsStore) ListIncidents(ctx context.Context) ([]model.Incident, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Incident), args.Error(1)
}

func (m *MockIncidentsStore) GetIncident(ctx context.Context, id int64) (*model.Incident, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Incident), args.Error(1)
}

func (m *MockIncidentsStore) DeleteIncident(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockHealthStore implements store.HealthStore for testing using testify/mock
type MockHealthStore struct {
	mock.Mock
}

var _ store.HealthStore = (*MockHealthStore)(nil)

func NewMockHealthStore() *MockHealthStore {
	return &MockHealthStore{}
}

func (m *MockHealthStore) CheckConnectivity(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
