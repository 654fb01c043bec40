// Package store provides storage abstractions for the incidentd server.
//
// This package defines interfaces for database operations, allowing the
// server endpoints to be decoupled from the specific database implementation
// and tested with mocks.
//
// # Available Stores
//
//   - IncidentsStore: create, list, fetch and delete incidents
//   - HealthStore: database connectivity checks
//
// # Usage
//
//	incidents := gorm.NewIncidentsStore(db)
//	inc, err := incidents.GetIncident(ctx, 42)
//	if err != nil {
//	    if errors.Is(err, store.ErrIncidentNotFound) {
//	        // Handle not found
//	    }
//	}
package store
