package gorm

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/doodlesbykumbi/incidentd/pkg/db"
	"github.com/doodlesbykumbi/incidentd/pkg/model"
	"github.com/doodlesbykumbi/incidentd/pkg/server/store"
)

func newSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()

	url := "sqlite3://" + filepath.Join(t.TempDir(), "incidents.db")
	_, err := db.Migrate(url)
	require.NoError(t, err)

	database, err := db.Connect(db.Config{URL: url})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(database) })
	return database
}

func TestIncidentsStore_SQLite(t *testing.T) {
	ctx := context.Background()
	s := NewIncidentsStore(newSQLiteDB(t))

	incidents, err := s.ListIncidents(ctx)
	require.NoError(t, err)
	assert.Empty(t, incidents)

	before := time.Now().UTC().Truncate(time.Microsecond)
	first := &model.Incident{Title: "Disk full", Description: "root volume at 98%", Severity: model.SeverityHigh}
	require.NoError(t, s.CreateIncident(ctx, first))
	assert.Equal(t, int64(1), first.ID)
	assert.False(t, first.ReportedAt.Before(before))

	second := &model.Incident{Title: "Latency", Description: "p99 above 2s", Severity: model.SeverityMedium}
	require.NoError(t, s.CreateIncident(ctx, second))
	assert.Greater(t, second.ID, first.ID)

	got, err := s.GetIncident(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, *first, *got)

	incidents, err = s.ListIncidents(ctx)
	require.NoError(t, err)
	require.Len(t, incidents, 2)
	assert.Equal(t, second.ID, incidents[0].ID)
	assert.Equal(t, first.ID, incidents[1].ID)

	require.NoError(t, s.DeleteIncident(ctx, first.ID))
	assert.ErrorIs(t, s.DeleteIncident(ctx, first.ID), store.ErrIncidentNotFound)

	_, err = s.GetIncident(ctx, first.ID)
	assert.ErrorIs(t, err, store.ErrIncidentNotFound)
}

func TestIncidentsStore_SQLite_SameInstantOrdersById(t *testing.T) {
	ctx := context.Background()
	s := NewIncidentsStore(newSQLiteDB(t))

	at := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	for _, title := range []string{"A", "B", "C"} {
		require.NoError(t, s.CreateIncident(ctx, &model.Incident{
			Title: title, Description: "d", Severity: model.SeverityLow, ReportedAt: at,
		}))
	}

	incidents, err := s.ListIncidents(ctx)
	require.NoError(t, err)
	require.Len(t, incidents, 3)
	assert.Equal(t, []string{"C", "B", "A"}, []string{incidents[0].Title, incidents[1].Title, incidents[2].Title})
}

func TestIncidentsStore_SQLite_RejectsUnknownSeverity(t *testing.T) {
	ctx := context.Background()
	database := newSQLiteDB(t)
	s := NewIncidentsStore(database)

	// Bypass the enum to prove the CHECK constraint holds
	err := database.Exec(
		`INSERT INTO incidents (title, description, severity, reported_at) VALUES (?, ?, ?, ?)`,
		"t", "d", "Critical", time.Now().UTC(),
	).Error
	assert.Error(t, err)

	incidents, err := s.ListIncidents(ctx)
	require.NoError(t, err)
	assert.Empty(t, incidents)
}

func TestHealthStore_SQLite(t *testing.T) {
	database := newSQLiteDB(t)
	assert.NoError(t, NewHealthStore(database).CheckConnectivity(context.Background()))

	require.NoError(t, db.Close(database))
	assert.Error(t, NewHealthStore(database).CheckConnectivity(context.Background()))
}
