package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrate_SQLite(t *testing.T) {
	url := "sqlite3://" + filepath.Join(t.TempDir(), "incidents.db")

	_, _, err := MigrationVersion(url)
	assert.ErrorIs(t, err, ErrNoVersion)

	version, err := Migrate(url)
	require.NoError(t, err)
	assert.Equal(t, uint(20250101000000), version)

	// Already up to date
	version, err = Migrate(url)
	require.NoError(t, err)
	assert.Equal(t, uint(20250101000000), version)

	current, dirty, err := MigrationVersion(url)
	require.NoError(t, err)
	assert.Equal(t, version, current)
	assert.False(t, dirty)

	database, err := Connect(Config{URL: url})
	require.NoError(t, err)
	assert.True(t, database.Migrator().HasTable("incidents"))
	require.NoError(t, Close(database))

	version, err = MigrateDown(url, 1)
	require.NoError(t, err)
	assert.Zero(t, version)

	database, err = Connect(Config{URL: url})
	require.NoError(t, err)
	defer func() { _ = Close(database) }()
	assert.False(t, database.Migrator().HasTable("incidents"))
}

func TestMigrateDown_RejectsNonPositiveSteps(t *testing.T) {
	url := "sqlite3://" + filepath.Join(t.TempDir(), "incidents.db")

	_, err := MigrateDown(url, 0)
	assert.Error(t, err)
}

func TestMigrate_UnsupportedURL(t *testing.T) {
	_, err := Migrate("mysql://localhost/incidents")
	assert.ErrorIs(t, err, ErrUnsupportedURL)
}
