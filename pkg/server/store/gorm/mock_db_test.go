package gorm

import (
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// MockDB wraps sqlmock behind GORM's postgres dialector
type MockDB struct {
	DB     *sql.DB
	Mock   sqlmock.Sqlmock
	GormDB *gorm.DB
}

// NewMockDB creates a new mock database connection
func NewMockDB(t *testing.T) *MockDB {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}

	gormDB, err := gorm.Open(
		postgres.New(postgres.Config{
			Conn:                 db,
			PreferSimpleProtocol: true,
		}),
		&gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		},
	)
	if err != nil {
		_ = db.Close()
		t.Fatalf("failed to open gorm: %v", err)
	}

	m := &MockDB{DB: db, Mock: mock, GormDB: gormDB}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unfulfilled expectations: %v", err)
		}
		_ = db.Close()
	})
	return m
}
