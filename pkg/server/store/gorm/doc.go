// Package gorm provides GORM-based implementations of the store interfaces
// defined in the parent store package.
//
// The same implementations serve PostgreSQL and SQLite; the dialect is
// chosen when the *gorm.DB is opened (see pkg/db). Mutations run in their
// own transaction and driver failures are wrapped in *store.StorageError.
package gorm
