// Package model defines the database models for incidentd.
//
// This package contains GORM models that map to the incidents schema shipped
// in db/migrations. Models are passive structures; persistence lives behind
// the store interfaces in pkg/server/store.
//
// # Core Models
//
//   - Incident: a reported incident with title, description and severity
//   - Severity: the closed set of severities (Low, Medium, High)
//
// # Database Schema
//
//   - incidents: one row per incident, keyed by an auto-increment id
package model
