package model

import (
	"time"

	"gorm.io/gorm"
)

// Incident is a single reported incident. ID and ReportedAt are assigned on
// insert and never change afterwards.
type Incident struct {
	ID          int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Title       string    `gorm:"column:title;not null"`
	Description string    `gorm:"column:description;not null"`
	Severity    Severity  `gorm:"column:severity;type:varchar(50);not null"`
	ReportedAt  time.Time `gorm:"column:reported_at;not null"`
}

func (Incident) TableName() string {
	return "incidents"
}

// BeforeCreate stamps ReportedAt with the current UTC instant, truncated to
// the microsecond precision postgres stores.
func (i *Incident) BeforeCreate(tx *gorm.DB) error {
	if i.ReportedAt.IsZero() {
		i.ReportedAt = time.Now().UTC().Truncate(time.Microsecond)
	} else {
		i.ReportedAt = i.ReportedAt.UTC()
	}
	return nil
}

func (i *Incident) AfterFind(tx *gorm.DB) error {
	i.ReportedAt = i.ReportedAt.UTC()
	return nil
}
