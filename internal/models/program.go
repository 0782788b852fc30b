package models

import (
	"time"

	"github.com/google/uuid"
)

type Program struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ClinicID      uuid.UUID `gorm:"type:uuid;not null;index" json:"clinic_id"`
	Name          string    `gorm:"size:255;not null" json:"name"`
	Description   string    `gorm:"type:text" json:"description"`
	DurationWeeks int       `json:"duration_weeks"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Activity is an audit-style feed entry scoped to a clinic.
type Activity struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ClinicID    uuid.UUID `gorm:"type:uuid;not null;index" json:"clinic_id"`
	Kind        string    `gorm:"size:50" json:"kind"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}
