package models

import (
	"time"

	"github.com/google/uuid"
)

// ClientRecord is the coaching-side record of a client account. Email mirrors
// the account email; AccountID is the stable key.
type ClientRecord struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ClinicID  uuid.UUID  `gorm:"type:uuid;not null;index" json:"clinic_id"`
	AccountID *uuid.UUID `gorm:"type:uuid;index" json:"account_id"`
	Email     string     `gorm:"size:255;not null;uniqueIndex" json:"email"`
	Name      string     `gorm:"size:255" json:"name"`
	Phone     string     `gorm:"size:50" json:"phone"`
	CoachID   *uuid.UUID `gorm:"type:uuid;index" json:"coach_id"`
	ProgramID *uuid.UUID `gorm:"type:uuid;index" json:"program_id"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (ClientRecord) TableName() string { return "clients" }

type ClientProfile struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ClientID  uuid.UUID `gorm:"type:uuid;not null;index" json:"client_id"`
	Goals     string    `gorm:"type:text" json:"goals"`
	HeightCm  float64   `json:"height_cm"`
	WeightKg  float64   `json:"weight_kg"`
	Notes     string    `gorm:"type:text" json:"notes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
