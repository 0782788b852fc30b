package models

import (
	"time"

	"github.com/google/uuid"
)

// Clinic is the tenant that owns accounts and clinic-scoped records.
type Clinic struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Email     string    `gorm:"size:255" json:"email"`
	Phone     string    `gorm:"size:50" json:"phone"`
	Address   string    `gorm:"size:500" json:"address"`
	LogoURL   *string   `gorm:"size:1024" json:"logo_url"`
	Coaches   int       `gorm:"not null;default:0" json:"coaches"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
