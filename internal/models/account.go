package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleAdmin       = "admin"
	RoleClinicAdmin = "clinic_admin"
	RoleCoach       = "coach"
	RoleClient      = "client"
)

func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleClinicAdmin, RoleCoach, RoleClient:
		return true
	}
	return false
}

// Account is a login-capable identity. Email is globally unique and is still
// used as a foreign key by several secondary tables.
type Account struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Email          string     `gorm:"not null;size:255;uniqueIndex" json:"email"`
	Name           string     `gorm:"size:255" json:"name"`
	PhoneNumber    string     `gorm:"size:50" json:"phone_number"`
	Role           string     `gorm:"size:20;not null;index" json:"role"`
	PasswordHash   string     `gorm:"not null" json:"-"`
	PasswordSalt   string     `gorm:"not null;size:64" json:"-"`
	PasswordParams string     `gorm:"size:64" json:"-"`
	IsActive       bool       `gorm:"not null" json:"is_active"`
	ClinicID       *uuid.UUID `gorm:"type:uuid;index" json:"clinic_id"`
	CoachID        *uuid.UUID `gorm:"type:uuid;index" json:"coach_id"`
	Clinic         *Clinic    `gorm:"foreignKey:ClinicID" json:"clinic,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// Sanitize clears the credential fields.
func (a *Account) Sanitize() *Account {
	if a == nil {
		return nil
	}
	a.PasswordHash = ""
	a.PasswordSalt = ""
	a.PasswordParams = ""
	return a
}
