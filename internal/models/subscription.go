package models

import (
	"time"

	"github.com/google/uuid"
)

type SubscriptionTier struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ClinicID   uuid.UUID `gorm:"type:uuid;not null;index" json:"clinic_id"`
	Name       string    `gorm:"size:100;not null" json:"name"`
	PriceCents int64     `json:"price_cents"`
	MaxClients int       `json:"max_clients"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type SubscriptionHistory struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ClinicID  uuid.UUID  `gorm:"type:uuid;not null;index" json:"clinic_id"`
	TierID    *uuid.UUID `gorm:"type:uuid" json:"tier_id"`
	Status    string     `gorm:"size:50;not null" json:"status"`
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at"`
	CreatedAt time.Time  `json:"created_at"`
}

func (SubscriptionHistory) TableName() string { return "subscription_history" }
