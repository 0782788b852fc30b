package models

import (
	"time"

	"github.com/google/uuid"
)

type CheckIn struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Email     string     `gorm:"size:255;not null;index" json:"email"`
	AccountID *uuid.UUID `gorm:"type:uuid;index" json:"account_id"`
	CoachID   *uuid.UUID `gorm:"type:uuid;index" json:"coach_id"`
	WeightKg  float64    `json:"weight_kg"`
	Mood      int        `json:"mood"`
	Notes     string     `gorm:"type:text" json:"notes"`
	CreatedAt time.Time  `json:"created_at"`
}

// Message rows reference both parties by email.
type Message struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Sender    string     `gorm:"size:255;not null;index" json:"sender"`
	Receiver  string     `gorm:"size:255;not null;index" json:"receiver"`
	Body      string     `gorm:"type:text" json:"body"`
	ReadAt    *time.Time `json:"read_at"`
	CreatedAt time.Time  `json:"created_at"`
}

type Notification struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Email     string     `gorm:"size:255;not null;index" json:"email"`
	AccountID *uuid.UUID `gorm:"type:uuid;index" json:"account_id"`
	Title     string     `gorm:"size:255" json:"title"`
	Body      string     `gorm:"type:text" json:"body"`
	Read      bool       `gorm:"not null" json:"read"`
	CreatedAt time.Time  `json:"created_at"`
}

type AIReview struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Email     string     `gorm:"size:255;not null;index" json:"email"`
	AccountID *uuid.UUID `gorm:"type:uuid;index" json:"account_id"`
	Summary   string     `gorm:"type:text" json:"summary"`
	CreatedAt time.Time  `json:"created_at"`
}

func (AIReview) TableName() string { return "ai_reviews" }

// DailyMessage is keyed by account id rather than email.
type DailyMessage struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Content   string    `gorm:"type:text" json:"content"`
	SendOn    time.Time `json:"send_on"`
	CreatedAt time.Time `json:"created_at"`
}
