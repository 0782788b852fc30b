package testutil

import (
	"testing"

	"github.com/ahmetcoskunkizilkaya/coaching-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Create inserts value and fails the test on error.
func Create(t testing.TB, db *gorm.DB, value interface{}) {
	t.Helper()
	if err := db.Create(value).Error; err != nil {
		t.Fatalf("create %T: %v", value, err)
	}
}

// Count returns the number of model rows matching query.
func Count(t testing.TB, db *gorm.DB, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	q := db.Model(model)
	if query != "" {
		q = q.Where(query, args...)
	}
	if err := q.Count(&n).Error; err != nil {
		t.Fatalf("count %T: %v", model, err)
	}
	return n
}

func Clinic(t testing.TB, db *gorm.DB, name string) models.Clinic {
	t.Helper()
	c := models.Clinic{ID: uuid.New(), Name: name, Email: "front-desk@" + name + ".test"}
	Create(t, db, &c)
	return c
}

// Account inserts an active account with placeholder credentials. Use the
// account service when a real digest is needed.
func Account(t testing.TB, db *gorm.DB, clinicID *uuid.UUID, role, email string) models.Account {
	t.Helper()
	a := models.Account{
		ID:           uuid.New(),
		Email:        email,
		Name:         email,
		Role:         role,
		PasswordHash: "x",
		PasswordSalt: "x",
		IsActive:     true,
		ClinicID:     clinicID,
	}
	Create(t, db, &a)
	return a
}

// Client inserts a client record and its profile for account.
func Client(t testing.TB, db *gorm.DB, clinicID uuid.UUID, account *models.Account, coachID *uuid.UUID) models.ClientRecord {
	t.Helper()
	c := models.ClientRecord{
		ID:       uuid.New(),
		ClinicID: clinicID,
		Email:    account.Email,
		Name:     account.Name,
		CoachID:  coachID,
	}
	id := account.ID
	c.AccountID = &id
	Create(t, db, &c)
	Create(t, db, &models.ClientProfile{ID: uuid.New(), ClientID: c.ID, Goals: "sleep more"})
	return c
}

// Activity inserts one row of each email-keyed secondary table for email.
func Activity(t testing.TB, db *gorm.DB, email string, accountID *uuid.UUID, coachID *uuid.UUID) {
	t.Helper()
	Create(t, db, &models.CheckIn{ID: uuid.New(), Email: email, AccountID: accountID, CoachID: coachID, WeightKg: 80})
	Create(t, db, &models.Notification{ID: uuid.New(), Email: email, AccountID: accountID, Title: "hello"})
	Create(t, db, &models.AIReview{ID: uuid.New(), Email: email, AccountID: accountID, Summary: "steady"})
}

func Message(t testing.TB, db *gorm.DB, sender, receiver string) models.Message {
	t.Helper()
	m := models.Message{ID: uuid.New(), Sender: sender, Receiver: receiver, Body: "hi"}
	Create(t, db, &m)
	return m
}

func Ptr[T any](v T) *T {
	return &v
}
