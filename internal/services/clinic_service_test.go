package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/coaching-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/coaching-backend/internal/lifecycle"
	"github.com/ahmetcoskunkizilkaya/coaching-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/coaching-backend/internal/testutil"
	"github.com/google/uuid"
)

func TestClinicSettingsAndLogo(t *testing.T) {
	db := testutil.OpenDB(t)
	s := NewClinicService(db, lifecycle.NewEngine(db))
	ctx := context.Background()

	if _, err := s.CreateClinic(ctx, &dto.CreateClinicRequest{}); !errors.Is(err, ErrClinicNameRequired) {
		t.Errorf("empty name err = %v", err)
	}
	clinic, err := s.CreateClinic(ctx, &dto.CreateClinicRequest{Name: "Harbor"})
	if err != nil {
		t.Fatal(err)
	}

	if name, _ := s.ClinicName(ctx, clinic.ID); name != "Harbor" {
		t.Errorf("ClinicName = %q", name)
	}
	if name, err := s.ClinicName(ctx, uuid.New()); name != "" || err != nil {
		t.Errorf("unknown ClinicName = %q, %v", name, err)
	}

	updated, err := s.UpdateSettings(ctx, clinic.ID, &dto.UpdateClinicRequest{Name: "Harbor Health", Phone: "1"})
	if err != nil || updated.Name != "Harbor Health" {
		t.Fatalf("UpdateSettings = %+v, %v", updated, err)
	}

	for _, bad := range []string{"", "logo.png", "ftp://cdn.test/x.png", "https://"} {
		if _, err := s.SetLogo(ctx, clinic.ID, bad); !errors.Is(err, ErrInvalidLogoURL) {
			t.Errorf("SetLogo(%q) err = %v", bad, err)
		}
	}
	withLogo, err := s.SetLogo(ctx, clinic.ID, "https://cdn.test/harbor.png")
	if err != nil || withLogo.LogoURL == nil || *withLogo.LogoURL != "https://cdn.test/harbor.png" {
		t.Fatalf("SetLogo = %+v, %v", withLogo, err)
	}
	cleared, err := s.ClearLogo(ctx, clinic.ID)
	if err != nil || cleared.LogoURL != nil {
		t.Errorf("ClearLogo = %+v, %v", cleared, err)
	}
	if missing, err := s.ClearLogo(ctx, uuid.New()); missing != nil || err != nil {
		t.Errorf("ClearLogo unknown = %+v, %v", missing, err)
	}
}

func TestDeleteClinicRemovesTenant(t *testing.T) {
	db := testutil.OpenDB(t)
	s := NewClinicService(db, lifecycle.NewEngine(db))
	clinic := testutil.Clinic(t, db, "bye")
	testutil.Account(t, db, &clinic.ID, models.RoleCoach, "c@bye.test")

	report, err := s.DeleteClinic(context.Background(), clinic.ID)
	if err != nil || report.State != lifecycle.StateCommitted {
		t.Fatalf("DeleteClinic = %+v, %v", report, err)
	}
	if n := testutil.Count(t, db, &models.Clinic{}, ""); n != 0 {
		t.Errorf("clinics left: %d", n)
	}
}

func TestSubscriptionEvents(t *testing.T) {
	db := testutil.OpenDB(t)
	s := NewSubscriptionService(db)
	ctx := context.Background()
	clinic := testutil.Clinic(t, db, "billing")

	basic, err := s.CreateTier(ctx, clinic.ID, "basic", 1900, 20)
	if err != nil {
		t.Fatal(err)
	}
	pro, _ := s.CreateTier(ctx, clinic.ID, "pro", 4900, 100)

	if err := s.HandleEvent(ctx, clinic.ID, SubscriptionEvent{Type: "CANCELLATION"}); !errors.Is(err, ErrNoActiveSubscription) {
		t.Errorf("cancel without subscription err = %v", err)
	}

	t0 := time.Now().Add(-time.Hour)
	if err := s.HandleEvent(ctx, clinic.ID, SubscriptionEvent{Type: "PURCHASE", TierID: &basic.ID, At: t0}); err != nil {
		t.Fatal(err)
	}
	if err := s.HandleEvent(ctx, clinic.ID, SubscriptionEvent{Type: "PURCHASE", TierID: &pro.ID}); err != nil {
		t.Fatal(err)
	}

	current, err := s.Current(ctx, clinic.ID)
	if err != nil || current == nil || *current.TierID != pro.ID {
		t.Fatalf("Current = %+v, %v", current, err)
	}
	history, _ := s.History(ctx, clinic.ID)
	if len(history) != 2 || history[0].Status != SubscriptionCancelled || history[0].EndedAt == nil {
		t.Errorf("history = %+v", history)
	}

	if err := s.HandleEvent(ctx, clinic.ID, SubscriptionEvent{Type: "EXPIRATION"}); err != nil {
		t.Fatal(err)
	}
	if current, _ := s.Current(ctx, clinic.ID); current != nil {
		t.Errorf("still active after expiration: %+v", current)
	}
	if err := s.HandleEvent(ctx, clinic.ID, SubscriptionEvent{Type: "UNKNOWN"}); err != nil {
		t.Errorf("unknown event err = %v", err)
	}
}

func TestDirectoryDashboard(t *testing.T) {
	s, db := newAccountService(t)
	d := NewDirectoryService(db, s)
	ctx := context.Background()

	a := testutil.Clinic(t, db, "a")
	b := testutil.Clinic(t, db, "b")
	testutil.Account(t, db, &a.ID, models.RoleCoach, "c1@a.test")
	testutil.Account(t, db, &a.ID, models.RoleCoach, "c2@a.test")
	testutil.Account(t, db, &b.ID, models.RoleCoach, "c1@b.test")
	client := testutil.Account(t, db, &a.ID, models.RoleClient, "l@a.test")
	testutil.Client(t, db, a.ID, &client, nil)

	n, err := d.CountCoachesByClinic(ctx, a.ID)
	if err != nil || n != 2 {
		t.Errorf("CountCoachesByClinic = %d, %v", n, err)
	}
	coaches, _ := d.ListCoaches(ctx)
	if len(coaches) != 3 {
		t.Errorf("ListCoaches = %d", len(coaches))
	}

	dash, err := d.Dashboard(ctx)
	if err != nil {
		t.Fatal(err)
	}
	want := Dashboard{Clinics: 2, Coaches: 3, Clients: 1, ActiveAccounts: 4}
	if *dash != want {
		t.Errorf("Dashboard = %+v, want %+v", *dash, want)
	}
}
