package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ahmetcoskunkizilkaya/coaching-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/coaching-backend/internal/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	SubscriptionActive    = "active"
	SubscriptionCancelled = "cancelled"
	SubscriptionExpired   = "expired"
)

var ErrNoActiveSubscription = errors.New("clinic has no active subscription")

// SubscriptionEvent is a billing change for a clinic.
type SubscriptionEvent struct {
	Type   string // PURCHASE, RENEWAL, CANCELLATION, EXPIRATION
	TierID *uuid.UUID
	At     time.Time
}

// SubscriptionService keeps a clinic's tier catalogue and its subscription
// history.
type SubscriptionService struct {
	db *gorm.DB
}

func NewSubscriptionService(db *gorm.DB) *SubscriptionService {
	return &SubscriptionService{db: db}
}

func (s *SubscriptionService) CreateTier(ctx context.Context, clinicID uuid.UUID, name string, priceCents int64, maxClients int) (*models.SubscriptionTier, error) {
	tier := models.SubscriptionTier{
		ID:         uuid.New(),
		ClinicID:   clinicID,
		Name:       name,
		PriceCents: priceCents,
		MaxClients: maxClients,
	}
	if err := s.db.WithContext(ctx).Create(&tier).Error; err != nil {
		return nil, fmt.Errorf("failed to create tier: %w", err)
	}
	return &tier, nil
}

func (s *SubscriptionService) HandleEvent(ctx context.Context, clinicID uuid.UUID, event SubscriptionEvent) error {
	if event.At.IsZero() {
		event.At = time.Now()
	}
	switch event.Type {
	case "PURCHASE":
		return s.handlePurchase(ctx, clinicID, event)
	case "RENEWAL":
		return s.handleRenewal(ctx, clinicID, event)
	case "CANCELLATION":
		return s.closeCurrent(ctx, clinicID, SubscriptionCancelled, event.At)
	case "EXPIRATION":
		return s.closeCurrent(ctx, clinicID, SubscriptionExpired, event.At)
	default:
		return nil
	}
}

// handlePurchase ends any running subscription and starts a new one.
func (s *SubscriptionService) handlePurchase(ctx context.Context, clinicID uuid.UUID, event SubscriptionEvent) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.SubscriptionHistory{}).
			Scopes(tenant.ForClinic(clinicID)).
			Where("status = ?", SubscriptionActive).
			Updates(map[string]interface{}{"status": SubscriptionCancelled, "ended_at": event.At}).Error; err != nil {
			return err
		}
		return tx.Create(&models.SubscriptionHistory{
			ID:        uuid.New(),
			ClinicID:  clinicID,
			TierID:    event.TierID,
			Status:    SubscriptionActive,
			StartedAt: event.At,
		}).Error
	})
}

func (s *SubscriptionService) handleRenewal(ctx context.Context, clinicID uuid.UUID, event SubscriptionEvent) error {
	current, err := s.Current(ctx, clinicID)
	if err != nil {
		return err
	}
	if current == nil {
		return s.handlePurchase(ctx, clinicID, event)
	}
	if event.TierID == nil {
		return nil
	}
	return s.db.WithContext(ctx).Model(current).Update("tier_id", *event.TierID).Error
}

func (s *SubscriptionService) closeCurrent(ctx context.Context, clinicID uuid.UUID, status string, at time.Time) error {
	res := s.db.WithContext(ctx).Model(&models.SubscriptionHistory{}).
		Scopes(tenant.ForClinic(clinicID)).
		Where("status = ?", SubscriptionActive).
		Updates(map[string]interface{}{"status": status, "ended_at": at})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNoActiveSubscription
	}
	return nil
}

// Current returns the clinic's active subscription, or nil.
func (s *SubscriptionService) Current(ctx context.Context, clinicID uuid.UUID) (*models.SubscriptionHistory, error) {
	var sub models.SubscriptionHistory
	err := s.db.WithContext(ctx).
		Scopes(tenant.ForClinic(clinicID)).
		Where("status = ?", SubscriptionActive).
		Order("started_at DESC").
		First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load subscription: %w", err)
	}
	return &sub, nil
}

func (s *SubscriptionService) History(ctx context.Context, clinicID uuid.UUID) ([]models.SubscriptionHistory, error) {
	var out []models.SubscriptionHistory
	err := s.db.WithContext(ctx).
		Scopes(tenant.ForClinic(clinicID)).
		Order("started_at").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	return out, nil
}
