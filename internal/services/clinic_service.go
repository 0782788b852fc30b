package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/ahmetcoskunkizilkaya/coaching-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/coaching-backend/internal/lifecycle"
	"github.com/ahmetcoskunkizilkaya/coaching-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrClinicNameRequired = errors.New("clinic name is required")
	ErrInvalidLogoURL     = errors.New("logo url must be an absolute http or https url")
)

type ClinicService struct {
	db     *gorm.DB
	engine *lifecycle.Engine
}

func NewClinicService(db *gorm.DB, engine *lifecycle.Engine) *ClinicService {
	return &ClinicService{db: db, engine: engine}
}

func (s *ClinicService) CreateClinic(ctx context.Context, req *dto.CreateClinicRequest) (*models.Clinic, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, ErrClinicNameRequired
	}
	clinic := models.Clinic{
		ID:      uuid.New(),
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
	}
	if err := s.db.WithContext(ctx).Create(&clinic).Error; err != nil {
		return nil, fmt.Errorf("failed to create clinic: %w", err)
	}
	return &clinic, nil
}

// GetClinic returns the clinic, or nil when it does not exist.
func (s *ClinicService) GetClinic(ctx context.Context, id uuid.UUID) (*models.Clinic, error) {
	var clinic models.Clinic
	err := s.db.WithContext(ctx).First(&clinic, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load clinic: %w", err)
	}
	return &clinic, nil
}

// ClinicName returns "" for an unknown clinic.
func (s *ClinicService) ClinicName(ctx context.Context, id uuid.UUID) (string, error) {
	clinic, err := s.GetClinic(ctx, id)
	if err != nil || clinic == nil {
		return "", err
	}
	return clinic.Name, nil
}

func (s *ClinicService) UpdateSettings(ctx context.Context, id uuid.UUID, req *dto.UpdateClinicRequest) (*models.Clinic, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, ErrClinicNameRequired
	}
	return s.update(ctx, id, map[string]interface{}{
		"name":  req.Name,
		"email": req.Email,
		"phone": req.Phone,
	})
}

// SetLogo records the URL of an already uploaded logo.
func (s *ClinicService) SetLogo(ctx context.Context, id uuid.UUID, rawURL string) (*models.Clinic, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, ErrInvalidLogoURL
	}
	return s.update(ctx, id, map[string]interface{}{"logo_url": u.String()})
}

func (s *ClinicService) ClearLogo(ctx context.Context, id uuid.UUID) (*models.Clinic, error) {
	return s.update(ctx, id, map[string]interface{}{"logo_url": nil})
}

// incrementCoachCount bumps the clinic's coach counter on tx.
func incrementCoachCount(tx *gorm.DB, clinicID uuid.UUID) error {
	return tx.Model(&models.Clinic{}).Where("id = ?", clinicID).
		Update("coaches", gorm.Expr("COALESCE(coaches, 0) + 1")).Error
}

// DeleteMembers removes the clinic's accounts and their data, keeping the
// clinic row.
func (s *ClinicService) DeleteMembers(ctx context.Context, id uuid.UUID) (*lifecycle.Report, error) {
	return s.engine.DeleteClinicMembers(ctx, id)
}

func (s *ClinicService) DeleteClinic(ctx context.Context, id uuid.UUID) (*lifecycle.Report, error) {
	return s.engine.DeleteClinic(ctx, id)
}

func (s *ClinicService) update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*models.Clinic, error) {
	res := s.db.WithContext(ctx).Model(&models.Clinic{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to update clinic: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return s.GetClinic(ctx, id)
}
