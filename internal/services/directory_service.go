package services

import (
	"context"
	"fmt"

	"github.com/ahmetcoskunkizilkaya/coaching-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/coaching-backend/internal/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Dashboard is the platform-wide summary shown to admins.
type Dashboard struct {
	Clinics        int64 `json:"clinics"`
	Coaches        int64 `json:"coaches"`
	Clients        int64 `json:"clients"`
	ActiveAccounts int64 `json:"active_accounts"`
}

// DirectoryService answers read-only listing and counting queries.
type DirectoryService struct {
	db       *gorm.DB
	accounts *AccountService
}

func NewDirectoryService(db *gorm.DB, accounts *AccountService) *DirectoryService {
	return &DirectoryService{db: db, accounts: accounts}
}

func (s *DirectoryService) CountClinics(ctx context.Context) (int64, error) {
	return s.count(ctx, s.db.Model(&models.Clinic{}))
}

func (s *DirectoryService) CountCoaches(ctx context.Context) (int64, error) {
	return s.count(ctx, s.db.Model(&models.Account{}).Scopes(tenant.WithRole(models.RoleCoach)))
}

func (s *DirectoryService) CountCoachesByClinic(ctx context.Context, clinicID uuid.UUID) (int64, error) {
	return s.count(ctx, s.db.Model(&models.Account{}).
		Scopes(tenant.ForClinic(clinicID), tenant.WithRole(models.RoleCoach)))
}

func (s *DirectoryService) ListCoaches(ctx context.Context) ([]models.Account, error) {
	return s.accounts.ListByRole(ctx, models.RoleCoach)
}

func (s *DirectoryService) ListCoachesByClinic(ctx context.Context, clinicID uuid.UUID) ([]models.Account, error) {
	return s.accounts.ListByClinicRole(ctx, clinicID, models.RoleCoach)
}

func (s *DirectoryService) ListAdmins(ctx context.Context) ([]models.Account, error) {
	return s.accounts.ListByRole(ctx, models.RoleAdmin)
}

func (s *DirectoryService) ClinicAdmin(ctx context.Context, clinicID uuid.UUID) (*models.Account, error) {
	return s.accounts.ClinicAdmin(ctx, clinicID)
}

func (s *DirectoryService) Dashboard(ctx context.Context) (*Dashboard, error) {
	var d Dashboard
	var err error
	if d.Clinics, err = s.CountClinics(ctx); err != nil {
		return nil, err
	}
	if d.Coaches, err = s.CountCoaches(ctx); err != nil {
		return nil, err
	}
	if d.Clients, err = s.count(ctx, s.db.Model(&models.ClientRecord{})); err != nil {
		return nil, err
	}
	if d.ActiveAccounts, err = s.count(ctx, s.db.Model(&models.Account{}).Where("is_active = ?", true)); err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *DirectoryService) count(ctx context.Context, q *gorm.DB) (int64, error) {
	var n int64
	if err := q.WithContext(ctx).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count: %w", err)
	}
	return n, nil
}
