package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ahmetcoskunkizilkaya/coaching-backend/internal/credential"
	"github.com/ahmetcoskunkizilkaya/coaching-backend/internal/lifecycle"
	"github.com/ahmetcoskunkizilkaya/coaching-backend/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/coaching-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/coaching-backend/internal/tenant"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountInactive    = errors.New("account is not active")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidRole        = errors.New("invalid role")
	ErrEmailRequired      = errors.New("email is required")
)

const pgUniqueViolation = "23505"

type CreateAccountInput struct {
	Role     string
	Name     string
	Email    string
	Phone    string
	Password string
	ClinicID *uuid.UUID
	CoachID  *uuid.UUID
}

type UpdateProfileInput struct {
	Name     string
	Email    string
	Phone    string
	Role     string
	IsActive bool
	// PreviousEmail is the key secondary rows are currently stored under.
	// Empty means the account's stored email.
	PreviousEmail string
	// SyncClinic copies name/email/phone onto the clinic of a clinic_admin.
	SyncClinic bool
}

// AccountService is the account directory: identity CRUD, authentication
// and password resets.
type AccountService struct {
	db     *gorm.DB
	codec  *credential.Codec
	engine *lifecycle.Engine
}

func NewAccountService(db *gorm.DB, codec *credential.Codec, engine *lifecycle.Engine) *AccountService {
	return &AccountService{db: db, codec: codec, engine: engine}
}

// CreateAccount inserts a new account, or returns the existing one unchanged
// when the email is already registered.
func (s *AccountService) CreateAccount(ctx context.Context, in CreateAccountInput) (*models.Account, error) {
	account, _, err := s.EnsureAccount(ctx, in)
	return account, err
}

// EnsureAccount is CreateAccount that also reports whether this call
// inserted the row. A new coach bumps its clinic's coach counter in the same
// transaction.
func (s *AccountService) EnsureAccount(ctx context.Context, in CreateAccountInput) (*models.Account, bool, error) {
	if !models.ValidRole(in.Role) {
		return nil, false, fmt.Errorf("%w: %q", ErrInvalidRole, in.Role)
	}
	if in.Email == "" {
		return nil, false, ErrEmailRequired
	}

	var result models.Account
	var created bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("email = ?", in.Email).First(&result).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		salt, err := credential.GenerateSalt()
		if err != nil {
			return err
		}
		hash, err := s.codec.Hash(in.Password, salt)
		if err != nil {
			return err
		}

		account := models.Account{
			ID:             uuid.New(),
			Email:          in.Email,
			Name:           in.Name,
			PhoneNumber:    in.Phone,
			Role:           in.Role,
			PasswordHash:   hash,
			PasswordSalt:   salt,
			PasswordParams: s.codec.Params().String(),
			IsActive:       true,
			ClinicID:       in.ClinicID,
			CoachID:        in.CoachID,
		}
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "email"}},
			DoNothing: true,
		}).Create(&account)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// a concurrent create for the same email committed first
			return tx.Where("email = ?", in.Email).First(&result).Error
		}
		result = account
		created = true

		if account.Role == models.RoleCoach && account.ClinicID != nil {
			if err := incrementCoachCount(tx, *account.ClinicID); err != nil {
				return fmt.Errorf("update coach count: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, credential.ErrEmptyPassword) || errors.Is(err, credential.ErrInvalidSalt) {
			return nil, false, err
		}
		return nil, false, fmt.Errorf("failed to create account: %w", translateStoreError(err))
	}
	return result.Sanitize(), created, nil
}

// Authenticate checks a candidate password. Unknown emails fail with
// ErrInvalidCredentials, a wrong password yields (nil, nil), and a correct
// password on a disabled account fails with ErrAccountInactive.
func (s *AccountService) Authenticate(ctx context.Context, email, password string) (*models.Account, error) {
	var account models.Account
	err := s.db.WithContext(ctx).Preload("Clinic").Where("email = ?", email).First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		metrics.AuthAttempts.WithLabelValues("unknown_email").Inc()
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load account: %w", err)
	}

	if password == "" {
		metrics.AuthAttempts.WithLabelValues("wrong_password").Inc()
		return nil, nil
	}
	ok, err := s.codec.Verify(password, account.PasswordSalt, account.PasswordHash, account.PasswordParams)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !ok {
		metrics.AuthAttempts.WithLabelValues("wrong_password").Inc()
		return nil, nil
	}
	if !account.IsActive {
		metrics.AuthAttempts.WithLabelValues("inactive").Inc()
		return nil, ErrAccountInactive
	}
	metrics.AuthAttempts.WithLabelValues("success").Inc()

	if s.codec.NeedsRehash(account.PasswordParams) {
		if err := s.setPassword(s.db.WithContext(ctx), account.ID, password); err != nil {
			slog.Warn("password rehash failed", "account_id", account.ID.String(), "error", err)
		}
	}
	return account.Sanitize(), nil
}

// ResetPassword stores a digest of newPassword under a freshly generated
// salt. It returns nil when id is unknown.
func (s *AccountService) ResetPassword(ctx context.Context, id uuid.UUID, newPassword string) (*models.Account, error) {
	var found bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var account models.Account
		err := tx.Select("id").First(&account, "id = ?", id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return s.setPassword(tx, id, newPassword)
	})
	if err != nil {
		if errors.Is(err, credential.ErrEmptyPassword) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to reset password: %w", translateStoreError(err))
	}
	if !found {
		return nil, nil
	}
	return s.GetByID(ctx, id)
}

func (s *AccountService) setPassword(db *gorm.DB, id uuid.UUID, password string) error {
	salt, err := credential.GenerateSalt()
	if err != nil {
		return err
	}
	hash, err := s.codec.Hash(password, salt)
	if err != nil {
		return err
	}
	return db.Model(&models.Account{}).Where("id = ?", id).Updates(map[string]interface{}{
		"password_hash":   hash,
		"password_salt":   salt,
		"password_params": s.codec.Params().String(),
	}).Error
}

// UpdateProfile updates identity fields. For coaches and clients an email
// change is propagated to every email-keyed record in the same transaction,
// and a client's record gets the new email and phone. It returns nil when id
// is unknown.
func (s *AccountService) UpdateProfile(ctx context.Context, id uuid.UUID, in UpdateProfileInput) (*models.Account, error) {
	if !models.ValidRole(in.Role) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRole, in.Role)
	}
	if strings.TrimSpace(in.Email) == "" {
		return nil, ErrEmailRequired
	}

	var found bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var account models.Account
		err := tx.First(&account, "id = ?", id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true

		previous := in.PreviousEmail
		if previous == "" {
			previous = account.Email
		}

		if err := tx.Model(&account).Updates(map[string]interface{}{
			"name":         in.Name,
			"email":        in.Email,
			"phone_number": in.Phone,
			"role":         in.Role,
			"is_active":    in.IsActive,
		}).Error; err != nil {
			return err
		}

		if in.Role == models.RoleCoach || in.Role == models.RoleClient {
			result, err := lifecycle.PropagateRename(tx, previous, in.Email)
			if err != nil {
				return fmt.Errorf("propagate rename: %w", err)
			}
			if previous != in.Email {
				slog.Info("account email propagated",
					"action", "account_rename",
					"account_id", id.String(),
					"check_ins", result.CheckIns,
					"messages", result.Messages,
					"notifications", result.Notifications,
				)
			}
		}

		if in.Role == models.RoleClient {
			if err := tx.Model(&models.ClientRecord{}).
				Where("email = ? OR account_id = ?", previous, id).
				Updates(map[string]interface{}{"email": in.Email, "phone": in.Phone}).Error; err != nil {
				return fmt.Errorf("update client record: %w", err)
			}
		}

		if in.SyncClinic && in.Role == models.RoleClinicAdmin && account.ClinicID != nil && in.Name != "" {
			if err := tx.Model(&models.Clinic{}).
				Where("id = ?", *account.ClinicID).
				Updates(map[string]interface{}{"name": in.Name, "email": in.Email, "phone": in.Phone}).Error; err != nil {
				return fmt.Errorf("update clinic settings: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		err = translateStoreError(err)
		if errors.Is(err, ErrEmailTaken) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", lifecycle.ErrTransactionFailure, err)
	}
	if !found {
		return nil, nil
	}
	return s.GetByID(ctx, id)
}

// UpdateCoach changes a coach's name, email and phone, keeping role and
// status, with the same propagation as UpdateProfile. It returns nil when id
// is not a coach.
func (s *AccountService) UpdateCoach(ctx context.Context, id uuid.UUID, name, email, phone string) (*models.Account, error) {
	current, err := s.GetByID(ctx, id)
	if err != nil || current == nil || current.Role != models.RoleCoach {
		return nil, err
	}
	return s.UpdateProfile(ctx, id, UpdateProfileInput{
		Name:     name,
		Email:    email,
		Phone:    phone,
		Role:     current.Role,
		IsActive: current.IsActive,
	})
}

// DeleteAccount removes the account with email and everything keyed by it.
func (s *AccountService) DeleteAccount(ctx context.Context, email string) (*models.Account, error) {
	return s.engine.DeleteAccount(ctx, email)
}

func (s *AccountService) DeleteByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	return s.engine.DeleteAccountByID(ctx, id)
}

func (s *AccountService) GetByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	return s.getOne(ctx, "id = ?", id)
}

func (s *AccountService) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	return s.getOne(ctx, "email = ?", email)
}

func (s *AccountService) getOne(ctx context.Context, query string, arg interface{}) (*models.Account, error) {
	var account models.Account
	err := s.db.WithContext(ctx).Preload("Clinic").Where(query, arg).First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load account: %w", err)
	}
	return account.Sanitize(), nil
}

// ListByClinicRole returns the clinic's accounts with role, oldest first.
func (s *AccountService) ListByClinicRole(ctx context.Context, clinicID uuid.UUID, role string) ([]models.Account, error) {
	var accounts []models.Account
	err := s.db.WithContext(ctx).
		Preload("Clinic").
		Scopes(tenant.ForClinic(clinicID), tenant.WithRole(role)).
		Order("created_at").
		Find(&accounts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return sanitizeAll(accounts), nil
}

func (s *AccountService) ListByRole(ctx context.Context, role string) ([]models.Account, error) {
	var accounts []models.Account
	err := s.db.WithContext(ctx).
		Preload("Clinic").
		Scopes(tenant.WithRole(role)).
		Order("created_at").
		Find(&accounts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return sanitizeAll(accounts), nil
}

// ClinicAdmin returns the clinic's administrator, or nil.
func (s *AccountService) ClinicAdmin(ctx context.Context, clinicID uuid.UUID) (*models.Account, error) {
	var account models.Account
	err := s.db.WithContext(ctx).
		Preload("Clinic").
		Scopes(tenant.ForClinic(clinicID), tenant.WithRole(models.RoleClinicAdmin)).
		Order("created_at").
		First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load clinic admin: %w", err)
	}
	return account.Sanitize(), nil
}

func sanitizeAll(accounts []models.Account) []models.Account {
	for i := range accounts {
		accounts[i].Sanitize()
	}
	return accounts
}

// translateStoreError maps unique and foreign-key violations onto the
// service taxonomy.
func translateStoreError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %w", ErrEmailTaken, err)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return fmt.Errorf("%w: %w", ErrEmailTaken, err)
	}
	return lifecycle.TranslateStoreError(err)
}
