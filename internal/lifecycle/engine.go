// Package lifecycle removes accounts and clinics together with every record
// that only exists in reference to them, and keeps email-keyed references in
// step when an account is renamed.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/coaching-backend/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/coaching-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Engine struct {
	db *gorm.DB
}

func NewEngine(db *gorm.DB) *Engine {
	return &Engine{db: db}
}

// DeleteAccount removes the account with email and everything keyed by its
// email or id, in one transaction. Email-keyed leftovers are removed even
// when no account row exists. It returns the deleted account, or nil.
func (e *Engine) DeleteAccount(ctx context.Context, email string) (*models.Account, error) {
	return e.deleteAccount(ctx, "email = ?", email)
}

// DeleteAccountByID is DeleteAccount keyed by account id.
func (e *Engine) DeleteAccountByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	return e.deleteAccount(ctx, "id = ?", id)
}

func (e *Engine) deleteAccount(ctx context.Context, query string, key interface{}) (*models.Account, error) {
	start := time.Now()
	var deleted *models.Account
	report := newReport(uuid.Nil)
	log := slog.Default().With("action", "account_teardown")

	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var account models.Account
		err := tx.Where(query, key).First(&account).Error
		t := &target{}
		switch {
		case err == nil:
			deleted = &account
			t.accountID = &account.ID
			t.email = account.Email
			if account.ClinicID != nil {
				t.clinicID = *account.ClinicID
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			email, ok := key.(string)
			if !ok {
				return nil
			}
			t.email = email
		default:
			return err
		}
		return accountPlan.run(tx, t, report, log)
	})
	metrics.ObserveLifecycle("account_teardown", time.Since(start).Seconds(), err)
	if err != nil {
		log.Error("account teardown aborted", "error", err)
		return nil, txFailure(err)
	}
	recordRows(report)

	if deleted != nil {
		log.Info("account teardown committed", "account_id", deleted.ID.String(), "role", deleted.Role)
	}
	return deleted.Sanitize(), nil
}

// DeleteClinicMembers removes every account of the clinic and all records
// that reference them or the clinic, leaving the clinic row itself. The whole
// teardown is one transaction; on error nothing is applied and the report
// is in StateAborted.
func (e *Engine) DeleteClinicMembers(ctx context.Context, clinicID uuid.UUID) (*Report, error) {
	return e.teardown(ctx, clinicID, finalPlan)
}

// DeleteClinic is DeleteClinicMembers followed by removal of the clinic row
// in the same transaction.
func (e *Engine) DeleteClinic(ctx context.Context, clinicID uuid.UUID) (*Report, error) {
	return e.teardown(ctx, clinicID, finalPlanWithClinic)
}

func (e *Engine) teardown(ctx context.Context, clinicID uuid.UUID, final plan) (*Report, error) {
	start := time.Now()
	report := newReport(clinicID)
	log := slog.Default().With("action", "clinic_teardown", "clinic_id", clinicID.String())
	log.Info("clinic teardown started")

	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return runTeardown(tx, report, final, log)
	})
	metrics.ObserveLifecycle("clinic_teardown", time.Since(start).Seconds(), err)
	if err != nil {
		failedIn := report.State
		report.abort()
		log.Error("clinic teardown aborted", "phase", string(failedIn), "error", err)
		return report, txFailure(err)
	}

	report.advance()
	recordRows(report)
	log.Info("clinic teardown committed",
		"accounts", report.Accounts,
		"latency_ms", float64(time.Since(start).Milliseconds()),
	)
	return report, nil
}

func runTeardown(tx *gorm.DB, report *Report, final plan, log *slog.Logger) error {
	clinicID := report.ClinicID

	var accounts []models.Account
	if err := tx.Select("id", "email", "role").
		Where("clinic_id = ?", clinicID).
		Order("created_at").
		Find(&accounts).Error; err != nil {
		return fmt.Errorf("enumerate accounts: %w", err)
	}
	report.Accounts = len(accounts)
	phaseDone(report, log)

	for i := range accounts {
		a := &accounts[i]
		p, ok := memberPlans[a.Role]
		if !ok {
			log.Warn("unknown account role, removing account-keyed rows only", "account_id", a.ID.String(), "role", a.Role)
			p = memberPlans[models.RoleClinicAdmin]
		}
		t := &target{clinicID: clinicID, accountID: &a.ID, email: a.Email}
		if err := p.run(tx, t, report, log.With("account_id", a.ID.String())); err != nil {
			return err
		}
	}
	phaseDone(report, log)

	clinic := &target{clinicID: clinicID}
	if err := tenantPlan.run(tx, clinic, report, log); err != nil {
		return err
	}
	phaseDone(report, log)

	if err := sweepPlan.run(tx, clinic, report, log); err != nil {
		return err
	}
	phaseDone(report, log)

	return final.run(tx, clinic, report, log)
}

func phaseDone(report *Report, log *slog.Logger) {
	report.advance()
	log.Info("clinic teardown phase completed", "phase", string(report.State))
}

func recordRows(report *Report) {
	for step, n := range report.Rows {
		if n > 0 {
			metrics.RowsRemoved.WithLabelValues(step).Add(float64(n))
		}
	}
}
