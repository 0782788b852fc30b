package lifecycle

import (
	"github.com/ahmetcoskunkizilkaya/coaching-backend/internal/models"
	"gorm.io/gorm"
)

// Ordering tables. Adding a dependent entity means adding a step here.

var coachUnlinkSteps = []step{
	{name: "unlink_client_coach", run: unlinkClientCoach},
	{name: "unlink_check_in_coach", run: unlinkCheckInCoach},
}

var emailKeyedSteps = []step{
	{name: "delete_check_ins", run: deleteCheckIns},
	{name: "delete_messages", run: deleteMessages},
	{name: "delete_notifications", run: deleteNotifications},
	{name: "delete_ai_reviews", run: deleteAIReviews},
}

var accountKeyedSteps = []step{
	{name: "delete_daily_messages", run: deleteDailyMessages},
	{name: "delete_refresh_tokens", run: deleteRefreshTokens},
}

var clientRecordSteps = []step{
	{name: "lookup_client_record", run: lookupClientRecord},
	{name: "delete_client_profiles", after: []string{"lookup_client_record"}, run: deleteClientProfiles},
	{name: "delete_client_record", after: []string{"delete_client_profiles"}, run: deleteClientRecord},
}

// memberPlans drive the per-account phase of a clinic teardown.
var memberPlans = map[string]plan{
	models.RoleCoach:       newPlan("coach", concat(coachUnlinkSteps, accountKeyedSteps)...),
	models.RoleClient:      newPlan("client", concat(emailKeyedSteps, accountKeyedSteps, clientRecordSteps)...),
	models.RoleClinicAdmin: newPlan("clinic_admin", accountKeyedSteps...),
	models.RoleAdmin:       newPlan("admin", accountKeyedSteps...),
}

// accountPlan removes a single account of any role and everything keyed by
// its email or id.
var accountPlan = newPlan("account", concat(
	coachUnlinkSteps,
	emailKeyedSteps,
	accountKeyedSteps,
	clientRecordSteps,
	[]step{{
		name:  "delete_account",
		after: allBefore(coachUnlinkSteps, emailKeyedSteps, accountKeyedSteps, clientRecordSteps),
		run:   deleteAccount,
	}},
)...)

var tenantPlan = newPlan("tenant",
	step{name: "delete_subscription_history", run: deleteSubscriptionHistory},
	step{name: "delete_subscription_tiers", after: []string{"delete_subscription_history"}, run: deleteSubscriptionTiers},
	step{name: "unlink_client_programs", run: unlinkClientPrograms},
	step{name: "delete_programs", after: []string{"unlink_client_programs"}, run: deletePrograms},
	step{name: "delete_activities", run: deleteActivities},
)

var sweepSteps = []step{
	{name: "sweep_client_profiles", run: sweepClientProfiles},
	{name: "sweep_check_ins", run: sweepCheckIns},
	{name: "sweep_messages", run: sweepMessages},
	{name: "sweep_notifications", run: sweepNotifications},
	{name: "sweep_ai_reviews", run: sweepAIReviews},
}

var sweepPlan = newPlan("sweep", concat(sweepSteps, []step{{
	name:  "sweep_clients",
	after: allBefore(sweepSteps),
	run:   sweepClients,
}})...)

var finalPlan = newPlan("final",
	step{name: "delete_clinic_accounts", run: deleteClinicAccounts},
)

var finalPlanWithClinic = newPlan("final",
	step{name: "delete_clinic_accounts", run: deleteClinicAccounts},
	step{name: "delete_clinic", after: []string{"delete_clinic_accounts"}, run: deleteClinic},
)

// byEmailOrAccount matches rows keyed by the legacy email column or by the
// account id, so rows whose email drifted are still found.
func byEmailOrAccount(tx *gorm.DB, t *target) *gorm.DB {
	if t.accountID != nil {
		return tx.Where("email = ? OR account_id = ?", t.email, *t.accountID)
	}
	return tx.Where("email = ?", t.email)
}

func unlinkClientCoach(tx *gorm.DB, t *target) (int64, error) {
	if t.accountID == nil {
		return 0, nil
	}
	res := tx.Model(&models.ClientRecord{}).Where("coach_id = ?", *t.accountID).Update("coach_id", nil)
	return res.RowsAffected, res.Error
}

func unlinkCheckInCoach(tx *gorm.DB, t *target) (int64, error) {
	if t.accountID == nil {
		return 0, nil
	}
	res := tx.Model(&models.CheckIn{}).Where("coach_id = ?", *t.accountID).Update("coach_id", nil)
	return res.RowsAffected, res.Error
}

func deleteCheckIns(tx *gorm.DB, t *target) (int64, error) {
	res := byEmailOrAccount(tx, t).Delete(&models.CheckIn{})
	return res.RowsAffected, res.Error
}

func deleteMessages(tx *gorm.DB, t *target) (int64, error) {
	res := tx.Where("sender = ? OR receiver = ?", t.email, t.email).Delete(&models.Message{})
	return res.RowsAffected, res.Error
}

func deleteNotifications(tx *gorm.DB, t *target) (int64, error) {
	res := byEmailOrAccount(tx, t).Delete(&models.Notification{})
	return res.RowsAffected, res.Error
}

func deleteAIReviews(tx *gorm.DB, t *target) (int64, error) {
	res := byEmailOrAccount(tx, t).Delete(&models.AIReview{})
	return res.RowsAffected, res.Error
}

func deleteDailyMessages(tx *gorm.DB, t *target) (int64, error) {
	if t.accountID == nil {
		return 0, nil
	}
	res := tx.Where("user_id = ?", *t.accountID).Delete(&models.DailyMessage{})
	return res.RowsAffected, res.Error
}

func deleteRefreshTokens(tx *gorm.DB, t *target) (int64, error) {
	if t.accountID == nil {
		return 0, nil
	}
	res := tx.Where("account_id = ?", *t.accountID).Delete(&models.RefreshToken{})
	return res.RowsAffected, res.Error
}

func lookupClientRecord(tx *gorm.DB, t *target) (int64, error) {
	t.clientIDs = nil
	if err := byEmailOrAccount(tx.Model(&models.ClientRecord{}), t).Pluck("id", &t.clientIDs).Error; err != nil {
		return 0, err
	}
	return int64(len(t.clientIDs)), nil
}

func deleteClientProfiles(tx *gorm.DB, t *target) (int64, error) {
	if len(t.clientIDs) == 0 {
		return 0, nil
	}
	res := tx.Where("client_id IN ?", t.clientIDs).Delete(&models.ClientProfile{})
	return res.RowsAffected, res.Error
}

func deleteClientRecord(tx *gorm.DB, t *target) (int64, error) {
	if len(t.clientIDs) == 0 {
		return 0, nil
	}
	res := tx.Where("id IN ?", t.clientIDs).Delete(&models.ClientRecord{})
	return res.RowsAffected, res.Error
}

func deleteAccount(tx *gorm.DB, t *target) (int64, error) {
	if t.accountID == nil {
		return 0, nil
	}
	res := tx.Where("id = ?", *t.accountID).Delete(&models.Account{})
	return res.RowsAffected, res.Error
}

func deleteSubscriptionHistory(tx *gorm.DB, t *target) (int64, error) {
	res := tx.Where("clinic_id = ?", t.clinicID).Delete(&models.SubscriptionHistory{})
	return res.RowsAffected, res.Error
}

func deleteSubscriptionTiers(tx *gorm.DB, t *target) (int64, error) {
	res := tx.Where("clinic_id = ?", t.clinicID).Delete(&models.SubscriptionTier{})
	return res.RowsAffected, res.Error
}

func clinicPrograms(tx *gorm.DB, t *target) *gorm.DB {
	return tx.Model(&models.Program{}).Select("id").Where("clinic_id = ?", t.clinicID)
}

func unlinkClientPrograms(tx *gorm.DB, t *target) (int64, error) {
	res := tx.Model(&models.ClientRecord{}).
		Where("program_id IN (?)", clinicPrograms(tx, t)).
		Update("program_id", nil)
	return res.RowsAffected, res.Error
}

func deletePrograms(tx *gorm.DB, t *target) (int64, error) {
	res := tx.Where("clinic_id = ?", t.clinicID).Delete(&models.Program{})
	return res.RowsAffected, res.Error
}

func deleteActivities(tx *gorm.DB, t *target) (int64, error) {
	res := tx.Where("clinic_id = ?", t.clinicID).Delete(&models.Activity{})
	return res.RowsAffected, res.Error
}

func clinicClientColumn(tx *gorm.DB, t *target, column string) *gorm.DB {
	q := tx.Model(&models.ClientRecord{}).Select(column).Where("clinic_id = ?", t.clinicID)
	if column == "account_id" {
		q = q.Where("account_id IS NOT NULL")
	}
	return q
}

func sweepByClientKeys(tx *gorm.DB, t *target, model interface{}) (int64, error) {
	res := tx.Where("email IN (?) OR account_id IN (?)",
		clinicClientColumn(tx, t, "email"),
		clinicClientColumn(tx, t, "account_id"),
	).Delete(model)
	return res.RowsAffected, res.Error
}

func sweepClientProfiles(tx *gorm.DB, t *target) (int64, error) {
	res := tx.Where("client_id IN (?)", clinicClientColumn(tx, t, "id")).Delete(&models.ClientProfile{})
	return res.RowsAffected, res.Error
}

func sweepCheckIns(tx *gorm.DB, t *target) (int64, error) {
	return sweepByClientKeys(tx, t, &models.CheckIn{})
}

func sweepMessages(tx *gorm.DB, t *target) (int64, error) {
	res := tx.Where("sender IN (?) OR receiver IN (?)",
		clinicClientColumn(tx, t, "email"),
		clinicClientColumn(tx, t, "email"),
	).Delete(&models.Message{})
	return res.RowsAffected, res.Error
}

func sweepNotifications(tx *gorm.DB, t *target) (int64, error) {
	return sweepByClientKeys(tx, t, &models.Notification{})
}

func sweepAIReviews(tx *gorm.DB, t *target) (int64, error) {
	return sweepByClientKeys(tx, t, &models.AIReview{})
}

func sweepClients(tx *gorm.DB, t *target) (int64, error) {
	res := tx.Where("clinic_id = ?", t.clinicID).Delete(&models.ClientRecord{})
	return res.RowsAffected, res.Error
}

func deleteClinicAccounts(tx *gorm.DB, t *target) (int64, error) {
	res := tx.Where("clinic_id = ?", t.clinicID).Delete(&models.Account{})
	return res.RowsAffected, res.Error
}

func deleteClinic(tx *gorm.DB, t *target) (int64, error) {
	res := tx.Where("id = ?", t.clinicID).Delete(&models.Clinic{})
	return res.RowsAffected, res.Error
}
