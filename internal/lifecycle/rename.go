package lifecycle

import (
	"github.com/ahmetcoskunkizilkaya/coaching-backend/internal/models"
	"gorm.io/gorm"
)

type RenameResult struct {
	CheckIns      int64 `json:"check_ins"`
	Messages      int64 `json:"messages"`
	Notifications int64 `json:"notifications"`
}

// PropagateRename rewrites every email-keyed reference from oldEmail to
// newEmail. It must run on the transaction that renamed the account.
func PropagateRename(tx *gorm.DB, oldEmail, newEmail string) (RenameResult, error) {
	var out RenameResult
	if oldEmail == "" || newEmail == "" || oldEmail == newEmail {
		return out, nil
	}

	res := tx.Model(&models.CheckIn{}).Where("email = ?", oldEmail).Update("email", newEmail)
	if res.Error != nil {
		return out, res.Error
	}
	out.CheckIns = res.RowsAffected

	// sender and receiver are rewritten independently in one statement
	res = tx.Model(&models.Message{}).
		Where("sender = ? OR receiver = ?", oldEmail, oldEmail).
		Updates(map[string]interface{}{
			"sender":   gorm.Expr("CASE WHEN sender = ? THEN ? ELSE sender END", oldEmail, newEmail),
			"receiver": gorm.Expr("CASE WHEN receiver = ? THEN ? ELSE receiver END", oldEmail, newEmail),
		})
	if res.Error != nil {
		return out, res.Error
	}
	out.Messages = res.RowsAffected

	res = tx.Model(&models.Notification{}).Where("email = ?", oldEmail).Update("email", newEmail)
	if res.Error != nil {
		return out, res.Error
	}
	out.Notifications = res.RowsAffected

	return out, nil
}
