package lifecycle

import (
	"testing"

	"github.com/ahmetcoskunkizilkaya/coaching-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/coaching-backend/internal/testutil"
	"gorm.io/gorm"
)

func TestPropagateRename(t *testing.T) {
	db := testutil.OpenDB(t)
	const oldEmail, newEmail = "a@x.test", "b@x.test"

	testutil.Activity(t, db, oldEmail, nil, nil)
	self := testutil.Message(t, db, oldEmail, oldEmail)
	outgoing := testutil.Message(t, db, oldEmail, "coach@x.test")
	incoming := testutil.Message(t, db, "coach@x.test", oldEmail)
	unrelated := testutil.Message(t, db, "coach@x.test", "other@x.test")

	var result RenameResult
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		result, err = PropagateRename(tx, oldEmail, newEmail)
		return err
	})
	if err != nil {
		t.Fatalf("propagate: %v", err)
	}
	if result.CheckIns != 1 || result.Messages != 3 || result.Notifications != 1 {
		t.Fatalf("result = %+v, want 1 check-in, 3 messages, 1 notification", result)
	}

	for _, model := range []interface{}{&models.CheckIn{}, &models.Notification{}} {
		if n := testutil.Count(t, db, model, "email = ?", oldEmail); n != 0 {
			t.Fatalf("%T still keyed by old email: %d", model, n)
		}
		if n := testutil.Count(t, db, model, "email = ?", newEmail); n != 1 {
			t.Fatalf("%T keyed by new email = %d, want 1", model, n)
		}
	}
	if n := testutil.Count(t, db, &models.Message{}, "sender = ? OR receiver = ?", oldEmail, oldEmail); n != 0 {
		t.Fatalf("messages still referencing old email = %d", n)
	}

	want := map[string][2]string{
		self.ID.String():      {newEmail, newEmail},
		outgoing.ID.String():  {newEmail, "coach@x.test"},
		incoming.ID.String():  {"coach@x.test", newEmail},
		unrelated.ID.String(): {"coach@x.test", "other@x.test"},
	}
	var messages []models.Message
	if err := db.Find(&messages).Error; err != nil {
		t.Fatalf("load messages: %v", err)
	}
	for _, m := range messages {
		w := want[m.ID.String()]
		if m.Sender != w[0] || m.Receiver != w[1] {
			t.Errorf("message %s = (%s, %s), want (%s, %s)", m.ID, m.Sender, m.Receiver, w[0], w[1])
		}
	}
}

func TestPropagateRenameNoop(t *testing.T) {
	db := testutil.OpenDB(t)
	testutil.Activity(t, db, "a@x.test", nil, nil)

	for _, pair := range [][2]string{{"a@x.test", "a@x.test"}, {"", "b@x.test"}, {"a@x.test", ""}} {
		result, err := PropagateRename(db, pair[0], pair[1])
		if err != nil {
			t.Fatalf("propagate %v: %v", pair, err)
		}
		if result != (RenameResult{}) {
			t.Fatalf("propagate %v = %+v, want no-op", pair, result)
		}
	}
	if n := testutil.Count(t, db, &models.CheckIn{}, "email = ?", "a@x.test"); n != 1 {
		t.Fatalf("check-ins = %d, want 1", n)
	}
}
