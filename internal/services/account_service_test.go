package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/ahmetcoskunkizilkaya/coaching-backend/internal/credential"
	"github.com/ahmetcoskunkizilkaya/coaching-backend/internal/lifecycle"
	"github.com/ahmetcoskunkizilkaya/coaching-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/coaching-backend/internal/testutil"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func newAccountService(t *testing.T) (*AccountService, *gorm.DB) {
	t.Helper()
	db := testutil.OpenDB(t)
	codec, err := credential.NewCodec(credential.LegacyParams)
	if err != nil {
		t.Fatalf("codec: %v", err)
	}
	return NewAccountService(db, codec, lifecycle.NewEngine(db)), db
}

func mustCreate(t *testing.T, s *AccountService, in CreateAccountInput) *models.Account {
	t.Helper()
	a, err := s.CreateAccount(context.Background(), in)
	if err != nil {
		t.Fatalf("CreateAccount(%s): %v", in.Email, err)
	}
	return a
}

func loadRaw(t *testing.T, db *gorm.DB, id uuid.UUID) models.Account {
	t.Helper()
	var a models.Account
	if err := db.First(&a, "id = ?", id).Error; err != nil {
		t.Fatalf("load account: %v", err)
	}
	return a
}

func TestCreateAccount(t *testing.T) {
	s, db := newAccountService(t)
	ctx := context.Background()

	a := mustCreate(t, s, CreateAccountInput{Role: models.RoleCoach, Name: "Coach", Email: "c@x.com", Password: "pw1"})
	if a.PasswordHash != "" || a.PasswordSalt != "" {
		t.Fatal("returned account exposes credentials")
	}
	if !a.IsActive {
		t.Error("new account should be active")
	}

	raw := loadRaw(t, db, a.ID)
	if raw.PasswordSalt == "" || raw.PasswordHash == "" || raw.PasswordHash == "pw1" {
		t.Fatalf("stored credentials look wrong: %+v", raw)
	}
	if raw.PasswordParams != credential.LegacyParams.String() {
		t.Errorf("params = %q, want %q", raw.PasswordParams, credential.LegacyParams.String())
	}

	again, err := s.CreateAccount(ctx, CreateAccountInput{Role: models.RoleClient, Name: "Other", Email: "c@x.com", Password: "pw2"})
	if err != nil {
		t.Fatalf("second create: %v", err)
	}
	if again.ID != a.ID || again.Role != models.RoleCoach || again.Name != "Coach" {
		t.Errorf("second create returned %+v, want the existing account", again)
	}
	if got := loadRaw(t, db, a.ID); got.PasswordHash != raw.PasswordHash {
		t.Error("second create changed the stored digest")
	}

	if _, err := s.CreateAccount(ctx, CreateAccountInput{Role: "owner", Email: "o@x.com", Password: "pw"}); !errors.Is(err, ErrInvalidRole) {
		t.Errorf("invalid role error = %v", err)
	}
	if _, err := s.CreateAccount(ctx, CreateAccountInput{Role: models.RoleClient, Email: "e@x.com"}); !errors.Is(err, credential.ErrEmptyPassword) {
		t.Errorf("empty password error = %v", err)
	}
}

func TestCreateAccountConcurrent(t *testing.T) {
	s, db := newAccountService(t)

	const n = 8
	ids := make([]uuid.UUID, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			a, err := s.CreateAccount(context.Background(), CreateAccountInput{
				Role: models.RoleClient, Email: "race@x.com", Password: "pw",
			})
			errs[i] = err
			if a != nil {
				ids[i] = a.ID
			}
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("goroutine %d: %v", i, err)
		}
		if ids[i] != ids[0] {
			t.Fatalf("goroutine %d got %s, goroutine 0 got %s", i, ids[i], ids[0])
		}
	}
	if n := testutil.Count(t, db, &models.Account{}, "email = ?", "race@x.com"); n != 1 {
		t.Errorf("accounts = %d, want 1", n)
	}
}

func TestCreateAccountLosesInsertRace(t *testing.T) {
	s, db := newAccountService(t)

	// Another writer commits the same email between the lookup and the insert.
	winner := models.Account{ID: uuid.New(), Email: "race@x.com", Name: "winner", Role: models.RoleClient, IsActive: true}
	var done bool
	err := db.Callback().Create().Before("gorm:create").Register("test:concurrent_insert", func(tx *gorm.DB) {
		if done || tx.Statement.Table != "accounts" {
			return
		}
		done = true
		if err := tx.Session(&gorm.Session{NewDB: true}).Create(&winner).Error; err != nil {
			_ = tx.AddError(err)
		}
	})
	if err != nil {
		t.Fatalf("register callback: %v", err)
	}

	got, created, err := s.EnsureAccount(context.Background(), CreateAccountInput{
		Role: models.RoleCoach, Name: "loser", Email: "race@x.com", Password: "pw",
	})
	if err != nil {
		t.Fatalf("EnsureAccount: %v", err)
	}
	if created {
		t.Error("created = true for a lost insert")
	}
	if got.ID != winner.ID || got.Name != "winner" {
		t.Errorf("got %+v, want the committed account", got)
	}
	if n := testutil.Count(t, db, &models.Account{}, "email = ?", "race@x.com"); n != 1 {
		t.Errorf("accounts = %d, want 1", n)
	}
}

func TestEnsureAccountCountsCoaches(t *testing.T) {
	s, db := newAccountService(t)
	ctx := context.Background()
	clinic := testutil.Clinic(t, db, "count")

	coaches := func() int {
		t.Helper()
		var c models.Clinic
		if err := db.First(&c, "id = ?", clinic.ID).Error; err != nil {
			t.Fatal(err)
		}
		return c.Coaches
	}

	steps := []struct {
		role        string
		email       string
		wantCreated bool
		wantCount   int
	}{
		{models.RoleCoach, "c1@x.com", true, 1},
		{models.RoleCoach, "c1@x.com", false, 1},
		{models.RoleClient, "l1@x.com", true, 1},
		{models.RoleCoach, "c2@x.com", true, 2},
	}
	for _, st := range steps {
		_, created, err := s.EnsureAccount(ctx, CreateAccountInput{Role: st.role, Email: st.email, Password: "pw", ClinicID: &clinic.ID})
		if err != nil {
			t.Fatalf("EnsureAccount(%s): %v", st.email, err)
		}
		if created != st.wantCreated {
			t.Errorf("%s created = %v, want %v", st.email, created, st.wantCreated)
		}
		if got := coaches(); got != st.wantCount {
			t.Errorf("after %s coaches = %d, want %d", st.email, got, st.wantCount)
		}
	}

	// a coach without a clinic touches no counter
	if _, created, err := s.EnsureAccount(ctx, CreateAccountInput{Role: models.RoleCoach, Email: "free@x.com", Password: "pw"}); err != nil || !created {
		t.Fatalf("EnsureAccount without clinic = %v, %v", created, err)
	}
	if got := coaches(); got != 2 {
		t.Errorf("coaches = %d, want 2", got)
	}
}

func TestAuthenticate(t *testing.T) {
	s, db := newAccountService(t)
	ctx := context.Background()

	clinic := testutil.Clinic(t, db, "north")
	active := mustCreate(t, s, CreateAccountInput{Role: models.RoleCoach, Email: "a@x.com", Password: "pw1", ClinicID: &clinic.ID})
	inactive := mustCreate(t, s, CreateAccountInput{Role: models.RoleClient, Email: "b@x.com", Password: "pw1"})
	if err := db.Model(&models.Account{}).Where("id = ?", inactive.ID).Update("is_active", false).Error; err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
		wantNil  bool
	}{
		{"success", "a@x.com", "pw1", nil, false},
		{"wrong password", "a@x.com", "pw2", nil, true},
		{"unknown email", "z@x.com", "pw1", ErrInvalidCredentials, true},
		{"inactive", "b@x.com", "pw1", ErrAccountInactive, true},
		{"inactive wrong password", "b@x.com", "nope", nil, true},
		{"empty password", "a@x.com", "", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Authenticate(ctx, tt.email, tt.password)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if (got == nil) != tt.wantNil {
				t.Fatalf("account = %+v, wantNil %v", got, tt.wantNil)
			}
			if got != nil && (got.PasswordHash != "" || got.PasswordSalt != "") {
				t.Error("authenticated account exposes credentials")
			}
		})
	}

	got, _ := s.Authenticate(ctx, "a@x.com", "pw1")
	if got.ID != active.ID || got.Clinic == nil || got.Clinic.Name != "north" {
		t.Errorf("authenticated account = %+v, want clinic preloaded", got)
	}
}

func TestAuthenticateRehashesLegacyDigest(t *testing.T) {
	s, db := newAccountService(t)
	ctx := context.Background()

	legacy, err := credential.NewCodec(credential.LegacyParams)
	if err != nil {
		t.Fatal(err)
	}
	salt, _ := credential.GenerateSalt()
	hash, err := legacy.Hash("pw", salt)
	if err != nil {
		t.Fatal(err)
	}
	a := models.Account{ID: uuid.New(), Email: "old@x.com", Role: models.RoleCoach, PasswordHash: hash, PasswordSalt: salt, IsActive: true}
	testutil.Create(t, db, &a)

	stronger, err := credential.NewCodec(credential.Params{Digest: credential.DigestSHA512, Iterations: 20000, KeyLen: 64})
	if err != nil {
		t.Fatal(err)
	}
	s.codec = stronger

	if got, err := s.Authenticate(ctx, "old@x.com", "pw"); err != nil || got == nil {
		t.Fatalf("Authenticate = %v, %v", got, err)
	}
	raw := loadRaw(t, db, a.ID)
	if raw.PasswordParams != stronger.Params().String() || raw.PasswordSalt == salt {
		t.Errorf("digest not upgraded: params=%q", raw.PasswordParams)
	}
	if got, err := s.Authenticate(ctx, "old@x.com", "pw"); err != nil || got == nil {
		t.Fatalf("Authenticate after rehash = %v, %v", got, err)
	}
}

func TestResetPassword(t *testing.T) {
	s, db := newAccountService(t)
	ctx := context.Background()

	a := mustCreate(t, s, CreateAccountInput{Role: models.RoleClient, Email: "r@x.com", Password: "old"})
	before := loadRaw(t, db, a.ID)

	got, err := s.ResetPassword(ctx, a.ID, "new")
	if err != nil || got == nil {
		t.Fatalf("ResetPassword = %v, %v", got, err)
	}
	after := loadRaw(t, db, a.ID)
	if after.PasswordSalt == before.PasswordSalt {
		t.Error("reset kept the old salt")
	}

	if acc, _ := s.Authenticate(ctx, "r@x.com", "old"); acc != nil {
		t.Error("old password still accepted")
	}
	if acc, err := s.Authenticate(ctx, "r@x.com", "new"); err != nil || acc == nil {
		t.Errorf("new password rejected: %v", err)
	}

	missing, err := s.ResetPassword(ctx, uuid.New(), "x")
	if err != nil || missing != nil {
		t.Errorf("unknown id = %v, %v; want nil, nil", missing, err)
	}
}

func TestUpdateProfilePropagatesRename(t *testing.T) {
	s, db := newAccountService(t)
	ctx := context.Background()

	clinic := testutil.Clinic(t, db, "south")
	coach := mustCreate(t, s, CreateAccountInput{Role: models.RoleCoach, Email: "coach@x.com", Password: "pw", ClinicID: &clinic.ID})
	client := mustCreate(t, s, CreateAccountInput{Role: models.RoleClient, Name: "Lee", Email: "old@x.com", Password: "pw", ClinicID: &clinic.ID, CoachID: &coach.ID})
	record := testutil.Client(t, db, clinic.ID, client, &coach.ID)
	testutil.Activity(t, db, "old@x.com", nil, &coach.ID)
	testutil.Message(t, db, "old@x.com", "coach@x.com")
	testutil.Message(t, db, "coach@x.com", "old@x.com")

	got, err := s.UpdateProfile(ctx, client.ID, UpdateProfileInput{
		Name: "Lee", Email: "new@x.com", Phone: "555", Role: models.RoleClient, IsActive: true,
	})
	if err != nil || got == nil {
		t.Fatalf("UpdateProfile = %v, %v", got, err)
	}
	if got.Email != "new@x.com" || got.PhoneNumber != "555" {
		t.Errorf("account = %+v", got)
	}

	checks := []struct {
		model interface{}
		query string
	}{
		{&models.CheckIn{}, "email = ?"},
		{&models.Notification{}, "email = ?"},
		{&models.Message{}, "sender = ?"},
		{&models.Message{}, "receiver = ?"},
		{&models.ClientRecord{}, "email = ?"},
	}
	for _, c := range checks {
		if n := testutil.Count(t, db, c.model, c.query, "old@x.com"); n != 0 {
			t.Errorf("%T %s old email: %d rows", c.model, c.query, n)
		}
		if n := testutil.Count(t, db, c.model, c.query, "new@x.com"); n != 1 {
			t.Errorf("%T %s new email: %d rows, want 1", c.model, c.query, n)
		}
	}
	var rec models.ClientRecord
	db.First(&rec, "id = ?", record.ID)
	if rec.Phone != "555" {
		t.Errorf("client record phone = %q", rec.Phone)
	}

	missing, err := s.UpdateProfile(ctx, uuid.New(), UpdateProfileInput{Email: "q@x.com", Role: models.RoleClient})
	if err != nil || missing != nil {
		t.Errorf("unknown id = %v, %v", missing, err)
	}
}

func TestUpdateProfileEmailTaken(t *testing.T) {
	s, db := newAccountService(t)
	ctx := context.Background()

	mustCreate(t, s, CreateAccountInput{Role: models.RoleCoach, Email: "taken@x.com", Password: "pw"})
	c := mustCreate(t, s, CreateAccountInput{Role: models.RoleCoach, Email: "mine@x.com", Password: "pw"})
	testutil.Activity(t, db, "mine@x.com", nil, nil)

	_, err := s.UpdateProfile(ctx, c.ID, UpdateProfileInput{Email: "taken@x.com", Role: models.RoleCoach, IsActive: true})
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("err = %v, want ErrEmailTaken", err)
	}
	if n := testutil.Count(t, db, &models.CheckIn{}, "email = ?", "mine@x.com"); n != 1 {
		t.Errorf("rename was not rolled back: %d check-ins under old email", n)
	}
}

func TestUpdateProfileRollsBackRename(t *testing.T) {
	s, db := newAccountService(t)
	ctx := context.Background()

	coach := mustCreate(t, s, CreateAccountInput{Role: models.RoleCoach, Email: "a@x.com", Password: "pw"})
	testutil.Activity(t, db, "a@x.com", &coach.ID, nil)
	testutil.Message(t, db, "a@x.com", "l@x.com")

	injected := errors.New("notifications unavailable")
	err := db.Callback().Update().Before("gorm:update").Register("test:fail_notifications", func(tx *gorm.DB) {
		if tx.Statement.Table == "notifications" {
			_ = tx.AddError(injected)
		}
	})
	if err != nil {
		t.Fatalf("register callback: %v", err)
	}

	_, err = s.UpdateProfile(ctx, coach.ID, UpdateProfileInput{Email: "b@x.com", Role: models.RoleCoach, IsActive: true})
	if !errors.Is(err, lifecycle.ErrTransactionFailure) || !errors.Is(err, injected) {
		t.Fatalf("err = %v, want transaction failure wrapping the injected error", err)
	}

	if got := loadRaw(t, db, coach.ID); got.Email != "a@x.com" {
		t.Errorf("account email = %q, want a@x.com", got.Email)
	}
	if n := testutil.Count(t, db, &models.CheckIn{}, "email = ?", "a@x.com"); n != 1 {
		t.Errorf("check-ins under old email = %d, want 1", n)
	}
	if n := testutil.Count(t, db, &models.Message{}, "sender = ?", "a@x.com"); n != 1 {
		t.Errorf("messages under old email = %d, want 1", n)
	}
	if n := testutil.Count(t, db, &models.Notification{}, "email = ?", "a@x.com"); n != 1 {
		t.Errorf("notifications under old email = %d, want 1", n)
	}
}

func TestUpdateCoach(t *testing.T) {
	s, db := newAccountService(t)
	ctx := context.Background()

	coach := mustCreate(t, s, CreateAccountInput{Role: models.RoleCoach, Name: "Kim", Email: "kim@x.com", Password: "pw"})
	client := mustCreate(t, s, CreateAccountInput{Role: models.RoleClient, Email: "l@x.com", Password: "pw"})
	testutil.Activity(t, db, "kim@x.com", nil, &coach.ID)
	testutil.Message(t, db, "l@x.com", "kim@x.com")

	got, err := s.UpdateCoach(ctx, coach.ID, "Kim Park", "kim.park@x.com", "77")
	if err != nil || got == nil {
		t.Fatalf("UpdateCoach = %v, %v", got, err)
	}
	if got.Name != "Kim Park" || got.Email != "kim.park@x.com" || got.Role != models.RoleCoach || !got.IsActive {
		t.Errorf("coach = %+v", got)
	}
	if n := testutil.Count(t, db, &models.CheckIn{}, "email = ?", "kim.park@x.com"); n != 1 {
		t.Errorf("check-ins renamed = %d, want 1", n)
	}
	if n := testutil.Count(t, db, &models.Message{}, "receiver = ?", "kim.park@x.com"); n != 1 {
		t.Errorf("messages renamed = %d, want 1", n)
	}

	if got, err := s.UpdateCoach(ctx, client.ID, "x", "x@x.com", ""); got != nil || err != nil {
		t.Errorf("UpdateCoach on client = %+v, %v; want nil, nil", got, err)
	}
	if raw := loadRaw(t, db, client.ID); raw.Email != "l@x.com" {
		t.Errorf("client email changed to %q", raw.Email)
	}
}

func TestUpdateProfileSyncsClinic(t *testing.T) {
	s, db := newAccountService(t)
	clinic := testutil.Clinic(t, db, "east")
	admin := mustCreate(t, s, CreateAccountInput{Role: models.RoleClinicAdmin, Email: "boss@x.com", Password: "pw", ClinicID: &clinic.ID})

	_, err := s.UpdateProfile(context.Background(), admin.ID, UpdateProfileInput{
		Name: "East Wellness", Email: "boss@x.com", Phone: "123", Role: models.RoleClinicAdmin, IsActive: true, SyncClinic: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	var got models.Clinic
	db.First(&got, "id = ?", clinic.ID)
	if got.Name != "East Wellness" || got.Phone != "123" || got.Email != "boss@x.com" {
		t.Errorf("clinic = %+v", got)
	}
}

func TestReads(t *testing.T) {
	s, db := newAccountService(t)
	ctx := context.Background()
	clinic := testutil.Clinic(t, db, "west")
	admin := mustCreate(t, s, CreateAccountInput{Role: models.RoleClinicAdmin, Email: "adm@x.com", Password: "pw", ClinicID: &clinic.ID})
	mustCreate(t, s, CreateAccountInput{Role: models.RoleCoach, Email: "c1@x.com", Password: "pw", ClinicID: &clinic.ID})
	mustCreate(t, s, CreateAccountInput{Role: models.RoleCoach, Email: "c2@x.com", Password: "pw"})

	coaches, err := s.ListByClinicRole(ctx, clinic.ID, models.RoleCoach)
	if err != nil || len(coaches) != 1 || coaches[0].Email != "c1@x.com" {
		t.Errorf("ListByClinicRole = %+v, %v", coaches, err)
	}
	for _, c := range coaches {
		if c.PasswordHash != "" {
			t.Error("listed account exposes credentials")
		}
	}
	got, err := s.ClinicAdmin(ctx, clinic.ID)
	if err != nil || got == nil || got.ID != admin.ID {
		t.Errorf("ClinicAdmin = %+v, %v", got, err)
	}
	if got, err := s.GetByEmail(ctx, "nobody@x.com"); got != nil || err != nil {
		t.Errorf("GetByEmail unknown = %+v, %v", got, err)
	}
}

func TestDeleteByID(t *testing.T) {
	s, db := newAccountService(t)
	coach := mustCreate(t, s, CreateAccountInput{Role: models.RoleCoach, Email: "gone@x.com", Password: "pw"})
	testutil.Create(t, db, &models.RefreshToken{ID: uuid.New(), AccountID: coach.ID, TokenHash: "h"})

	got, err := s.DeleteByID(context.Background(), coach.ID)
	if err != nil || got == nil || got.ID != coach.ID {
		t.Fatalf("DeleteByID = %+v, %v", got, err)
	}
	if n := testutil.Count(t, db, &models.RefreshToken{}, ""); n != 0 {
		t.Errorf("refresh tokens left: %d", n)
	}
}
