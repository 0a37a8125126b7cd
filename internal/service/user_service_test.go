package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Digvijay2347/B2B-Customer-Relationship-Management-CRM/internal/auth"
	"github.com/Digvijay2347/B2B-Customer-Relationship-Management-CRM/internal/domain"
	"github.com/Digvijay2347/B2B-Customer-Relationship-Management-CRM/internal/repository"
)

// fakeUserStore is a stateful user repository for account flows.
type fakeUserStore struct {
	byID    map[string]*domain.User
	byEmail map[string]*domain.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{
		byID:    make(map[string]*domain.User),
		byEmail: make(map[string]*domain.User),
	}
}

func (r *fakeUserStore) Create(ctx context.Context, user *domain.User) error {
	if _, exists := r.byEmail[user.Email]; exists {
		return repository.ErrEmailExists
	}
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	u := *user
	r.byID[u.ID] = &u
	r.byEmail[u.Email] = &u
	return nil
}

func (r *fakeUserStore) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if u, ok := r.byID[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, repository.ErrUserNotFound
}

func (r *fakeUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if u, ok := r.byEmail[email]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, repository.ErrUserNotFound
}

func (r *fakeUserStore) GetRefs(ctx context.Context, ids []string) (map[string]domain.UserRef, error) {
	out := make(map[string]domain.UserRef, len(ids))
	for _, id := range ids {
		if u, ok := r.byID[id]; ok {
			out[id] = u.Ref()
		}
	}
	return out, nil
}

func (r *fakeUserStore) List(ctx context.Context) ([]domain.User, error) {
	var out []domain.User
	for _, u := range r.byID {
		out = append(out, *u)
	}
	return out, nil
}

func (r *fakeUserStore) Update(ctx context.Context, user *domain.User) error {
	u := *user
	r.byID[u.ID] = &u
	r.byEmail[u.Email] = &u
	return nil
}

func newUserService() (*UserService, *fakeUserStore, *fakeActivityRepo) {
	store := newFakeUserStore()
	activities := &fakeActivityRepo{}
	tokens := auth.NewManager("test-secret", time.Hour, "crm-test")
	return NewUserService(store, activities, tokens), store, activities
}

func TestRegisterAndLogin(t *testing.T) {
	svc, store, _ := newUserService()
	ctx := context.Background()

	resp, err := svc.Register(ctx, domain.RegisterRequest{
		Email:    "ada@crm.test",
		Password: "secret123",
		Role:     auth.RoleAgent,
		Name:     "Ada",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if resp.Token == "" {
		t.Fatal("no token issued on register")
	}

	user := store.byEmail["ada@crm.test"]
	if user == nil {
		t.Fatal("user not persisted")
	}
	if user.PasswordHash == "secret123" || user.PasswordHash == "" {
		t.Error("password stored unhashed")
	}

	login, err := svc.Login(ctx, domain.LoginRequest{Email: "ada@crm.test", Password: "secret123"}, "10.0.0.1")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	tokens := auth.NewManager("test-secret", time.Hour, "crm-test")
	claims, err := tokens.Verify(login.Token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.UserID != user.ID || claims.Role != auth.RoleAgent {
		t.Errorf("claims = %+v, want user %s role agent", claims, user.ID)
	}
}

func TestRegisterRejectsUnknownRole(t *testing.T) {
	svc, _, _ := newUserService()

	_, err := svc.Register(context.Background(), domain.RegisterRequest{
		Email:    "x@crm.test",
		Password: "secret123",
		Role:     "superuser",
	})
	if !errors.Is(err, ErrInvalidRole) {
		t.Fatalf("err = %v, want ErrInvalidRole", err)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _, _ := newUserService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, domain.RegisterRequest{
		Email: "ada@crm.test", Password: "secret123", Role: auth.RoleAgent,
	}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	if _, err := svc.Login(ctx, domain.LoginRequest{Email: "ada@crm.test", Password: "nope"}, ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}
	// Unknown accounts get the same error to avoid account probing.
	if _, err := svc.Login(ctx, domain.LoginRequest{Email: "ghost@crm.test", Password: "x"}, ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}
}

func TestUpdateProfilePasswordChange(t *testing.T) {
	svc, store, _ := newUserService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, domain.RegisterRequest{
		Email: "ada@crm.test", Password: "secret123", Role: auth.RoleAgent,
	}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	userID := store.byEmail["ada@crm.test"].ID

	// Wrong current password is rejected.
	_, err := svc.UpdateProfile(ctx, userID, domain.UpdateProfileRequest{
		CurrentPassword: "nope",
		NewPassword:     "newsecret",
	})
	if !errors.Is(err, ErrWrongPassword) {
		t.Fatalf("err = %v, want ErrWrongPassword", err)
	}

	if _, err := svc.UpdateProfile(ctx, userID, domain.UpdateProfileRequest{
		CurrentPassword: "secret123",
		NewPassword:     "newsecret",
	}); err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}

	if _, err := svc.Login(ctx, domain.LoginRequest{Email: "ada@crm.test", Password: "newsecret"}, ""); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
	if _, err := svc.Login(ctx, domain.LoginRequest{Email: "ada@crm.test", Password: "secret123"}, ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatal("old password still accepted")
	}
}

func TestSessionsListsLoginAndLogoutOnly(t *testing.T) {
	svc, store, _ := newUserService()
	ctx := context.Background()

	for _, email := range []string{"ada@crm.test", "ben@crm.test"} {
		if _, err := svc.Register(ctx, domain.RegisterRequest{
			Email: email, Password: "secret123", Role: auth.RoleAgent, Name: email[:3],
		}); err != nil {
			t.Fatalf("Register(%s): %v", email, err)
		}
		if _, err := svc.Login(ctx, domain.LoginRequest{Email: email, Password: "secret123"}, "10.0.0.1"); err != nil {
			t.Fatalf("Login(%s): %v", email, err)
		}
	}
	adaID := store.byEmail["ada@crm.test"].ID
	benID := store.byEmail["ben@crm.test"].ID
	svc.Logout(ctx, adaID, "10.0.0.1")

	// A failed login must not show up in the session trail.
	if _, err := svc.Login(ctx, domain.LoginRequest{Email: "ada@crm.test", Password: "nope"}, ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}

	// Empty user id spans every user's sessions.
	all, err := svc.Sessions(ctx, "")
	if err != nil {
		t.Fatalf("Sessions: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("sessions = %d, want 2 logins + 1 logout", len(all))
	}
	for _, s := range all {
		if s.ActivityType != domain.ActivityLoginSuccess && s.ActivityType != domain.ActivityLogout {
			t.Errorf("unexpected activity type %q", s.ActivityType)
		}
		if s.User.Email == "" {
			t.Errorf("session row for %s not hydrated with user", s.UserID)
		}
	}

	// Scoped to one user.
	own, err := svc.Sessions(ctx, benID)
	if err != nil {
		t.Fatalf("Sessions: %v", err)
	}
	if len(own) != 1 {
		t.Fatalf("ben sessions = %d, want 1", len(own))
	}
	if own[0].UserID != benID || own[0].User.Email != "ben@crm.test" {
		t.Errorf("session = %+v, want ben's login", own[0])
	}
}

func TestImportContinuesPastBadRows(t *testing.T) {
	svc, store, _ := newUserService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, domain.RegisterRequest{
		Email: "taken@crm.test", Password: "secret123", Role: auth.RoleAgent,
	}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	result := svc.Import(ctx, []domain.ImportRecord{
		{Email: "ok@crm.test", Password: "pw123456", Role: auth.RoleAgent, Name: "Ok"},
		{Email: "taken@crm.test", Password: "pw123456", Role: auth.RoleAgent},
		{Email: "norole@crm.test", Password: "pw123456", Role: "wizard"},
		{Email: "", Password: "pw123456", Role: auth.RoleAgent},
		{Email: "also-ok@crm.test", Password: "pw123456", Role: auth.RoleManager},
	}, "admin-1")

	if len(result.Successful) != 2 {
		t.Errorf("successful = %d, want 2", len(result.Successful))
	}
	if len(result.Failed) != 3 {
		t.Errorf("failed = %d, want 3", len(result.Failed))
	}
	if store.byEmail["also-ok@crm.test"] == nil {
		t.Error("later rows skipped after a failure")
	}
	for _, f := range result.Failed {
		if f.Error == "" {
			t.Errorf("failed row %q has no error", f.Email)
		}
	}
}
