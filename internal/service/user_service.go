package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/Digvijay2347/B2B-Customer-Relationship-Management-CRM/internal/audit"
	"github.com/Digvijay2347/B2B-Customer-Relationship-Management-CRM/internal/auth"
	"github.com/Digvijay2347/B2B-Customer-Relationship-Management-CRM/internal/database"
	"github.com/Digvijay2347/B2B-Customer-Relationship-Management-CRM/internal/domain"
	"github.com/Digvijay2347/B2B-Customer-Relationship-Management-CRM/internal/log"
	"github.com/Digvijay2347/B2B-Customer-Relationship-Management-CRM/internal/repository"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidRole        = errors.New("invalid role")
	ErrWrongPassword      = errors.New("current password is incorrect")
)

// UserService covers registration, login, profiles and bulk import.
type UserService struct {
	users      repository.UserRepository
	activities repository.ActivityRepository
	tokens     *auth.Manager
}

// NewUserService creates the user service.
func NewUserService(users repository.UserRepository, activities repository.ActivityRepository, tokens *auth.Manager) *UserService {
	return &UserService{users: users, activities: activities, tokens: tokens}
}

// Register creates a user and issues a token for the new account.
func (s *UserService) Register(ctx context.Context, req domain.RegisterRequest) (*domain.TokenResponse, error) {
	if !auth.ValidRole(req.Role) {
		return nil, ErrInvalidRole
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         req.Role,
		Name:         req.Name,
		Phone:        req.Phone,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	audit.UserRegistered(ctx, user.ID, user.Email, user.Role)

	token, expiresAt, err := s.tokens.Issue(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &domain.TokenResponse{Token: token, ExpiresAt: expiresAt}, nil
}

// Login verifies credentials and issues a token. Both outcomes are
// recorded to the user activity trail.
func (s *UserService) Login(ctx context.Context, req domain.LoginRequest, ip string) (*domain.TokenResponse, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.recordActivity(ctx, user.ID, domain.ActivityLoginFailed, ip, nil)
		audit.LoginFailed(ctx, req.Email, ip)
		return nil, ErrInvalidCredentials
	}

	s.recordActivity(ctx, user.ID, domain.ActivityLoginSuccess, ip, nil)
	audit.LoginSucceeded(ctx, user.ID, user.Email, ip)

	token, expiresAt, err := s.tokens.Issue(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &domain.TokenResponse{Token: token, ExpiresAt: expiresAt}, nil
}

// Logout records the end of a session on the activity trail. Tokens are
// stateless and stay valid until expiry; this only feeds the session
// listing.
func (s *UserService) Logout(ctx context.Context, userID, ip string) {
	s.recordActivity(ctx, userID, domain.ActivityLogout, ip, nil)
	audit.Log(ctx, audit.ActionLogout, userID, "user logged out")
}

// GetProfile returns the caller's account record.
func (s *UserService) GetProfile(ctx context.Context, userID string) (*domain.User, error) {
	return s.users.GetByID(ctx, userID)
}

// UpdateProfile applies partial profile updates. A password change
// requires the current password to verify.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, req domain.UpdateProfileRequest) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	if req.Email != nil {
		user.Email = *req.Email
	}

	passwordChanged := false
	if req.NewPassword != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
			return nil, ErrWrongPassword
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = string(hash)
		passwordChanged = true
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	if passwordChanged {
		s.recordActivity(ctx, userID, domain.ActivityPasswordChange, "", nil)
	} else {
		s.recordActivity(ctx, userID, domain.ActivityProfileUpdate, "", nil)
	}
	return user, nil
}

// List returns all user accounts.
func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	return s.users.List(ctx)
}

// Activities returns a user's recent activity trail. An empty userID
// spans all users.
func (s *UserService) Activities(ctx context.Context, userID string, types []string) ([]domain.UserActivity, error) {
	return s.activities.ListUserActivities(ctx, userID, types)
}

// Sessions returns the login-session trail (login and logout rows),
// newest first, hydrated with the acting user. An empty userID spans all
// users.
func (s *UserService) Sessions(ctx context.Context, userID string) ([]domain.UserActivityView, error) {
	activities, err := s.activities.ListUserActivities(ctx, userID, []string{
		domain.ActivityLoginSuccess,
		domain.ActivityLogout,
	})
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(activities))
	seen := make(map[string]bool, len(activities))
	for _, a := range activities {
		if !seen[a.UserID] {
			seen[a.UserID] = true
			ids = append(ids, a.UserID)
		}
	}

	refs, err := s.users.GetRefs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load session users: %w", err)
	}

	views := make([]domain.UserActivityView, len(activities))
	for i, a := range activities {
		ref, ok := refs[a.UserID]
		if !ok {
			ref = domain.UserRef{ID: a.UserID}
		}
		views[i] = domain.UserActivityView{UserActivity: a, User: ref}
	}
	return views, nil
}

// Import creates accounts in bulk. Each record is validated and created
// independently; one bad row never aborts the batch.
func (s *UserService) Import(ctx context.Context, records []domain.ImportRecord, importedBy string) *domain.ImportResult {
	result := &domain.ImportResult{
		Successful: []domain.ImportOutcome{},
		Failed:     []domain.ImportOutcome{},
	}

	for _, record := range records {
		outcome := s.importOne(ctx, record)
		if outcome.Error != "" {
			result.Failed = append(result.Failed, outcome)
			continue
		}
		result.Successful = append(result.Successful, outcome)
		s.recordActivity(ctx, outcome.ID, domain.ActivityUserImported, "", database.JSONMap{"imported_by": importedBy})
	}

	audit.UsersImported(ctx, importedBy, len(result.Successful), len(result.Failed))
	return result
}

func (s *UserService) importOne(ctx context.Context, record domain.ImportRecord) domain.ImportOutcome {
	if record.Email == "" || record.Password == "" {
		return domain.ImportOutcome{Email: record.Email, Error: "email and password are required"}
	}
	if !auth.ValidRole(record.Role) {
		return domain.ImportOutcome{Email: record.Email, Error: "invalid role: " + record.Role}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(record.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.ImportOutcome{Email: record.Email, Error: "failed to hash password"}
	}

	user := &domain.User{
		Email:        record.Email,
		PasswordHash: string(hash),
		Role:         record.Role,
		Name:         record.Name,
		Phone:        record.Phone,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return domain.ImportOutcome{Email: record.Email, Error: "email already exists"}
		}
		return domain.ImportOutcome{Email: record.Email, Error: err.Error()}
	}

	return domain.ImportOutcome{Email: user.Email, Role: user.Role, ID: user.ID}
}

func (s *UserService) recordActivity(ctx context.Context, userID, activityType, ip string, details database.JSONMap) {
	activity := &domain.UserActivity{
		UserID:       userID,
		ActivityType: activityType,
		Details:      details,
		IPAddress:    ip,
	}
	if err := s.activities.RecordUserActivity(ctx, activity); err != nil {
		log.L().Warn().Err(err).Str(log.FieldUserID, userID).Msg("record user activity failed")
	}
}
