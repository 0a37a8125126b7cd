package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Digvijay2347/B2B-Customer-Relationship-Management-CRM/internal/domain"
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrEmailExists      = errors.New("email already exists")
	ErrCustomerNotFound = errors.New("customer not found")
	ErrSessionNotFound  = errors.New("chat session not found")
	ErrDealNotFound     = errors.New("deal not found")
	ErrCampaignNotFound = errors.New("campaign not found")
	ErrEventNotFound    = errors.New("calendar event not found")
	ErrRuleNotFound     = errors.New("workflow rule not found")
)

// UserRepository defines the interface for user persistence.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetRefs(ctx context.Context, ids []string) (map[string]domain.UserRef, error)
	List(ctx context.Context) ([]domain.User, error)
	Update(ctx context.Context, user *domain.User) error
}

// CustomerRepository defines the interface for customer persistence.
type CustomerRepository interface {
	Create(ctx context.Context, customer *domain.Customer) error
	GetByID(ctx context.Context, id string) (*domain.Customer, error)
	List(ctx context.Context, filter domain.CustomerFilter) (*domain.CustomerPage, error)
	Target(ctx context.Context, filters domain.TargetFilters, limit int) ([]domain.Customer, error)
	Update(ctx context.Context, customer *domain.Customer) error
	Delete(ctx context.Context, id string) error
	TouchLastContact(ctx context.Context, id string, at time.Time) error
}

// ChatRepository defines the interface for chat session and message
// persistence.
type ChatRepository interface {
	CreateSession(ctx context.Context, session *domain.ChatSession) error
	GetSession(ctx context.Context, id string) (*domain.ChatSession, error)
	ListSessions(ctx context.Context, status, participantID string) ([]domain.ChatSession, error)
	CloseSession(ctx context.Context, id string) error
	TouchSession(ctx context.Context, id string) error
	CreateMessage(ctx context.Context, msg *domain.ChatMessage) error
	ListMessages(ctx context.Context, chatID string) ([]domain.ChatMessage, error)
}

// DealRepository defines the interface for deal persistence.
type DealRepository interface {
	Create(ctx context.Context, deal *domain.Deal) error
	GetByID(ctx context.Context, id string) (*domain.Deal, error)
	List(ctx context.Context, assignedTo string) ([]domain.Deal, error)
	ListOpen(ctx context.Context, assignedTo string) ([]domain.Deal, error)
	Update(ctx context.Context, deal *domain.Deal) error
	UpdateStage(ctx context.Context, id, stage string) (*domain.Deal, error)
	Delete(ctx context.Context, id string) error
}

// CampaignRepository defines the interface for campaign persistence.
type CampaignRepository interface {
	Create(ctx context.Context, campaign *domain.Campaign) error
	GetByID(ctx context.Context, id string) (*domain.Campaign, error)
	List(ctx context.Context) ([]domain.Campaign, error)
	Update(ctx context.Context, campaign *domain.Campaign) error
	Delete(ctx context.Context, id string) error
	UpsertRecipients(ctx context.Context, recipients []domain.CampaignCustomer) error
	ListRecipients(ctx context.Context, campaignID string) ([]domain.CampaignCustomer, error)
	UpdateRecipientStatus(ctx context.Context, campaignID, customerID, status string) error
}

// CalendarRepository defines the interface for calendar event persistence.
type CalendarRepository interface {
	Create(ctx context.Context, event *domain.CalendarEvent) error
	List(ctx context.Context, filter domain.EventFilter) ([]domain.CalendarEvent, error)
	Update(ctx context.Context, event *domain.CalendarEvent) error
	Delete(ctx context.Context, id string) error
}

// WorkflowRepository defines the interface for workflow rule and task
// persistence.
type WorkflowRepository interface {
	CreateRule(ctx context.Context, rule *domain.WorkflowRule) error
	ListRules(ctx context.Context) ([]domain.WorkflowRule, error)
	ListActiveRules(ctx context.Context, triggerType string) ([]domain.WorkflowRule, error)
	UpdateRule(ctx context.Context, rule *domain.WorkflowRule) error
	DeleteRule(ctx context.Context, id string) error
	CreateTask(ctx context.Context, task *domain.Task) error
	ListTasks(ctx context.Context, assignedTo string) ([]domain.Task, error)
}

// ActivityRepository defines the interface for activity persistence.
// An empty userID on ListUserActivities spans all users.
type ActivityRepository interface {
	RecordUserActivity(ctx context.Context, activity *domain.UserActivity) error
	ListUserActivities(ctx context.Context, userID string, types []string) ([]domain.UserActivity, error)
	RecordCustomerActivity(ctx context.Context, activity *domain.CustomerActivity) error
	ListCustomerActivities(ctx context.Context, customerID, activityType string) ([]domain.CustomerActivity, error)
}
