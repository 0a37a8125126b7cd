package domain

import (
	"time"

	"github.com/Digvijay2347/B2B-Customer-Relationship-Management-CRM/internal/database"
)

// User activity types recorded to the user_activities table.
const (
	ActivityLoginSuccess   = "login_success"
	ActivityLoginFailed    = "login_failed"
	ActivityLogout         = "logout"
	ActivityPasswordChange = "password_change"
	ActivityProfileUpdate  = "profile_update"
	ActivityUserImported   = "user_imported"
	ActivityCampaignMade   = "campaign_created"
)

// Customer activity types recorded to the customer_activities table.
const (
	CustomerActivityAssigned     = "customer_assigned"
	CustomerActivityDealCreated  = "deal_created"
	CustomerActivityStageChanged = "deal_stage_changed"
	CustomerActivityEmailOpened  = "email_opened"
	CustomerActivityLinkClicked  = "link_clicked"
)

// UserActivity is the GORM model for the user_activities table.
type UserActivity struct {
	ID           string           `json:"id" gorm:"type:varchar(36);primaryKey"`
	UserID       string           `json:"user_id" gorm:"type:varchar(36);index"`
	ActivityType string           `json:"activity_type" gorm:"type:varchar(50);index;not null"`
	Details      database.JSONMap `json:"details" gorm:"type:text"`
	IPAddress    string           `json:"ip_address" gorm:"type:varchar(45)"`
	CreatedAt    time.Time        `json:"created_at" gorm:"autoCreateTime"`
}

// TableName specifies the table name for UserActivity.
func (UserActivity) TableName() string {
	return "user_activities"
}

// UserActivityView is an activity row hydrated with the acting user,
// returned from the login-session listing.
type UserActivityView struct {
	UserActivity
	User UserRef `json:"user"`
}

// CustomerActivity is the GORM model for the customer_activities table.
type CustomerActivity struct {
	ID           string           `json:"id" gorm:"type:varchar(36);primaryKey"`
	CustomerID   string           `json:"customer_id" gorm:"type:varchar(36);index;not null"`
	ActivityType string           `json:"activity_type" gorm:"type:varchar(50);index;not null"`
	Details      database.JSONMap `json:"details" gorm:"type:text"`
	CreatedBy    string           `json:"created_by" gorm:"type:varchar(36)"`
	CreatedAt    time.Time        `json:"created_at" gorm:"autoCreateTime"`
}

// TableName specifies the table name for CustomerActivity.
func (CustomerActivity) TableName() string {
	return "customer_activities"
}
