package domain

import (
	"time"

	"github.com/Digvijay2347/B2B-Customer-Relationship-Management-CRM/internal/database"
)

// Campaign recipient statuses.
const (
	RecipientStatusPending = "pending"
	RecipientStatusSent    = "sent"
	RecipientStatusOpened  = "opened"
	RecipientStatusClicked = "clicked"
)

// Campaign is the GORM model for the campaigns table.
type Campaign struct {
	ID          string           `json:"id" gorm:"type:varchar(36);primaryKey"`
	Name        string           `json:"name" gorm:"type:varchar(200);not null"`
	Description string           `json:"description" gorm:"type:text"`
	Status      string           `json:"status" gorm:"type:varchar(20);index"`
	Type        string           `json:"type" gorm:"type:varchar(50)"`
	StartDate   *time.Time       `json:"start_date"`
	EndDate     *time.Time       `json:"end_date"`
	Filters     database.JSONMap `json:"filters" gorm:"type:text"`
	CreatedBy   string           `json:"created_by" gorm:"type:varchar(36)"`
	CreatedAt   time.Time        `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time        `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for Campaign.
func (Campaign) TableName() string {
	return "campaigns"
}

// CampaignCustomer is the GORM model for the campaign_customers join
// table tracking per-recipient delivery state.
type CampaignCustomer struct {
	CampaignID     string     `json:"campaign_id" gorm:"type:varchar(36);primaryKey"`
	CustomerID     string     `json:"customer_id" gorm:"type:varchar(36);primaryKey"`
	Status         string     `json:"status" gorm:"type:varchar(20);default:'pending'"`
	LastActionDate *time.Time `json:"last_action_date"`
	CreatedAt      time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt      time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for CampaignCustomer.
func (CampaignCustomer) TableName() string {
	return "campaign_customers"
}

// TargetFilters selects customers for campaign targeting.
type TargetFilters struct {
	Industries      []string `json:"industries"`
	Locations       []string `json:"locations"`
	LastContactDays int      `json:"lastContactDays"`
}

// Recipient is one campaign recipient with delivery state.
type Recipient struct {
	CustomerRef
	Status    string    `json:"status"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CampaignDetail is a campaign with recipient statistics.
type CampaignDetail struct {
	Campaign
	TotalRecipients int         `json:"total_recipients"`
	SentCount       int         `json:"sent_count"`
	OpenedCount     int         `json:"opened_count"`
	ClickedCount    int         `json:"clicked_count"`
	Recipients      []Recipient `json:"recipients"`
}
