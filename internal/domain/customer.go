package domain

import (
	"time"

	"github.com/Digvijay2347/B2B-Customer-Relationship-Management-CRM/internal/database"
)

// Customer statuses.
const (
	CustomerStatusActive    = "active"
	CustomerStatusInactive  = "inactive"
	CustomerStatusLead      = "lead"
	CustomerStatusConverted = "converted"
)

// Customer is the GORM model for the customers table.
type Customer struct {
	ID              string               `json:"id" gorm:"type:varchar(36);primaryKey"`
	Name            string               `json:"name" gorm:"type:varchar(200);not null"`
	Email           string               `json:"email" gorm:"type:varchar(255);index"`
	Phone           string               `json:"phone" gorm:"type:varchar(30)"`
	Company         string               `json:"company" gorm:"type:varchar(200)"`
	Industry        string               `json:"industry" gorm:"type:varchar(100);index"`
	Location        string               `json:"location" gorm:"type:varchar(100);index"`
	Status          string               `json:"status" gorm:"type:varchar(20);index;default:'lead'"`
	Tags            database.StringArray `json:"tags" gorm:"type:text"`
	Notes           string               `json:"notes" gorm:"type:text"`
	AssignedTo      string               `json:"assigned_to" gorm:"type:varchar(36);index"`
	AssignedBy      string               `json:"assigned_by" gorm:"type:varchar(36)"`
	AssignmentDate  *time.Time           `json:"assignment_date"`
	CreatedBy       string               `json:"created_by" gorm:"type:varchar(36)"`
	LastContactDate *time.Time           `json:"last_contact_date"`
	CreatedAt       time.Time            `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt       time.Time            `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for Customer.
func (Customer) TableName() string {
	return "customers"
}

// CustomerRef is the embedded customer snapshot carried by chat_started
// events and campaign recipient listings.
type CustomerRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Ref returns the embeddable snapshot of the customer.
func (c *Customer) Ref() CustomerRef {
	return CustomerRef{ID: c.ID, Name: c.Name, Email: c.Email}
}

// CustomerFilter narrows customer listings.
type CustomerFilter struct {
	Search     string
	Industry   string
	Location   string
	Status     string
	AssignedTo string
	Page       int
	PageSize   int
}

// CustomerPage is one page of a customer listing.
type CustomerPage struct {
	Customers []Customer `json:"customers"`
	Total     int        `json:"total"`
	Page      int        `json:"page"`
	PageSize  int        `json:"pageSize"`
}
