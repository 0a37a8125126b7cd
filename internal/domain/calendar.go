package domain

import "time"

// CalendarEvent is the GORM model for the calendar_events table.
type CalendarEvent struct {
	ID          string     `json:"id" gorm:"type:varchar(36);primaryKey"`
	Title       string     `json:"title" gorm:"type:varchar(200);not null"`
	Description string     `json:"description" gorm:"type:text"`
	StartDate   time.Time  `json:"start_date" gorm:"index;not null"`
	EndDate     *time.Time `json:"end_date"`
	Type        string     `json:"type" gorm:"type:varchar(50)"`
	CustomerID  string     `json:"customer_id" gorm:"type:varchar(36);index"`
	AssignedTo  string     `json:"assigned_to" gorm:"type:varchar(36);index"`
	CreatedBy   string     `json:"created_by" gorm:"type:varchar(36)"`
	CreatedAt   time.Time  `json:"created_at" gorm:"autoCreateTime"`
}

// TableName specifies the table name for CalendarEvent.
func (CalendarEvent) TableName() string {
	return "calendar_events"
}

// EventFilter narrows calendar listings to a date window, optionally
// scoped to one assignee.
type EventFilter struct {
	StartDate  *time.Time
	EndDate    *time.Time
	AssignedTo string
}
