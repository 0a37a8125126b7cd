package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// Workflow trigger types.
const (
	TriggerCustomerCreated = "customer_created"
	TriggerCustomerUpdated = "customer_updated"
	TriggerCampaignCreated = "campaign_created"
	TriggerDealStageChange = "deal_stage_changed"
)

// Workflow action types.
const (
	ActionSendEmail        = "send_email"
	ActionCreateTask       = "create_task"
	ActionSendNotification = "send_notification"
)

// Task statuses.
const (
	TaskStatusPending = "pending"
	TaskStatusDone    = "done"
)

// WorkflowAction is one action executed when a rule fires.
type WorkflowAction struct {
	Type         string `json:"type"`
	Template     string `json:"template,omitempty"`
	TaskTemplate string `json:"taskTemplate,omitempty"`
	AssignTo     string `json:"assignTo,omitempty"`
	DueInDays    int    `json:"dueInDays,omitempty"`
}

// ActionList stores workflow actions as a JSON column.
type ActionList []WorkflowAction

// Scan implements the sql.Scanner interface.
func (a *ActionList) Scan(value interface{}) error {
	if value == nil {
		*a = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, a)
	case string:
		return json.Unmarshal([]byte(v), a)
	default:
		return errors.New("ActionList: unsupported scan type")
	}
}

// Value implements the driver.Valuer interface.
func (a ActionList) Value() (driver.Value, error) {
	if a == nil {
		return nil, nil
	}
	data, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// GormDataType returns the GORM data type hint.
func (ActionList) GormDataType() string {
	return "text"
}

// WorkflowRule is the GORM model for the workflow_rules table.
type WorkflowRule struct {
	ID          string     `json:"id" gorm:"type:varchar(36);primaryKey"`
	Name        string     `json:"name" gorm:"type:varchar(200);not null"`
	Description string     `json:"description" gorm:"type:text"`
	TriggerType string     `json:"trigger_type" gorm:"type:varchar(50);index;not null"`
	Actions     ActionList `json:"actions" gorm:"type:text"`
	IsActive    bool       `json:"is_active" gorm:"index;default:true"`
	CreatedBy   string     `json:"created_by" gorm:"type:varchar(36)"`
	CreatedAt   time.Time  `json:"created_at" gorm:"autoCreateTime"`
}

// TableName specifies the table name for WorkflowRule.
func (WorkflowRule) TableName() string {
	return "workflow_rules"
}

// Task is the GORM model for the tasks table; rows are created by the
// workflow executor's create_task action.
type Task struct {
	ID         string     `json:"id" gorm:"type:varchar(36);primaryKey"`
	Title      string     `json:"title" gorm:"type:varchar(200);not null"`
	AssignedTo string     `json:"assigned_to" gorm:"type:varchar(36);index"`
	DueDate    *time.Time `json:"due_date"`
	Status     string     `json:"status" gorm:"type:varchar(20);default:'pending'"`
	CreatedAt  time.Time  `json:"created_at" gorm:"autoCreateTime"`
}

// TableName specifies the table name for Task.
func (Task) TableName() string {
	return "tasks"
}
