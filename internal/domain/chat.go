package domain

import "time"

// Chat session statuses. A session transitions active -> closed exactly
// once; closed is terminal.
const (
	ChatStatusActive = "active"
	ChatStatusClosed = "closed"
)

// ChatSession is the GORM model for the chat_sessions table. One row per
// agent-customer conversation thread. AgentID is fixed at creation and
// never reassigned.
type ChatSession struct {
	ID         string    `json:"id" gorm:"type:varchar(36);primaryKey"`
	CustomerID string    `json:"customer_id" gorm:"type:varchar(36);index;not null"`
	AgentID    string    `json:"agent_id" gorm:"type:varchar(36);index;not null"`
	Status     string    `json:"status" gorm:"type:varchar(20);index;not null;default:'active'"`
	CreatedAt  time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt  time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for ChatSession.
func (ChatSession) TableName() string {
	return "chat_sessions"
}

// ChatMessage is the GORM model for the chat_messages table. Immutable
// once created; belongs to exactly one ChatSession.
type ChatMessage struct {
	ID        string    `json:"id" gorm:"type:varchar(36);primaryKey"`
	ChatID    string    `json:"chat_id" gorm:"type:varchar(36);index;not null"`
	SenderID  string    `json:"sender_id" gorm:"type:varchar(36);not null"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName specifies the table name for ChatMessage.
func (ChatMessage) TableName() string {
	return "chat_messages"
}

// HydratedMessage is a chat message with its sender snapshot, as
// broadcast to room members and returned by history queries.
type HydratedMessage struct {
	ChatMessage
	Sender UserRef `json:"sender"`
}

// HydratedSession is a chat session with its customer snapshot, as
// carried by the chat_started event.
type HydratedSession struct {
	ChatSession
	Customer CustomerRef `json:"customer"`
}
