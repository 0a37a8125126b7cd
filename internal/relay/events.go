package relay

import (
	"github.com/Digvijay2347/B2B-Customer-Relationship-Management-CRM/internal/domain"
)

// WebSocket event types from client.
const (
	EvtStartChat    = "start_chat"
	EvtMessage      = "message"
	EvtFetchHistory = "fetch_chat_history"
	EvtCloseChat    = "close_chat"
	EvtTypingStart  = "typing_start"
	EvtTypingStop   = "typing_stop"
)

// WebSocket event types to client.
const (
	EvtChatStarted = "chat_started"
	EvtChatHistory = "chat_history"
	EvtChatClosed  = "chat_closed"
	EvtError       = "error"
)

// BaseEvent carries the tag every inbound frame must have.
type BaseEvent struct {
	Type string `json:"type"`
}

// Client -> Server events

type StartChatEvent struct {
	Type       string `json:"type"`
	CustomerID string `json:"customerId"`
}

type MessageEvent struct {
	Type    string `json:"type"`
	ChatID  string `json:"chatId"`
	Content string `json:"content"`
}

type FetchHistoryEvent struct {
	Type   string `json:"type"`
	ChatID string `json:"chatId"`
}

type CloseChatEvent struct {
	Type   string `json:"type"`
	ChatID string `json:"chatId"`
}

type TypingEvent struct {
	Type   string `json:"type"`
	ChatID string `json:"chatId"`
	UserID string `json:"userId"`
}

// Server -> Client events

type ChatStartedEvent struct {
	Type    string                 `json:"type"`
	Session domain.HydratedSession `json:"session"`
}

type MessageBroadcast struct {
	Type    string                 `json:"type"`
	Message domain.HydratedMessage `json:"message"`
}

type ChatHistoryEvent struct {
	Type     string                   `json:"type"`
	ChatID   string                   `json:"chatId"`
	Messages []domain.HydratedMessage `json:"messages"`
}

type ChatClosedEvent struct {
	Type   string `json:"type"`
	ChatID string `json:"chatId"`
}

type ErrorEvent struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// NewErrorEvent builds the advisory error event unicast to a sender.
func NewErrorEvent(message, details string) ErrorEvent {
	return ErrorEvent{Type: EvtError, Message: message, Details: details}
}
