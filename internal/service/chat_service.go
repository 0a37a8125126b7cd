package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/singleflight"

	"github.com/Digvijay2347/B2B-Customer-Relationship-Management-CRM/internal/audit"
	"github.com/Digvijay2347/B2B-Customer-Relationship-Management-CRM/internal/cache"
	"github.com/Digvijay2347/B2B-Customer-Relationship-Management-CRM/internal/domain"
	"github.com/Digvijay2347/B2B-Customer-Relationship-Management-CRM/internal/hub"
	"github.com/Digvijay2347/B2B-Customer-Relationship-Management-CRM/internal/log"
	"github.com/Digvijay2347/B2B-Customer-Relationship-Management-CRM/internal/relay"
	"github.com/Digvijay2347/B2B-Customer-Relationship-Management-CRM/internal/repository"
)

// ChatService implements the relay operations: session lifecycle,
// message persistence and room fan-out.
type ChatService struct {
	chats     repository.ChatRepository
	customers repository.CustomerRepository
	users     repository.UserRepository
	hub       *hub.Hub
	cache     *cache.RedisCache
	history   singleflight.Group
}

// NewChatService creates the chat service. cache may be nil; everything
// then goes to the database.
func NewChatService(
	chats repository.ChatRepository,
	customers repository.CustomerRepository,
	users repository.UserRepository,
	h *hub.Hub,
	c *cache.RedisCache,
) *ChatService {
	return &ChatService{
		chats:     chats,
		customers: customers,
		users:     users,
		hub:       h,
		cache:     c,
	}
}

// HandleStartChat opens a fresh session between the caller and a
// customer. A new session row is always created; concurrent starts for
// the same customer yield distinct sessions.
func (s *ChatService) HandleStartChat(ctx context.Context, client *hub.Client, customerID string) error {
	customer, err := s.getCustomer(ctx, customerID)
	if err != nil {
		if errors.Is(err, repository.ErrCustomerNotFound) {
			client.SendMessage(relay.NewErrorEvent("Customer not found", ""))
			return nil
		}
		client.SendMessage(relay.NewErrorEvent("Failed to start chat", ""))
		return fmt.Errorf("start chat: %w", err)
	}

	session := &domain.ChatSession{
		CustomerID: customer.ID,
		AgentID:    client.UserID,
	}
	if err := s.chats.CreateSession(ctx, session); err != nil {
		client.SendMessage(relay.NewErrorEvent("Failed to start chat", ""))
		return fmt.Errorf("create session: %w", err)
	}

	s.hub.JoinRoom(client, session.ID)

	log.L().Info().
		Str(log.FieldChatID, session.ID).
		Str(log.FieldUserID, client.UserID).
		Msg("chat started")

	return client.SendMessage(relay.ChatStartedEvent{
		Type: relay.EvtChatStarted,
		Session: domain.HydratedSession{
			ChatSession: *session,
			Customer:    customer.Ref(),
		},
	})
}

// HandleSendMessage persists a message and fans it out to the session
// room. The session must exist; no participant check is applied here, so
// any connected agent who knows the session id may post into it. A
// persistence failure is reported to the sender only and nothing is
// broadcast.
func (s *ChatService) HandleSendMessage(ctx context.Context, client *hub.Client, chatID, content string) error {
	if _, err := s.chats.GetSession(ctx, chatID); err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			client.SendMessage(relay.NewErrorEvent("Chat session not found", ""))
			return nil
		}
		client.SendMessage(relay.NewErrorEvent("Failed to send message", ""))
		return fmt.Errorf("load session: %w", err)
	}

	msg := &domain.ChatMessage{
		ChatID:   chatID,
		SenderID: client.UserID,
		Content:  content,
	}
	if err := s.chats.CreateMessage(ctx, msg); err != nil {
		client.SendMessage(relay.NewErrorEvent("Failed to send message", ""))
		return fmt.Errorf("create message: %w", err)
	}

	if err := s.chats.TouchSession(ctx, chatID); err != nil {
		log.L().Warn().Err(err).Str(log.FieldChatID, chatID).Msg("touch session failed")
	}
	s.invalidateHistory(ctx, chatID)

	sender := s.senderRef(ctx, client)

	return s.hub.BroadcastToRoom(chatID, relay.MessageBroadcast{
		Type: relay.EvtMessage,
		Message: domain.HydratedMessage{
			ChatMessage: *msg,
			Sender:      sender,
		},
	}, "")
}

// HandleFetchHistory unicasts the full message history of a session as
// one batch, oldest first. Concurrent fetches for the same session share
// a single database read.
func (s *ChatService) HandleFetchHistory(ctx context.Context, client *hub.Client, chatID string) error {
	messages, err := s.loadHistory(ctx, chatID)
	if err != nil {
		client.SendMessage(relay.NewErrorEvent("Failed to fetch chat history", ""))
		return fmt.Errorf("fetch history: %w", err)
	}

	return client.SendMessage(relay.ChatHistoryEvent{
		Type:     relay.EvtChatHistory,
		ChatID:   chatID,
		Messages: messages,
	})
}

// HandleCloseChat closes a session, notifies the room and evicts every
// member. The close is terminal; the room ceases to exist afterwards.
func (s *ChatService) HandleCloseChat(ctx context.Context, client *hub.Client, chatID string) error {
	if err := s.chats.CloseSession(ctx, chatID); err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			client.SendMessage(relay.NewErrorEvent("Chat session not found", ""))
			return nil
		}
		client.SendMessage(relay.NewErrorEvent("Failed to close chat", ""))
		return fmt.Errorf("close session: %w", err)
	}

	s.hub.CloseRoom(chatID, relay.ChatClosedEvent{
		Type:   relay.EvtChatClosed,
		ChatID: chatID,
	})

	audit.LogWithTarget(ctx, audit.ActionChatClosed, client.UserID, chatID, "chat closed")
	return nil
}

// HandleTyping relays a typing indicator to the session room, excluding
// the typist. Best effort, never persisted.
func (s *ChatService) HandleTyping(client *hub.Client, eventType, chatID, userID string) {
	if userID == "" {
		userID = client.UserID
	}
	s.hub.BroadcastToRoom(chatID, relay.TypingEvent{
		Type:   eventType,
		ChatID: chatID,
		UserID: userID,
	}, client.ID)
}

// History gets the hydrated message history for REST callers.
func (s *ChatService) History(ctx context.Context, chatID string) ([]domain.HydratedMessage, error) {
	return s.loadHistory(ctx, chatID)
}

func (s *ChatService) loadHistory(ctx context.Context, chatID string) ([]domain.HydratedMessage, error) {
	v, err, _ := s.history.Do(chatID, func() (interface{}, error) {
		if s.cache != nil {
			cached, err := s.cache.GetChatHistory(ctx, chatID)
			if err == nil {
				return cached, nil
			}
			if !errors.Is(err, cache.ErrCacheMiss) {
				log.L().Warn().Err(err).Str(log.FieldChatID, chatID).Msg("history cache read failed")
			}
		}

		messages, err := s.chats.ListMessages(ctx, chatID)
		if err != nil {
			return nil, err
		}
		hydrated, err := s.hydrate(ctx, messages)
		if err != nil {
			return nil, err
		}

		if s.cache != nil {
			if err := s.cache.SetChatHistory(ctx, chatID, hydrated); err != nil {
				log.L().Warn().Err(err).Str(log.FieldChatID, chatID).Msg("history cache write failed")
			}
		}
		return hydrated, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.HydratedMessage), nil
}

// hydrate joins each message with its sender snapshot in one batched
// lookup.
func (s *ChatService) hydrate(ctx context.Context, messages []domain.ChatMessage) ([]domain.HydratedMessage, error) {
	ids := make([]string, 0, len(messages))
	seen := make(map[string]bool, len(messages))
	for _, m := range messages {
		if !seen[m.SenderID] {
			seen[m.SenderID] = true
			ids = append(ids, m.SenderID)
		}
	}

	refs, err := s.users.GetRefs(ctx, ids)
	if err != nil {
		return nil, err
	}

	hydrated := make([]domain.HydratedMessage, 0, len(messages))
	for _, m := range messages {
		hydrated = append(hydrated, domain.HydratedMessage{
			ChatMessage: m,
			Sender:      refs[m.SenderID],
		})
	}
	return hydrated, nil
}

func (s *ChatService) senderRef(ctx context.Context, client *hub.Client) domain.UserRef {
	refs, err := s.users.GetRefs(ctx, []string{client.UserID})
	if err != nil {
		log.L().Warn().Err(err).Str(log.FieldUserID, client.UserID).Msg("sender lookup failed")
		return domain.UserRef{ID: client.UserID, Email: client.Email}
	}
	if ref, ok := refs[client.UserID]; ok {
		return ref
	}
	return domain.UserRef{ID: client.UserID, Email: client.Email}
}

func (s *ChatService) getCustomer(ctx context.Context, id string) (*domain.Customer, error) {
	if s.cache != nil {
		customer, err := s.cache.GetCustomer(ctx, id)
		if err == nil {
			return customer, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			log.L().Warn().Err(err).Msg("customer cache read failed")
		}
	}

	customer, err := s.customers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetCustomer(ctx, customer); err != nil {
			log.L().Warn().Err(err).Msg("customer cache write failed")
		}
	}
	return customer, nil
}

func (s *ChatService) invalidateHistory(ctx context.Context, chatID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateChatHistory(ctx, chatID); err != nil {
		log.L().Warn().Err(err).Str(log.FieldChatID, chatID).Msg("history cache invalidation failed")
	}
}
