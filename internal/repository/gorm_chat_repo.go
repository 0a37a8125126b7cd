package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Digvijay2347/B2B-Customer-Relationship-Management-CRM/internal/domain"
)

// GormChatRepository implements ChatRepository using GORM.
type GormChatRepository struct {
	db *gorm.DB
}

// NewGormChatRepository creates a new GORM-based chat repository.
func NewGormChatRepository(db *gorm.DB) *GormChatRepository {
	return &GormChatRepository{db: db}
}

// CreateSession inserts a new chat session row. Status defaults to
// active; a fresh row is always created, never reused.
func (r *GormChatRepository) CreateSession(ctx context.Context, session *domain.ChatSession) error {
	if session.ID == "" {
		session.ID = uuid.New().String()
	}
	if session.Status == "" {
		session.Status = domain.ChatStatusActive
	}

	return r.db.WithContext(ctx).Create(session).Error
}

// GetSession retrieves a chat session by ID.
func (r *GormChatRepository) GetSession(ctx context.Context, id string) (*domain.ChatSession, error) {
	var session domain.ChatSession
	result := r.db.WithContext(ctx).First(&session, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, result.Error
	}
	return &session, nil
}

// ListSessions retrieves sessions, newest first, optionally filtered by
// status and scoped to one participant (agent).
func (r *GormChatRepository) ListSessions(ctx context.Context, status, participantID string) ([]domain.ChatSession, error) {
	query := r.db.WithContext(ctx).Model(&domain.ChatSession{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if participantID != "" {
		query = query.Where("agent_id = ?", participantID)
	}

	var sessions []domain.ChatSession
	if err := query.Order("created_at DESC").Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

// CloseSession marks a session closed and refreshes updated_at. The
// transition is terminal; closed sessions are never reopened.
func (r *GormChatRepository) CloseSession(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Model(&domain.ChatSession{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     domain.ChatStatusClosed,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// TouchSession refreshes a session's updated_at timestamp.
func (r *GormChatRepository) TouchSession(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Model(&domain.ChatSession{}).
		Where("id = ?", id).
		Update("updated_at", time.Now()).Error
}

// CreateMessage inserts a new chat message row.
func (r *GormChatRepository) CreateMessage(ctx context.Context, msg *domain.ChatMessage) error {
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}

	return r.db.WithContext(ctx).Create(msg).Error
}

// ListMessages retrieves all messages for a session ordered by
// created_at ascending.
func (r *GormChatRepository) ListMessages(ctx context.Context, chatID string) ([]domain.ChatMessage, error) {
	var messages []domain.ChatMessage
	err := r.db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Order("created_at ASC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}
