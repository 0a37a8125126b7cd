package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/Digvijay2347/B2B-Customer-Relationship-Management-CRM/internal/auth"
	"github.com/Digvijay2347/B2B-Customer-Relationship-Management-CRM/internal/log"
	"github.com/Digvijay2347/B2B-Customer-Relationship-Management-CRM/internal/middleware"
	"github.com/Digvijay2347/B2B-Customer-Relationship-Management-CRM/internal/repository"
	"github.com/Digvijay2347/B2B-Customer-Relationship-Management-CRM/internal/response"
	"github.com/Digvijay2347/B2B-Customer-Relationship-Management-CRM/internal/service"
)

// ChatHandler handles the REST side of chat: session listings and
// message history. The live path goes over the websocket relay.
type ChatHandler struct {
	chats    repository.ChatRepository
	sessions *service.ChatService
	authz    *middleware.AuthMiddleware
}

// NewChatHandler creates the chat REST handler.
func NewChatHandler(chats repository.ChatRepository, sessions *service.ChatService, authz *middleware.AuthMiddleware) *ChatHandler {
	return &ChatHandler{chats: chats, sessions: sessions, authz: authz}
}

// RegisterRoutes registers chat REST routes.
func (h *ChatHandler) RegisterRoutes(r *gin.Engine) {
	chats := r.Group("/api/chats")
	chats.Use(h.authz.RequireAuth())
	{
		chats.GET("", h.List)
		chats.GET("/:chatId/messages", h.Messages)
	}
}

// List returns chat sessions. Admins see every session; everyone else
// sees only sessions they participate in.
func (h *ChatHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	participantID := c.GetString(middleware.UserIDKey)
	if c.GetString(middleware.RoleKey) == auth.RoleAdmin {
		participantID = ""
	}

	sessions, err := h.chats.ListSessions(ctx, c.Query("status"), participantID)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("list sessions failed")
		response.InternalError(c, "failed to list chat sessions")
		return
	}

	response.Success(c, sessions)
}

// Messages returns a session's full history. Unlike the websocket path,
// this endpoint requires the caller to be the session's agent or an
// admin.
func (h *ChatHandler) Messages(c *gin.Context) {
	ctx := c.Request.Context()
	chatID := c.Param("chatId")

	session, err := h.chats.GetSession(ctx, chatID)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			response.NotFound(c, "chat session not found")
			return
		}
		log.Ctx(ctx).Error().Err(err).Msg("load session failed")
		response.InternalError(c, "failed to load chat session")
		return
	}

	role := c.GetString(middleware.RoleKey)
	userID := c.GetString(middleware.UserIDKey)
	if role != auth.RoleAdmin && session.AgentID != userID {
		response.Forbidden(c, "not a participant of this chat")
		return
	}

	messages, err := h.sessions.History(ctx, chatID)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("load history failed")
		response.InternalError(c, "failed to load chat history")
		return
	}

	response.Success(c, gin.H{"session": session, "messages": messages})
}
