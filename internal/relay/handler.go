package relay

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/Digvijay2347/B2B-Customer-Relationship-Management-CRM/internal/auth"
	"github.com/Digvijay2347/B2B-Customer-Relationship-Management-CRM/internal/hub"
	"github.com/Digvijay2347/B2B-Customer-Relationship-Management-CRM/internal/log"
)

// ChatService handles the relay operations dispatched from inbound
// events. Implementations send their own responses through the hub.
type ChatService interface {
	HandleStartChat(ctx context.Context, client *hub.Client, customerID string) error
	HandleSendMessage(ctx context.Context, client *hub.Client, chatID, content string) error
	HandleFetchHistory(ctx context.Context, client *hub.Client, chatID string) error
	HandleCloseChat(ctx context.Context, client *hub.Client, chatID string) error
	HandleTyping(client *hub.Client, eventType, chatID, userID string)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Handler owns the websocket endpoint: handshake auth, upgrade, and
// inbound event dispatch.
type Handler struct {
	hub   *hub.Hub
	chats ChatService
	auth  *auth.Manager
	wsCfg hub.Config
}

// NewHandler creates the websocket handler.
func NewHandler(h *hub.Hub, chats ChatService, verifier *auth.Manager, wsCfg hub.Config) *Handler {
	return &Handler{
		hub:   h,
		chats: chats,
		auth:  verifier,
		wsCfg: wsCfg,
	}
}

// RegisterRoutes mounts the websocket endpoint.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/ws", h.HandleWebSocket)
}

// HandleWebSocket authenticates the handshake and upgrades the
// connection. Verification happens before the upgrade: a bad token never
// reaches the hub.
func (h *Handler) HandleWebSocket(c *gin.Context) {
	token := bearerToken(c.Request)
	if token == "" {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	claims, err := h.auth.Verify(token)
	if err != nil {
		log.Ctx(c.Request.Context()).Warn().Err(err).Msg("websocket handshake rejected")
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Ctx(c.Request.Context()).Error().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := hub.NewClient(uuid.New().String(), h.hub, conn, h.wsCfg)
	client.UserID = claims.UserID
	client.Email = claims.Email
	client.Role = claims.Role

	h.hub.Register(client)
	// Personal room: server code can reach all of a user's connections.
	h.hub.JoinRoom(client, client.UserID)

	log.L().Info().
		Str(log.FieldConnID, client.ID).
		Str(log.FieldUserID, client.UserID).
		Str(log.FieldRole, client.Role).
		Msg("websocket connected")

	go client.WritePump()
	go client.ReadPump(h.handleEvent)
}

// bearerToken extracts the handshake credential from the Authorization
// header or the token query parameter.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return r.URL.Query().Get("token")
}

func (h *Handler) handleEvent(client *hub.Client, message []byte) {
	var base BaseEvent
	if err := json.Unmarshal(message, &base); err != nil {
		client.SendMessage(NewErrorEvent("Invalid event format", ""))
		return
	}

	ctx := context.Background()

	switch base.Type {
	case EvtStartChat:
		var evt StartChatEvent
		if err := json.Unmarshal(message, &evt); err != nil {
			client.SendMessage(NewErrorEvent("Invalid start_chat event", ""))
			return
		}
		if evt.CustomerID == "" {
			client.SendMessage(NewErrorEvent("customerId is required", ""))
			return
		}
		if err := h.chats.HandleStartChat(ctx, client, evt.CustomerID); err != nil {
			log.L().Warn().Err(err).Str(log.FieldConnID, client.ID).Msg("start_chat failed")
		}

	case EvtMessage:
		var evt MessageEvent
		if err := json.Unmarshal(message, &evt); err != nil {
			client.SendMessage(NewErrorEvent("Invalid message event", ""))
			return
		}
		if evt.ChatID == "" || evt.Content == "" {
			client.SendMessage(NewErrorEvent("chatId and content are required", ""))
			return
		}
		if err := h.chats.HandleSendMessage(ctx, client, evt.ChatID, evt.Content); err != nil {
			log.L().Warn().Err(err).Str(log.FieldConnID, client.ID).Str(log.FieldChatID, evt.ChatID).Msg("message failed")
		}

	case EvtFetchHistory:
		var evt FetchHistoryEvent
		if err := json.Unmarshal(message, &evt); err != nil {
			client.SendMessage(NewErrorEvent("Invalid fetch_chat_history event", ""))
			return
		}
		if evt.ChatID == "" {
			client.SendMessage(NewErrorEvent("chatId is required", ""))
			return
		}
		if err := h.chats.HandleFetchHistory(ctx, client, evt.ChatID); err != nil {
			log.L().Warn().Err(err).Str(log.FieldConnID, client.ID).Str(log.FieldChatID, evt.ChatID).Msg("fetch_chat_history failed")
		}

	case EvtCloseChat:
		var evt CloseChatEvent
		if err := json.Unmarshal(message, &evt); err != nil {
			client.SendMessage(NewErrorEvent("Invalid close_chat event", ""))
			return
		}
		if evt.ChatID == "" {
			client.SendMessage(NewErrorEvent("chatId is required", ""))
			return
		}
		if err := h.chats.HandleCloseChat(ctx, client, evt.ChatID); err != nil {
			log.L().Warn().Err(err).Str(log.FieldConnID, client.ID).Str(log.FieldChatID, evt.ChatID).Msg("close_chat failed")
		}

	case EvtTypingStart, EvtTypingStop:
		var evt TypingEvent
		if err := json.Unmarshal(message, &evt); err != nil {
			client.SendMessage(NewErrorEvent("Invalid typing event", ""))
			return
		}
		if evt.ChatID == "" {
			client.SendMessage(NewErrorEvent("chatId is required", ""))
			return
		}
		h.chats.HandleTyping(client, base.Type, evt.ChatID, evt.UserID)

	default:
		client.SendMessage(NewErrorEvent("Unknown event type", base.Type))
	}
}
