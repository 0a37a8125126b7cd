package relay

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/Digvijay2347/B2B-Customer-Relationship-Management-CRM/internal/auth"
	"github.com/Digvijay2347/B2B-Customer-Relationship-Management-CRM/internal/hub"
)

// stubChatService records dispatched operations.
type stubChatService struct {
	mu    sync.Mutex
	calls []string
}

func (s *stubChatService) record(call string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, call)
}

func (s *stubChatService) recorded() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

func (s *stubChatService) HandleStartChat(ctx context.Context, client *hub.Client, customerID string) error {
	s.record("start_chat:" + customerID)
	return nil
}

func (s *stubChatService) HandleSendMessage(ctx context.Context, client *hub.Client, chatID, content string) error {
	s.record("message:" + chatID + ":" + content)
	return nil
}

func (s *stubChatService) HandleFetchHistory(ctx context.Context, client *hub.Client, chatID string) error {
	s.record("fetch_chat_history:" + chatID)
	return nil
}

func (s *stubChatService) HandleCloseChat(ctx context.Context, client *hub.Client, chatID string) error {
	s.record("close_chat:" + chatID)
	return nil
}

func (s *stubChatService) HandleTyping(client *hub.Client, eventType, chatID, userID string) {
	s.record(eventType + ":" + chatID)
}

type relayFixture struct {
	server *httptest.Server
	hub    *hub.Hub
	chats  *stubChatService
	tokens *auth.Manager
}

func newRelayFixture(t *testing.T) *relayFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	h := hub.NewHub()
	go h.Run()

	chats := &stubChatService{}
	tokens := auth.NewManager("test-secret", time.Hour, "crm-test")

	router := gin.New()
	NewHandler(h, chats, tokens, hub.Config{}).RegisterRoutes(router)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &relayFixture{server: server, hub: h, chats: chats, tokens: tokens}
}

func (f *relayFixture) wsURL() string {
	return "ws" + strings.TrimPrefix(f.server.URL, "http") + "/ws"
}

func (f *relayFixture) dial(t *testing.T, userID string) *websocket.Conn {
	t.Helper()
	token, _, err := f.tokens.Issue(userID, userID+"@crm.test", "agent")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	header := http.Header{"Authorization": []string{"Bearer " + token}}
	conn, resp, err := websocket.DefaultDialer.Dial(f.wsURL(), header)
	if err != nil {
		t.Fatalf("dial: %v (resp: %+v)", err, resp)
	}
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) map[string]interface{} {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var evt map[string]interface{}
	if err := json.Unmarshal(data, &evt); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return evt
}

func waitCalls(t *testing.T, chats *stubChatService, n int) []string {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if calls := chats.recorded(); len(calls) >= n {
			return calls
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("calls = %v, want %d", chats.recorded(), n)
	return nil
}

func TestHandshakeRejectsMissingToken(t *testing.T) {
	f := newRelayFixture(t)

	_, resp, err := websocket.DefaultDialer.Dial(f.wsURL(), nil)
	if err == nil {
		t.Fatal("dial succeeded without a token")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("resp = %+v, want 401", resp)
	}
	resp.Body.Close()

	if f.hub.ClientCount() != 0 {
		t.Errorf("ClientCount = %d, want 0", f.hub.ClientCount())
	}
}

func TestHandshakeRejectsBadToken(t *testing.T) {
	f := newRelayFixture(t)

	other := auth.NewManager("wrong-secret", time.Hour, "crm-test")
	token, _, err := other.Issue("u1", "u1@crm.test", "agent")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	_, resp, err := websocket.DefaultDialer.Dial(f.wsURL()+"?token="+token, nil)
	if err == nil {
		t.Fatal("dial succeeded with a forged token")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("resp = %+v, want 401", resp)
	}
	resp.Body.Close()

	if f.hub.ClientCount() != 0 {
		t.Errorf("ClientCount = %d, want 0", f.hub.ClientCount())
	}
}

func TestHandshakeAcceptsQueryToken(t *testing.T) {
	f := newRelayFixture(t)

	token, _, err := f.tokens.Issue("u1", "u1@crm.test", "agent")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	conn, resp, err := websocket.DefaultDialer.Dial(f.wsURL()+"?token="+token, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	// The connection lands in the hub and joins its personal room.
	deadline := time.Now().Add(time.Second)
	for f.hub.RoomMemberCount("u1") == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if f.hub.RoomMemberCount("u1") != 1 {
		t.Errorf("personal room members = %d, want 1", f.hub.RoomMemberCount("u1"))
	}
}

func TestEventDispatch(t *testing.T) {
	f := newRelayFixture(t)
	conn := f.dial(t, "agent-1")

	events := []string{
		`{"type":"start_chat","customerId":"c1"}`,
		`{"type":"message","chatId":"chat-1","content":"hi"}`,
		`{"type":"fetch_chat_history","chatId":"chat-1"}`,
		`{"type":"typing_start","chatId":"chat-1"}`,
		`{"type":"close_chat","chatId":"chat-1"}`,
	}
	for _, evt := range events {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(evt)); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	calls := waitCalls(t, f.chats, len(events))
	want := []string{
		"start_chat:c1",
		"message:chat-1:hi",
		"fetch_chat_history:chat-1",
		"typing_start:chat-1",
		"close_chat:chat-1",
	}
	for i, w := range want {
		if calls[i] != w {
			t.Errorf("calls[%d] = %q, want %q", i, calls[i], w)
		}
	}
}

func TestUnknownEventType(t *testing.T) {
	f := newRelayFixture(t)
	conn := f.dial(t, "agent-1")

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"explode"}`)); err != nil {
		t.Fatalf("write: %v", err)
	}

	evt := readEvent(t, conn)
	if evt["type"] != EvtError {
		t.Errorf("type = %v, want error", evt["type"])
	}
	if evt["details"] != "explode" {
		t.Errorf("details = %v, want explode", evt["details"])
	}
	if len(f.chats.recorded()) != 0 {
		t.Errorf("calls = %v, want none", f.chats.recorded())
	}
}

func TestMissingRequiredField(t *testing.T) {
	f := newRelayFixture(t)
	conn := f.dial(t, "agent-1")

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"message","chatId":"chat-1"}`)); err != nil {
		t.Fatalf("write: %v", err)
	}

	evt := readEvent(t, conn)
	if evt["type"] != EvtError {
		t.Errorf("type = %v, want error", evt["type"])
	}
	if len(f.chats.recorded()) != 0 {
		t.Errorf("calls = %v, want none", f.chats.recorded())
	}
}
