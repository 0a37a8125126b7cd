package service

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Digvijay2347/B2B-Customer-Relationship-Management-CRM/internal/domain"
	"github.com/Digvijay2347/B2B-Customer-Relationship-Management-CRM/internal/hub"
	"github.com/Digvijay2347/B2B-Customer-Relationship-Management-CRM/internal/relay"
	"github.com/Digvijay2347/B2B-Customer-Relationship-Management-CRM/internal/repository"
)

// In-memory fakes for the repository interfaces.

type fakeChatRepo struct {
	mu       sync.Mutex
	sessions map[string]domain.ChatSession
	messages []domain.ChatMessage
}

func newFakeChatRepo() *fakeChatRepo {
	return &fakeChatRepo{sessions: make(map[string]domain.ChatSession)}
}

func (r *fakeChatRepo) CreateSession(ctx context.Context, session *domain.ChatSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if session.ID == "" {
		session.ID = uuid.New().String()
	}
	if session.Status == "" {
		session.Status = domain.ChatStatusActive
	}
	session.CreatedAt = time.Now()
	session.UpdatedAt = session.CreatedAt
	r.sessions[session.ID] = *session
	return nil
}

func (r *fakeChatRepo) GetSession(ctx context.Context, id string) (*domain.ChatSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[id]
	if !ok {
		return nil, repository.ErrSessionNotFound
	}
	return &session, nil
}

func (r *fakeChatRepo) ListSessions(ctx context.Context, status, participantID string) ([]domain.ChatSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.ChatSession
	for _, s := range r.sessions {
		if status != "" && s.Status != status {
			continue
		}
		if participantID != "" && s.AgentID != participantID {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (r *fakeChatRepo) CloseSession(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[id]
	if !ok {
		return repository.ErrSessionNotFound
	}
	session.Status = domain.ChatStatusClosed
	session.UpdatedAt = time.Now()
	r.sessions[id] = session
	return nil
}

func (r *fakeChatRepo) TouchSession(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if session, ok := r.sessions[id]; ok {
		session.UpdatedAt = time.Now()
		r.sessions[id] = session
	}
	return nil
}

func (r *fakeChatRepo) CreateMessage(ctx context.Context, msg *domain.ChatMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	msg.CreatedAt = time.Now()
	r.messages = append(r.messages, *msg)
	return nil
}

func (r *fakeChatRepo) ListMessages(ctx context.Context, chatID string) ([]domain.ChatMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.ChatMessage
	for _, m := range r.messages {
		if m.ChatID == chatID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeChatRepo) messageCount(chatID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, m := range r.messages {
		if m.ChatID == chatID {
			n++
		}
	}
	return n
}

type fakeCustomerRepo struct {
	customers map[string]domain.Customer
}

func (r *fakeCustomerRepo) Create(ctx context.Context, c *domain.Customer) error { return nil }

func (r *fakeCustomerRepo) GetByID(ctx context.Context, id string) (*domain.Customer, error) {
	c, ok := r.customers[id]
	if !ok {
		return nil, repository.ErrCustomerNotFound
	}
	return &c, nil
}

func (r *fakeCustomerRepo) List(ctx context.Context, f domain.CustomerFilter) (*domain.CustomerPage, error) {
	return &domain.CustomerPage{}, nil
}

func (r *fakeCustomerRepo) Target(ctx context.Context, f domain.TargetFilters, limit int) ([]domain.Customer, error) {
	return nil, nil
}

func (r *fakeCustomerRepo) Update(ctx context.Context, c *domain.Customer) error { return nil }

func (r *fakeCustomerRepo) Delete(ctx context.Context, id string) error { return nil }

func (r *fakeCustomerRepo) TouchLastContact(ctx context.Context, id string, at time.Time) error {
	return nil
}

type fakeUserRepo struct {
	refs map[string]domain.UserRef
}

func (r *fakeUserRepo) Create(ctx context.Context, u *domain.User) error { return nil }

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return nil, repository.ErrUserNotFound
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return nil, repository.ErrUserNotFound
}

func (r *fakeUserRepo) GetRefs(ctx context.Context, ids []string) (map[string]domain.UserRef, error) {
	out := make(map[string]domain.UserRef)
	for _, id := range ids {
		if ref, ok := r.refs[id]; ok {
			out[id] = ref
		}
	}
	return out, nil
}

func (r *fakeUserRepo) List(ctx context.Context) ([]domain.User, error) { return nil, nil }

func (r *fakeUserRepo) Update(ctx context.Context, u *domain.User) error { return nil }

// Test fixture

type chatFixture struct {
	hub      *hub.Hub
	chats    *fakeChatRepo
	svc      *ChatService
	customer domain.Customer
}

func newChatFixture(t *testing.T) *chatFixture {
	t.Helper()

	customer := domain.Customer{ID: "cust-1", Name: "Acme Corp", Email: "ops@acme.test"}
	chats := newFakeChatRepo()
	customers := &fakeCustomerRepo{customers: map[string]domain.Customer{customer.ID: customer}}
	users := &fakeUserRepo{refs: map[string]domain.UserRef{
		"agent-1": {ID: "agent-1", Name: "Ada", Email: "ada@crm.test"},
		"agent-2": {ID: "agent-2", Name: "Ben", Email: "ben@crm.test"},
	}}

	h := hub.NewHub()
	go h.Run()

	return &chatFixture{
		hub:      h,
		chats:    chats,
		svc:      NewChatService(chats, customers, users, h, nil),
		customer: customer,
	}
}

func (f *chatFixture) connect(t *testing.T, connID, userID string) *hub.Client {
	t.Helper()
	client := hub.NewClient(connID, f.hub, nil, hub.Config{})
	client.UserID = userID
	f.hub.Register(client)
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if f.hub.ClientCount() > 0 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	return client
}

func recvEvent(t *testing.T, c *hub.Client) map[string]interface{} {
	t.Helper()
	select {
	case data := <-c.Send:
		var payload map[string]interface{}
		if err := json.Unmarshal(data, &payload); err != nil {
			t.Fatalf("unmarshal event: %v", err)
		}
		return payload
	case <-time.After(time.Second):
		t.Fatal("no event received within 1s")
		return nil
	}
}

func assertNoEvent(t *testing.T, c *hub.Client) {
	t.Helper()
	select {
	case data := <-c.Send:
		t.Fatalf("unexpected event: %s", data)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestStartChatCreatesOwnedSession(t *testing.T) {
	f := newChatFixture(t)
	client := f.connect(t, "conn-1", "agent-1")

	if err := f.svc.HandleStartChat(context.Background(), client, "cust-1"); err != nil {
		t.Fatalf("HandleStartChat: %v", err)
	}

	evt := recvEvent(t, client)
	if evt["type"] != relay.EvtChatStarted {
		t.Fatalf("type = %v, want %s", evt["type"], relay.EvtChatStarted)
	}

	session := evt["session"].(map[string]interface{})
	chatID := session["id"].(string)
	if session["agent_id"] != "agent-1" {
		t.Errorf("agent_id = %v, want agent-1", session["agent_id"])
	}
	if session["status"] != domain.ChatStatusActive {
		t.Errorf("status = %v, want active", session["status"])
	}
	customer := session["customer"].(map[string]interface{})
	if customer["name"] != "Acme Corp" {
		t.Errorf("customer name = %v, want Acme Corp", customer["name"])
	}

	// The caller is in the session room.
	if n := f.hub.RoomMemberCount(chatID); n != 1 {
		t.Errorf("RoomMemberCount = %d, want 1", n)
	}
}

func TestStartChatAlwaysCreatesNewSession(t *testing.T) {
	f := newChatFixture(t)
	client := f.connect(t, "conn-1", "agent-1")

	for i := 0; i < 2; i++ {
		if err := f.svc.HandleStartChat(context.Background(), client, "cust-1"); err != nil {
			t.Fatalf("HandleStartChat: %v", err)
		}
		recvEvent(t, client)
	}

	if n := len(f.chats.sessions); n != 2 {
		t.Errorf("sessions = %d, want 2 distinct sessions", n)
	}
}

func TestStartChatUnknownCustomer(t *testing.T) {
	f := newChatFixture(t)
	client := f.connect(t, "conn-1", "agent-1")

	if err := f.svc.HandleStartChat(context.Background(), client, "nope"); err != nil {
		t.Fatalf("HandleStartChat: %v", err)
	}

	evt := recvEvent(t, client)
	if evt["type"] != relay.EvtError {
		t.Errorf("type = %v, want error", evt["type"])
	}
	if len(f.chats.sessions) != 0 {
		t.Errorf("sessions = %d, want 0", len(f.chats.sessions))
	}
}

func TestSendMessagePersistsAndBroadcasts(t *testing.T) {
	f := newChatFixture(t)
	sender := f.connect(t, "conn-1", "agent-1")
	peer := f.connect(t, "conn-2", "agent-2")

	if err := f.svc.HandleStartChat(context.Background(), sender, "cust-1"); err != nil {
		t.Fatalf("HandleStartChat: %v", err)
	}
	started := recvEvent(t, sender)
	chatID := started["session"].(map[string]interface{})["id"].(string)
	f.hub.JoinRoom(peer, chatID)

	if err := f.svc.HandleSendMessage(context.Background(), sender, chatID, "hello"); err != nil {
		t.Fatalf("HandleSendMessage: %v", err)
	}

	// Both room members receive the hydrated message.
	for _, c := range []*hub.Client{sender, peer} {
		evt := recvEvent(t, c)
		if evt["type"] != relay.EvtMessage {
			t.Fatalf("type = %v, want message", evt["type"])
		}
		msg := evt["message"].(map[string]interface{})
		if msg["content"] != "hello" {
			t.Errorf("content = %v, want hello", msg["content"])
		}
		sender := msg["sender"].(map[string]interface{})
		if sender["name"] != "Ada" {
			t.Errorf("sender name = %v, want Ada", sender["name"])
		}
	}

	if n := f.chats.messageCount(chatID); n != 1 {
		t.Errorf("persisted messages = %d, want 1", n)
	}
}

func TestSendMessageUnknownSession(t *testing.T) {
	f := newChatFixture(t)
	client := f.connect(t, "conn-1", "agent-1")

	if err := f.svc.HandleSendMessage(context.Background(), client, "nope", "hello"); err != nil {
		t.Fatalf("HandleSendMessage: %v", err)
	}

	evt := recvEvent(t, client)
	if evt["type"] != relay.EvtError {
		t.Errorf("type = %v, want error", evt["type"])
	}
	if n := f.chats.messageCount("nope"); n != 0 {
		t.Errorf("persisted messages = %d, want 0", n)
	}
}

func TestFetchHistoryOrdering(t *testing.T) {
	f := newChatFixture(t)
	client := f.connect(t, "conn-1", "agent-1")

	if err := f.svc.HandleStartChat(context.Background(), client, "cust-1"); err != nil {
		t.Fatalf("HandleStartChat: %v", err)
	}
	started := recvEvent(t, client)
	chatID := started["session"].(map[string]interface{})["id"].(string)

	for _, content := range []string{"first", "second", "third"} {
		if err := f.svc.HandleSendMessage(context.Background(), client, chatID, content); err != nil {
			t.Fatalf("HandleSendMessage(%s): %v", content, err)
		}
		recvEvent(t, client)
		time.Sleep(2 * time.Millisecond)
	}

	if err := f.svc.HandleFetchHistory(context.Background(), client, chatID); err != nil {
		t.Fatalf("HandleFetchHistory: %v", err)
	}

	evt := recvEvent(t, client)
	if evt["type"] != relay.EvtChatHistory {
		t.Fatalf("type = %v, want chat_history", evt["type"])
	}
	messages := evt["messages"].([]interface{})
	want := []string{"first", "second", "third"}
	if len(messages) != len(want) {
		t.Fatalf("history length = %d, want %d", len(messages), len(want))
	}
	for i, m := range messages {
		content := m.(map[string]interface{})["content"]
		if content != want[i] {
			t.Errorf("messages[%d] = %v, want %v", i, content, want[i])
		}
	}

	// Fetching again yields the same batch.
	if err := f.svc.HandleFetchHistory(context.Background(), client, chatID); err != nil {
		t.Fatalf("second HandleFetchHistory: %v", err)
	}
	again := recvEvent(t, client)
	if len(again["messages"].([]interface{})) != len(want) {
		t.Error("second fetch returned different history")
	}
}

func TestCloseChatEvictsRoomButKeepsPersisting(t *testing.T) {
	f := newChatFixture(t)
	client := f.connect(t, "conn-1", "agent-1")

	if err := f.svc.HandleStartChat(context.Background(), client, "cust-1"); err != nil {
		t.Fatalf("HandleStartChat: %v", err)
	}
	started := recvEvent(t, client)
	chatID := started["session"].(map[string]interface{})["id"].(string)

	if err := f.svc.HandleCloseChat(context.Background(), client, chatID); err != nil {
		t.Fatalf("HandleCloseChat: %v", err)
	}

	evt := recvEvent(t, client)
	if evt["type"] != relay.EvtChatClosed {
		t.Fatalf("type = %v, want chat_closed", evt["type"])
	}

	session, err := f.chats.GetSession(context.Background(), chatID)
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if session.Status != domain.ChatStatusClosed {
		t.Errorf("status = %q, want closed", session.Status)
	}
	deadline := time.Now().Add(time.Second)
	for f.hub.RoomMemberCount(chatID) != 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if n := f.hub.RoomMemberCount(chatID); n != 0 {
		t.Errorf("RoomMemberCount after close = %d, want 0", n)
	}

	// A message into the closed session still persists, but the evicted
	// room hears nothing.
	if err := f.svc.HandleSendMessage(context.Background(), client, chatID, "late"); err != nil {
		t.Fatalf("HandleSendMessage after close: %v", err)
	}
	if n := f.chats.messageCount(chatID); n != 1 {
		t.Errorf("persisted messages = %d, want 1", n)
	}
	assertNoEvent(t, client)
}

func TestTypingRelayExcludesTypist(t *testing.T) {
	f := newChatFixture(t)
	typist := f.connect(t, "conn-1", "agent-1")
	peer := f.connect(t, "conn-2", "agent-2")

	f.hub.JoinRoom(typist, "chat-1")
	f.hub.JoinRoom(peer, "chat-1")

	f.svc.HandleTyping(typist, relay.EvtTypingStart, "chat-1", "")

	evt := recvEvent(t, peer)
	if evt["type"] != relay.EvtTypingStart {
		t.Errorf("type = %v, want typing_start", evt["type"])
	}
	if evt["userId"] != "agent-1" {
		t.Errorf("userId = %v, want agent-1", evt["userId"])
	}
	assertNoEvent(t, typist)

	// Nothing was persisted.
	if n := f.chats.messageCount("chat-1"); n != 0 {
		t.Errorf("persisted messages = %d, want 0", n)
	}
}
