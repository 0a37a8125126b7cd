package hub

import (
	"encoding/json"
	"sync"

	"github.com/Digvijay2347/B2B-Customer-Relationship-Management-CRM/internal/log"
)

// Hub owns all live websocket connections and the chat-room membership
// index. All membership mutations funnel through Run's select loop or
// take the mutex, so handlers may call Hub methods from any goroutine.
type Hub struct {
	clients    map[string]*Client            // connID -> client
	rooms      map[string]map[string]*Client // chatID -> connID -> client
	register   chan *Client
	unregister chan *Client
	broadcast  chan *RoomMessage
	mu         sync.RWMutex
}

// RoomMessage is one payload fanned out to a chat room. Exclude names a
// connection to skip, used by typing relays so the typist never echoes.
// CloseRoom drops the room after the fan-out, so the final payload and
// the eviction stay ordered.
type RoomMessage struct {
	RoomID    string
	Message   []byte
	Exclude   string
	CloseRoom bool
}

// NewHub creates an empty hub. Call Run in its own goroutine before
// registering clients.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		rooms:      make(map[string]map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *RoomMessage, 256),
	}
}

// Run processes register, unregister and broadcast events until the
// process exits.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ID] = client
			h.mu.Unlock()
			log.L().Debug().Str(log.FieldConnID, client.ID).Str(log.FieldUserID, client.UserID).Msg("client registered")

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.ID]; ok {
				for roomID, members := range h.rooms {
					delete(members, client.ID)
					if len(members) == 0 {
						delete(h.rooms, roomID)
					}
				}
				delete(h.clients, client.ID)
				client.closeSend()
			}
			h.mu.Unlock()
			log.L().Debug().Str(log.FieldConnID, client.ID).Msg("client unregistered")

		case msg := <-h.broadcast:
			h.mu.RLock()
			if members, ok := h.rooms[msg.RoomID]; ok {
				for connID, client := range members {
					if connID == msg.Exclude {
						continue
					}
					if !client.enqueue(msg.Message) {
						go h.removeClient(client)
					}
				}
			}
			h.mu.RUnlock()

			if msg.CloseRoom {
				h.EvictRoom(msg.RoomID)
			}
		}
	}
}

// Register adds a connection to the hub.
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister removes a connection and its room memberships.
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// JoinRoom adds a client to a chat room, creating the room on first join.
func (h *Hub) JoinRoom(client *Client, roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.rooms[roomID]; !ok {
		h.rooms[roomID] = make(map[string]*Client)
	}
	h.rooms[roomID][client.ID] = client
	log.L().Info().Str(log.FieldConnID, client.ID).Str(log.FieldRoomID, roomID).Msg("client joined room")
}

// LeaveRoom removes a client from a chat room.
func (h *Hub) LeaveRoom(client *Client, roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if members, ok := h.rooms[roomID]; ok {
		delete(members, client.ID)
		if len(members) == 0 {
			delete(h.rooms, roomID)
		}
	}
	log.L().Info().Str(log.FieldConnID, client.ID).Str(log.FieldRoomID, roomID).Msg("client left room")
}

// EvictRoom removes every member from a room and drops the room. Used
// when a chat session closes; connections stay registered.
func (h *Hub) EvictRoom(roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.rooms, roomID)
	log.L().Info().Str(log.FieldRoomID, roomID).Msg("room evicted")
}

// BroadcastToRoom marshals message and fans it out to every member of
// the room except the excluded connection. Pass exclude "" to reach all
// members.
func (h *Hub) BroadcastToRoom(roomID string, message interface{}, exclude string) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}

	h.broadcast <- &RoomMessage{
		RoomID:  roomID,
		Message: data,
		Exclude: exclude,
	}
	return nil
}

// CloseRoom delivers a final message to every member of the room and
// then evicts the room. Connections stay registered.
func (h *Hub) CloseRoom(roomID string, message interface{}) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}

	h.broadcast <- &RoomMessage{
		RoomID:    roomID,
		Message:   data,
		CloseRoom: true,
	}
	return nil
}

// RoomMemberCount reports the number of connections currently in a room.
func (h *Hub) RoomMemberCount(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if members, ok := h.rooms[roomID]; ok {
		return len(members)
	}
	return 0
}

// ClientCount reports the number of registered connections.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) removeClient(client *Client) {
	h.unregister <- client
}
