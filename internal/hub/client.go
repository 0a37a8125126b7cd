package hub

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Digvijay2347/B2B-Customer-Relationship-Management-CRM/internal/log"
)

// Config tunes websocket keepalive and write behaviour. Zero fields fall
// back to the package defaults.
type Config struct {
	PingInterval   time.Duration `mapstructure:"ping_interval"`
	PongWait       time.Duration `mapstructure:"pong_wait"`
	WriteWait      time.Duration `mapstructure:"write_wait"`
	MaxMessageSize int64         `mapstructure:"max_message_size"`
}

const (
	defaultPingInterval   = 54 * time.Second
	defaultPongWait       = 60 * time.Second
	defaultWriteWait      = 10 * time.Second
	defaultMaxMessageSize = 4096
)

func (cfg Config) withDefaults() Config {
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = defaultPingInterval
	}
	if cfg.PongWait <= 0 {
		cfg.PongWait = defaultPongWait
	}
	if cfg.WriteWait <= 0 {
		cfg.WriteWait = defaultWriteWait
	}
	if cfg.MaxMessageSize <= 0 {
		cfg.MaxMessageSize = defaultMaxMessageSize
	}
	return cfg
}

// Client is one authenticated websocket connection. UserID, Email and
// Role come from the verified token and never change for the life of the
// connection.
type Client struct {
	ID     string
	UserID string
	Email  string
	Role   string

	Hub    *Hub
	Conn   *websocket.Conn
	Send   chan []byte
	config Config

	mu     sync.Mutex
	closed bool
}

// NewClient wraps an upgraded connection. The caller registers it with
// the hub and starts the two pumps.
func NewClient(id string, h *Hub, conn *websocket.Conn, cfg Config) *Client {
	return &Client{
		ID:     id,
		Hub:    h,
		Conn:   conn,
		Send:   make(chan []byte, 256),
		config: cfg.withDefaults(),
	}
}

// ReadPump reads frames until the connection drops, passing each payload
// to handler. It owns the read side: deadlines, pong handling and size
// limits live here.
func (c *Client) ReadPump(handler func(*Client, []byte)) {
	defer func() {
		c.Hub.Unregister(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(c.config.MaxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(c.config.PongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(c.config.PongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.L().Warn().Err(err).Str(log.FieldConnID, c.ID).Msg("websocket read error")
			}
			break
		}

		handler(c, message)
	}
}

// WritePump drains the Send channel onto the wire and keeps the
// connection alive with periodic pings. It owns the write side; nothing
// else may write to the connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(c.config.PingInterval)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(c.config.WriteWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(c.config.WriteWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// SendMessage marshals message and queues it to this connection only.
// A full send buffer drops the frame rather than blocking the caller;
// frames for an unregistered connection are dropped too.
func (c *Client) SendMessage(message interface{}) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}

	c.enqueue(data)
	return nil
}

// enqueue queues a frame unless the connection has been unregistered.
// The mutex orders it against closeSend so a late frame never hits a
// closed channel.
func (c *Client) enqueue(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}
	select {
	case c.Send <- data:
		return true
	default:
		return false
	}
}

// closeSend closes the send channel exactly once. Only the hub calls
// this, on unregister.
func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.Send)
	}
}
