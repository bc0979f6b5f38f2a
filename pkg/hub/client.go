package hub

import (
	"time"

	"github.com/gofiber/contrib/websocket"
)

const (
	// writeWait is how long to wait for a write to complete
	writeWait = 10 * time.Second

	// pongWait is how long to wait for a pong response
	pongWait = 60 * time.Second

	// pingPeriod must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// maxMessageSize bounds client-sent frames; clients only send pongs
	maxMessageSize = 4 * 1024
)

// Client represents a single websocket connection
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan Message

	// Subscribed event types; empty means all
	topics map[string]bool
}

// NewClient creates a new client subscribed to topics (all when none are
// given) and registers it with the hub.
// Returns ErrHubStopped if the hub is no longer running.
func NewClient(hub *Hub, conn *websocket.Conn, topics ...string) (*Client, error) {
	client := newClient(hub, conn, topics)
	select {
	case hub.register <- client:
		return client, nil
	case <-hub.done:
		return nil, ErrHubStopped
	}
}

func newClient(hub *Hub, conn *websocket.Conn, topics []string) *Client {
	c := &Client{
		hub:  hub,
		conn: conn,
		send: make(chan Message, 64),
	}
	if len(topics) > 0 {
		c.topics = make(map[string]bool, len(topics))
		for _, t := range topics {
			c.topics[t] = true
		}
	}
	return c
}

// Wants reports whether the client subscribed to an event type.
func (c *Client) Wants(eventType string) bool {
	return c.topics == nil || c.topics[eventType]
}

// Run starts the client's read and write pumps.
// Blocks until the connection closes.
func (c *Client) Run() {
	go c.writePump()
	c.readPump()
}

// readPump detects disconnection and handles pongs.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
	}
}

// writePump is the only writer on the connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message.Data); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
