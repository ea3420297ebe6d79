package monitor

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Client is a single websocket observer.
type Client struct {
	ID         uint8
	RemoteAddr string
	UserAgent  string

	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	mu          sync.RWMutex
	latency     time.Duration
	connectedAt time.Time
}

// Latency returns the moving average round trip time to the client.
func (c *Client) Latency() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.latency
}

// readPump drains the connection until it closes or the client says
// goodbye. Clients can't send commands, so everything else is dropped.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			return // connection closed
		}
		if len(message) > 0 && message[0] == Close {
			return
		}
	}
}

// writePump forwards queued messages to the connection, sampling the
// round trip time after each write.
func (c *Client) writePump() {
	defer c.conn.Close()

	for message := range c.send {
		if err := c.conn.WriteMessage(websocket.BinaryMessage, message); err != nil {
			return
		}

		if rtt, err := roundTrip(c.conn.UnderlyingConn()); err == nil {
			c.mu.Lock()
			c.latency = (c.latency*9 + rtt) / 10
			c.mu.Unlock()
		}
	}

	// the hub closed the channel
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}
