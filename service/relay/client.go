package relay

import (
	"sync"

	"github.com/gorilla/websocket"
)

// Client represents one WebSocket session on this node.
// A single user may have multiple devices/tabs, each with its own Client.
type Client struct {
	ConnID string          // unique connection id (snowflake, local to this node)
	WS     *websocket.Conn // nil in unit tests
	Send   chan []byte     // outbound queue, drained by a single writer goroutine

	mu     sync.RWMutex
	userID string // set by the register frame; empty until then

	done     chan struct{}
	doneOnce sync.Once
}

func NewClient(connID string, ws *websocket.Conn, sendQueueSize int) *Client {
	return &Client{
		ConnID: connID,
		WS:     ws,
		Send:   make(chan []byte, sendQueueSize),
		done:   make(chan struct{}),
	}
}

// User returns the bound user id. The registry writes it from the read
// loop while the writer goroutine reads it for presence renewal, so
// access goes through the client's own lock.
func (c *Client) User() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.userID
}

func (c *Client) setUser(userID string) {
	c.mu.Lock()
	c.userID = userID
	c.mu.Unlock()
}

// Close signals the writer goroutine to stop. Send is never closed:
// fanout workers may still hold a reference, and enqueueing to a dead
// client is harmless while sending on a closed channel is not.
func (c *Client) Close() {
	c.doneOnce.Do(func() { close(c.done) })
}

// Done reports writer shutdown.
func (c *Client) Done() <-chan struct{} { return c.done }

// Enqueue is a non-blocking send; a full queue drops the payload
// (slow client) and reports false.
func (c *Client) Enqueue(payload []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.Send <- payload:
		return true
	default:
		return false
	}
}
