package ws

import (
	"errors"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/meetsync/backend/internal/model"
)

var (
	errClientClosed = errors.New("client connection closed")
	errBufferFull   = errors.New("client send buffer full")
)

// Client is one WebSocket client attached to a meeting session. It satisfies
// hub.Conn: Send never blocks, queueing frames on a buffered channel drained
// by the write pump.
type Client struct {
	conn      *websocket.Conn
	meetingID string
	identity  model.Identity
	send      chan []byte

	mu     sync.Mutex
	closed bool
}

// NewClient creates a client for an admitted connection.
func NewClient(conn *websocket.Conn, meetingID string, identity model.Identity) *Client {
	return &Client{
		conn:      conn,
		meetingID: meetingID,
		identity:  identity,
		send:      make(chan []byte, 256),
	}
}

// Identity returns the identity resolved at admission.
func (c *Client) Identity() model.Identity {
	return c.identity
}

// MeetingID returns the meeting this client is bound to.
func (c *Client) MeetingID() string {
	return c.meetingID
}

// Send queues a frame for the write pump. It fails instead of blocking when
// the client is closed or its buffer is full; the caller (the dispatcher)
// treats that as a failed delivery and detaches the client.
func (c *Client) Send(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return errClientClosed
	}

	select {
	case c.send <- data:
		return nil
	default:
		// A client that cannot drain its buffer is beyond saving.
		c.closeLocked()
		return errBufferFull
	}
}

// Close closes the client's send channel, which lets the write pump shut the
// socket down. Idempotent.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeLocked()
}

func (c *Client) closeLocked() {
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// IsClosed returns true if the client is closed.
func (c *Client) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Conn returns the underlying WebSocket connection.
func (c *Client) Conn() *websocket.Conn {
	return c.conn
}

// SendChan returns the channel the write pump drains.
func (c *Client) SendChan() <-chan []byte {
	return c.send
}
