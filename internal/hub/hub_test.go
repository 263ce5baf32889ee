package hub

import (
	"encoding/json"
	"errors"
	"sync"

	"github.com/meetsync/backend/internal/model"
)

// testConn is an in-memory hub.Conn recording every delivered frame.
type testConn struct {
	id string

	mu      sync.Mutex
	frames  [][]byte
	failing bool
	closed  bool
}

func newTestConn(id string) *testConn {
	return &testConn{id: id}
}

func (c *testConn) Identity() model.Identity {
	return model.Identity{UserID: c.id, Username: c.id}
}

func (c *testConn) Send(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failing || c.closed {
		return errors.New("send failed")
	}
	frame := make([]byte, len(data))
	copy(frame, data)
	c.frames = append(c.frames, frame)
	return nil
}

func (c *testConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

func (c *testConn) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *testConn) Frames() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([][]byte, len(c.frames))
	copy(out, c.frames)
	return out
}

// receivedEvent is the decoded outbound envelope as a client would see it.
type receivedEvent struct {
	Type EventType       `json:"type"`
	Data json.RawMessage `json:"data"`
}

func (c *testConn) Events() []receivedEvent {
	frames := c.Frames()
	events := make([]receivedEvent, 0, len(frames))
	for _, frame := range frames {
		var ev receivedEvent
		if err := json.Unmarshal(frame, &ev); err != nil {
			continue
		}
		events = append(events, ev)
	}
	return events
}

func (c *testConn) EventTypes() []EventType {
	events := c.Events()
	types := make([]EventType, len(events))
	for i, ev := range events {
		types[i] = ev.Type
	}
	return types
}
