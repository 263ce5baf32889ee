package ws

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/meetsync/backend/internal/hub"
	"github.com/meetsync/backend/internal/metrics"
	"github.com/meetsync/backend/internal/model"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 65536
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// TODO: Implement proper origin checking in production
		return true
	},
}

// Handler terminates WebSocket connections for meeting sessions and routes
// decoded commands to the session lifecycle controller.
type Handler struct {
	registry   *hub.Registry
	dispatcher *hub.Dispatcher
	controller *hub.Controller
}

// NewHandler creates a new WebSocket handler.
func NewHandler(registry *hub.Registry, dispatcher *hub.Dispatcher, controller *hub.Controller) *Handler {
	return &Handler{
		registry:   registry,
		dispatcher: dispatcher,
		controller: controller,
	}
}

// HandleConnection upgrades the HTTP connection, attaches the client to the
// meeting's session, replays current session state to it, and starts the
// read and write pumps. The caller has already authenticated and authorized
// the identity.
func (h *Handler) HandleConnection(w http.ResponseWriter, r *http.Request, meetingID string, identity model.Identity) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	client := NewClient(conn, meetingID, identity)
	if err := h.registry.Attach(meetingID, client); err != nil {
		conn.Close()
		return err
	}
	metrics.ActiveConnections.Inc()

	go h.writePump(client)

	// Catch-up for clients joining or rejoining a running session.
	h.controller.Resume(meetingID, client)

	go h.readPump(client)
	return nil
}

// Reject upgrades the connection only to immediately close it with a policy
// violation close code. Admission failures surface to clients this way
// rather than as an application-level error event.
func Reject(w http.ResponseWriter, r *http.Request, reason string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	msg := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, reason)
	conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
	conn.Close()
}

// handleCommand routes one decoded envelope. Protocol violations are
// reported to the sender only; the connection stays attached.
func (h *Handler) handleCommand(client *Client, cmd *hub.Command) {
	switch cmd.Type {
	case hub.CommandStart:
		h.controller.Start(client.MeetingID(), cmd.Data)

	case hub.CommandTranscript:
		_, err := h.controller.AppendTranscript(client.MeetingID(), client.Identity(), cmd.Text, cmd.Speaker, cmd.Timestamp)
		if err != nil {
			h.sendError(client, err.Error())
		}

	case hub.CommandGenerateSummary:
		if err := h.controller.RequestSummary(client.MeetingID()); err != nil {
			h.sendError(client, err.Error())
		}

	case hub.CommandExtractActionItems:
		if err := h.controller.RequestActionItems(client.MeetingID()); err != nil {
			h.sendError(client, err.Error())
		}

	case hub.CommandEndMeeting:
		if err := h.controller.End(client.MeetingID()); err != nil {
			h.sendError(client, err.Error())
		}

	case hub.CommandPing:
		h.dispatcher.Unicast(client, hub.Event{Type: hub.EventPong})

	default:
		h.sendError(client, model.ErrUnknownCommand.Error())
	}
}

// sendError unicasts a protocol error to the offending sender.
func (h *Handler) sendError(client *Client, message string) {
	h.dispatcher.Unicast(client, hub.Event{
		Type: hub.EventError,
		Data: hub.ErrorPayload{Error: message},
	})
}

// readPump pumps decoded commands from the WebSocket connection to the
// controller. Detach on exit is immediate and never waits on any in-flight
// analysis call.
func (h *Handler) readPump(client *Client) {
	defer func() {
		h.registry.Detach(client)
		metrics.ActiveConnections.Dec()
		client.Close()
		client.Conn().Close()
	}()

	client.Conn().SetReadLimit(maxMessageSize)
	client.Conn().SetReadDeadline(time.Now().Add(pongWait))
	client.Conn().SetPongHandler(func(string) error {
		client.Conn().SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := client.Conn().ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		var cmd hub.Command
		if err := json.Unmarshal(message, &cmd); err != nil {
			h.sendError(client, "malformed message envelope")
			continue
		}

		h.handleCommand(client, &cmd)
	}
}

// writePump pumps queued frames to the WebSocket connection.
func (h *Handler) writePump(client *Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		client.Conn().Close()
	}()

	for {
		select {
		case message, ok := <-client.SendChan():
			client.Conn().SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				client.Conn().WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			// Each frame goes in its own WebSocket message so clients can
			// JSON-parse them independently.
			if err := client.Conn().WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

			n := len(client.SendChan())
			for i := 0; i < n; i++ {
				queued := <-client.SendChan()
				client.Conn().SetWriteDeadline(time.Now().Add(writeWait))
				if err := client.Conn().WriteMessage(websocket.TextMessage, queued); err != nil {
					return
				}
			}
		case <-ticker.C:
			client.Conn().SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.Conn().WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
