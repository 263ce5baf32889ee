package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meetsync/backend/internal/hub"
	"github.com/meetsync/backend/internal/model"
)

type staticSummarizer struct {
	summary string
}

func (s *staticSummarizer) GenerateSummary(ctx context.Context, transcript string) (string, error) {
	return s.summary, nil
}

func (s *staticSummarizer) ExtractActionItems(ctx context.Context, transcript string) ([]model.ActionItem, error) {
	return nil, nil
}

func (s *staticSummarizer) GenerateInsights(ctx context.Context, transcript string) (model.Insights, error) {
	return model.Insights{}, nil
}

func newTestHandler() (*Handler, *hub.Registry) {
	registry := hub.NewRegistry()
	dispatcher := hub.NewDispatcher(registry)
	store := hub.NewStore(64)
	controller := hub.NewController(store, dispatcher, &staticSummarizer{summary: "summary"}, time.Second)
	return NewHandler(registry, dispatcher, controller), registry
}

// envelope is a decoded outbound frame as a client sees it.
type envelope struct {
	Type hub.EventType   `json:"type"`
	Data json.RawMessage `json:"data"`
}

// drain collects every frame currently queued on the client.
func drain(client *Client) []envelope {
	var out []envelope
	for {
		select {
		case frame := <-client.SendChan():
			var ev envelope
			if err := json.Unmarshal(frame, &ev); err == nil {
				out = append(out, ev)
			}
		default:
			return out
		}
	}
}

func TestHandleCommandPing(t *testing.T) {
	handler, registry := newTestHandler()
	client := NewClient(nil, "m1", model.Identity{UserID: "u1"})
	require.NoError(t, registry.Attach("m1", client))

	handler.handleCommand(client, &hub.Command{Type: hub.CommandPing})

	events := drain(client)
	require.Len(t, events, 1)
	assert.Equal(t, hub.EventPong, events[0].Type)
}

func TestHandleCommandUnknownTypeIsUnicastError(t *testing.T) {
	handler, registry := newTestHandler()
	offender := NewClient(nil, "m1", model.Identity{UserID: "u1"})
	bystander := NewClient(nil, "m1", model.Identity{UserID: "u2"})
	require.NoError(t, registry.Attach("m1", offender))
	require.NoError(t, registry.Attach("m1", bystander))

	handler.handleCommand(offender, &hub.Command{Type: "bogus"})

	events := drain(offender)
	require.Len(t, events, 1)
	assert.Equal(t, hub.EventError, events[0].Type)

	var payload hub.ErrorPayload
	require.NoError(t, json.Unmarshal(events[0].Data, &payload))
	assert.Equal(t, model.ErrUnknownCommand.Error(), payload.Error)

	// The violation never reaches other participants.
	assert.Empty(t, drain(bystander))
}

func TestHandleCommandTranscriptBeforeStart(t *testing.T) {
	handler, registry := newTestHandler()
	client := NewClient(nil, "m1", model.Identity{UserID: "u1"})
	require.NoError(t, registry.Attach("m1", client))

	handler.handleCommand(client, &hub.Command{Type: hub.CommandTranscript, Text: "too early"})

	events := drain(client)
	require.Len(t, events, 1)
	assert.Equal(t, hub.EventError, events[0].Type)

	var payload hub.ErrorPayload
	require.NoError(t, json.Unmarshal(events[0].Data, &payload))
	assert.Equal(t, model.ErrSessionNotStarted.Error(), payload.Error)
}

func TestHandleCommandStartThenTranscript(t *testing.T) {
	handler, registry := newTestHandler()
	client := NewClient(nil, "m1", model.Identity{UserID: "u1", Username: "Ada"})
	require.NoError(t, registry.Attach("m1", client))

	handler.handleCommand(client, &hub.Command{Type: hub.CommandStart})
	handler.handleCommand(client, &hub.Command{Type: hub.CommandTranscript, Text: "hello"})

	events := drain(client)
	require.Len(t, events, 2)
	assert.Equal(t, hub.EventSessionStarted, events[0].Type)
	assert.Equal(t, hub.EventTranscript, events[1].Type)

	var payload hub.TranscriptPayload
	require.NoError(t, json.Unmarshal(events[1].Data, &payload))
	assert.Equal(t, "hello", payload.Text)
	assert.Equal(t, "Ada", payload.Speaker)
	assert.Equal(t, 1, payload.Order)
}

// dialTest connects a real WebSocket client to a handler-backed test server.
func dialTest(t *testing.T, handler *Handler, meetingID string, identity model.Identity) (*websocket.Conn, func()) {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := handler.HandleConnection(w, r, meetingID, identity); err != nil {
			t.Errorf("HandleConnection: %v", err)
		}
	}))

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)

	return conn, func() {
		conn.Close()
		server.Close()
	}
}

func readEnvelope(t *testing.T, conn *websocket.Conn) envelope {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, frame, err := conn.ReadMessage()
	require.NoError(t, err)

	var ev envelope
	require.NoError(t, json.Unmarshal(frame, &ev))
	return ev
}

func TestConnectionLifecycleOverWire(t *testing.T) {
	handler, _ := newTestHandler()
	conn, cleanup := dialTest(t, handler, "m1", model.Identity{UserID: "u1", Username: "Ada"})
	defer cleanup()

	require.NoError(t, conn.WriteJSON(hub.Command{Type: hub.CommandStart}))
	ev := readEnvelope(t, conn)
	assert.Equal(t, hub.EventSessionStarted, ev.Type)

	require.NoError(t, conn.WriteJSON(hub.Command{Type: hub.CommandTranscript, Text: "hello over the wire"}))
	ev = readEnvelope(t, conn)
	require.Equal(t, hub.EventTranscript, ev.Type)

	var transcript hub.TranscriptPayload
	require.NoError(t, json.Unmarshal(ev.Data, &transcript))
	assert.Equal(t, "hello over the wire", transcript.Text)

	require.NoError(t, conn.WriteJSON(hub.Command{Type: hub.CommandGenerateSummary}))
	ev = readEnvelope(t, conn)
	require.Equal(t, hub.EventSummary, ev.Type)

	var summary hub.SummaryPayload
	require.NoError(t, json.Unmarshal(ev.Data, &summary))
	assert.Equal(t, "summary", summary.Summary)

	require.NoError(t, conn.WriteJSON(hub.Command{Type: hub.CommandEndMeeting}))
	ev = readEnvelope(t, conn)
	assert.Equal(t, hub.EventSessionEnded, ev.Type)
}

func TestMalformedEnvelopeOverWire(t *testing.T) {
	handler, _ := newTestHandler()
	conn, cleanup := dialTest(t, handler, "m1", model.Identity{UserID: "u1"})
	defer cleanup()

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))

	ev := readEnvelope(t, conn)
	assert.Equal(t, hub.EventError, ev.Type)

	// The connection survives the violation.
	require.NoError(t, conn.WriteJSON(hub.Command{Type: hub.CommandPing}))
	ev = readEnvelope(t, conn)
	assert.Equal(t, hub.EventPong, ev.Type)
}

func TestResumeOnReconnectOverWire(t *testing.T) {
	handler, _ := newTestHandler()

	first, cleanupFirst := dialTest(t, handler, "m1", model.Identity{UserID: "u1", Username: "Ada"})
	require.NoError(t, first.WriteJSON(hub.Command{Type: hub.CommandStart}))
	require.NoError(t, first.WriteJSON(hub.Command{Type: hub.CommandTranscript, Text: "before the drop"}))
	readEnvelope(t, first) // session_started
	readEnvelope(t, first) // transcript
	cleanupFirst()

	second, cleanupSecond := dialTest(t, handler, "m1", model.Identity{UserID: "u2", Username: "Grace"})
	defer cleanupSecond()

	// The rejoining client immediately receives the running session's state.
	ev := readEnvelope(t, second)
	assert.Equal(t, hub.EventSessionStarted, ev.Type)

	ev = readEnvelope(t, second)
	require.Equal(t, hub.EventTranscript, ev.Type)

	var transcript hub.TranscriptPayload
	require.NoError(t, json.Unmarshal(ev.Data, &transcript))
	assert.Equal(t, "before the drop", transcript.Text)
}

func TestRejectClosesWithPolicyViolation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		Reject(w, r, "access denied")
	}))
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err = conn.ReadMessage()
	require.Error(t, err)
	assert.True(t, websocket.IsCloseError(err, websocket.ClosePolicyViolation))
}
