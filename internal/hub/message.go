package hub

import (
	"encoding/json"

	"github.com/meetsync/backend/internal/model"
)

// CommandType enumerates the inbound envelope kinds a client may send.
type CommandType string

const (
	CommandStart              CommandType = "start"
	CommandTranscript         CommandType = "transcript"
	CommandGenerateSummary    CommandType = "generate_summary"
	CommandExtractActionItems CommandType = "extract_action_items"
	CommandEndMeeting         CommandType = "end_meeting"
	CommandPing               CommandType = "ping"
)

// Command is the decoded inbound envelope, one per client-originated event.
// Unknown type tags are rejected by the gateway, never silently ignored.
type Command struct {
	Type      CommandType     `json:"type"`
	Text      string          `json:"text,omitempty"`
	Speaker   string          `json:"speaker,omitempty"`
	Timestamp string          `json:"timestamp,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// EventType enumerates the outbound event kinds.
type EventType string

const (
	EventSessionStarted EventType = "session_started"
	EventTranscript     EventType = "transcript"
	EventSummary        EventType = "summary"
	EventActionItems    EventType = "action_items"
	EventSessionEnded   EventType = "session_ended"
	EventPong           EventType = "pong"
	EventError          EventType = "error"
)

// Event is the outbound envelope delivered to connections of a session.
type Event struct {
	Type EventType   `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// SessionStartedPayload carries the initialization payload supplied by the
// client that started the session.
type SessionStartedPayload struct {
	MeetingID string          `json:"meeting_id"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// TranscriptPayload carries exactly one transcript entry, not the full log.
type TranscriptPayload struct {
	Text      string `json:"text"`
	Speaker   string `json:"speaker"`
	Timestamp string `json:"timestamp,omitempty"`
	UserID    string `json:"user_id"`
	Order     int    `json:"order"`
}

// SummaryPayload carries a generated meeting summary.
type SummaryPayload struct {
	Summary   string `json:"summary"`
	MeetingID string `json:"meeting_id"`
}

// ActionItemsPayload carries action items extracted from the transcript.
type ActionItemsPayload struct {
	ActionItems []model.ActionItem `json:"action_items"`
	MeetingID   string             `json:"meeting_id"`
}

// SessionEndedPayload carries the final summary and structured insights.
// Both fields are empty when the meeting ended with no transcript.
type SessionEndedPayload struct {
	MeetingID    string          `json:"meeting_id"`
	Insights     *model.Insights `json:"insights"`
	FinalSummary string          `json:"final_summary"`
}

// ErrorPayload is unicast to the offending sender on a protocol violation.
type ErrorPayload struct {
	Error string `json:"error"`
}

// Encode marshals an event into the wire frame pushed to connections.
func Encode(event Event) ([]byte, error) {
	return json.Marshal(event)
}
