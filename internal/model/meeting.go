package model

import (
	"encoding/json"
	"time"
)

// MeetingStatus represents the scheduling status of a meeting record.
type MeetingStatus string

const (
	MeetingStatusScheduled  MeetingStatus = "scheduled"
	MeetingStatusInProgress MeetingStatus = "in_progress"
	MeetingStatusCompleted  MeetingStatus = "completed"
	MeetingStatusCancelled  MeetingStatus = "cancelled"
)

// Meeting is the durable record of a meeting. The live session hub keeps its
// own in-memory state and only reads this record for admission checks.
type Meeting struct {
	ID           string          `json:"id"`
	Title        string          `json:"title"`
	Description  string          `json:"description,omitempty"`
	CreatedByID  string          `json:"createdById"`
	Participants []string        `json:"participants,omitempty"`
	Status       MeetingStatus   `json:"status"`
	Summary      string          `json:"summary,omitempty"`
	ActionItems  []ActionItem    `json:"actionItems,omitempty"`
	Insights     json.RawMessage `json:"insights,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// HasParticipant reports whether the given user created the meeting or is
// listed as a participant.
func (m *Meeting) HasParticipant(userID string) bool {
	if m.CreatedByID == userID {
		return true
	}
	for _, p := range m.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

// ParticipantsToJSON converts the participant list to a JSON string for storage.
func (m *Meeting) ParticipantsToJSON() (string, error) {
	if m.Participants == nil {
		return "", nil
	}
	data, err := json.Marshal(m.Participants)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ParticipantsFromJSON parses a JSON string into the participant list.
func (m *Meeting) ParticipantsFromJSON(data string) error {
	if data == "" {
		m.Participants = nil
		return nil
	}
	return json.Unmarshal([]byte(data), &m.Participants)
}

// ActionItemsToJSON converts the action item list to a JSON string for storage.
func (m *Meeting) ActionItemsToJSON() (string, error) {
	if m.ActionItems == nil {
		return "", nil
	}
	data, err := json.Marshal(m.ActionItems)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ActionItemsFromJSON parses a JSON string into the action item list.
func (m *Meeting) ActionItemsFromJSON(data string) error {
	if data == "" {
		m.ActionItems = nil
		return nil
	}
	return json.Unmarshal([]byte(data), &m.ActionItems)
}

// ActionItem is a single follow-up extracted from a meeting transcript.
type ActionItem struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Assignee    string `json:"assignee,omitempty"`
	DueDate     string `json:"due_date,omitempty"`
	Priority    string `json:"priority,omitempty"`
}

// Insights is the structured analysis produced at the end of a meeting.
type Insights struct {
	KeyDecisions        []string `json:"key_decisions"`
	RisksIdentified     []string `json:"risks_identified"`
	UnansweredQuestions []string `json:"unanswered_questions"`
	Recommendations     []string `json:"recommendations"`
	FollowUpNeeded      bool     `json:"follow_up_needed"`
}

// Identity is the verified caller identity resolved by the authentication
// gate before a connection is admitted to a session.
type Identity struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

// TaskStatus represents the workflow status of a task.
type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusDone       TaskStatus = "done"
	TaskStatusCancelled  TaskStatus = "cancelled"
)

// Task is a durable follow-up item, typically created from an action item.
type Task struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description,omitempty"`
	MeetingID    string     `json:"meetingId,omitempty"`
	AssignedToID string     `json:"assignedToId,omitempty"`
	CreatedByID  string     `json:"createdById"`
	Status       TaskStatus `json:"status"`
	Priority     string     `json:"priority,omitempty"`
	DueDate      string     `json:"dueDate,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// NoteType classifies a meeting note.
type NoteType string

const (
	NoteTypeTranscript NoteType = "transcript"
	NoteTypeSummary    NoteType = "summary"
	NoteTypeActionItem NoteType = "action_item"
	NoteTypeDecision   NoteType = "decision"
)

// Note is a durable note attached to a meeting.
type Note struct {
	ID          string    `json:"id"`
	MeetingID   string    `json:"meetingId"`
	Speaker     string    `json:"speaker,omitempty"`
	Content     string    `json:"content"`
	Type        NoteType  `json:"type"`
	CreatedByID string    `json:"createdById"`
	CreatedAt   time.Time `json:"createdAt"`
}

// CreateMeetingRequest represents a request to create a new meeting.
type CreateMeetingRequest struct {
	Title        string   `json:"title" binding:"required"`
	Description  string   `json:"description"`
	Participants []string `json:"participants"`
	CreatedByID  string   `json:"-"`
}

// Validate validates the create meeting request.
func (r *CreateMeetingRequest) Validate() error {
	if r.Title == "" {
		return ErrTitleRequired
	}
	return nil
}
