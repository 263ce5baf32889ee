package hub

import (
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"

	"github.com/meetsync/backend/internal/buffer"
)

// Phase is the lifecycle state of a live session.
type Phase string

const (
	// PhaseActive means the session has been started and accepts commands.
	PhaseActive Phase = "active"

	// PhaseEnded marks a session claimed by an end command. An ended session
	// is removed from the store; the marker only closes the window between
	// claiming the session and deleting its entry.
	PhaseEnded Phase = "ended"
)

// TranscriptEntry is immutable once appended. ReceivedOrder is assigned by
// the hub and is authoritative for ordering; ClientTimestamp is advisory.
type TranscriptEntry struct {
	Text            string
	Speaker         string
	UserID          string
	ClientTimestamp string
	ReceivedOrder   int
}

// Session is the live in-memory state of one meeting's real-time
// collaboration. All mutation goes through the Controller, which serializes
// commands for a session under mu.
type Session struct {
	ID string

	mu           sync.Mutex
	phase        Phase
	startData    json.RawMessage
	startedAt    time.Time
	transcript   []TranscriptEntry
	participants map[string]struct{}
	replay       *buffer.FrameRing
}

func newSession(id string, replayLimit int) *Session {
	return &Session{
		ID:           id,
		phase:        PhaseActive,
		startedAt:    time.Now(),
		participants: make(map[string]struct{}),
		replay:       buffer.NewFrameRing(replayLimit),
	}
}

// appendLocked appends a transcript entry, assigning the next receivedOrder
// and recording the source user as a participant. Callers hold mu.
func (s *Session) appendLocked(e TranscriptEntry) TranscriptEntry {
	e.ReceivedOrder = len(s.transcript) + 1
	s.transcript = append(s.transcript, e)
	if e.UserID != "" {
		s.participants[e.UserID] = struct{}{}
	}
	return e
}

// transcriptTextLocked joins the accumulated transcript into the text handed
// to the summarization service. Callers hold mu.
func (s *Session) transcriptTextLocked() string {
	texts := lo.Map(s.transcript, func(e TranscriptEntry, _ int) string {
		return e.Text
	})
	return strings.Join(texts, "\n")
}

// Transcript returns a copy of the accumulated transcript log.
func (s *Session) Transcript() []TranscriptEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]TranscriptEntry, len(s.transcript))
	copy(out, s.transcript)
	return out
}

// Participants returns the identifiers of everyone who has contributed a
// transcript entry so far.
func (s *Session) Participants() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return lo.Keys(s.participants)
}

// StartedAt returns the time the session transitioned to active.
func (s *Session) StartedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.startedAt
}

// Store maps a session id to its live session state. It has no knowledge of
// network connections. Entries are hard-deleted when a meeting ends.
type Store struct {
	mu          sync.RWMutex
	sessions    map[string]*Session
	replayLimit int
}

// NewStore creates an empty Store. replayLimit bounds the number of recent
// frames each session retains for reconnecting clients.
func NewStore(replayLimit int) *Store {
	return &Store{
		sessions:    make(map[string]*Session),
		replayLimit: replayLimit,
	}
}

// Get returns the live session for the id, if present.
func (s *Store) Get(id string) (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

// GetOrCreate returns the existing session or creates a fresh active one.
// The second result reports whether a new session was created.
func (s *Store) GetOrCreate(id string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[id]; ok {
		return sess, false
	}
	sess := newSession(id, s.replayLimit)
	s.sessions[id] = sess
	return sess, true
}

// Delete removes the session entry. Deleting an absent id is a no-op.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
