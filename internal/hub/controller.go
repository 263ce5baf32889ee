package hub

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/meetsync/backend/internal/metrics"
	"github.com/meetsync/backend/internal/model"
)

// Summarizer is the asynchronous text-analysis facility consumed at lifecycle
// boundaries. Implementations may be slow, may fail, and may return malformed
// output; the controller absorbs all of that and never lets it stall or fail
// a lifecycle transition.
type Summarizer interface {
	GenerateSummary(ctx context.Context, transcript string) (string, error)
	ExtractActionItems(ctx context.Context, transcript string) ([]model.ActionItem, error)
	GenerateInsights(ctx context.Context, transcript string) (model.Insights, error)
}

const (
	// noTranscriptSummary is broadcast when a summary is requested before
	// anything has been said.
	noTranscriptSummary = "No transcript available for summarization."

	// degradedSummary replaces a summary the analysis backend failed to produce.
	degradedSummary = "Summary unavailable."

	defaultAnalysisTimeout = 30 * time.Second
)

// Controller owns the per-session state machine (not started, active, ended),
// validates transitions, and triggers summarization calls at transition
// boundaries. All commands for one session are serialized under that
// session's lock; unrelated sessions never contend.
type Controller struct {
	store      *Store
	dispatcher *Dispatcher
	summarizer Summarizer
	timeout    time.Duration
}

// NewController creates a Controller. analysisTimeout bounds each
// summarization service call; zero selects a default.
func NewController(store *Store, dispatcher *Dispatcher, summarizer Summarizer, analysisTimeout time.Duration) *Controller {
	if analysisTimeout <= 0 {
		analysisTimeout = defaultAnalysisTimeout
	}
	return &Controller{
		store:      store,
		dispatcher: dispatcher,
		summarizer: summarizer,
		timeout:    analysisTimeout,
	}
}

// Start transitions the session to active and broadcasts a session-started
// event with the supplied initialization payload. Re-issuing start on an
// already active session is an idempotent no-op that re-broadcasts the
// current state, so client reconnect races cannot corrupt state.
func (c *Controller) Start(meetingID string, data json.RawMessage) {
	for {
		sess, created := c.store.GetOrCreate(meetingID)
		sess.mu.Lock()
		if sess.phase == PhaseEnded {
			// Lost a race with an end command; its store entry is already
			// gone, so the next GetOrCreate yields a fresh session.
			sess.mu.Unlock()
			continue
		}
		if created {
			sess.startData = data
			metrics.ActiveSessions.Inc()
			log.Printf("Session %s started", meetingID)
		}
		c.broadcastStartedLocked(sess)
		sess.mu.Unlock()
		return
	}
}

// AppendTranscript appends one entry to the session's transcript log,
// assigns its receivedOrder, and broadcasts a transcript event carrying
// exactly that entry. The speaker defaults to the caller's identity.
func (c *Controller) AppendTranscript(meetingID string, identity model.Identity, text, speaker, timestamp string) (TranscriptEntry, error) {
	sess, ok := c.store.Get(meetingID)
	if !ok {
		return TranscriptEntry{}, model.ErrSessionNotStarted
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.phase != PhaseActive {
		return TranscriptEntry{}, model.ErrSessionNotStarted
	}

	if speaker == "" {
		speaker = identity.Username
	}
	entry := sess.appendLocked(TranscriptEntry{
		Text:            text,
		Speaker:         speaker,
		UserID:          identity.UserID,
		ClientTimestamp: timestamp,
	})

	frame, err := Encode(Event{Type: EventTranscript, Data: TranscriptPayload{
		Text:      entry.Text,
		Speaker:   entry.Speaker,
		Timestamp: entry.ClientTimestamp,
		UserID:    entry.UserID,
		Order:     entry.ReceivedOrder,
	}})
	if err != nil {
		log.Printf("Failed to encode transcript event for session %s: %v", meetingID, err)
		return entry, nil
	}
	sess.replay.Push(frame)
	c.dispatcher.BroadcastFrame(meetingID, frame)
	return entry, nil
}

// RequestSummary triggers an asynchronous summarization call against a
// snapshot of the transcript taken now; entries appended while the call is
// in flight are not included. The result is broadcast as a summary event if
// the session is still live when it arrives.
func (c *Controller) RequestSummary(meetingID string) error {
	transcript, err := c.snapshot(meetingID)
	if err != nil {
		return err
	}

	if transcript == "" {
		c.broadcastIfLive(meetingID, Event{Type: EventSummary, Data: SummaryPayload{
			Summary:   noTranscriptSummary,
			MeetingID: meetingID,
		}})
		return nil
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
		defer cancel()

		summary, err := c.summarizer.GenerateSummary(ctx, transcript)
		if err != nil {
			metrics.AnalysisRequestsTotal.WithLabelValues("summary", "degraded").Inc()
			log.Printf("Summary generation failed for session %s: %v", meetingID, err)
			summary = degradedSummary
		} else {
			metrics.AnalysisRequestsTotal.WithLabelValues("summary", "ok").Inc()
		}

		c.broadcastIfLive(meetingID, Event{Type: EventSummary, Data: SummaryPayload{
			Summary:   summary,
			MeetingID: meetingID,
		}})
	}()
	return nil
}

// RequestActionItems triggers an asynchronous action-item extraction against
// a snapshot of the transcript. Independent of any in-flight summary request;
// simultaneous analysis requests do not block each other.
func (c *Controller) RequestActionItems(meetingID string) error {
	transcript, err := c.snapshot(meetingID)
	if err != nil {
		return err
	}

	if transcript == "" {
		c.broadcastIfLive(meetingID, Event{Type: EventActionItems, Data: ActionItemsPayload{
			ActionItems: []model.ActionItem{},
			MeetingID:   meetingID,
		}})
		return nil
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
		defer cancel()

		items, err := c.summarizer.ExtractActionItems(ctx, transcript)
		if err != nil {
			metrics.AnalysisRequestsTotal.WithLabelValues("action_items", "degraded").Inc()
			log.Printf("Action item extraction failed for session %s: %v", meetingID, err)
			items = nil
		} else {
			metrics.AnalysisRequestsTotal.WithLabelValues("action_items", "ok").Inc()
		}
		if items == nil {
			items = []model.ActionItem{}
		}

		c.broadcastIfLive(meetingID, Event{Type: EventActionItems, Data: ActionItemsPayload{
			ActionItems: items,
			MeetingID:   meetingID,
		}})
	}()
	return nil
}

// End transitions the session to ended, requests a final summary and
// structured insights when the transcript is non-empty, broadcasts a single
// session-ended event, and deletes the session entry. Ending a session that
// is not present is a no-op, never an error: disconnect races can deliver
// duplicate end signals.
func (c *Controller) End(meetingID string) error {
	sess, ok := c.store.Get(meetingID)
	if !ok {
		return nil
	}

	sess.mu.Lock()
	if sess.phase != PhaseActive {
		sess.mu.Unlock()
		return nil
	}
	sess.phase = PhaseEnded
	transcript := sess.transcriptTextLocked()
	// Claim the session while still holding its lock so a racing end
	// observes the entry as absent and no-ops.
	c.store.Delete(meetingID)
	sess.mu.Unlock()

	metrics.ActiveSessions.Dec()

	payload := SessionEndedPayload{MeetingID: meetingID}
	if transcript != "" {
		ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
		defer cancel()

		insights, err := c.summarizer.GenerateInsights(ctx, transcript)
		if err != nil {
			metrics.AnalysisRequestsTotal.WithLabelValues("insights", "degraded").Inc()
			log.Printf("Insights generation failed for session %s: %v", meetingID, err)
		} else {
			metrics.AnalysisRequestsTotal.WithLabelValues("insights", "ok").Inc()
			payload.Insights = &insights
		}

		summary, err := c.summarizer.GenerateSummary(ctx, transcript)
		if err != nil {
			metrics.AnalysisRequestsTotal.WithLabelValues("summary", "degraded").Inc()
			log.Printf("Final summary generation failed for session %s: %v", meetingID, err)
			summary = degradedSummary
		} else {
			metrics.AnalysisRequestsTotal.WithLabelValues("summary", "ok").Inc()
		}
		payload.FinalSummary = summary
	}

	c.dispatcher.Broadcast(meetingID, Event{Type: EventSessionEnded, Data: payload})
	log.Printf("Session %s ended", meetingID)
	return nil
}

// Resume unicasts the current session state to a (re)connecting client: the
// session-started event followed by the retained transcript backlog. A
// session that is not live yields nothing.
func (c *Controller) Resume(meetingID string, conn Conn) {
	sess, ok := c.store.Get(meetingID)
	if !ok {
		return
	}

	sess.mu.Lock()
	if sess.phase != PhaseActive {
		sess.mu.Unlock()
		return
	}
	frames := make([][]byte, 0, sess.replay.Len()+1)
	if started, err := Encode(startedEventLocked(sess)); err == nil {
		frames = append(frames, started)
	}
	frames = append(frames, sess.replay.Frames()...)
	sess.mu.Unlock()

	for _, frame := range frames {
		if err := c.dispatcher.SendFrame(conn, frame); err != nil {
			return
		}
	}
}

// snapshot returns the joined transcript text of a live session.
func (c *Controller) snapshot(meetingID string) (string, error) {
	sess, ok := c.store.Get(meetingID)
	if !ok {
		return "", model.ErrSessionNotStarted
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.phase != PhaseActive {
		return "", model.ErrSessionNotStarted
	}
	return sess.transcriptTextLocked(), nil
}

// broadcastIfLive delivers the event only if the session still exists;
// late-arriving analysis results for an ended session are silently dropped.
func (c *Controller) broadcastIfLive(meetingID string, event Event) {
	sess, ok := c.store.Get(meetingID)
	if !ok {
		log.Printf("Dropping %s event for ended session %s", event.Type, meetingID)
		return
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.phase != PhaseActive {
		return
	}
	c.dispatcher.Broadcast(meetingID, event)
}

func (c *Controller) broadcastStartedLocked(sess *Session) {
	frame, err := Encode(startedEventLocked(sess))
	if err != nil {
		log.Printf("Failed to encode session-started event for session %s: %v", sess.ID, err)
		return
	}
	c.dispatcher.BroadcastFrame(sess.ID, frame)
}

func startedEventLocked(sess *Session) Event {
	return Event{Type: EventSessionStarted, Data: SessionStartedPayload{
		MeetingID: sess.ID,
		Data:      sess.startData,
	}}
}
