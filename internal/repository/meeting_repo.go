// Package repository provides data access for the durable meeting store.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/meetsync/backend/internal/model"
)

// MeetingRepository provides data access for meetings, tasks, and notes.
type MeetingRepository struct {
	db *sql.DB
}

// NewMeetingRepository creates a new MeetingRepository.
func NewMeetingRepository(db *sql.DB) *MeetingRepository {
	return &MeetingRepository{db: db}
}

// CreateMeeting inserts a new meeting into the database.
func (r *MeetingRepository) CreateMeeting(ctx context.Context, meeting *model.Meeting) error {
	participantsJSON, err := meeting.ParticipantsToJSON()
	if err != nil {
		return fmt.Errorf("failed to serialize participants: %w", err)
	}
	actionItemsJSON, err := meeting.ActionItemsToJSON()
	if err != nil {
		return fmt.Errorf("failed to serialize action items: %w", err)
	}

	query := `
		INSERT INTO meetings (id, title, description, created_by_id, participants, status, summary, action_items, insights, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.ExecContext(ctx, query,
		meeting.ID,
		meeting.Title,
		meeting.Description,
		meeting.CreatedByID,
		participantsJSON,
		meeting.Status,
		meeting.Summary,
		actionItemsJSON,
		string(meeting.Insights),
		meeting.CreatedAt,
		meeting.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create meeting: %w", err)
	}

	return nil
}

// GetMeeting retrieves a meeting by its ID.
func (r *MeetingRepository) GetMeeting(ctx context.Context, id string) (*model.Meeting, error) {
	query := `
		SELECT id, title, description, created_by_id, participants, status, summary, action_items, insights, created_at, updated_at
		FROM meetings
		WHERE id = ?
	`

	return r.scanMeeting(r.db.QueryRowContext(ctx, query, id))
}

// ListMeetings retrieves all meetings visible to a user, newest first.
func (r *MeetingRepository) ListMeetings(ctx context.Context, userID string) ([]*model.Meeting, error) {
	query := `
		SELECT id, title, description, created_by_id, participants, status, summary, action_items, insights, created_at, updated_at
		FROM meetings
		WHERE created_by_id = ? OR participants LIKE '%' || ? || '%'
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list meetings: %w", err)
	}
	defer rows.Close()

	var meetings []*model.Meeting
	for rows.Next() {
		meeting, err := r.scanMeeting(rows)
		if err != nil {
			return nil, err
		}
		meetings = append(meetings, meeting)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating meetings: %w", err)
	}

	return meetings, nil
}

// UpdateMeetingStatus updates the scheduling status of a meeting.
func (r *MeetingRepository) UpdateMeetingStatus(ctx context.Context, id string, status model.MeetingStatus) error {
	query := `
		UPDATE meetings
		SET status = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query, status, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update meeting status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return model.ErrMeetingNotFound
	}

	return nil
}

// SaveMeetingOutcome stores the final summary, action items, and insights of
// a completed meeting.
func (r *MeetingRepository) SaveMeetingOutcome(ctx context.Context, id, summary string, items []model.ActionItem, insights *model.Insights) error {
	itemsJSON := ""
	if items != nil {
		data, err := json.Marshal(items)
		if err != nil {
			return fmt.Errorf("failed to serialize action items: %w", err)
		}
		itemsJSON = string(data)
	}
	insightsJSON := ""
	if insights != nil {
		data, err := json.Marshal(insights)
		if err != nil {
			return fmt.Errorf("failed to serialize insights: %w", err)
		}
		insightsJSON = string(data)
	}

	query := `
		UPDATE meetings
		SET summary = ?, action_items = ?, insights = ?, status = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query, summary, itemsJSON, insightsJSON, model.MeetingStatusCompleted, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to save meeting outcome: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return model.ErrMeetingNotFound
	}

	return nil
}

// DeleteMeeting removes a meeting from the database.
func (r *MeetingRepository) DeleteMeeting(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM meetings WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete meeting: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return model.ErrMeetingNotFound
	}

	return nil
}

// CreateTask inserts a new task into the database.
func (r *MeetingRepository) CreateTask(ctx context.Context, task *model.Task) error {
	query := `
		INSERT INTO tasks (id, title, description, meeting_id, assigned_to_id, created_by_id, status, priority, due_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		task.ID,
		task.Title,
		task.Description,
		nullable(task.MeetingID),
		task.AssignedToID,
		task.CreatedByID,
		task.Status,
		task.Priority,
		task.DueDate,
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}

	return nil
}

// ListTasksByMeeting retrieves all tasks created from a meeting.
func (r *MeetingRepository) ListTasksByMeeting(ctx context.Context, meetingID string) ([]*model.Task, error) {
	query := `
		SELECT id, title, description, meeting_id, assigned_to_id, created_by_id, status, priority, due_date, created_at, updated_at
		FROM tasks
		WHERE meeting_id = ?
		ORDER BY created_at
	`

	rows, err := r.db.QueryContext(ctx, query, meetingID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*model.Task
	for rows.Next() {
		task := &model.Task{}
		var meetingID, assignedTo, description, priority, dueDate sql.NullString

		err := rows.Scan(
			&task.ID,
			&task.Title,
			&description,
			&meetingID,
			&assignedTo,
			&task.CreatedByID,
			&task.Status,
			&priority,
			&dueDate,
			&task.CreatedAt,
			&task.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}

		task.Description = description.String
		task.MeetingID = meetingID.String
		task.AssignedToID = assignedTo.String
		task.Priority = priority.String
		task.DueDate = dueDate.String
		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tasks: %w", err)
	}

	return tasks, nil
}

// UpdateTaskStatus updates the workflow status of a task.
func (r *MeetingRepository) UpdateTaskStatus(ctx context.Context, id string, status model.TaskStatus) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE tasks SET status = ?, updated_at = ? WHERE id = ?`,
		status, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update task status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return model.ErrTaskNotFound
	}

	return nil
}

// CreateNote inserts a new meeting note into the database.
func (r *MeetingRepository) CreateNote(ctx context.Context, note *model.Note) error {
	query := `
		INSERT INTO meeting_notes (id, meeting_id, speaker, content, note_type, created_by_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		note.ID,
		note.MeetingID,
		note.Speaker,
		note.Content,
		note.Type,
		note.CreatedByID,
		note.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create note: %w", err)
	}

	return nil
}

// ListNotesByMeeting retrieves all notes for a meeting, oldest first.
func (r *MeetingRepository) ListNotesByMeeting(ctx context.Context, meetingID string) ([]*model.Note, error) {
	query := `
		SELECT id, meeting_id, speaker, content, note_type, created_by_id, created_at
		FROM meeting_notes
		WHERE meeting_id = ?
		ORDER BY created_at
	`

	rows, err := r.db.QueryContext(ctx, query, meetingID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	defer rows.Close()

	var notes []*model.Note
	for rows.Next() {
		note := &model.Note{}
		var speaker sql.NullString

		err := rows.Scan(
			&note.ID,
			&note.MeetingID,
			&speaker,
			&note.Content,
			&note.Type,
			&note.CreatedByID,
			&note.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}

		note.Speaker = speaker.String
		notes = append(notes, note)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notes: %w", err)
	}

	return notes, nil
}

// scanner abstracts over *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func (r *MeetingRepository) scanMeeting(row scanner) (*model.Meeting, error) {
	meeting := &model.Meeting{}
	var description, participantsJSON, summary, actionItemsJSON, insightsJSON sql.NullString

	err := row.Scan(
		&meeting.ID,
		&meeting.Title,
		&description,
		&meeting.CreatedByID,
		&participantsJSON,
		&meeting.Status,
		&summary,
		&actionItemsJSON,
		&insightsJSON,
		&meeting.CreatedAt,
		&meeting.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, model.ErrMeetingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get meeting: %w", err)
	}

	meeting.Description = description.String
	meeting.Summary = summary.String
	if participantsJSON.Valid {
		if err := meeting.ParticipantsFromJSON(participantsJSON.String); err != nil {
			return nil, fmt.Errorf("failed to parse participants: %w", err)
		}
	}
	if actionItemsJSON.Valid {
		if err := meeting.ActionItemsFromJSON(actionItemsJSON.String); err != nil {
			return nil, fmt.Errorf("failed to parse action items: %w", err)
		}
	}
	if insightsJSON.Valid && insightsJSON.String != "" {
		meeting.Insights = json.RawMessage(insightsJSON.String)
	}

	return meeting, nil
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
