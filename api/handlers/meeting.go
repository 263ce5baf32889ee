package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/meetsync/backend/internal/model"
	"github.com/meetsync/backend/internal/repository"
)

// MeetingHandler handles HTTP requests for the durable meeting store.
type MeetingHandler struct {
	repo *repository.MeetingRepository
}

// NewMeetingHandler creates a new MeetingHandler.
func NewMeetingHandler(repo *repository.MeetingRepository) *MeetingHandler {
	return &MeetingHandler{repo: repo}
}

// Create handles POST /api/meetings.
func (h *MeetingHandler) Create(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		sendError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Missing identity")
		return
	}

	var req model.CreateMeetingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	now := time.Now()
	meeting := &model.Meeting{
		ID:           uuid.New().String(),
		Title:        req.Title,
		Description:  req.Description,
		CreatedByID:  identity.UserID,
		Participants: req.Participants,
		Status:       model.MeetingStatusScheduled,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := h.repo.CreateMeeting(c.Request.Context(), meeting); err != nil {
		sendError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create meeting: "+err.Error())
		return
	}

	c.JSON(http.StatusCreated, meeting)
}

// Get handles GET /api/meetings/:id.
func (h *MeetingHandler) Get(c *gin.Context) {
	meeting, ok := h.loadMeeting(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, meeting)
}

// List handles GET /api/meetings.
func (h *MeetingHandler) List(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		sendError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Missing identity")
		return
	}

	meetings, err := h.repo.ListMeetings(c.Request.Context(), identity.UserID)
	if err != nil {
		sendError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list meetings: "+err.Error())
		return
	}
	if meetings == nil {
		meetings = []*model.Meeting{}
	}
	c.JSON(http.StatusOK, meetings)
}

// UpdateStatusRequest represents the request body for updating meeting status.
type UpdateStatusRequest struct {
	Status model.MeetingStatus `json:"status" binding:"required"`
}

// UpdateStatus handles PATCH /api/meetings/:id/status.
func (h *MeetingHandler) UpdateStatus(c *gin.Context) {
	meeting, ok := h.loadMeeting(c)
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	if err := h.repo.UpdateMeetingStatus(c.Request.Context(), meeting.ID, req.Status); err != nil {
		sendError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update meeting status: "+err.Error())
		return
	}

	meeting.Status = req.Status
	c.JSON(http.StatusOK, meeting)
}

// SaveOutcomeRequest represents the request body for persisting the final
// summary, action items, and insights broadcast at the end of a session.
type SaveOutcomeRequest struct {
	Summary     string             `json:"summary"`
	ActionItems []model.ActionItem `json:"actionItems"`
	Insights    *model.Insights    `json:"insights"`
}

// SaveOutcome handles POST /api/meetings/:id/outcome.
func (h *MeetingHandler) SaveOutcome(c *gin.Context) {
	meeting, ok := h.loadMeeting(c)
	if !ok {
		return
	}

	var req SaveOutcomeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	if err := h.repo.SaveMeetingOutcome(c.Request.Context(), meeting.ID, req.Summary, req.ActionItems, req.Insights); err != nil {
		sendError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to save meeting outcome: "+err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "saved"})
}

// Delete handles DELETE /api/meetings/:id. Only the creator may delete.
func (h *MeetingHandler) Delete(c *gin.Context) {
	identity, _ := identityFromContext(c)
	meeting, ok := h.loadMeeting(c)
	if !ok {
		return
	}

	if meeting.CreatedByID != identity.UserID {
		sendError(c, http.StatusForbidden, "FORBIDDEN", "Only the meeting creator can delete it")
		return
	}

	if err := h.repo.DeleteMeeting(c.Request.Context(), meeting.ID); err != nil {
		sendError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete meeting: "+err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// CreateTaskRequest represents the request body for creating a task.
type CreateTaskRequest struct {
	Title        string `json:"title" binding:"required"`
	Description  string `json:"description"`
	AssignedToID string `json:"assignedToId"`
	Priority     string `json:"priority"`
	DueDate      string `json:"dueDate"`
}

// CreateTask handles POST /api/meetings/:id/tasks. Clients typically use it
// to turn a broadcast action item into a durable task.
func (h *MeetingHandler) CreateTask(c *gin.Context) {
	identity, _ := identityFromContext(c)
	meeting, ok := h.loadMeeting(c)
	if !ok {
		return
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	if req.Priority == "" {
		req.Priority = "medium"
	}
	now := time.Now()
	task := &model.Task{
		ID:           uuid.New().String(),
		Title:        req.Title,
		Description:  req.Description,
		MeetingID:    meeting.ID,
		AssignedToID: req.AssignedToID,
		CreatedByID:  identity.UserID,
		Status:       model.TaskStatusTodo,
		Priority:     req.Priority,
		DueDate:      req.DueDate,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := h.repo.CreateTask(c.Request.Context(), task); err != nil {
		sendError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create task: "+err.Error())
		return
	}

	c.JSON(http.StatusCreated, task)
}

// ListTasks handles GET /api/meetings/:id/tasks.
func (h *MeetingHandler) ListTasks(c *gin.Context) {
	meeting, ok := h.loadMeeting(c)
	if !ok {
		return
	}

	tasks, err := h.repo.ListTasksByMeeting(c.Request.Context(), meeting.ID)
	if err != nil {
		sendError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list tasks: "+err.Error())
		return
	}
	if tasks == nil {
		tasks = []*model.Task{}
	}
	c.JSON(http.StatusOK, tasks)
}

// UpdateTaskStatusRequest represents the request body for updating a task.
type UpdateTaskStatusRequest struct {
	Status model.TaskStatus `json:"status" binding:"required"`
}

// UpdateTaskStatus handles PATCH /api/tasks/:id/status.
func (h *MeetingHandler) UpdateTaskStatus(c *gin.Context) {
	if _, ok := identityFromContext(c); !ok {
		sendError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Missing identity")
		return
	}

	var req UpdateTaskStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	taskID := c.Param("id")
	if err := h.repo.UpdateTaskStatus(c.Request.Context(), taskID, req.Status); err != nil {
		if errors.Is(err, model.ErrTaskNotFound) {
			sendError(c, http.StatusNotFound, "TASK_NOT_FOUND", "Task "+taskID+" not found")
			return
		}
		sendError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update task status: "+err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

// CreateNoteRequest represents the request body for creating a meeting note.
type CreateNoteRequest struct {
	Content string `json:"content" binding:"required"`
	Speaker string `json:"speaker"`
	Type    string `json:"type"`
}

// CreateNote handles POST /api/meetings/:id/notes.
func (h *MeetingHandler) CreateNote(c *gin.Context) {
	identity, _ := identityFromContext(c)
	meeting, ok := h.loadMeeting(c)
	if !ok {
		return
	}

	var req CreateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	noteType := model.NoteType(req.Type)
	if noteType == "" {
		noteType = model.NoteTypeTranscript
	}
	note := &model.Note{
		ID:          uuid.New().String(),
		MeetingID:   meeting.ID,
		Speaker:     req.Speaker,
		Content:     req.Content,
		Type:        noteType,
		CreatedByID: identity.UserID,
		CreatedAt:   time.Now(),
	}

	if err := h.repo.CreateNote(c.Request.Context(), note); err != nil {
		sendError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create note: "+err.Error())
		return
	}

	c.JSON(http.StatusCreated, note)
}

// ListNotes handles GET /api/meetings/:id/notes.
func (h *MeetingHandler) ListNotes(c *gin.Context) {
	meeting, ok := h.loadMeeting(c)
	if !ok {
		return
	}

	notes, err := h.repo.ListNotesByMeeting(c.Request.Context(), meeting.ID)
	if err != nil {
		sendError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list notes: "+err.Error())
		return
	}
	if notes == nil {
		notes = []*model.Note{}
	}
	c.JSON(http.StatusOK, notes)
}

// loadMeeting fetches the meeting named in the path and enforces access.
func (h *MeetingHandler) loadMeeting(c *gin.Context) (*model.Meeting, bool) {
	identity, ok := identityFromContext(c)
	if !ok {
		sendError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Missing identity")
		return nil, false
	}

	meetingID := c.Param("id")
	meeting, err := h.repo.GetMeeting(c.Request.Context(), meetingID)
	if err != nil {
		if errors.Is(err, model.ErrMeetingNotFound) {
			sendError(c, http.StatusNotFound, "MEETING_NOT_FOUND", "Meeting "+meetingID+" not found")
			return nil, false
		}
		sendError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to get meeting: "+err.Error())
		return nil, false
	}

	if !meeting.HasParticipant(identity.UserID) {
		sendError(c, http.StatusForbidden, "FORBIDDEN", "Access to meeting denied")
		return nil, false
	}

	return meeting, true
}

// RegisterRoutes registers the meeting store routes on a Gin router group.
func (h *MeetingHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/meetings", h.Create)
	rg.GET("/meetings", h.List)
	rg.GET("/meetings/:id", h.Get)
	rg.DELETE("/meetings/:id", h.Delete)
	rg.PATCH("/meetings/:id/status", h.UpdateStatus)
	rg.POST("/meetings/:id/outcome", h.SaveOutcome)
	rg.POST("/meetings/:id/tasks", h.CreateTask)
	rg.GET("/meetings/:id/tasks", h.ListTasks)
	rg.POST("/meetings/:id/notes", h.CreateNote)
	rg.GET("/meetings/:id/notes", h.ListNotes)
	rg.PATCH("/tasks/:id/status", h.UpdateTaskStatus)
}
