package handlers

import (
	"errors"
	"log"

	"github.com/gin-gonic/gin"

	"github.com/meetsync/backend/internal/auth"
	"github.com/meetsync/backend/internal/model"
	"github.com/meetsync/backend/internal/repository"
	"github.com/meetsync/backend/internal/ws"
)

// WebSocketHandler admits clients to live meeting sessions. It runs the
// authentication gate and the meeting access check before handing the
// connection to the gateway; a rejected client's transport is closed with a
// policy-violation signal, never an application-level error event.
type WebSocketHandler struct {
	repo      *repository.MeetingRepository
	gate      *auth.Gate
	wsHandler *ws.Handler
}

// NewWebSocketHandler creates a new WebSocketHandler.
func NewWebSocketHandler(repo *repository.MeetingRepository, gate *auth.Gate, wsHandler *ws.Handler) *WebSocketHandler {
	return &WebSocketHandler{
		repo:      repo,
		gate:      gate,
		wsHandler: wsHandler,
	}
}

// Attach handles GET /api/ws/meetings/:id, the WebSocket endpoint for
// real-time meeting collaboration.
func (h *WebSocketHandler) Attach(c *gin.Context) {
	meetingID := c.Param("id")

	identity, err := h.gate.ResolveIdentity(bearerToken(c))
	if err != nil {
		ws.Reject(c.Writer, c.Request, "authentication failed")
		return
	}

	meeting, err := h.repo.GetMeeting(c.Request.Context(), meetingID)
	if err != nil {
		if errors.Is(err, model.ErrMeetingNotFound) {
			ws.Reject(c.Writer, c.Request, "meeting not found")
			return
		}
		ws.Reject(c.Writer, c.Request, "admission check failed")
		return
	}

	if !h.gate.Authorize(identity, meeting) {
		ws.Reject(c.Writer, c.Request, model.ErrAccessDenied.Error())
		return
	}

	if err := h.wsHandler.HandleConnection(c.Writer, c.Request, meetingID, identity); err != nil {
		log.Printf("Failed to attach connection to meeting %s: %v", meetingID, err)
	}
}

// RegisterRoutes registers the WebSocket route on a Gin router group.
func (h *WebSocketHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/ws/meetings/:id", h.Attach)
}
