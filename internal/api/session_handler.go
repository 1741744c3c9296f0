package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/mantism/hyperbolic/internal/domain"
	"github.com/mantism/hyperbolic/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SessionHandler exposes training session logging.
type SessionHandler struct {
	sessionService service.SessionService
}

func NewSessionHandler(sessionService service.SessionService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService}
}

type StartSessionRequest struct {
	Notes string `json:"notes"`
}

type TallyBody struct {
	TrickID  string `json:"trickId" binding:"required"`
	Attempts int    `json:"attempts" binding:"min=0"`
	Lands    int    `json:"lands" binding:"min=0"`
}

type UpdateSessionRequest struct {
	DurationS int         `json:"durationS" binding:"min=0"`
	Notes     string      `json:"notes"`
	Tallies   []TallyBody `json:"tallies"`
}

// StartSession opens a new training session for the caller.
func (h *SessionHandler) StartSession(c *gin.Context) {
	userID, err := requireUserID(c)
	if err != nil {
		return
	}

	var req StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	session, err := h.sessionService.StartSession(c.Request.Context(), userID, req.Notes)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to start session.")
		return
	}
	c.JSON(http.StatusCreated, session)
}

// GetMySessions lists the caller's sessions, newest first.
func (h *SessionHandler) GetMySessions(c *gin.Context) {
	userID, err := requireUserID(c)
	if err != nil {
		return
	}

	sessions, err := h.sessionService.GetMySessions(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve sessions.")
		return
	}
	if sessions == nil {
		c.JSON(http.StatusOK, []domain.Session{})
		return
	}
	c.JSON(http.StatusOK, sessions)
}

// UpdateSession replaces duration, notes, and tallies on a session.
func (h *SessionHandler) UpdateSession(c *gin.Context) {
	userID, err := requireUserID(c)
	if err != nil {
		return
	}
	sessionID, err := primitive.ObjectIDFromHex(c.Param("sessionId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid session ID format.")
		return
	}

	var req UpdateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	tallies := make([]domain.TrickTally, 0, len(req.Tallies))
	for _, t := range req.Tallies {
		trickID, err := primitive.ObjectIDFromHex(t.TrickID)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid trick ID in tallies.")
			return
		}
		tallies = append(tallies, domain.TrickTally{TrickID: trickID, Attempts: t.Attempts, Lands: t.Lands})
	}

	session, err := h.sessionService.UpdateSession(c.Request.Context(), userID, &domain.Session{
		ID:        sessionID,
		DurationS: req.DurationS,
		Notes:     req.Notes,
		Tallies:   tallies,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSessionNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrSessionNotOwned):
			abortWithError(c, http.StatusForbidden, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to update session.")
		}
		return
	}
	c.JSON(http.StatusOK, session)
}

// DeleteSession removes one of the caller's sessions.
func (h *SessionHandler) DeleteSession(c *gin.Context) {
	userID, err := requireUserID(c)
	if err != nil {
		return
	}
	sessionID, err := primitive.ObjectIDFromHex(c.Param("sessionId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid session ID format.")
		return
	}

	if err := h.sessionService.DeleteSession(c.Request.Context(), userID, sessionID); err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to delete session.")
		}
		return
	}
	c.Status(http.StatusNoContent)
}
