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

// TrickHandler exposes the trick catalog.
type TrickHandler struct {
	trickService service.TrickService
}

func NewTrickHandler(trickService service.TrickService) *TrickHandler {
	return &TrickHandler{trickService: trickService}
}

type CreateTrickRequest struct {
	Name        string   `json:"name" binding:"required"`
	Description string   `json:"description"`
	Categories  []string `json:"categories"`
	Difficulty  int      `json:"difficulty" binding:"omitempty,min=1,max=10"`
	Prereqs     []string `json:"prereqs"`
}

// CreateTrick adds a trick to the catalog.
func (h *TrickHandler) CreateTrick(c *gin.Context) {
	var req CreateTrickRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	trick, err := h.trickService.CreateTrick(c.Request.Context(), &domain.Trick{
		Name:        req.Name,
		Description: req.Description,
		Categories:  req.Categories,
		Difficulty:  req.Difficulty,
		Prereqs:     req.Prereqs,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidTrick) {
			abortWithError(c, http.StatusBadRequest, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to create trick.")
		}
		return
	}
	c.JSON(http.StatusCreated, trick)
}

// ListTricks returns the catalog, optionally filtered by ?category=.
func (h *TrickHandler) ListTricks(c *gin.Context) {
	tricks, err := h.trickService.ListTricks(c.Request.Context(), c.Query("category"))
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve tricks.")
		return
	}
	if tricks == nil {
		c.JSON(http.StatusOK, []domain.Trick{})
		return
	}
	c.JSON(http.StatusOK, tricks)
}

// GetTrick returns one trick by ObjectID hex or by slug.
func (h *TrickHandler) GetTrick(c *gin.Context) {
	ref := c.Param("trickId")

	var trick *domain.Trick
	var err error
	if id, idErr := primitive.ObjectIDFromHex(ref); idErr == nil {
		trick, err = h.trickService.GetTrick(c.Request.Context(), id)
	} else {
		trick, err = h.trickService.GetTrickBySlug(c.Request.Context(), ref)
	}
	if err != nil {
		if errors.Is(err, service.ErrTrickNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to retrieve trick.")
		}
		return
	}
	c.JSON(http.StatusOK, trick)
}
