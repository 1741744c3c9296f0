// internal/api/video_handler.go
package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/mantism/hyperbolic/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// VideoHandler exposes the upload-intent and completion endpoints of the
// video pipeline, plus listing.
type VideoHandler struct {
	videoService service.VideoService
}

func NewVideoHandler(videoService service.VideoService) *VideoHandler {
	return &VideoHandler{videoService: videoService}
}

// --- DTOs ---

// UploadRequestBody is what a client declares before any bytes move.
// UserID from the body is ignored in favor of the authenticated identity.
type UploadRequestBody struct {
	TrickID    string `json:"trickId" binding:"required"`
	FileName   string `json:"fileName" binding:"required"`
	FileSize   int64  `json:"fileSize" binding:"required,gt=0"`
	MimeType   string `json:"mimeType" binding:"required"`
	DurationMs *int64 `json:"duration,omitempty"`
}

type CompleteRequestBody struct {
	VideoID string `json:"videoId" binding:"required"`
}

// --- Handler Methods ---

// RequestUpload godoc
// @Summary Request an upload grant for a trick video
// @Description Allocates a pending video record and returns a single-use,
// @Description time-bounded PUT URL into object storage.
// @Tags Videos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UploadRequestBody true "Upload metadata"
// @Success 200 {object} service.UploadGrant
// @Failure 400 {object} gin.H "Invalid metadata"
// @Failure 404 {object} gin.H "Trick not found"
// @Router /videos/upload-request [post]
func (h *VideoHandler) RequestUpload(c *gin.Context) {
	userID, err := requireUserID(c)
	if err != nil {
		return
	}

	var req UploadRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	trickID, err := primitive.ObjectIDFromHex(req.TrickID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid trick ID format.")
		return
	}

	grant, err := h.videoService.RequestUpload(c.Request.Context(), userID, service.UploadRequestMeta{
		TrickID:    trickID,
		FileName:   req.FileName,
		FileSize:   req.FileSize,
		MimeType:   req.MimeType,
		DurationMs: req.DurationMs,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTrickNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrInvalidUploadMeta), errors.Is(err, service.ErrFileTooLarge):
			abortWithError(c, http.StatusBadRequest, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to create upload grant.")
		}
		return
	}

	c.JSON(http.StatusOK, grant)
}

// CompleteUpload godoc
// @Summary Confirm a finished upload
// @Description Transitions the pending video record to completed. Only the
// @Description owner may confirm, and only once.
// @Tags Videos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CompleteRequestBody true "Video identifier"
// @Success 200 {object} domain.Video
// @Failure 403 {object} gin.H "Not the owner"
// @Failure 404 {object} gin.H "Video not found"
// @Failure 409 {object} gin.H "Video is not pending"
// @Router /videos/complete [post]
func (h *VideoHandler) CompleteUpload(c *gin.Context) {
	userID, err := requireUserID(c)
	if err != nil {
		return
	}

	var req CompleteRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	videoID, err := primitive.ObjectIDFromHex(req.VideoID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid video ID format.")
		return
	}

	video, err := h.videoService.CompleteUpload(c.Request.Context(), userID, videoID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrVideoNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrVideoNotOwned):
			abortWithError(c, http.StatusForbidden, err.Error())
		case errors.Is(err, service.ErrVideoNotPending):
			abortWithError(c, http.StatusConflict, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to confirm upload.")
		}
		return
	}

	c.JSON(http.StatusOK, video)
}

// GetMyVideos godoc
// @Summary List my uploaded videos
// @Tags Videos
// @Produce json
// @Security BearerAuth
// @Success 200 {array} service.VideoView
// @Router /videos [get]
func (h *VideoHandler) GetMyVideos(c *gin.Context) {
	userID, err := requireUserID(c)
	if err != nil {
		return
	}

	videos, err := h.videoService.GetMyVideos(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve videos.")
		return
	}
	if videos == nil {
		c.JSON(http.StatusOK, []service.VideoView{})
		return
	}
	c.JSON(http.StatusOK, videos)
}

// requireUserID resolves the authenticated user's ObjectID or aborts.
func requireUserID(c *gin.Context) (primitive.ObjectID, error) {
	userIDStr, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user.")
		return primitive.NilObjectID, err
	}
	userID, err := primitive.ObjectIDFromHex(userIDStr)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid user ID format in token.")
		return primitive.NilObjectID, err
	}
	return userID, nil
}
