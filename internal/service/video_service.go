package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path"
	"strings"
	"time"

	"github.com/mantism/hyperbolic/internal/domain"
	"github.com/mantism/hyperbolic/internal/repository"
	"github.com/mantism/hyperbolic/internal/storage"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrTrickNotFound       = errors.New("trick not found")
	ErrVideoNotFound       = errors.New("video not found")
	ErrVideoNotOwned       = errors.New("video does not belong to this user")
	ErrVideoNotPending     = errors.New("video is not awaiting completion")
	ErrInvalidUploadMeta   = errors.New("invalid upload metadata")
	ErrFileTooLarge        = errors.New("declared file size exceeds the allowed maximum")
	ErrUploadURLGeneration = errors.New("failed to generate upload URL")
)

// UploadGrant is returned to a client that asked to upload a clip.
// The URL is single-use and stops working at ExpiresAt; the video record
// already exists in "pending" status when the grant is handed out.
type UploadGrant struct {
	UploadURL string    `json:"uploadUrl"`
	VideoID   string    `json:"videoId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// UploadRequestMeta describes the clip a client intends to upload.
type UploadRequestMeta struct {
	TrickID    primitive.ObjectID
	FileName   string
	FileSize   int64
	MimeType   string
	DurationMs *int64
}

// VideoView is a Video enriched with a temporary playback URL.
type VideoView struct {
	domain.Video
	PlaybackURL string `json:"playbackUrl,omitempty"`
}

// VideoService owns the server half of the upload pipeline: issuing grants,
// confirming completions, listing videos, and reaping expired grants.
type VideoService interface {
	RequestUpload(ctx context.Context, userID primitive.ObjectID, meta UploadRequestMeta) (*UploadGrant, error)
	CompleteUpload(ctx context.Context, userID, videoID primitive.ObjectID) (*domain.Video, error)
	GetMyVideos(ctx context.Context, userID primitive.ObjectID) ([]VideoView, error)
	ReapExpired(ctx context.Context) (int, error)
}

// videoService implements the VideoService interface.
type videoService struct {
	videoRepo    repository.VideoRepository
	trickRepo    repository.TrickRepository
	fileStorage  storage.FileStorage
	grantExpiry  time.Duration
	maxSizeBytes int64
}

// NewVideoService creates a new instance of videoService.
func NewVideoService(
	videoRepo repository.VideoRepository,
	trickRepo repository.TrickRepository,
	fileStorage storage.FileStorage,
	grantExpiry time.Duration,
	maxSizeBytes int64,
) VideoService {
	if grantExpiry <= 0 {
		grantExpiry = storage.DefaultPresignedURLExpiry
	}
	return &videoService{
		videoRepo:    videoRepo,
		trickRepo:    trickRepo,
		fileStorage:  fileStorage,
		grantExpiry:  grantExpiry,
		maxSizeBytes: maxSizeBytes,
	}
}

// RequestUpload validates the declared metadata, creates the pending video
// record, and presigns a single-use PUT URL bound to the declared MIME type.
// The record is created before the URL so a grant never exists without a
// video identifier behind it.
func (s *videoService) RequestUpload(ctx context.Context, userID primitive.ObjectID, meta UploadRequestMeta) (*UploadGrant, error) {
	if userID == primitive.NilObjectID || meta.TrickID == primitive.NilObjectID {
		return nil, ErrInvalidUploadMeta
	}
	if meta.FileSize <= 0 || meta.FileName == "" {
		return nil, ErrInvalidUploadMeta
	}
	if !strings.HasPrefix(strings.ToLower(meta.MimeType), "video/") {
		return nil, ErrInvalidUploadMeta
	}
	if s.maxSizeBytes > 0 && meta.FileSize > s.maxSizeBytes {
		return nil, ErrFileTooLarge
	}

	// The trick must exist before we accept footage of it.
	if _, err := s.trickRepo.GetByID(ctx, meta.TrickID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTrickNotFound
		}
		return nil, err
	}

	ext := strings.TrimPrefix(path.Ext(meta.FileName), ".")
	if ext == "" {
		ext = "mp4"
	}
	objectKey := path.Join("videos", userID.Hex(), meta.TrickID.Hex(), fmt.Sprintf("%s.%s", uuid.NewString(), ext))

	expiresAt := time.Now().UTC().Add(s.grantExpiry)
	video := &domain.Video{
		UserID:       userID,
		TrickID:      meta.TrickID,
		S3ObjectKey:  objectKey,
		FileName:     meta.FileName,
		ContentType:  meta.MimeType,
		Size:         meta.FileSize,
		DurationMs:   meta.DurationMs,
		Status:       domain.VideoStatusPending,
		GrantExpires: expiresAt,
	}

	videoID, err := s.videoRepo.Create(ctx, video)
	if err != nil {
		return nil, err
	}

	uploadURL, err := s.fileStorage.GeneratePresignedUploadURL(ctx, objectKey, meta.MimeType, s.grantExpiry)
	if err != nil {
		// The pending record stays behind; the reaper fails it once the
		// (never-issued) grant window lapses.
		return nil, ErrUploadURLGeneration
	}

	return &UploadGrant{
		UploadURL: uploadURL,
		VideoID:   videoID.Hex(),
		ExpiresAt: expiresAt,
	}, nil
}

// CompleteUpload transitions a pending video to completed. Only the owner
// may confirm, and only a pending record can be confirmed; completed and
// failed are terminal.
func (s *videoService) CompleteUpload(ctx context.Context, userID, videoID primitive.ObjectID) (*domain.Video, error) {
	video, err := s.videoRepo.GetByID(ctx, videoID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrVideoNotFound
		}
		return nil, err
	}
	if video.UserID != userID {
		return nil, ErrVideoNotOwned
	}

	updated, err := s.videoRepo.TransitionStatus(ctx, videoID, domain.VideoStatusPending, domain.VideoStatusCompleted)
	if err != nil {
		if errors.Is(err, repository.ErrStatusConflict) {
			return nil, ErrVideoNotPending
		}
		return nil, err
	}
	return updated, nil
}

// GetMyVideos lists the caller's videos, attaching a temporary playback URL
// to each completed one.
func (s *videoService) GetMyVideos(ctx context.Context, userID primitive.ObjectID) ([]VideoView, error) {
	videos, err := s.videoRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	views := make([]VideoView, 0, len(videos))
	for _, v := range videos {
		view := VideoView{Video: v}
		if v.Status == domain.VideoStatusCompleted {
			url, err := s.fileStorage.GeneratePresignedDownloadURL(ctx, v.S3ObjectKey, storage.DefaultPresignedURLExpiry)
			if err != nil {
				log.Printf("ERROR: Failed to presign playback URL for video %s: %v", v.ID.Hex(), err)
			} else {
				view.PlaybackURL = url
			}
		}
		views = append(views, view)
	}
	return views, nil
}

// reapBatchSize bounds one sweep of the expired-grant reaper.
const reapBatchSize = 100

// ReapExpired fails pending videos whose grant lapsed without a completion
// and best-effort deletes any bytes that made it into storage. A confirm
// racing the reaper loses cleanly: the compare-and-set transition skips
// records that already left pending.
func (s *videoService) ReapExpired(ctx context.Context) (int, error) {
	expired, err := s.videoRepo.ListExpiredPending(ctx, reapBatchSize)
	if err != nil {
		return 0, err
	}

	var reaped int
	for _, v := range expired {
		if _, err := s.videoRepo.TransitionStatus(ctx, v.ID, domain.VideoStatusPending, domain.VideoStatusFailed); err != nil {
			if errors.Is(err, repository.ErrStatusConflict) {
				continue // completed or already failed in the meantime
			}
			return reaped, err
		}
		reaped++

		// Orphaned bytes are garbage once the record is failed.
		if err := s.fileStorage.DeleteObject(ctx, v.S3ObjectKey); err != nil {
			log.Printf("ERROR: Failed to delete orphaned object '%s': %v", v.S3ObjectKey, err)
		}
	}
	return reaped, nil
}
