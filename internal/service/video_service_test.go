package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/mantism/hyperbolic/internal/domain"
	"github.com/mantism/hyperbolic/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Mocks ---

type mockVideoRepo struct {
	createFunc     func(ctx context.Context, video *domain.Video) (primitive.ObjectID, error)
	getByIDFunc    func(ctx context.Context, id primitive.ObjectID) (*domain.Video, error)
	getByUserFunc  func(ctx context.Context, userID primitive.ObjectID) ([]domain.Video, error)
	transitionFunc func(ctx context.Context, id primitive.ObjectID, from, to domain.VideoStatus) (*domain.Video, error)
	expiredFunc    func(ctx context.Context, limit int64) ([]domain.Video, error)
}

func (m *mockVideoRepo) Create(ctx context.Context, video *domain.Video) (primitive.ObjectID, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, video)
	}
	return primitive.NewObjectID(), nil
}

func (m *mockVideoRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Video, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, repository.ErrNotFound
}

func (m *mockVideoRepo) GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.Video, error) {
	if m.getByUserFunc != nil {
		return m.getByUserFunc(ctx, userID)
	}
	return nil, nil
}

func (m *mockVideoRepo) TransitionStatus(ctx context.Context, id primitive.ObjectID, from, to domain.VideoStatus) (*domain.Video, error) {
	if m.transitionFunc != nil {
		return m.transitionFunc(ctx, id, from, to)
	}
	return nil, repository.ErrStatusConflict
}

func (m *mockVideoRepo) ListExpiredPending(ctx context.Context, limit int64) ([]domain.Video, error) {
	if m.expiredFunc != nil {
		return m.expiredFunc(ctx, limit)
	}
	return nil, nil
}

type mockTrickRepo struct {
	getByIDFunc func(ctx context.Context, id primitive.ObjectID) (*domain.Trick, error)
}

func (m *mockTrickRepo) Create(ctx context.Context, trick *domain.Trick) (primitive.ObjectID, error) {
	return primitive.NewObjectID(), nil
}

func (m *mockTrickRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Trick, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return &domain.Trick{ID: id, Name: "Kickflip", Slug: "kickflip"}, nil
}

func (m *mockTrickRepo) GetBySlug(ctx context.Context, slug string) (*domain.Trick, error) {
	return nil, repository.ErrNotFound
}

func (m *mockTrickRepo) List(ctx context.Context, category string) ([]domain.Trick, error) {
	return nil, nil
}

type mockStorage struct {
	presignUploadFunc   func(ctx context.Context, objectKey, contentType string, expires time.Duration) (string, error)
	presignDownloadFunc func(ctx context.Context, objectKey string, expires time.Duration) (string, error)
	deleteFunc          func(ctx context.Context, objectKey string) error
	deleted             []string
}

func (m *mockStorage) GeneratePresignedUploadURL(ctx context.Context, objectKey, contentType string, expires time.Duration) (string, error) {
	if m.presignUploadFunc != nil {
		return m.presignUploadFunc(ctx, objectKey, contentType, expires)
	}
	return "https://storage.test/" + objectKey, nil
}

func (m *mockStorage) GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error) {
	if m.presignDownloadFunc != nil {
		return m.presignDownloadFunc(ctx, objectKey, expires)
	}
	return "https://storage.test/get/" + objectKey, nil
}

func (m *mockStorage) DeleteObject(ctx context.Context, objectKey string) error {
	m.deleted = append(m.deleted, objectKey)
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, objectKey)
	}
	return nil
}

func validMeta(trickID primitive.ObjectID) UploadRequestMeta {
	return UploadRequestMeta{
		TrickID:  trickID,
		FileName: "clip.mp4",
		FileSize: 204800,
		MimeType: "video/mp4",
	}
}

// --- Tests ---

func TestRequestUploadIssuesGrant(t *testing.T) {
	userID := primitive.NewObjectID()
	trickID := primitive.NewObjectID()
	videoID := primitive.NewObjectID()

	var created *domain.Video
	videoRepo := &mockVideoRepo{
		createFunc: func(ctx context.Context, video *domain.Video) (primitive.ObjectID, error) {
			created = video
			return videoID, nil
		},
	}
	svc := NewVideoService(videoRepo, &mockTrickRepo{}, &mockStorage{}, 15*time.Minute, 0)

	grant, err := svc.RequestUpload(context.Background(), userID, validMeta(trickID))
	if err != nil {
		t.Fatalf("RequestUpload() error = %v", err)
	}

	if created == nil {
		t.Fatal("no video record was created")
	}
	if created.Status != domain.VideoStatusPending {
		t.Errorf("record created with status %q, want pending", created.Status)
	}
	if !strings.HasPrefix(created.S3ObjectKey, "videos/"+userID.Hex()+"/"+trickID.Hex()+"/") {
		t.Errorf("unexpected object key %q", created.S3ObjectKey)
	}
	if !strings.HasSuffix(created.S3ObjectKey, ".mp4") {
		t.Errorf("object key %q does not keep the file extension", created.S3ObjectKey)
	}

	if grant.VideoID != videoID.Hex() {
		t.Errorf("grant video id = %q, want %q", grant.VideoID, videoID.Hex())
	}
	if grant.UploadURL == "" {
		t.Error("grant has empty upload URL")
	}
	if !grant.ExpiresAt.After(time.Now()) {
		t.Errorf("grant expiry %v is not in the future", grant.ExpiresAt)
	}
}

func TestRequestUploadValidation(t *testing.T) {
	trickID := primitive.NewObjectID()
	svc := NewVideoService(&mockVideoRepo{}, &mockTrickRepo{}, &mockStorage{}, time.Minute, 1024)

	tests := []struct {
		name    string
		meta    UploadRequestMeta
		wantErr error
	}{
		{"zero size", UploadRequestMeta{TrickID: trickID, FileName: "a.mp4", FileSize: 0, MimeType: "video/mp4"}, ErrInvalidUploadMeta},
		{"missing name", UploadRequestMeta{TrickID: trickID, FileSize: 10, MimeType: "video/mp4"}, ErrInvalidUploadMeta},
		{"non-video mime", UploadRequestMeta{TrickID: trickID, FileName: "a.gif", FileSize: 10, MimeType: "image/gif"}, ErrInvalidUploadMeta},
		{"too large", UploadRequestMeta{TrickID: trickID, FileName: "a.mp4", FileSize: 4096, MimeType: "video/mp4"}, ErrFileTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.RequestUpload(context.Background(), primitive.NewObjectID(), tt.meta)
			if err != tt.wantErr {
				t.Errorf("RequestUpload() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRequestUploadUnknownTrick(t *testing.T) {
	trickRepo := &mockTrickRepo{
		getByIDFunc: func(ctx context.Context, id primitive.ObjectID) (*domain.Trick, error) {
			return nil, repository.ErrNotFound
		},
	}
	svc := NewVideoService(&mockVideoRepo{}, trickRepo, &mockStorage{}, time.Minute, 0)

	_, err := svc.RequestUpload(context.Background(), primitive.NewObjectID(), validMeta(primitive.NewObjectID()))
	if err != ErrTrickNotFound {
		t.Errorf("RequestUpload() error = %v, want ErrTrickNotFound", err)
	}
}

func TestCompleteUploadTransitionsPending(t *testing.T) {
	userID := primitive.NewObjectID()
	videoID := primitive.NewObjectID()

	videoRepo := &mockVideoRepo{
		getByIDFunc: func(ctx context.Context, id primitive.ObjectID) (*domain.Video, error) {
			return &domain.Video{ID: videoID, UserID: userID, Status: domain.VideoStatusPending}, nil
		},
		transitionFunc: func(ctx context.Context, id primitive.ObjectID, from, to domain.VideoStatus) (*domain.Video, error) {
			if from != domain.VideoStatusPending || to != domain.VideoStatusCompleted {
				t.Errorf("transition %s -> %s, want pending -> completed", from, to)
			}
			return &domain.Video{ID: id, UserID: userID, Status: to}, nil
		},
	}
	svc := NewVideoService(videoRepo, &mockTrickRepo{}, &mockStorage{}, time.Minute, 0)

	video, err := svc.CompleteUpload(context.Background(), userID, videoID)
	if err != nil {
		t.Fatalf("CompleteUpload() error = %v", err)
	}
	if video.Status != domain.VideoStatusCompleted {
		t.Errorf("status = %q, want completed", video.Status)
	}
}

func TestCompleteUploadRejectsNonOwner(t *testing.T) {
	owner := primitive.NewObjectID()
	videoRepo := &mockVideoRepo{
		getByIDFunc: func(ctx context.Context, id primitive.ObjectID) (*domain.Video, error) {
			return &domain.Video{ID: id, UserID: owner, Status: domain.VideoStatusPending}, nil
		},
	}
	svc := NewVideoService(videoRepo, &mockTrickRepo{}, &mockStorage{}, time.Minute, 0)

	_, err := svc.CompleteUpload(context.Background(), primitive.NewObjectID(), primitive.NewObjectID())
	if err != ErrVideoNotOwned {
		t.Errorf("CompleteUpload() error = %v, want ErrVideoNotOwned", err)
	}
}

func TestCompleteUploadTerminalStates(t *testing.T) {
	userID := primitive.NewObjectID()
	for _, status := range []domain.VideoStatus{domain.VideoStatusCompleted, domain.VideoStatusFailed} {
		t.Run(string(status), func(t *testing.T) {
			videoRepo := &mockVideoRepo{
				getByIDFunc: func(ctx context.Context, id primitive.ObjectID) (*domain.Video, error) {
					return &domain.Video{ID: id, UserID: userID, Status: status}, nil
				},
				transitionFunc: func(ctx context.Context, id primitive.ObjectID, from, to domain.VideoStatus) (*domain.Video, error) {
					return nil, repository.ErrStatusConflict
				},
			}
			svc := NewVideoService(videoRepo, &mockTrickRepo{}, &mockStorage{}, time.Minute, 0)

			_, err := svc.CompleteUpload(context.Background(), userID, primitive.NewObjectID())
			if err != ErrVideoNotPending {
				t.Errorf("CompleteUpload() error = %v, want ErrVideoNotPending", err)
			}
		})
	}
}

func TestGetMyVideosAttachesPlaybackURL(t *testing.T) {
	userID := primitive.NewObjectID()
	videoRepo := &mockVideoRepo{
		getByUserFunc: func(ctx context.Context, id primitive.ObjectID) ([]domain.Video, error) {
			return []domain.Video{
				{ID: primitive.NewObjectID(), UserID: userID, S3ObjectKey: "videos/a", Status: domain.VideoStatusCompleted},
				{ID: primitive.NewObjectID(), UserID: userID, S3ObjectKey: "videos/b", Status: domain.VideoStatusPending},
			}, nil
		},
	}
	svc := NewVideoService(videoRepo, &mockTrickRepo{}, &mockStorage{}, time.Minute, 0)

	views, err := svc.GetMyVideos(context.Background(), userID)
	if err != nil {
		t.Fatalf("GetMyVideos() error = %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("got %d views, want 2", len(views))
	}
	if views[0].PlaybackURL == "" {
		t.Error("completed video has no playback URL")
	}
	if views[1].PlaybackURL != "" {
		t.Error("pending video should not have a playback URL")
	}
}

func TestReapExpired(t *testing.T) {
	expired := []domain.Video{
		{ID: primitive.NewObjectID(), S3ObjectKey: "videos/x", Status: domain.VideoStatusPending},
		{ID: primitive.NewObjectID(), S3ObjectKey: "videos/y", Status: domain.VideoStatusPending},
	}
	raced := expired[1].ID // completed between listing and transition

	store := &mockStorage{}
	videoRepo := &mockVideoRepo{
		expiredFunc: func(ctx context.Context, limit int64) ([]domain.Video, error) {
			return expired, nil
		},
		transitionFunc: func(ctx context.Context, id primitive.ObjectID, from, to domain.VideoStatus) (*domain.Video, error) {
			if to != domain.VideoStatusFailed {
				t.Errorf("reaper transitioned to %q, want failed", to)
			}
			if id == raced {
				return nil, repository.ErrStatusConflict
			}
			return &domain.Video{ID: id, Status: to}, nil
		},
	}
	svc := NewVideoService(videoRepo, &mockTrickRepo{}, store, time.Minute, 0)

	n, err := svc.ReapExpired(context.Background())
	if err != nil {
		t.Fatalf("ReapExpired() error = %v", err)
	}
	if n != 1 {
		t.Errorf("ReapExpired() = %d, want 1 (conflicting record skipped)", n)
	}
	if len(store.deleted) != 1 || store.deleted[0] != "videos/x" {
		t.Errorf("deleted objects = %v, want [videos/x]", store.deleted)
	}
}
