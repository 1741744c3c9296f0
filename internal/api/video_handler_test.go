package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mantism/hyperbolic/internal/domain"
	"github.com/mantism/hyperbolic/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// mockVideoService implements service.VideoService for handler tests.
type mockVideoService struct {
	requestUploadFunc  func(ctx context.Context, userID primitive.ObjectID, meta service.UploadRequestMeta) (*service.UploadGrant, error)
	completeUploadFunc func(ctx context.Context, userID, videoID primitive.ObjectID) (*domain.Video, error)
	getMyVideosFunc    func(ctx context.Context, userID primitive.ObjectID) ([]service.VideoView, error)
}

func (m *mockVideoService) RequestUpload(ctx context.Context, userID primitive.ObjectID, meta service.UploadRequestMeta) (*service.UploadGrant, error) {
	if m.requestUploadFunc != nil {
		return m.requestUploadFunc(ctx, userID, meta)
	}
	return &service.UploadGrant{UploadURL: "https://storage/x", VideoID: "vid-1", ExpiresAt: time.Now().Add(time.Minute)}, nil
}

func (m *mockVideoService) CompleteUpload(ctx context.Context, userID, videoID primitive.ObjectID) (*domain.Video, error) {
	if m.completeUploadFunc != nil {
		return m.completeUploadFunc(ctx, userID, videoID)
	}
	return &domain.Video{ID: videoID, UserID: userID, Status: domain.VideoStatusCompleted}, nil
}

func (m *mockVideoService) GetMyVideos(ctx context.Context, userID primitive.ObjectID) ([]service.VideoView, error) {
	if m.getMyVideosFunc != nil {
		return m.getMyVideosFunc(ctx, userID)
	}
	return nil, nil
}

func (m *mockVideoService) ReapExpired(ctx context.Context) (int, error) { return 0, nil }

func newVideoTestRouter(svc service.VideoService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	// Stand-in for AuthMiddleware: inject a fixed authenticated user.
	router.Use(func(c *gin.Context) {
		c.Set(ContextUserIDKey, "64b0c3f0a1b2c3d4e5f60718")
	})
	handler := NewVideoHandler(svc)
	router.POST("/videos/upload-request", handler.RequestUpload)
	router.POST("/videos/complete", handler.CompleteUpload)
	return router
}

func TestRequestUploadHandler(t *testing.T) {
	trickID := primitive.NewObjectID()

	router := newVideoTestRouter(&mockVideoService{})

	body := `{"trickId":"` + trickID.Hex() + `","fileName":"clip.mp4","fileSize":204800,"mimeType":"video/mp4"}`
	req := httptest.NewRequest(http.MethodPost, "/videos/upload-request", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}
	var grant service.UploadGrant
	if err := json.Unmarshal(rec.Body.Bytes(), &grant); err != nil {
		t.Fatalf("invalid grant body: %v", err)
	}
	if grant.VideoID != "vid-1" || grant.UploadURL == "" {
		t.Errorf("grant = %+v", grant)
	}
}

func TestRequestUploadHandlerErrors(t *testing.T) {
	trickID := primitive.NewObjectID().Hex()

	tests := []struct {
		name       string
		body       string
		serviceErr error
		wantStatus int
	}{
		{"zero file size", `{"trickId":"` + trickID + `","fileName":"a.mp4","fileSize":0,"mimeType":"video/mp4"}`, nil, http.StatusBadRequest},
		{"bad trick id", `{"trickId":"nope","fileName":"a.mp4","fileSize":10,"mimeType":"video/mp4"}`, nil, http.StatusBadRequest},
		{"unknown trick", `{"trickId":"` + trickID + `","fileName":"a.mp4","fileSize":10,"mimeType":"video/mp4"}`, service.ErrTrickNotFound, http.StatusNotFound},
		{"too large", `{"trickId":"` + trickID + `","fileName":"a.mp4","fileSize":10,"mimeType":"video/mp4"}`, service.ErrFileTooLarge, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockVideoService{}
			if tt.serviceErr != nil {
				svc.requestUploadFunc = func(ctx context.Context, userID primitive.ObjectID, meta service.UploadRequestMeta) (*service.UploadGrant, error) {
					return nil, tt.serviceErr
				}
			}
			router := newVideoTestRouter(svc)

			req := httptest.NewRequest(http.MethodPost, "/videos/upload-request", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			var body map[string]string
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil || body["error"] == "" {
				t.Errorf("error response body = %q, want {\"error\": ...}", rec.Body.String())
			}
		})
	}
}

func TestCompleteUploadHandler(t *testing.T) {
	videoID := primitive.NewObjectID()

	tests := []struct {
		name       string
		serviceErr error
		wantStatus int
	}{
		{"success", nil, http.StatusOK},
		{"not found", service.ErrVideoNotFound, http.StatusNotFound},
		{"not owner", service.ErrVideoNotOwned, http.StatusForbidden},
		{"already terminal", service.ErrVideoNotPending, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockVideoService{}
			if tt.serviceErr != nil {
				svc.completeUploadFunc = func(ctx context.Context, userID, id primitive.ObjectID) (*domain.Video, error) {
					return nil, tt.serviceErr
				}
			}
			router := newVideoTestRouter(svc)

			body := `{"videoId":"` + videoID.Hex() + `"}`
			req := httptest.NewRequest(http.MethodPost, "/videos/complete", strings.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}
