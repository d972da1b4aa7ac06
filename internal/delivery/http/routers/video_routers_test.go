package routers

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"video-hub/internal/delivery/http/handlers"
	"video-hub/internal/delivery/http/middleware"
	"video-hub/internal/domain/dto"
	"video-hub/internal/infrastructure/queue"
	"video-hub/internal/infrastructure/repositories"
	"video-hub/internal/infrastructure/storage"
	"video-hub/internal/usecases"
	"video-hub/pkg/errors"
)

const testSecret = "test-secret"

type failingMetadata struct{}

func (failingMetadata) GenerateMetadata(context.Context, []string) (*dto.VideoMetadata, error) {
	return nil, errors.BadRequest("Failed to process images")
}

type envelope struct {
	StatusCode int             `json:"statusCode"`
	Message    string          `json:"message"`
	Success    bool            `json:"success"`
	Data       json.RawMessage `json:"data"`
}

type testVideo struct {
	ID          string `json:"_id"`
	Title       string `json:"title"`
	VideoFile   string `json:"videoFile"`
	Thumbnail   string `json:"thumbnail"`
	Owner       string `json:"owner"`
	IsPublished bool   `json:"isPublished"`
}

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	logger := zap.NewNop()
	tempDir := t.TempDir()

	store := storage.NewLocalStorage(t.TempDir())
	media := storage.NewMediaStore(store, "http://localhost:8000/media", nil, nil, time.Minute, logger)
	orphans := queue.NewMemoryOrphanQueue()
	cleanup := usecases.NewCleanupService(tempDir, media, orphans, 1, logger)
	videos := usecases.NewVideoService(repositories.NewInMemoryVideoRepository(), media, failingMetadata{}, orphans, true, logger)

	app := fiber.New(fiber.Config{ErrorHandler: errors.NewHandler(logger)})
	SetupVideoRoutes(app, testSecret,
		handlers.NewVideoHandler(videos, cleanup, tempDir, logger),
		handlers.NewMetadataHandler(failingMetadata{}),
		handlers.NewCleanupHandler(cleanup),
	)
	SetupMediaRoutes(app, handlers.NewMediaHandler(usecases.NewMediaService(store, nil, tempDir, logger)))
	return app
}

func token(t *testing.T, userID string) string {
	t.Helper()
	signed, err := middleware.SignAccessToken(testSecret, dto.AuthUser{ID: userID}, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	if err != nil {
		t.Fatal(err)
	}
	return signed
}

func multipartBody(t *testing.T, fields map[string]string, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		w.WriteField(k, v)
	}
	for field, name := range files {
		part, err := w.CreateFormFile(field, name)
		if err != nil {
			t.Fatal(err)
		}
		part.Write([]byte("content of " + name))
	}
	w.Close()
	return &buf, w.FormDataContentType()
}

func do(t *testing.T, app *fiber.App, req *http.Request, user string) (*http.Response, envelope) {
	t.Helper()
	if user != "" {
		req.Header.Set("Authorization", "Bearer "+token(t, user))
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	var env envelope
	body, _ := io.ReadAll(resp.Body)
	json.Unmarshal(body, &env)
	return resp, env
}

func publish(t *testing.T, app *fiber.App, owner string) testVideo {
	t.Helper()
	body, contentType := multipartBody(t,
		map[string]string{"title": "Holiday", "description": "Beach day"},
		map[string]string{"videoFile": "clip.mp4", "thumbnail": "cover.jpg"},
	)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/videos", body)
	req.Header.Set("Content-Type", contentType)

	resp, env := do(t, app, req, owner)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("publish status = %d, message %q", resp.StatusCode, env.Message)
	}
	if env.Message != "Video Uploaded Successfully with AI Metadata" || !env.Success {
		t.Errorf("envelope = %+v", env)
	}
	var v testVideo
	if err := json.Unmarshal(env.Data, &v); err != nil {
		t.Fatal(err)
	}
	return v
}

func TestVideoRoutesRequireToken(t *testing.T) {
	app := newTestApp(t)

	resp, env := do(t, app, httptest.NewRequest(http.MethodGet, "/api/v1/videos", nil), "")
	if resp.StatusCode != http.StatusUnauthorized || env.Message != "Unauthorized request" || env.Success {
		t.Errorf("no token: %d %+v", resp.StatusCode, env)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/videos", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	resp, env = do(t, app, req, "")
	if resp.StatusCode != http.StatusUnauthorized || env.Message != "Invalid Access Token" {
		t.Errorf("bad token: %d %+v", resp.StatusCode, env)
	}
}

func TestPublishListAndServe(t *testing.T) {
	app := newTestApp(t)
	owner := primitive.NewObjectID().Hex()

	v := publish(t, app, owner)
	if v.Title != "Holiday" || v.Owner != owner || v.IsPublished {
		t.Errorf("published video = %+v", v)
	}

	resp, env := do(t, app, httptest.NewRequest(http.MethodGet, "/api/v1/videos?limit=5&userId="+owner, nil), owner)
	if resp.StatusCode != http.StatusOK || env.Message != "Videos Retrieved Successfully" {
		t.Fatalf("list: %d %+v", resp.StatusCode, env)
	}
	var list dto.VideoListResponse
	json.Unmarshal(env.Data, &list)
	if list.Pagination.TotalVideos != 1 || list.Pagination.Limit != 5 || list.Pagination.TotalPages != 1 {
		t.Errorf("pagination = %+v", list.Pagination)
	}

	// The stored thumbnail is reachable through the media route.
	path := v.Thumbnail[len("http://localhost:8000"):]
	res, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(res.Body)
	if res.StatusCode != http.StatusOK || string(body) != "content of cover.jpg" {
		t.Errorf("media route: %d %q", res.StatusCode, body)
	}
	if ct := res.Header.Get("Content-Type"); ct != "image/jpeg" {
		t.Errorf("content type = %q", ct)
	}
}

func TestPublishWithoutVideoFile(t *testing.T) {
	app := newTestApp(t)
	body, contentType := multipartBody(t, map[string]string{"title": "a", "description": "b"}, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/videos", body)
	req.Header.Set("Content-Type", contentType)

	resp, env := do(t, app, req, primitive.NewObjectID().Hex())
	if resp.StatusCode != http.StatusBadRequest || env.Message != "Video is required" {
		t.Errorf("got %d %+v", resp.StatusCode, env)
	}
}

func TestTogglePublishAndDelete(t *testing.T) {
	app := newTestApp(t)
	owner := primitive.NewObjectID().Hex()
	v := publish(t, app, owner)

	resp, env := do(t, app, httptest.NewRequest(http.MethodPatch, "/api/v1/videos/toggle/publish/"+v.ID, nil), primitive.NewObjectID().Hex())
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("non-owner toggle: %d %+v", resp.StatusCode, env)
	}

	resp, env = do(t, app, httptest.NewRequest(http.MethodPatch, "/api/v1/videos/toggle/publish/"+v.ID, nil), owner)
	if resp.StatusCode != http.StatusOK || env.Message != "Video published successfully" {
		t.Errorf("owner toggle: %d %+v", resp.StatusCode, env)
	}

	resp, env = do(t, app, httptest.NewRequest(http.MethodDelete, "/api/v1/videos/"+v.ID, nil), owner)
	if resp.StatusCode != http.StatusOK || env.Message != "Video Deleted Successfully" {
		t.Errorf("delete: %d %+v", resp.StatusCode, env)
	}

	resp, env = do(t, app, httptest.NewRequest(http.MethodGet, "/api/v1/videos/"+v.ID, nil), owner)
	if resp.StatusCode != http.StatusNotFound || env.Message != "Video not found" {
		t.Errorf("get after delete: %d %+v", resp.StatusCode, env)
	}
}

func TestGenerateMetadataIsPublic(t *testing.T) {
	app := newTestApp(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/videos/generate-metadata", bytes.NewBufferString(`{"frameUrls":["http://x/a.jpg"]}`))
	req.Header.Set("Content-Type", "application/json")

	resp, env := do(t, app, req, "")
	if resp.StatusCode != http.StatusBadRequest || env.Message != "Failed to process images" {
		t.Errorf("got %d %+v", resp.StatusCode, env)
	}
}

func TestErrorHandlerFallsBackTo500(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: errors.NewHandler(zap.NewNop())})
	app.Get("/boom", func(*fiber.Ctx) error { return stderrors.New("boom") })

	resp, env := do(t, app, httptest.NewRequest(http.MethodGet, "/boom", nil), "")
	if resp.StatusCode != http.StatusInternalServerError || env.Message != "Internal Server Error" || env.Success {
		t.Errorf("got %d %+v", resp.StatusCode, env)
	}
}
