package usecases

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"net/http"
	"sync"
	"testing"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"

	"video-hub/internal/infrastructure/processor"
	"video-hub/internal/infrastructure/storage"
)

type fakeFrames struct {
	mu      sync.Mutex
	frame   []byte
	err     error
	offsets []float64
}

func (f *fakeFrames) CaptureFrame(_ context.Context, _ string, offset float64) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.offsets = append(f.offsets, offset)
	return f.frame, f.err
}

func sampleJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := imaging.New(w, h, color.NRGBA{R: 40, G: 90, B: 160, A: 255})
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func newMediaFixture(t *testing.T, frames *fakeFrames) MediaService {
	t.Helper()
	store := storage.NewLocalStorage(t.TempDir())
	ctx := context.Background()
	if err := store.Upload(ctx, "upload/clip.mp4", bytes.NewReader([]byte("not really a video")), "video/mp4"); err != nil {
		t.Fatal(err)
	}
	if err := store.Upload(ctx, "upload/cover.jpg", bytes.NewReader(sampleJPEG(t, 320, 240)), "image/jpeg"); err != nil {
		t.Fatal(err)
	}
	return NewMediaService(store, frames, t.TempDir(), zap.NewNop())
}

func TestRenderStreamsStoredObject(t *testing.T) {
	svc := newMediaFixture(t, &fakeFrames{})

	out, err := svc.Render(context.Background(), "clip.mp4")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if out.Stream == nil || out.ContentType != "video/mp4" {
		t.Fatalf("rendered = %+v", out)
	}
	defer out.Stream.Close()
	body, _ := io.ReadAll(out.Stream)
	if string(body) != "not really a video" {
		t.Errorf("body = %q", body)
	}
}

func TestRenderCapturesFrameAtOffset(t *testing.T) {
	frames := &fakeFrames{frame: sampleJPEG(t, 64, 36)}
	svc := newMediaFixture(t, frames)

	out, err := svc.Render(context.Background(), "so_30/clip.jpg")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if out.ContentType != "image/jpeg" || !bytes.Equal(out.Body, frames.frame) {
		t.Errorf("unexpected rendered frame")
	}
	if len(frames.offsets) != 1 || frames.offsets[0] != 30 {
		t.Errorf("offsets = %v, want [30]", frames.offsets)
	}

	// A second request for the same path is served from the cache.
	if _, err := svc.Render(context.Background(), "so_30/clip.jpg"); err != nil {
		t.Fatal(err)
	}
	if len(frames.offsets) != 1 {
		t.Errorf("frame captured %d times, want 1", len(frames.offsets))
	}
}

func TestRenderFillsThumbnailDimensions(t *testing.T) {
	svc := newMediaFixture(t, &fakeFrames{})

	out, err := svc.Render(context.Background(), "c_fill,g_auto,w_128,h_72/l_text:Arial_60_bold:Hello,co_white,g_south,y_10/cover.png")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if out.ContentType != "image/png" {
		t.Errorf("content type = %q", out.ContentType)
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(out.Body))
	if err != nil {
		t.Fatal(err)
	}
	if format != "png" || cfg.Width != 128 || cfg.Height != 72 {
		t.Errorf("rendered %s %dx%d, want png 128x72", format, cfg.Width, cfg.Height)
	}
}

func TestRenderErrors(t *testing.T) {
	cases := []struct {
		name    string
		path    string
		frames  *fakeFrames
		status  int
		message string
	}{
		{"unknown asset", "missing.jpg", &fakeFrames{}, http.StatusNotFound, "Asset not found"},
		{"bad transformation", "w_0,h_10/cover.jpg", &fakeFrames{}, http.StatusBadRequest, "Invalid transformation"},
		{"unsupported format", "so_10/clip.gif", &fakeFrames{}, http.StatusBadRequest, "Unsupported output format"},
		{"frame on image", "so_10/cover.jpg", &fakeFrames{}, http.StatusBadRequest, "Frame capture requires a video"},
		{"frame past end", "so_600/clip.jpg", &fakeFrames{err: processor.ErrNoFrame}, http.StatusNotFound, "Frame not available"},
		{"no identifier", "so_10/.jpg", &fakeFrames{}, http.StatusBadRequest, "Invalid asset path"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			svc := newMediaFixture(t, c.frames)
			_, err := svc.Render(context.Background(), c.path)
			assertAPIError(t, err, c.status, c.message)
		})
	}
}
