package usecases

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"video-hub/internal/domain/repositories"
	"video-hub/internal/infrastructure/processor"
	"video-hub/pkg/asset"
	"video-hub/pkg/errors"
	"video-hub/pkg/helper"
)

const renderCacheTTL = 10 * time.Minute

type RenderedMedia struct {
	ContentType string
	Body        []byte
	// Stream is set instead of Body when the stored object is served as is.
	Stream io.ReadCloser
}

type FrameCapturer interface {
	CaptureFrame(ctx context.Context, inputPath string, offset float64) ([]byte, error)
}

// MediaService serves stored assets and renders their URL transformations.
type MediaService interface {
	Render(ctx context.Context, assetPath string) (*RenderedMedia, error)
}

type mediaService struct {
	storage repositories.StorageStrategy
	frames  FrameCapturer
	cache   *cache.Cache
	tempDir string
	logger  *zap.Logger
}

func NewMediaService(storage repositories.StorageStrategy, frames FrameCapturer, tempDir string, logger *zap.Logger) MediaService {
	return &mediaService{
		storage: storage,
		frames:  frames,
		cache:   cache.New(renderCacheTTL, 2*renderCacheTTL),
		tempDir: tempDir,
		logger:  logger.Named("media-service"),
	}
}

// Render resolves assetPath, the part of a public URL after /upload/.
func (s *mediaService) Render(ctx context.Context, assetPath string) (*RenderedMedia, error) {
	if cached, ok := s.cache.Get(assetPath); ok {
		return cached.(*RenderedMedia), nil
	}

	ref, err := asset.Parse("media" + asset.UploadMarker + assetPath)
	if err != nil {
		return nil, errors.BadRequest("Invalid asset path")
	}

	var tr *processor.Transformation
	if ref.Transformation != "" {
		tr, err = processor.ParseTransformation(strings.Split(ref.Transformation, "/"))
		if err != nil {
			return nil, errors.New(http.StatusBadRequest, "Invalid transformation", err)
		}
	} else {
		tr = &processor.Transformation{}
	}

	key, err := s.storage.Find(ctx, ref.PublicID)
	if stderrors.Is(err, repositories.ErrObjectNotFound) {
		return nil, errors.NotFound("Asset not found")
	}
	if err != nil {
		return nil, errors.Internal("Failed to locate asset", err)
	}

	storedExt := strings.TrimPrefix(strings.ToLower(path.Ext(key)), ".")
	requestedExt := strings.ToLower(ref.Ext)
	if tr.Empty() && requestedExt == storedExt {
		body, err := s.storage.Download(ctx, key)
		if err != nil {
			return nil, errors.Internal("Failed to read asset", err)
		}
		return &RenderedMedia{ContentType: helper.GetMimeTypeFromExtension(key), Stream: body}, nil
	}

	var format processor.Format
	switch requestedExt {
	case "jpg", "jpeg":
		format = processor.FormatJPEG
	case "png":
		format = processor.FormatPNG
	default:
		return nil, errors.BadRequest("Unsupported output format")
	}

	rendered, err := s.render(ctx, key, tr, format)
	if err != nil {
		return nil, err
	}
	s.cache.Set(assetPath, rendered, cache.DefaultExpiration)
	return rendered, nil
}

func (s *mediaService) render(ctx context.Context, key string, tr *processor.Transformation, format processor.Format) (*RenderedMedia, error) {
	var (
		src []byte
		err error
	)
	if helper.IsVideoFile(key) {
		offset := 0.0
		if tr.FrameOffset != nil {
			offset = *tr.FrameOffset
		}
		src, err = s.captureFrame(ctx, key, offset)
		if stderrors.Is(err, processor.ErrNoFrame) {
			return nil, errors.NotFound("Frame not available")
		}
		if err != nil {
			return nil, errors.Internal("Failed to capture frame", err)
		}
	} else {
		if tr.FrameOffset != nil {
			return nil, errors.BadRequest("Frame capture requires a video")
		}
		src, err = s.read(ctx, key)
		if err != nil {
			return nil, errors.Internal("Failed to read asset", err)
		}
	}

	var out []byte
	switch {
	case tr.Width > 0:
		out, err = processor.FillImage(src, tr.Width, tr.Height, tr.Overlay, format)
	case helper.IsVideoFile(key) && format == processor.FormatJPEG:
		out = src
	default:
		out, err = processor.Convert(src, format)
	}
	if err != nil {
		return nil, errors.New(http.StatusUnprocessableEntity, "Asset cannot be transformed", err)
	}

	contentType := "image/jpeg"
	if format == processor.FormatPNG {
		contentType = "image/png"
	}
	return &RenderedMedia{ContentType: contentType, Body: out}, nil
}

func (s *mediaService) read(ctx context.Context, key string) ([]byte, error) {
	rc, err := s.storage.Download(ctx, key)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// captureFrame copies the stored video to a temp file since ffmpeg needs a
// seekable input.
func (s *mediaService) captureFrame(ctx context.Context, key string, offset float64) ([]byte, error) {
	rc, err := s.storage.Download(ctx, key)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	tmp, err := os.CreateTemp(s.tempDir, "render-*"+path.Ext(key))
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, rc); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("copy video: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, err
	}

	frame, err := s.frames.CaptureFrame(ctx, tmp.Name(), offset)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("frame captured", zap.String("key", key), zap.Float64("offset", offset))
	return frame, nil
}
