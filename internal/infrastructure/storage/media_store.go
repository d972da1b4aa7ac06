package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"video-hub/internal/domain/dto"
	"video-hub/internal/domain/repositories"
	"video-hub/pkg/constants"
	"video-hub/pkg/helper"
	"video-hub/pkg/retry"
)

// maxRemoteObject caps what UploadFromURL will buffer from a source URL.
const maxRemoteObject = 32 << 20

type DurationProber interface {
	ProbeDuration(ctx context.Context, path string) (float64, error)
}

type mediaStore struct {
	storage       repositories.StorageStrategy
	baseURL       string
	prober        DurationProber
	httpClient    *http.Client
	uploadTimeout time.Duration
	maxObject     int64
	logger        *zap.Logger
}

// NewMediaStore publishes objects under baseURL + "/upload/<public id>.<ext>".
// prober may be nil, in which case durations are reported as zero.
func NewMediaStore(
	storage repositories.StorageStrategy,
	baseURL string,
	prober DurationProber,
	httpClient *http.Client,
	uploadTimeout time.Duration,
	logger *zap.Logger,
) repositories.MediaStore {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &mediaStore{
		storage:       storage,
		baseURL:       strings.TrimRight(baseURL, "/"),
		prober:        prober,
		httpClient:    httpClient,
		uploadTimeout: uploadTimeout,
		maxObject:     maxRemoteObject,
		logger:        logger.Named("media-store"),
	}
}

func (m *mediaStore) UploadFile(ctx context.Context, filePath, resourceType string) (*dto.MediaUploadResult, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open upload source: %w", err)
	}
	defer f.Close()

	ext := strings.ToLower(filepath.Ext(filePath))
	publicID := uuid.NewString()
	key := KeyPrefix + publicID + ext

	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	err = retry.Do(ctx, retry.Outbound, func(ctx context.Context) error {
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return retry.Permanent(err)
		}
		return m.storage.Upload(ctx, key, f, helper.GetMimeTypeFromExtension(filePath))
	})
	if err != nil {
		return nil, fmt.Errorf("upload %s: %w", filepath.Base(filePath), err)
	}

	result := &dto.MediaUploadResult{
		URL:          m.publicURL(key),
		PublicID:     publicID,
		ResourceType: resourceType,
	}
	if resourceType == constants.ResourceVideo && m.prober != nil {
		duration, err := m.prober.ProbeDuration(ctx, filePath)
		if err != nil {
			m.logger.Warn("could not probe video duration", zap.String("public_id", publicID), zap.Error(err))
		} else {
			result.Duration = duration
		}
	}

	m.logger.Info("media uploaded",
		zap.String("public_id", publicID),
		zap.String("resource_type", resourceType),
		zap.Float64("duration", result.Duration),
	)
	return result, nil
}

func (m *mediaStore) UploadFromURL(ctx context.Context, sourceURL, publicID string) (*dto.MediaUploadResult, error) {
	if publicID == "" {
		publicID = uuid.NewString()
	}

	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	var key string
	err := retry.Do(ctx, retry.Outbound, func(ctx context.Context) error {
		body, contentType, err := m.fetch(ctx, sourceURL)
		if err != nil {
			return err
		}
		key = KeyPrefix + publicID + extensionFor(contentType, sourceURL)
		return m.storage.Upload(ctx, key, bytes.NewReader(body), contentType)
	})
	if err != nil {
		return nil, fmt.Errorf("upload from url: %w", err)
	}

	return &dto.MediaUploadResult{
		URL:          m.publicURL(key),
		PublicID:     publicID,
		ResourceType: constants.ResourceImage,
	}, nil
}

// Delete removes the object stored for publicID. A missing object counts as
// deleted.
func (m *mediaStore) Delete(ctx context.Context, publicID, resourceType string) error {
	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	return retry.Do(ctx, retry.Outbound, func(ctx context.Context) error {
		key, err := m.storage.Find(ctx, publicID)
		if errors.Is(err, repositories.ErrObjectNotFound) {
			m.logger.Debug("nothing to delete", zap.String("public_id", publicID), zap.String("resource_type", resourceType))
			return nil
		}
		if err != nil {
			return err
		}
		err = m.storage.Delete(ctx, key)
		if errors.Is(err, repositories.ErrObjectNotFound) {
			return nil
		}
		return err
	})
}

func (m *mediaStore) fetch(ctx context.Context, sourceURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return nil, "", retry.Permanent(err)
	}
	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("fetch %s: status %d", sourceURL, resp.StatusCode)
		if resp.StatusCode < 500 {
			return nil, "", retry.Permanent(err)
		}
		return nil, "", err
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, m.maxObject+1))
	if err != nil {
		return nil, "", err
	}
	if int64(len(body)) > m.maxObject {
		return nil, "", retry.Permanent(fmt.Errorf("fetch %s: body exceeds %d bytes", sourceURL, m.maxObject))
	}
	return body, resp.Header.Get("Content-Type"), nil
}

func (m *mediaStore) publicURL(key string) string {
	return m.baseURL + "/" + key
}

func (m *mediaStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if m.uploadTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, m.uploadTimeout)
}

func extensionFor(contentType, sourceURL string) string {
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		switch mediaType {
		case "image/jpeg":
			return ".jpg"
		case "image/png":
			return ".png"
		case "image/webp":
			return ".webp"
		case "image/gif":
			return ".gif"
		}
	}
	if ext := strings.ToLower(path.Ext(sourceURL)); ext != "" && len(ext) <= 5 {
		return ext
	}
	return ".jpg"
}
