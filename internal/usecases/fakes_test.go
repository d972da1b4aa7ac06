package usecases

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"video-hub/internal/domain/dto"
	consts "video-hub/pkg/constants"
)

type fakeMediaStore struct {
	mu sync.Mutex

	base         string
	videoURL     string // overrides the URL returned for video uploads
	videoErr     error
	thumbnailErr error
	fromURLErr   error
	failFromURL  int // fails this many UploadFromURL calls before succeeding
	deleteErr    error

	uploads  []string
	fromURLs []string
	deleted  []string
}

func (f *fakeMediaStore) UploadFile(_ context.Context, path, resourceType string) (*dto.MediaUploadResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads = append(f.uploads, resourceType)
	if resourceType == consts.ResourceVideo && f.videoErr != nil {
		return nil, f.videoErr
	}
	if resourceType == consts.ResourceImage && f.thumbnailErr != nil {
		return nil, f.thumbnailErr
	}
	id := fmt.Sprintf("%s-%d", resourceType, len(f.uploads))
	url := f.base + "/upload/" + id + filepath.Ext(path)
	if resourceType == consts.ResourceVideo && f.videoURL != "" {
		url = f.videoURL
	}
	res := &dto.MediaUploadResult{URL: url, PublicID: id, ResourceType: resourceType}
	if resourceType == consts.ResourceVideo {
		res.Duration = 12.5
	}
	return res, nil
}

func (f *fakeMediaStore) UploadFromURL(_ context.Context, sourceURL, publicID string) (*dto.MediaUploadResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fromURLs = append(f.fromURLs, sourceURL)
	if f.fromURLErr != nil {
		return nil, f.fromURLErr
	}
	if len(f.fromURLs) <= f.failFromURL {
		return nil, fmt.Errorf("fetch %s: status 404", sourceURL)
	}
	return &dto.MediaUploadResult{
		URL:          f.base + "/upload/" + publicID + ".jpg",
		PublicID:     publicID,
		ResourceType: consts.ResourceImage,
	}, nil
}

func (f *fakeMediaStore) Delete(_ context.Context, publicID, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, publicID)
	return f.deleteErr
}

func (f *fakeMediaStore) remoteCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.uploads) + len(f.fromURLs) + len(f.deleted)
}

type fakeInference struct {
	mu     sync.Mutex
	text   string
	err    error
	calls  int
	images int
	prompt string
}

func (f *fakeInference) GenerateText(_ context.Context, prompt string, images []dto.InlineImage) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.images = len(images)
	f.prompt = prompt
	return f.text, f.err
}

type stubMetadata struct {
	meta  *dto.VideoMetadata
	err   error
	calls int
}

func (s *stubMetadata) GenerateMetadata(context.Context, []string) (*dto.VideoMetadata, error) {
	s.calls++
	return s.meta, s.err
}
