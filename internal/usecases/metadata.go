package usecases

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"video-hub/internal/domain/dto"
	"video-hub/internal/domain/repositories"
	consts "video-hub/pkg/constants"
	"video-hub/pkg/errors"
	"video-hub/pkg/retry"
)

const MetadataPrompt = `Based on these images, generate a **single YouTube title and description** that best represents the video content. Format the response as:

**Title:** <Generated Title>

**Description:** <Generated Description with hashtags>

Do not include extra options or explanations, just the formatted title and description.`

const (
	frameFetchConcurrency = 3
	maxFrameBytes         = 10 << 20
)

var (
	titlePattern       = regexp.MustCompile(`\*\*Title:\*\*\s*(.+)`)
	descriptionPattern = regexp.MustCompile(`\*\*Description:\*\*\s*([\s\S]+)`)
)

type MetadataService interface {
	GenerateMetadata(ctx context.Context, frameURLs []string) (*dto.VideoMetadata, error)
}

type metadataService struct {
	client       repositories.InferenceClient
	httpClient   *http.Client
	fetchTimeout time.Duration
	maxFrame     int64
	logger       *zap.Logger
}

func NewMetadataService(client repositories.InferenceClient, httpClient *http.Client, fetchTimeout time.Duration, logger *zap.Logger) MetadataService {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &metadataService{
		client:       client,
		httpClient:   httpClient,
		fetchTimeout: fetchTimeout,
		maxFrame:     maxFrameBytes,
		logger:       logger.Named("metadata-service"),
	}
}

func (s *metadataService) GenerateMetadata(ctx context.Context, frameURLs []string) (*dto.VideoMetadata, error) {
	if len(frameURLs) == 0 {
		return nil, errors.BadRequest("Frame URLs are required")
	}

	images := s.fetchFrames(ctx, frameURLs)
	if len(images) == 0 {
		return nil, errors.BadRequest("Failed to process images")
	}

	text, err := s.client.GenerateText(ctx, MetadataPrompt, images)
	if err != nil {
		return nil, errors.Internal("Failed to generate video metadata", err)
	}

	meta := ParseMetadata(text)
	s.logger.Info("metadata generated", zap.Int("frames", len(images)), zap.String("title", meta.Title))
	return &meta, nil
}

// fetchFrames downloads every frame concurrently. Frames that cannot be
// fetched are dropped; order of the survivors follows frameURLs.
func (s *metadataService) fetchFrames(ctx context.Context, frameURLs []string) []dto.InlineImage {
	slots := make([][]byte, len(frameURLs))

	var g errgroup.Group
	g.SetLimit(frameFetchConcurrency)
	for i, u := range frameURLs {
		g.Go(func() error {
			data, err := s.fetchFrame(ctx, u)
			if err != nil {
				s.logger.Warn("frame fetch failed", zap.String("url", u), zap.Error(err))
				return nil
			}
			slots[i] = data
			return nil
		})
	}
	_ = g.Wait()

	images := make([]dto.InlineImage, 0, len(slots))
	for _, data := range slots {
		if data != nil {
			images = append(images, dto.InlineImage{MimeType: "image/jpeg", Data: data})
		}
	}
	return images
}

func (s *metadataService) fetchFrame(ctx context.Context, frameURL string) ([]byte, error) {
	if s.fetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.fetchTimeout)
		defer cancel()
	}

	var data []byte
	err := retry.Do(ctx, retry.Outbound, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, frameURL, nil)
		if err != nil {
			return retry.Permanent(err)
		}
		resp, err := s.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			err := fmt.Errorf("status %d", resp.StatusCode)
			if resp.StatusCode < 500 {
				return retry.Permanent(err)
			}
			return err
		}
		data, err = io.ReadAll(io.LimitReader(resp.Body, s.maxFrame+1))
		if err != nil {
			return err
		}
		if int64(len(data)) > s.maxFrame {
			return retry.Permanent(fmt.Errorf("frame exceeds %d bytes", s.maxFrame))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("empty frame body")
	}
	return data, nil
}

// ParseMetadata extracts the title and description markers from model
// output. Each field falls back to its default independently.
func ParseMetadata(text string) dto.VideoMetadata {
	meta := dto.VideoMetadata{
		Title:       consts.DefaultVideoTitle,
		Description: consts.DefaultVideoDescription,
	}
	if m := titlePattern.FindStringSubmatch(text); m != nil {
		if title := cleanMarkdown(m[1]); title != "" {
			meta.Title = title
		}
	}
	if m := descriptionPattern.FindStringSubmatch(text); m != nil {
		if desc := cleanMarkdown(m[1]); desc != "" {
			meta.Description = desc
		}
	}
	return meta
}

func cleanMarkdown(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "**", ""))
}
