package usecases

import (
	"context"
	"math"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"video-hub/internal/domain/dto"
	"video-hub/internal/domain/entities"
	"video-hub/internal/domain/repositories"
	"video-hub/pkg/asset"
	consts "video-hub/pkg/constants"
	"video-hub/pkg/errors"
	"video-hub/pkg/helper"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

var sortableFields = map[string]bool{
	"createdAt": true,
	"updatedAt": true,
	"title":     true,
	"duration":  true,
}

type VideoService interface {
	PublishVideo(ctx context.Context, req dto.PublishVideoRequest) (*entities.Video, error)
	ListVideos(ctx context.Context, query dto.ListVideosQuery) (*dto.VideoListResponse, error)
	GetVideo(ctx context.Context, videoID string) (*entities.Video, error)
	UpdateVideo(ctx context.Context, req dto.UpdateVideoRequest) (*entities.Video, error)
	DeleteVideo(ctx context.Context, videoID string) error
	TogglePublish(ctx context.Context, videoID, userID string) (*entities.Video, error)
}

type videoService struct {
	repo        repositories.VideoRepository
	media       repositories.MediaStore
	metadata    MetadataService
	orphans     repositories.OrphanQueue
	aiThumbnail bool
	logger      *zap.Logger
}

func NewVideoService(
	repo repositories.VideoRepository,
	media repositories.MediaStore,
	metadata MetadataService,
	orphans repositories.OrphanQueue,
	aiThumbnail bool,
	logger *zap.Logger,
) VideoService {
	return &videoService{
		repo:        repo,
		media:       media,
		metadata:    metadata,
		orphans:     orphans,
		aiThumbnail: aiThumbnail,
		logger:      logger.Named("video-service"),
	}
}

// metadataOutcome is the best-effort result of inference. It never carries
// an error: when useDefault is set the caller's values are kept and reason
// says why.
type metadataOutcome struct {
	metadata   dto.VideoMetadata
	useDefault bool
	reason     string
}

func (s *videoService) PublishVideo(ctx context.Context, req dto.PublishVideoRequest) (*entities.Video, error) {
	if helper.IsBlank(req.Title) {
		return nil, errors.BadRequest("Title is required")
	}
	if helper.IsBlank(req.Description) {
		return nil, errors.BadRequest("Description is required")
	}
	if req.VideoPath == "" {
		return nil, errors.ErrVideoRequired()
	}
	if req.ThumbnailPath == "" {
		// Without a file the thumbnail can only come from a captured frame,
		// and frames are only derived for mp4 uploads.
		if !s.aiThumbnail || !strings.EqualFold(filepath.Ext(req.VideoPath), ".mp4") {
			return nil, errors.ErrThumbnailRequired()
		}
	}

	uploaded, err := s.media.UploadFile(ctx, req.VideoPath, consts.ResourceVideo)
	if err != nil || uploaded == nil || uploaded.URL == "" {
		return nil, errors.Upstream("Error while uploading video", err)
	}
	// Anything that fails from here on leaves the uploaded video unreferenced.
	abort := func(apiErr *errors.ApiError) (*entities.Video, error) {
		s.queueOrphan(ctx, uploaded.PublicID, consts.ResourceVideo, apiErr.Message)
		return nil, apiErr
	}

	frames, err := asset.FrameURLs(uploaded.URL)
	if err != nil {
		s.logger.Warn("frame urls unavailable", zap.String("video_url", uploaded.URL), zap.Error(err))
	}

	title, description := strings.TrimSpace(req.Title), strings.TrimSpace(req.Description)
	if len(frames) > 0 {
		outcome := s.inferMetadata(ctx, frames)
		if outcome.useDefault {
			s.logger.Info("keeping caller metadata", zap.String("reason", outcome.reason))
		} else {
			if outcome.metadata.Title != consts.DefaultVideoTitle {
				title = outcome.metadata.Title
			}
			if outcome.metadata.Description != consts.DefaultVideoDescription {
				description = outcome.metadata.Description
			}
		}
	}

	thumbnail, thumbnailID, apiErr := s.resolveThumbnail(ctx, req.ThumbnailPath, frames, title)
	if apiErr != nil {
		return abort(apiErr)
	}

	now := time.Now().UTC()
	video := &entities.Video{
		ID:          primitive.NewObjectID().Hex(),
		Title:       title,
		Description: description,
		VideoFile:   uploaded.URL,
		Thumbnail:   thumbnail,
		Duration:    math.Max(uploaded.Duration, 0),
		Owner:       req.Owner,
		IsPublished: false,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, video); err != nil {
		if thumbnailID != "" {
			s.queueOrphan(ctx, thumbnailID, consts.ResourceImage, "record not saved")
		}
		return abort(errors.Internal("Something went wrong while saving the video", err))
	}

	s.logger.Info("video published",
		zap.String("video_id", video.ID),
		zap.String("owner", video.Owner),
		zap.Int("frames", len(frames)),
	)
	return video, nil
}

func (s *videoService) inferMetadata(ctx context.Context, frames []string) metadataOutcome {
	meta, err := s.metadata.GenerateMetadata(ctx, frames)
	if err != nil {
		return metadataOutcome{useDefault: true, reason: err.Error()}
	}
	if meta == nil {
		return metadataOutcome{useDefault: true, reason: "empty metadata"}
	}
	return metadataOutcome{metadata: *meta}
}

// resolveThumbnail returns the thumbnail URL for a new record and the public
// id of any asset uploaded for it.
func (s *videoService) resolveThumbnail(ctx context.Context, thumbnailPath string, frames []string, title string) (string, string, *errors.ApiError) {
	if thumbnailPath != "" {
		res, err := s.media.UploadFile(ctx, thumbnailPath, consts.ResourceImage)
		if err != nil || res == nil || res.URL == "" {
			return "", "", errors.Upstream("Error while uploading thumbnail", err)
		}
		return res.URL, res.PublicID, nil
	}
	if len(frames) == 0 {
		return "", "", errors.ErrThumbnailRequired()
	}

	var res *dto.MediaUploadResult
	for _, frame := range frames {
		r, err := s.media.UploadFromURL(ctx, frame, uuid.NewString())
		if err == nil && r != nil && r.URL != "" {
			res = r
			break
		}
		s.logger.Warn("frame upload failed", zap.String("frame", frame), zap.Error(err))
	}
	if res == nil {
		return "", "", errors.ErrThumbnailRequired()
	}

	ref, err := asset.Parse(res.URL)
	if err != nil {
		s.logger.Warn("thumbnail composition failed, using plain frame", zap.String("url", res.URL), zap.Error(err))
		return res.URL, res.PublicID, nil
	}
	overlay := asset.FirstWords(title, asset.OverlayWords)
	return ref.With(asset.ThumbnailTransformation(overlay), "jpg").String(), res.PublicID, nil
}

func (s *videoService) ListVideos(ctx context.Context, query dto.ListVideosQuery) (*dto.VideoListResponse, error) {
	page := query.Page
	if page < 1 {
		page = 1
	}
	limit := query.Limit
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	sortBy := query.SortBy
	if !sortableFields[sortBy] {
		sortBy = "createdAt"
	}

	filter := dto.VideoFilter{
		Query:  strings.TrimSpace(query.Query),
		SortBy: sortBy,
		Desc:   !strings.EqualFold(query.SortType, "asc"),
		Skip:   (page - 1) * limit,
		Limit:  limit,
	}
	if primitive.IsValidObjectID(query.UserID) {
		filter.OwnerID = query.UserID
	}

	videos, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, errors.Internal("Failed to fetch videos", err)
	}
	if videos == nil {
		videos = []entities.Video{}
	}

	return &dto.VideoListResponse{
		Videos: videos,
		Pagination: dto.Pagination{
			Page:        page,
			Limit:       limit,
			TotalPages:  int((total + int64(limit) - 1) / int64(limit)),
			TotalVideos: total,
		},
	}, nil
}

func (s *videoService) GetVideo(ctx context.Context, videoID string) (*entities.Video, error) {
	if helper.IsBlank(videoID) {
		return nil, errors.BadRequest("Video is missing")
	}
	return s.findVideo(ctx, videoID)
}

func (s *videoService) UpdateVideo(ctx context.Context, req dto.UpdateVideoRequest) (*entities.Video, error) {
	video, err := s.findVideo(ctx, req.VideoID)
	if err != nil {
		return nil, err
	}
	if helper.IsBlank(req.Title) || helper.IsBlank(req.Description) {
		return nil, errors.BadRequest("All fields are required")
	}

	previousThumbnail := video.Thumbnail
	var newThumbnailID string
	if req.ThumbnailPath != "" {
		res, err := s.media.UploadFile(ctx, req.ThumbnailPath, consts.ResourceImage)
		if err != nil || res == nil || res.URL == "" {
			return nil, errors.Upstream("Error while updating thumbnail", err)
		}
		video.Thumbnail = res.URL
		newThumbnailID = res.PublicID
	}

	video.Title = strings.TrimSpace(req.Title)
	video.Description = strings.TrimSpace(req.Description)
	video.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, video); err != nil {
		if newThumbnailID != "" {
			s.queueOrphan(ctx, newThumbnailID, consts.ResourceImage, "record not updated")
		}
		return nil, errors.Internal("Failed to update video", err)
	}

	if newThumbnailID != "" {
		s.deleteAsset(ctx, asset.PublicIDFromURL(previousThumbnail), consts.ResourceImage)
	}
	return video, nil
}

func (s *videoService) DeleteVideo(ctx context.Context, videoID string) error {
	if helper.IsBlank(videoID) {
		return errors.BadRequest("Video ID not Found")
	}
	video, err := s.findVideo(ctx, videoID)
	if err != nil {
		return err
	}

	s.deleteAsset(ctx, asset.PublicIDFromURL(video.VideoFile), consts.ResourceVideo)
	s.deleteAsset(ctx, asset.PublicIDFromURL(video.Thumbnail), consts.ResourceImage)

	if err := s.repo.Delete(ctx, video.ID); err != nil {
		return errors.Internal("Failed to delete video", err)
	}
	s.logger.Info("video deleted", zap.String("video_id", video.ID))
	return nil
}

func (s *videoService) TogglePublish(ctx context.Context, videoID, userID string) (*entities.Video, error) {
	if !primitive.IsValidObjectID(videoID) {
		return nil, errors.ErrInvalidID()
	}
	video, err := s.findVideo(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if video.Owner != userID {
		return nil, errors.ErrNotOwner()
	}

	video.IsPublished = !video.IsPublished
	video.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, video); err != nil {
		return nil, errors.Internal("Failed to update publish status", err)
	}
	return video, nil
}

func (s *videoService) findVideo(ctx context.Context, videoID string) (*entities.Video, error) {
	video, err := s.repo.FindByID(ctx, strings.TrimSpace(videoID))
	if err != nil {
		return nil, errors.Internal("Failed to fetch video", err)
	}
	if video == nil {
		return nil, errors.ErrVideoNotFound()
	}
	return video, nil
}

// deleteAsset removes a stored asset; failures are queued for the orphan
// sweep instead of failing the request.
func (s *videoService) deleteAsset(ctx context.Context, publicID, resourceType string) {
	if publicID == "" {
		return
	}
	if err := s.media.Delete(ctx, publicID, resourceType); err != nil {
		s.logger.Warn("asset deletion failed", zap.String("public_id", publicID), zap.Error(err))
		s.queueOrphan(ctx, publicID, resourceType, err.Error())
	}
}

func (s *videoService) queueOrphan(ctx context.Context, publicID, resourceType, reason string) {
	orphan := entities.OrphanAsset{
		PublicID:     publicID,
		ResourceType: resourceType,
		Reason:       reason,
		FirstSeenAt:  time.Now().UTC(),
	}
	// The request may already be cancelled; the entry must still be recorded.
	if err := s.orphans.Push(context.WithoutCancel(ctx), orphan); err != nil {
		s.logger.Error("could not queue orphan asset",
			zap.String("public_id", publicID),
			zap.String("resource_type", resourceType),
			zap.Error(err),
		)
	}
}
