package handlers

import (
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"video-hub/internal/delivery/http/middleware"
	"video-hub/internal/domain/dto"
	"video-hub/internal/usecases"
	"video-hub/pkg/errors"
)

type VideoHandler struct {
	videos  usecases.VideoService
	cleanup usecases.CleanupService
	tempDir string
	logger  *zap.Logger
}

func NewVideoHandler(videos usecases.VideoService, cleanup usecases.CleanupService, tempDir string, logger *zap.Logger) *VideoHandler {
	return &VideoHandler{
		videos:  videos,
		cleanup: cleanup,
		tempDir: tempDir,
		logger:  logger.Named("video-handler"),
	}
}

// PublishVideo
//
// @Summary      Publish Video
// @Description  Uploads a video and optional thumbnail. Title and description are replaced by AI generated metadata when inference succeeds.
// @Tags         Videos
// @Accept       multipart/form-data
// @Produce      json
// @Param        title        formData  string true  "Title"
// @Param        description  formData  string true  "Description"
// @Param        videoFile    formData  file   true  "Video file"
// @Param        thumbnail    formData  file   false "Thumbnail image"
// @Success      201          {object}  dto.ApiResponse{data=entities.Video}
// @Failure      400          {object}  errors.ErrorResponse
// @Failure      401          {object}  errors.ErrorResponse
// @Router       /videos [post]
func (h *VideoHandler) PublishVideo(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)

	videoPath, err := h.saveFormFile(c, "videoFile")
	if err != nil {
		return err
	}
	thumbnailPath, err := h.saveFormFile(c, "thumbnail")
	if err != nil {
		h.cleanup.CleanupTempFiles(videoPath)
		return err
	}
	defer h.cleanup.CleanupTempFiles(videoPath, thumbnailPath)

	video, err := h.videos.PublishVideo(c.UserContext(), dto.PublishVideoRequest{
		Title:         c.FormValue("title"),
		Description:   c.FormValue("description"),
		VideoPath:     videoPath,
		ThumbnailPath: thumbnailPath,
		Owner:         user.ID,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewApiResponse(fiber.StatusCreated, video, "Video Uploaded Successfully with AI Metadata"))
}

// ListVideos
//
// @Summary      List Videos
// @Description  Paginated listing with optional text search, owner filter and sorting
// @Tags         Videos
// @Produce      json
// @Param        page      query     int    false "Page (default 1)"
// @Param        limit     query     int    false "Page size (default 10, max 100)"
// @Param        query     query     string false "Search in title and description"
// @Param        sortBy    query     string false "createdAt, updatedAt, title or duration"
// @Param        sortType  query     string false "asc or desc"
// @Param        userId    query     string false "Owner id"
// @Success      200       {object}  dto.ApiResponse{data=dto.VideoListResponse}
// @Failure      401       {object}  errors.ErrorResponse
// @Router       /videos [get]
func (h *VideoHandler) ListVideos(c *fiber.Ctx) error {
	var query dto.ListVideosQuery
	if err := c.QueryParser(&query); err != nil {
		return errors.New(fiber.StatusBadRequest, "Invalid query parameters", err)
	}

	res, err := h.videos.ListVideos(c.UserContext(), query)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewApiResponse(fiber.StatusOK, res, "Videos Retrieved Successfully"))
}

// GetVideo
//
// @Summary      Get Video
// @Tags         Videos
// @Produce      json
// @Param        videoId  path      string true "Video ID"
// @Success      200      {object}  dto.ApiResponse{data=entities.Video}
// @Failure      404      {object}  errors.ErrorResponse
// @Router       /videos/{videoId} [get]
func (h *VideoHandler) GetVideo(c *fiber.Ctx) error {
	video, err := h.videos.GetVideo(c.UserContext(), c.Params("videoId"))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewApiResponse(fiber.StatusOK, video, "Video Fetched Successfully"))
}

// UpdateVideo
//
// @Summary      Update Video
// @Description  Replaces title and description, and the thumbnail when one is sent
// @Tags         Videos
// @Accept       multipart/form-data
// @Produce      json
// @Param        videoId      path      string true  "Video ID"
// @Param        title        formData  string true  "Title"
// @Param        description  formData  string true  "Description"
// @Param        thumbnail    formData  file   false "Thumbnail image"
// @Success      200          {object}  dto.ApiResponse{data=entities.Video}
// @Failure      400          {object}  errors.ErrorResponse
// @Failure      404          {object}  errors.ErrorResponse
// @Router       /videos/{videoId} [patch]
func (h *VideoHandler) UpdateVideo(c *fiber.Ctx) error {
	thumbnailPath, err := h.saveFormFile(c, "thumbnail")
	if err != nil {
		return err
	}
	defer h.cleanup.CleanupTempFiles(thumbnailPath)

	video, err := h.videos.UpdateVideo(c.UserContext(), dto.UpdateVideoRequest{
		VideoID:       c.Params("videoId"),
		Title:         c.FormValue("title"),
		Description:   c.FormValue("description"),
		ThumbnailPath: thumbnailPath,
	})
	if err != nil {
		return err
	}
	return c.JSON(dto.NewApiResponse(fiber.StatusOK, video, "Video Updated Successfully"))
}

// DeleteVideo
//
// @Summary      Delete Video
// @Tags         Videos
// @Produce      json
// @Param        videoId  path      string true "Video ID"
// @Success      200      {object}  dto.ApiResponse
// @Failure      404      {object}  errors.ErrorResponse
// @Router       /videos/{videoId} [delete]
func (h *VideoHandler) DeleteVideo(c *fiber.Ctx) error {
	if err := h.videos.DeleteVideo(c.UserContext(), c.Params("videoId")); err != nil {
		return err
	}
	return c.JSON(dto.NewApiResponse(fiber.StatusOK, fiber.Map{}, "Video Deleted Successfully"))
}

// TogglePublish
//
// @Summary      Toggle Publish Status
// @Description  Flips the published flag. Only the owner may call it.
// @Tags         Videos
// @Produce      json
// @Param        videoId  path      string true "Video ID"
// @Success      200      {object}  dto.ApiResponse{data=entities.Video}
// @Failure      403      {object}  errors.ErrorResponse
// @Failure      404      {object}  errors.ErrorResponse
// @Router       /videos/toggle/publish/{videoId} [patch]
func (h *VideoHandler) TogglePublish(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)

	video, err := h.videos.TogglePublish(c.UserContext(), c.Params("videoId"), user.ID)
	if err != nil {
		return err
	}
	message := "Video unpublished successfully"
	if video.IsPublished {
		message = "Video published successfully"
	}
	return c.JSON(dto.NewApiResponse(fiber.StatusOK, video, message))
}

// saveFormFile stores the multipart part under field in the temp dir and
// returns its path, or "" when the part is absent.
func (h *VideoHandler) saveFormFile(c *fiber.Ctx, field string) (string, error) {
	header, err := c.FormFile(field)
	if err != nil || header == nil {
		// A missing part is not an error here; callers validate required files.
		return "", nil
	}
	dst := filepath.Join(h.tempDir, uuid.NewString()+tempExt(header))
	if err := c.SaveFile(header, dst); err != nil {
		return "", errors.Internal("Failed to store uploaded file", err)
	}
	h.logger.Debug("stored upload", zap.String("field", field), zap.String("path", dst), zap.Int64("size", header.Size))
	return dst, nil
}

func tempExt(header *multipart.FileHeader) string {
	return strings.ToLower(filepath.Ext(header.Filename))
}
