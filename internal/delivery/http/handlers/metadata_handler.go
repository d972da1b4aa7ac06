package handlers

import (
	"github.com/gofiber/fiber/v2"

	"video-hub/internal/domain/dto"
	"video-hub/internal/usecases"
	"video-hub/pkg/errors"
)

type MetadataHandler struct {
	metadata usecases.MetadataService
}

func NewMetadataHandler(metadata usecases.MetadataService) *MetadataHandler {
	return &MetadataHandler{metadata: metadata}
}

// GenerateMetadata
//
// @Summary      Generate Video Metadata
// @Description  Suggests a title and description from publicly reachable frame images
// @Tags         Videos
// @Accept       json
// @Produce      json
// @Param        request  body      dto.GenerateMetadataRequest true "Frame URLs"
// @Success      200      {object}  dto.ApiResponse{data=dto.VideoMetadata}
// @Failure      400      {object}  errors.ErrorResponse
// @Failure      500      {object}  errors.ErrorResponse
// @Router       /videos/generate-metadata [post]
func (h *MetadataHandler) GenerateMetadata(c *fiber.Ctx) error {
	var req dto.GenerateMetadataRequest
	if err := c.BodyParser(&req); err != nil {
		return errors.New(fiber.StatusBadRequest, "Invalid request body", err)
	}

	meta, err := h.metadata.GenerateMetadata(c.UserContext(), req.FrameURLs)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewApiResponse(fiber.StatusOK, meta, "Metadata generated successfully"))
}
