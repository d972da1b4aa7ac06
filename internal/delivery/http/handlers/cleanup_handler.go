package handlers

import (
	"github.com/gofiber/fiber/v2"

	"video-hub/internal/domain/dto"
	"video-hub/internal/usecases"
	"video-hub/pkg/errors"
)

type CleanupHandler struct {
	cleanupUC usecases.CleanupService
}

func NewCleanupHandler(cleanupUC usecases.CleanupService) *CleanupHandler {
	return &CleanupHandler{
		cleanupUC: cleanupUC,
	}
}

// SweepOrphans
//
// @Summary      Sweep Orphan Assets
// @Description  Manual trigger for the scheduled orphan asset sweep
// @Tags         Maintenance
// @Produce      json
// @Success      200  {object}  dto.ApiResponse{data=usecases.SweepResult}
// @Failure      500  {object}  errors.ErrorResponse
// @Router       /maintenance/orphans/sweep [post]
func (h *CleanupHandler) SweepOrphans(c *fiber.Ctx) error {
	res, err := h.cleanupUC.SweepOrphanAssets(c.UserContext())
	if err != nil {
		return errors.Internal("Orphan sweep failed", err)
	}
	return c.JSON(dto.NewApiResponse(fiber.StatusOK, res, "Orphan sweep finished"))
}
