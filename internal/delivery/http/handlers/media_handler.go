package handlers

import (
	"github.com/gofiber/fiber/v2"

	"video-hub/internal/usecases"
	"video-hub/pkg/errors"
)

type MediaHandler struct {
	service usecases.MediaService
}

func NewMediaHandler(service usecases.MediaService) *MediaHandler {
	return &MediaHandler{service: service}
}

// ServeAsset
//
// @Summary      Serve Media
// @Description  Serves a stored asset, optionally transformed by the path segments before the public id
// @Tags         Media
// @Produce      image/jpeg
// @Produce      image/png
// @Produce      video/mp4
// @Param        path  path  string true "[transformation/]publicId.ext"
// @Success      200
// @Failure      400   {object}  errors.ErrorResponse
// @Failure      404   {object}  errors.ErrorResponse
// @Router       /media/upload/{path} [get]
func (h *MediaHandler) ServeAsset(c *fiber.Ctx) error {
	// Params are not unescaped; overlay text is decoded by the transformation parser.
	assetPath := c.Params("*")
	if assetPath == "" {
		return errors.NotFound("Asset not found")
	}

	media, err := h.service.Render(c.UserContext(), assetPath)
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, media.ContentType)
	c.Set(fiber.HeaderCacheControl, "public, max-age=31536000, immutable")
	if media.Stream != nil {
		return c.SendStream(media.Stream)
	}
	return c.Send(media.Body)
}
