package routers

import (
	"github.com/gofiber/fiber/v2"

	"video-hub/internal/delivery/http/handlers"
)

// SetupMediaRoutes serves public asset URLs; the public base URL of the media
// store must point at /media.
func SetupMediaRoutes(app *fiber.App, media *handlers.MediaHandler) {
	app.Get("/media/upload/*", media.ServeAsset)
}
