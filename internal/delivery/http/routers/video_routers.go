package routers

import (
	"github.com/gofiber/fiber/v2"

	"video-hub/internal/delivery/http/handlers"
	"video-hub/internal/delivery/http/middleware"
)

func SetupVideoRoutes(app *fiber.App, secret string, videos *handlers.VideoHandler, metadata *handlers.MetadataHandler, cleanup *handlers.CleanupHandler) {
	api := app.Group("/api/v1")

	// Metadata generation is callable without a session.
	api.Post("/videos/generate-metadata", metadata.GenerateMetadata)

	auth := middleware.VerifyJWT(secret)
	v := api.Group("/videos", auth)
	v.Get("/", videos.ListVideos)
	v.Post("/", videos.PublishVideo)
	v.Patch("/toggle/publish/:videoId", videos.TogglePublish)
	v.Get("/:videoId", videos.GetVideo)
	v.Patch("/:videoId", videos.UpdateVideo)
	v.Delete("/:videoId", videos.DeleteVideo)

	api.Post("/maintenance/orphans/sweep", auth, cleanup.SweepOrphans)
}
