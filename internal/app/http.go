package app

import (
	"context"
	stderrors "errors"
	"net"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"go.uber.org/fx"
	"go.uber.org/zap"

	_ "video-hub/docs"

	"video-hub/internal/delivery/http/handlers"
	"video-hub/internal/delivery/http/routers"
	"video-hub/internal/domain/repositories"
	"video-hub/internal/infrastructure/processor"
	"video-hub/internal/pkg/config"
	"video-hub/internal/usecases"
	consts "video-hub/pkg/constants"
	"video-hub/pkg/errors"
)

// API provides the record store, services and HTTP layer of the server.
var API = fx.Module("api",
	fx.Provide(
		NewVideoRepository,
		NewInferenceClient,
		NewMetadataService,
		NewVideoService,
		NewMediaService,
		NewVideoHandler,
		handlers.NewMetadataHandler,
		handlers.NewMediaHandler,
		handlers.NewCleanupHandler,
		NewFiberApp,
	),
	fx.Invoke(RegisterRoutes),
)

func NewMetadataService(cfg *config.Config, client repositories.InferenceClient, log *zap.Logger) usecases.MetadataService {
	return usecases.NewMetadataService(client, nil, cfg.Timeouts.FrameFetch, log)
}

func NewVideoService(
	cfg *config.Config,
	repo repositories.VideoRepository,
	media repositories.MediaStore,
	metadata usecases.MetadataService,
	orphans repositories.OrphanQueue,
	log *zap.Logger,
) usecases.VideoService {
	return usecases.NewVideoService(repo, media, metadata, orphans, cfg.Upload.AIThumbnail, log)
}

func NewMediaService(cfg *config.Config, strategy repositories.StorageStrategy, ffmpeg *processor.FFmpeg, log *zap.Logger) usecases.MediaService {
	return usecases.NewMediaService(strategy, ffmpeg, cfg.Upload.TempDir, log)
}

func NewVideoHandler(cfg *config.Config, videos usecases.VideoService, cleanup usecases.CleanupService, log *zap.Logger) *handlers.VideoHandler {
	return handlers.NewVideoHandler(videos, cleanup, cfg.Upload.TempDir, log)
}

// NewFiberApp builds the fiber app and binds listen/shutdown to the fx
// lifecycle.
func NewFiberApp(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		BodyLimit:             int(cfg.Upload.MaxFileSize),
		ErrorHandler:          errors.NewHandler(log),
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.CORSOrigins,
		AllowCredentials: cfg.Server.CORSOrigins != "*",
	}))

	addr := net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return err
			}
			log.Info("server starting", zap.String("addr", addr))
			go func() {
				if err := app.Listener(ln); err != nil {
					log.Error("server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("shutting down server")
			return app.ShutdownWithContext(ctx)
		},
	})
	return app
}

type routeParams struct {
	fx.In

	App      *fiber.App
	Config   *config.Config
	Videos   *handlers.VideoHandler
	Metadata *handlers.MetadataHandler
	Media    *handlers.MediaHandler
	Cleanup  *handlers.CleanupHandler
}

func RegisterRoutes(p routeParams) error {
	if p.Config.Auth.AccessTokenSecret == "" {
		return stderrors.New("ACCESS_TOKEN_SECRET is required")
	}

	p.App.Get("/swagger/*", swagger.HandlerDefault)
	p.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": consts.StatusOK})
	})

	routers.SetupVideoRoutes(p.App, p.Config.Auth.AccessTokenSecret, p.Videos, p.Metadata, p.Cleanup)
	routers.SetupMediaRoutes(p.App, p.Media)
	return nil
}
