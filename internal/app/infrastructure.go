// Package app holds the fx providers shared by the server and worker commands.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"video-hub/internal/domain/repositories"
	"video-hub/internal/infrastructure/db"
	"video-hub/internal/infrastructure/inference"
	"video-hub/internal/infrastructure/processor"
	"video-hub/internal/infrastructure/queue"
	infra_repo "video-hub/internal/infrastructure/repositories"
	"video-hub/internal/infrastructure/storage"
	"video-hub/internal/pkg/config"
	"video-hub/internal/pkg/logger"
	"video-hub/internal/usecases"
)

const connectTimeout = 10 * time.Second

// Core provides what both commands need to reach the media store and the
// orphan queue.
var Core = fx.Module("core",
	fx.Provide(
		config.LoadConfig,
		NewLogger,
		NewStorage,
		NewFFmpeg,
		NewMediaStore,
		NewOrphanQueue,
		NewCleanupService,
	),
)

func NewLogger(cfg *config.Config) (*zap.Logger, error) {
	return logger.New(cfg.Server.LogLevel, cfg.Server.Env)
}

func NewStorage(cfg *config.Config, log *zap.Logger) (repositories.StorageStrategy, error) {
	switch cfg.Storage.Driver {
	case "s3":
		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()
		s3, err := storage.NewS3Storage(ctx, cfg.Storage.S3Bucket, cfg.Storage.S3Region, cfg.Storage.S3Endpoint)
		if err != nil {
			return nil, err
		}
		log.Info("using s3 storage", zap.String("bucket", cfg.Storage.S3Bucket))
		return s3, nil
	case "local", "":
		log.Info("using local storage", zap.String("dir", cfg.Storage.Dir))
		return storage.NewLocalStorage(cfg.Storage.Dir), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

func NewFFmpeg(cfg *config.Config) *processor.FFmpeg {
	return processor.NewFFmpeg(cfg.Timeouts.FFmpeg)
}

func NewMediaStore(cfg *config.Config, strategy repositories.StorageStrategy, ffmpeg *processor.FFmpeg, log *zap.Logger) repositories.MediaStore {
	client := &http.Client{Timeout: cfg.Timeouts.FrameFetch}
	return storage.NewMediaStore(strategy, cfg.Storage.PublicBaseURL, ffmpeg, client, cfg.Timeouts.MediaUpload, log)
}

// NewOrphanQueue uses redis when REDIS_HOST is set and an in-process queue
// otherwise.
func NewOrphanQueue(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) (repositories.OrphanQueue, error) {
	if cfg.Redis.Host == "" {
		log.Warn("REDIS_HOST not set, orphan queue is kept in memory")
		return queue.NewMemoryOrphanQueue(), nil
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr()})
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Redis.Addr(), err)
	}
	lc.Append(fx.StopHook(rdb.Close))
	return queue.NewRedisOrphanQueue(rdb, log), nil
}

func NewCleanupService(cfg *config.Config, media repositories.MediaStore, orphans repositories.OrphanQueue, log *zap.Logger) usecases.CleanupService {
	return usecases.NewCleanupService(cfg.Upload.TempDir, media, orphans, cfg.Jobs.SweepWorkers, log)
}

// NewVideoRepository opens the record store selected by DB_DRIVER.
func NewVideoRepository(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) (repositories.VideoRepository, error) {
	switch cfg.Database.Driver {
	case "mongo", "":
		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()
		client, database, err := db.NewMongo(ctx, cfg.Database.MongoURI, cfg.Database.MongoDB)
		if err != nil {
			return nil, err
		}
		lc.Append(fx.StopHook(func(ctx context.Context) error {
			return client.Disconnect(ctx)
		}))
		repo := infra_repo.NewMongoVideoRepository(database)
		if cfg.Database.AutoMigrate {
			if err := repo.EnsureIndexes(ctx); err != nil {
				return nil, fmt.Errorf("create mongo indexes: %w", err)
			}
		}
		log.Info("connected to mongo", zap.String("database", cfg.Database.MongoDB))
		return repo, nil

	case "postgres", "mysql":
		open := db.NewPostgresDB
		if cfg.Database.Driver == "mysql" {
			open = db.NewMySQLDB
		}
		database, err := open(cfg.Database, log)
		if err != nil {
			return nil, err
		}
		sqlDB, err := database.DB()
		if err != nil {
			return nil, err
		}
		lc.Append(fx.StopHook(sqlDB.Close))
		if cfg.Database.AutoMigrate {
			if err := db.RunMigrations(database); err != nil {
				return nil, err
			}
		}
		log.Info("connected to sql database", zap.String("driver", cfg.Database.Driver))
		return infra_repo.NewVideoRepository(database), nil

	case "memory":
		log.Warn("using in-memory video repository, records do not survive a restart")
		return infra_repo.NewInMemoryVideoRepository(), nil

	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}
}

func NewInferenceClient(cfg *config.Config, log *zap.Logger) repositories.InferenceClient {
	if cfg.AI.APIKey == "" {
		log.Warn("GEMINI_API_KEY not set, metadata generation will fail and uploads keep caller values")
	}
	return inference.NewGeminiClient(cfg.AI.BaseURL, cfg.AI.Model, cfg.AI.APIKey, cfg.Timeouts.Inference, log)
}
