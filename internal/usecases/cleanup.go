package usecases

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"video-hub/internal/domain/entities"
	"video-hub/internal/domain/repositories"
	"video-hub/internal/infrastructure/queue"
	consts "video-hub/pkg/constants"
)

type SweepResult struct {
	Processed int64
	Deleted   int64
	Requeued  int64
	Dropped   int64
}

type CleanupService interface {
	// CleanupTempFiles removes the temp files a single request created.
	CleanupTempFiles(paths ...string)
	CleanupOldTempFiles(maxAge time.Duration) error
	SweepOrphanAssets(ctx context.Context) (SweepResult, error)
}

type cleanupService struct {
	tempDir string
	media   repositories.MediaStore
	orphans repositories.OrphanQueue
	workers int
	logger  *zap.Logger
}

func NewCleanupService(tempDir string, media repositories.MediaStore, orphans repositories.OrphanQueue, workers int, logger *zap.Logger) CleanupService {
	return &cleanupService{
		tempDir: tempDir,
		media:   media,
		orphans: orphans,
		workers: workers,
		logger:  logger.Named("cleanup-service"),
	}
}

func (s *cleanupService) CleanupTempFiles(paths ...string) {
	for _, p := range paths {
		if p == "" {
			continue
		}
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("could not remove temp file", zap.String("path", p), zap.Error(err))
		}
	}
}

func (s *cleanupService) CleanupOldTempFiles(maxAge time.Duration) error {
	entries, err := os.ReadDir(s.tempDir)
	if err != nil {
		return err
	}

	var errs []error
	now := time.Now()
	for _, entry := range entries {
		entryPath := filepath.Join(s.tempDir, entry.Name())
		info, err := entry.Info()
		if err != nil {
			errs = append(errs, fmt.Errorf("cannot stat %s: %w", entryPath, err))
			continue
		}
		if now.Sub(info.ModTime()) <= maxAge {
			continue
		}
		if err := os.RemoveAll(entryPath); err != nil {
			errs = append(errs, fmt.Errorf("cannot remove %s: %w", entryPath, err))
			continue
		}
		s.logger.Info("removed old temp entry", zap.String("path", entryPath))
	}
	return errors.Join(errs...)
}

// SweepOrphanAssets retries every entry queued before the sweep started.
// Failed entries go back to the queue until they reach MaxOrphanAttempts.
func (s *cleanupService) SweepOrphanAssets(ctx context.Context) (SweepResult, error) {
	var result SweepResult

	pending, err := s.orphans.Len(ctx)
	if err != nil {
		return result, fmt.Errorf("read orphan queue length: %w", err)
	}
	if pending == 0 {
		return result, nil
	}

	pool := queue.NewWorkerPool(ctx, s.workers, func(ctx context.Context, asset entities.OrphanAsset) {
		atomic.AddInt64(&result.Processed, 1)
		s.retryOrphan(ctx, asset, &result)
	}, func(ctx context.Context, asset entities.OrphanAsset) {
		atomic.AddInt64(&result.Requeued, 1)
		s.requeue(context.WithoutCancel(ctx), asset)
	}, s.logger)

	var popErr error
	for i := int64(0); i < pending && ctx.Err() == nil; i++ {
		asset, err := s.orphans.Pop(ctx)
		if err != nil {
			popErr = fmt.Errorf("dequeue orphan: %w", err)
			break
		}
		if asset == nil {
			break
		}
		if !pool.AddJob(*asset) {
			// Put it back so the next sweep sees it.
			atomic.AddInt64(&result.Requeued, 1)
			s.requeue(context.WithoutCancel(ctx), *asset)
			break
		}
	}
	pool.Shutdown()

	s.logger.Info("orphan sweep finished",
		zap.Int64("processed", result.Processed),
		zap.Int64("deleted", result.Deleted),
		zap.Int64("requeued", result.Requeued),
		zap.Int64("dropped", result.Dropped),
	)
	return result, popErr
}

func (s *cleanupService) retryOrphan(ctx context.Context, asset entities.OrphanAsset, result *SweepResult) {
	err := s.media.Delete(ctx, asset.PublicID, asset.ResourceType)
	if err == nil {
		atomic.AddInt64(&result.Deleted, 1)
		return
	}
	if ctx.Err() != nil {
		// Interrupted, not a real attempt.
		atomic.AddInt64(&result.Requeued, 1)
		s.requeue(context.WithoutCancel(ctx), asset)
		return
	}

	asset.Attempts++
	asset.Reason = err.Error()
	if asset.Attempts >= consts.MaxOrphanAttempts {
		atomic.AddInt64(&result.Dropped, 1)
		s.logger.Error("giving up on orphan asset",
			zap.String("public_id", asset.PublicID),
			zap.String("resource_type", asset.ResourceType),
			zap.Int("attempts", asset.Attempts),
			zap.Time("first_seen_at", asset.FirstSeenAt),
			zap.Error(err),
		)
		return
	}
	atomic.AddInt64(&result.Requeued, 1)
	s.requeue(context.WithoutCancel(ctx), asset)
}

func (s *cleanupService) requeue(ctx context.Context, asset entities.OrphanAsset) {
	if err := s.orphans.Push(ctx, asset); err != nil {
		s.logger.Error("could not requeue orphan asset", zap.String("public_id", asset.PublicID), zap.Error(err))
	}
}
