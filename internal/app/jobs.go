package app

import (
	"context"

	"github.com/robfig/cron/v3"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"video-hub/internal/pkg/config"
	"video-hub/internal/usecases"
)

// NewScheduler builds the cron scheduler and ties it to the app lifecycle.
func NewScheduler(lc fx.Lifecycle, log *zap.Logger) *cron.Cron {
	c := cron.New(cron.WithSeconds(), cron.WithChain(cron.Recover(cronLogger{log.Named("cron")})))
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			c.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			select {
			case <-c.Stop().Done():
			case <-ctx.Done():
			}
			return nil
		},
	})
	return c
}

// RegisterOrphanSweep schedules the orphan asset sweep.
func RegisterOrphanSweep(c *cron.Cron, cfg *config.Config, cleanup usecases.CleanupService, log *zap.Logger) error {
	_, err := c.AddFunc(cfg.Jobs.OrphanSweepCron, func() {
		if _, err := cleanup.SweepOrphanAssets(context.Background()); err != nil {
			log.Error("orphan sweep failed", zap.Error(err))
		}
	})
	return err
}

// RegisterTempCleanup schedules removal of stale upload temp files.
func RegisterTempCleanup(c *cron.Cron, cfg *config.Config, cleanup usecases.CleanupService, log *zap.Logger) error {
	_, err := c.AddFunc(cfg.Jobs.TempCleanupCron, func() {
		if err := cleanup.CleanupOldTempFiles(cfg.Jobs.TempMaxAge); err != nil {
			log.Error("error cleaning up old temp files", zap.Error(err))
		}
	})
	return err
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	log *zap.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Sugar().Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
