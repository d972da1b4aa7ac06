package main

import (
	"context"
	"flag"
	"os"
	"time"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"video-hub/internal/app"
	"video-hub/internal/usecases"
)

func main() {
	once := flag.Bool("once", false, "run a single orphan sweep and exit")
	flag.Parse()

	withLogger := fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
		return &fxevent.ZapLogger{Logger: log.Named("fx")}
	})

	if *once {
		var (
			cleanup usecases.CleanupService
			log     *zap.Logger
		)
		fxApp := fx.New(app.Core, withLogger, fx.Populate(&cleanup, &log))
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		if err := fxApp.Start(ctx); err != nil {
			os.Exit(1)
		}
		res, err := cleanup.SweepOrphanAssets(ctx)
		if err != nil {
			log.Error("orphan sweep failed", zap.Error(err))
		}
		log.Info("orphan sweep done",
			zap.Int64("deleted", res.Deleted),
			zap.Int64("requeued", res.Requeued),
			zap.Int64("dropped", res.Dropped),
		)
		_ = fxApp.Stop(context.Background())
		if err != nil {
			os.Exit(1)
		}
		return
	}

	fx.New(
		app.Core,
		withLogger,
		fx.Provide(app.NewScheduler),
		fx.Invoke(app.RegisterOrphanSweep),
	).Run()
}
