package main

import (
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"video-hub/internal/app"
)

// @title        Video Hub API
// @version      1.0
// @description  Video hosting backend with AI generated metadata.
// @BasePath     /api/v1
func main() {
	fx.New(
		app.Core,
		app.API,
		fx.Provide(app.NewScheduler),
		fx.Invoke(app.RegisterOrphanSweep, app.RegisterTempCleanup),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log.Named("fx")}
		}),
	).Run()
}
