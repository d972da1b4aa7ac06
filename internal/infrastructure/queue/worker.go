package queue

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"video-hub/internal/domain/entities"
)

// Handler processes one orphan asset.
type Handler func(ctx context.Context, asset entities.OrphanAsset)

type Worker struct {
	ID      int
	JobChan <-chan entities.OrphanAsset
	Wg      *sync.WaitGroup
	Handle  Handler
	Skip    Handler
	Logger  *zap.Logger
}

func (w *Worker) Start(ctx context.Context) {
	go func() {
		defer w.Wg.Done()
		for {
			select {
			case asset, ok := <-w.JobChan:
				if !ok {
					return
				}
				if ctx.Err() != nil {
					w.Logger.Debug("job skipped after cancellation",
						zap.Int("worker", w.ID),
						zap.String("public_id", asset.PublicID),
					)
					w.Skip(ctx, asset)
					continue
				}
				w.Handle(ctx, asset)
			case <-ctx.Done():
				w.Logger.Debug("worker stopping", zap.Int("worker", w.ID), zap.Error(ctx.Err()))
				return
			}
		}
	}()
}
