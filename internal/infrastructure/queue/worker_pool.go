package queue

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"video-hub/internal/domain/entities"
)

type WorkerPool struct {
	JobChan chan entities.OrphanAsset
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
	skip    Handler
}

// NewWorkerPool starts workerCount workers bound to ctx. Call Shutdown once
// all jobs have been added. Jobs that are never handled because ctx was
// cancelled are passed to skip, which may be nil.
func NewWorkerPool(ctx context.Context, workerCount int, handle, skip Handler, logger *zap.Logger) *WorkerPool {
	if workerCount < 1 {
		workerCount = 1
	}
	if skip == nil {
		skip = func(context.Context, entities.OrphanAsset) {}
	}
	ctx, cancel := context.WithCancel(ctx)
	pool := &WorkerPool{
		JobChan: make(chan entities.OrphanAsset, 100),
		ctx:     ctx,
		cancel:  cancel,
		skip:    skip,
	}
	for i := 0; i < workerCount; i++ {
		worker := &Worker{
			ID:      i,
			JobChan: pool.JobChan,
			Wg:      &pool.wg,
			Handle:  handle,
			Skip:    skip,
			Logger:  logger,
		}
		pool.wg.Add(1)
		worker.Start(pool.ctx)
	}
	return pool
}

// AddJob blocks while the buffer is full and reports false once the pool's
// context is done.
func (p *WorkerPool) AddJob(asset entities.OrphanAsset) bool {
	select {
	case p.JobChan <- asset:
		return true
	case <-p.ctx.Done():
		return false
	}
}

// Shutdown lets the workers drain queued jobs and waits for them. Jobs still
// buffered after the workers stopped go to the skip handler.
func (p *WorkerPool) Shutdown() {
	close(p.JobChan)
	p.wg.Wait()
	for asset := range p.JobChan {
		p.skip(p.ctx, asset)
	}
	p.cancel()
}
