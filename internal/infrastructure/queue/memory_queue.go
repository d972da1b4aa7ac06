package queue

import (
	"context"
	"sync"

	"video-hub/internal/domain/entities"
	"video-hub/internal/domain/repositories"
)

// MemoryOrphanQueue is used when no redis host is configured. Entries do not
// survive a restart.
type MemoryOrphanQueue struct {
	mu    sync.Mutex
	items []entities.OrphanAsset
}

func NewMemoryOrphanQueue() *MemoryOrphanQueue {
	return &MemoryOrphanQueue{}
}

var _ repositories.OrphanQueue = (*MemoryOrphanQueue)(nil)

func (q *MemoryOrphanQueue) Push(_ context.Context, asset entities.OrphanAsset) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, asset)
	return nil
}

func (q *MemoryOrphanQueue) Pop(_ context.Context) (*entities.OrphanAsset, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return nil, nil
	}
	asset := q.items[0]
	q.items = q.items[1:]
	return &asset, nil
}

func (q *MemoryOrphanQueue) Len(_ context.Context) (int64, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return int64(len(q.items)), nil
}
