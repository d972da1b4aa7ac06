package queue

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"video-hub/internal/domain/entities"
	"video-hub/internal/domain/repositories"
)

// RedisOrphanQueue is a FIFO list: LPUSH on enqueue, RPOP on dequeue.
type RedisOrphanQueue struct {
	rdb    *redis.Client
	key    string
	logger *zap.Logger
}

func NewRedisOrphanQueue(rdb *redis.Client, logger *zap.Logger) repositories.OrphanQueue {
	return &RedisOrphanQueue{rdb: rdb, key: OrphanQueueKey, logger: logger.Named("orphan-queue")}
}

func (q *RedisOrphanQueue) Push(ctx context.Context, asset entities.OrphanAsset) error {
	payload, err := SerializeOrphan(asset)
	if err != nil {
		return err
	}
	if err := q.rdb.LPush(ctx, q.key, payload).Err(); err != nil {
		return fmt.Errorf("enqueue orphan %s: %w", asset.PublicID, err)
	}
	return nil
}

func (q *RedisOrphanQueue) Pop(ctx context.Context) (*entities.OrphanAsset, error) {
	for {
		val, err := q.rdb.RPop(ctx, q.key).Result()
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("dequeue orphan: %w", err)
		}
		asset, err := DeserializeOrphan(val)
		if err != nil {
			// A corrupt entry can never succeed; drop it and keep draining.
			q.logger.Error("dropping unreadable orphan entry", zap.String("payload", val), zap.Error(err))
			continue
		}
		return asset, nil
	}
}

func (q *RedisOrphanQueue) Len(ctx context.Context) (int64, error) {
	return q.rdb.LLen(ctx, q.key).Result()
}
