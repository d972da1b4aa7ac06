package repositories

import (
	"context"

	"video-hub/internal/domain/dto"
	"video-hub/internal/domain/entities"
)

// VideoRepository persists video records. FindByID returns nil, nil when no
// record exists.
type VideoRepository interface {
	Create(ctx context.Context, video *entities.Video) error
	FindByID(ctx context.Context, id string) (*entities.Video, error)
	List(ctx context.Context, filter dto.VideoFilter) ([]entities.Video, int64, error)
	Update(ctx context.Context, video *entities.Video) error
	Delete(ctx context.Context, id string) error
}
