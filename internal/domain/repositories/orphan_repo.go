package repositories

import (
	"context"

	"video-hub/internal/domain/dto"
	"video-hub/internal/domain/entities"
)

// OrphanQueue holds assets whose deletion must be retried. Pop returns
// nil, nil when the queue is empty.
type OrphanQueue interface {
	Push(ctx context.Context, asset entities.OrphanAsset) error
	Pop(ctx context.Context) (*entities.OrphanAsset, error)
	Len(ctx context.Context) (int64, error)
}

// InferenceClient submits a prompt with inline images to a generative model
// and returns the concatenated text of the first candidate.
type InferenceClient interface {
	GenerateText(ctx context.Context, prompt string, images []dto.InlineImage) (string, error)
}
