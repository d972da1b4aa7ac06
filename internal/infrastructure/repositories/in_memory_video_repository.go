package repositories

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"video-hub/internal/domain/dto"
	"video-hub/internal/domain/entities"
	"video-hub/internal/domain/repositories"
)

type InMemoryVideoRepository struct {
	mu   sync.RWMutex
	data map[string]entities.Video
}

func NewInMemoryVideoRepository() *InMemoryVideoRepository {
	return &InMemoryVideoRepository{
		data: make(map[string]entities.Video),
	}
}

var _ repositories.VideoRepository = (*InMemoryVideoRepository)(nil)

func (r *InMemoryVideoRepository) Create(_ context.Context, video *entities.Video) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	if video.CreatedAt.IsZero() {
		video.CreatedAt = now
	}
	if video.UpdatedAt.IsZero() {
		video.UpdatedAt = now
	}
	r.data[video.ID] = *video
	return nil
}

func (r *InMemoryVideoRepository) FindByID(_ context.Context, id string) (*entities.Video, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	video, exists := r.data[id]
	if !exists {
		return nil, nil
	}
	return &video, nil
}

func (r *InMemoryVideoRepository) List(_ context.Context, filter dto.VideoFilter) ([]entities.Video, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	query := strings.ToLower(filter.Query)
	matched := make([]entities.Video, 0)
	for _, v := range r.data {
		if filter.OwnerID != "" && v.Owner != filter.OwnerID {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(v.Title), query) &&
			!strings.Contains(strings.ToLower(v.Description), query) {
			continue
		}
		matched = append(matched, v)
	}

	sort.Slice(matched, func(i, j int) bool {
		c := compareVideos(matched[i], matched[j], filter.SortBy)
		if c == 0 {
			c = strings.Compare(matched[i].ID, matched[j].ID)
		}
		if filter.Desc {
			return c > 0
		}
		return c < 0
	})

	total := int64(len(matched))
	start := filter.Skip
	if start > len(matched) {
		start = len(matched)
	}
	end := len(matched)
	if filter.Limit > 0 && start+filter.Limit < end {
		end = start + filter.Limit
	}
	return matched[start:end], total, nil
}

func (r *InMemoryVideoRepository) Update(_ context.Context, video *entities.Video) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	video.UpdatedAt = time.Now()
	r.data[video.ID] = *video
	return nil
}

func (r *InMemoryVideoRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.data, id)
	return nil
}

func compareVideos(a, b entities.Video, field string) int {
	switch field {
	case "title":
		return strings.Compare(a.Title, b.Title)
	case "duration":
		switch {
		case a.Duration < b.Duration:
			return -1
		case a.Duration > b.Duration:
			return 1
		}
		return 0
	case "updatedAt":
		return a.UpdatedAt.Compare(b.UpdatedAt)
	default:
		return a.CreatedAt.Compare(b.CreatedAt)
	}
}
