package repositories

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"video-hub/internal/domain/dto"
	"video-hub/internal/domain/entities"
	"video-hub/internal/domain/repositories"
)

// sortColumns maps the public sort keys onto table columns.
var sortColumns = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"title":     "title",
	"duration":  "duration",
}

// VideoRepository stores videos in a SQL database through gorm.
type VideoRepository struct {
	db *gorm.DB
}

func NewVideoRepository(db *gorm.DB) *VideoRepository {
	return &VideoRepository{db: db}
}

var _ repositories.VideoRepository = (*VideoRepository)(nil)

func (r *VideoRepository) Create(ctx context.Context, video *entities.Video) error {
	return r.db.WithContext(ctx).Create(video).Error
}

func (r *VideoRepository) FindByID(ctx context.Context, id string) (*entities.Video, error) {
	var video entities.Video
	err := r.db.WithContext(ctx).First(&video, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &video, nil
}

func (r *VideoRepository) List(ctx context.Context, filter dto.VideoFilter) ([]entities.Video, int64, error) {
	// Count and Find each need a fresh statement.
	scoped := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&entities.Video{})
		if filter.Query != "" {
			like := "%" + escapeLike(strings.ToLower(filter.Query)) + "%"
			q = q.Where("LOWER(title) LIKE ? ESCAPE '!' OR LOWER(description) LIKE ? ESCAPE '!'", like, like)
		}
		if filter.OwnerID != "" {
			q = q.Where("owner_id = ?", filter.OwnerID)
		}
		return q
	}

	var total int64
	if err := scoped().Count(&total).Error; err != nil {
		return nil, 0, err
	}
	videos := make([]entities.Video, 0)
	if total == 0 {
		return videos, 0, nil
	}

	column, ok := sortColumns[filter.SortBy]
	if !ok {
		column = sortColumns["createdAt"]
	}
	err := scoped().
		Order(clause.OrderByColumn{Column: clause.Column{Name: column}, Desc: filter.Desc}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}, Desc: filter.Desc}).
		Offset(filter.Skip).
		Limit(filter.Limit).
		Find(&videos).Error
	if err != nil {
		return nil, 0, err
	}
	return videos, total, nil
}

func (r *VideoRepository) Update(ctx context.Context, video *entities.Video) error {
	return r.db.WithContext(ctx).Save(video).Error
}

func (r *VideoRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&entities.Video{}, "id = ?", id).Error
}

// escapeLike neutralises LIKE wildcards using '!' as the escape character,
// which postgres, mysql and sqlite all accept in an ESCAPE clause.
func escapeLike(s string) string {
	return strings.NewReplacer("!", "!!", "%", "!%", "_", "!_").Replace(s)
}
