package entities

import "time"

// Video is the persisted record of an uploaded video. IDs are 24 hex
// characters on every backend so that ids are portable between stores.
type Video struct {
	ID          string    `json:"_id" gorm:"column:id;type:varchar(24);primaryKey"`
	Title       string    `json:"title" gorm:"type:varchar(255);not null"`
	Description string    `json:"description" gorm:"type:text;not null"`
	VideoFile   string    `json:"videoFile" gorm:"type:varchar(1024);not null"`
	Thumbnail   string    `json:"thumbnail" gorm:"type:varchar(1024);not null"`
	Duration    float64   `json:"duration" gorm:"not null;default:0"`
	Owner       string    `json:"owner" gorm:"column:owner_id;type:varchar(24);index"`
	IsPublished bool      `json:"isPublished" gorm:"not null;default:false"`
	CreatedAt   time.Time `json:"createdAt" gorm:"index"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (Video) TableName() string {
	return "videos"
}
