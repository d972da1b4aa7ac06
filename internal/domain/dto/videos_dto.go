package dto

import "video-hub/internal/domain/entities"

type PublishVideoRequest struct {
	Title         string
	Description   string
	VideoPath     string // temp file of the multipart videoFile part
	ThumbnailPath string // optional
	Owner         string
}

type UpdateVideoRequest struct {
	VideoID       string
	Title         string
	Description   string
	ThumbnailPath string // optional
}

type ListVideosQuery struct {
	Page     int    `query:"page"`
	Limit    int    `query:"limit"`
	Query    string `query:"query"`
	SortBy   string `query:"sortBy"`
	SortType string `query:"sortType"`
	UserID   string `query:"userId"`
}

// VideoFilter is the normalized form of ListVideosQuery handed to repositories.
type VideoFilter struct {
	Query   string
	OwnerID string
	SortBy  string // one of the whitelisted record fields
	Desc    bool
	Skip    int
	Limit   int
}

type Pagination struct {
	Page        int   `json:"page"`
	Limit       int   `json:"limit"`
	TotalPages  int   `json:"totalPages"`
	TotalVideos int64 `json:"totalVideos"`
}

type VideoListResponse struct {
	Videos     []entities.Video `json:"videos"`
	Pagination Pagination       `json:"pagination"`
}

type VideoMetadata struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type GenerateMetadataRequest struct {
	FrameURLs []string `json:"frameUrls"`
}
