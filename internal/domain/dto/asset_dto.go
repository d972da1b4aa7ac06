package dto

type MediaUploadResult struct {
	URL          string
	PublicID     string
	ResourceType string
	Duration     float64 // seconds, zero for images
}

type InlineImage struct {
	MimeType string
	Data     []byte
}
