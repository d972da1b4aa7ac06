package repositories

import (
	"context"
	"errors"
	"io"

	"video-hub/internal/domain/dto"
)

// ErrObjectNotFound is returned by storage backends when no object exists
// for a key or public id.
var ErrObjectNotFound = errors.New("storage object not found")

// StorageStrategy is the byte-level backend under the media store.
type StorageStrategy interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string) error
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	// Find resolves the stored key of a public id whose extension is unknown.
	Find(ctx context.Context, publicID string) (string, error)
}

// MediaStore hosts uploaded media and hands out public URLs for it.
type MediaStore interface {
	UploadFile(ctx context.Context, path, resourceType string) (*dto.MediaUploadResult, error)
	UploadFromURL(ctx context.Context, sourceURL, publicID string) (*dto.MediaUploadResult, error)
	Delete(ctx context.Context, publicID, resourceType string) error
}
