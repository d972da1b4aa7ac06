package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"video-hub/internal/domain/repositories"
)

// KeyPrefix is the directory every stored object lives under; it mirrors the
// /upload/ segment of public URLs.
const KeyPrefix = "upload/"

type LocalStorage struct {
	BasePath string
}

func NewLocalStorage(basePath string) *LocalStorage {
	return &LocalStorage{BasePath: basePath}
}

func (l *LocalStorage) Upload(ctx context.Context, key string, body io.Reader, _ string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	fullPath, err := l.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), os.ModePerm); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(fullPath), ".upload-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, body); err != nil {
		tmp.Close()
		return fmt.Errorf("write object: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close object: %w", err)
	}
	// Atomic rename so readers never see a partial object.
	if err := os.Rename(tmp.Name(), fullPath); err != nil {
		return fmt.Errorf("commit object: %w", err)
	}
	return nil
}

func (l *LocalStorage) Download(_ context.Context, key string) (io.ReadCloser, error) {
	fullPath, err := l.path(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(fullPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, repositories.ErrObjectNotFound
	}
	return f, err
}

func (l *LocalStorage) Delete(_ context.Context, key string) error {
	fullPath, err := l.path(key)
	if err != nil {
		return err
	}
	err = os.Remove(fullPath)
	if errors.Is(err, os.ErrNotExist) {
		return repositories.ErrObjectNotFound
	}
	return err
}

func (l *LocalStorage) Find(_ context.Context, publicID string) (string, error) {
	if publicID == "" || strings.ContainsAny(publicID, `*?[]\`) {
		return "", repositories.ErrObjectNotFound
	}
	pattern, err := l.path(KeyPrefix + publicID + ".*")
	if err != nil {
		return "", err
	}
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return "", err
	}
	for _, m := range matches {
		if strings.HasPrefix(filepath.Base(m), ".upload-") {
			continue
		}
		rel, err := filepath.Rel(l.BasePath, m)
		if err != nil {
			return "", err
		}
		return filepath.ToSlash(rel), nil
	}
	return "", repositories.ErrObjectNotFound
}

// path maps a key under BasePath and rejects keys that escape it.
func (l *LocalStorage) path(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if clean == "." || filepath.IsAbs(clean) || strings.HasPrefix(clean, "..") {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return filepath.Join(l.BasePath, clean), nil
}
