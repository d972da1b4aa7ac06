package helper

import (
	"path/filepath"
	"strings"
)

var (
	imageExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".webp"}
	videoExtensions = []string{".mp4", ".mov", ".avi", ".mkv", ".webm"}
)

func GetMimeTypeFromExtension(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	case ".mp4":
		return "video/mp4"
	case ".mov":
		return "video/quicktime"
	case ".avi":
		return "video/x-msvideo"
	case ".mkv":
		return "video/x-matroska"
	case ".webm":
		return "video/webm"
	default:
		return "application/octet-stream"
	}
}

func IsImageFile(filename string) bool {
	return hasExtension(filename, imageExtensions)
}

func IsVideoFile(filename string) bool {
	return hasExtension(filename, videoExtensions)
}

// IsBlank reports whether s is empty after trimming whitespace.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func hasExtension(filename string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}
