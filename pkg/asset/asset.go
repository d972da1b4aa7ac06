// Package asset parses and formats media store URLs of the form
// <root>/upload/[<transformation>/]<public id>.<ext> and derives the
// transformation URLs the upload pipeline needs.
package asset

import (
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
)

const UploadMarker = "/upload/"

var ErrMalformedURL = errors.New("asset url does not match <root>/upload/<id>.<ext>")

// FrameOffsets are the capture points, in seconds, used for metadata inference.
var FrameOffsets = []int{10, 30, 60}

const (
	ThumbnailWidth  = 1280
	ThumbnailHeight = 720
	OverlayFont     = "Arial_60_bold"
	OverlayWords    = 3
)

type Ref struct {
	Root           string
	Transformation string
	PublicID       string
	Ext            string
}

// Parse splits an asset URL. Leading path segments made only of
// transformation parameters are collected into Transformation; the rest,
// minus the extension, is the public id.
func Parse(raw string) (Ref, error) {
	idx := strings.Index(raw, UploadMarker)
	if idx <= 0 {
		return Ref{}, fmt.Errorf("%w: %q", ErrMalformedURL, raw)
	}
	root := raw[:idx]
	rest := raw[idx+len(UploadMarker):]

	segments := strings.Split(rest, "/")
	n := 0
	for n < len(segments)-1 && IsTransformationSegment(segments[n]) {
		n++
	}
	transformation := strings.Join(segments[:n], "/")
	rest = strings.Join(segments[n:], "/")

	ext := path.Ext(rest)
	if ext == "" {
		return Ref{}, fmt.Errorf("%w: missing extension in %q", ErrMalformedURL, raw)
	}
	id := strings.TrimSuffix(rest, ext)
	if id == "" || strings.HasSuffix(id, "/") {
		return Ref{}, fmt.Errorf("%w: missing identifier in %q", ErrMalformedURL, raw)
	}
	return Ref{Root: root, Transformation: transformation, PublicID: id, Ext: strings.TrimPrefix(ext, ".")}, nil
}

var transformationParams = []string{"so_", "c_", "g_", "w_", "h_", "l_text:", "co_", "y_"}

// IsTransformationSegment reports whether every comma separated parameter of
// segment is a known transformation parameter.
func IsTransformationSegment(segment string) bool {
	if segment == "" {
		return false
	}
	for _, param := range strings.Split(segment, ",") {
		known := false
		for _, prefix := range transformationParams {
			if strings.HasPrefix(param, prefix) {
				known = true
				break
			}
		}
		if !known {
			return false
		}
	}
	return true
}

func (r Ref) String() string {
	var b strings.Builder
	b.WriteString(r.Root)
	b.WriteString(UploadMarker)
	if r.Transformation != "" {
		b.WriteString(r.Transformation)
		b.WriteByte('/')
	}
	b.WriteString(r.PublicID)
	if r.Ext != "" {
		b.WriteByte('.')
		b.WriteString(r.Ext)
	}
	return b.String()
}

// With returns a copy carrying the given transformation and extension.
func (r Ref) With(transformation, ext string) Ref {
	r.Transformation = transformation
	r.Ext = ext
	return r
}

// FrameURLs maps an uploaded .mp4 URL to one JPEG capture URL per offset.
func FrameURLs(videoURL string) ([]string, error) {
	ref, err := Parse(videoURL)
	if err != nil {
		return nil, err
	}
	if ref.Ext != "mp4" {
		return nil, fmt.Errorf("%w: expected .mp4 video, got .%s", ErrMalformedURL, ref.Ext)
	}

	frames := make([]string, 0, len(FrameOffsets))
	for _, offset := range FrameOffsets {
		frames = append(frames, ref.With(fmt.Sprintf("so_%d", offset), "jpg").String())
	}
	return frames, nil
}

// ThumbnailTransformation crops to the thumbnail frame and lays the text
// along the bottom edge. An empty text skips the overlay layer.
func ThumbnailTransformation(text string) string {
	crop := fmt.Sprintf("c_fill,g_auto,w_%d,h_%d", ThumbnailWidth, ThumbnailHeight)
	if strings.TrimSpace(text) == "" {
		return crop
	}
	return crop + "/l_text:" + OverlayFont + ":" + EscapeText(text) + ",co_white,g_south,y_40"
}

// EscapeText makes overlay text safe inside a single path segment; commas
// separate transformation parameters so they are escaped as well.
func EscapeText(text string) string {
	return strings.ReplaceAll(url.PathEscape(text), ",", "%2C")
}

func UnescapeText(text string) (string, error) {
	return url.PathUnescape(text)
}

// FirstWords returns at most n whitespace-separated words of s.
func FirstWords(s string, n int) string {
	words := strings.Fields(s)
	if len(words) > n {
		words = words[:n]
	}
	return strings.Join(words, " ")
}

// PublicIDFromURL locates the public id of a stored asset. URLs that do not
// carry the marker fall back to the last path segment without extension.
func PublicIDFromURL(raw string) string {
	if ref, err := Parse(raw); err == nil {
		return ref.PublicID
	}
	last := raw[strings.LastIndex(raw, "/")+1:]
	return strings.TrimSuffix(last, path.Ext(last))
}
