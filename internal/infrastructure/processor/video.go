package processor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// ErrNoFrame is returned when ffmpeg exits cleanly without producing a frame,
// which happens when the offset lies past the end of the video.
var ErrNoFrame = errors.New("no frame at offset")

// FFmpeg shells out to the ffmpeg and ffprobe binaries, which must be on PATH.
type FFmpeg struct {
	Timeout time.Duration
}

func NewFFmpeg(timeout time.Duration) *FFmpeg {
	return &FFmpeg{Timeout: timeout}
}

// CaptureFrame returns a single JPEG frame taken offset seconds into the video.
func (f *FFmpeg) CaptureFrame(ctx context.Context, inputPath string, offset float64) ([]byte, error) {
	out, err := f.run(ctx, "ffmpeg",
		"-v", "error",
		"-ss", strconv.FormatFloat(offset, 'f', -1, 64),
		"-i", inputPath,
		"-frames:v", "1",
		"-f", "image2",
		"-vcodec", "mjpeg",
		"pipe:1",
	)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w %gs", ErrNoFrame, offset)
	}
	return out, nil
}

// ProbeDuration reports the container duration in seconds.
func (f *FFmpeg) ProbeDuration(ctx context.Context, inputPath string) (float64, error) {
	out, err := f.run(ctx, "ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		inputPath,
	)
	if err != nil {
		return 0, err
	}
	return parseDuration(string(out))
}

func (f *FFmpeg) run(ctx context.Context, name string, args ...string) ([]byte, error) {
	if f.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.Timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}

func parseDuration(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "N/A" {
		return 0, nil
	}
	d, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", raw, err)
	}
	if d < 0 {
		return 0, nil
	}
	return d, nil
}
