package media

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"

	"github.com/disintegration/imaging"
)

// DefaultThumbnailWidth is used when no width is configured.
const DefaultThumbnailWidth = 320

const dataURIPrefix = "data:image/jpeg;base64,"

// Thumbnailer renders a preview image for a video file as a data URI.
type Thumbnailer interface {
	Thumbnail(path string) (string, error)
}

// runFunc executes a command and returns its stdout.
type runFunc func(name string, args ...string) ([]byte, error)

// FFmpegThumbnailer grabs the frame at one second with ffmpeg and scales it
// to a fixed width.
type FFmpegThumbnailer struct {
	ffmpeg string
	width  int
	run    runFunc
}

var _ Thumbnailer = (*FFmpegThumbnailer)(nil)

// NewFFmpegThumbnailer creates a thumbnailer using the ffmpeg binary at
// ffmpegPath, or the first one found on PATH and in well-known locations
// when ffmpegPath is empty.
func NewFFmpegThumbnailer(ffmpegPath string, width int) *FFmpegThumbnailer {
	if width <= 0 {
		width = DefaultThumbnailWidth
	}
	if ffmpegPath == "" {
		ffmpegPath = findFFmpeg()
	}
	return &FFmpegThumbnailer{ffmpeg: ffmpegPath, width: width, run: runCommand}
}

func (t *FFmpegThumbnailer) Thumbnail(path string) (string, error) {
	if t.ffmpeg == "" {
		return "", errors.New("ffmpeg not found")
	}

	frame, err := t.run(t.ffmpeg,
		"-hide_banner",
		"-loglevel", "error",
		"-ss", "1",
		"-i", path,
		"-frames:v", "1",
		"-f", "image2pipe",
		"-vcodec", "mjpeg",
		"pipe:1",
	)
	if err != nil {
		return "", fmt.Errorf("extracting frame from %s: %w", path, err)
	}
	if len(frame) == 0 {
		return "", fmt.Errorf("ffmpeg produced no output for %s", path)
	}

	img, err := imaging.Decode(bytes.NewReader(frame))
	if err != nil {
		return "", fmt.Errorf("decoding frame: %w", err)
	}
	img = imaging.Resize(img, t.width, 0, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(75)); err != nil {
		return "", fmt.Errorf("encoding thumbnail: %w", err)
	}
	return dataURIPrefix + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func runCommand(name string, args ...string) ([]byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.Command(name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%w, stderr: %s", err, bytes.TrimSpace(stderr.Bytes()))
	}
	return stdout.Bytes(), nil
}

// ffmpegCandidates lists the install locations probed after PATH.
func ffmpegCandidates() []string {
	switch runtime.GOOS {
	case "darwin":
		return []string{"/opt/homebrew/bin/ffmpeg", "/usr/local/bin/ffmpeg"}
	case "linux":
		return []string{"/usr/bin/ffmpeg", "/usr/local/bin/ffmpeg", "/snap/bin/ffmpeg"}
	default:
		return nil
	}
}

func findFFmpeg() string {
	if p, err := exec.LookPath("ffmpeg"); err == nil {
		return p
	}
	for _, p := range ffmpegCandidates() {
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p
		}
	}
	return ""
}
