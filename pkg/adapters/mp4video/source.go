package mp4video

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"os"
	"os/exec"
	"runtime"
	"strconv"

	"github.com/eyedl/cvat-reader/pkg/ports"
)

var (
	// ErrFFmpegNotFound is returned when ffmpeg is not found in PATH or
	// the common install locations.
	ErrFFmpegNotFound = errors.New("mp4video: ffmpeg not found")

	// ErrClosed is returned when Decode is called after Close.
	ErrClosed = errors.New("mp4video: source closed")
)

// Options configures the decoding source.
type Options struct {
	// FFmpegPath is an optional custom path to the ffmpeg binary.
	FFmpegPath string
}

// Source implements ports.MediaSource over an extracted MP4 file,
// decoding individual frames through ffmpeg.
type Source struct {
	path       string
	info       Info
	ffmpegPath string
	log        ports.Logger
	closed     bool
}

// New probes the MP4 at path and locates ffmpeg. The file itself stays
// untouched until the first Decode.
func New(path string, opts Options, log ports.Logger) (*Source, error) {
	log = log.WithComponent("mp4video")

	info, err := Probe(path)
	if err != nil {
		return nil, fmt.Errorf("probe %s: %w", path, err)
	}

	ffmpegPath, err := findFFmpeg(opts.FFmpegPath)
	if err != nil {
		return nil, err
	}

	log.Debug("Media source ready: %dx%d, %d frames", info.Width, info.Height, info.FrameCount)
	return &Source{path: path, info: info, ffmpegPath: ffmpegPath, log: log}, nil
}

// FrameCount returns the probed sample count of the video track.
func (s *Source) FrameCount() int {
	return s.info.FrameCount
}

// Decode produces the RGBA pixel data for one frame index.
func (s *Source) Decode(frameIndex int) (image.Image, error) {
	if s.closed {
		return nil, &ports.DecodeError{Frame: frameIndex, Err: ErrClosed}
	}
	if frameIndex < 0 || (s.info.FrameCount > 0 && frameIndex >= s.info.FrameCount) {
		return nil, &ports.DecodeError{Frame: frameIndex, Err: fmt.Errorf("frame index out of media range [0, %d)", s.info.FrameCount)}
	}

	img, err := s.decodeWithFFmpeg(frameIndex)
	if err != nil {
		return nil, &ports.DecodeError{Frame: frameIndex, Err: err}
	}
	s.log.Debug("Decoded frame %d", frameIndex)
	return img, nil
}

// decodeWithFFmpeg extracts a single frame as PNG through an ffmpeg
// subprocess and converts it to RGBA.
func (s *Source) decodeWithFFmpeg(frameIndex int) (image.Image, error) {
	outputFile, err := os.CreateTemp("", "cvatframe_*.png")
	if err != nil {
		return nil, fmt.Errorf("create output temp file: %w", err)
	}
	outputPath := outputFile.Name()
	outputFile.Close()
	defer os.Remove(outputPath)

	var stderr bytes.Buffer
	cmd := exec.Command(s.ffmpegPath,
		"-y",
		"-i", s.path,
		"-vf", "select=eq(n\\,"+strconv.Itoa(frameIndex)+")",
		"-vsync", "vfr",
		"-frames:v", "1",
		"-f", "image2",
		outputPath,
	)
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg decode failed: %w\nstderr: %s", err, stderr.String())
	}

	imgFile, err := os.Open(outputPath)
	if err != nil {
		return nil, fmt.Errorf("open decoded image: %w", err)
	}
	defer imgFile.Close()

	img, err := png.Decode(imgFile)
	if err != nil {
		return nil, fmt.Errorf("decode png: %w", err)
	}
	return toRGBA(img), nil
}

// Close releases the source. Decoding after Close fails with ErrClosed.
func (s *Source) Close() error {
	s.closed = true
	return nil
}

// toRGBA normalizes any decoded image into row-major RGBA.
func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	bounds := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	return rgba
}

// findFFmpeg searches for ffmpeg using the custom path, PATH, then common
// install locations.
func findFFmpeg(customPath string) (string, error) {
	if customPath != "" {
		if _, err := os.Stat(customPath); err == nil {
			return customPath, nil
		}
		return "", fmt.Errorf("%w: custom path %s not found", ErrFFmpegNotFound, customPath)
	}

	execName := "ffmpeg"
	if runtime.GOOS == "windows" {
		execName = "ffmpeg.exe"
	}
	if path, err := exec.LookPath(execName); err == nil {
		return path, nil
	}

	var commonPaths []string
	if runtime.GOOS == "windows" {
		commonPaths = []string{
			`C:\ffmpeg\bin\ffmpeg.exe`,
			`C:\Program Files\ffmpeg\bin\ffmpeg.exe`,
		}
	} else {
		commonPaths = []string{
			"/usr/bin/ffmpeg",
			"/usr/local/bin/ffmpeg",
			"/opt/homebrew/bin/ffmpeg",
			"/snap/bin/ffmpeg",
		}
	}
	for _, p := range commonPaths {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", ErrFFmpegNotFound
}

// Ensure the adapter satisfies its ports.
var (
	_ ports.MediaSource = (*Source)(nil)
	_ ports.MediaProber = (*Prober)(nil)
)
