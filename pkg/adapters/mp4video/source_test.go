package mp4video

import (
	"errors"
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/eyedl/cvat-reader/pkg/adapters/logger"
	"github.com/eyedl/cvat-reader/pkg/ports"
)

func notAnMP4(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "plain.bin")
	if err := os.WriteFile(path, []byte("definitely not an mp4"), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	return path
}

func TestProbe_RejectsNonMP4(t *testing.T) {
	if _, err := Probe(notAnMP4(t)); err == nil {
		t.Fatal("expected probe to fail on a non-MP4 file")
	}
	if _, err := Probe(filepath.Join(t.TempDir(), "absent.mp4")); err == nil {
		t.Fatal("expected probe to fail on a missing file")
	}
}

func TestProber_IsMedia(t *testing.T) {
	p := NewProber()
	if p.IsMedia(notAnMP4(t)) {
		t.Error("expected non-MP4 content rejected regardless of name")
	}

	// Extension alone never qualifies a file.
	path := filepath.Join(t.TempDir(), "fake.mp4")
	if err := os.WriteFile(path, []byte("still not an mp4"), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if p.IsMedia(path) {
		t.Error("expected .mp4 extension with non-MP4 content rejected")
	}
}

func TestSource_DecodeBounds(t *testing.T) {
	s := &Source{path: "unused.mp4", info: Info{FrameCount: 10}, log: logger.NewNoop()}

	var decodeErr *ports.DecodeError
	if _, err := s.Decode(-1); !errors.As(err, &decodeErr) {
		t.Fatalf("expected DecodeError for negative index, got %v", err)
	}
	if _, err := s.Decode(10); !errors.As(err, &decodeErr) {
		t.Fatalf("expected DecodeError past the media range, got %v", err)
	}
	if decodeErr.Frame != 10 {
		t.Errorf("expected failing frame recorded, got %d", decodeErr.Frame)
	}
}

func TestSource_DecodeAfterClose(t *testing.T) {
	s := &Source{path: "unused.mp4", info: Info{FrameCount: 10}, log: logger.NewNoop()}
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	_, err := s.Decode(0)
	var decodeErr *ports.DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("expected DecodeError after Close, got %v", err)
	}
	if !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed cause, got %v", decodeErr.Err)
	}
}

func TestFindFFmpeg_CustomPathMissing(t *testing.T) {
	_, err := findFFmpeg(filepath.Join(t.TempDir(), "no-such-ffmpeg"))
	if !errors.Is(err, ErrFFmpegNotFound) {
		t.Fatalf("expected ErrFFmpegNotFound, got %v", err)
	}
}

func TestToRGBA(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	got := toRGBA(src)
	if got.Bounds().Dx() != 3 || got.Bounds().Dy() != 2 {
		t.Errorf("expected 3x2 RGBA, got %v", got.Bounds())
	}

	rgba := image.NewRGBA(image.Rect(0, 0, 1, 1))
	if toRGBA(rgba) != rgba {
		t.Error("expected RGBA input returned as-is")
	}
}
