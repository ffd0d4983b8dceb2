package ports

import (
	"fmt"
	"image"
)

// MediaSource abstracts frame-accurate access to the archive's media member.
// Implementations are selected once at open time: a decoding source backed
// by the extracted video file, or a null source when video loading is
// disabled.
type MediaSource interface {
	// FrameCount returns the number of frames the media claims to contain,
	// or 0 when the source cannot tell (the null source never can).
	FrameCount() int

	// Decode produces the pixel data for the given frame index as a
	// row-major RGBA image. The null source returns (nil, nil). A frame
	// that cannot be produced fails with a *DecodeError.
	Decode(frameIndex int) (image.Image, error)

	// Close releases the underlying media handle. Close is idempotent.
	Close() error
}

// MediaProber reports whether a file is a decodable media container.
// The archive accessor uses it to locate the media member without
// trusting file extensions.
type MediaProber interface {
	IsMedia(path string) bool
}

// DecodeError reports that a single frame could not be decoded. It does
// not invalidate the dataset; callers may keep iterating or seeking.
type DecodeError struct {
	Frame int
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("ports: decode frame %d: %v", e.Frame, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
