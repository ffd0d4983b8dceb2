// Package nullvideo provides a MediaSource that never opens the media
// member. Used when video loading is disabled: every decoded image is nil
// and no decoding collaborator is touched.
package nullvideo

import (
	"image"

	"github.com/eyedl/cvat-reader/pkg/ports"
)

// Source implements ports.MediaSource without any media handle.
type Source struct{}

// New creates a new null media source.
func New() *Source {
	return &Source{}
}

// FrameCount returns 0: the null source cannot tell.
func (s *Source) FrameCount() int {
	return 0
}

// Decode returns a nil image for every frame.
func (s *Source) Decode(frameIndex int) (image.Image, error) {
	return nil, nil
}

// Close does nothing.
func (s *Source) Close() error {
	return nil
}

// Ensure Source implements ports.MediaSource
var _ ports.MediaSource = (*Source)(nil)
