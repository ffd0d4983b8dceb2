// Package mocks provides hand-rolled test doubles for the ports.
package mocks

import (
	"image"

	"github.com/eyedl/cvat-reader/pkg/ports"
)

// MediaSource is a mock implementation of ports.MediaSource.
type MediaSource struct {
	FrameCountValue int
	DecodeFunc      func(frameIndex int) (image.Image, error)

	// Recorded calls for verification
	DecodeCalls []int
	CloseCalls  int
}

func (m *MediaSource) FrameCount() int {
	return m.FrameCountValue
}

func (m *MediaSource) Decode(frameIndex int) (image.Image, error) {
	m.DecodeCalls = append(m.DecodeCalls, frameIndex)
	if m.DecodeFunc != nil {
		return m.DecodeFunc(frameIndex)
	}
	return image.NewRGBA(image.Rect(0, 0, 4, 4)), nil
}

func (m *MediaSource) Close() error {
	m.CloseCalls++
	return nil
}

var _ ports.MediaSource = (*MediaSource)(nil)

// MediaProber is a mock implementation of ports.MediaProber.
type MediaProber struct {
	IsMediaFunc func(path string) bool

	// Recorded calls for verification
	ProbedPaths []string
}

func (m *MediaProber) IsMedia(path string) bool {
	m.ProbedPaths = append(m.ProbedPaths, path)
	if m.IsMediaFunc != nil {
		return m.IsMediaFunc(path)
	}
	return true
}

var _ ports.MediaProber = (*MediaProber)(nil)
