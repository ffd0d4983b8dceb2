package cvat

import "fmt"

// RangeError reports a seek to a frame index outside [0, FrameCount).
// The dataset position is left unchanged.
type RangeError struct {
	Index      int
	FrameCount int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("cvat: frame index %d out of range [0, %d)", e.Index, e.FrameCount)
}
